package backup

// Config is the modules.backup configuration section.
type Config struct {
	Bucket          string `json:"bucket"`
	Region          string `json:"region"`
	Endpoint        string `json:"endpoint"`
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	KeyPrefix       string `json:"key_prefix"`
	CronSchedule    string `json:"cron_schedule"`
}

const defaultCronSchedule = "@every 1h"

func (c *Config) applyDefaults() {
	if c.CronSchedule == "" {
		c.CronSchedule = defaultCronSchedule
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = "hyperspot-backups"
	}
	if c.Region == "" {
		c.Region = "us-east-1"
	}
}
