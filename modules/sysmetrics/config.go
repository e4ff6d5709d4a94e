package sysmetrics

// Config is the modules.sysmetrics configuration section.
type Config struct {
	SampleIntervalSecs int `json:"sample_interval_secs"`
	WindowSize         int `json:"window_size"`
}

const (
	defaultSampleIntervalSecs = 5
	defaultWindowSize         = 60
)

func (c *Config) applyDefaults() {
	if c.SampleIntervalSecs <= 0 {
		c.SampleIntervalSecs = defaultSampleIntervalSecs
	}
	if c.WindowSize <= 0 {
		c.WindowSize = defaultWindowSize
	}
}
