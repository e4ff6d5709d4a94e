package ingress

// Config is the modules.api_ingress configuration section (spec.md §4.6,
// §6). EnableDocs is a *bool rather than bool so ModuleConfig's
// absent-section-means-zero-value rule doesn't silently flip the documented
// default (true) to false — the only field in this section whose documented
// default isn't the type's zero value.
type Config struct {
	BindAddr           string `json:"bind_addr"`
	EnableDocs         *bool  `json:"enable_docs"`
	CORSEnabled        bool   `json:"cors_enabled"`
	RequestTimeoutSecs int    `json:"request_timeout_secs"`
	MaxRequestSizeMB   int    `json:"max_request_size_mb"`
}

const (
	defaultBindAddr           = "127.0.0.1:8087"
	defaultRequestTimeoutSecs = 30
	defaultMaxRequestSizeMB   = 16
)

func (c *Config) applyDefaults() {
	if c.BindAddr == "" {
		c.BindAddr = defaultBindAddr
	}
	if c.EnableDocs == nil {
		enabled := true
		c.EnableDocs = &enabled
	}
	if c.RequestTimeoutSecs == 0 {
		c.RequestTimeoutSecs = defaultRequestTimeoutSecs
	}
	if c.MaxRequestSizeMB == 0 {
		c.MaxRequestSizeMB = defaultMaxRequestSizeMB
	}
}

func (c Config) docsEnabled() bool {
	return c.EnableDocs == nil || *c.EnableDocs
}
