// Package config loads the orchestrator's configuration tree (spec.md §4.11
// expansion): an optional JSON file overlaid with HYPERSPOT_-prefixed
// environment variables, after an optional .env file has been loaded into
// the process environment — the same precedence the teacher's
// config.Load(dataDirFlag) applies to TRADER_DATA_DIR/DATA_DIR (.env, then
// process env, then a CLI-supplied override), generalized from one directory
// setting to an arbitrary nested tree.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/hyperspotdev/hyperspot/pkg/hserr"
)

const envPrefix = "HYPERSPOT_"

// ServerConfig holds process-wide base settings.
type ServerConfig struct {
	HomeDir string `json:"home_dir"`
}

// DatabaseConfig is passed to the database factory collaborator.
type DatabaseConfig struct {
	URL           string `json:"url"`
	MaxConns      int    `json:"max_conns"`
	BusyTimeoutMS int    `json:"busy_timeout_ms"`
}

// LoggingDefaultConfig is consumed by internal/logging.
type LoggingDefaultConfig struct {
	ConsoleLevel string `json:"console_level"`
	File         string `json:"file"`
	FileLevel    string `json:"file_level"`
	MaxAgeDays   int    `json:"max_age_days"`
	MaxBackups   int    `json:"max_backups"`
	MaxSizeMB    int    `json:"max_size_mb"`
}

// LoggingConfig wraps the logging section's one currently defined profile.
type LoggingConfig struct {
	Default LoggingDefaultConfig `json:"default"`
}

// Config is the fully loaded, overlay-applied configuration tree.
type Config struct {
	Server   ServerConfig               `json:"server"`
	Database DatabaseConfig             `json:"database"`
	Logging  LoggingConfig              `json:"logging"`
	Modules  map[string]json.RawMessage `json:"modules"`
}

// Options controls Load.
type Options struct {
	// ConfigPath is the JSON config file to read. A missing file is
	// tolerated (same as a missing .env); defaults to "config.json".
	ConfigPath string
	// EnvFile is the dotenv file to load before reading the process
	// environment. Defaults to ".env". A missing file is not an error.
	EnvFile string
	// ModuleNames disambiguates the modules.<name> segment of an overlay
	// variable when the module name itself contains underscores (e.g.
	// "api_ingress"): the longest registered name matching a prefix of the
	// remaining segments wins. Without it, only single-segment module names
	// can be targeted by an env override.
	ModuleNames []string
}

// ErrInvalidConfig is returned when the config file or an overlay value
// cannot be parsed. It wraps hserr.ErrInvalidConfig.
var ErrInvalidConfig = hserr.ErrInvalidConfig

// Load builds the configuration tree: optional .env, optional JSON file,
// HYPERSPOT_ environment overlay, in that order of increasing precedence.
func Load(opts Options) (*Config, error) {
	if opts.ConfigPath == "" {
		opts.ConfigPath = "config.json"
	}
	if opts.EnvFile == "" {
		opts.EnvFile = ".env"
	}

	if err := godotenv.Load(opts.EnvFile); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: loading %s: %v", ErrInvalidConfig, opts.EnvFile, err)
	}

	tree, err := readTree(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	applyEnvOverlay(tree, os.Environ(), opts.ModuleNames)

	raw, err := json.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("%w: remarshal overlay tree: %v", ErrInvalidConfig, err)
	}

	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("%w: decode merged config: %v", ErrInvalidConfig, err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.HomeDir == "" {
		cfg.Server.HomeDir = "."
	}
	if cfg.Database.URL == "" {
		cfg.Database.URL = "file:hyperspot.db"
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Database.BusyTimeoutMS == 0 {
		cfg.Database.BusyTimeoutMS = 5000
	}
	if cfg.Logging.Default.ConsoleLevel == "" {
		cfg.Logging.Default.ConsoleLevel = "info"
	}
	if cfg.Modules == nil {
		cfg.Modules = make(map[string]json.RawMessage)
	}
}

func readTree(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("%w: reading %s: %v", ErrInvalidConfig, path, err)
	}
	var tree map[string]any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrInvalidConfig, path, err)
	}
	if tree == nil {
		tree = map[string]any{}
	}
	return tree, nil
}

func applyEnvOverlay(tree map[string]any, environ []string, moduleNames []string) {
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, envPrefix) {
			continue
		}
		rest := strings.ToLower(strings.TrimPrefix(name, envPrefix))
		segs := strings.Split(rest, "_")
		if len(segs) == 0 || segs[0] == "" {
			continue
		}

		switch segs[0] {
		case "server":
			setLeaf(tree, []string{"server"}, strings.Join(segs[1:], "_"), value)
		case "database":
			setLeaf(tree, []string{"database"}, strings.Join(segs[1:], "_"), value)
		case "logging":
			if len(segs) >= 2 && segs[1] == "default" {
				setLeaf(tree, []string{"logging", "default"}, strings.Join(segs[2:], "_"), value)
			} else {
				setLeaf(tree, []string{"logging"}, strings.Join(segs[1:], "_"), value)
			}
		case "modules":
			rem := segs[1:]
			if len(rem) == 0 {
				continue
			}
			moduleName, field := matchModuleName(rem, moduleNames)
			setLeaf(tree, []string{"modules", moduleName}, field, value)
		}
	}
}

// matchModuleName finds the longest prefix of rem, joined by "_", that
// equals one of moduleNames. Falling back (moduleNames empty, or no match)
// treats rem[0] as the module name and the remainder as the field.
func matchModuleName(rem []string, moduleNames []string) (name, field string) {
	for length := len(rem); length >= 1; length-- {
		candidate := strings.Join(rem[:length], "_")
		for _, known := range moduleNames {
			if known == candidate {
				return candidate, strings.Join(rem[length:], "_")
			}
		}
	}
	return rem[0], strings.Join(rem[1:], "_")
}

// setLeaf descends tree along path (creating map[string]any nodes as
// needed) and sets leafKey to value's parsed scalar, unless leafKey is empty
// (a malformed overlay variable naming only a section).
func setLeaf(tree map[string]any, path []string, leafKey, rawValue string) {
	if leafKey == "" {
		return
	}
	node := tree
	for _, p := range path {
		child, ok := node[p].(map[string]any)
		if !ok {
			child = map[string]any{}
			node[p] = child
		}
		node = child
	}
	node[leafKey] = parseScalar(rawValue)
}

// parseScalar interprets rawValue as JSON if possible (so "true", "42", and
// quoted strings overlay as bool/number/string), otherwise keeps it as a
// plain string.
func parseScalar(rawValue string) any {
	var v any
	if err := json.Unmarshal([]byte(rawValue), &v); err == nil {
		return v
	}
	return rawValue
}
