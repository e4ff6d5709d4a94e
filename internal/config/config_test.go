package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearHyperspotEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		name, _, _ := cutEnv(kv)
		if len(name) >= len(envPrefix) && name[:len(envPrefix)] == envPrefix {
			original := os.Getenv(name)
			os.Unsetenv(name)
			t.Cleanup(func() { os.Setenv(name, original) })
		}
	}
}

func cutEnv(kv string) (name, value string, ok bool) {
	for i := 0; i < len(kv); i++ {
		if kv[i] == '=' {
			return kv[:i], kv[i+1:], true
		}
	}
	return kv, "", false
}

func TestLoad_MissingFilesAreTolerated(t *testing.T) {
	clearHyperspotEnv(t)
	dir := t.TempDir()

	cfg, err := Load(Options{
		ConfigPath: filepath.Join(dir, "missing-config.json"),
		EnvFile:    filepath.Join(dir, "missing.env"),
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.HomeDir != "." {
		t.Fatalf("HomeDir = %q, want default \".\"", cfg.Server.HomeDir)
	}
	if cfg.Logging.Default.ConsoleLevel != "info" {
		t.Fatalf("ConsoleLevel = %q, want default \"info\"", cfg.Logging.Default.ConsoleLevel)
	}
}

func TestLoad_ReadsJSONFile(t *testing.T) {
	clearHyperspotEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"server":{"home_dir":"/srv/hyperspot"},"database":{"max_conns":25}}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(Options{ConfigPath: path, EnvFile: filepath.Join(dir, "missing.env")})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.HomeDir != "/srv/hyperspot" {
		t.Fatalf("HomeDir = %q", cfg.Server.HomeDir)
	}
	if cfg.Database.MaxConns != 25 {
		t.Fatalf("MaxConns = %d, want 25", cfg.Database.MaxConns)
	}
}

func TestLoad_EnvOverlayOverridesFile(t *testing.T) {
	clearHyperspotEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"database":{"max_conns":25}}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	os.Setenv("HYPERSPOT_DATABASE_MAX_CONNS", "99")
	defer os.Unsetenv("HYPERSPOT_DATABASE_MAX_CONNS")

	cfg, err := Load(Options{ConfigPath: path, EnvFile: filepath.Join(dir, "missing.env")})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.MaxConns != 99 {
		t.Fatalf("MaxConns = %d, want 99 from overlay", cfg.Database.MaxConns)
	}
}

func TestLoad_EnvOverlaySetsNestedLoggingDefault(t *testing.T) {
	clearHyperspotEnv(t)
	dir := t.TempDir()
	os.Setenv("HYPERSPOT_LOGGING_DEFAULT_CONSOLE_LEVEL", "debug")
	defer os.Unsetenv("HYPERSPOT_LOGGING_DEFAULT_CONSOLE_LEVEL")

	cfg, err := Load(Options{ConfigPath: filepath.Join(dir, "missing.json"), EnvFile: filepath.Join(dir, "missing.env")})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logging.Default.ConsoleLevel != "debug" {
		t.Fatalf("ConsoleLevel = %q, want debug", cfg.Logging.Default.ConsoleLevel)
	}
}

func TestLoad_ModulesSectionKeptAsRawJSONPerName(t *testing.T) {
	clearHyperspotEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"modules":{"directory":{"path":"/data/directory.db"}}}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(Options{ConfigPath: path, EnvFile: filepath.Join(dir, "missing.env")})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	raw, ok := cfg.Modules["directory"]
	if !ok {
		t.Fatal("expected modules.directory section")
	}
	if string(raw) != `{"path":"/data/directory.db"}` {
		t.Fatalf("raw modules.directory = %s", raw)
	}
}

func TestLoad_EnvOverlayDisambiguatesMultiWordModuleNameWithModuleNamesHint(t *testing.T) {
	clearHyperspotEnv(t)
	dir := t.TempDir()
	os.Setenv("HYPERSPOT_MODULES_API_INGRESS_BIND_ADDR", "0.0.0.0:9090")
	defer os.Unsetenv("HYPERSPOT_MODULES_API_INGRESS_BIND_ADDR")

	cfg, err := Load(Options{
		ConfigPath:  filepath.Join(dir, "missing.json"),
		EnvFile:     filepath.Join(dir, "missing.env"),
		ModuleNames: []string{"api_ingress"},
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	raw, ok := cfg.Modules["api_ingress"]
	if !ok {
		t.Fatalf("expected modules.api_ingress section, got modules=%v", cfg.Modules)
	}
	if string(raw) != `{"bind_addr":"0.0.0.0:9090"}` {
		t.Fatalf("raw modules.api_ingress = %s", raw)
	}
}

func TestLoad_InvalidJSONFails(t *testing.T) {
	clearHyperspotEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{not json`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, err := Load(Options{ConfigPath: path, EnvFile: filepath.Join(dir, "missing.env")})
	if err == nil {
		t.Fatal("expected an error for invalid JSON")
	}
}
