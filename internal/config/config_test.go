package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()

	for _, name := range []string{
		EnvAPIKey, EnvServiceAccountPath, EnvServiceAccountJSON, EnvUseServiceAccount,
		EnvClientSecretsPath, EnvTokenPath, EnvTokenBackend, EnvDebug, EnvLogLevel,
	} {
		t.Setenv(name, "")
	}
}

func isolateHome(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "xdg-config"))

	return home
}

func stubDotenv(t *testing.T) {
	t.Helper()

	orig := loadDotenv

	t.Cleanup(func() { loadDotenv = orig })

	loadDotenv = func() {}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	isolateHome(t)
	stubDotenv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.TokenPath != DefaultTokenPath {
		t.Fatalf("unexpected token path: %q", cfg.TokenPath)
	}

	if cfg.TokenBackend != TokenBackendFile {
		t.Fatalf("unexpected token backend: %q", cfg.TokenBackend)
	}

	if cfg.LogLevel != DefaultLogLevel {
		t.Fatalf("unexpected log level: %q", cfg.LogLevel)
	}

	if cfg.AuthMethod() != AuthMethodNone {
		t.Fatalf("expected no auth method, got %q", cfg.AuthMethod())
	}
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	isolateHome(t)
	stubDotenv(t)

	t.Setenv(EnvAPIKey, "abc123")
	t.Setenv(EnvTokenPath, "/tmp/tok.json")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvDebug, "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.APIKey != "abc123" {
		t.Fatalf("unexpected api key: %q", cfg.APIKey)
	}

	if cfg.TokenPath != "/tmp/tok.json" {
		t.Fatalf("unexpected token path: %q", cfg.TokenPath)
	}

	if cfg.LogLevel != "DEBUG" {
		t.Fatalf("expected upper-cased log level, got %q", cfg.LogLevel)
	}

	if !cfg.Debug {
		t.Fatalf("expected debug")
	}

	if cfg.AuthMethod() != AuthMethodAPIKey {
		t.Fatalf("unexpected auth method: %q", cfg.AuthMethod())
	}
}

func TestLoad_ServiceAccountImpliesUse(t *testing.T) {
	clearEnv(t)
	isolateHome(t)
	stubDotenv(t)

	t.Setenv(EnvServiceAccountPath, "/tmp/sa.json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !cfg.UseServiceAccount {
		t.Fatalf("expected service account material to imply use_service_account")
	}

	if cfg.AuthMethod() != AuthMethodServiceAccount {
		t.Fatalf("unexpected auth method: %q", cfg.AuthMethod())
	}
}

func TestLoad_AuthMethodPrecedence(t *testing.T) {
	clearEnv(t)
	isolateHome(t)
	stubDotenv(t)

	t.Setenv(EnvAPIKey, "abc")
	t.Setenv(EnvClientSecretsPath, "/tmp/secrets.json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// OAuth config outranks the API key; service account outranks both.
	if cfg.AuthMethod() != AuthMethodOAuth {
		t.Fatalf("unexpected auth method: %q", cfg.AuthMethod())
	}

	t.Setenv(EnvServiceAccountJSON, `{"type":"service_account"}`)

	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.AuthMethod() != AuthMethodServiceAccount {
		t.Fatalf("unexpected auth method: %q", cfg.AuthMethod())
	}
}

func TestLoad_FileConfigAndEnvOverride(t *testing.T) {
	clearEnv(t)
	isolateHome(t)
	stubDotenv(t)

	dir, err := EnsureDir()
	if err != nil {
		t.Fatalf("EnsureDir: %v", err)
	}

	content := `{
		// comments are allowed
		api_key: "from-file",
		token_backend: "keyring",
	}`
	if err := os.WriteFile(filepath.Join(dir, configFileName), []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.APIKey != "from-file" {
		t.Fatalf("unexpected api key: %q", cfg.APIKey)
	}

	if cfg.TokenBackend != TokenBackendKeyring {
		t.Fatalf("unexpected token backend: %q", cfg.TokenBackend)
	}

	t.Setenv(EnvAPIKey, "from-env")

	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.APIKey != "from-env" {
		t.Fatalf("environment should win over file, got %q", cfg.APIKey)
	}
}

func TestLoad_FileConfigInvalid(t *testing.T) {
	clearEnv(t)
	isolateHome(t)
	stubDotenv(t)

	dir, err := EnsureDir()
	if err != nil {
		t.Fatalf("EnsureDir: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, configFileName), []byte("{nope"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestExpandPath(t *testing.T) {
	home := isolateHome(t)

	got, err := ExpandPath("~/creds/sa.json")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}

	if got != filepath.Join(home, "creds", "sa.json") {
		t.Fatalf("unexpected expansion: %q", got)
	}

	if got, err := ExpandPath("/abs/path"); err != nil || got != "/abs/path" {
		t.Fatalf("absolute path should pass through, got %q err=%v", got, err)
	}

	if got, err := ExpandPath(""); err != nil || got != "" {
		t.Fatalf("empty path should pass through, got %q err=%v", got, err)
	}
}
