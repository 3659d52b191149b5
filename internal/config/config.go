// Package config resolves client configuration once at startup.
// Precedence per field: explicit value, then environment, then the
// optional config.json5 file under the user config dir.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/yosuke-furukawa/json5/encoding/json5"
)

const (
	EnvAPIKey             = "GOOGLE_API_KEY"
	EnvServiceAccountPath = "GOOGLE_SERVICE_ACCOUNT_PATH"
	EnvServiceAccountJSON = "GOOGLE_SERVICE_ACCOUNT_JSON"
	EnvUseServiceAccount  = "USE_SERVICE_ACCOUNT"
	EnvClientSecretsPath  = "GOOGLE_CLIENT_SECRETS_PATH"
	EnvTokenPath          = "GOOGLE_TOKEN_PATH"
	EnvTokenBackend       = "GFORMS_TOKEN_BACKEND"
	EnvDebug              = "DEBUG"
	EnvLogLevel           = "LOG_LEVEL"
)

const (
	DefaultTokenPath = "token.json"
	DefaultLogLevel  = "INFO"

	TokenBackendFile    = "file"
	TokenBackendKeyring = "keyring"

	configFileName = "config.json5"
	appDirName     = "gforms"
)

// Auth methods reported by Config.AuthMethod.
const (
	AuthMethodServiceAccount = "service_account"
	AuthMethodOAuth          = "oauth"
	AuthMethodAPIKey         = "api_key"
	AuthMethodNone           = "none"
)

var errHomeNotSet = errors.New("home directory not set")

type Config struct {
	APIKey string

	ServiceAccountPath string
	ServiceAccountJSON string
	UseServiceAccount  bool

	ClientSecretsPath string
	TokenPath         string
	TokenBackend      string

	Debug    bool
	LogLevel string
}

// fileConfig is the optional on-disk config shape. JSON5 so it can carry
// comments and trailing commas.
type fileConfig struct {
	APIKey             string `json:"api_key"`
	ServiceAccountPath string `json:"service_account_path"`
	ServiceAccountJSON string `json:"service_account_json"`
	UseServiceAccount  *bool  `json:"use_service_account"`
	ClientSecretsPath  string `json:"client_secrets_path"`
	TokenPath          string `json:"token_path"`
	TokenBackend       string `json:"token_backend"`
	LogLevel           string `json:"log_level"`
}

var loadDotenv = func() { _ = godotenv.Load() }

// Load resolves configuration from .env, the config file, and the
// environment. A missing .env or config file is not an error.
func Load() (Config, error) {
	loadDotenv()

	var cfg Config

	if fc, ok, err := readFileConfig(); err != nil {
		return Config{}, err
	} else if ok {
		cfg.APIKey = fc.APIKey
		cfg.ServiceAccountPath = fc.ServiceAccountPath
		cfg.ServiceAccountJSON = fc.ServiceAccountJSON
		cfg.ClientSecretsPath = fc.ClientSecretsPath
		cfg.TokenPath = fc.TokenPath
		cfg.TokenBackend = fc.TokenBackend
		cfg.LogLevel = fc.LogLevel

		if fc.UseServiceAccount != nil {
			cfg.UseServiceAccount = *fc.UseServiceAccount
		}
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvAPIKey)); v != "" {
		cfg.APIKey = v
	}

	if v := strings.TrimSpace(os.Getenv(EnvServiceAccountPath)); v != "" {
		cfg.ServiceAccountPath = v
	}

	if v := strings.TrimSpace(os.Getenv(EnvServiceAccountJSON)); v != "" {
		cfg.ServiceAccountJSON = v
	}

	if envBool(EnvUseServiceAccount) {
		cfg.UseServiceAccount = true
	}

	if v := strings.TrimSpace(os.Getenv(EnvClientSecretsPath)); v != "" {
		cfg.ClientSecretsPath = v
	}

	if v := strings.TrimSpace(os.Getenv(EnvTokenPath)); v != "" {
		cfg.TokenPath = v
	}

	if v := strings.TrimSpace(os.Getenv(EnvTokenBackend)); v != "" {
		cfg.TokenBackend = v
	}

	if envBool(EnvDebug) {
		cfg.Debug = true
	}

	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.LogLevel = strings.ToUpper(v)
	}
}

func applyDefaults(cfg *Config) {
	if cfg.TokenPath == "" {
		cfg.TokenPath = DefaultTokenPath
	}

	if cfg.TokenBackend == "" {
		cfg.TokenBackend = TokenBackendFile
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}

	// Any service-account material implies service-account auth, matching
	// the constructor's mode selection.
	if cfg.ServiceAccountPath != "" || cfg.ServiceAccountJSON != "" {
		cfg.UseServiceAccount = true
	}
}

func (c Config) HasAPIKey() bool { return strings.TrimSpace(c.APIKey) != "" }

func (c Config) HasServiceAccount() bool {
	return strings.TrimSpace(c.ServiceAccountPath) != "" || strings.TrimSpace(c.ServiceAccountJSON) != ""
}

func (c Config) HasOAuth() bool { return strings.TrimSpace(c.ClientSecretsPath) != "" }

// AuthMethod reports the preferred method given what is configured.
func (c Config) AuthMethod() string {
	switch {
	case c.UseServiceAccount && c.HasServiceAccount():
		return AuthMethodServiceAccount
	case c.HasOAuth():
		return AuthMethodOAuth
	case c.HasAPIKey():
		return AuthMethodAPIKey
	default:
		return AuthMethodNone
	}
}

// Dir returns the per-user config directory without creating it.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("user config dir: %w", err)
	}

	return filepath.Join(base, appDirName), nil
}

// EnsureDir creates the config dir if needed and returns its path.
func EnsureDir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}

	return dir, nil
}

// ExpandPath resolves a leading "~" against the current home directory.
func ExpandPath(p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" || !strings.HasPrefix(p, "~") {
		return p, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("%w: %w", errHomeNotSet, err)
	}

	if p == "~" {
		return home, nil
	}

	return filepath.Join(home, strings.TrimPrefix(p, "~/")), nil
}

func readFileConfig() (fileConfig, bool, error) {
	dir, err := Dir()
	if err != nil {
		return fileConfig{}, false, err
	}

	path := filepath.Join(dir, configFileName)

	data, err := os.ReadFile(path) //nolint:gosec // fixed path under the user config dir
	if err != nil {
		if os.IsNotExist(err) {
			return fileConfig{}, false, nil
		}

		return fileConfig{}, false, fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := json5.Unmarshal(data, &fc); err != nil {
		return fileConfig{}, false, fmt.Errorf("parse %s: %w", configFileName, err)
	}

	return fc, true, nil
}

func envBool(name string) bool {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false
	}

	if strings.EqualFold(raw, "true") {
		return true
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false
	}

	return v
}
