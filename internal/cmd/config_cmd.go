package cmd

import (
	"context"
	"os"
	"strings"

	"github.com/Al3jandr032/gforms-go/internal/outfmt"
	"github.com/Al3jandr032/gforms-go/internal/ui"
)

type ConfigCmd struct {
	Show ConfigShowCmd `cmd:"" name:"show" aliases:"get,list" default:"withargs" help:"Print resolved configuration"`
}

type ConfigShowCmd struct{}

func (c *ConfigShowCmd) Run(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if outfmt.IsJSON(ctx) {
		return outfmt.WriteJSON(ctx, os.Stdout, map[string]any{
			"auth_method":          cfg.AuthMethod(),
			"api_key":              redact(cfg.APIKey),
			"service_account_path": cfg.ServiceAccountPath,
			"use_service_account":  cfg.UseServiceAccount,
			"client_secrets_path":  cfg.ClientSecretsPath,
			"token_path":           cfg.TokenPath,
			"token_backend":        cfg.TokenBackend,
			"debug":                cfg.Debug,
			"log_level":            cfg.LogLevel,
		})
	}

	u := ui.FromContext(ctx)
	u.Out().Printf("auth_method\t%s", cfg.AuthMethod())
	u.Out().Printf("api_key\t%s", redact(cfg.APIKey))
	u.Out().Printf("service_account_path\t%s", cfg.ServiceAccountPath)
	u.Out().Printf("use_service_account\t%v", cfg.UseServiceAccount)
	u.Out().Printf("client_secrets_path\t%s", cfg.ClientSecretsPath)
	u.Out().Printf("token_path\t%s", cfg.TokenPath)
	u.Out().Printf("token_backend\t%s", cfg.TokenBackend)
	u.Out().Printf("debug\t%v", cfg.Debug)
	u.Out().Printf("log_level\t%s", cfg.LogLevel)

	return nil
}

// redact keeps enough of a secret to recognize it without printing it.
func redact(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}

	if len(v) <= 4 {
		return "****"
	}

	return v[:4] + strings.Repeat("*", len(v)-4)
}
