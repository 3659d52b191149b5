package cmd

import (
	"context"
	"os"
	"strings"

	"github.com/Al3jandr032/gforms-go/internal/gauth"
	"github.com/Al3jandr032/gforms-go/internal/outfmt"
	"github.com/Al3jandr032/gforms-go/internal/secrets"
	"github.com/Al3jandr032/gforms-go/internal/ui"
)

// openTokenStore is a stub point for tests.
var openTokenStore = secrets.Open

type AuthCmd struct {
	Login  AuthLoginCmd  `cmd:"" name:"login" help:"Run the OAuth consent flow and store the token"`
	Status AuthStatusCmd `cmd:"" name:"status" aliases:"st" help:"Show auth configuration status"`
}

type AuthLoginCmd struct {
	Secrets string `name:"secrets" help:"Path to OAuth client secrets JSON (defaults to GOOGLE_CLIENT_SECRETS_PATH)"`
}

func (c *AuthLoginCmd) Run(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	secretsPath := strings.TrimSpace(c.Secrets)
	if secretsPath == "" {
		secretsPath = cfg.ClientSecretsPath
	}

	if secretsPath == "" {
		return usage("no client secrets path; pass --secrets or set GOOGLE_CLIENT_SECRETS_PATH")
	}

	store, err := openTokenStore(cfg)
	if err != nil {
		return err
	}

	auth := gauth.New()
	if _, err := auth.AuthenticateOAuth(ctx, secretsPath, store); err != nil {
		return err
	}

	if outfmt.IsJSON(ctx) {
		return outfmt.WriteJSON(ctx, os.Stdout, map[string]any{
			"authenticated": true,
			"token_backend": cfg.TokenBackend,
		})
	}

	u := ui.FromContext(ctx)
	u.Out().Println("Authorized. Token stored via " + cfg.TokenBackend + " backend.")

	return nil
}

type AuthStatusCmd struct{}

func (c *AuthStatusCmd) Run(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if outfmt.IsJSON(ctx) {
		return outfmt.WriteJSON(ctx, os.Stdout, map[string]any{
			"auth_method":         cfg.AuthMethod(),
			"has_api_key":         cfg.HasAPIKey(),
			"has_service_account": cfg.HasServiceAccount(),
			"has_oauth_config":    cfg.HasOAuth(),
			"token_path":          cfg.TokenPath,
			"token_backend":       cfg.TokenBackend,
		})
	}

	u := ui.FromContext(ctx)
	u.Out().Printf("auth_method\t%s", cfg.AuthMethod())
	u.Out().Printf("api_key\t%v", cfg.HasAPIKey())
	u.Out().Printf("service_account\t%v", cfg.HasServiceAccount())
	u.Out().Printf("oauth_config\t%v", cfg.HasOAuth())
	u.Out().Printf("token_path\t%s", cfg.TokenPath)
	u.Out().Printf("token_backend\t%s", cfg.TokenBackend)

	return nil
}
