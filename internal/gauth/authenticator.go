// Package gauth resolves Google credentials and hands out the Forms
// service handle bound to them.
//
// An Authenticator moves one way: unauthenticated until one of the
// Authenticate methods succeeds, then authenticated for the rest of its
// life. The service handle is created lazily on first use and cached;
// later calls return the identical handle.
package gauth

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/forms/v1"
	"google.golang.org/api/option"

	"github.com/Al3jandr032/gforms-go/internal/config"
	"github.com/Al3jandr032/gforms-go/internal/secrets"
)

// Scopes requested for every credential. Responses listing needs the
// responses scope on top of the form body.
var Scopes = []string{
	"https://www.googleapis.com/auth/forms.body.readonly",
	"https://www.googleapis.com/auth/forms.responses.readonly",
}

const defaultHTTPTimeout = 30 * time.Second

const (
	SourceServiceAccount = "service_account"
	SourceOAuth          = "oauth"
)

var (
	errNoServiceAccountCreds = errors.New(
		"no service account credentials provided; pass a key file path or raw JSON, or set " +
			config.EnvServiceAccountPath + " / " + config.EnvServiceAccountJSON)
)

// Stub points for tests.
var (
	credentialsFromJSON = google.CredentialsFromJSON
	newFormsService     = forms.NewService
)

// Credential is the resolved token material for one auth source.
type Credential struct {
	TokenSource oauth2.TokenSource
	Token       *oauth2.Token // nil for service accounts; fetched lazily by the SDK
	Source      string
}

// Valid reports whether the credential can still mint usable tokens.
// Service-account credentials fetch tokens on demand, so a loaded one
// counts as valid without forcing a token exchange.
func (c *Credential) Valid() bool {
	if c == nil {
		return false
	}

	if c.Source == SourceServiceAccount {
		return true
	}

	return c.Token.Valid()
}

type Authenticator struct {
	cred *Credential
	svc  *forms.Service
}

func New() *Authenticator { return &Authenticator{} }

// AuthenticateServiceAccount resolves service-account key material in
// priority order: explicit raw JSON, explicit file path, then the
// GOOGLE_SERVICE_ACCOUNT_JSON and GOOGLE_SERVICE_ACCOUNT_PATH
// environment variables.
func (a *Authenticator) AuthenticateServiceAccount(ctx context.Context, path string, rawJSON string) (*Credential, error) {
	data, err := resolveServiceAccountJSON(path, rawJSON)
	if err != nil {
		return nil, err
	}

	creds, err := credentialsFromJSON(ctx, data, Scopes...)
	if err != nil {
		return nil, authErr("parse service account credentials", err)
	}

	a.cred = &Credential{
		TokenSource: creds.TokenSource,
		Source:      SourceServiceAccount,
	}

	slog.Debug("authenticated with service account")

	return a.cred, nil
}

func resolveServiceAccountJSON(path string, rawJSON string) ([]byte, error) {
	if rawJSON != "" {
		return []byte(rawJSON), nil
	}

	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // user-provided path
		if err != nil {
			return nil, authErr("read service account file", err)
		}

		return data, nil
	}

	if env := os.Getenv(config.EnvServiceAccountJSON); env != "" {
		return []byte(env), nil
	}

	if env := os.Getenv(config.EnvServiceAccountPath); env != "" {
		data, err := os.ReadFile(env) //nolint:gosec // user-provided path
		if err != nil {
			return nil, authErr("read service account file from "+config.EnvServiceAccountPath, err)
		}

		return data, nil
	}

	return nil, authErr("resolve service account credentials", errNoServiceAccountCreds)
}

// AuthenticateOAuth establishes a user credential. A valid persisted
// token is used as-is (no network, no interaction). An expired token
// with a refresh token is refreshed; refresh failure falls through to
// the consent flow rather than aborting. Persisting the fresh token is
// best-effort.
func (a *Authenticator) AuthenticateOAuth(ctx context.Context, secretsPath string, store secrets.Store) (*Credential, error) {
	tok := loadStoredToken(store)

	if tok.Valid() {
		a.cred = &Credential{
			TokenSource: tokenSourceFor(ctx, secretsPath, tok),
			Token:       tok,
			Source:      SourceOAuth,
		}

		slog.Debug("authenticated with cached oauth token")

		return a.cred, nil
	}

	cfg, err := readOAuthConfig(secretsPath)
	if err != nil {
		return nil, authErr("load client secrets", err)
	}

	if tok != nil && tok.RefreshToken != "" {
		refreshed, refreshErr := cfg.TokenSource(oauthContext(ctx), tok).Token()
		if refreshErr != nil {
			// Fall through to a fresh consent flow. Intentional recovery
			// path inherited from the original behavior.
			slog.Warn("token refresh failed; re-running consent flow", "error", refreshErr)

			tok = nil
		} else {
			tok = refreshed
		}
	}

	if !tok.Valid() {
		flowTok, flowErr := runConsentFlow(ctx, cfg)
		if flowErr != nil {
			return nil, authErr("oauth consent flow", flowErr)
		}

		tok = flowTok
	}

	if saveErr := store.Save(tok); saveErr != nil {
		slog.Warn("failed to persist oauth token", "error", saveErr)
	}

	a.cred = &Credential{
		TokenSource: cfg.TokenSource(oauthContext(ctx), tok),
		Token:       tok,
		Source:      SourceOAuth,
	}

	return a.cred, nil
}

func loadStoredToken(store secrets.Store) *oauth2.Token {
	if store == nil {
		return nil
	}

	tok, err := store.Load()
	if err != nil {
		if !errors.Is(err, secrets.ErrTokenNotFound) {
			slog.Debug("stored token unusable; re-authenticating", "error", err)
		}

		return nil
	}

	return tok
}

// tokenSourceFor prefers a refreshable source from the client secrets;
// when those can't be read and the token is still valid, a static source
// is enough for this process.
func tokenSourceFor(ctx context.Context, secretsPath string, tok *oauth2.Token) oauth2.TokenSource {
	cfg, err := readOAuthConfig(secretsPath)
	if err != nil {
		slog.Debug("client secrets unavailable; using static token source", "error", err)

		return oauth2.StaticTokenSource(tok)
	}

	return cfg.TokenSource(oauthContext(ctx), tok)
}

func readOAuthConfig(secretsPath string) (*oauth2.Config, error) {
	data, err := os.ReadFile(secretsPath) //nolint:gosec // user-provided path
	if err != nil {
		return nil, fmt.Errorf("read client secrets: %w", err)
	}

	cfg, err := google.ConfigFromJSON(data, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("parse client secrets: %w", err)
	}

	return cfg, nil
}

// oauthContext bounds refresh-token exchanges so they don't hang forever.
func oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: defaultHTTPTimeout})
}

// Service returns the Forms service handle, creating it on first use.
// The handle is created once per Authenticator and reused afterwards.
func (a *Authenticator) Service(ctx context.Context) (*forms.Service, error) {
	if a.cred == nil {
		return nil, authErr("get service", errNotAuthenticated)
	}

	if a.svc != nil {
		return a.svc, nil
	}

	httpClient, err := a.HTTPClient(ctx)
	if err != nil {
		return nil, err
	}

	svc, err := newFormsService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, authErr("create forms service", err)
	}

	a.svc = svc

	return a.svc, nil
}

// HTTPClient returns a client that authenticates requests with the
// current credential.
func (a *Authenticator) HTTPClient(_ context.Context) (*http.Client, error) {
	if a.cred == nil {
		return nil, authErr("http client", errNotAuthenticated)
	}

	return &http.Client{
		Transport: &oauth2.Transport{
			Source: a.cred.TokenSource,
			Base:   NewBaseTransport(),
		},
		Timeout: defaultHTTPTimeout,
	}, nil
}

func (a *Authenticator) Credentials() *Credential { return a.cred }

func (a *Authenticator) IsAuthenticated() bool { return a.cred.Valid() }

// NewBaseTransport clones the default transport and enforces TLS 1.2+.
func NewBaseTransport() *http.Transport {
	defaultTransport, ok := http.DefaultTransport.(*http.Transport)
	if !ok || defaultTransport == nil {
		return &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		}
	}

	transport := defaultTransport.Clone()
	if transport.TLSClientConfig == nil {
		transport.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		return transport
	}

	if transport.TLSClientConfig.MinVersion < tls.VersionTLS12 {
		transport.TLSClientConfig.MinVersion = tls.VersionTLS12
	}

	return transport
}
