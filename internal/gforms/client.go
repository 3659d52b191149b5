// Package gforms is a thin client for the Google Forms API.
//
// A Client runs in exactly one of two modes, fixed at construction: raw
// HTTP with an API key, or delegated calls through an authenticated
// Forms service handle. API-key mode can only fetch individual forms;
// listing forms and reading responses need a service account.
package gforms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"google.golang.org/api/forms/v1"
	"google.golang.org/api/googleapi"

	"github.com/Al3jandr032/gforms-go/internal/config"
	"github.com/Al3jandr032/gforms-go/internal/gauth"
)

const (
	defaultBaseURL     = "https://forms.googleapis.com/v1"
	defaultHTTPTimeout = 30 * time.Second
)

// Mode labels reported by Client.Mode.
const (
	ModeAPIKey    = "api_key"
	ModeDelegated = "delegated"
)

// Options configures a Client. API key and service-account inputs are
// mutually exclusive; any service-account indicator wins.
type Options struct {
	APIKey string

	ServiceAccountPath string
	ServiceAccountJSON string
	UseServiceAccount  bool

	// HTTPClient and BaseURL override the API-key transport. Tests use
	// these; production code leaves them zero.
	HTTPClient *http.Client
	BaseURL    string
}

// FromConfig maps resolved configuration onto construction options.
func FromConfig(cfg config.Config) Options {
	return Options{
		APIKey:             cfg.APIKey,
		ServiceAccountPath: cfg.ServiceAccountPath,
		ServiceAccountJSON: cfg.ServiceAccountJSON,
		UseServiceAccount:  cfg.UseServiceAccount,
	}
}

// mode is the tagged variant behind a Client: exactly one of the two
// implementations, never both, never neither.
type mode interface{ isMode() }

type apiKeyMode struct {
	key        string
	baseURL    string
	httpClient *http.Client
}

type delegatedMode struct {
	auth       *gauth.Authenticator
	svc        *forms.Service
	httpClient *http.Client
}

func (apiKeyMode) isMode()    {}
func (delegatedMode) isMode() {}

type Client struct {
	mode mode
}

// New builds a Client. Service-account inputs (explicit or forced via
// UseServiceAccount) select delegated mode and authenticate immediately;
// otherwise the API key (explicit or GOOGLE_API_KEY) selects API-key
// mode. Neither resolving is a ConfigurationError, raised before any
// network I/O.
func New(ctx context.Context, opts Options) (*Client, error) {
	if opts.UseServiceAccount || opts.ServiceAccountPath != "" || opts.ServiceAccountJSON != "" {
		return newDelegated(ctx, opts)
	}

	key := strings.TrimSpace(opts.APIKey)
	if key == "" {
		key = strings.TrimSpace(os.Getenv(config.EnvAPIKey))
	}

	if key == "" {
		return nil, &ConfigurationError{msg: "authentication required; provide either: " +
			"1) an API key via Options.APIKey or " + config.EnvAPIKey + ", or " +
			"2) service account credentials via Options.ServiceAccountPath, Options.ServiceAccountJSON, or " +
			config.EnvServiceAccountPath + " / " + config.EnvServiceAccountJSON}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: gauth.NewBaseTransport(),
			Timeout:   defaultHTTPTimeout,
		}
	}

	return &Client{mode: apiKeyMode{
		key:        key,
		baseURL:    baseURL,
		httpClient: httpClient,
	}}, nil
}

func newDelegated(ctx context.Context, opts Options) (*Client, error) {
	auth := gauth.New()

	if _, err := auth.AuthenticateServiceAccount(ctx, opts.ServiceAccountPath, opts.ServiceAccountJSON); err != nil {
		return nil, err
	}

	svc, err := auth.Service(ctx)
	if err != nil {
		return nil, err
	}

	httpClient, err := auth.HTTPClient(ctx)
	if err != nil {
		return nil, err
	}

	return &Client{mode: delegatedMode{
		auth:       auth,
		svc:        svc,
		httpClient: httpClient,
	}}, nil
}

// FromServiceAccountFile builds a delegated-mode Client from a key file.
func FromServiceAccountFile(ctx context.Context, path string) (*Client, error) {
	return New(ctx, Options{ServiceAccountPath: path, UseServiceAccount: true})
}

// FromServiceAccountJSON builds a delegated-mode Client from raw key JSON.
func FromServiceAccountJSON(ctx context.Context, rawJSON string) (*Client, error) {
	return New(ctx, Options{ServiceAccountJSON: rawJSON, UseServiceAccount: true})
}

// Mode reports which mode the Client was constructed in.
func (c *Client) Mode() string {
	if _, ok := c.mode.(apiKeyMode); ok {
		return ModeAPIKey
	}

	return ModeDelegated
}

// IsAuthenticated reports whether the Client can issue calls: a held key
// in API-key mode, a valid credential in delegated mode.
func (c *Client) IsAuthenticated() bool {
	switch m := c.mode.(type) {
	case apiKeyMode:
		return m.key != ""
	case delegatedMode:
		return m.auth.IsAuthenticated()
	default:
		return false
	}
}

// GetForm fetches form metadata.
func (c *Client) GetForm(ctx context.Context, formID string) (*forms.Form, error) {
	switch m := c.mode.(type) {
	case apiKeyMode:
		var form forms.Form
		if err := m.getJSON(ctx, "get form", "forms/"+url.PathEscape(formID), &form); err != nil {
			return nil, err
		}

		return &form, nil
	case delegatedMode:
		form, err := m.svc.Forms.Get(formID).Context(ctx).Do()
		if err != nil {
			return nil, &RequestError{Op: "get form " + formID, Err: err, StatusCode: statusOf(err)}
		}

		return form, nil
	default:
		return nil, &ConfigurationError{msg: "client has no mode"}
	}
}

// FormList is the payload of a base-path forms listing.
type FormList struct {
	Forms         []*forms.Form `json:"forms"`
	NextPageToken string        `json:"nextPageToken"`
}

// ListForms lists forms. Delegated mode only; the public API keys this
// behind user credentials, so API-key mode fails without touching the
// network.
func (c *Client) ListForms(ctx context.Context) (*FormList, error) {
	d, ok := c.mode.(delegatedMode)
	if !ok {
		return nil, &UnsupportedOperationError{
			Op:     "list forms",
			Reason: "not available with API key authentication; use service account authentication",
		}
	}

	// The typed SDK exposes no Forms.List call; issue the GET against the
	// service base path with the same credentialed client.
	listURL := d.svc.BasePath + "v1/forms"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build list request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{Op: "list forms", URL: listURL, Err: err}
	}

	defer func() { _ = resp.Body.Close() }()

	if err := googleapi.CheckResponse(resp); err != nil {
		return nil, &RequestError{Op: "list forms", URL: listURL, StatusCode: resp.StatusCode, Err: err}
	}

	var list FormList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, &RequestError{Op: "list forms", URL: listURL, Err: fmt.Errorf("decode response: %w", err)}
	}

	return &list, nil
}

// GetFormResponses lists submitted responses for a form. Delegated mode
// only.
func (c *Client) GetFormResponses(ctx context.Context, formID string) (*forms.ListFormResponsesResponse, error) {
	d, ok := c.mode.(delegatedMode)
	if !ok {
		return nil, &UnsupportedOperationError{
			Op:     "get form responses",
			Reason: "not available with API key authentication; use service account authentication",
		}
	}

	resp, err := d.svc.Forms.Responses.List(formID).Context(ctx).Do()
	if err != nil {
		return nil, &RequestError{Op: "get responses for form " + formID, Err: err, StatusCode: statusOf(err)}
	}

	return resp, nil
}

// SubmitResponse always fails: the Forms API has no submission endpoint.
// The method exists so callers hit a clear error instead of a missing
// capability.
func (c *Client) SubmitResponse(string, map[string]any) error {
	return &UnsupportedOperationError{
		Op:     "submit response",
		Reason: "the Forms API offers no submission endpoint; use the public form URL",
	}
}

// getJSON issues one API-key GET and decodes the 2xx body into out.
func (m apiKeyMode) getJSON(ctx context.Context, op string, path string, out any) error {
	reqURL := m.baseURL + "/" + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	q := req.URL.Query()
	q.Set("key", m.key)
	req.URL.RawQuery = q.Encode()

	resp, err := m.httpClient.Do(req)
	if err != nil {
		// Report the URL without the key query parameter.
		return &RequestError{Op: op, URL: reqURL, Err: err}
	}

	defer func() { _ = resp.Body.Close() }()

	if err := googleapi.CheckResponse(resp); err != nil {
		return &RequestError{Op: op, URL: reqURL, StatusCode: resp.StatusCode, Err: err}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &RequestError{Op: op, URL: reqURL, Err: fmt.Errorf("decode response: %w", err)}
	}

	return nil
}

func statusOf(err error) int {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code
	}

	return 0
}
