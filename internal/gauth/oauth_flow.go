package gauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"time"

	"golang.org/x/oauth2"
)

// consentFlowTimeout bounds how long we wait for the user to finish the
// browser consent step.
const consentFlowTimeout = 2 * time.Minute

var (
	errAuthorization  = errors.New("authorization error")
	errMissingCode    = errors.New("missing authorization code")
	errStateMismatch  = errors.New("state mismatch")
	errFlowCanceled   = errors.New("authorization canceled")
	errNoRefreshToken = errors.New("no refresh token received")
)

// Stub points for tests.
var (
	runConsentFlow = consentFlow
	openBrowserFn  = openBrowser
	randomStateFn  = randomState
)

// consentFlow runs the installed-app flow on a loopback listener: open
// the consent URL in a browser, catch the redirect, exchange the code.
func consentFlow(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
	state, err := randomStateFn()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, consentFlowTimeout)
	defer cancel()

	ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("listen for callback: %w", err)
	}

	defer func() { _ = ln.Close() }()

	port := ln.Addr().(*net.TCPAddr).Port
	cfg.RedirectURL = fmt.Sprintf("http://127.0.0.1:%d/oauth2/callback", port)

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	srv := &http.Server{
		ReadHeaderTimeout: 5 * time.Second,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/oauth2/callback" {
				http.NotFound(w, r)
				return
			}
			q := r.URL.Query()

			w.Header().Set("Content-Type", "text/plain; charset=utf-8")

			if q.Get("error") != "" {
				select {
				case errCh <- fmt.Errorf("%w: %s", errAuthorization, q.Get("error")):
				default:
				}

				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte("Authorization cancelled. You can close this window.\n"))

				return
			}

			if q.Get("state") != state {
				select {
				case errCh <- errStateMismatch:
				default:
				}

				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte("State mismatch. Please try again.\n"))

				return
			}

			code := q.Get("code")
			if code == "" {
				select {
				case errCh <- errMissingCode:
				default:
				}

				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte("Missing authorization code. Please try again.\n"))

				return
			}

			select {
			case codeCh <- code:
			default:
			}

			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("Authorized. You can close this window.\n"))
		}),
	}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	go func() {
		if serveErr := srv.Serve(ln); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			select {
			case errCh <- serveErr:
			default:
			}
		}
	}()

	authURL := cfg.AuthCodeURL(state, oauth2.AccessTypeOffline)

	fmt.Fprintln(os.Stderr, "Opening browser for authorization…")
	fmt.Fprintln(os.Stderr, "If the browser doesn't open, visit this URL:")
	fmt.Fprintln(os.Stderr, authURL)
	_ = openBrowserFn(authURL)

	select {
	case code := <-codeCh:
		tok, exchangeErr := cfg.Exchange(ctx, code)
		if exchangeErr != nil {
			_ = srv.Close()

			return nil, fmt.Errorf("exchange code: %w", exchangeErr)
		}

		if tok.RefreshToken == "" {
			_ = srv.Close()

			return nil, errNoRefreshToken
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 2*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)

		return tok, nil
	case flowErr := <-errCh:
		_ = srv.Close()
		return nil, flowErr
	case <-ctx.Done():
		_ = srv.Close()

		return nil, fmt.Errorf("%w: %w", errFlowCanceled, ctx.Err())
	}
}

func randomState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}

func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
