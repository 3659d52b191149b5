// Package secrets persists the OAuth token between runs.
//
// The default backend is a single JSON token file (the conventional
// token.json layout written by Google quickstarts). A keyring backend is
// available for machines where tokens must not sit on disk in the clear.
package secrets

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/99designs/keyring"
	"golang.org/x/oauth2"

	"github.com/Al3jandr032/gforms-go/internal/config"
)

// ErrTokenNotFound means the backend has no persisted token yet.
var ErrTokenNotFound = errors.New("token not found")

var errUnknownBackend = errors.New("unknown token backend")

type Store interface {
	Load() (*oauth2.Token, error)
	Save(tok *oauth2.Token) error
}

// Open selects the backend named by configuration.
func Open(cfg config.Config) (Store, error) {
	switch cfg.TokenBackend {
	case "", config.TokenBackendFile:
		return &FileStore{Path: cfg.TokenPath}, nil
	case config.TokenBackendKeyring:
		return OpenKeyring()
	default:
		return nil, fmt.Errorf("%w: %q (want %q or %q)",
			errUnknownBackend, cfg.TokenBackend, config.TokenBackendFile, config.TokenBackendKeyring)
	}
}

// FileStore reads and writes one token file.
type FileStore struct {
	Path string
}

func (s *FileStore) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.Path) //nolint:gosec // user-provided path
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrTokenNotFound, s.Path)
		}

		return nil, fmt.Errorf("read token file: %w", err)
	}

	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("parse token file: %w", err)
	}

	return &tok, nil
}

func (s *FileStore) Save(tok *oauth2.Token) error {
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}

	if err := os.WriteFile(s.Path, data, 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}

	return nil
}

const (
	keyringServiceName = "gforms"
	keyringTokenKey    = "oauth-token"
)

// KeyringStore keeps the token in the OS keyring.
type KeyringStore struct {
	ring keyring.Keyring
}

func OpenKeyring() (*KeyringStore, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: keyringServiceName,
	})
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}

	return &KeyringStore{ring: ring}, nil
}

func (s *KeyringStore) Load() (*oauth2.Token, error) {
	item, err := s.ring.Get(keyringTokenKey)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: keyring", ErrTokenNotFound)
		}

		return nil, fmt.Errorf("get token from keyring: %w", err)
	}

	var tok oauth2.Token
	if err := json.Unmarshal(item.Data, &tok); err != nil {
		return nil, fmt.Errorf("parse keyring token: %w", err)
	}

	return &tok, nil
}

func (s *KeyringStore) Save(tok *oauth2.Token) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}

	if err := s.ring.Set(keyring.Item{
		Key:   keyringTokenKey,
		Label: "gforms OAuth token",
		Data:  data,
	}); err != nil {
		return fmt.Errorf("set keyring token: %w", err)
	}

	return nil
}
