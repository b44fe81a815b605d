// Package session owns the process-wide authentication state: a file-backed
// bearer token store and the read-only view of the token's claims. Only the
// login and logout flows mutate the store; every API call consumes it.
package session

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// ErrNoToken indicates no session token is stored.
var ErrNoToken = errors.New("no session token stored")

// Store persists the bearer token across invocations.
type Store struct {
	path   string
	logger zerolog.Logger
}

// NewStore constructs a token store rooted at path.
func NewStore(path string, logger zerolog.Logger) *Store {
	return &Store{
		path:   path,
		logger: logger.With().Str("component", "session_store").Logger(),
	}
}

// Token returns the stored bearer token, or ErrNoToken when absent.
func (s *Store) Token() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoToken
		}
		return "", err
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// Save writes the token, creating the parent directory when needed.
func (s *Store) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return err
	}
	s.logger.Debug().Msg("session token saved")
	return nil
}

// Clear removes the stored token. Clearing an empty store is not an error.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	s.logger.Debug().Msg("session token cleared")
	return nil
}
