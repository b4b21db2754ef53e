// Package auth resolves Basecamp credentials from tool arguments, request
// headers, the environment, configuration and the OS keyring, and turns
// them into an oauth2 token source.
package auth

// file: internal/auth/store.go

import (
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/camptools/internal/logging"
	"github.com/zalando/go-keyring"
)

const (
	keyringService = "camptools"
	keyringUser    = "basecamp"
)

// Record is what the keyring holds.
type Record struct {
	AccountID    string    `json:"account_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TokenStore persists one Record.
type TokenStore interface {
	// Load returns nil, nil when nothing is stored.
	Load() (*Record, error)
	Save(rec Record) error
	Delete() error
}

// KeyringStore keeps the record in the OS keychain.
type KeyringStore struct {
	logger logging.Logger
}

var _ TokenStore = (*KeyringStore)(nil)

// NewKeyringStore creates a keyring-backed store.
func NewKeyringStore(logger logging.Logger) *KeyringStore {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	return &KeyringStore{logger: logger.WithField("component", "keyring_store")}
}

// IsAvailable reports whether the keyring can be reached.
func (s *KeyringStore) IsAvailable() bool {
	_, err := keyring.Get(keyringService, keyringUser)
	if err == nil || errors.Is(err, keyring.ErrNotFound) {
		return true
	}
	s.logger.Warn("Keyring service is inaccessible.", "error", err)
	return false
}

// Load reads the stored record.
func (s *KeyringStore) Load() (*Record, error) {
	raw, err := keyring.Get(keyringService, keyringUser)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			s.logger.Debug("No credentials in keyring.")
			return nil, nil
		}
		return nil, errors.Wrap(err, "reading credentials from keyring")
	}
	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		s.logger.Error("Keyring entry is corrupted, deleting it.", "error", err)
		_ = s.Delete()
		return nil, errors.Wrap(err, "parsing credentials from keyring")
	}
	return &rec, nil
}

// Save writes rec, replacing any previous record.
func (s *KeyringStore) Save(rec Record) error {
	if rec.AccessToken == "" {
		return errors.New("cannot save empty access token to keyring")
	}
	rec.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "encoding credentials")
	}
	if err := keyring.Set(keyringService, keyringUser, string(data)); err != nil {
		return errors.WithHint(errors.Wrap(err, "saving credentials to keyring"),
			"On macOS, check that the login keychain is unlocked.")
	}
	s.logger.Info("Credentials saved to keyring.", "account_id", rec.AccountID)
	return nil
}

// Delete removes the record. Deleting nothing is not an error.
func (s *KeyringStore) Delete() error {
	if err := keyring.Delete(keyringService, keyringUser); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil
		}
		return errors.Wrap(err, "deleting credentials from keyring")
	}
	s.logger.Info("Credentials deleted from keyring.")
	return nil
}
