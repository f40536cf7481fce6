package auth

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/welldanyogia/webrana-inbox-viewer/internal/models"
)

const serviceName = "inbox-viewer"

// ErrNoSavedCredentials is returned by Load when nothing is stored
var ErrNoSavedCredentials = errors.New("no saved credentials")

// KeyringStore persists credentials in the system keyring, keyed by backend URL
type KeyringStore struct {
	backend string
}

// NewKeyringStore creates a KeyringStore for the given backend
func NewKeyringStore(backendURL string) *KeyringStore {
	return &KeyringStore{backend: backendURL}
}

// Save stores c
func (k *KeyringStore) Save(c models.Credentials) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}
	if err := keyring.Set(serviceName, k.backend, string(data)); err != nil {
		return fmt.Errorf("saving credentials for %s: %w", k.backend, err)
	}
	return nil
}

// Load returns previously saved credentials
func (k *KeyringStore) Load() (models.Credentials, error) {
	var c models.Credentials
	data, err := keyring.Get(serviceName, k.backend)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return c, ErrNoSavedCredentials
		}
		return c, fmt.Errorf("loading credentials for %s: %w", k.backend, err)
	}
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return c, fmt.Errorf("decoding credentials: %w", err)
	}
	return c, nil
}

// Delete removes saved credentials. Deleting nothing is not an error.
func (k *KeyringStore) Delete() error {
	if err := keyring.Delete(serviceName, k.backend); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("deleting credentials for %s: %w", k.backend, err)
	}
	return nil
}

// Restore loads saved credentials into store. It reports whether any were found.
func (k *KeyringStore) Restore(store *Store) (bool, error) {
	c, err := k.Load()
	if errors.Is(err, ErrNoSavedCredentials) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	store.SetCredentials(c)
	return true, nil
}
