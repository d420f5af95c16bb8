// Package auth stores session tokens in the OS keychain/credential manager.
package auth

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	service = "socivio-cli"
)

// getKeyringKey returns a unique key for storing session tokens per server
func getKeyringKey(serverURL string) string {
	return fmt.Sprintf("session-%s", serverURL)
}

// SaveToken persists the session token securely in the OS keychain
func SaveToken(serverURL, token string) error {
	key := getKeyringKey(serverURL)
	if err := keyring.Set(service, key, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// LoadToken retrieves the session token from the OS keychain. Returns
// ("", nil) when no token is stored.
func LoadToken(serverURL string) (string, error) {
	key := getKeyringKey(serverURL)
	token, err := keyring.Get(service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	return token, nil
}

// DeleteToken removes the session token from the OS keychain
func DeleteToken(serverURL string) error {
	key := getKeyringKey(serverURL)
	if err := keyring.Delete(service, key); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// KeyringStore persists tokens for one server in the OS keychain. It
// satisfies the session store's token persistence contract.
type KeyringStore struct {
	serverURL string
}

// NewKeyringStore creates a token store scoped to one server URL
func NewKeyringStore(serverURL string) *KeyringStore {
	return &KeyringStore{serverURL: serverURL}
}

func (k *KeyringStore) SaveToken(token string) error {
	return SaveToken(k.serverURL, token)
}

func (k *KeyringStore) LoadToken() (string, error) {
	return LoadToken(k.serverURL)
}

func (k *KeyringStore) DeleteToken() error {
	return DeleteToken(k.serverURL)
}
