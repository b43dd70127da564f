// Package keyring keeps the admin passphrase hash in the OS keyring so it
// never has to live in a config file.
package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	service = "fitplan"
	account = "admin-passphrase-hash"
)

var (
	// ErrNotFound is returned when no hash has been stored
	ErrNotFound = errors.New("admin passphrase not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring cannot be reached
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// GetAdminHash returns the stored bcrypt hash of the admin passphrase.
func GetAdminHash() (string, error) {
	hash, err := keyring.Get(service, account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return hash, nil
}

func SetAdminHash(hash string) error {
	if hash == "" {
		return errors.New("admin passphrase hash cannot be empty")
	}
	if err := keyring.Set(service, account, hash); err != nil {
		return fmt.Errorf("failed to store admin passphrase in keyring: %w", err)
	}
	return nil
}

func DeleteAdminHash() error {
	err := keyring.Delete(service, account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete admin passphrase from keyring: %w", err)
	}
	return nil
}
