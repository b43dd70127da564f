package store

import (
	"fmt"

	"github.com/franckalain/fitplan/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// AdminGate authorizes access to the record viewer. It accepts either the
// shared admin passphrase or an account carrying the admin role.
type AdminGate struct {
	hash []byte
}

// NewAdminGate takes a bcrypt hash of the passphrase. An empty hash disables
// passphrase access; admin-role accounts still pass.
func NewAdminGate(passphraseHash string) *AdminGate {
	return &AdminGate{hash: []byte(passphraseHash)}
}

// HashPassphrase returns the bcrypt hash to store for an admin passphrase.
func HashPassphrase(passphrase string) (string, error) {
	if passphrase == "" {
		return "", fmt.Errorf("%w: passphrase must not be empty", ErrInvalidInput)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(passphrase), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return string(hash), nil
}

func (g *AdminGate) Enabled() bool {
	return g != nil && len(g.hash) > 0
}

// Authorize checks a passphrase.
func (g *AdminGate) Authorize(passphrase string) error {
	if !g.Enabled() {
		return ErrAdminDisabled
	}
	if bcrypt.CompareHashAndPassword(g.hash, []byte(passphrase)) != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// AuthorizeUser lets admin-role accounts in without the passphrase.
func (g *AdminGate) AuthorizeUser(u models.User) error {
	if u.IsAdmin() {
		return nil
	}
	return ErrInvalidCredentials
}
