package keyring

import (
	"errors"
	"testing"

	gokeyring "github.com/zalando/go-keyring"
)

func TestSetAndGetAdminHash(t *testing.T) {
	gokeyring.MockInit()

	const hash = "$2a$10$abcdefghijklmnopqrstuv"
	if err := SetAdminHash(hash); err != nil {
		t.Fatalf("SetAdminHash() failed: %v", err)
	}
	got, err := GetAdminHash()
	if err != nil {
		t.Fatalf("GetAdminHash() failed: %v", err)
	}
	if got != hash {
		t.Errorf("GetAdminHash() = %q, want %q", got, hash)
	}
}

func TestSetAdminHashEmpty(t *testing.T) {
	gokeyring.MockInit()
	if err := SetAdminHash(""); err == nil {
		t.Error("SetAdminHash(\"\") should return an error")
	}
}

func TestDeleteAdminHash(t *testing.T) {
	gokeyring.MockInit()

	if err := SetAdminHash("hash"); err != nil {
		t.Fatalf("SetAdminHash() failed: %v", err)
	}
	if err := DeleteAdminHash(); err != nil {
		t.Fatalf("DeleteAdminHash() failed: %v", err)
	}
	if _, err := GetAdminHash(); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetAdminHash() error = %v, want %v", err, ErrNotFound)
	}
	if err := DeleteAdminHash(); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteAdminHash() error = %v, want %v", err, ErrNotFound)
	}
}
