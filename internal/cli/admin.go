package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/franckalain/fitplan/internal/keyring"
	"github.com/franckalain/fitplan/internal/models"
	"github.com/franckalain/fitplan/internal/store"
)

// AdminSetPassphraseCmd stores a bcrypt hash of the passphrase in the OS keyring
type AdminSetPassphraseCmd struct {
	Passphrase string `arg:"" help:"Admin passphrase."`
}

func (cmd *AdminSetPassphraseCmd) Run(ctx *Context) error {
	hash, err := store.HashPassphrase(cmd.Passphrase)
	if err != nil {
		return err
	}
	if err := keyring.SetAdminHash(hash); err != nil {
		return err
	}
	fmt.Fprintln(ctx.Out, "Admin passphrase stored in OS keyring.")
	return nil
}

type AdminClearPassphraseCmd struct{}

func (cmd *AdminClearPassphraseCmd) Run(ctx *Context) error {
	if err := keyring.DeleteAdminHash(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no admin passphrase found in keyring")
		}
		return err
	}
	fmt.Fprintln(ctx.Out, "Admin passphrase removed from OS keyring.")
	return nil
}

// AdminGrantCmd gives an account the admin role.
type AdminGrantCmd struct {
	Email  string `arg:"" help:"Email of the account."`
	Revoke bool   `help:"Remove the admin role instead."`
}

func (cmd *AdminGrantCmd) Run(ctx *Context) error {
	bg := context.Background()
	db, err := ctx.openDB(bg)
	if err != nil {
		return err
	}
	defer db.Close()

	role := models.RoleAdmin
	if cmd.Revoke {
		role = models.RoleUser
	}
	if err := store.NewAccounts(db, 0).SetRole(bg, cmd.Email, role); err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "%s is now %s.\n", cmd.Email, role)
	return nil
}
