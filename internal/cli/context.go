// Package cli holds the fitplan subcommands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/franckalain/fitplan/internal/config"
	"github.com/franckalain/fitplan/internal/database"
	"github.com/franckalain/fitplan/internal/keyring"
	"github.com/franckalain/fitplan/internal/logger"
	"github.com/franckalain/fitplan/internal/ml"
	"github.com/franckalain/fitplan/internal/store"
)

// Context is passed to every command's Run method.
type Context struct {
	Config *config.Config
	Out    io.Writer
}

func (c *Context) openDB(ctx context.Context) (database.DB, error) {
	db, err := database.Open(ctx, c.Config.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", c.Config.Database.DSN, err)
	}
	return db, nil
}

// loadModel creates, loads and time-bounds the configured generator.
func (c *Context) loadModel(ctx context.Context) (ml.Model, error) {
	model, err := ml.NewModel(c.Config.ML.Type, c.Config.ML.ConfigPath)
	if err != nil {
		return nil, err
	}
	if err := model.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load %s model: %w", c.Config.ML.Type, err)
	}
	return ml.WithTimeout(model, c.Config.GenerationTimeout()), nil
}

// adminGate resolves the admin passphrase: FITPLAN_ADMIN_PASSPHRASE first,
// then the configured hash, then the OS keyring. With none of them only
// admin-role accounts can open the record viewer.
func (c *Context) adminGate() (*store.AdminGate, error) {
	if c.Config.Admin.Passphrase != "" {
		hash, err := store.HashPassphrase(c.Config.Admin.Passphrase)
		if err != nil {
			return nil, err
		}
		return store.NewAdminGate(hash), nil
	}
	if c.Config.Admin.PassphraseHash != "" {
		return store.NewAdminGate(c.Config.Admin.PassphraseHash), nil
	}

	hash, err := keyring.GetAdminHash()
	switch {
	case err == nil:
		return store.NewAdminGate(hash), nil
	case errors.Is(err, keyring.ErrNotFound):
		logger.Warn("no admin passphrase configured; passphrase login disabled")
	default:
		logger.Warn("could not read admin passphrase from keyring", "error", err)
	}
	return store.NewAdminGate(""), nil
}
