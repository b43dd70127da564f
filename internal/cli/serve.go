package cli

import (
	"context"

	"github.com/franckalain/fitplan/internal/logger"
	"github.com/franckalain/fitplan/internal/metrics"
	"github.com/franckalain/fitplan/internal/server"
	"github.com/franckalain/fitplan/internal/store"
	"golang.org/x/crypto/bcrypt"
)

type ServeCmd struct {
	Port string `help:"Override the configured port."`
}

func (cmd *ServeCmd) Run(ctx *Context) error {
	if cmd.Port != "" {
		ctx.Config.Server.Port = cmd.Port
	}
	if err := ctx.Config.CheckServe(); err != nil {
		return err
	}

	bg := context.Background()
	db, err := ctx.openDB(bg)
	if err != nil {
		return err
	}
	defer db.Close()

	model, err := ctx.loadModel(bg)
	if err != nil {
		return err
	}
	defer model.Close()

	gate, err := ctx.adminGate()
	if err != nil {
		return err
	}

	srv := server.New(
		model,
		store.NewAccounts(db, bcrypt.DefaultCost),
		store.NewHistory(db, ctx.Config.History.MaxRecords),
		gate,
		metrics.New(),
		server.Options{
			StaticDir:      ctx.Config.Server.StaticDir,
			AllowedOrigins: ctx.Config.Server.AllowedOrigins,
		},
	)
	logger.Info("fitplan ready", "model", ctx.Config.ML.Type, "db", ctx.Config.Database.DSN)
	return srv.Start(ctx.Config.Server.Port)
}
