package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/franckalain/fitplan/internal/cli"
	"github.com/franckalain/fitplan/internal/config"
	"github.com/franckalain/fitplan/internal/logger"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Path to the JSON config file. FITPLAN_* environment variables override it." default:"${config_path}"`
	Debug   bool   `help:"Enable debug logging."`

	Serve    cli.ServeCmd    `cmd:"" help:"Run the websocket server." default:"withargs"`
	Generate cli.GenerateCmd `cmd:"" help:"Generate one plan and print it as JSON."`
	Records  struct {
		List  cli.RecordsListCmd  `cmd:"" help:"List stored plan records." default:"1"`
		Clear cli.RecordsClearCmd `cmd:"" help:"Delete every stored record."`
	} `cmd:"" help:"Inspect the plan history."`
	Admin struct {
		SetPassphrase   cli.AdminSetPassphraseCmd   `cmd:"" help:"Store the admin passphrase in the OS keyring."`
		ClearPassphrase cli.AdminClearPassphraseCmd `cmd:"" help:"Remove the admin passphrase from the OS keyring."`
		Grant           cli.AdminGrantCmd           `cmd:"" help:"Give an account the admin role."`
	} `cmd:"" help:"Manage admin access."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("fitplan"),
		kong.Description("Weekly diet and training plan generator"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":     "v0.3.0",
			"config_path": config.GetConfigPath(),
		},
	)

	cfg, err := config.LoadConfig(CLI.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if CLI.Debug {
		cfg.Server.Debug = true
	}

	if err := logger.Init(logger.Config{Debug: cfg.Server.Debug, Dir: cfg.Server.LogDir}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if err := ctx.Run(&cli.Context{Config: cfg, Out: os.Stdout}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
