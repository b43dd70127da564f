package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/franckalain/fitplan/internal/models"
	"github.com/franckalain/fitplan/internal/prompt"
)

// GenerateCmd produces a single plan and prints it. Nothing is recorded.
type GenerateCmd struct {
	Profile string `help:"Path to a profile JSON file." required:"" type:"existingfile"`
	Week    int    `help:"Week number to generate." default:"1"`
}

func (cmd *GenerateCmd) Run(ctx *Context) error {
	data, err := os.ReadFile(cmd.Profile)
	if err != nil {
		return fmt.Errorf("failed to read profile: %w", err)
	}
	var profile models.UserProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return fmt.Errorf("failed to parse profile: %w", err)
	}

	req, err := prompt.Build(profile, cmd.Week)
	if err != nil {
		return err
	}

	bg := context.Background()
	model, err := ctx.loadModel(bg)
	if err != nil {
		return err
	}
	defer model.Close()

	plan, err := model.Generate(bg, req)
	if err != nil {
		return err
	}
	plan.WeekNumber = cmd.Week

	enc := json.NewEncoder(ctx.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(plan)
}
