package ml

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/franckalain/fitplan/internal/models"
	"github.com/franckalain/fitplan/internal/prompt"
)

// Model represents a plan generator backed by some language model
type Model interface {
	// Load initializes the model with its configuration
	Load(ctx context.Context) error
	// Generate sends one request and returns a schema-conformant plan.
	// Every call is a fresh round trip; nothing is cached.
	Generate(ctx context.Context, req prompt.Request) (*models.FitnessPlan, error)
	// Close releases the underlying client
	Close() error
}

// ModelFactory creates a new model instance based on configuration
type ModelFactory interface {
	// CreateModel creates a new model instance
	CreateModel() (Model, error)
}

// NewModel creates a new model instance based on the model type. configPath
// may be empty, in which case config/<type>.json and the environment are used.
func NewModel(modelType, configPath string) (Model, error) {
	var factory ModelFactory

	switch modelType {
	case "google":
		config := GoogleConfig{
			BaseConfig: BaseConfig{
				ConfigPath: configPath,
			},
		}
		if err := config.Load(); err != nil {
			return nil, fmt.Errorf("failed to load Google config: %w", err)
		}
		factory = NewGoogleModelFactory(config)
	case "local":
		config := LocalConfig{
			BaseConfig: BaseConfig{
				ConfigPath: configPath,
			},
		}
		if err := config.Load(); err != nil {
			return nil, fmt.Errorf("failed to load local config: %w", err)
		}
		factory = NewLocalModelFactory(config)
	default:
		return nil, fmt.Errorf("unsupported model type: %s", modelType)
	}
	return factory.CreateModel()
}

// timeoutModel bounds every Generate call and maps context errors onto
// Timeout and Canceled.
type timeoutModel struct {
	Model
	timeout time.Duration
}

// WithTimeout wraps m so each generation is limited to d. A non-positive d
// leaves the caller's context untouched but still classifies context errors.
func WithTimeout(m Model, d time.Duration) Model {
	return &timeoutModel{Model: m, timeout: d}
}

func (m *timeoutModel) Generate(ctx context.Context, req prompt.Request) (*models.FitnessPlan, error) {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	plan, err := m.Model.Generate(ctx, req)
	if err == nil {
		return plan, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, contextError(ctxErr, err)
	}
	return nil, err
}

func contextError(ctxErr, cause error) *GenerationError {
	if errors.Is(ctxErr, context.DeadlineExceeded) {
		return newError(KindTimeout, cause)
	}
	return newError(KindCanceled, cause)
}
