package ml

import (
	"context"
	"fmt"
	"os"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"github.com/franckalain/fitplan/internal/logger"
	"github.com/franckalain/fitplan/internal/models"
	"github.com/franckalain/fitplan/internal/prompt"
	"google.golang.org/api/option"
)

const DefaultGoogleModel = "gemini-2.0-flash-001"

// GoogleConfig holds configuration for the Google model
type GoogleConfig struct {
	BaseConfig
	ProjectID       string `json:"project_id"`
	Location        string `json:"location"`
	CredentialsFile string `json:"credentials_file"`
	Model           string `json:"model"`
}

// Load loads the Google configuration
func (c *GoogleConfig) Load() error {
	if err := c.LoadConfig(c.ConfigPath, "google", c); err != nil {
		return err
	}

	// Fall back to environment variables if not set
	if c.ProjectID == "" {
		c.ProjectID = os.Getenv("GOOGLE_PROJECT_ID")
	}
	if c.Location == "" {
		c.Location = os.Getenv("GOOGLE_LOCATION")
	}
	if c.CredentialsFile == "" {
		c.CredentialsFile = os.Getenv("GOOGLE_CREDENTIALS_FILE")
	}
	if c.Model == "" {
		c.Model = os.Getenv("GOOGLE_MODEL")
	}
	if c.Model == "" {
		c.Model = DefaultGoogleModel
	}

	return nil
}

// GoogleModel implements the Model interface for Google's Vertex AI
type GoogleModel struct {
	config GoogleConfig
	client *genai.Client
}

// GoogleModelFactory implements ModelFactory for Google models
type GoogleModelFactory struct {
	config GoogleConfig
}

// NewGoogleModelFactory creates a new Google model factory
func NewGoogleModelFactory(config GoogleConfig) *GoogleModelFactory {
	return &GoogleModelFactory{config: config}
}

// CreateModel creates a new Google model instance
func (f *GoogleModelFactory) CreateModel() (Model, error) {
	return &GoogleModel{
		config: f.config,
	}, nil
}

// Load initializes the Google client
func (m *GoogleModel) Load(ctx context.Context) error {
	if m.config.ProjectID == "" || m.config.Location == "" {
		return fmt.Errorf("google project id and location are required")
	}

	opts := []option.ClientOption{}
	if m.config.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(m.config.CredentialsFile))
	}

	client, err := genai.NewClient(ctx, m.config.ProjectID, m.config.Location, opts...)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	m.client = client
	logger.Info("vertex ai client ready", "project", m.config.ProjectID, "location", m.config.Location, "model", m.config.Model)
	return nil
}

// Generate asks Gemini for a plan constrained to req.Schema.
func (m *GoogleModel) Generate(ctx context.Context, req prompt.Request) (*models.FitnessPlan, error) {
	if m.client == nil {
		return nil, newError(KindTransportFailure, fmt.Errorf("model not loaded"))
	}

	// GenerativeModel holds per-request config; one per call.
	model := m.client.GenerativeModel(m.config.Model)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = req.Schema

	logger.Debug("calling the model", "model", m.config.Model, "week", req.WeekNumber)
	resp, err := model.GenerateContent(ctx, genai.Text(req.Instruction))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, contextError(ctxErr, err)
		}
		return nil, newError(KindTransportFailure, fmt.Errorf("failed to call ai: %w", err))
	}

	return DecodePlan(responseText(resp), req.Schema)
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String()
}

func (m *GoogleModel) Close() error {
	if m.client == nil {
		return nil
	}
	return m.client.Close()
}
