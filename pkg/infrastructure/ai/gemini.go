package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	shared "github.com/risithcha/nutritrack/pkg"
)

const (
	DefaultModel     = "gemini-1.5-flash"
	defaultTemp      = 0.3
	defaultMaxTokens = 2048
)

// GeminiGenerator implements shared.Generator. One client is shared by every
// request; Close releases it.
type GeminiGenerator struct {
	client *genai.Client
	model  *genai.GenerativeModel
	logger *slog.Logger
}

func NewGeminiGenerator(ctx context.Context, apiKey, modelName string, logger *slog.Logger) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if modelName == "" {
		modelName = DefaultModel
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(defaultTemp)
	model.SetMaxOutputTokens(defaultMaxTokens)

	if logger == nil {
		logger = slog.Default()
	}
	return &GeminiGenerator{client: client, model: model, logger: logger}, nil
}

func (g *GeminiGenerator) Close() error {
	return g.client.Close()
}

func (g *GeminiGenerator) Generate(ctx context.Context, parts ...shared.PromptPart) (string, error) {
	genParts := make([]genai.Part, 0, len(parts))
	for _, p := range parts {
		if p.Image != nil {
			genParts = append(genParts, genai.Blob{MIMEType: p.Image.MIMEType, Data: p.Image.Data})
			continue
		}
		genParts = append(genParts, genai.Text(p.Text))
	}

	resp, err := g.model.GenerateContent(ctx, genParts...)
	if err != nil {
		return "", classify(ctx, err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", shared.NewInferenceError(shared.InferenceMalformed, fmt.Errorf("no content generated"))
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	g.logger.Debug("Gemini response", "chars", b.Len())
	return b.String(), nil
}

// classify maps client errors onto inference error kinds.
func classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return shared.NewInferenceError(shared.InferenceTimeout, err)
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch {
		case gerr.Code == http.StatusTooManyRequests:
			return shared.NewInferenceError(shared.InferenceQuotaExceeded, err)
		case gerr.Code == http.StatusBadRequest:
			return shared.NewInferenceError(shared.InferenceMalformed, err)
		}
		return shared.NewInferenceError(shared.InferenceNetwork, err)
	}

	switch status.Code(err) {
	case codes.ResourceExhausted:
		return shared.NewInferenceError(shared.InferenceQuotaExceeded, err)
	case codes.DeadlineExceeded:
		return shared.NewInferenceError(shared.InferenceTimeout, err)
	case codes.InvalidArgument:
		return shared.NewInferenceError(shared.InferenceMalformed, err)
	}
	return shared.NewInferenceError(shared.InferenceNetwork, err)
}

// Unconfigured stands in when no API key is set. Every call fails, which
// sends scans down the fallback path.
type Unconfigured struct{}

func (Unconfigured) Generate(ctx context.Context, parts ...shared.PromptPart) (string, error) {
	return "", shared.NewInferenceError(shared.InferenceNotConfigured, errors.New("GEMINI_API_KEY not set"))
}
