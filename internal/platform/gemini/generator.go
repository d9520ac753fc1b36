package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"google.golang.org/genai"

	"github.com/slidesmith/slidesmith-api/internal/config"
	"github.com/slidesmith/slidesmith-api/internal/domain"
	"github.com/slidesmith/slidesmith-api/internal/generation"
)

// Generator implements generation.OutlineGenerator,
// generation.DescriptionGenerator and generation.ImageGenerator using
// Google's Gemini API.
type Generator struct {
	// logger is used for structured logging
	logger *slog.Logger

	// config contains LLM-specific configuration
	config config.LLMConfig

	// client is the Gemini API client for making requests
	client *genai.Client
}

// Interface conformance.
var (
	_ generation.OutlineGenerator     = (*Generator)(nil)
	_ generation.DescriptionGenerator = (*Generator)(nil)
	_ generation.ImageGenerator       = (*Generator)(nil)
)

// NewGenerator creates a new Generator with the provided dependencies.
// Returns generation.ErrInvalidConfig when required settings are
// missing.
func NewGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Generator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	if cfg.TextModelName == "" {
		return nil, fmt.Errorf("%w: text model name cannot be empty", generation.ErrInvalidConfig)
	}

	if cfg.ImageModelName == "" {
		return nil, fmt.Errorf("%w: image model name cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	return &Generator{
		logger: logger.With(slog.String("component", "gemini_generator")),
		config: cfg,
		client: client,
	}, nil
}

// GenerateOutline implements generation.OutlineGenerator.
// It asks the text model for a JSON outline and parses it into domain
// outline items.
func (g *Generator) GenerateOutline(ctx context.Context, ideaPrompt string) ([]domain.OutlineItem, error) {
	if ideaPrompt == "" {
		return nil, ErrEmptyPrompt
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(buildOutlinePrompt(ideaPrompt)),
		}, genai.RoleUser),
	}

	resp, err := g.callWithRetry(ctx, g.config.TextModelName, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, err
	}

	text := responseText(resp)
	if text == "" {
		return nil, fmt.Errorf("%w: empty outline response", generation.ErrInvalidResponse)
	}

	items, err := parseOutline(text)
	if err != nil {
		return nil, err
	}

	g.logger.InfoContext(ctx, "outline generated", "pages", len(items))
	return items, nil
}

// GenerateDescription implements generation.DescriptionGenerator.
func (g *Generator) GenerateDescription(ctx context.Context, item domain.OutlineItem, ideaPrompt string) (string, error) {
	if item.Title == "" {
		return "", ErrEmptyPrompt
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(buildDescriptionPrompt(item, ideaPrompt)),
		}, genai.RoleUser),
	}

	resp, err := g.callWithRetry(ctx, g.config.TextModelName, contents, nil)
	if err != nil {
		return "", err
	}

	text := responseText(resp)
	if text == "" {
		return "", fmt.Errorf("%w: empty description response", generation.ErrInvalidResponse)
	}

	return text, nil
}

// GenerateImage implements generation.ImageGenerator.
// The optional template image travels with the prompt so the model can
// match its style.
func (g *Generator) GenerateImage(ctx context.Context, req generation.ImageRequest) ([]byte, error) {
	if req.Item.Title == "" {
		return nil, ErrEmptyPrompt
	}

	parts := []*genai.Part{
		genai.NewPartFromText(buildImagePrompt(req)),
	}
	if len(req.TemplateImage) > 0 {
		parts = append(parts, genai.NewPartFromBytes(req.TemplateImage, "image/png"))
	}

	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	resp, err := g.callWithRetry(ctx, g.config.ImageModelName, contents, &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	})
	if err != nil {
		return nil, err
	}

	image := responseImage(resp)
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: %v", generation.ErrInvalidResponse, ErrNoImageData)
	}

	return image, nil
}

// callWithRetry makes a Gemini API call with exponential backoff retry
// logic. Transient errors (API failures) are retried up to
// config.MaxRetries times with jittered backoff; permanent errors
// (blocked content, malformed responses) are returned immediately.
func (g *Generator) callWithRetry(
	ctx context.Context,
	model string,
	contents []*genai.Content,
	genCfg *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	maxRetries := g.config.MaxRetries
	baseDelaySeconds := g.config.RetryDelaySeconds
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelaySeconds < 1 {
		baseDelaySeconds = 2
	}

	for attempt := 0; ; attempt++ {
		attemptNum := attempt + 1
		g.logger.DebugContext(ctx, "making Gemini API call",
			"model", model,
			"attempt", attemptNum,
			"max_attempts", maxRetries+1)

		resp, err := g.generateOnce(ctx, model, contents, genCfg)
		if err == nil {
			resp, err = validateResponse(resp)
		}
		if err == nil {
			return resp, nil
		}

		g.logger.WarnContext(ctx, "Gemini API call failed",
			"model", model,
			"attempt", attemptNum,
			"error", err)

		// Permanent errors are not retried.
		if errors.Is(err, generation.ErrContentBlocked) || errors.Is(err, generation.ErrInvalidResponse) {
			return nil, err
		}

		if attempt >= maxRetries {
			return nil, fmt.Errorf("%w: exceeded maximum retry attempts (%d): %v",
				generation.ErrTransientFailure, maxRetries, err)
		}

		// delay = baseDelay * 2^attempt * (0.5 + rand(0, 0.5))
		delay := backoffDelay(baseDelaySeconds, attempt, rng.Float64())
		g.logger.DebugContext(ctx, "retrying after delay",
			"attempt", attemptNum,
			"delay", delay)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", generation.ErrTransientFailure, ctx.Err())
		}
	}
}

// generateOnce performs a single API call bounded by the configured
// request timeout, so one stalled call cannot hold a worker-pool slot
// past the deadline.
func (g *Generator) generateOnce(
	ctx context.Context,
	model string,
	contents []*genai.Content,
	genCfg *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	if g.config.RequestTimeoutSec > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(g.config.RequestTimeoutSec)*time.Second)
		defer cancel()
	}

	resp, err := g.client.Models.GenerateContent(ctx, model, contents, genCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
	}
	return resp, nil
}

// validateResponse checks the structural validity of an API response
// and classifies safety blocks as permanent failures.
func validateResponse(resp *genai.GenerateContentResponse) (*genai.GenerateContentResponse, error) {
	if resp == nil {
		return nil, fmt.Errorf("%w: nil response", generation.ErrInvalidResponse)
	}
	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}
	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return nil, fmt.Errorf("%w: finish reason safety", generation.ErrContentBlocked)
	}
	if resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}
	return resp, nil
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	text := ""
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			text += part.Text
		}
	}
	return text
}

// responseImage returns the first inline image payload of the first
// candidate, or nil when the response carries none.
func responseImage(resp *genai.GenerateContentResponse) []byte {
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return part.InlineData.Data
		}
	}
	return nil
}

// backoffDelay computes the jittered exponential backoff delay for the
// given zero-based attempt. jitter must be in [0, 1).
func backoffDelay(baseDelaySeconds, attempt int, jitter float64) time.Duration {
	backoffSeconds := float64(baseDelaySeconds) * math.Pow(2, float64(attempt))
	jitterFactor := 0.5 + jitter*0.5
	return time.Duration(backoffSeconds * jitterFactor * float64(time.Second))
}
