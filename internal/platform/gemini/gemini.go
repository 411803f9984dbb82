// Package gemini implements the generation.Generator interface using
// Google's Gemini API, with retry and circuit breaking around the calls.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"google.golang.org/genai"

	"github.com/recapd/recap-api/internal/config"
	"github.com/recapd/recap-api/internal/generation"
)

// breaker thresholds. The breaker trips after consecutiveFailureLimit
// consecutive API failures and probes again after breakerCooldown.
const (
	consecutiveFailureLimit = 5
	breakerCooldown         = 2 * time.Minute
)

// ContentGenerator implements the generation.Generator interface using
// Google's Gemini API to generate learning content from a prompt.
type ContentGenerator struct {
	logger *slog.Logger

	// client is the Gemini API client for making requests
	client *genai.Client

	// model is the name of the Gemini model to use
	model string

	// maxRetries bounds the retry loop around transient API failures
	maxRetries int

	// breaker stops calls to the API after repeated failures
	breaker *gobreaker.CircuitBreaker
}

// NewContentGenerator creates a new ContentGenerator with the provided
// configuration. Returns an error wrapping generation.ErrInvalidConfig if
// the configuration is incomplete.
func NewContentGenerator(
	ctx context.Context,
	logger *slog.Logger,
	cfg config.LLMConfig,
) (*ContentGenerator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "gemini",
		Timeout: breakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= consecutiveFailureLimit
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String())
		},
	})

	return &ContentGenerator{
		logger:     logger,
		client:     client,
		model:      cfg.ModelName,
		maxRetries: cfg.MaxRetries,
		breaker:    breaker,
	}, nil
}

// Generate produces content for the given prompt. Transient API failures are
// retried with exponential backoff up to the configured limit; permanent
// failures (blocked content, malformed responses) abort immediately. The
// provider's error text is preserved in the returned error so callers can
// classify failures later.
func (g *ContentGenerator) Generate(
	ctx context.Context,
	prompt string,
	customerID uuid.UUID,
) (string, error) {
	if prompt == "" {
		return "", fmt.Errorf("%w: prompt cannot be empty", generation.ErrGenerationFailed)
	}

	var result string
	attempt := 0

	operation := func() error {
		attempt++
		g.logger.DebugContext(ctx, "calling gemini api",
			"model", g.model,
			"customer_id", customerID,
			"attempt", attempt)

		text, err := g.callOnce(ctx, prompt)
		if err != nil {
			return err
		}
		result = text
		return nil
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(g.maxRetries)),
		ctx,
	)

	if err := backoff.Retry(operation, bo); err != nil {
		g.logger.ErrorContext(ctx, "gemini api call failed",
			"customer_id", customerID,
			"attempts", attempt,
			"error", err)
		return "", err
	}

	return result, nil
}

// callOnce performs a single API call through the circuit breaker and
// classifies the outcome for the retry loop.
func (g *ContentGenerator) callOnce(ctx context.Context, prompt string) (string, error) {
	out, err := g.breaker.Execute(func() (interface{}, error) {
		return g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			// No point retrying while the breaker is open.
			return "", backoff.Permanent(fmt.Errorf("generate: %w", err))
		}
		// API errors are assumed transient; the message carries the
		// provider's reason.
		return "", fmt.Errorf("gemini api call failed: %w", err)
	}

	resp, ok := out.(*genai.GenerateContentResponse)
	if !ok || resp == nil {
		return "", backoff.Permanent(fmt.Errorf("%w: nil response", generation.ErrInvalidResponse))
	}

	text, err := extractText(resp)
	if err != nil {
		return "", backoff.Permanent(err)
	}

	return text, nil
}

// extractText pulls the generated text out of an API response, rejecting
// blocked or empty results.
func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: content blocked by safety filters", generation.ErrContentBlocked)
	}

	if candidate.Content == nil {
		return "", fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	text := ""
	for _, part := range candidate.Content.Parts {
		if part != nil {
			text += part.Text
		}
	}

	if text == "" {
		return "", fmt.Errorf("%w: empty text in response", generation.ErrInvalidResponse)
	}

	return text, nil
}

var _ generation.Generator = (*ContentGenerator)(nil)
