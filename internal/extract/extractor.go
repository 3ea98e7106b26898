package extract

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"go-jobscraper/internal/ai"
	"go-jobscraper/internal/retry"
)

// ErrTerminalParse is matched by every extraction that ran out of attempts
// without a parseable answer.
var ErrTerminalParse = errors.New("model output never matched the schema")

// Config holds the settings shared by all extractors
type Config struct {
	Policy      retry.Policy
	Temperature float64
	Log         zerolog.Logger
}

// PromptBuilder renders the user prompt around the schema's format instructions
type PromptBuilder func(formatInstructions string) string

// Extractor runs one schema-guided extraction against the model, retrying
// answers that fail to parse.
type Extractor[T any] struct {
	client      ai.Completer
	schema      *Schema[T]
	policy      retry.Policy
	temperature float64
	log         zerolog.Logger
}

// NewExtractor builds an extractor. Only *ParseError is retried, whatever
// Retryable the configured policy carries.
func NewExtractor[T any](client ai.Completer, schema *Schema[T], cfg Config) *Extractor[T] {
	log := cfg.Log.With().Str("component", "extract").Str("schema", schema.Name()).Logger()

	policy := cfg.Policy
	policy.Retryable = IsParseError
	onRetry := policy.OnRetry
	policy.OnRetry = func(attempt int, err error, wait time.Duration) {
		log.Warn().Err(err).Int("attempt", attempt).Dur("wait", wait).Msg("unparseable model output, retrying")
		if onRetry != nil {
			onRetry(attempt, err, wait)
		}
	}

	return &Extractor[T]{
		client:      client,
		schema:      schema,
		policy:      policy,
		temperature: cfg.Temperature,
		log:         log,
	}
}

// Extract sends the prompt and returns the parsed record
func (e *Extractor[T]) Extract(ctx context.Context, build PromptBuilder) (T, error) {
	req := ai.CompletionRequest{
		System:      systemPrompt,
		User:        build(e.schema.FormatInstructions()),
		Temperature: e.temperature,
	}

	var out T
	err := e.policy.Do(ctx, func(ctx context.Context) error {
		raw, err := e.client.Complete(ctx, req)
		if err != nil {
			return err
		}
		parsed, err := e.schema.Parse(raw)
		if err != nil {
			return err
		}
		out = parsed
		return nil
	})
	if err != nil {
		var exhausted *retry.ExhaustedError
		if errors.As(err, &exhausted) {
			return out, fmt.Errorf("extract %s: %w: %w", e.schema.Name(), ErrTerminalParse, err)
		}
		return out, fmt.Errorf("extract %s: %w", e.schema.Name(), err)
	}
	return out, nil
}
