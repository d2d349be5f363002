package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/core/api"
	"github.com/jackc/pgx/v5/pgtype"
)

// Retry policy for embedding calls: up to 3 attempts total, exponential
// backoff starting at 2 seconds (2s, 4s between attempts). After
// exhaustion the last error propagates; no fallback vector is synthesized.
const (
	embedMaxRetries      = 2 // retries after the first attempt
	embedInitialInterval = 2 * time.Second
)

// RetryEmbedder wraps an ai.Embedder with bounded exponential-backoff
// retries. Transient provider failures (non-2xx responses, malformed
// payloads) are retried; context cancellation aborts immediately.
type RetryEmbedder struct {
	inner  ai.Embedder
	logger *slog.Logger

	// interval overrides the initial backoff interval (tests only).
	interval time.Duration
}

// NewRetryEmbedder wraps embedder with the retry policy.
// logger may be nil (defaults to slog.Default()).
func NewRetryEmbedder(embedder ai.Embedder, logger *slog.Logger) *RetryEmbedder {
	if logger == nil {
		logger = slog.Default()
	}
	return &RetryEmbedder{
		inner:    embedder,
		logger:   logger,
		interval: embedInitialInterval,
	}
}

// Name implements ai.Embedder.
func (r *RetryEmbedder) Name() string {
	return r.inner.Name()
}

// Register implements ai.Embedder.
func (r *RetryEmbedder) Register(reg api.Registry) {
	r.inner.Register(reg)
}

// Embed calls the wrapped embedder, retrying on any error.
// A response with no embeddings counts as a provider error and is retried.
func (r *RetryEmbedder) Embed(ctx context.Context, req *ai.EmbedRequest) (*ai.EmbedResponse, error) {
	var resp *ai.EmbedResponse
	attempt := 0

	operation := func() error {
		attempt++
		var err error
		resp, err = r.inner.Embed(ctx, req)
		if err != nil {
			r.logger.Warn("embedding attempt failed", "attempt", attempt, "error", err)
			return err
		}
		if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Embedding) == 0 {
			err = fmt.Errorf("provider returned no embedding")
			r.logger.Warn("embedding attempt failed", "attempt", attempt, "error", err)
			return err
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = r.interval
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxElapsedTime = 0 // bounded by attempt count, not wall clock

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(bo, embedMaxRetries), ctx))
	if err != nil {
		return nil, fmt.Errorf("embedding failed after %d attempts: %w", attempt, err)
	}
	return resp, nil
}

// EmbedText embeds a single text and returns the raw vector.
func EmbedText(ctx context.Context, embedder ai.Embedder, text string) ([]float32, error) {
	resp, err := embedder.Embed(ctx, &ai.EmbedRequest{
		Input: []*ai.Document{
			ai.DocumentFromText(text, nil),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("embed failed: %w", err)
	}

	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Embedding) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}

	return resp.Embeddings[0].Embedding, nil
}

// toTimestamptz converts time.Time to pgtype.Timestamptz.
// A zero time maps to NULL so the database default applies.
func toTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: !t.IsZero()}
}

// fromTimestamptz converts pgtype.Timestamptz to time.Time (zero if NULL).
func fromTimestamptz(ts pgtype.Timestamptz) time.Time {
	if !ts.Valid {
		return time.Time{}
	}
	return ts.Time
}
