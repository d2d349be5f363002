package knowledge

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/core/api"
)

// flakyEmbedder fails the first failCount calls, then succeeds.
type flakyEmbedder struct {
	failCount int
	calls     int
}

func (f *flakyEmbedder) Name() string            { return "mock/flaky" }
func (f *flakyEmbedder) Register(_ api.Registry) {}

func (f *flakyEmbedder) Embed(_ context.Context, _ *ai.EmbedRequest) (*ai.EmbedResponse, error) {
	f.calls++
	if f.calls <= f.failCount {
		return nil, errors.New("transient failure")
	}
	return &ai.EmbedResponse{
		Embeddings: []*ai.Embedding{{Embedding: []float32{0.1, 0.2}}},
	}, nil
}

func newTestRetryEmbedder(inner ai.Embedder) *RetryEmbedder {
	r := NewRetryEmbedder(inner, nopLogger())
	r.interval = time.Millisecond // keep tests fast
	return r
}

func TestRetryEmbedderSucceedsFirstTry(t *testing.T) {
	inner := &flakyEmbedder{failCount: 0}
	r := newTestRetryEmbedder(inner)

	resp, err := r.Embed(context.Background(), &ai.EmbedRequest{
		Input: []*ai.Document{ai.DocumentFromText("hello", nil)},
	})
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(resp.Embeddings) != 1 {
		t.Fatalf("embeddings = %d, want 1", len(resp.Embeddings))
	}
	if inner.calls != 1 {
		t.Errorf("calls = %d, want 1", inner.calls)
	}
}

func TestRetryEmbedderRecoversFromTransientFailures(t *testing.T) {
	inner := &flakyEmbedder{failCount: 2}
	r := newTestRetryEmbedder(inner)

	_, err := r.Embed(context.Background(), &ai.EmbedRequest{
		Input: []*ai.Document{ai.DocumentFromText("hello", nil)},
	})
	if err != nil {
		t.Fatalf("Embed() error = %v, want success on third attempt", err)
	}
	if inner.calls != 3 {
		t.Errorf("calls = %d, want 3", inner.calls)
	}
}

func TestRetryEmbedderExhaustsRetries(t *testing.T) {
	inner := &flakyEmbedder{failCount: 10}
	r := newTestRetryEmbedder(inner)

	_, err := r.Embed(context.Background(), &ai.EmbedRequest{
		Input: []*ai.Document{ai.DocumentFromText("hello", nil)},
	})
	if err == nil {
		t.Fatal("Embed() expected error after exhausting retries")
	}
	// 1 initial attempt + embedMaxRetries retries
	if inner.calls != embedMaxRetries+1 {
		t.Errorf("calls = %d, want %d", inner.calls, embedMaxRetries+1)
	}
	if !strings.Contains(err.Error(), "embedding failed after") {
		t.Errorf("error = %v, want exhaustion message", err)
	}
}

// emptyEmbedder returns a well-formed response with no embeddings.
type emptyEmbedder struct {
	calls int
}

func (e *emptyEmbedder) Name() string            { return "mock/empty" }
func (e *emptyEmbedder) Register(_ api.Registry) {}

func (e *emptyEmbedder) Embed(_ context.Context, _ *ai.EmbedRequest) (*ai.EmbedResponse, error) {
	e.calls++
	return &ai.EmbedResponse{}, nil
}

func TestRetryEmbedderTreatsEmptyResponseAsError(t *testing.T) {
	inner := &emptyEmbedder{}
	r := newTestRetryEmbedder(inner)

	_, err := r.Embed(context.Background(), &ai.EmbedRequest{
		Input: []*ai.Document{ai.DocumentFromText("hello", nil)},
	})
	if err == nil {
		t.Fatal("Embed() expected error for empty embeddings")
	}
	if inner.calls != embedMaxRetries+1 {
		t.Errorf("calls = %d, want %d (empty response should be retried)", inner.calls, embedMaxRetries+1)
	}
}

func TestRetryEmbedderRespectsContextCancellation(t *testing.T) {
	inner := &flakyEmbedder{failCount: 10}
	r := NewRetryEmbedder(inner, nopLogger())
	r.interval = 10 * time.Second // would block without cancellation

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Embed(ctx, &ai.EmbedRequest{
		Input: []*ai.Document{ai.DocumentFromText("hello", nil)},
	})
	if err == nil {
		t.Fatal("Embed() expected error with cancelled context")
	}
	if inner.calls > 1 {
		t.Errorf("calls = %d, want at most 1 with cancelled context", inner.calls)
	}
}

func TestEmbedText(t *testing.T) {
	embedder := &mockEmbedder{vector: []float32{0.7, 0.8}}

	vec, err := EmbedText(context.Background(), embedder, "some text")
	if err != nil {
		t.Fatalf("EmbedText() error = %v", err)
	}
	if len(vec) != 2 || vec[0] != 0.7 {
		t.Errorf("vec = %v, want [0.7 0.8]", vec)
	}
}

func TestEmbedTextNoEmbeddings(t *testing.T) {
	embedder := &emptyEmbedder{}

	_, err := EmbedText(context.Background(), embedder, "some text")
	if err == nil {
		t.Fatal("EmbedText() expected error for empty response")
	}
}
