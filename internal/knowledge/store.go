package knowledge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/pgvector/pgvector-go"
)

// searchTimeout bounds a single vector search (embedding + query) so a slow
// provider or query cannot block the request indefinitely.
const searchTimeout = 10 * time.Second

// Querier defines the database operations the store needs.
// Interfaces are defined by the consumer, not the provider (like
// http.RoundTripper, io.Reader); this keeps the store testable with mocks.
type Querier interface {
	// UpsertEntry inserts or updates an entry
	UpsertEntry(ctx context.Context, arg UpsertEntryParams) error

	// SearchSimilar performs threshold-bounded vector search
	SearchSimilar(ctx context.Context, arg SearchSimilarParams) ([]SearchSimilarRow, error)

	// SearchKeyword performs case-insensitive substring search
	SearchKeyword(ctx context.Context, arg SearchKeywordParams) ([]EntryRow, error)

	// ListByCategory fetches entries of one category
	ListByCategory(ctx context.Context, arg ListByCategoryParams) ([]EntryRow, error)

	// ListRecent fetches the newest entries
	ListRecent(ctx context.Context, limit int32) ([]EntryRow, error)

	// CountEntries counts all entries
	CountEntries(ctx context.Context) (int64, error)

	// DeleteEntry deletes an entry by ID
	DeleteEntry(ctx context.Context, id string) error
}

// Store manages knowledge entries with vector search capabilities.
// It handles embedding generation and similarity search using
// PostgreSQL + pgvector.
//
// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	queries  Querier
	embedder ai.Embedder
	logger   *slog.Logger
}

// New creates a new Store instance.
// logger may be nil (defaults to slog.Default()).
func New(querier Querier, embedder ai.Embedder, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{
		queries:  querier,
		embedder: embedder,
		logger:   logger,
	}
}

// Add adds an entry to the knowledge store.
// The entry's content is embedded using the configured embedder; upsert
// semantics handle both inserts and re-seeds.
func (s *Store) Add(ctx context.Context, entry Entry) error {
	vec, err := EmbedText(ctx, s.embedder, entry.Content)
	if err != nil {
		return fmt.Errorf("failed to generate embedding for entry %q: %w", entry.ID, err)
	}

	embedding := pgvector.NewVector(vec)

	err = s.queries.UpsertEntry(ctx, UpsertEntryParams{
		ID:        entry.ID,
		Title:     entry.Title,
		Content:   entry.Content,
		Source:    entry.Source,
		Category:  entry.Category,
		Tags:      entry.Tags,
		Embedding: &embedding,
		CreatedAt: toTimestamptz(entry.CreatedAt),
	})
	if err != nil {
		return fmt.Errorf("failed to upsert entry %q: %w", entry.ID, err)
	}

	s.logger.Debug("added knowledge entry", "id", entry.ID, "category", entry.Category, "content_length", len(entry.Content))
	return nil
}

// Embed converts query text to an embedding vector.
// The retrieval pipeline calls this once per distinct term and reuses the
// vector across threshold relaxation steps.
func (s *Store) Embed(ctx context.Context, text string) ([]float32, error) {
	embedCtx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	vec, err := EmbedText(embedCtx, s.embedder, text)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("embedding generation timeout: %w", err)
		}
		return nil, fmt.Errorf("failed to generate query embedding: %w", err)
	}
	return vec, nil
}

// SearchVector performs semantic search: embeds the query and returns
// entries whose cosine similarity meets the threshold, best match first.
func (s *Store) SearchVector(ctx context.Context, query string, threshold float32, limit int32) ([]Result, error) {
	vec, err := s.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.SearchByVector(ctx, vec, threshold, limit)
}

// SearchByVector runs threshold-bounded cosine similarity search with a
// pre-computed query embedding.
func (s *Store) SearchByVector(ctx context.Context, vec []float32, threshold float32, limit int32) ([]Result, error) {
	queryCtx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	queryEmbedding := pgvector.NewVector(vec)

	rows, err := s.queries.SearchSimilar(queryCtx, SearchSimilarParams{
		QueryEmbedding: &queryEmbedding,
		Threshold:      threshold,
		ResultLimit:    limit,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("search query timeout: %w", err)
		}
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	results := make([]Result, 0, len(rows))
	for _, row := range rows {
		results = append(results, Result{
			Entry: Entry{
				ID:        row.ID,
				Title:     row.Title,
				Content:   row.Content,
				Source:    row.Source,
				Category:  row.Category,
				Tags:      row.Tags,
				CreatedAt: fromTimestamptz(row.CreatedAt),
			},
			Similarity: row.Similarity,
		})
	}
	return results, nil
}

// SearchKeyword performs case-insensitive substring search against title,
// content, and tags. No embedding call is made; results carry Similarity 0
// and the caller assigns a strategy score.
func (s *Store) SearchKeyword(ctx context.Context, term string, limit int32) ([]Result, error) {
	rows, err := s.queries.SearchKeyword(ctx, SearchKeywordParams{Term: term, ResultLimit: limit})
	if err != nil {
		return nil, fmt.Errorf("keyword search failed: %w", err)
	}
	return entryRowsToResults(rows), nil
}

// SearchCategory fetches entries of one category, newest first.
// Results carry Similarity 0; the caller assigns a strategy score.
func (s *Store) SearchCategory(ctx context.Context, category string, limit int32) ([]Result, error) {
	rows, err := s.queries.ListByCategory(ctx, ListByCategoryParams{Category: category, ResultLimit: limit})
	if err != nil {
		return nil, fmt.Errorf("category search failed: %w", err)
	}
	return entryRowsToResults(rows), nil
}

// Recent fetches the most recently created entries regardless of relevance.
// Used by the retrieval pipeline's global fallback.
func (s *Store) Recent(ctx context.Context, limit int32) ([]Result, error) {
	rows, err := s.queries.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("recent entries query failed: %w", err)
	}
	return entryRowsToResults(rows), nil
}

// Count returns the total number of entries in the store.
func (s *Store) Count(ctx context.Context) (int, error) {
	count, err := s.queries.CountEntries(ctx)
	if err != nil {
		return 0, fmt.Errorf("count failed: %w", err)
	}

	// Overflow protection for 32-bit platforms
	if count > math.MaxInt {
		return 0, fmt.Errorf("entry count %d exceeds platform int capacity", count)
	}

	return int(count), nil
}

// Delete removes an entry from the knowledge store.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.queries.DeleteEntry(ctx, id); err != nil {
		return fmt.Errorf("failed to delete entry %q: %w", id, err)
	}

	s.logger.Debug("deleted knowledge entry", "id", id)
	return nil
}

// entryRowsToResults converts rows from non-vector reads to Results.
func entryRowsToResults(rows []EntryRow) []Result {
	results := make([]Result, 0, len(rows))
	for _, row := range rows {
		results = append(results, Result{
			Entry: Entry{
				ID:        row.ID,
				Title:     row.Title,
				Content:   row.Content,
				Source:    row.Source,
				Category:  row.Category,
				Tags:      row.Tags,
				CreatedAt: fromTimestamptz(row.CreatedAt),
			},
		})
	}
	return results
}
