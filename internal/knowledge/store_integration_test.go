package knowledge_test

import (
	"context"
	"testing"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/core/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/figmant/figmant/internal/knowledge"
	"github.com/figmant/figmant/internal/testutil"
)

// fixedEmbedder returns the same unit vector for every input, so cosine
// similarity between any query and any stored entry is exactly 1.0.
type fixedEmbedder struct {
	dim int
}

func fixedVectorEmbedder(dim int) *fixedEmbedder { return &fixedEmbedder{dim: dim} }

func (f *fixedEmbedder) Name() string            { return "test/fixed" }
func (f *fixedEmbedder) Register(_ api.Registry) {}

func (f *fixedEmbedder) Embed(_ context.Context, req *ai.EmbedRequest) (*ai.EmbedResponse, error) {
	vec := make([]float32, f.dim)
	vec[0] = 1
	embeddings := make([]*ai.Embedding, 0, len(req.Input))
	for range req.Input {
		embeddings = append(embeddings, &ai.Embedding{Embedding: vec})
	}
	return &ai.EmbedResponse{Embeddings: embeddings}, nil
}

func TestStoreIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	// Verify the pgvector extension and schema landed.
	var hasExtension bool
	err := db.Pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM pg_extension WHERE extname = 'vector')").Scan(&hasExtension)
	require.NoError(t, err)
	require.True(t, hasExtension, "pgvector extension not installed")

	var exists bool
	err = db.Pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM information_schema.tables WHERE table_name = $1)",
		"knowledge_entries").Scan(&exists)
	require.NoError(t, err)
	require.True(t, exists, "knowledge_entries table does not exist")

	queries := knowledge.NewQueries(db.Pool)
	store := knowledge.New(queries, fixedVectorEmbedder(768), testutil.DiscardLogger())

	entry := knowledge.Entry{
		ID:       "it:button-contrast",
		Title:    "Button Contrast",
		Content:  "buttons need sufficient contrast against their background",
		Source:   "integration test",
		Category: "accessibility",
		Tags:     []string{"button", "contrast"},
	}
	require.NoError(t, store.Add(ctx, entry))

	// Upsert is idempotent on ID.
	entry.Title = "Button Contrast (updated)"
	require.NoError(t, store.Add(ctx, entry))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Identical embedder vector means cosine similarity 1.0.
	results, err := store.SearchVector(ctx, "contrast", 0.3, 8)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "it:button-contrast", results[0].Entry.ID)
	assert.Equal(t, "Button Contrast (updated)", results[0].Entry.Title)
	assert.InDelta(t, 1.0, results[0].Similarity, 0.001)

	// Keyword search matches title, content, and tags case-insensitively.
	results, err = store.SearchKeyword(ctx, "BUTTON", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Zero(t, results[0].Similarity)

	results, err = store.SearchKeyword(ctx, "nonexistent", 5)
	require.NoError(t, err)
	assert.Empty(t, results)

	// Category lookup.
	results, err = store.SearchCategory(ctx, "accessibility", 3)
	require.NoError(t, err)
	assert.Len(t, results, 1)

	results, err = store.SearchCategory(ctx, "typography", 3)
	require.NoError(t, err)
	assert.Empty(t, results)

	// Recent entries ordering, newest first.
	second := knowledge.Entry{
		ID:       "it:second",
		Title:    "Second Entry",
		Content:  "later content",
		Source:   "integration test",
		Category: "general",
	}
	require.NoError(t, store.Add(ctx, second))

	results, err = store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Delete.
	require.NoError(t, store.Delete(ctx, "it:second"))
	count, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSeederIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	queries := knowledge.NewQueries(db.Pool)
	store := knowledge.New(queries, fixedVectorEmbedder(768), testutil.DiscardLogger())
	seeder := knowledge.NewSeeder(store, testutil.DiscardLogger())

	count, err := seeder.IndexAll(ctx)
	require.NoError(t, err)
	assert.Greater(t, count, 0)

	// Re-seeding must not duplicate rows.
	again, err := seeder.IndexAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, count, again)

	total, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, count, total)

	// Competitor insight entries are retrievable by category.
	results, err := store.SearchCategory(ctx, knowledge.CategoryCompetitorInsights, 3)
	require.NoError(t, err)
	assert.NotEmpty(t, results)

	require.NoError(t, seeder.ClearAll(ctx))
	total, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)
}
