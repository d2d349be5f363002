package rag

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/figmant/figmant/internal/config"
	"github.com/figmant/figmant/internal/knowledge"
)

// fakeSearcher is an in-memory Searcher. Vector results are keyed by term
// (the fake encodes each embedded term into its vector) and filtered by the
// requested threshold, so progressive relaxation is exercised for real.
type fakeSearcher struct {
	vectorEntries   map[string][]knowledge.Result
	keywordEntries  map[string][]knowledge.Result
	categoryEntries map[string][]knowledge.Result
	recentEntries   []knowledge.Result

	embedErrs  map[string]error
	keywordErr error
	recentErr  error

	embedCalls []string
	termIDs    map[string]int
	termByID   []string
}

func newFakeSearcher() *fakeSearcher {
	return &fakeSearcher{
		vectorEntries:   map[string][]knowledge.Result{},
		keywordEntries:  map[string][]knowledge.Result{},
		categoryEntries: map[string][]knowledge.Result{},
		embedErrs:       map[string]error{},
		termIDs:         map[string]int{},
	}
}

func (f *fakeSearcher) Embed(_ context.Context, text string) ([]float32, error) {
	f.embedCalls = append(f.embedCalls, text)
	if err := f.embedErrs[text]; err != nil {
		return nil, err
	}
	id, ok := f.termIDs[text]
	if !ok {
		id = len(f.termByID)
		f.termIDs[text] = id
		f.termByID = append(f.termByID, text)
	}
	return []float32{float32(id)}, nil
}

func (f *fakeSearcher) SearchByVector(_ context.Context, vec []float32, threshold float32, limit int32) ([]knowledge.Result, error) {
	term := f.termByID[int(vec[0])]
	var out []knowledge.Result
	for _, r := range f.vectorEntries[term] {
		if r.Similarity >= threshold {
			out = append(out, r)
		}
	}
	if int32(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeSearcher) SearchKeyword(_ context.Context, term string, limit int32) ([]knowledge.Result, error) {
	if f.keywordErr != nil {
		return nil, f.keywordErr
	}
	out := append([]knowledge.Result(nil), f.keywordEntries[term]...)
	if int32(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeSearcher) SearchCategory(_ context.Context, category string, limit int32) ([]knowledge.Result, error) {
	out := append([]knowledge.Result(nil), f.categoryEntries[category]...)
	if int32(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeSearcher) Recent(_ context.Context, limit int32) ([]knowledge.Result, error) {
	if f.recentErr != nil {
		return nil, f.recentErr
	}
	out := append([]knowledge.Result(nil), f.recentEntries...)
	if int32(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func testRAGConfig() config.RAGConfig {
	return config.RAGConfig{
		VectorThresholds:   []float32{0.3, 0.2, 0.15, 0.1},
		VectorLimit:        8,
		KeywordLimit:       5,
		KeywordSimilarity:  0.15,
		CategoryLimit:      3,
		CategorySimilarity: 0.1,
		FallbackLimit:      10,
		FallbackSimilarity: 0.05,
		MinEntries:         5,
		MaxEntries:         20,
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestRetrieverVectorStrategy(t *testing.T) {
	store := newFakeSearcher()
	store.vectorEntries["button"] = []knowledge.Result{
		result("a", "Button Guide", "interactive-elements", 0.42),
	}
	r := NewRetriever(store, DefaultTaxonomy(), testRAGConfig(), testLogger())

	results, used, err := r.RetrieveAll(context.Background(), []string{"button"})
	if err != nil {
		t.Fatalf("RetrieveAll() error = %v", err)
	}

	found := false
	for _, res := range results {
		if res.Entry.ID == "a" && res.Similarity == 0.42 {
			found = true
		}
	}
	if !found {
		t.Errorf("vector match missing or similarity lost: %v", results)
	}
	if len(used) != 1 || used[0] != "button" {
		t.Errorf("termsUsed = %v, want [button]", used)
	}
}

func TestRetrieverThresholdRelaxation(t *testing.T) {
	// The only match scores 0.12: below 0.3/0.2/0.15 but above 0.1, so the
	// vector strategy must relax down to the last threshold to find it.
	store := newFakeSearcher()
	store.vectorEntries["usability"] = []knowledge.Result{
		result("low", "Low Match", "general", 0.12),
	}
	cfg := testRAGConfig()
	cfg.MinEntries = 1
	r := NewRetriever(store, DefaultTaxonomy(), cfg, testLogger())

	results, _, err := r.RetrieveAll(context.Background(), []string{"usability"})
	if err != nil {
		t.Fatalf("RetrieveAll() error = %v", err)
	}
	if len(results) != 1 || results[0].Entry.ID != "low" {
		t.Errorf("results = %v, want the 0.12 match via relaxed threshold", results)
	}
}

func TestRetrieverEmbedOncePerTerm(t *testing.T) {
	// Four thresholds are tried, but the term embeds exactly once.
	store := newFakeSearcher()
	cfg := testRAGConfig()
	cfg.MinEntries = 0
	r := NewRetriever(store, DefaultTaxonomy(), cfg, testLogger())

	_, _, err := r.RetrieveAll(context.Background(), []string{"quantum physics"})
	if err != nil {
		t.Fatalf("RetrieveAll() error = %v", err)
	}

	count := 0
	for _, call := range store.embedCalls {
		if call == "quantum physics" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("embed calls for term = %d, want 1", count)
	}
}

func TestRetrieverKeywordFallthrough(t *testing.T) {
	// Embedding fails for the term, so the vector strategy is abandoned and
	// keyword search serves the results with the constant moderate score.
	store := newFakeSearcher()
	store.embedErrs["mobile"] = errors.New("provider returned 500")
	store.keywordEntries["mobile"] = []knowledge.Result{
		result("k", "Mobile Entry", "mobile-ux", 0),
	}
	cfg := testRAGConfig()
	cfg.MinEntries = 1
	r := NewRetriever(store, DefaultTaxonomy(), cfg, testLogger())

	results, used, err := r.RetrieveAll(context.Background(), []string{"mobile"})
	if err != nil {
		t.Fatalf("RetrieveAll() error = %v", err)
	}
	if len(results) != 1 || results[0].Similarity != cfg.KeywordSimilarity {
		t.Errorf("results = %v, want keyword match with similarity %v", results, cfg.KeywordSimilarity)
	}
	if len(used) != 1 {
		t.Errorf("termsUsed = %v, want the term despite vector failure", used)
	}
}

func TestRetrieverCategoryFallthrough(t *testing.T) {
	// Vector finds nothing, keyword errors: the taxonomy maps "button" to
	// interactive-elements and the category lookup serves results.
	store := newFakeSearcher()
	store.keywordErr = errors.New("db error")
	store.categoryEntries["interactive-elements"] = []knowledge.Result{
		result("c", "Category Entry", "interactive-elements", 0),
	}
	cfg := testRAGConfig()
	cfg.MinEntries = 1
	r := NewRetriever(store, DefaultTaxonomy(), cfg, testLogger())

	results, _, err := r.RetrieveAll(context.Background(), []string{"button"})
	if err != nil {
		t.Fatalf("RetrieveAll() error = %v", err)
	}
	if len(results) != 1 || results[0].Similarity != cfg.CategorySimilarity {
		t.Errorf("results = %v, want category match with similarity %v", results, cfg.CategorySimilarity)
	}
}

func TestRetrieverGlobalFallback(t *testing.T) {
	// No strategy matches anything, store has 3 entries: fallback returns
	// them with the low-confidence score.
	store := newFakeSearcher()
	store.recentEntries = []knowledge.Result{
		result("r1", "Recent One", "general", 0),
		result("r2", "Recent Two", "general", 0),
		result("r3", "Recent Three", "general", 0),
	}
	r := NewRetriever(store, DefaultTaxonomy(), testRAGConfig(), testLogger())

	results, used, err := r.RetrieveAll(context.Background(), []string{"no match"})
	if err != nil {
		t.Fatalf("RetrieveAll() error = %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("results = %d, want 3 fallback entries", len(results))
	}
	for _, res := range results {
		if res.Similarity != 0.05 {
			t.Errorf("fallback similarity = %v, want 0.05", res.Similarity)
		}
	}
	if len(used) != 0 {
		t.Errorf("termsUsed = %v, want empty (fallback is not a term)", used)
	}
}

func TestRetrieverFallbackSkippedWhenEnough(t *testing.T) {
	store := newFakeSearcher()
	store.vectorEntries["accessibility"] = []knowledge.Result{
		result("a", "A", "accessibility", 0.9),
		result("b", "B", "accessibility", 0.8),
	}
	store.recentEntries = []knowledge.Result{
		result("x", "Should Not Appear", "general", 0),
	}
	cfg := testRAGConfig()
	cfg.MinEntries = 2
	r := NewRetriever(store, DefaultTaxonomy(), cfg, testLogger())

	results, _, err := r.RetrieveAll(context.Background(), []string{"accessibility"})
	if err != nil {
		t.Fatalf("RetrieveAll() error = %v", err)
	}
	for _, res := range results {
		if res.Entry.ID == "x" {
			t.Error("fallback fired despite enough targeted results")
		}
	}
}

func TestRetrieverStoreUnreachable(t *testing.T) {
	// Everything fails, fallback included, nothing retrieved: that is the
	// one case RetrieveAll reports as an error.
	store := newFakeSearcher()
	store.embedErrs["usability"] = errors.New("down")
	store.keywordErr = errors.New("down")
	store.recentErr = errors.New("down")
	r := NewRetriever(store, DefaultTaxonomy(), testRAGConfig(), testLogger())

	_, _, err := r.RetrieveAll(context.Background(), []string{"usability"})
	if err == nil {
		t.Fatal("RetrieveAll() expected error when store is unreachable")
	}
}
