package knowledge

import (
	"context"
	"errors"
	"testing"
)

func TestSeederIndexAll(t *testing.T) {
	querier := &mockQuerier{}
	store := New(querier, &mockEmbedder{vector: []float32{0.1}}, nopLogger())
	seeder := NewSeeder(store, nopLogger())

	count, err := seeder.IndexAll(context.Background())
	if err != nil {
		t.Fatalf("IndexAll() error = %v", err)
	}

	want := len(buildSeedEntries())
	if count != want {
		t.Errorf("IndexAll() = %d, want %d", count, want)
	}
	if len(querier.upsertParams) != want {
		t.Errorf("upsert calls = %d, want %d", len(querier.upsertParams), want)
	}
}

func TestSeederIndexAllTotalFailure(t *testing.T) {
	querier := &mockQuerier{upsertErr: errors.New("db down")}
	store := New(querier, &mockEmbedder{vector: []float32{0.1}}, nopLogger())
	seeder := NewSeeder(store, nopLogger())

	count, err := seeder.IndexAll(context.Background())
	if err == nil {
		t.Fatal("IndexAll() expected error when every entry fails")
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
}

func TestSeederClearAll(t *testing.T) {
	querier := &mockQuerier{}
	store := New(querier, &mockEmbedder{vector: []float32{0.1}}, nopLogger())
	seeder := NewSeeder(store, nopLogger())

	if err := seeder.ClearAll(context.Background()); err != nil {
		t.Fatalf("ClearAll() error = %v", err)
	}
	if len(querier.deletedIDs) != len(buildSeedEntries()) {
		t.Errorf("deleted = %d, want %d", len(querier.deletedIDs), len(buildSeedEntries()))
	}
}

func TestSeedEntriesWellFormed(t *testing.T) {
	entries := buildSeedEntries()
	if len(entries) == 0 {
		t.Fatal("no seed entries")
	}

	seen := make(map[string]bool, len(entries))
	competitorCount := 0
	for _, entry := range entries {
		if entry.ID == "" || entry.Title == "" || entry.Content == "" || entry.Source == "" || entry.Category == "" {
			t.Errorf("entry %q has empty required field", entry.ID)
		}
		if seen[entry.ID] {
			t.Errorf("duplicate seed ID %q", entry.ID)
		}
		seen[entry.ID] = true
		if entry.Category == CategoryCompetitorInsights {
			competitorCount++
		}
	}

	if competitorCount == 0 {
		t.Error("seed corpus has no competitor-insights entries")
	}
}
