package knowledge

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pgvector/pgvector-go"
)

// DBTX is the subset of pgxpool.Pool used by Queries.
// Satisfied by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UpsertEntryParams holds the columns for an entry insert/update.
type UpsertEntryParams struct {
	ID        string
	Title     string
	Content   string
	Source    string
	Category  string
	Tags      []string
	Embedding *pgvector.Vector
	CreatedAt pgtype.Timestamptz
}

// SearchSimilarParams holds the inputs for threshold-bounded vector search.
type SearchSimilarParams struct {
	QueryEmbedding *pgvector.Vector
	Threshold      float32
	ResultLimit    int32
}

// SearchKeywordParams holds the inputs for case-insensitive keyword search.
type SearchKeywordParams struct {
	Term        string
	ResultLimit int32
}

// ListByCategoryParams holds the inputs for category lookup.
type ListByCategoryParams struct {
	Category    string
	ResultLimit int32
}

// EntryRow is a knowledge_entries row without a similarity score.
type EntryRow struct {
	ID        string
	Title     string
	Content   string
	Source    string
	Category  string
	Tags      []string
	CreatedAt pgtype.Timestamptz
}

// SearchSimilarRow is a knowledge_entries row with its cosine similarity.
type SearchSimilarRow struct {
	ID         string
	Title      string
	Content    string
	Source     string
	Category   string
	Tags       []string
	CreatedAt  pgtype.Timestamptz
	Similarity float32
}

// Queries provides hand-written SQL access to knowledge_entries.
// All statements use positional parameters; no user input is interpolated.
type Queries struct {
	db DBTX
}

// NewQueries creates a Queries instance over the given connection.
func NewQueries(db DBTX) *Queries {
	return &Queries{db: db}
}

const upsertEntrySQL = `
INSERT INTO knowledge_entries (id, title, content, source, category, tags, embedding, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, now()))
ON CONFLICT (id) DO UPDATE SET
    title = EXCLUDED.title,
    content = EXCLUDED.content,
    source = EXCLUDED.source,
    category = EXCLUDED.category,
    tags = EXCLUDED.tags,
    embedding = EXCLUDED.embedding
`

// UpsertEntry inserts or updates an entry.
func (q *Queries) UpsertEntry(ctx context.Context, arg UpsertEntryParams) error {
	var createdAt any
	if arg.CreatedAt.Valid {
		createdAt = arg.CreatedAt
	}
	_, err := q.db.Exec(ctx, upsertEntrySQL,
		arg.ID, arg.Title, arg.Content, arg.Source, arg.Category, arg.Tags, arg.Embedding, createdAt)
	if err != nil {
		return fmt.Errorf("upsert entry: %w", err)
	}
	return nil
}

const searchSimilarSQL = `
SELECT id, title, content, source, category, tags, created_at,
       1 - (embedding <=> $1) AS similarity
FROM knowledge_entries
WHERE embedding IS NOT NULL
  AND 1 - (embedding <=> $1) >= $2
ORDER BY embedding <=> $1
LIMIT $3
`

// SearchSimilar performs cosine similarity search above the given threshold.
func (q *Queries) SearchSimilar(ctx context.Context, arg SearchSimilarParams) ([]SearchSimilarRow, error) {
	rows, err := q.db.Query(ctx, searchSimilarSQL, arg.QueryEmbedding, arg.Threshold, arg.ResultLimit)
	if err != nil {
		return nil, fmt.Errorf("search similar: %w", err)
	}
	defer rows.Close()

	var results []SearchSimilarRow
	for rows.Next() {
		var r SearchSimilarRow
		if err := rows.Scan(&r.ID, &r.Title, &r.Content, &r.Source, &r.Category, &r.Tags, &r.CreatedAt, &r.Similarity); err != nil {
			return nil, fmt.Errorf("scan similar row: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate similar rows: %w", err)
	}
	return results, nil
}

const searchKeywordSQL = `
SELECT id, title, content, source, category, tags, created_at
FROM knowledge_entries
WHERE title ILIKE $1
   OR content ILIKE $1
   OR EXISTS (SELECT 1 FROM unnest(tags) AS tag WHERE tag ILIKE $2)
ORDER BY created_at DESC
LIMIT $3
`

// SearchKeyword performs case-insensitive substring search against title,
// content, and tag membership.
func (q *Queries) SearchKeyword(ctx context.Context, arg SearchKeywordParams) ([]EntryRow, error) {
	pattern := "%" + escapeLike(arg.Term) + "%"
	rows, err := q.db.Query(ctx, searchKeywordSQL, pattern, escapeLike(arg.Term), arg.ResultLimit)
	if err != nil {
		return nil, fmt.Errorf("search keyword: %w", err)
	}
	defer rows.Close()
	return scanEntryRows(rows)
}

const listByCategorySQL = `
SELECT id, title, content, source, category, tags, created_at
FROM knowledge_entries
WHERE category = $1
ORDER BY created_at DESC
LIMIT $2
`

// ListByCategory fetches entries of a single category, newest first.
func (q *Queries) ListByCategory(ctx context.Context, arg ListByCategoryParams) ([]EntryRow, error) {
	rows, err := q.db.Query(ctx, listByCategorySQL, arg.Category, arg.ResultLimit)
	if err != nil {
		return nil, fmt.Errorf("list by category: %w", err)
	}
	defer rows.Close()
	return scanEntryRows(rows)
}

const listRecentSQL = `
SELECT id, title, content, source, category, tags, created_at
FROM knowledge_entries
ORDER BY created_at DESC
LIMIT $1
`

// ListRecent fetches the most recently created entries.
func (q *Queries) ListRecent(ctx context.Context, limit int32) ([]EntryRow, error) {
	rows, err := q.db.Query(ctx, listRecentSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent: %w", err)
	}
	defer rows.Close()
	return scanEntryRows(rows)
}

const countEntriesSQL = `SELECT COUNT(*) FROM knowledge_entries`

// CountEntries returns the total number of entries.
func (q *Queries) CountEntries(ctx context.Context) (int64, error) {
	var count int64
	if err := q.db.QueryRow(ctx, countEntriesSQL).Scan(&count); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return count, nil
}

const deleteEntrySQL = `DELETE FROM knowledge_entries WHERE id = $1`

// DeleteEntry deletes an entry by ID.
func (q *Queries) DeleteEntry(ctx context.Context, id string) error {
	if _, err := q.db.Exec(ctx, deleteEntrySQL, id); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return nil
}

// scanEntryRows drains rows into EntryRow values.
func scanEntryRows(rows pgx.Rows) ([]EntryRow, error) {
	var results []EntryRow
	for rows.Next() {
		var r EntryRow
		if err := rows.Scan(&r.ID, &r.Title, &r.Content, &r.Source, &r.Category, &r.Tags, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan entry row: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entry rows: %w", err)
	}
	return results, nil
}

// escapeLike escapes LIKE metacharacters so search terms match literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
