// Package knowledge manages the UX knowledge store backed by PostgreSQL
// and pgvector.
//
// The store holds immutable knowledge entries (design patterns, research
// findings, competitor insights) created by the seeder. The retrieval
// pipeline in internal/rag reads them through four access paths: vector
// similarity search, keyword substring search, category lookup, and
// most-recent sampling.
//
// Entries are never mutated or deleted by the retrieval pipeline; the only
// write paths are the seeder's upserts.
package knowledge
