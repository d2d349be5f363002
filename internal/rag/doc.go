// Package rag builds Retrieval-Augmented Generation context for UX analysis.
//
// Given a user prompt and optional image annotations, the package extracts
// search terms, retrieves matching knowledge entries through a multi-strategy
// retriever, deduplicates and ranks them, and composes an LLM-ready enhanced
// prompt. Invoking the downstream LLM is the caller's job.
//
// # Architecture
//
//	Builder.Build
//	     |
//	     +-- ExtractTerms (core terms, keyword expansions, annotations, prompt, phrases)
//	     |
//	     v
//	Retriever.RetrieveAll (per term, strategies in priority order)
//	     |
//	     +-- vector search      (progressive threshold relaxation)
//	     +-- keyword search     (substring match, constant score)
//	     +-- category lookup    (static keyword→category table, constant score)
//	     +-- global fallback    (most recent entries when too few results)
//	     |
//	     v
//	Rank (dedup by ID keeping max similarity, sort, truncate)
//	     |
//	     +-- Partition (competitor insights vs relevant patterns)
//	     +-- Compose   (enhanced prompt)
//	     +-- Citations
//	     |
//	     v
//	Context (JSON envelope for the caller)
//
// # Error Handling
//
// A failed strategy for one term is logged and treated as zero results; the
// chain falls through to the next strategy. Only total store unavailability
// (every strategy and the fallback failing with no results at all)
// propagates as an error.
//
// # Thread Safety
//
// Builder, Retriever, and Taxonomy are immutable after construction and safe
// for concurrent use. Per-request state (the embedding memo) is local to
// each RetrieveAll call.
package rag
