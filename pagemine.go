// Package pagemine turns long, noisy scraped text into structured records
// by delegating semantic extraction to an LLM backend. It covers text
// segmentation, bounded-concurrency batch dispatch, recovery of structured
// data from unreliable free-text responses, identifier deduplication, and
// incremental persistence of results to disk.
//
// This package contains domain types, pure domain functions, and capability
// interfaces following Ben Johnson's Standard Package Layout. Implementations
// live in subdirectories named after their primary dependency (e.g., gemini/,
// rod/, sqlite/) or their concern (pipeline/, crawl/).
package pagemine
