// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package pagination computes the visible window and navigation boundaries
// for listing pages. It is pure: it never touches storage, and malformed
// request parameters silently default rather than error.
//
// Listings work on two levels. An "offset chunk" selects a coarse batch of
// ChunkSize rows to load (progressively older results), and a fine-grained
// page index selects a sub-page of that batch for display. Window computes
// the current/previous/next page indices for the navigation bar.
package pagination

import "strconv"

// ChunkSize is the number of rows loaded per offset chunk.
const ChunkSize = 100

// Window holds the pagination indices for a listing page.
type Window struct {
	Index int // current page, clamped into [0, Max]
	Prev  int // page the "previous" link targets
	Next  int // page the "next" link targets
	Max   int // highest valid page index
}

// ComputeWindow derives the visible window from the raw request parameter.
// raw is the untrusted "index" query value: missing or malformed values
// default to 0, negative values clamp to 0, values past maxIndex clamp to
// maxIndex. span is how far the previous/next links jump.
func ComputeWindow(raw string, span, maxIndex int) Window {
	index, err := strconv.Atoi(raw)
	if err != nil {
		index = 0
	}
	if index < 0 {
		index = 0
	}
	if index > maxIndex {
		index = maxIndex
	}

	prev := index - span
	if prev < 0 {
		prev = 0
	}
	next := index + span
	if next > maxIndex {
		next = maxIndex
	}

	return Window{Index: index, Prev: prev, Next: next, Max: maxIndex}
}

// ComputeOffset maps the raw "older results" chunk parameter to a row
// offset. Missing, malformed, or negative values default to chunk 0,
// which is always valid.
func ComputeOffset(raw string) (chunk, offset int) {
	if raw == "" {
		return 0, 0
	}
	chunk, err := strconv.Atoi(raw)
	if err != nil || chunk < 0 {
		return 0, 0
	}
	return chunk, chunk * ChunkSize
}

// Page returns page index of items split into batches of perPage.
// A page past the end of items is empty, which listing handlers treat as
// the genuine "no more results" condition.
func Page[T any](items []T, index, perPage int) []T {
	if perPage <= 0 || index < 0 {
		return nil
	}
	start := index * perPage
	if start >= len(items) {
		return nil
	}
	end := start + perPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
