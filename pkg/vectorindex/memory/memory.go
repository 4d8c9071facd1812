// Package memory implements vectorindex.Index as an in-process brute-force
// index. It backs local deployments and tests; similarity is cosine over a
// pluggable embedder.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"atlas/pkg/models"
	"atlas/pkg/vectorindex"
)

// Embedder converts free text into a numeric vector representation.
type Embedder interface {
	Embed(text string) []float64
}

// entry is one indexed chunk.
type entry struct {
	id       string
	text     string
	metadata models.Metadata
	vector   []float64
}

// Index holds embedded chunks for one collection and scans them linearly
// on search.
type Index struct {
	embedder Embedder

	mu      sync.RWMutex
	entries []entry
	byID    map[string]int
}

// New creates an empty in-memory index using the given embedder.
func New(embedder Embedder) *Index {
	return &Index{
		embedder: embedder,
		byID:     make(map[string]int),
	}
}

// Upsert stores the chunks under their ids. An id already present is
// rejected with a DuplicateIDError, matching the duplicate-id semantics of
// external vector engines.
func (ix *Index) Upsert(ctx context.Context, ids, texts []string, metadatas []models.Metadata) error {
	if len(ids) != len(texts) || len(ids) != len(metadatas) {
		return fmt.Errorf("mismatched upsert slices: %d ids, %d texts, %d metadatas", len(ids), len(texts), len(metadatas))
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	// Validate the whole batch first so a rejected batch stores nothing.
	for _, id := range ids {
		if _, exists := ix.byID[id]; exists {
			return vectorindex.DuplicateIDError{ID: id}
		}
	}
	for i, id := range ids {
		ix.byID[id] = len(ix.entries)
		ix.entries = append(ix.entries, entry{
			id:       id,
			text:     texts[i],
			metadata: metadatas[i],
			vector:   ix.embedder.Embed(texts[i]),
		})
	}
	return nil
}

// Search returns up to k hits ordered by ascending cosine distance.
func (ix *Index) Search(ctx context.Context, query string, k int) ([]vectorindex.Hit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, nil
	}

	queryVec := ix.embedder.Embed(query)

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	hits := make([]vectorindex.Hit, 0, len(ix.entries))
	for _, e := range ix.entries {
		hits = append(hits, vectorindex.Hit{
			ID:       e.id,
			Text:     e.text,
			Metadata: e.metadata,
			Distance: cosineDistance(queryVec, e.vector),
		})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Len returns the number of indexed chunks.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

// cosineDistance is 1 - cosine similarity; zero vectors are maximally far.
func cosineDistance(a, b []float64) float64 {
	var dot, normA, normB float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
