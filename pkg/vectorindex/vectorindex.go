// Package vectorindex defines the per-tenant nearest-neighbor index
// capability consumed by the ingestion and retrieval orchestrators.
package vectorindex

import (
	"context"
	"errors"
	"fmt"

	"atlas/pkg/models"
)

// ErrUnavailable is returned when the vector engine cannot be reached or
// times out. Callers treat it as retryable.
var ErrUnavailable = errors.New("vector index unavailable")

// DuplicateIDError is returned when an upsert collides with an id already
// present in the index. Ingestion counts these as duplicates, not errors.
type DuplicateIDError struct {
	ID string
}

func (e DuplicateIDError) Error() string {
	return fmt.Sprintf("chunk id already indexed: %s", e.ID)
}

// Hit is one search result. Lower distance means more similar.
type Hit struct {
	ID       string
	Text     string
	Metadata models.Metadata
	Distance float64
}

// Index performs nearest-neighbor storage and search for one tenant.
type Index interface {
	// Upsert stores the chunks under their ids. The three slices are
	// parallel and must have equal length.
	Upsert(ctx context.Context, ids, texts []string, metadatas []models.Metadata) error

	// Search returns up to k hits for the query, most similar first.
	Search(ctx context.Context, query string, k int) ([]Hit, error)
}
