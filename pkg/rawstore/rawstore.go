// Package rawstore defines the content-addressed, append-only raw document
// store consumed by the ingestion orchestrator.
package rawstore

import (
	"atlas/pkg/models"
)

// Variant selects which persisted copy of a document to read.
const (
	VariantRaw   = "raw"
	VariantClean = "clean"
)

// SaveRequest carries one document into the store.
type SaveRequest struct {
	Text     string
	Source   string
	Metadata models.Metadata
	// DocID is honored only when the store is configured to allow
	// client-supplied ids; otherwise a fresh id is generated.
	DocID string
	// ForceReindex saves the document even when (hash, source) already exists.
	ForceReindex bool
}

// SaveResult reports the outcome of a save, including whether the document
// was recognized as a duplicate and skipped.
type SaveResult struct {
	DocID     string `json:"doc_id"`
	Bytes     int    `json:"bytes"`
	SHA256    string `json:"sha256"`
	Duplicate bool   `json:"duplicate"`
	Saved     bool   `json:"saved"`
	Date      string `json:"date"`
}

// ListOptions controls cursor pagination over a tenant's documents.
type ListOptions struct {
	Limit int
	// Cursor resumes listing just after this doc id.
	Cursor string
	// Source, when set, restricts results to documents from that source.
	Source string
}

// Store defines the interface for raw document storage operations.
type Store interface {
	// Save persists a document unless it is a duplicate of an existing
	// (content hash, source) pair and ForceReindex is unset.
	Save(tenantID string, req SaveRequest) (*SaveResult, error)

	// Get retrieves a stored document by id for the requested variant.
	Get(tenantID, docID, variant string) (*models.RawDocument, error)

	// List enumerates documents in ascending doc id (= chronological)
	// order, returning at most Limit items and the cursor for the next page.
	List(tenantID string, opts ListOptions) ([]models.RawListEntry, string, error)
}
