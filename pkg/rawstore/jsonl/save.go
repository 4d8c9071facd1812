package jsonl

import (
	"time"

	"atlas/pkg/models"
	"atlas/pkg/rawstore"
)

// Save persists one document, deduplicating on (content hash, source).
//
// The whole read-modify-write-persist sequence for a tenant's indexes runs
// under that tenant's lock; concurrent saves for different tenants do not
// contend.
func (s *Store) Save(tenantID string, req rawstore.SaveRequest) (*rawstore.SaveResult, error) {
	if req.Text == "" {
		return nil, rawstore.ErrEmptyText
	}
	source := req.Source
	if source == "" {
		source = "unknown"
	}

	sha := rawstore.ContentHash(req.Text)
	byteSize := len(req.Text)

	mu := s.tenantLock(tenantID)
	mu.Lock()
	defer mu.Unlock()

	idx, shaIdx, err := s.loadIndexes(tenantID)
	if err != nil {
		return nil, err
	}

	// Dedup: an existing doc with the same hash and the same source wins
	// unless the caller forces a reindex.
	for _, existingID := range shaIdx[sha] {
		entry, ok := idx[existingID]
		if !ok || entry.Source != source {
			continue
		}
		if !req.ForceReindex {
			return &rawstore.SaveResult{
				DocID:     existingID,
				Bytes:     byteSize,
				SHA256:    sha,
				Duplicate: true,
				Saved:     false,
				Date:      entry.Date,
			}, nil
		}
		break
	}

	docID := req.DocID
	if docID == "" || !s.opts.AllowClientDocID {
		docID = rawstore.NewDocID()
	}

	now := time.Now().UTC().Truncate(time.Second)
	createdAt := now.Format(time.RFC3339)
	date := now.Format("2006-01-02")

	record := models.RawDocument{
		DocID:     docID,
		TenantID:  tenantID,
		Source:    source,
		Text:      req.Text,
		Metadata:  req.Metadata,
		CreatedAt: createdAt,
		SHA256:    sha,
	}
	if record.Metadata == nil {
		record.Metadata = models.Metadata{}
	}

	rawPath, err := s.dayFilePath(tenantID, rawstore.VariantRaw, date)
	if err != nil {
		return nil, err
	}
	if err := appendLine(rawPath, record); err != nil {
		return nil, err
	}

	if s.opts.PersistClean {
		clean := record
		clean.Text = ""
		clean.Variant = "clean"
		cleanPath, err := s.dayFilePath(tenantID, rawstore.VariantClean, date)
		if err != nil {
			return nil, err
		}
		if err := appendLine(cleanPath, clean); err != nil {
			return nil, err
		}
	}

	idx[docID] = models.RawIndexEntry{
		Date:      date,
		Source:    source,
		SHA256:    sha,
		Bytes:     byteSize,
		CreatedAt: createdAt,
	}
	shaIdx[sha] = appendUnique(shaIdx[sha], docID)

	if err := s.persistIndexes(tenantID, idx, shaIdx); err != nil {
		return nil, err
	}

	return &rawstore.SaveResult{
		DocID:     docID,
		Bytes:     byteSize,
		SHA256:    sha,
		Duplicate: false,
		Saved:     true,
		Date:      date,
	}, nil
}

func appendUnique(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}
