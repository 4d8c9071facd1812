package jsonl

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"atlas/pkg/models"
	"atlas/pkg/rawstore"
)

// maxLineBytes bounds the scanner buffer; raw texts are capped well below
// this by the API layer.
const maxLineBytes = 4 * 1024 * 1024

// Get retrieves a document by id. The index names the day file; the file is
// then scanned linearly for the matching record. An index entry whose day
// file lacks the record is a storage inconsistency and is reported as such.
func (s *Store) Get(tenantID, docID, variant string) (*models.RawDocument, error) {
	if variant == "" {
		variant = rawstore.VariantRaw
	}
	if variant != rawstore.VariantRaw && variant != rawstore.VariantClean {
		return nil, rawstore.ErrInvalidVariant
	}

	idx, _, err := s.loadIndexes(tenantID)
	if err != nil {
		return nil, err
	}
	entry, ok := idx[docID]
	if !ok {
		return nil, rawstore.ErrNotFound
	}

	path, err := s.dayFilePath(tenantID, variant, entry.Date)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, rawstore.InconsistencyError{TenantID: tenantID, DocID: docID, Path: path}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open day file %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		var record models.RawDocument
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			// A corrupt line must not mask a later valid record.
			continue
		}
		if record.DocID == docID {
			return &record, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan day file %s: %w", path, err)
	}

	return nil, rawstore.InconsistencyError{TenantID: tenantID, DocID: docID, Path: path}
}
