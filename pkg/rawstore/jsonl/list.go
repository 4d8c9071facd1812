package jsonl

import (
	"sort"

	"atlas/pkg/models"
	"atlas/pkg/rawstore"
)

const defaultListLimit = 50

// List enumerates a tenant's documents in ascending doc id order, which is
// chronological by id construction. The returned cursor resumes the walk
// just after the last examined id; an empty cursor means the end was
// reached. Because ids are monotonic, pagination stays stable while new
// documents are appended concurrently.
func (s *Store) List(tenantID string, opts rawstore.ListOptions) ([]models.RawListEntry, string, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	idx, _, err := s.loadIndexes(tenantID)
	if err != nil {
		return nil, "", err
	}

	docIDs := make([]string, 0, len(idx))
	for id := range idx {
		docIDs = append(docIDs, id)
	}
	sort.Strings(docIDs)

	pos := 0
	if opts.Cursor != "" {
		// First id strictly after the cursor; an unknown mid-range cursor
		// resumes at its insertion point, one past the end restarts.
		pos = sort.SearchStrings(docIDs, opts.Cursor)
		if pos < len(docIDs) && docIDs[pos] == opts.Cursor {
			pos++
		} else if pos == len(docIDs) {
			pos = 0
		}
	}

	items := make([]models.RawListEntry, 0, limit)
	for pos < len(docIDs) && len(items) < limit {
		id := docIDs[pos]
		entry := idx[id]
		pos++
		if opts.Source != "" && entry.Source != opts.Source {
			continue
		}
		items = append(items, models.RawListEntry{
			DocID:     id,
			Source:    entry.Source,
			CreatedAt: entry.CreatedAt,
			Bytes:     entry.Bytes,
			SHA256:    entry.SHA256,
		})
	}

	next := ""
	if pos < len(docIDs) {
		next = docIDs[pos-1]
	}
	return items, next, nil
}
