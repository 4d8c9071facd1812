package rawstore

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the requested document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrEmptyText is returned when a save carries no text.
	ErrEmptyText = errors.New("document text is empty")

	// ErrInvalidVariant is returned for a variant other than raw or clean.
	ErrInvalidVariant = errors.New("invalid document variant")
)

// InconsistencyError is returned when the index references a record that is
// missing from its day file. It is reported, never silently swallowed.
type InconsistencyError struct {
	TenantID string
	DocID    string
	Path     string
}

func (e InconsistencyError) Error() string {
	return fmt.Sprintf("index references doc %s but the day file %s has no such record", e.DocID, e.Path)
}
