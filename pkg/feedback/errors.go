package feedback

import "errors"

var (
	// ErrInvalidLabel is returned when the label is neither "up" nor "down".
	ErrInvalidLabel = errors.New("invalid feedback label")

	// ErrEmptyQuery is returned when feedback carries no query text.
	ErrEmptyQuery = errors.New("feedback query is empty")

	// ErrDatabaseError is returned when a database operation fails.
	ErrDatabaseError = errors.New("database error")
)
