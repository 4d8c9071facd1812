package tenant

import "errors"

var (
	// ErrAlreadyExists is returned when creating a tenant whose id is taken.
	ErrAlreadyExists = errors.New("tenant already exists")

	// ErrNotFound is returned when the requested tenant does not exist.
	ErrNotFound = errors.New("tenant not found")

	// ErrInvalidTenantID is returned when the tenant id does not meet naming requirements.
	ErrInvalidTenantID = errors.New("invalid tenant id")
)
