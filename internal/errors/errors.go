package errors

import (
	"errors"
)

// Error kinds shared by the store, the policy pipeline and the platform adapter.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrExternalAPI      = errors.New("external api error")
	ErrConfiguration    = errors.New("configuration error")
	ErrNotFound         = errors.New("not found")
	ErrUnauthorized     = errors.New("unauthorized")
)
