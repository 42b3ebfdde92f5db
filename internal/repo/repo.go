package repo

import "errors"

// Sentinel errors the service layer maps onto API failures. Ownership misses
// surface as ErrNotFound so one user can never probe another's records.
var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrAccountLink    = errors.New("linked account not found")
)
