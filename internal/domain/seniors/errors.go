package seniors

import "errors"

var (
	ErrSeniorNotFound   = errors.New("senior not found")
	ErrUnderage         = errors.New("senior must be at least 60 years old")
	ErrBarangayMismatch = errors.New("record belongs to another barangay")
)
