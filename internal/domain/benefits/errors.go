package benefits

import "errors"

var (
	ErrApplicationNotFound = errors.New("benefit application not found")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrBarangayMismatch    = errors.New("application belongs to another barangay")
)
