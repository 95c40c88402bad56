package documents

import "errors"

var (
	ErrRequestNotFound   = errors.New("document request not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrBarangayMismatch  = errors.New("request belongs to another barangay")
)
