package appointments

import "errors"

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrBarangayMismatch    = errors.New("appointment belongs to another barangay")
)
