package accounts

import "errors"

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrBarangayRequired   = errors.New("barangay code is required for basca accounts")
)
