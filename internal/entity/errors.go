package domain

import "errors"

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrInvalidState    = errors.New("invalid state")
	ErrValidation      = errors.New("validation error")
	ErrDataIntegrity   = errors.New("data integrity error")
	ErrGateway         = errors.New("gateway error")
	ErrConflict        = errors.New("conflict")
)
