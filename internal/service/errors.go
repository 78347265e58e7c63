package service

import (
	"errors"
	"fmt"

	"alcyxob/studio-calendar/internal/repository"
)

// Error kinds. Every error returned by the services wraps exactly one of
// these, so callers branch with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("slot already booked")
	ErrStore      = errors.New("store operation failed")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("not permitted for this role")
)

func validationErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func forbiddenErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}

func notFoundErr(what string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, what)
}

// storeErr classifies a repository failure during op.
func storeErr(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, op)
	case errors.Is(err, repository.ErrDuplicate):
		return fmt.Errorf("%w: %s", ErrConflict, op)
	case errors.Is(err, repository.ErrMissingIndex):
		return fmt.Errorf("%w: %s: a required database index is missing; "+
			"restart with database.ensure_indexes enabled or create the index manually (%v)", ErrStore, op, err)
	default:
		return fmt.Errorf("%w: %s: %v", ErrStore, op, err)
	}
}
