package reservation

import (
	"errors"
	"fmt"

	"linkup/internal/domain/resource"
)

// Kinds. Every specific error below wraps exactly one of these.
var (
	ErrValidation = resource.ErrValidation
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = resource.ErrNotFound
	ErrForbidden  = resource.ErrForbidden
)

var (
	ErrInvalidStart  = fmt.Errorf("%w: start is not a valid timestamp", ErrValidation)
	ErrNotToday      = fmt.Errorf("%w: reservations can only be made for today", ErrValidation)
	ErrNotHalfHour   = fmt.Errorf("%w: start must be on the hour or half hour", ErrValidation)
	ErrOutsideHours  = fmt.Errorf("%w: reservation is outside reservable hours", ErrValidation)
	ErrSlotElapsed   = fmt.Errorf("%w: slot has already ended", ErrValidation)
	ErrAlreadyActive = fmt.Errorf("%w: you already have an active reservation", ErrConflict)
	ErrUnavailable   = fmt.Errorf("%w: resource is not available for reservation", ErrConflict)
	ErrSlotConflict  = fmt.Errorf("%w: slot is already reserved", ErrConflict)
)

// Code maps a domain error to its API error code. ok is false for
// infrastructure failures.
func Code(err error) (code string, ok bool) {
	switch {
	case errors.Is(err, ErrInvalidStart):
		return "INVALID_START", true
	case errors.Is(err, ErrNotToday):
		return "NOT_TODAY", true
	case errors.Is(err, ErrNotHalfHour):
		return "NOT_HALF_HOUR", true
	case errors.Is(err, ErrOutsideHours):
		return "OUTSIDE_HOURS", true
	case errors.Is(err, ErrSlotElapsed):
		return "SLOT_ELAPSED", true
	case errors.Is(err, ErrAlreadyActive):
		return "ALREADY_ACTIVE", true
	case errors.Is(err, ErrUnavailable):
		return "RESOURCE_UNAVAILABLE", true
	case errors.Is(err, ErrSlotConflict):
		return "SLOT_CONFLICT", true
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND", true
	case errors.Is(err, ErrForbidden):
		return "FORBIDDEN", true
	case errors.Is(err, ErrValidation):
		return "VALIDATION_ERROR", true
	case errors.Is(err, ErrConflict):
		return "SLOT_CONFLICT", true
	}
	return "", false
}
