package resource

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("resource not found")
	ErrForbidden  = errors.New("forbidden")

	ErrUnknownKind     = fmt.Errorf("%w: unknown resource type", ErrValidation)
	ErrInvalidStatus   = fmt.Errorf("%w: status not valid for this resource type", ErrValidation)
	ErrInvalidPosition = fmt.Errorf("%w: coordinates must be between 0 and 100", ErrValidation)
)
