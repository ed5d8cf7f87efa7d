package model

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInterval is returned when an event does not start before it ends.
	ErrInvalidInterval = errors.New("invalid interval")
	// ErrNotFound is returned when an operation references an unknown event id.
	ErrNotFound = errors.New("event not found")
	// ErrDuplicateID is returned when a loaded event set repeats an id.
	ErrDuplicateID = errors.New("duplicate event id")
)

// NotFound wraps ErrNotFound with the missing id.
func NotFound(id string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}
