package repository

import (
	"errors"
	"fmt"
)

// ErrNotFound is the base sentinel for absent records; the specific
// variants below all wrap it so callers can match either level.
var ErrNotFound = errors.New("not found")

// Sentinel kinds for store errors.
var (
	ErrGameNotFound = fmt.Errorf("game %w", ErrNotFound)
	ErrPickNotFound = fmt.Errorf("pick %w", ErrNotFound)
	ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)
)
