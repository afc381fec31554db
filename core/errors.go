package core

import (
	"errors"
	"fmt"

	"github.com/checkinblaze/checkinblaze/store"
)

// Error categories surfaced to callers. Handlers check these with errors.Is
// to map failures onto HTTP statuses; everything else is treated as an
// unexpected internal failure.
var (
	// ErrValidation marks missing or malformed required input.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a referenced entity that does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidState marks a workflow precondition violation, such as
	// resolving a check-in that was never acknowledged.
	ErrInvalidState = errors.New("invalid state transition")

	// ErrConflict marks a concurrency-token mismatch that survived the
	// bounded retry. Callers may re-read and re-attempt.
	ErrConflict = store.ErrConflict

	// ErrUpstream marks a transient storage or directory failure.
	ErrUpstream = errors.New("upstream failure")
)

func validationf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrValidation)...)
}

func notFoundf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

func invalidStatef(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidState)...)
}
