package types

import "github.com/pkg/errors"

var (
	// ErrInvalidInput marks malformed caller input; never retried.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound marks a missing audio, sample or asset source.
	ErrNotFound = errors.New("not found")
	// ErrInconsistentPlan marks a content element that could not be scheduled.
	ErrInconsistentPlan = errors.New("inconsistent plan")
)
