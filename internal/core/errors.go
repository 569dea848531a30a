package core

import "errors"

// Conditions the engine detects before any work is dispatched.
var (
	// ErrInvalidDimensions is returned when two surfaces that must match do not,
	// or when a surface is created with a non-positive size.
	ErrInvalidDimensions = errors.New("invalid dimensions")

	// ErrInvalidWorkerCount is returned when fewer than one worker is requested.
	ErrInvalidWorkerCount = errors.New("invalid worker count")
)
