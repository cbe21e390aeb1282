package bot

import "errors"

var (
	// errEmptyGeneration marks a generative call that returned no text.
	errEmptyGeneration = errors.New("generator returned empty text")

	// ErrCycleRunning is returned when a manual trigger overlaps a
	// cycle already in progress.
	ErrCycleRunning = errors.New("a cycle is already running")
)
