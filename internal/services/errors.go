package services

import "errors"

// Data service errors
var (
	// ErrEmptyFilename is returned when a batch is submitted without an
	// identifying filename.
	ErrEmptyFilename = errors.New("batch filename is empty")
)
