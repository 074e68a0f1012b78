package models

import "errors"

// Error taxonomy shared across the pipeline. Components wrap these with
// fmt.Errorf("...: %w", err) so callers can test with errors.Is.
var (
	// ErrInvalidInput marks empty or otherwise unusable caller input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfiguration marks bad chunking or pipeline parameters.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrDimensionMismatch marks vectors of unequal or unexpected length.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrProviderFailure marks an embedding, generation or index provider
	// error or a malformed provider response.
	ErrProviderFailure = errors.New("provider failure")
)
