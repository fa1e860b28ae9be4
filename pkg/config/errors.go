package config

import "errors"

var (
	// ErrParsingConfig wraps env tag parsing failures, including missing
	// required variables.
	ErrParsingConfig = errors.New("config: failed to parse environment variables")

	// ErrLoadingEnvFiles is returned when an explicitly named .env file
	// cannot be read.
	ErrLoadingEnvFiles = errors.New("config: failed to load env files")

	// ErrNilPointer is returned when a nil pointer is passed to Load.
	ErrNilPointer = errors.New("config: nil pointer provided")
)
