package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
var (
	// ErrNoURL is returned when no registry URL is configured.
	ErrNoURL = errors.New("registry URL required: use --url, set FILIZER_URL, or run 'filizer init'")

	// ErrInvalidURL is returned when the registry URL is not an absolute
	// http or https URL.
	ErrInvalidURL = errors.New("invalid registry URL: expected http(s)://host/path")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxAttempts is returned when the attempt count is not positive.
	ErrInvalidMaxAttempts = errors.New("invalid max attempts: must be at least 1")

	// ErrInvalidLevel is returned for an unknown log level.
	ErrInvalidLevel = errors.New("invalid log level: choose DEBUG, INFO, WARNING or ERROR")

	// ErrInvalidFormat is returned for an unknown report format.
	ErrInvalidFormat = errors.New("invalid report format: choose text, json, markdown or yaml")

	// ErrNoPath is returned when the scan path is empty.
	ErrNoPath = errors.New("no scan path specified")

	// ErrConfigNotFound is returned when an explicitly requested
	// configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
)
