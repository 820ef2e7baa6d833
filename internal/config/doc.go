// Package config resolves the scanner configuration.
// Values come from command-line flags, FILIZER_* environment variables, the
// config file and built-in defaults, in that order of precedence, and are
// resolved once into an immutable Config before scanning starts.
package config
