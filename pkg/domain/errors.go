package domain

import "errors"

// ErrUnknownProvider is returned when a provider name has no adapter.
var ErrUnknownProvider = errors.New("unknown provider")

// ErrServerNotFound is returned when a server key cannot be found in the config file.
var ErrServerNotFound = errors.New("server key not found")

// ErrMissingAPIKey is returned when neither the config nor the environment supplies a key.
var ErrMissingAPIKey = errors.New("missing API key")

// ErrInvalidRole is returned when a turn carries a role outside the transcript set.
var ErrInvalidRole = errors.New("invalid role")

// ErrSystemNotFirst is returned when a system turn is appended to a non-empty transcript.
var ErrSystemNotFirst = errors.New("system turn must be first")

// ErrToolRoundsExceeded is returned when a dispatch keeps requesting tools past the cap.
var ErrToolRoundsExceeded = errors.New("tool rounds exceeded")
