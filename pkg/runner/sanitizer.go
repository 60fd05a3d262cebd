package runner

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// DefaultMaxInputSize is the default limit for user input length (bytes).
	DefaultMaxInputSize = 4096
	// EnvMaxInputSize allows overriding the limit via environment variable.
	EnvMaxInputSize = "PARLEY_MAX_INPUT_SIZE"
)

var (
	// ErrInputTooLarge indicates the input exceeded the size limit.
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	// ErrInvalidUTF8 indicates the input contained invalid UTF-8 sequences.
	ErrInvalidUTF8 = errors.New("input contains invalid UTF-8")
)

// SanitizeInput validates and cleans user input.
// It enforces a size limit and strips dangerous control characters
// while preserving newlines and tabs.
func SanitizeInput(input string) (string, error) {
	limit := DefaultMaxInputSize
	if env := os.Getenv(EnvMaxInputSize); env != "" {
		if parsed, err := strconv.Atoi(env); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	if len(input) > limit {
		return "", ErrInputTooLarge
	}

	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	// Fast path: if no control characters (other than safe ones), return as is.
	hasUnsafe := false
	for _, r := range input {
		if unicode.IsControl(r) && !isSafeControl(r) {
			hasUnsafe = true
			break
		}
	}
	if !hasUnsafe {
		return input, nil
	}

	// Slow path: rebuild the string without unsafe controls.
	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if unicode.IsControl(r) && !isSafeControl(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String(), nil
}

// isSafeControl reports whether a control character is allowed through.
func isSafeControl(r rune) bool {
	return r == '\n' || r == '\t' || r == '\r'
}
