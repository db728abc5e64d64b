package config

import (
	"errors"
	"fmt"
)

// ErrInvalid marks a configuration-content error: the arrangement was read
// but describes something the engine refuses to run.
var ErrInvalid = errors.New("invalid task configuration")

// ErrRead marks a configuration-read error: the source could not be opened
// or is not syntactically valid.
var ErrRead = errors.New("cannot read task configuration")

// Invalidf returns an error wrapping ErrInvalid.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// ReadError wraps err as a configuration-read error for the given source.
func ReadError(source string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrRead, source, err)
}
