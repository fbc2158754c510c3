package firefox

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingInput is matched by every MissingInputError.
	ErrMissingInput = errors.New("session input not found")

	// ErrMalformedDocument means the session document lacks the structure
	// extraction depends on (valid JSON with at least one window).
	ErrMalformedDocument = errors.New("malformed session document")
)

// MissingInputError reports a session source that could not be located or read.
type MissingInputError struct {
	Path string
	Err  error
}

func (e *MissingInputError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%v: %v", ErrMissingInput, e.Err)
	}
	return fmt.Sprintf("%v: %s: %v", ErrMissingInput, e.Path, e.Err)
}

func (e *MissingInputError) Unwrap() error { return e.Err }

func (e *MissingInputError) Is(target error) bool { return target == ErrMissingInput }

func missingInput(path string, err error) error {
	return &MissingInputError{Path: path, Err: err}
}
