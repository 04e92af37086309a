package ingest

import (
	"errors"
	"fmt"
	"strings"
)

var ErrMissingColumns = errors.New("missing required columns")

// FatalError aborts a whole upload. No report is produced.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string { return e.Err.Error() }

func (e *FatalError) Unwrap() error { return e.Err }

func fatal(format string, args ...any) error {
	return &FatalError{Err: fmt.Errorf(format, args...)}
}

func missingColumnsError(missing []string) error {
	return &FatalError{Err: fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))}
}
