package csvio

import (
	"errors"
	"fmt"
)

var (
	ErrMissingHeader   = errors.New("missing header row")
	ErrUnknownColumn   = errors.New("unknown column")
	ErrMissingColumn   = errors.New("missing required column")
	ErrDuplicateColumn = errors.New("duplicate column")
	ErrFieldCount      = errors.New("wrong number of fields")
	ErrBlank           = errors.New("is required")
	ErrInvalidInt      = errors.New("invalid integer")
	ErrInvalidTime     = errors.New("invalid timestamp")
	ErrInvalidDate     = errors.New("invalid date")
)

// ParseError reports a problem decoding a CSV file.
// Line is 1-based and counts the header row.
type ParseError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("line %d", e.Line)
	if e.Column != "" {
		msg += fmt.Sprintf(", column %q", e.Column)
	}
	if e.Value != "" {
		msg += fmt.Sprintf(", value %q", e.Value)
	}
	return msg + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }
