package core

import (
	"errors"
	"fmt"

	"github.com/JonMunkholm/csvport/internal/csvio"
)

var (
	ErrUnknownEntity   = errors.New("unknown entity")
	ErrUnknownStrategy = errors.New("unknown strategy")
	ErrInvalidOption   = errors.New("invalid export option")
)

// ConfigError reports a setting the pipeline cannot work with. It is fatal:
// retrying the same run cannot succeed.
type ConfigError struct {
	Setting string
	Value   string
	Err     error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s=%q: %v", e.Setting, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// IsConfigError reports whether err is or wraps a *ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// RowError attaches a CSV line to an error raised while handling that row.
func RowError(line int, err error) error {
	if err == nil {
		return nil
	}
	var pe *csvio.ParseError
	if errors.As(err, &pe) {
		return err
	}
	return &csvio.ParseError{Line: line, Err: err}
}
