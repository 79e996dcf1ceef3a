// Command csvport exports and imports projects, users and memberships as
// CSV files.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/csvport/internal/core"
	_ "github.com/JonMunkholm/csvport/internal/core/entities" // Register all entities
	"github.com/JonMunkholm/csvport/internal/csvio"
	"github.com/JonMunkholm/csvport/internal/models"
)

// Exit codes.
const (
	exitFailure     = 1
	exitUsage       = 2 // bad flags, arguments or configuration
	exitInvalidData = 3 // the CSV file or a record was rejected
)

// exitError attaches an exit code to an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

func exitCode(err error) int {
	var (
		ee *exitError
		ce *core.ConfigError
		pe *csvio.ParseError
		ve *models.ValidationError
	)
	switch {
	case errors.As(err, &ee):
		return ee.code
	case errors.As(err, &ce):
		return exitUsage
	case errors.As(err, &pe), errors.As(err, &ve):
		return exitInvalidData
	default:
		return exitFailure
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	a := &app{}
	err := newRootCmd(a).ExecuteContext(ctx)
	a.close()
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if core.IsUserFacing(err) {
			fmt.Fprintln(os.Stderr, core.FormatUserError(err))
		}
		os.Exit(exitCode(err))
	}
}
