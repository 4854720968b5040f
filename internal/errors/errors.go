package errors

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/julianstephens/seasonal/internal/logger"
	"github.com/julianstephens/seasonal/internal/schedule"
	"github.com/julianstephens/seasonal/internal/storage"
)

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Hint returns a follow-up suggestion for errors the user can act on, or "".
func Hint(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, storage.ErrNotInitialized):
		return "run 'seasonal init' to create the store"
	case errors.Is(err, storage.ErrEmbeddedCredentials):
		return "store the connection string with 'seasonal keyring set' or export SEASONAL_DB_CONNECTION"
	case errors.Is(err, schedule.ErrDayOutOfRange):
		return "days run from 1 to 480"
	case errors.Is(err, schedule.ErrPageOutOfRange):
		return "each day has 7 pages of 12 channels"
	case errors.Is(err, schedule.ErrChannelOutOfRange):
		return "channel indexes run from 0 (C1) to 1007 (C1008)"
	}
	return ""
}

// Report writes the formatted error and its hint, if any, to w.
func Report(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(w, Format(err))
	if hint := Hint(err); hint != "" {
		fmt.Fprintf(w, "       %s\n", hint)
	}
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		Report(os.Stderr, err)
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	Fatal(fmt.Errorf(format, args...))
}
