package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/adamavenir/amelie/internal/guideclient"
	"github.com/adamavenir/amelie/internal/session"
	"github.com/spf13/cobra"
)

func writeCommandError(cmd *cobra.Command, err error) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err.Error())

	if hint := errorHint(err); hint != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Hint: %s\n", hint)
	}

	return err
}

func errorHint(err error) string {
	switch {
	case errors.Is(err, session.ErrNoGuide):
		return "Generate a guide first, or pass --city."
	case errors.Is(err, session.ErrEmptyInput):
		return "The value cannot be blank."
	case errors.Is(err, guideclient.ErrNetworkFailure):
		return fmt.Sprintf("Could not reach the guide service. Check: %s config api_base", AppName)
	case isSchemaError(err):
		return fmt.Sprintf("This looks like a history schema mismatch. Try removing the file at: %s config history_path", AppName)
	}
	return ""
}

// isSchemaError checks if an error is a SQLite schema mismatch.
func isSchemaError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "no such column") ||
		strings.Contains(msg, "no such table") ||
		strings.Contains(msg, "has no column")
}
