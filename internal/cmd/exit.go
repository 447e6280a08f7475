package cmd

import (
	"errors"

	"github.com/userlens/userlens/internal/config"
)

// Exit codes: 0 success, 1 runtime failure, 2 usage or config error.
const (
	ExitFailure = 1
	ExitUsage   = 2
)

// ExitCode maps a command error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var validation *config.ValidationError
	if errors.As(err, &validation) {
		return ExitUsage
	}
	return ExitFailure
}
