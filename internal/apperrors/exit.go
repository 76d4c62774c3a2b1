package apperrors

import "errors"

// Process exit codes reported by the CLI.
const (
	ExitOK            = 0
	ExitFailure       = 1
	ExitConfiguration = 2
	ExitState         = 3
	ExitDiscovery     = 4
	ExitIO            = 5
)

// ExitCode maps an error to the process exit code for its class.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrConfiguration):
		return ExitConfiguration
	case errors.Is(err, ErrState):
		return ExitState
	case errors.Is(err, ErrDiscovery):
		return ExitDiscovery
	case errors.Is(err, ErrIO):
		return ExitIO
	default:
		return ExitFailure
	}
}
