package exitcode

import (
	"os"
	"strings"

	"github.com/getlumos/lumos-action/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates a pass or warn-pass outcome
	Success = 0

	// GeneralError indicates a general error condition, including schema generation failures
	GeneralError = 1

	// UsageError indicates invalid command usage or a configuration error such as no matching schemas
	UsageError = 2

	// PolicyViolation indicates the policy file could not be applied
	PolicyViolation = 3

	// DriftDetected indicates drift blocked the run
	DriftDetected = 4

	// CollaboratorError indicates the generator or artifact reader was unavailable
	CollaboratorError = 7

	// Interrupted indicates the run was cancelled by a signal
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	if err == nil {
		Exit(Success)
		return
	}

	Exit(DetermineExitCode(err))
}

// DetermineExitCode analyzes an error and returns the appropriate exit code
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	switch errors.CodeOf(err) {
	case errors.ErrCodeDriftDetected:
		return DriftDetected
	case errors.ErrCodeNoSchemasMatched, errors.ErrCodeSchemaPattern, errors.ErrCodeOutputCollision, errors.ErrCodeUsage:
		return UsageError
	case errors.ErrCodeCollaboratorUnavailable:
		return CollaboratorError
	case errors.ErrCodePolicyInvalid, errors.ErrCodeEventInvalid:
		return PolicyViolation
	case errors.ErrCodeGenerationFailed:
		return GeneralError
	}

	// cobra reports usage problems as plain errors
	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "unknown flag") || strings.Contains(errMsg, "unknown command") {
		return UsageError
	}
	if strings.Contains(errMsg, "required flag") || strings.Contains(errMsg, "invalid argument") {
		return UsageError
	}

	return GeneralError
}

// GetExitCodeDescription returns a human-readable description of an exit code
func GetExitCodeDescription(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags, arguments or schema patterns)"
	case PolicyViolation:
		return "Policy configuration error"
	case DriftDetected:
		return "Generated code drift detected"
	case CollaboratorError:
		return "Code generator or artifact reader unavailable"
	case Interrupted:
		return "Interrupted"
	default:
		return "Unknown error"
	}
}
