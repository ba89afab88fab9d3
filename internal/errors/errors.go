package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Schema resolution errors (SCHEMA-001 to SCHEMA-099)
	ErrCodeNoSchemasMatched ErrorCode = "SCHEMA-001"
	ErrCodeSchemaPattern    ErrorCode = "SCHEMA-002"
	ErrCodeOutputCollision  ErrorCode = "SCHEMA-003"

	// Generation errors (GEN-001 to GEN-099)
	ErrCodeGenerationFailed        ErrorCode = "GEN-001"
	ErrCodeCollaboratorUnavailable ErrorCode = "GEN-002"

	// Drift errors (DRIFT-001 to DRIFT-099)
	ErrCodeDriftDetected ErrorCode = "DRIFT-001"

	// Policy errors (POLICY-001 to POLICY-099)
	ErrCodePolicyInvalid ErrorCode = "POLICY-001"
	ErrCodeEventInvalid  ErrorCode = "POLICY-002"

	// Invocation errors (USAGE-001 to USAGE-099)
	ErrCodeUsage ErrorCode = "USAGE-001"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileReadFailed  ErrorCode = "IO-002"
	ErrCodeFileWriteFailed ErrorCode = "IO-003"
)

const docsBase = "https://github.com/getlumos/lumos-action#"

// Error represents an enhanced error with code, suggestions, and documentation
type Error struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	DocsURL     string
	Cause       error
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	if e.DocsURL != "" {
		b.WriteString(fmt.Sprintf("\n\nDocumentation: %s", e.DocsURL))
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new Error wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *Error) WithSuggestion(suggestion string) *Error {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *Error) WithSuggestions(suggestions ...string) *Error {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *Error) WithDocs(url string) *Error {
	e.DocsURL = url
	return e
}

// CodeOf returns the code of the first coded error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return ""
}

// HasCode reports whether err's chain contains a coded error with the given code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		if coded, ok := err.(*Error); ok && coded.Code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// NewNoSchemasMatchedError reports that schema globs expanded to nothing.
func NewNoSchemasMatchedError(patterns []string) *Error {
	return New(ErrCodeNoSchemasMatched, fmt.Sprintf("no schemas matched patterns: %s", strings.Join(patterns, ", "))).
		WithSuggestion("Check the --schema patterns are relative to the repository root").
		WithSuggestion("Use '**' to match schemas in nested directories").
		WithDocs(docsBase + "schema-patterns")
}

// NewSchemaPatternError reports a malformed glob pattern.
func NewSchemaPatternError(pattern string, cause error) *Error {
	return Wrap(ErrCodeSchemaPattern, fmt.Sprintf("invalid schema pattern: %s", pattern), cause).
		WithSuggestion("Escape literal brackets and braces in the pattern")
}

// NewOutputCollisionError reports schemas that would share one committed
// output file under a shared output directory.
func NewOutputCollisionError(name string, schemas []string) *Error {
	return New(ErrCodeOutputCollision, fmt.Sprintf("schemas share the output name %q: %s", name, strings.Join(schemas, ", "))).
		WithSuggestion("Rename one of the schemas so each output file is unique").
		WithSuggestion("Remove output_dirs from the policy to keep outputs next to each schema").
		WithDocs(docsBase + "policy-file")
}

// NewCollaboratorUnavailableError reports an infrastructure failure outside any single schema.
func NewCollaboratorUnavailableError(collaborator string, cause error) *Error {
	return Wrap(ErrCodeCollaboratorUnavailable, fmt.Sprintf("%s unavailable", collaborator), cause).
		WithSuggestion("Verify the lumos CLI is installed and on PATH").
		WithSuggestion("Re-run the job; infrastructure failures are not schema errors").
		WithDocs(docsBase + "installation")
}

// NewGenerationFailedError reports that one or more schemas failed to generate.
func NewGenerationFailedError(schemas []string) *Error {
	return New(ErrCodeGenerationFailed, fmt.Sprintf("schema generation failed for: %s", strings.Join(schemas, ", "))).
		WithSuggestion("Run 'lumos validate <schema>' locally to see the syntax error")
}

// NewDriftDetectedError reports a drift failure that policy did not allow through.
func NewDriftDetectedError(count int) *Error {
	return New(ErrCodeDriftDetected, fmt.Sprintf("drift detected in %d generated artifact(s)", count)).
		WithSuggestion("Run 'lumos generate' and commit the regenerated files").
		WithSuggestion("Add an approved override label if the drift is intentional").
		WithDocs(docsBase + "drift-detection")
}

// NewPolicyInvalidError reports an unreadable or malformed policy file.
func NewPolicyInvalidError(path string, cause error) *Error {
	return Wrap(ErrCodePolicyInvalid, fmt.Sprintf("invalid policy file: %s", path), cause).
		WithSuggestion("Check the YAML syntax of the policy file").
		WithDocs(docsBase + "policy-file")
}

// NewFileReadError reports an input file that exists but cannot be read.
func NewFileReadError(path string, cause error) *Error {
	return Wrap(ErrCodeFileReadFailed, fmt.Sprintf("failed to read file: %s", path), cause).
		WithSuggestion("Verify the file exists and is readable")
}

// NewFileWriteError reports a failed output write.
func NewFileWriteError(path string, cause error) *Error {
	return Wrap(ErrCodeFileWriteFailed, fmt.Sprintf("failed to write file: %s", path), cause).
		WithSuggestion("Verify the directory exists and is writable")
}
