package errors

import (
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// FileUnreadable indicates a scan or fixture file could not be opened or read
	FileUnreadable ErrorCode = "FILE_UNREADABLE"
	// MalformedJSON indicates a document is not valid JSON
	MalformedJSON ErrorCode = "MALFORMED_JSON"
	// MissingFiles indicates a scan document has no "files" sequence
	MissingFiles ErrorCode = "MISSING_FILES"
	// InvalidPurl indicates a package identifier is not a valid package-url
	InvalidPurl ErrorCode = "INVALID_PURL"
	// FixtureMismatch indicates results differ from the expected fixture
	FixtureMismatch ErrorCode = "FIXTURE_MISMATCH"
	// ManifestInvalid indicates a fixture manifest could not be used
	ManifestInvalid ErrorCode = "MANIFEST_INVALID"
	// WriteFailed indicates a fixture could not be regenerated
	WriteFailed ErrorCode = "WRITE_FAILED"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// SetEnv suggests setting an environment variable
	SetEnv FixActionType = "set-env"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Description string        `json:"description,omitempty"`
}

// Error represents a scancmp error with code, message, and suggestions
type Error struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// New creates a new Error with the default fixes for its code
func New(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: GetSuggestedFixes(code),
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *Error) WithDetails(details interface{}) *Error {
	e.Details = details
	return e
}

// HasCode reports whether err is an *Error carrying code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Code == code {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	FixtureMismatch: {
		{
			Type:        SetEnv,
			Command:     "PURLDB_TOOLKIT_TEST_FIXTURES_REGEN=1",
			Description: "Regenerate the expected fixture if the new output is correct",
		},
	},
	ManifestInvalid: {
		{
			Type:        RunCommand,
			Command:     "scancmp suite --help",
			Description: "Check the manifest format",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
