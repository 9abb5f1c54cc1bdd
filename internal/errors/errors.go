package errors

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/julianstephens/habitd/internal/logger"
)

// Kind classifies a domain failure so transports can map it to a status
type Kind string

const (
	NotFound        Kind = "not_found"
	Forbidden       Kind = "forbidden"
	Conflict        Kind = "conflict"
	InvalidArgument Kind = "invalid_argument"
	InvalidState    Kind = "invalid_state"
	Internal        Kind = "internal"
)

// Error is a classified domain error. Details carries the individual
// problems when several checks failed at once.
type Error struct {
	Kind    Kind
	Message string
	Details []string
}

func (e *Error) Error() string {
	return e.Message
}

// New creates a classified error
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Newf creates a classified error using a format string
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithDetails builds an error whose message joins every detail with ". "
func WithDetails(kind Kind, details []string) *Error {
	return &Error{
		Kind:    kind,
		Message: strings.Join(details, ". "),
		Details: details,
	}
}

// KindOf returns the kind of the first classified error in err's chain,
// or Internal when there is none.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is reports whether err carries the given kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// As is errors.As from the standard library
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

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

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err, "kind", KindOf(err))
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}
