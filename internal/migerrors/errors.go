package migerrors

import "fmt"

// Kind enumerates the error taxonomy from the workflow engine's error
// handling design: each kind carries its own caller policy (propagate,
// convert to warning under force, or terminal).
type Kind string

// Recognized error kinds.
const (
	KindUnresolvableRevision Kind = "unresolvable-revision"
	KindEmptyChange          Kind = "empty-change"
	KindChangeRejected       Kind = "change-rejected"
	KindValidation           Kind = "validation-error"
	KindRepo                 Kind = "repo-error"
	KindCancelled            Kind = "cancelled"
)

// OperationError is the single error type used across the migration engine.
// Collaborators should construct one of these (via the New* helpers below)
// rather than returning ad-hoc errors, so callers can branch on Kind with
// errors.As.
type OperationError struct {
	Kind    Kind
	Message string
	cause   error
}

// Error implements the error interface.
func (operationError OperationError) Error() string {
	if operationError.cause != nil {
		return fmt.Sprintf("%s: %s: %v", operationError.Kind, operationError.Message, operationError.cause)
	}
	return fmt.Sprintf("%s: %s", operationError.Kind, operationError.Message)
}

// Unwrap exposes the wrapped cause, if any, to errors.Is/errors.As.
func (operationError OperationError) Unwrap() error {
	return operationError.cause
}

// New constructs an OperationError of the given kind.
func New(kind Kind, message string) OperationError {
	return OperationError{Kind: kind, Message: message}
}

// Wrap constructs an OperationError of the given kind around an underlying
// cause.
func Wrap(kind Kind, message string, cause error) OperationError {
	return OperationError{Kind: kind, Message: message, cause: cause}
}

// NewUnresolvableRevision constructs an unresolvable-revision error.
func NewUnresolvableRevision(message string) OperationError {
	return New(KindUnresolvableRevision, message)
}

// NewEmptyChange constructs an empty-change error.
func NewEmptyChange(message string) OperationError {
	return New(KindEmptyChange, message)
}

// NewChangeRejected constructs a change-rejected error.
func NewChangeRejected(message string) OperationError {
	return New(KindChangeRejected, message)
}

// NewValidation constructs a validation-error error.
func NewValidation(message string) OperationError {
	return New(KindValidation, message)
}

// NewRepo wraps a collaborator failure as a repo-error.
func NewRepo(message string, cause error) OperationError {
	return Wrap(KindRepo, message, cause)
}

// NewCancelled constructs a cancelled error.
func NewCancelled(message string) OperationError {
	return New(KindCancelled, message)
}

// Is reports whether err is an OperationError of the given kind.
func Is(err error, kind Kind) bool {
	operationError, matches := AsOperationError(err)
	if !matches {
		return false
	}
	return operationError.Kind == kind
}

// AsOperationError extracts an OperationError from err, following Unwrap
// chains the way errors.As would.
func AsOperationError(err error) (OperationError, bool) {
	for err != nil {
		if operationError, matches := err.(OperationError); matches {
			return operationError, true
		}
		unwrapper, implementsUnwrap := err.(interface{ Unwrap() error })
		if !implementsUnwrap {
			break
		}
		err = unwrapper.Unwrap()
	}
	return OperationError{}, false
}
