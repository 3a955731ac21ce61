// Package migerrors implements the error-kind taxonomy the workflow engine
// and its collaborators use instead of ad-hoc sentinel errors: one exported
// type carrying a Kind plus a human message, tested with errors.As the way
// the teacher's repos/errors.OperationError is tested in
// internal/workflow/error_handling.go.
package migerrors
