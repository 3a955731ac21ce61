// Package console defines the diagnostic sink and confirmation-prompt
// collaborators the workflow engine writes user-facing progress to. Per
// spec.md §1 the concrete progress console is out of scope for the core;
// this package only specifies the narrow interface the Run Helper and
// workflow modes consume, injected the way the teacher's Environment.Output
// and shared.ConfirmationPrompter are.
package console
