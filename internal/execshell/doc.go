// Package execshell runs external commands (git, primarily) the way the
// teacher repository's internal/execshell package does: a small
// CommandDetails/ExecutionResult vocabulary, an Executor that wraps an
// injected Runner interface, and an os/exec-backed runner for production
// use.
package execshell
