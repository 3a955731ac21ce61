// Package gitdestination implements destination.Writer by shelling out to
// the git CLI, following the same execshell.Executor-mediated command
// pattern the teacher's internal/migrate.Service uses to stage, commit, and
// push (commitWorkflowChanges, pushWorkflowChanges in
// internal/migrate/service.go). A commit or review is represented as a
// commit on a git branch carrying a Copybara-style trailer that records the
// origin revision under the destination's configured label name.
package gitdestination
