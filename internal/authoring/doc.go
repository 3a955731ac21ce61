// Package authoring implements the authoring policy collaborator named in
// spec.md §6: a default author for SQUASH (which never attributes to
// upstream authors) and a per-commit decision on whether an upstream
// author may be used directly. The allow-list mechanics themselves are a
// declared Non-goal of the core; this package exposes just the two
// operations the Run Helper consumes.
package authoring
