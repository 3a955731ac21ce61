// Package gitorigin implements the origin.Reader SPI on top of
// github.com/go-git/go-git/v5, following the commit-walking and
// ref-resolution patterns used by the pack's gitk-go repository
// (internal/git/service_scan_native.go, repo_handle_native.go): ref
// resolution through the repository's reference store, ancestor traversal
// via (*git.Repository).Log, and tree materialization by reading blobs out
// of a commit's tree rather than relying on a single shared worktree.
package gitorigin
