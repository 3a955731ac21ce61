// Package snapshotorigin implements an origin.Reader over a plain directory
// snapshot with no version history — the "some origins have no history"
// case named in spec.md §4.1. SQUASH works with it by skipping last-revision
// lookup and change detection when the origin has no history; ITERATIVE and
// CHANGE_REQUEST fail on it, since they need the origin's history.
package snapshotorigin
