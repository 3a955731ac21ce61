package model

// Metadata is the (message, author) pair the destination writer stamps on
// the commit it produces.
type Metadata struct {
	Message string
	Author  string
}

// ComputedChanges gives the destination writer visibility into what is
// being written now and what this run has already written, so downstream
// templating can reference both. Current holds the changes being written
// now: SQUASH supplies them newest-first, while ITERATIVE and
// CHANGE_REQUEST supply a single change. AlreadyMigrated is
// most-recent-first.
type ComputedChanges struct {
	Current         []Change
	AlreadyMigrated []Change
}
