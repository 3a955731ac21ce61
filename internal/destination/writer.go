package destination

import (
	"context"

	"github.com/avafanasiev/copybara/internal/model"
)

// WriterResult reports whether the caller should pause for confirmation
// before continuing a multi-commit run.
type WriterResult int

// Recognized writer results.
const (
	ResultOK WriterResult = iota
	ResultPromptToContinue
)

// Identity is the opaque per-run fingerprint handed to Write so the
// destination can correlate retries and multi-commit sequences.
type Identity string

// Writer is the Destination Writer SPI.
type Writer interface {
	// Write accepts a transformed tree (rooted at treeDir) plus metadata
	// and an optional baseline ancestor (non-empty only for change-request
	// style imports) and produces a commit or review.
	Write(executionContext context.Context, treeDir string, metadata model.Metadata, computed model.ComputedChanges, baseline *model.Revision, identity Identity) (WriterResult, error)

	// SupportsPreviousRef reports whether this destination can recover a
	// previously recorded origin revision (required for ITERATIVE's
	// last-rev lookup and CHANGE_REQUEST's baseline discovery).
	SupportsPreviousRef() bool

	// LabelNameWhenOrigin is the label name this destination stamps on
	// imports to record the upstream origin revision; it is the label
	// CHANGE_REQUEST searches for during automatic baseline discovery, and
	// the label the Run Helper reads back to recover the last-imported
	// revision.
	LabelNameWhenOrigin() string

	// LastImportedRevision reads the designated label off the destination's
	// newest relevant commit. ok is false when no such commit/label exists.
	LastImportedRevision(executionContext context.Context) (revision model.Revision, ok bool, err error)
}
