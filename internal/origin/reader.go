package origin

import (
	"context"

	"github.com/avafanasiev/copybara/internal/model"
)

// NoChangesReason enumerates why changes() produced an empty result.
type NoChangesReason string

// Recognized no-changes reasons.
const (
	NoChangesReasonNone              NoChangesReason = "NO_CHANGES"
	NoChangesReasonFilesExcluded     NoChangesReason = "TO_FILES_EXCLUDED"
	NoChangesReasonUnrelatedRevision NoChangesReason = "UNRELATED_REVISIONS"
)

// ChangesResponse is either a non-empty change graph or a reason why none
// was produced.
type ChangesResponse struct {
	graph  *model.ChangeGraph
	reason NoChangesReason
}

// ForChanges wraps a non-empty change graph.
func ForChanges(graph *model.ChangeGraph) ChangesResponse {
	return ChangesResponse{graph: graph}
}

// NoChanges wraps a reason for an empty result.
func NoChanges(reason NoChangesReason) ChangesResponse {
	return ChangesResponse{reason: reason}
}

// IsEmpty reports whether this response carries no changes.
func (response ChangesResponse) IsEmpty() bool {
	return response.graph.Empty()
}

// Graph returns the underlying change graph; nil when IsEmpty is true.
func (response ChangesResponse) Graph() *model.ChangeGraph {
	return response.graph
}

// Reason returns why the response is empty; zero value when it is not.
func (response ChangesResponse) Reason() NoChangesReason {
	return response.reason
}

// VisitResult is the iteration-control variant returned by a Visitor: no
// exceptions are used for traversal control flow.
type VisitResult int

// Recognized visit results.
const (
	VisitContinue VisitResult = iota
	VisitTerminate
)

// Visitor inspects a change during an ancestor walk and decides whether the
// walk should continue.
type Visitor func(change model.Change) VisitResult

// Reader is the Origin Reader SPI.
type Reader interface {
	// Resolve resolves a human reference (branch, tag, hash, or empty for
	// the origin's default) to a Revision.
	Resolve(executionContext context.Context, reference string) (model.Revision, error)

	// Checkout materializes the tree of revision into workDir, which must
	// already exist; its contents are deleted and repopulated.
	Checkout(executionContext context.Context, revision model.Revision, workDir string) error

	// Changes enumerates commits in the half-open range (fromRev, toRev].
	// When fromRev is the zero Revision, all ancestors of toRev are
	// returned (up to the reader's configured limit, if any).
	Changes(executionContext context.Context, fromRev model.Revision, toRev model.Revision) (ChangesResponse, error)

	// Change fetches exactly one change.
	Change(executionContext context.Context, revision model.Revision) (model.Change, error)

	// VisitChanges walks ancestors of start in reverse-chronological order,
	// first-parent preferred, stopping on VisitTerminate or when history is
	// exhausted. No node is visited twice.
	VisitChanges(executionContext context.Context, start model.Revision, visitor Visitor) error

	// SupportsHistory reports whether this origin has any history at all;
	// origins that do not (e.g. folder snapshots) implement only Resolve
	// and Checkout meaningfully.
	SupportsHistory() bool

	// LabelName is a diagnostic string identifying this origin, used e.g.
	// in validation error messages.
	LabelName() string
}
