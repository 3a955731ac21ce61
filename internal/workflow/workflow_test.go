package workflow_test

import (
	"context"

	"github.com/avafanasiev/copybara/internal/destination"
	"github.com/avafanasiev/copybara/internal/model"
	"github.com/avafanasiev/copybara/internal/origin"
)

// stubOriginReader and stubDestinationWriter are shared, minimal SPI
// implementations exercised across squash_test.go, iterative_test.go and
// changerequest_test.go.
type stubOriginReader struct {
	labelName       string
	supportsHistory bool
	resolved        model.Revision
	changesByRange  map[[2]string]origin.ChangesResponse
	changeByRev     map[string]model.Change
	visitSequence   []model.Change
}

func (reader stubOriginReader) Resolve(context.Context, string) (model.Revision, error) {
	return reader.resolved, nil
}

func (reader stubOriginReader) Checkout(context.Context, model.Revision, string) error { return nil }

func (reader stubOriginReader) Changes(_ context.Context, fromRev model.Revision, toRev model.Revision) (origin.ChangesResponse, error) {
	response, found := reader.changesByRange[[2]string{fromRev.AsString(), toRev.AsString()}]
	if !found {
		return origin.NoChanges(origin.NoChangesReasonNone), nil
	}
	return response, nil
}

func (reader stubOriginReader) Change(_ context.Context, revision model.Revision) (model.Change, error) {
	return reader.changeByRev[revision.AsString()], nil
}

func (reader stubOriginReader) VisitChanges(_ context.Context, _ model.Revision, visitor origin.Visitor) error {
	for _, change := range reader.visitSequence {
		if visitor(change) == origin.VisitTerminate {
			break
		}
	}
	return nil
}

func (reader stubOriginReader) SupportsHistory() bool { return reader.supportsHistory }
func (reader stubOriginReader) LabelName() string     { return reader.labelName }

type stubDestinationWriter struct {
	supportsPreviousRef bool
	labelName           string
	lastImported        model.Revision
	lastImportedFound   bool
	results             []destination.WriterResult
	writeError          error
	writes              []model.Metadata
	computed            []model.ComputedChanges
	baselines           []*model.Revision
}

func (writer *stubDestinationWriter) Write(_ context.Context, _ string, metadata model.Metadata, computed model.ComputedChanges, baseline *model.Revision, _ destination.Identity) (destination.WriterResult, error) {
	writer.writes = append(writer.writes, metadata)
	writer.computed = append(writer.computed, computed)
	writer.baselines = append(writer.baselines, baseline)
	if writer.writeError != nil {
		return destination.ResultOK, writer.writeError
	}
	if len(writer.results) == 0 {
		return destination.ResultOK, nil
	}
	result := writer.results[0]
	writer.results = writer.results[1:]
	return result, nil
}

func (writer *stubDestinationWriter) SupportsPreviousRef() bool   { return writer.supportsPreviousRef }
func (writer *stubDestinationWriter) LabelNameWhenOrigin() string { return writer.labelName }
func (writer *stubDestinationWriter) LastImportedRevision(context.Context) (model.Revision, bool, error) {
	return writer.lastImported, writer.lastImportedFound, nil
}

type noopConsole struct{}

func (noopConsole) Info(string) {}
func (noopConsole) Warn(string) {}

type alwaysConfirm struct{}

func (alwaysConfirm) ConfirmContinue(string) (bool, error) { return true, nil }

type neverConfirm struct{}

func (neverConfirm) ConfirmContinue(string) (bool, error) { return false, nil }
