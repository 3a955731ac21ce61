package runhelper_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avafanasiev/copybara/internal/authoring"
	"github.com/avafanasiev/copybara/internal/console"
	"github.com/avafanasiev/copybara/internal/destination"
	"github.com/avafanasiev/copybara/internal/migerrors"
	"github.com/avafanasiev/copybara/internal/model"
	"github.com/avafanasiev/copybara/internal/origin"
	"github.com/avafanasiev/copybara/internal/runhelper"
)

type stubOriginReader struct {
	labelName       string
	supportsHistory bool
	changesByRange  map[[2]string]origin.ChangesResponse
}

func (reader stubOriginReader) Resolve(context.Context, string) (model.Revision, error) {
	return model.Revision{}, nil
}
func (reader stubOriginReader) Checkout(context.Context, model.Revision, string) error { return nil }
func (reader stubOriginReader) Changes(_ context.Context, fromRev model.Revision, toRev model.Revision) (origin.ChangesResponse, error) {
	response, found := reader.changesByRange[[2]string{fromRev.AsString(), toRev.AsString()}]
	if !found {
		return origin.NoChanges(origin.NoChangesReasonNone), nil
	}
	return response, nil
}
func (reader stubOriginReader) Change(context.Context, model.Revision) (model.Change, error) {
	return model.Change{}, nil
}
func (reader stubOriginReader) VisitChanges(context.Context, model.Revision, origin.Visitor) error {
	return nil
}
func (reader stubOriginReader) SupportsHistory() bool { return reader.supportsHistory }
func (reader stubOriginReader) LabelName() string     { return reader.labelName }

type stubDestinationWriter struct {
	supportsPreviousRef bool
	labelName           string
	lastImported        model.Revision
	lastImportedFound   bool
}

func (writer stubDestinationWriter) Write(context.Context, string, model.Metadata, model.ComputedChanges, *model.Revision, destination.Identity) (destination.WriterResult, error) {
	return destination.ResultOK, nil
}
func (writer stubDestinationWriter) SupportsPreviousRef() bool   { return writer.supportsPreviousRef }
func (writer stubDestinationWriter) LabelNameWhenOrigin() string { return writer.labelName }
func (writer stubDestinationWriter) LastImportedRevision(context.Context) (model.Revision, bool, error) {
	return writer.lastImported, writer.lastImportedFound, nil
}

func newTestHelper(originReader origin.Reader, destinationWriter destination.Writer, glob runhelper.Glob, options runhelper.Options) *runhelper.Helper {
	return runhelper.New(model.NewRevision("C"), options, glob, runhelper.Dependencies{
		OriginReader:      originReader,
		DestinationWriter: destinationWriter,
		AuthoringPolicy:   authoring.NewFixedDefaultPolicy("default <default@example.com>", false),
	})
}

func TestSkipChangesEmptyIsTrue(testInstance *testing.T) {
	helper := newTestHelper(stubOriginReader{}, stubDestinationWriter{}, runhelper.Glob{}, runhelper.Options{})
	require.True(testInstance, helper.SkipChanges(nil))
}

func TestSkipChangesRespectsGlob(testInstance *testing.T) {
	glob := runhelper.Glob{Include: []string{"src/*.go"}}
	helper := newTestHelper(stubOriginReader{}, stubDestinationWriter{}, glob, runhelper.Options{})

	outsideGlob := model.Change{Files: []string{"README.md"}}
	require.True(testInstance, helper.SkipChanges([]model.Change{outsideGlob}))

	insideGlob := model.Change{Files: []string{"src/main.go"}}
	require.False(testInstance, helper.SkipChanges([]model.Change{insideGlob}))
}

func TestMaybeGetLastRevForceConvertsToWarning(testInstance *testing.T) {
	helper := newTestHelper(stubOriginReader{supportsHistory: true}, stubDestinationWriter{supportsPreviousRef: true}, runhelper.Glob{}, runhelper.Options{Force: true})

	var warnings []string
	progressConsole := console.NewFuncConsole(func(string) {}, func(message string) { warnings = append(warnings, message) })

	revision, found, lastRevError := helper.MaybeGetLastRev(context.Background(), progressConsole)
	require.NoError(testInstance, lastRevError)
	require.False(testInstance, found)
	require.True(testInstance, revision.IsZero())
	require.Len(testInstance, warnings, 1)
}

func TestMaybeGetLastRevWithoutForceIsValidationError(testInstance *testing.T) {
	helper := newTestHelper(stubOriginReader{supportsHistory: true}, stubDestinationWriter{supportsPreviousRef: true}, runhelper.Glob{}, runhelper.Options{})

	_, found, lastRevError := helper.MaybeGetLastRev(context.Background(), nil)
	require.False(testInstance, found)
	require.True(testInstance, migerrors.Is(lastRevError, migerrors.KindValidation))
}

func TestGetChangesReturnsReverseTopologicalOrder(testInstance *testing.T) {
	changeA := model.Change{Revision: model.NewRevision("A")}
	changeB := model.Change{Revision: model.NewRevision("B"), Parents: []model.Revision{changeA.Revision}}
	graph, buildError := model.BuildGraph([]model.Change{changeB, changeA})
	require.NoError(testInstance, buildError)

	originReader := stubOriginReader{
		supportsHistory: true,
		changesByRange: map[[2]string]origin.ChangesResponse{
			{"A", "B"}: origin.ForChanges(graph),
		},
	}
	helper := newTestHelper(originReader, stubDestinationWriter{}, runhelper.Glob{}, runhelper.Options{})

	changes, changesError := helper.GetChanges(context.Background(), model.NewRevision("A"), model.NewRevision("B"))
	require.NoError(testInstance, changesError)
	require.Len(testInstance, changes, 2)
	require.Equal(testInstance, "A", changes[0].Revision.AsString())
	require.Equal(testInstance, "B", changes[1].Revision.AsString())
}

func TestForChangesNarrowsGlobWithoutMutatingParent(testInstance *testing.T) {
	parent := newTestHelper(stubOriginReader{}, stubDestinationWriter{}, runhelper.Glob{Include: []string{"*.go"}}, runhelper.Options{})
	child := parent.ForChanges(runhelper.Glob{Include: []string{"*.md"}})

	require.False(testInstance, parent.SkipChanges([]model.Change{{Files: []string{"a.go"}}}))
	require.True(testInstance, child.SkipChanges([]model.Change{{Files: []string{"a.go"}}}))
	require.False(testInstance, child.SkipChanges([]model.Change{{Files: []string{"a.md"}}}))
}
