package workflow_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avafanasiev/copybara/internal/authoring"
	"github.com/avafanasiev/copybara/internal/destination"
	"github.com/avafanasiev/copybara/internal/migerrors"
	"github.com/avafanasiev/copybara/internal/model"
	"github.com/avafanasiev/copybara/internal/origin"
	"github.com/avafanasiev/copybara/internal/runhelper"
	"github.com/avafanasiev/copybara/internal/workflow"
)

func newIterativeHelper(originReader *stubOriginReader, destinationWriter *stubDestinationWriter, glob runhelper.Glob, options runhelper.Options) *runhelper.Helper {
	return runhelper.New(originReader.resolved, options, glob, runhelper.Dependencies{
		OriginReader:      originReader,
		DestinationWriter: destinationWriter,
		AuthoringPolicy:   authoring.NewFixedDefaultPolicy("default <default@example.com>", false),
	})
}

func threeLinearChanges() (model.Change, model.Change, model.Change, *model.ChangeGraph) {
	changeA := model.Change{Revision: model.NewRevision("A"), Message: "first", Files: []string{"a.go"}}
	changeB := model.Change{Revision: model.NewRevision("B"), Parents: []model.Revision{changeA.Revision}, Message: "second", Files: []string{"b.go"}}
	changeC := model.Change{Revision: model.NewRevision("C"), Parents: []model.Revision{changeB.Revision}, Message: "third", Files: []string{"c.go"}}
	graph, _ := model.BuildGraph([]model.Change{changeC, changeB, changeA})
	return changeA, changeB, changeC, graph
}

func TestRunIterativeWritesOneCommitPerChange(testInstance *testing.T) {
	_, _, changeC, graph := threeLinearChanges()
	originReader := &stubOriginReader{
		resolved:        changeC.Revision,
		supportsHistory: true,
		changesByRange: map[[2]string]origin.ChangesResponse{
			{"", "C"}: origin.ForChanges(graph),
		},
	}
	destinationWriter := &stubDestinationWriter{supportsPreviousRef: true, lastImportedFound: false}
	helper := newIterativeHelper(originReader, destinationWriter, runhelper.Glob{}, runhelper.Options{Force: true})

	result, runError := workflow.RunIterative(context.Background(), helper, noopConsole{}, alwaysConfirm{})
	require.NoError(testInstance, runError)
	require.Equal(testInstance, 3, result.CommitsWritten)
	require.False(testInstance, result.Truncated)
	require.Len(testInstance, destinationWriter.writes, 3)
}

func TestRunIterativeNoChangesIsEmptyChange(testInstance *testing.T) {
	current := model.NewRevision("A")
	originReader := &stubOriginReader{resolved: current, supportsHistory: true}
	destinationWriter := &stubDestinationWriter{supportsPreviousRef: true, lastImported: current, lastImportedFound: true}
	helper := newIterativeHelper(originReader, destinationWriter, runhelper.Glob{}, runhelper.Options{})

	_, runError := workflow.RunIterative(context.Background(), helper, noopConsole{}, alwaysConfirm{})
	require.True(testInstance, migerrors.Is(runError, migerrors.KindEmptyChange))
}

func TestRunIterativeTruncatesAtLimit(testInstance *testing.T) {
	_, _, changeC, graph := threeLinearChanges()
	originReader := &stubOriginReader{
		resolved:        changeC.Revision,
		supportsHistory: true,
		changesByRange: map[[2]string]origin.ChangesResponse{
			{"", "C"}: origin.ForChanges(graph),
		},
	}
	destinationWriter := &stubDestinationWriter{supportsPreviousRef: true, lastImportedFound: false}
	helper := newIterativeHelper(originReader, destinationWriter, runhelper.Glob{}, runhelper.Options{Force: true, IterativeLimitChanges: 2})

	result, runError := workflow.RunIterative(context.Background(), helper, noopConsole{}, alwaysConfirm{})
	require.NoError(testInstance, runError)
	require.Equal(testInstance, 2, result.CommitsWritten)
	require.True(testInstance, result.Truncated)
}

func TestRunIterativeSkipsChangeOutsideGlob(testInstance *testing.T) {
	_, _, changeC, graph := threeLinearChanges()
	originReader := &stubOriginReader{
		resolved:        changeC.Revision,
		supportsHistory: true,
		changesByRange: map[[2]string]origin.ChangesResponse{
			{"", "C"}: origin.ForChanges(graph),
		},
	}
	destinationWriter := &stubDestinationWriter{supportsPreviousRef: true, lastImportedFound: false}
	helper := newIterativeHelper(originReader, destinationWriter, runhelper.Glob{Exclude: []string{"b.go"}}, runhelper.Options{Force: true})

	result, runError := workflow.RunIterative(context.Background(), helper, noopConsole{}, alwaysConfirm{})
	require.NoError(testInstance, runError)
	require.Equal(testInstance, 2, result.CommitsWritten)
	require.Len(testInstance, destinationWriter.writes, 2)
}

func TestRunIterativeStopsWhenPromptIsDeclined(testInstance *testing.T) {
	_, _, changeC, graph := threeLinearChanges()
	originReader := &stubOriginReader{
		resolved:        changeC.Revision,
		supportsHistory: true,
		changesByRange: map[[2]string]origin.ChangesResponse{
			{"", "C"}: origin.ForChanges(graph),
		},
	}
	destinationWriter := &stubDestinationWriter{
		supportsPreviousRef: true,
		lastImportedFound:   false,
		results:             []destination.WriterResult{destination.ResultPromptToContinue},
	}
	helper := newIterativeHelper(originReader, destinationWriter, runhelper.Glob{}, runhelper.Options{Force: true})

	result, runError := workflow.RunIterative(context.Background(), helper, noopConsole{}, neverConfirm{})
	require.True(testInstance, migerrors.Is(runError, migerrors.KindChangeRejected))
	require.Equal(testInstance, 0, result.CommitsWritten)
	require.Len(testInstance, destinationWriter.writes, 1)
}
