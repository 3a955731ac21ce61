package workflow_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avafanasiev/copybara/internal/authoring"
	"github.com/avafanasiev/copybara/internal/migerrors"
	"github.com/avafanasiev/copybara/internal/model"
	"github.com/avafanasiev/copybara/internal/runhelper"
	"github.com/avafanasiev/copybara/internal/workflow"
)

func newChangeRequestHelper(originReader *stubOriginReader, destinationWriter *stubDestinationWriter) *runhelper.Helper {
	return runhelper.New(originReader.resolved, runhelper.Options{}, runhelper.Glob{}, runhelper.Dependencies{
		OriginReader:      originReader,
		DestinationWriter: destinationWriter,
		AuthoringPolicy:   authoring.NewFixedDefaultPolicy("default <default@example.com>", false),
	})
}

func TestRunChangeRequestRequiresPreviousRefSupport(testInstance *testing.T) {
	originReader := &stubOriginReader{resolved: model.NewRevision("C")}
	destinationWriter := &stubDestinationWriter{supportsPreviousRef: false}
	helper := newChangeRequestHelper(originReader, destinationWriter)

	_, runError := workflow.RunChangeRequest(context.Background(), helper, noopConsole{}, "")
	require.True(testInstance, migerrors.Is(runError, migerrors.KindValidation))
}

func TestRunChangeRequestUsesExplicitParentOverride(testInstance *testing.T) {
	current := model.NewRevision("C")
	baseline := model.NewRevision("BASE")
	originReader := &stubOriginReader{
		resolved: current,
		changeByRev: map[string]model.Change{
			"C": {Revision: current, Message: "review this"},
		},
	}

	destinationWriter := &stubDestinationWriter{supportsPreviousRef: true, labelName: "GitOrigin-RevId"}
	helper := newChangeRequestHelper(originReader, destinationWriter)

	result, runError := workflow.RunChangeRequest(context.Background(), helper, noopConsole{}, baseline.AsString())
	require.NoError(testInstance, runError)
	require.Equal(testInstance, 1, result.CommitsWritten)
	require.Len(testInstance, destinationWriter.writes, 1)
	require.Len(testInstance, destinationWriter.baselines, 1)
	require.NotNil(testInstance, destinationWriter.baselines[0])
	require.Equal(testInstance, baseline.AsString(), destinationWriter.baselines[0].AsString())
}

func TestRunChangeRequestDiscoversBaselineFromLabel(testInstance *testing.T) {
	current := model.NewRevision("C")
	// The ancestor's own revision ("A") is deliberately different from the
	// label value it carries ("d1") so the assertion below can't pass by
	// mistakenly using the ancestor's revision instead of its label value.
	labels := model.NewLabels()
	labels.Add("GitOrigin-RevId", "d1")
	baselineChange := model.Change{Revision: model.NewRevision("A"), Labels: labels}

	originReader := &stubOriginReader{
		resolved:      current,
		visitSequence: []model.Change{{Revision: current}, baselineChange},
		changeByRev: map[string]model.Change{
			"C": {Revision: current, Message: "review this"},
		},
	}
	destinationWriter := &stubDestinationWriter{supportsPreviousRef: true, labelName: "GitOrigin-RevId"}
	helper := newChangeRequestHelper(originReader, destinationWriter)

	result, runError := workflow.RunChangeRequest(context.Background(), helper, noopConsole{}, "")
	require.NoError(testInstance, runError)
	require.Equal(testInstance, 1, result.CommitsWritten)
	require.Len(testInstance, destinationWriter.baselines, 1)
	require.NotNil(testInstance, destinationWriter.baselines[0])
	require.Equal(testInstance, "d1", destinationWriter.baselines[0].AsString())
}

func TestRunChangeRequestNoBaselineFoundIsValidationError(testInstance *testing.T) {
	current := model.NewRevision("C")
	originReader := &stubOriginReader{
		resolved:      current,
		visitSequence: []model.Change{{Revision: current}},
		changeByRev: map[string]model.Change{
			"C": {Revision: current, Message: "review this"},
		},
	}
	destinationWriter := &stubDestinationWriter{supportsPreviousRef: true, labelName: "GitOrigin-RevId"}
	helper := newChangeRequestHelper(originReader, destinationWriter)

	_, runError := workflow.RunChangeRequest(context.Background(), helper, noopConsole{}, "")
	require.True(testInstance, migerrors.Is(runError, migerrors.KindValidation))
}
