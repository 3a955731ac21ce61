package model_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avafanasiev/copybara/internal/model"
)

func changeWithParents(revisionText string, parentRevisionTexts ...string) model.Change {
	var parents []model.Revision
	for _, parentRevisionText := range parentRevisionTexts {
		parents = append(parents, model.NewRevision(parentRevisionText))
	}
	return model.Change{Revision: model.NewRevision(revisionText), Parents: parents}
}

func TestBuildGraphRejectsSelfLoop(testInstance *testing.T) {
	builder := model.NewBuilder()
	buildError := builder.AddChange(changeWithParents("A", "A"))
	require.ErrorIs(testInstance, buildError, model.ErrSelfLoopEdge)
}

func TestBuildGraphClosesOverMissingParents(testInstance *testing.T) {
	graph, buildError := model.BuildGraph([]model.Change{
		changeWithParents("C", "B"),
		changeWithParents("B", "A"),
	})
	require.NoError(testInstance, buildError)
	require.Equal(testInstance, 2, graph.Len())

	node, found := graph.Node(model.NewRevision("B"))
	require.True(testInstance, found)
	require.Empty(testInstance, node.ParentRevisions)
}

func TestChangeGraphReverseTopologicalIsAncestorFirst(testInstance *testing.T) {
	graph, buildError := model.BuildGraph([]model.Change{
		changeWithParents("C", "B"),
		changeWithParents("B", "A"),
		changeWithParents("A"),
	})
	require.NoError(testInstance, buildError)

	ordered := graph.ReverseTopological()
	require.Len(testInstance, ordered, 3)
	require.Equal(testInstance, "A", ordered[0].Revision.AsString())
	require.Equal(testInstance, "B", ordered[1].Revision.AsString())
	require.Equal(testInstance, "C", ordered[2].Revision.AsString())
}

func TestChangeGraphEmptyReverseTopological(testInstance *testing.T) {
	graph, buildError := model.BuildGraph(nil)
	require.NoError(testInstance, buildError)
	require.True(testInstance, graph.Empty())
	require.Nil(testInstance, graph.ReverseTopological())
}

func TestChangeTouchesOnly(testInstance *testing.T) {
	change := model.Change{Files: []string{"a.go", "b.go"}}
	require.True(testInstance, change.TouchesOnly(func(path string) bool { return true }))
	require.False(testInstance, change.TouchesOnly(func(path string) bool { return path == "a.go" }))
}
