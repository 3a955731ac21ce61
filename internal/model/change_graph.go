package model

import "errors"

// ErrSelfLoopEdge is returned by the builder when a change lists itself as
// its own parent.
var ErrSelfLoopEdge = errors.New("change graph: change cannot be its own parent")

// GraphNode is one change plus the list of parent revisions that are also
// members of the same graph, in the VCS's original parent order (the first
// entry is the first-parent).
type GraphNode struct {
	Change         Change
	ParentRevisions []Revision
}

// ChangeGraph is an immutable directed acyclic graph whose nodes are changes
// and whose edges point from child to parent. It is closed under its own
// node set: every edge endpoint names a node that is also present in the
// graph.
type ChangeGraph struct {
	nodes       []GraphNode
	indexByRev  map[string]int
}

// Empty reports whether the graph has no nodes.
func (graph *ChangeGraph) Empty() bool {
	return graph == nil || len(graph.nodes) == 0
}

// Len returns the number of nodes in the graph.
func (graph *ChangeGraph) Len() int {
	if graph == nil {
		return 0
	}
	return len(graph.nodes)
}

// Node returns the graph node for revision, if it is a member.
func (graph *ChangeGraph) Node(revision Revision) (GraphNode, bool) {
	if graph == nil {
		return GraphNode{}, false
	}
	index, exists := graph.indexByRev[revision.AsString()]
	if !exists {
		return GraphNode{}, false
	}
	return graph.nodes[index], true
}

// Nodes returns the graph's nodes in the order they were added by the
// builder (child-first, as supplied by the VCS).
func (graph *ChangeGraph) Nodes() []GraphNode {
	if graph == nil {
		return nil
	}
	return append([]GraphNode{}, graph.nodes...)
}

// ReverseTopological returns the graph's changes in ancestor-first order
// (oldest first): a simple Kahn's-algorithm walk over the child->parent
// edges reversed. Returns an empty slice for an empty graph.
func (graph *ChangeGraph) ReverseTopological() []Change {
	if graph.Empty() {
		return nil
	}

	childrenByRevision := make(map[string][]int, len(graph.nodes))
	remainingParents := make([]int, len(graph.nodes))
	for nodeIndex, node := range graph.nodes {
		remainingParents[nodeIndex] = len(node.ParentRevisions)
		for _, parentRevision := range node.ParentRevisions {
			_, parentIsMember := graph.indexByRev[parentRevision.AsString()]
			if !parentIsMember {
				continue
			}
			childrenByRevision[parentRevision.AsString()] = append(childrenByRevision[parentRevision.AsString()], nodeIndex)
		}
	}

	var ready []int
	for nodeIndex := range graph.nodes {
		if remainingParents[nodeIndex] == 0 {
			ready = append(ready, nodeIndex)
		}
	}

	ordered := make([]Change, 0, len(graph.nodes))
	visited := make([]bool, len(graph.nodes))
	for len(ready) > 0 {
		nodeIndex := ready[0]
		ready = ready[1:]
		if visited[nodeIndex] {
			continue
		}
		visited[nodeIndex] = true
		ordered = append(ordered, graph.nodes[nodeIndex].Change)

		revisionKey := graph.nodes[nodeIndex].Change.Revision.AsString()
		for _, childIndex := range childrenByRevision[revisionKey] {
			remainingParents[childIndex]--
			if remainingParents[childIndex] == 0 {
				ready = append(ready, childIndex)
			}
		}
	}

	return ordered
}

// Builder assembles a ChangeGraph from a topologically ordered (child-first)
// stream of changes. Parents not present in the builder's node set are
// silently dropped, closing the graph under the returned nodes.
type Builder struct {
	nodes      []GraphNode
	indexByRev map[string]int
}

// NewBuilder constructs an empty change graph builder.
func NewBuilder() *Builder {
	return &Builder{indexByRev: make(map[string]int)}
}

// AddChange adds change as a node. Parent revisions are recorded verbatim in
// the VCS's order; edges to parents outside the builder's node set are
// resolved (and thus dropped if absent) when Build is called.
func (builder *Builder) AddChange(change Change) error {
	for _, parentRevision := range change.Parents {
		if parentRevision.Equal(change.Revision) {
			return ErrSelfLoopEdge
		}
	}

	if _, alreadyPresent := builder.indexByRev[change.Revision.AsString()]; alreadyPresent {
		return nil
	}

	builder.indexByRev[change.Revision.AsString()] = len(builder.nodes)
	builder.nodes = append(builder.nodes, GraphNode{Change: change, ParentRevisions: append([]Revision{}, change.Parents...)})
	return nil
}

// Build finalizes the graph, dropping parent edges whose target is not a
// member node.
func (builder *Builder) Build() *ChangeGraph {
	closedNodes := make([]GraphNode, len(builder.nodes))
	for nodeIndex, node := range builder.nodes {
		closedParents := make([]Revision, 0, len(node.ParentRevisions))
		for _, parentRevision := range node.ParentRevisions {
			if _, parentIsMember := builder.indexByRev[parentRevision.AsString()]; parentIsMember {
				closedParents = append(closedParents, parentRevision)
			}
		}
		closedNodes[nodeIndex] = GraphNode{Change: node.Change, ParentRevisions: closedParents}
	}

	indexCopy := make(map[string]int, len(builder.indexByRev))
	for revisionKey, nodeIndex := range builder.indexByRev {
		indexCopy[revisionKey] = nodeIndex
	}

	return &ChangeGraph{nodes: closedNodes, indexByRev: indexCopy}
}

// BuildGraph is a convenience wrapper for origins that already have a
// topologically ordered (child-first) change slice in hand.
func BuildGraph(changes []Change) (*ChangeGraph, error) {
	builder := NewBuilder()
	for _, change := range changes {
		if buildError := builder.AddChange(change); buildError != nil {
			return nil, buildError
		}
	}
	return builder.Build(), nil
}
