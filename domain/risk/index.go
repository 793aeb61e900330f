package risk

import (
	"sort"

	"knowflow-backend/domain/core/entities"
)

// View is the read-only graph surface the engine evaluates. Both the live
// ProcessGraph aggregate and an immutable GraphVersion satisfy it.
type View interface {
	Nodes() []*entities.Node
	Edges() []*entities.Edge
}

// GraphIndex is a prebuilt read-only index over one graph view. It is
// constructed once per evaluation run and shared by every rule, so each
// rule stays a pure function of the indexed snapshot.
type GraphIndex struct {
	nodes   map[string]*entities.Node
	nodeIDs []string // sorted for deterministic iteration
	edges   []*entities.Edge

	inDegree  map[string]int
	outDegree map[string]int
}

// NewGraphIndex indexes a graph view
func NewGraphIndex(v View) *GraphIndex {
	idx := &GraphIndex{
		nodes:     make(map[string]*entities.Node),
		edges:     v.Edges(),
		inDegree:  make(map[string]int),
		outDegree: make(map[string]int),
	}
	for _, n := range v.Nodes() {
		id := n.ID().String()
		idx.nodes[id] = n
		idx.nodeIDs = append(idx.nodeIDs, id)
	}
	sort.Strings(idx.nodeIDs)

	for _, e := range idx.edges {
		idx.outDegree[e.SourceID().String()]++
		idx.inDegree[e.TargetID().String()]++
	}
	return idx
}

// Node returns the indexed node with the given id
func (idx *GraphIndex) Node(id string) (*entities.Node, bool) {
	n, ok := idx.nodes[id]
	return n, ok
}

// NodeIDs returns all node ids in ascending order
func (idx *GraphIndex) NodeIDs() []string {
	return idx.nodeIDs
}

// NodeCount returns the number of indexed nodes
func (idx *GraphIndex) NodeCount() int {
	return len(idx.nodeIDs)
}

// Edges returns all indexed edges
func (idx *GraphIndex) Edges() []*entities.Edge {
	return idx.edges
}

// InDegree returns the number of incoming edges across all relation types
func (idx *GraphIndex) InDegree(id string) int {
	return idx.inDegree[id]
}

// OutDegree returns the number of outgoing edges across all relation types
func (idx *GraphIndex) OutDegree(id string) int {
	return idx.outDegree[id]
}

// Degree returns in-degree plus out-degree
func (idx *GraphIndex) Degree(id string) int {
	return idx.inDegree[id] + idx.outDegree[id]
}

// NodesOfType returns the ids of all nodes of the given type, ascending
func (idx *GraphIndex) NodesOfType(t entities.NodeType) []string {
	var ids []string
	for _, id := range idx.nodeIDs {
		if idx.nodes[id].Type() == t {
			ids = append(ids, id)
		}
	}
	return ids
}

// Label returns the display label for a node id, falling back to the id
// itself for dangling references.
func (idx *GraphIndex) Label(id string) string {
	if n, ok := idx.nodes[id]; ok {
		return n.Label()
	}
	return id
}

// Adjacency builds a forward adjacency map restricted to the given relation
// types; with no relations given, every edge is included. Neighbor lists are
// sorted for deterministic traversal.
func (idx *GraphIndex) Adjacency(relations ...entities.RelationType) map[string][]string {
	allowed := relationSet(relations)
	adj := make(map[string][]string)
	for _, e := range idx.edges {
		if allowed != nil && !allowed[e.Relation()] {
			continue
		}
		adj[e.SourceID().String()] = append(adj[e.SourceID().String()], e.TargetID().String())
	}
	for _, targets := range adj {
		sort.Strings(targets)
	}
	return adj
}

// EdgesFrom returns the outgoing edges of a node, optionally restricted by
// relation type.
func (idx *GraphIndex) EdgesFrom(id string, relations ...entities.RelationType) []*entities.Edge {
	allowed := relationSet(relations)
	var out []*entities.Edge
	for _, e := range idx.edges {
		if e.SourceID().String() != id {
			continue
		}
		if allowed != nil && !allowed[e.Relation()] {
			continue
		}
		out = append(out, e)
	}
	return out
}

// EdgesTo returns the incoming edges of a node, optionally restricted by
// relation type.
func (idx *GraphIndex) EdgesTo(id string, relations ...entities.RelationType) []*entities.Edge {
	allowed := relationSet(relations)
	var in []*entities.Edge
	for _, e := range idx.edges {
		if e.TargetID().String() != id {
			continue
		}
		if allowed != nil && !allowed[e.Relation()] {
			continue
		}
		in = append(in, e)
	}
	return in
}

func relationSet(relations []entities.RelationType) map[entities.RelationType]bool {
	if len(relations) == 0 {
		return nil
	}
	set := make(map[entities.RelationType]bool, len(relations))
	for _, r := range relations {
		set[r] = true
	}
	return set
}
