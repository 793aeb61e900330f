package aggregates

import (
	"sort"
	"sync"

	"knowflow-backend/domain/core/entities"
	"knowflow-backend/domain/core/valueobjects"
	pkgerrors "knowflow-backend/pkg/errors"
)

// labelKey is the dedup key for merging candidate nodes
type labelKey struct {
	nodeType entities.NodeType
	label    string
}

// ProcessGraph is the aggregate root for one process's live knowledge graph.
// It is the single owner of the mutable node and edge collections; snapshots
// and analytics only ever see deep copies.
//
// Concurrency: merges and removals are serialized by the write lock
// (read-then-write dedup is not safe under interleaving). Snapshot copies
// take the read lock, which excludes in-flight merges, so a snapshot always
// observes a consistent point-in-time state.
type ProcessGraph struct {
	mu sync.RWMutex

	processID  valueobjects.ProcessID
	nodes      map[string]*entities.Node
	edges      map[entities.EdgeIdentity]*entities.Edge
	labelIndex map[labelKey]string // (type, normalized label) -> node id
}

// MergeOutcome reports the per-batch result of a merge operation.
// A failed candidate never aborts the rest of the batch.
type MergeOutcome struct {
	Inserted int
	Merged   int
	Failed   int
	Failures []CandidateFailure
}

// CandidateFailure records why one candidate in a batch was rejected
type CandidateFailure struct {
	Reference string `json:"reference"`
	Reason    string `json:"reason"`
}

// NewProcessGraph creates an empty live graph for a process
func NewProcessGraph(processID valueobjects.ProcessID) *ProcessGraph {
	return &ProcessGraph{
		processID:  processID,
		nodes:      make(map[string]*entities.Node),
		edges:      make(map[entities.EdgeIdentity]*entities.Edge),
		labelIndex: make(map[labelKey]string),
	}
}

// ProcessID returns the owning process id
func (g *ProcessGraph) ProcessID() valueobjects.ProcessID {
	return g.processID
}

// MergeEntities reconciles a batch of candidate nodes with the live graph.
// A candidate matching an existing node by (type, normalized label) is
// merged into it; otherwise it is inserted with a freshly generated id.
func (g *ProcessGraph) MergeEntities(candidates []entities.CandidateNode) MergeOutcome {
	g.mu.Lock()
	defer g.mu.Unlock()

	var out MergeOutcome
	for _, c := range candidates {
		key := labelKey{nodeType: c.Type, label: entities.NormalizeLabel(c.Label)}

		if existingID, ok := g.labelIndex[key]; ok {
			if err := g.nodes[existingID].Merge(c); err != nil {
				out.Failed++
				out.Failures = append(out.Failures, CandidateFailure{
					Reference: c.Label,
					Reason:    err.Error(),
				})
				continue
			}
			out.Merged++
			continue
		}

		node, err := entities.NewNode(c)
		if err != nil {
			out.Failed++
			out.Failures = append(out.Failures, CandidateFailure{
				Reference: c.Label,
				Reason:    err.Error(),
			})
			continue
		}
		g.nodes[node.ID().String()] = node
		g.labelIndex[key] = node.ID().String()
		out.Inserted++
	}
	return out
}

// MergeRelations reconciles a batch of candidate edges. Each endpoint
// reference is resolved to a node id (an unresolvable endpoint fails that
// candidate alone); duplicates by (source, target, relation) are merged,
// unioning conditions and preferring the most specific non-empty label.
func (g *ProcessGraph) MergeRelations(candidates []entities.CandidateEdge) MergeOutcome {
	g.mu.Lock()
	defer g.mu.Unlock()

	var out MergeOutcome
	for _, c := range candidates {
		sourceID, ok := g.resolveReference(c.Source)
		if !ok {
			out.Failed++
			out.Failures = append(out.Failures, CandidateFailure{
				Reference: c.Source,
				Reason:    pkgerrors.NewInvalidEdgeEndpointError(c.Source).Message,
			})
			continue
		}
		targetID, ok := g.resolveReference(c.Target)
		if !ok {
			out.Failed++
			out.Failures = append(out.Failures, CandidateFailure{
				Reference: c.Target,
				Reason:    pkgerrors.NewInvalidEdgeEndpointError(c.Target).Message,
			})
			continue
		}

		identity := entities.EdgeIdentity{
			SourceID: sourceID.String(),
			TargetID: targetID.String(),
			Relation: c.Relation,
		}
		if existing, ok := g.edges[identity]; ok {
			existing.MergeCandidate(c.Label, c.Conditions)
			out.Merged++
			continue
		}

		edge, err := entities.NewEdge(sourceID, targetID, c.Relation, c.Label, c.Conditions)
		if err != nil {
			out.Failed++
			out.Failures = append(out.Failures, CandidateFailure{
				Reference: c.Source + " -> " + c.Target,
				Reason:    err.Error(),
			})
			continue
		}
		g.edges[identity] = edge
		out.Inserted++
	}
	return out
}

// RemoveNode removes a node from the live graph, e.g. to correct a
// hallucinated entity. Removal is blocked while any edge references the node.
func (g *ProcessGraph) RemoveNode(id valueobjects.NodeID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	node, ok := g.nodes[id.String()]
	if !ok {
		return pkgerrors.NewNodeNotFoundError(id.String())
	}

	incident := 0
	for identity := range g.edges {
		if identity.SourceID == id.String() || identity.TargetID == id.String() {
			incident++
		}
	}
	if incident > 0 {
		return pkgerrors.NewNodeInUseError(id.String(), incident)
	}

	delete(g.nodes, id.String())
	delete(g.labelIndex, labelKey{nodeType: node.Type(), label: node.NormalizedLabel()})
	return nil
}

// RemoveEdge removes a single edge by its generated id
func (g *ProcessGraph) RemoveEdge(edgeID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for identity, edge := range g.edges {
		if edge.ID() == edgeID {
			delete(g.edges, identity)
			return nil
		}
	}
	return pkgerrors.NewNotFoundError("edge").WithCode(pkgerrors.CodeEdgeNotFound)
}

// Node returns the live node with the given id
func (g *ProcessGraph) Node(id valueobjects.NodeID) (*entities.Node, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	node, ok := g.nodes[id.String()]
	if !ok {
		return nil, pkgerrors.NewNodeNotFoundError(id.String())
	}
	return node, nil
}

// Nodes returns deep copies of all live nodes, ordered by id for determinism
func (g *ProcessGraph) Nodes() []*entities.Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.copyNodes()
}

// Edges returns deep copies of all live edges, ordered by identity
func (g *ProcessGraph) Edges() []*entities.Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.copyEdges()
}

// Freeze returns consistent deep copies of both collections under one lock
// acquisition. This is the copy step behind snapshots and risk evaluation.
func (g *ProcessGraph) Freeze() ([]*entities.Node, []*entities.Edge) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.copyNodes(), g.copyEdges()
}

// NodeCount returns the number of live nodes
func (g *ProcessGraph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// EdgeCount returns the number of live edges
func (g *ProcessGraph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.edges)
}

// resolveReference resolves an endpoint reference to a node id, trying the
// reference as a node id first and then as a normalized label across all
// node types. Callers must hold at least the read lock.
func (g *ProcessGraph) resolveReference(ref string) (valueobjects.NodeID, bool) {
	if node, ok := g.nodes[ref]; ok {
		return node.ID(), true
	}
	normalized := entities.NormalizeLabel(ref)
	var match *entities.Node
	for _, node := range g.nodes {
		if node.NormalizedLabel() != normalized {
			continue
		}
		// Labels can collide across types; pick the lowest id for determinism
		if match == nil || node.ID().String() < match.ID().String() {
			match = node
		}
	}
	if match != nil {
		return match.ID(), true
	}
	return valueobjects.NodeID{}, false
}

func (g *ProcessGraph) copyNodes() []*entities.Node {
	nodes := make([]*entities.Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, n.Clone())
	}
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].ID().String() < nodes[j].ID().String()
	})
	return nodes
}

func (g *ProcessGraph) copyEdges() []*entities.Edge {
	edges := make([]*entities.Edge, 0, len(g.edges))
	for _, e := range g.edges {
		edges = append(edges, e.Clone())
	}
	sort.Slice(edges, func(i, j int) bool {
		a, b := edges[i].Identity(), edges[j].Identity()
		if a.SourceID != b.SourceID {
			return a.SourceID < b.SourceID
		}
		if a.TargetID != b.TargetID {
			return a.TargetID < b.TargetID
		}
		return a.Relation < b.Relation
	})
	return edges
}
