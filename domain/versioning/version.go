package versioning

import (
	"sync"
	"time"

	"knowflow-backend/domain/core/aggregates"
	"knowflow-backend/domain/core/entities"
	pkgerrors "knowflow-backend/pkg/errors"
)

// GraphVersion is an immutable snapshot of a process graph at a point in
// time. Once created its content never changes; only new versions are
// appended to the ledger. The frozen collections are deep copies with no
// shared mutable state with the live graph or other versions.
type GraphVersion struct {
	versionNumber int
	createdAt     time.Time
	description   string
	nodes         []*entities.Node
	edges         []*entities.Edge
	nodeIndex     map[string]*entities.Node
	edgeIndex     map[entities.EdgeIdentity]*entities.Edge
}

// VersionMeta is the listing view of a version, without frozen content
type VersionMeta struct {
	VersionNumber int       `json:"version_number"`
	CreatedAt     time.Time `json:"created_at"`
	Description   string    `json:"description"`
	NodeCount     int       `json:"node_count"`
	EdgeCount     int       `json:"edge_count"`
}

func newGraphVersion(number int, description string, nodes []*entities.Node, edges []*entities.Edge) *GraphVersion {
	v := &GraphVersion{
		versionNumber: number,
		createdAt:     time.Now(),
		description:   description,
		nodes:         nodes,
		edges:         edges,
		nodeIndex:     make(map[string]*entities.Node, len(nodes)),
		edgeIndex:     make(map[entities.EdgeIdentity]*entities.Edge, len(edges)),
	}
	for _, n := range nodes {
		v.nodeIndex[n.ID().String()] = n
	}
	for _, e := range edges {
		v.edgeIndex[e.Identity()] = e
	}
	return v
}

// VersionNumber returns the 0-based, strictly increasing version number
func (v *GraphVersion) VersionNumber() int {
	return v.versionNumber
}

// CreatedAt returns the capture time
func (v *GraphVersion) CreatedAt() time.Time {
	return v.createdAt
}

// Description returns the caller-supplied change description
func (v *GraphVersion) Description() string {
	return v.description
}

// Nodes returns the frozen node collection, ordered by id.
// Callers must treat the returned nodes as read-only.
func (v *GraphVersion) Nodes() []*entities.Node {
	return v.nodes
}

// Edges returns the frozen edge collection.
// Callers must treat the returned edges as read-only.
func (v *GraphVersion) Edges() []*entities.Edge {
	return v.edges
}

// Node looks up a frozen node by id
func (v *GraphVersion) Node(id string) (*entities.Node, bool) {
	n, ok := v.nodeIndex[id]
	return n, ok
}

// Edge looks up a frozen edge by logical identity
func (v *GraphVersion) Edge(identity entities.EdgeIdentity) (*entities.Edge, bool) {
	e, ok := v.edgeIndex[identity]
	return e, ok
}

// NodeCount returns the number of frozen nodes
func (v *GraphVersion) NodeCount() int {
	return len(v.nodes)
}

// EdgeCount returns the number of frozen edges
func (v *GraphVersion) EdgeCount() int {
	return len(v.edges)
}

// Meta returns the listing view of this version
func (v *GraphVersion) Meta() VersionMeta {
	return VersionMeta{
		VersionNumber: v.versionNumber,
		CreatedAt:     v.createdAt,
		Description:   v.description,
		NodeCount:     len(v.nodes),
		EdgeCount:     len(v.edges),
	}
}

// Ledger is the per-process version controller. It assigns monotonic,
// gapless version numbers starting at 0 and keeps every captured version
// for the process lifetime.
type Ledger struct {
	mu       sync.RWMutex
	versions []*GraphVersion
}

// NewLedger creates a version ledger seeded with version 0: the empty graph
// at process creation, captured before any mutation.
func NewLedger() *Ledger {
	l := &Ledger{}
	l.versions = append(l.versions, newGraphVersion(0, "process created", nil, nil))
	return l
}

// Capture deep-copies the live graph into a new immutable version with
// versionNumber = lastVersionNumber + 1 and returns it. O(|V|+|E|).
func (l *Ledger) Capture(graph *aggregates.ProcessGraph, description string) *GraphVersion {
	// Freeze holds the graph's lock for the whole copy, so the snapshot
	// observes a consistent point-in-time state even with a concurrent merge.
	nodes, edges := graph.Freeze()

	l.mu.Lock()
	defer l.mu.Unlock()

	v := newGraphVersion(len(l.versions), description, nodes, edges)
	l.versions = append(l.versions, v)
	return v
}

// Version returns the version with the given number, or VersionNotFound if
// n is negative or exceeds the highest existing version.
func (l *Ledger) Version(n int) (*GraphVersion, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n < 0 || n >= len(l.versions) {
		return nil, pkgerrors.NewVersionNotFoundError(n)
	}
	return l.versions[n], nil
}

// Latest returns the most recent version. A ledger always has at least
// version 0.
func (l *Ledger) Latest() *GraphVersion {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.versions[len(l.versions)-1]
}

// List returns version metadata in ascending order, content excluded for
// listing efficiency.
func (l *Ledger) List() []VersionMeta {
	l.mu.RLock()
	defer l.mu.RUnlock()

	metas := make([]VersionMeta, 0, len(l.versions))
	for _, v := range l.versions {
		metas = append(metas, v.Meta())
	}
	return metas
}

// Diff computes the structural difference between two existing versions
func (l *Ledger) Diff(fromVersion, toVersion int) (*Diff, error) {
	from, err := l.Version(fromVersion)
	if err != nil {
		return nil, err
	}
	to, err := l.Version(toVersion)
	if err != nil {
		return nil, err
	}
	return Compute(from, to), nil
}
