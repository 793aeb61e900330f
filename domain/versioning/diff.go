package versioning

import (
	"fmt"
	"reflect"
	"sort"

	"knowflow-backend/domain/core/entities"
)

// Diff is the structural difference between two graph versions. The diff is
// symmetric in structure and directional in labeling: swapping from and to
// swaps added and removed.
type Diff struct {
	FromVersion int `json:"from_version"`
	ToVersion   int `json:"to_version"`

	NodesAdded    []*entities.Node `json:"nodes_added"`
	NodesRemoved  []*entities.Node `json:"nodes_removed"`
	NodesModified []NodeChange     `json:"nodes_modified"`

	EdgesAdded   []*entities.Edge `json:"edges_added"`
	EdgesRemoved []*entities.Edge `json:"edges_removed"`

	Summary string `json:"summary"`
}

// NodeChange describes a node present in both versions whose content changed
type NodeChange struct {
	NodeID        string   `json:"node_id"`
	Label         string   `json:"label"`
	ChangedFields []string `json:"changed_fields"`
}

// Empty reports whether the diff is empty on every dimension
func (d *Diff) Empty() bool {
	return len(d.NodesAdded) == 0 && len(d.NodesRemoved) == 0 &&
		len(d.NodesModified) == 0 && len(d.EdgesAdded) == 0 &&
		len(d.EdgesRemoved) == 0
}

// Compute calculates the structural difference between two versions.
// Node membership is compared by id; edge membership by the
// (source, target, relation) identity triple, independent of edge ids,
// since edge content may be merged without changing identity.
// Compute(v, v) yields an empty result on every dimension.
func Compute(from, to *GraphVersion) *Diff {
	d := &Diff{
		FromVersion:   from.VersionNumber(),
		ToVersion:     to.VersionNumber(),
		NodesAdded:    []*entities.Node{},
		NodesRemoved:  []*entities.Node{},
		NodesModified: []NodeChange{},
		EdgesAdded:    []*entities.Edge{},
		EdgesRemoved:  []*entities.Edge{},
	}

	for _, node := range to.Nodes() {
		old, ok := from.Node(node.ID().String())
		if !ok {
			d.NodesAdded = append(d.NodesAdded, node)
			continue
		}
		if fields := changedFields(old, node); len(fields) > 0 {
			d.NodesModified = append(d.NodesModified, NodeChange{
				NodeID:        node.ID().String(),
				Label:         node.Label(),
				ChangedFields: fields,
			})
		}
	}
	for _, node := range from.Nodes() {
		if _, ok := to.Node(node.ID().String()); !ok {
			d.NodesRemoved = append(d.NodesRemoved, node)
		}
	}

	for _, edge := range to.Edges() {
		if _, ok := from.Edge(edge.Identity()); !ok {
			d.EdgesAdded = append(d.EdgesAdded, edge)
		}
	}
	for _, edge := range from.Edges() {
		if _, ok := to.Edge(edge.Identity()); !ok {
			d.EdgesRemoved = append(d.EdgesRemoved, edge)
		}
	}

	sortNodes(d.NodesAdded)
	sortNodes(d.NodesRemoved)
	sort.Slice(d.NodesModified, func(i, j int) bool {
		return d.NodesModified[i].NodeID < d.NodesModified[j].NodeID
	})

	d.Summary = fmt.Sprintf("+%d nodes, -%d nodes, ~%d nodes, +%d edges, -%d edges",
		len(d.NodesAdded), len(d.NodesRemoved), len(d.NodesModified),
		len(d.EdgesAdded), len(d.EdgesRemoved))

	return d
}

// changedFields reports which comparable node fields differ between two
// versions of the same node. Provenance growth alone does not count as a
// modification.
func changedFields(old, current *entities.Node) []string {
	var fields []string
	if old.Label() != current.Label() {
		fields = append(fields, "label")
	}
	if old.Description() != current.Description() {
		fields = append(fields, "description")
	}
	if old.Confidence() != current.Confidence() {
		fields = append(fields, "confidence_score")
	}
	if !reflect.DeepEqual(old.Attributes(), current.Attributes()) {
		fields = append(fields, "attributes")
	}
	return fields
}

func sortNodes(nodes []*entities.Node) {
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].ID().String() < nodes[j].ID().String()
	})
}
