// Package analysis provides read-only traversal analytics over a process
// graph view: entry/exit point detection, degree centrality, and
// reachability queries. A view is either the live graph or any immutable
// version; analysis never mutates what it is given.
package analysis

import (
	"sort"

	"knowflow-backend/domain/core/entities"
)

// View is the read-only graph surface the analyzer consumes. Both the live
// ProcessGraph aggregate and an immutable GraphVersion satisfy it.
type View interface {
	Nodes() []*entities.Node
	Edges() []*entities.Edge
}

// NodeCentrality is one entry of the centrality ranking
type NodeCentrality struct {
	NodeID string  `json:"node_id"`
	Label  string  `json:"label"`
	Score  float64 `json:"score"`
}

// Result bundles the traversal analytics for one view
type Result struct {
	Roots      []string         `json:"roots"`
	Leaves     []string         `json:"leaves"`
	Centrality []NodeCentrality `json:"centrality"`
}

// Analyze computes roots, leaves, and the centrality ranking in one pass
func Analyze(v View) Result {
	return Result{
		Roots:      Roots(v),
		Leaves:     Leaves(v),
		Centrality: Centrality(v),
	}
}

// Roots returns the ids of nodes with in-degree 0, the candidate process
// entry points, sorted ascending for determinism.
func Roots(v View) []string {
	_, in := degrees(v)

	var roots []string
	for _, n := range v.Nodes() {
		if in[n.ID().String()] == 0 {
			roots = append(roots, n.ID().String())
		}
	}
	sort.Strings(roots)
	return roots
}

// Leaves returns the ids of nodes with out-degree 0, the candidate process
// exit points, sorted ascending.
func Leaves(v View) []string {
	out, _ := degrees(v)

	var leaves []string
	for _, n := range v.Nodes() {
		if out[n.ID().String()] == 0 {
			leaves = append(leaves, n.ID().String())
		}
	}
	sort.Strings(leaves)
	return leaves
}

// Centrality computes normalized degree centrality for every node:
// (in-degree + out-degree) / (|V| - 1) for |V| > 1, else 0.
// The ranking is ordered by score descending, ties broken by node id
// ascending, so "most connected" is always entry zero.
func Centrality(v View) []NodeCentrality {
	nodes := v.Nodes()
	out, in := degrees(v)

	scores := make([]NodeCentrality, 0, len(nodes))
	for _, n := range nodes {
		id := n.ID().String()
		score := 0.0
		if len(nodes) > 1 {
			score = float64(in[id]+out[id]) / float64(len(nodes)-1)
		}
		scores = append(scores, NodeCentrality{
			NodeID: id,
			Label:  n.Label(),
			Score:  score,
		})
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].NodeID < scores[j].NodeID
	})
	return scores
}

// ShortestPath returns the node ids along a shortest directed path from one
// node to another, inclusive of both endpoints, or nil if the target is
// unreachable. BFS, so the result is minimal in hop count.
func ShortestPath(v View, fromID, toID string) []string {
	if fromID == toID {
		return []string{fromID}
	}

	adj := adjacency(v, nil)
	parent := map[string]string{fromID: ""}
	queue := []string{fromID}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, next := range adj[current] {
			if _, seen := parent[next]; seen {
				continue
			}
			parent[next] = current
			if next == toID {
				return buildPath(parent, fromID, toID)
			}
			queue = append(queue, next)
		}
	}
	return nil
}

// Downstream returns the set of node ids reachable from the given node,
// excluding the node itself, sorted ascending.
func Downstream(v View, id string) []string {
	return reach(adjacency(v, nil), id)
}

// Upstream returns the set of node ids from which the given node is
// reachable, excluding the node itself, sorted ascending.
func Upstream(v View, id string) []string {
	rev := make(map[string][]string)
	for _, e := range v.Edges() {
		rev[e.TargetID().String()] = append(rev[e.TargetID().String()], e.SourceID().String())
	}
	return reach(rev, id)
}

// adjacency builds the forward adjacency map, optionally restricted to a
// set of relation types (nil means all relations).
func adjacency(v View, relations map[entities.RelationType]bool) map[string][]string {
	adj := make(map[string][]string)
	for _, e := range v.Edges() {
		if relations != nil && !relations[e.Relation()] {
			continue
		}
		adj[e.SourceID().String()] = append(adj[e.SourceID().String()], e.TargetID().String())
	}
	for _, targets := range adj {
		sort.Strings(targets)
	}
	return adj
}

// degrees returns the out-degree and in-degree maps for all edges
func degrees(v View) (out map[string]int, in map[string]int) {
	out = make(map[string]int)
	in = make(map[string]int)
	for _, e := range v.Edges() {
		out[e.SourceID().String()]++
		in[e.TargetID().String()]++
	}
	return out, in
}

func reach(adj map[string][]string, start string) []string {
	visited := map[string]bool{start: true}
	stack := []string{start}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range adj[current] {
			if !visited[next] {
				visited[next] = true
				stack = append(stack, next)
			}
		}
	}

	var ids []string
	for id := range visited {
		if id != start {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func buildPath(parent map[string]string, fromID, toID string) []string {
	var path []string
	for at := toID; at != ""; at = parent[at] {
		path = append(path, at)
		if at == fromID {
			break
		}
	}
	// reverse in place
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
