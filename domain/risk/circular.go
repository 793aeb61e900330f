package risk

import (
	"fmt"
	"sort"
	"strings"

	"knowflow-backend/domain/core/entities"
)

// CircularDependencyRule detects directed cycles reachable through
// depends_on and triggers edges. A cycle means each step waits on another,
// so nothing in the loop can ever complete. One representative cycle path is
// reported per strongly-connected component of size > 1 (self-loops count).
type CircularDependencyRule struct{}

// Category implements Rule
func (CircularDependencyRule) Category() Category {
	return CategoryCircularDependency
}

// Evaluate implements Rule
func (CircularDependencyRule) Evaluate(idx *GraphIndex) []Finding {
	adj := idx.Adjacency(entities.RelationDependsOn, entities.RelationTriggers)

	var findings []Finding
	for _, scc := range stronglyConnected(idx.NodeIDs(), adj) {
		if len(scc) == 1 && !hasSelfLoop(adj, scc[0]) {
			continue
		}

		cycle := representativeCycle(scc, adj)
		labels := make([]string, 0, len(cycle)+1)
		for _, id := range cycle {
			labels = append(labels, idx.Label(id))
		}
		if len(labels) > 0 {
			labels = append(labels, labels[0]) // close the loop visually
		}

		findings = append(findings, Finding{
			Category: CategoryCircularDependency,
			Severity: SeverityCritical,
			Title:    "Circular Dependency Detected",
			Description: fmt.Sprintf("Cycle found: %s",
				strings.Join(labels, " -> ")),
			Explanation: "Circular dependencies create deadlock: each task waits " +
				"for another in the loop, so none of them can complete and the " +
				"process hangs indefinitely.",
			Recommendation: "Break the cycle by removing one dependency or " +
				"restructuring the process to eliminate the loop.",
			AffectedNodeIDs: append([]string(nil), scc...),
			EffortEstimate:  EffortMedium,
		})
	}
	return findings
}

// stronglyConnected runs an iterative Tarjan over the restricted adjacency
// and returns the components with their members sorted, ordered by smallest
// member for determinism.
func stronglyConnected(nodeIDs []string, adj map[string][]string) [][]string {
	index := make(map[string]int, len(nodeIDs))
	lowlink := make(map[string]int, len(nodeIDs))
	onStack := make(map[string]bool, len(nodeIDs))
	var stack []string
	var components [][]string
	counter := 0

	type frame struct {
		id   string
		next int
	}

	for _, start := range nodeIDs {
		if _, seen := index[start]; seen {
			continue
		}

		callStack := []frame{{id: start}}
		index[start] = counter
		lowlink[start] = counter
		counter++
		stack = append(stack, start)
		onStack[start] = true

		for len(callStack) > 0 {
			top := &callStack[len(callStack)-1]
			neighbors := adj[top.id]

			if top.next < len(neighbors) {
				next := neighbors[top.next]
				top.next++
				if _, seen := index[next]; !seen {
					index[next] = counter
					lowlink[next] = counter
					counter++
					stack = append(stack, next)
					onStack[next] = true
					callStack = append(callStack, frame{id: next})
				} else if onStack[next] {
					if index[next] < lowlink[top.id] {
						lowlink[top.id] = index[next]
					}
				}
				continue
			}

			// All neighbors explored: maybe pop a component, then return
			if lowlink[top.id] == index[top.id] {
				var scc []string
				for {
					member := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					onStack[member] = false
					scc = append(scc, member)
					if member == top.id {
						break
					}
				}
				sort.Strings(scc)
				components = append(components, scc)
			}

			finished := top.id
			callStack = callStack[:len(callStack)-1]
			if len(callStack) > 0 {
				parent := &callStack[len(callStack)-1]
				if lowlink[finished] < lowlink[parent.id] {
					lowlink[parent.id] = lowlink[finished]
				}
			}
		}
	}

	sort.Slice(components, func(i, j int) bool {
		return components[i][0] < components[j][0]
	})
	return components
}

// representativeCycle walks from the component's smallest member through
// edges that stay inside the component until it returns to the start.
func representativeCycle(scc []string, adj map[string][]string) []string {
	members := make(map[string]bool, len(scc))
	for _, id := range scc {
		members[id] = true
	}

	start := scc[0]
	path := []string{start}
	visited := map[string]bool{start: true}
	current := start

	for {
		advanced := false
		for _, next := range adj[current] {
			if !members[next] {
				continue
			}
			if next == start {
				return path
			}
			if !visited[next] {
				visited[next] = true
				path = append(path, next)
				current = next
				advanced = true
				break
			}
		}
		if !advanced {
			// Dead end inside the component; the member set itself is still
			// a faithful report.
			return path
		}
	}
}

func hasSelfLoop(adj map[string][]string, id string) bool {
	for _, next := range adj[id] {
		if next == id {
			return true
		}
	}
	return false
}
