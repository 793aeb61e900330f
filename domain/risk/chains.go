package risk

import (
	"fmt"
	"sort"

	"knowflow-backend/domain/core/entities"
)

const (
	// brittleChainMinEdges is the path length, in edges, above which a
	// low-confidence dependency chain is flagged.
	brittleChainMinEdges = 5

	// brittleChainConfidence is the confidence below which a node counts
	// as poorly confirmed for chain purposes.
	brittleChainConfidence = 0.6

	// lowConfidenceScore / lowConfidenceShare drive the model-wide
	// uncertainty check.
	lowConfidenceScore = 0.5
	lowConfidenceShare = 0.3
)

// BrittleChainRule detects long sequential dependency chains in which every
// node is poorly confirmed. The search is the longest simple path per
// weakly-connected component of the low-confidence subgraph, not an
// exhaustive simple-path enumeration, which would be exponential in dense
// graphs.
type BrittleChainRule struct{}

// Category implements Rule
func (BrittleChainRule) Category() Category {
	return CategoryBrittleChain
}

// Evaluate implements Rule
func (BrittleChainRule) Evaluate(idx *GraphIndex) []Finding {
	// Restrict to low-confidence nodes and the dependency relations
	// between them.
	lowConf := make(map[string]bool)
	for _, id := range idx.NodeIDs() {
		if n, ok := idx.Node(id); ok && n.Confidence() < brittleChainConfidence {
			lowConf[id] = true
		}
	}
	if len(lowConf) == 0 {
		return nil
	}

	adj := make(map[string][]string)
	undirected := make(map[string][]string)
	for _, e := range idx.Edges() {
		if e.Relation() != entities.RelationDependsOn && e.Relation() != entities.RelationTriggers {
			continue
		}
		src, dst := e.SourceID().String(), e.TargetID().String()
		if !lowConf[src] || !lowConf[dst] {
			continue
		}
		adj[src] = append(adj[src], dst)
		undirected[src] = append(undirected[src], dst)
		undirected[dst] = append(undirected[dst], src)
	}
	for _, targets := range adj {
		sort.Strings(targets)
	}

	var findings []Finding
	for _, component := range weakComponents(lowConf, undirected) {
		path := longestSimplePath(component, adj)
		// A path of N nodes has N-1 edges.
		if len(path)-1 <= brittleChainMinEdges {
			continue
		}

		findings = append(findings, Finding{
			Category: CategoryBrittleChain,
			Severity: SeverityMedium,
			Title: fmt.Sprintf("Brittle Chain Detected (%d steps)",
				len(path)-1),
			Description: fmt.Sprintf("A dependency chain of %d sequential steps "+
				"runs entirely through low-confidence elements, starting at '%s'.",
				len(path)-1, idx.Label(path[0])),
			Explanation: "Long sequential chains are fragile: a failure at any " +
				"point stops everything downstream. When every step is also " +
				"poorly confirmed, the modeled chain may not even reflect how " +
				"the work actually happens.",
			Recommendation: "Validate the steps on this chain with the people " +
				"who perform them, then look for opportunities to parallelize " +
				"independent work and add checkpoints for critical steps.",
			AffectedNodeIDs: append([]string(nil), path...),
			EffortEstimate:  EffortHigh,
		})
	}
	return findings
}

// weakComponents partitions the member set into weakly-connected components,
// each sorted, ordered by smallest member.
func weakComponents(members map[string]bool, undirected map[string][]string) [][]string {
	ids := make([]string, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	visited := make(map[string]bool, len(ids))
	var components [][]string
	for _, start := range ids {
		if visited[start] {
			continue
		}
		var component []string
		stack := []string{start}
		visited[start] = true
		for len(stack) > 0 {
			current := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			component = append(component, current)
			for _, next := range undirected[current] {
				if members[next] && !visited[next] {
					visited[next] = true
					stack = append(stack, next)
				}
			}
		}
		sort.Strings(component)
		components = append(components, component)
	}
	return components
}

// longestSimplePath runs a DFS with a visited set from every component
// member and keeps the longest path found. Components are small (bounded by
// the low-confidence subgraph), so the exponential worst case stays
// theoretical; callers time-box whole evaluation runs regardless.
func longestSimplePath(component []string, adj map[string][]string) []string {
	var best []string
	visited := make(map[string]bool)

	var dfs func(id string, path []string)
	dfs = func(id string, path []string) {
		path = append(path, id)
		visited[id] = true
		if len(path) > len(best) {
			best = append([]string(nil), path...)
		}
		for _, next := range adj[id] {
			if !visited[next] {
				dfs(next, path)
			}
		}
		visited[id] = false
	}

	for _, start := range component {
		dfs(start, nil)
	}
	return best
}

// LowConfidenceModelRule flags a process model in which a large share of
// elements is poorly confirmed. It reports under the brittle_chain category,
// which covers model fragility.
type LowConfidenceModelRule struct{}

// Category implements Rule
func (LowConfidenceModelRule) Category() Category {
	return CategoryBrittleChain
}

// Evaluate implements Rule
func (LowConfidenceModelRule) Evaluate(idx *GraphIndex) []Finding {
	total := idx.NodeCount()
	if total == 0 {
		return nil
	}

	var lowIDs []string
	for _, id := range idx.NodeIDs() {
		if n, ok := idx.Node(id); ok && n.Confidence() < lowConfidenceScore {
			lowIDs = append(lowIDs, id)
		}
	}
	if float64(len(lowIDs))/float64(total) <= lowConfidenceShare {
		return nil
	}

	return []Finding{{
		Category: CategoryBrittleChain,
		Severity: SeverityMedium,
		Title:    "High Uncertainty in Process Model",
		Description: fmt.Sprintf("%d of %d elements have low confidence scores.",
			len(lowIDs), total),
		Explanation: "Large parts of this process are not well-documented or " +
			"confirmed. Decisions based on this model may be incorrect.",
		Recommendation: "Review and validate the low-confidence elements with " +
			"domain experts before finalizing the process documentation.",
		AffectedNodeIDs: lowIDs,
		EffortEstimate:  EffortMedium,
	}}
}
