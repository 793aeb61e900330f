package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"knowflow-backend/domain/core/aggregates"
	"knowflow-backend/domain/core/entities"
	"knowflow-backend/domain/core/valueobjects"
)

// buildChain assembles A -> B -> C -> D plus a hub H that B and C both
// depend on, and returns the graph with a label-to-id lookup.
func buildTestGraph(t *testing.T) (*aggregates.ProcessGraph, map[string]string) {
	t.Helper()
	g := aggregates.NewProcessGraph(valueobjects.NewProcessID())

	labels := []string{"A", "B", "C", "D", "H"}
	var candidates []entities.CandidateNode
	for _, label := range labels {
		candidates = append(candidates, entities.CandidateNode{
			Type: entities.NodeTypeTask, Label: label, Confidence: entities.Score(0.9),
		})
	}
	out := g.MergeEntities(candidates)
	require.Equal(t, len(labels), out.Inserted)

	edges := g.MergeRelations([]entities.CandidateEdge{
		{Source: "A", Target: "B", Relation: entities.RelationTriggers},
		{Source: "B", Target: "C", Relation: entities.RelationTriggers},
		{Source: "C", Target: "D", Relation: entities.RelationTriggers},
		{Source: "B", Target: "H", Relation: entities.RelationDependsOn},
		{Source: "C", Target: "H", Relation: entities.RelationDependsOn},
	})
	require.Equal(t, 5, edges.Inserted)

	ids := make(map[string]string, len(labels))
	for _, n := range g.Nodes() {
		ids[n.Label()] = n.ID().String()
	}
	return g, ids
}

func TestRootsAndLeaves(t *testing.T) {
	g, ids := buildTestGraph(t)

	result := Analyze(g)
	assert.Equal(t, []string{ids["A"]}, result.Roots)
	assert.ElementsMatch(t, []string{ids["D"], ids["H"]}, result.Leaves)
}

func TestCentralityRanking(t *testing.T) {
	g, ids := buildTestGraph(t)

	ranking := Centrality(g)
	require.Len(t, ranking, 5)

	// B and C carry three edges each; with five nodes that is 3/4.
	assert.Equal(t, 0.75, ranking[0].Score)
	assert.Equal(t, 0.75, ranking[1].Score)
	top := []string{ranking[0].NodeID, ranking[1].NodeID}
	assert.ElementsMatch(t, []string{ids["B"], ids["C"]}, top)

	// A has a single edge: 1/4.
	last := ranking[len(ranking)-1]
	for _, entry := range ranking {
		if entry.NodeID == ids["A"] {
			assert.Equal(t, 0.25, entry.Score)
		}
	}
	assert.LessOrEqual(t, last.Score, ranking[0].Score)
}

func TestCentralitySingleNode(t *testing.T) {
	g := aggregates.NewProcessGraph(valueobjects.NewProcessID())
	g.MergeEntities([]entities.CandidateNode{
		{Type: entities.NodeTypeTask, Label: "Only", Confidence: entities.Score(0.9)},
	})

	ranking := Centrality(g)
	require.Len(t, ranking, 1)
	assert.Equal(t, 0.0, ranking[0].Score)
}

func TestShortestPath(t *testing.T) {
	g, ids := buildTestGraph(t)

	t.Run("FollowsDirectedEdges", func(t *testing.T) {
		path := ShortestPath(g, ids["A"], ids["D"])
		assert.Equal(t, []string{ids["A"], ids["B"], ids["C"], ids["D"]}, path)
	})

	t.Run("UnreachableReturnsNil", func(t *testing.T) {
		// Edges point into H, never out of it.
		assert.Nil(t, ShortestPath(g, ids["H"], ids["A"]))
	})

	t.Run("SelfPath", func(t *testing.T) {
		assert.Equal(t, []string{ids["A"]}, ShortestPath(g, ids["A"], ids["A"]))
	})
}

func TestReachability(t *testing.T) {
	g, ids := buildTestGraph(t)

	t.Run("Downstream", func(t *testing.T) {
		reachable := Downstream(g, ids["B"])
		assert.ElementsMatch(t, []string{ids["C"], ids["D"], ids["H"]}, reachable)
	})

	t.Run("Upstream", func(t *testing.T) {
		ancestors := Upstream(g, ids["H"])
		assert.ElementsMatch(t, []string{ids["A"], ids["B"], ids["C"]}, ancestors)
	})

	t.Run("LeafHasNoDownstream", func(t *testing.T) {
		assert.Empty(t, Downstream(g, ids["D"]))
	})
}
