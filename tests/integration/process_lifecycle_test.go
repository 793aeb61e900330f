package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"knowflow-backend/application/services"
	"knowflow-backend/domain/core/entities"
	"knowflow-backend/domain/core/validators"
	"knowflow-backend/domain/risk"
	"knowflow-backend/infrastructure/persistence/memory"
	"knowflow-backend/pkg/errors"
	"knowflow-backend/pkg/observability"
)

// stack wires the full service layer over the in-memory store, the same
// composition the container builds for the HTTP server.
type stack struct {
	processes *services.ProcessService
	graphs    *services.GraphService
	risks     *services.RiskService
}

func newStack(t *testing.T) *stack {
	t.Helper()
	logger := zap.NewNop()
	repo := memory.NewInMemoryProcessStore()
	metrics := observability.NewCollector("knowflow_test")
	return &stack{
		processes: services.NewProcessService(repo, logger),
		graphs:    services.NewGraphService(repo, validators.NewCandidateValidator(), metrics, 500, logger),
		risks:     services.NewRiskService(repo, risk.NewEngine(logger), metrics, logger),
	}
}

// TestCaptureReviewCycle walks a process from registration through two
// extraction batches, snapshots both states, diffs them and runs the risk
// analysis over a graph that is modeled well enough to come back clean.
func TestCaptureReviewCycle(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)

	process, err := s.processes.Create(ctx, services.CreateProcessRequest{
		Name:       "Invoice Approval",
		Department: "finance",
	})
	require.NoError(t, err)
	assert.Equal(t, entities.ProcessStatusDraft, process.Status)
	assert.Zero(t, process.NodeCount)

	// First interview batch: the happy path of the process.
	merge, err := s.graphs.MergeExtraction(ctx, process.ID, services.MergeRequest{
		Nodes: []entities.CandidateNode{
			{Type: entities.NodeTypeTrigger, Label: "Invoice received", Confidence: entities.Score(0.95)},
			{Type: entities.NodeTypeTask, Label: "Validate invoice", Confidence: entities.Score(0.9)},
			{Type: entities.NodeTypeRole, Label: "AP Clerk", Confidence: entities.Score(0.9)},
		},
		Edges: []entities.CandidateEdge{
			{Source: "Invoice received", Target: "Validate invoice", Relation: entities.RelationTriggers},
			{Source: "Validate invoice", Target: "AP Clerk", Relation: entities.RelationOwnedBy},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, merge.NodesInserted)
	assert.Equal(t, 2, merge.EdgesInserted)
	assert.Zero(t, merge.Failed)

	process, err = s.processes.Get(ctx, process.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.ProcessStatusCapturing, process.Status, "first batch starts capture")

	v1, err := s.graphs.Snapshot(ctx, process.ID, "after first interview")
	require.NoError(t, err)
	assert.Equal(t, 1, v1.VersionNumber)
	assert.Equal(t, 3, v1.NodeCount)

	// Second batch extends the flow and repeats a known node, which merges
	// instead of duplicating.
	merge, err = s.graphs.MergeExtraction(ctx, process.ID, services.MergeRequest{
		Nodes: []entities.CandidateNode{
			{Type: entities.NodeTypeTask, Label: "validate invoice", Confidence: entities.Score(0.8)},
			{Type: entities.NodeTypeDecision, Label: "Amount within limit?", Confidence: entities.Score(0.85)},
			{Type: entities.NodeTypeTask, Label: "Schedule payment", Confidence: entities.Score(0.9)},
		},
		Edges: []entities.CandidateEdge{
			{Source: "Validate invoice", Target: "Amount within limit?", Relation: entities.RelationTriggers},
			{Source: "Amount within limit?", Target: "Schedule payment", Relation: entities.RelationDecides, Conditions: []string{"amount <= 10000"}},
			{Source: "Schedule payment", Target: "AP Clerk", Relation: entities.RelationOwnedBy},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, merge.NodesInserted)
	assert.Equal(t, 1, merge.NodesMerged, "label match folds into the existing task")
	assert.Equal(t, 5, merge.NodeCount)

	v2, err := s.graphs.Snapshot(ctx, process.ID, "after second interview")
	require.NoError(t, err)
	assert.Equal(t, 2, v2.VersionNumber)

	versions, err := s.graphs.ListVersions(ctx, process.ID)
	require.NoError(t, err)
	require.Len(t, versions, 3, "seed version plus two snapshots")

	diff, err := s.graphs.Diff(ctx, process.ID, 1, 2)
	require.NoError(t, err)
	assert.Len(t, diff.NodesAdded, 2)
	assert.Len(t, diff.EdgesAdded, 3)
	assert.Empty(t, diff.NodesRemoved)

	// The merged node changed confidence handling is max, so it is not
	// reported as modified.
	assert.Empty(t, diff.NodesModified)

	analysis, err := s.graphs.Analysis(ctx, process.ID)
	require.NoError(t, err)
	require.Len(t, analysis.Roots, 1)
	assert.NotEmpty(t, analysis.Centrality)

	report, err := s.risks.Analyze(ctx, process.ID, services.AnalyzeOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, report.GraphVersion)
	assert.Zero(t, report.TotalRisks, "well-modeled flow raises no findings")
	assert.False(t, report.Degraded)
}

// TestRiskTriageFlow captures a deliberately unhealthy graph and takes its
// findings through acknowledgment and resolution.
func TestRiskTriageFlow(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)

	process, err := s.processes.Create(ctx, services.CreateProcessRequest{Name: "Month-End Close"})
	require.NoError(t, err)

	_, err = s.graphs.MergeExtraction(ctx, process.ID, services.MergeRequest{
		Nodes: []entities.CandidateNode{
			{Type: entities.NodeTypeTask, Label: "Reconcile ledger", Confidence: entities.Score(0.9)},
			{Type: entities.NodeTypeTask, Label: "Post adjustments", Confidence: entities.Score(0.9)},
			{Type: entities.NodeTypeTask, Label: "Close books", Confidence: entities.Score(0.9)},
			{Type: entities.NodeTypeRole, Label: "Controller", Confidence: entities.Score(0.9)},
		},
		Edges: []entities.CandidateEdge{
			// A mutual dependency and one person owning everything.
			{Source: "Reconcile ledger", Target: "Post adjustments", Relation: entities.RelationDependsOn},
			{Source: "Post adjustments", Target: "Reconcile ledger", Relation: entities.RelationDependsOn},
			{Source: "Reconcile ledger", Target: "Controller", Relation: entities.RelationOwnedBy},
			{Source: "Post adjustments", Target: "Controller", Relation: entities.RelationOwnedBy},
			{Source: "Close books", Target: "Controller", Relation: entities.RelationOwnedBy},
		},
	})
	require.NoError(t, err)

	report, err := s.risks.Analyze(ctx, process.ID, services.AnalyzeOptions{})
	require.NoError(t, err)
	require.NotZero(t, report.TotalRisks)
	assert.Equal(t, 1, report.CountsBySeverity[risk.SeverityCritical])
	assert.Equal(t, risk.CategoryCircularDependency, report.Findings[0].Category)

	// Re-running keeps the same finding ids.
	rerun, err := s.risks.Analyze(ctx, process.ID, services.AnalyzeOptions{})
	require.NoError(t, err)
	assert.Equal(t, report.Findings[0].ID, rerun.Findings[0].ID)

	cycleID := report.Findings[0].ID
	acked, err := s.risks.Acknowledge(ctx, process.ID, cycleID)
	require.NoError(t, err)
	assert.True(t, acked.Acknowledged)

	_, err = s.risks.Resolve(ctx, process.ID, cycleID, "")
	assert.True(t, errors.IsCode(err, errors.CodeInvalidResolution))

	resolved, err := s.risks.Resolve(ctx, process.ID, cycleID, "split reconciliation into ordered steps")
	require.NoError(t, err)
	assert.True(t, resolved.Resolved)

	active, err := s.risks.List(ctx, process.ID, services.RiskFilter{})
	require.NoError(t, err)
	for _, f := range active {
		assert.NotEqual(t, cycleID, f.ID, "resolved finding drops out of the active list")
	}

	all, err := s.risks.List(ctx, process.ID, services.RiskFilter{IncludeResolved: true})
	require.NoError(t, err)
	found := false
	for _, f := range all {
		if f.ID == cycleID {
			found = true
		}
	}
	assert.True(t, found, "resolved finding is retained for audit")
}

// TestUnscoredCaptureStaysClean merges candidates that carry no confidence
// score at all. They take the neutral default, so a small well-formed flow
// must not trip the low-confidence rules.
func TestUnscoredCaptureStaysClean(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)

	process, err := s.processes.Create(ctx, services.CreateProcessRequest{Name: "Loan Origination"})
	require.NoError(t, err)

	_, err = s.graphs.MergeExtraction(ctx, process.ID, services.MergeRequest{
		Nodes: []entities.CandidateNode{
			{Type: entities.NodeTypeTask, Label: "Review Application"},
			{Type: entities.NodeTypeRole, Label: "Loan Officer"},
			{Type: entities.NodeTypeDecision, Label: "Amount > $50k?"},
		},
		Edges: []entities.CandidateEdge{
			{Source: "Review Application", Target: "Amount > $50k?", Relation: entities.RelationTriggers},
			{Source: "Review Application", Target: "Loan Officer", Relation: entities.RelationOwnedBy},
		},
	})
	require.NoError(t, err)

	view, err := s.graphs.GetGraph(ctx, process.ID, -1)
	require.NoError(t, err)
	for _, n := range view.Nodes {
		assert.Equal(t, entities.DefaultConfidence, n.Confidence, "unscored candidate takes the default")
	}

	analysis, err := s.graphs.Analysis(ctx, process.ID)
	require.NoError(t, err)
	assert.Len(t, analysis.Roots, 1)

	report, err := s.risks.Analyze(ctx, process.ID, services.AnalyzeOptions{})
	require.NoError(t, err)
	assert.Zero(t, report.TotalRisks, "default-scored nodes are not treated as low confidence")
}

// TestArchivedProcessRejectsMutation verifies the archive guard across the
// mutating operations.
func TestArchivedProcessRejectsMutation(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)

	process, err := s.processes.Create(ctx, services.CreateProcessRequest{Name: "Legacy Flow"})
	require.NoError(t, err)

	_, err = s.graphs.MergeExtraction(ctx, process.ID, services.MergeRequest{
		Nodes: []entities.CandidateNode{
			{Type: entities.NodeTypeTask, Label: "Only step", Confidence: entities.Score(0.9)},
		},
	})
	require.NoError(t, err)

	archived, err := s.processes.Archive(ctx, process.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.ProcessStatusArchived, archived.Status)

	_, err = s.graphs.MergeExtraction(ctx, process.ID, services.MergeRequest{
		Nodes: []entities.CandidateNode{
			{Type: entities.NodeTypeTask, Label: "Another step", Confidence: entities.Score(0.9)},
		},
	})
	assert.True(t, errors.IsCode(err, errors.CodeProcessArchived))

	_, err = s.graphs.Snapshot(ctx, process.ID, "too late")
	assert.True(t, errors.IsCode(err, errors.CodeProcessArchived))

	// Reads still work after archival.
	view, err := s.graphs.GetGraph(ctx, process.ID, -1)
	require.NoError(t, err)
	assert.Len(t, view.Nodes, 1)
}
