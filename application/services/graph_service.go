package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"knowflow-backend/application/ports"
	"knowflow-backend/domain/analysis"
	"knowflow-backend/domain/core/entities"
	"knowflow-backend/domain/core/validators"
	"knowflow-backend/domain/core/valueobjects"
	"knowflow-backend/domain/versioning"
	"knowflow-backend/pkg/errors"
	"knowflow-backend/pkg/observability"
)

const timeFormat = time.RFC3339

// MergeRequest is one extraction batch: node candidates and edge candidates
// proposed together. Nodes are merged before edges so edge references can
// resolve against nodes introduced in the same batch.
type MergeRequest struct {
	Nodes []entities.CandidateNode `json:"nodes"`
	Edges []entities.CandidateEdge `json:"edges"`
}

// MergeResult reports what one batch did to the graph
type MergeResult struct {
	NodesInserted int            `json:"nodes_inserted"`
	NodesMerged   int            `json:"nodes_merged"`
	EdgesInserted int            `json:"edges_inserted"`
	EdgesMerged   int            `json:"edges_merged"`
	Failed        int            `json:"failed"`
	Failures      []MergeFailure `json:"failures,omitempty"`
	NodeCount     int            `json:"node_count"`
	EdgeCount     int            `json:"edge_count"`
}

// NodeView is the transport-facing projection of a graph node
type NodeView struct {
	ID          string                 `json:"id"`
	Type        entities.NodeType      `json:"type"`
	Label       string                 `json:"label"`
	Description string                 `json:"description,omitempty"`
	Confidence  float64                `json:"confidence_score"`
	Attributes  map[string]interface{} `json:"attributes,omitempty"`
	Provenance  []string               `json:"provenance,omitempty"`
	CreatedAt   string                 `json:"created_at"`
	UpdatedAt   string                 `json:"updated_at"`
}

// EdgeView is the transport-facing projection of a graph edge
type EdgeView struct {
	ID         string                `json:"id"`
	SourceID   string                `json:"source_id"`
	TargetID   string                `json:"target_id"`
	Relation   entities.RelationType `json:"relation_type"`
	Label      string                `json:"label,omitempty"`
	Conditions []string              `json:"conditions,omitempty"`
	CreatedAt  string                `json:"created_at"`
}

// GraphView is a complete serialized graph, either live or a version
type GraphView struct {
	ProcessID string     `json:"process_id"`
	Version   int        `json:"version"`
	Live      bool       `json:"live"`
	Nodes     []NodeView `json:"nodes"`
	Edges     []EdgeView `json:"edges"`
}

// GraphService orchestrates graph mutation, versioning, diffing and
// traversal analytics for a single-process scope.
type GraphService struct {
	repo      ports.ProcessRepository
	validator *validators.CandidateValidator
	metrics   *observability.Collector
	maxBatch  int
	logger    *zap.Logger
}

// NewGraphService creates a new graph service. maxBatch bounds the combined
// candidate count accepted in one merge call.
func NewGraphService(
	repo ports.ProcessRepository,
	validator *validators.CandidateValidator,
	metrics *observability.Collector,
	maxBatch int,
	logger *zap.Logger,
) *GraphService {
	return &GraphService{
		repo:      repo,
		validator: validator,
		metrics:   metrics,
		maxBatch:  maxBatch,
		logger:    logger,
	}
}

// MergeExtraction merges one extraction batch into the live graph. Node
// candidates are deduplicated by type and normalized label; edge candidates
// resolve endpoints by id first and label second. Individual candidate
// failures are reported without failing the batch.
func (s *GraphService) MergeExtraction(ctx context.Context, processID string, req MergeRequest) (*MergeResult, error) {
	if len(req.Nodes)+len(req.Edges) == 0 {
		return nil, errors.NewValidationError("merge batch is empty")
	}
	if s.maxBatch > 0 && len(req.Nodes)+len(req.Edges) > s.maxBatch {
		return nil, errors.NewValidationError(
			fmt.Sprintf("merge batch exceeds the %d candidate limit", s.maxBatch))
	}
	if err := s.validator.ValidateNodes(req.Nodes); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateEdges(req.Edges); err != nil {
		return nil, err
	}

	state, err := s.repo.GetByID(ctx, processID)
	if err != nil {
		return nil, err
	}
	if err := guardMutable(state); err != nil {
		return nil, err
	}
	if err := state.Process.MarkCapturing(); err != nil {
		return nil, err
	}

	nodeOutcome := state.Graph.MergeEntities(req.Nodes)
	edgeOutcome := state.Graph.MergeRelations(req.Edges)

	result := &MergeResult{
		NodesInserted: nodeOutcome.Inserted,
		NodesMerged:   nodeOutcome.Merged,
		EdgesInserted: edgeOutcome.Inserted,
		EdgesMerged:   edgeOutcome.Merged,
		Failed:        nodeOutcome.Failed + edgeOutcome.Failed,
		NodeCount:     state.Graph.NodeCount(),
		EdgeCount:     state.Graph.EdgeCount(),
	}
	for _, f := range nodeOutcome.Failures {
		result.Failures = append(result.Failures, MergeFailure(f))
	}
	for _, f := range edgeOutcome.Failures {
		result.Failures = append(result.Failures, MergeFailure(f))
	}

	s.metrics.MergeBatches.Inc()
	s.metrics.NodesMerged.Add(float64(nodeOutcome.Inserted + nodeOutcome.Merged))
	s.metrics.EdgesMerged.Add(float64(edgeOutcome.Inserted + edgeOutcome.Merged))

	s.logger.Info("extraction batch merged",
		zap.String("processID", processID),
		zap.Int("nodesInserted", result.NodesInserted),
		zap.Int("nodesMerged", result.NodesMerged),
		zap.Int("edgesInserted", result.EdgesInserted),
		zap.Int("edgesMerged", result.EdgesMerged),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

// RemoveNode deletes a node from the live graph. Nodes with incident edges
// are refused; callers must remove the edges first.
func (s *GraphService) RemoveNode(ctx context.Context, processID, nodeID string) error {
	state, err := s.repo.GetByID(ctx, processID)
	if err != nil {
		return err
	}
	if err := guardMutable(state); err != nil {
		return err
	}
	id, err := valueobjects.NewNodeIDFromString(nodeID)
	if err != nil {
		return err
	}
	if err := state.Graph.RemoveNode(id); err != nil {
		return err
	}
	s.logger.Info("node removed",
		zap.String("processID", processID),
		zap.String("nodeID", nodeID),
	)
	return nil
}

// RemoveEdge deletes an edge from the live graph by edge id
func (s *GraphService) RemoveEdge(ctx context.Context, processID, edgeID string) error {
	state, err := s.repo.GetByID(ctx, processID)
	if err != nil {
		return err
	}
	if err := guardMutable(state); err != nil {
		return err
	}
	if err := state.Graph.RemoveEdge(edgeID); err != nil {
		return err
	}
	s.logger.Info("edge removed",
		zap.String("processID", processID),
		zap.String("edgeID", edgeID),
	)
	return nil
}

// GetGraph returns the serialized graph. With version < 0 it returns the
// live working graph; otherwise the immutable snapshot with that number.
func (s *GraphService) GetGraph(ctx context.Context, processID string, version int) (*GraphView, error) {
	state, err := s.repo.GetByID(ctx, processID)
	if err != nil {
		return nil, err
	}

	if version < 0 {
		nodes, edges := state.Graph.Freeze()
		return &GraphView{
			ProcessID: processID,
			Version:   state.Versions.Latest().VersionNumber(),
			Live:      true,
			Nodes:     nodeViews(nodes),
			Edges:     edgeViews(edges),
		}, nil
	}

	v, err := state.Versions.Version(version)
	if err != nil {
		return nil, err
	}
	return &GraphView{
		ProcessID: processID,
		Version:   v.VersionNumber(),
		Nodes:     nodeViews(v.Nodes()),
		Edges:     edgeViews(v.Edges()),
	}, nil
}

// Snapshot captures the current live graph as the next immutable version
func (s *GraphService) Snapshot(ctx context.Context, processID, description string) (*versioning.VersionMeta, error) {
	state, err := s.repo.GetByID(ctx, processID)
	if err != nil {
		return nil, err
	}
	if err := guardMutable(state); err != nil {
		return nil, err
	}

	v := state.Versions.Capture(state.Graph, description)
	meta := v.Meta()
	s.metrics.VersionsCaptured.Inc()
	s.logger.Info("graph version captured",
		zap.String("processID", processID),
		zap.Int("version", meta.VersionNumber),
		zap.Int("nodes", meta.NodeCount),
		zap.Int("edges", meta.EdgeCount),
	)
	return &meta, nil
}

// ListVersions returns metadata for every captured version, oldest first
func (s *GraphService) ListVersions(ctx context.Context, processID string) ([]versioning.VersionMeta, error) {
	state, err := s.repo.GetByID(ctx, processID)
	if err != nil {
		return nil, err
	}
	return state.Versions.List(), nil
}

// Diff computes the structural difference between two captured versions
func (s *GraphService) Diff(ctx context.Context, processID string, fromVersion, toVersion int) (*versioning.Diff, error) {
	state, err := s.repo.GetByID(ctx, processID)
	if err != nil {
		return nil, err
	}
	return state.Versions.Diff(fromVersion, toVersion)
}

// Analysis computes roots, leaves and degree centrality over the live graph
func (s *GraphService) Analysis(ctx context.Context, processID string) (*analysis.Result, error) {
	state, err := s.repo.GetByID(ctx, processID)
	if err != nil {
		return nil, err
	}
	result := analysis.Analyze(frozenView(state))
	return &result, nil
}

// Path returns the shortest directed path between two nodes, or an empty
// path when the target is unreachable.
func (s *GraphService) Path(ctx context.Context, processID, fromID, toID string) ([]string, error) {
	state, err := s.repo.GetByID(ctx, processID)
	if err != nil {
		return nil, err
	}
	if err := s.requireNode(state, fromID); err != nil {
		return nil, err
	}
	if err := s.requireNode(state, toID); err != nil {
		return nil, err
	}
	return analysis.ShortestPath(frozenView(state), fromID, toID), nil
}

// Downstream returns every node reachable from the given node
func (s *GraphService) Downstream(ctx context.Context, processID, nodeID string) ([]string, error) {
	state, err := s.repo.GetByID(ctx, processID)
	if err != nil {
		return nil, err
	}
	if err := s.requireNode(state, nodeID); err != nil {
		return nil, err
	}
	return analysis.Downstream(frozenView(state), nodeID), nil
}

// Upstream returns every node that can reach the given node
func (s *GraphService) Upstream(ctx context.Context, processID, nodeID string) ([]string, error) {
	state, err := s.repo.GetByID(ctx, processID)
	if err != nil {
		return nil, err
	}
	if err := s.requireNode(state, nodeID); err != nil {
		return nil, err
	}
	return analysis.Upstream(frozenView(state), nodeID), nil
}

// MergeFailure mirrors the aggregate's failure record so the transport layer
// does not import the aggregate package.
type MergeFailure struct {
	Reference string `json:"reference"`
	Reason    string `json:"reason"`
}

// snapshotView adapts a frozen node/edge pair to the analysis view
type snapshotView struct {
	nodes []*entities.Node
	edges []*entities.Edge
}

func (v snapshotView) Nodes() []*entities.Node { return v.nodes }
func (v snapshotView) Edges() []*entities.Edge { return v.edges }

// frozenView takes one consistent copy of the live graph so a long traversal
// never observes a concurrent merge.
func frozenView(state *ports.ProcessState) snapshotView {
	nodes, edges := state.Graph.Freeze()
	return snapshotView{nodes: nodes, edges: edges}
}

// requireNode confirms a node id exists in the live graph before traversal
func (s *GraphService) requireNode(state *ports.ProcessState, nodeID string) error {
	id, err := valueobjects.NewNodeIDFromString(nodeID)
	if err != nil {
		return err
	}
	_, err = state.Graph.Node(id)
	return err
}

func nodeViews(nodes []*entities.Node) []NodeView {
	views := make([]NodeView, 0, len(nodes))
	for _, n := range nodes {
		views = append(views, NodeView{
			ID:          n.ID().String(),
			Type:        n.Type(),
			Label:       n.Label(),
			Description: n.Description(),
			Confidence:  n.Confidence(),
			Attributes:  n.Attributes(),
			Provenance:  n.Provenance(),
			CreatedAt:   n.CreatedAt().Format(timeFormat),
			UpdatedAt:   n.UpdatedAt().Format(timeFormat),
		})
	}
	return views
}

func edgeViews(edges []*entities.Edge) []EdgeView {
	views := make([]EdgeView, 0, len(edges))
	for _, e := range edges {
		views = append(views, EdgeView{
			ID:         e.ID(),
			SourceID:   e.SourceID().String(),
			TargetID:   e.TargetID().String(),
			Relation:   e.Relation(),
			Label:      e.Label(),
			Conditions: e.Conditions(),
			CreatedAt:  e.CreatedAt().Format(timeFormat),
		})
	}
	return views
}
