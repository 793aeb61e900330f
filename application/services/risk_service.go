package services

import (
	"context"

	"go.uber.org/zap"

	"knowflow-backend/application/ports"
	"knowflow-backend/domain/risk"
	"knowflow-backend/pkg/observability"
)

// AnalyzeOptions narrows a risk analysis run
type AnalyzeOptions struct {
	MinSeverity string   `json:"min_severity,omitempty"`
	Categories  []string `json:"categories,omitempty"`
}

// RiskFilter narrows a stored finding listing
type RiskFilter struct {
	Severity        string
	Category        string
	IncludeResolved bool
}

// RiskService runs the risk engine over live graphs and manages the
// per-process finding ledger.
type RiskService struct {
	repo    ports.ProcessRepository
	engine  *risk.Engine
	metrics *observability.Collector
	logger  *zap.Logger
}

// NewRiskService creates a new risk service
func NewRiskService(repo ports.ProcessRepository, engine *risk.Engine, metrics *observability.Collector, logger *zap.Logger) *RiskService {
	return &RiskService{
		repo:    repo,
		engine:  engine,
		metrics: metrics,
		logger:  logger,
	}
}

// Analyze runs every risk rule against the current live graph and reconciles
// the fresh findings into the ledger, so findings already acknowledged keep
// their ids and acknowledgment across runs.
func (s *RiskService) Analyze(ctx context.Context, processID string, opts AnalyzeOptions) (*risk.Report, error) {
	state, err := s.repo.GetByID(ctx, processID)
	if err != nil {
		return nil, err
	}

	engineOpts := risk.Options{}
	if opts.MinSeverity != "" {
		engineOpts.MinSeverity = risk.ParseSeverity(opts.MinSeverity)
	}
	for _, c := range opts.Categories {
		engineOpts.Categories = append(engineOpts.Categories, risk.Category(c))
	}

	version := state.Versions.Latest().VersionNumber()
	report := s.engine.Evaluate(frozenView(state), version, engineOpts)
	report.Findings = state.Findings.Reconcile(report.Findings)

	s.metrics.AnalysisRuns.Inc()
	s.metrics.FindingsEmitted.Add(float64(report.TotalRisks))

	s.logger.Info("risk analysis complete",
		zap.String("processID", processID),
		zap.Int("graphVersion", version),
		zap.Int("totalRisks", report.TotalRisks),
		zap.Bool("degraded", report.Degraded),
	)
	return report, nil
}

// List returns stored findings, filtered. By default resolved findings are
// excluded; they stay retrievable with IncludeResolved for audit.
func (s *RiskService) List(ctx context.Context, processID string, filter RiskFilter) ([]risk.Finding, error) {
	state, err := s.repo.GetByID(ctx, processID)
	if err != nil {
		return nil, err
	}

	var findings []risk.Finding
	if filter.IncludeResolved {
		findings = state.Findings.List()
	} else {
		findings = state.Findings.Active()
	}

	if filter.Severity == "" && filter.Category == "" {
		return findings, nil
	}
	filtered := findings[:0]
	for _, f := range findings {
		if filter.Severity != "" && f.Severity != risk.ParseSeverity(filter.Severity) {
			continue
		}
		if filter.Category != "" && f.Category != risk.Category(filter.Category) {
			continue
		}
		filtered = append(filtered, f)
	}
	return filtered, nil
}

// Get returns one stored finding
func (s *RiskService) Get(ctx context.Context, processID, findingID string) (*risk.Finding, error) {
	state, err := s.repo.GetByID(ctx, processID)
	if err != nil {
		return nil, err
	}
	f, err := state.Findings.Get(findingID)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Acknowledge marks a finding as seen by a human. Idempotent.
func (s *RiskService) Acknowledge(ctx context.Context, processID, findingID string) (*risk.Finding, error) {
	state, err := s.repo.GetByID(ctx, processID)
	if err != nil {
		return nil, err
	}
	f, err := state.Findings.Acknowledge(findingID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("finding acknowledged",
		zap.String("processID", processID),
		zap.String("findingID", findingID),
	)
	return &f, nil
}

// Resolve moves a finding to its terminal resolved state with mandatory notes
func (s *RiskService) Resolve(ctx context.Context, processID, findingID, notes string) (*risk.Finding, error) {
	state, err := s.repo.GetByID(ctx, processID)
	if err != nil {
		return nil, err
	}
	f, err := state.Findings.Resolve(findingID, notes)
	if err != nil {
		return nil, err
	}
	s.logger.Info("finding resolved",
		zap.String("processID", processID),
		zap.String("findingID", findingID),
	)
	return &f, nil
}
