package risk

import (
	"sort"

	"go.uber.org/zap"
)

// Rule is one independent risk detector. Rules are pure functions of the
// indexed graph: they hold no state between runs and never see each other's
// output.
type Rule interface {
	// Category identifies the findings this rule produces
	Category() Category
	// Evaluate inspects the indexed graph and returns zero or more findings
	Evaluate(idx *GraphIndex) []Finding
}

// Options narrows an analysis run
type Options struct {
	// MinSeverity drops findings ranked below it. Zero value keeps everything.
	MinSeverity Severity
	// Categories restricts the run to the named rule categories. Empty runs all.
	Categories []Category
}

// Report is the outcome of one analysis run over a single graph view
type Report struct {
	GraphVersion     int              `json:"graph_version"`
	TotalRisks       int              `json:"total_risks"`
	CountsBySeverity map[Severity]int `json:"counts_by_severity"`
	Findings         []Finding        `json:"findings"`
	// Degraded is set when at least one rule failed; the report then covers
	// only the rules that completed.
	Degraded bool `json:"degraded,omitempty"`
}

// Engine runs the closed registry of risk rules against a graph view.
// A failing rule is isolated: its findings are dropped, the report is marked
// degraded, and every other rule still runs.
type Engine struct {
	rules  []Rule
	logger *zap.Logger
}

// NewEngine builds an engine with the full rule registry
func NewEngine(logger *zap.Logger) *Engine {
	return &Engine{
		rules: []Rule{
			CircularDependencyRule{},
			SinglePointOfFailureRule{},
			OrphanedTaskRule{},
			BrittleChainRule{},
			BottleneckRule{},
			UndocumentedDecisionRule{},
			LowConfidenceModelRule{},
		},
		logger: logger,
	}
}

// Evaluate runs every registered rule against the view and assembles a
// report tagged with the given graph version. Findings are ordered by
// severity descending, then category, then affected node set, so identical
// graphs always yield identical reports.
func (e *Engine) Evaluate(view View, graphVersion int, opts Options) *Report {
	idx := NewGraphIndex(view)
	report := &Report{
		GraphVersion:     graphVersion,
		CountsBySeverity: make(map[Severity]int),
	}

	wanted := categorySet(opts.Categories)
	for _, rule := range e.rules {
		if wanted != nil && !wanted[rule.Category()] {
			continue
		}
		for _, f := range e.runRule(rule, idx, report) {
			if opts.MinSeverity != "" && f.Severity.Rank() < opts.MinSeverity.Rank() {
				continue
			}
			report.Findings = append(report.Findings, newFinding(f, graphVersion))
		}
	}

	sort.Slice(report.Findings, func(i, j int) bool {
		a, b := report.Findings[i], report.Findings[j]
		if a.Severity.Rank() != b.Severity.Rank() {
			return a.Severity.Rank() > b.Severity.Rank()
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.Identity() < b.Identity()
	})

	report.TotalRisks = len(report.Findings)
	for _, f := range report.Findings {
		report.CountsBySeverity[f.Severity]++
	}
	return report
}

// runRule executes one rule, converting a panic into a degraded report
// instead of failing the whole run.
func (e *Engine) runRule(rule Rule, idx *GraphIndex, report *Report) (findings []Finding) {
	defer func() {
		if r := recover(); r != nil {
			report.Degraded = true
			findings = nil
			e.logger.Error("risk rule failed",
				zap.String("category", string(rule.Category())),
				zap.Any("panic", r))
		}
	}()
	return rule.Evaluate(idx)
}

func categorySet(categories []Category) map[Category]bool {
	if len(categories) == 0 {
		return nil
	}
	set := make(map[Category]bool, len(categories))
	for _, c := range categories {
		set[c] = true
	}
	return set
}
