// Package risk implements the rule-based risk detection engine: a closed
// registry of independent rules that inspect a read-only graph view and emit
// findings, plus the per-process ledger that tracks acknowledgment and
// resolution of findings across analysis runs.
package risk

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Severity ranks how urgently a finding should be addressed
type Severity string

const (
	SeverityCritical Severity = "critical" // immediate action required
	SeverityHigh     Severity = "high"     // address before go-live
	SeverityMedium   Severity = "medium"   // document and monitor
	SeverityLow      Severity = "low"      // informational
)

// Rank returns the total-order position of a severity, critical highest
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}

// ParseSeverity parses a severity string, defaulting to low for unknown or
// empty input so callers get the widest filter rather than an error.
func ParseSeverity(s string) Severity {
	switch Severity(strings.ToLower(strings.TrimSpace(s))) {
	case SeverityCritical:
		return SeverityCritical
	case SeverityHigh:
		return SeverityHigh
	case SeverityMedium:
		return SeverityMedium
	}
	return SeverityLow
}

// Category identifies which rule produced a finding
type Category string

const (
	CategoryCircularDependency   Category = "circular_dependency"
	CategorySinglePointOfFailure Category = "single_point_of_failure"
	CategoryOrphanedTask         Category = "orphaned_task"
	CategoryBrittleChain         Category = "brittle_chain"
	CategoryBottleneck           Category = "bottleneck"
	CategoryUndocumentedDecision Category = "undocumented_decision"
)

// EffortEstimate is the coarse remediation effort attached to a finding
type EffortEstimate string

const (
	EffortLow    EffortEstimate = "low"
	EffortMedium EffortEstimate = "medium"
	EffortHigh   EffortEstimate = "high"
)

// Finding is a single risk detection result. A finding persists in the
// ledger independently of later graph mutations; fresh analysis runs are
// reconciled against existing findings by Identity, so acknowledgment and
// resolution state survives re-analysis.
type Finding struct {
	ID              string         `json:"id"`
	GraphVersion    int            `json:"graph_version"`
	Category        Category       `json:"category"`
	Severity        Severity       `json:"severity"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	Explanation     string         `json:"explanation"`
	Recommendation  string         `json:"recommendation"`
	AffectedNodeIDs []string       `json:"affected_node_ids"`
	EffortEstimate  EffortEstimate `json:"effort_estimate"`
	Acknowledged    bool           `json:"acknowledged"`
	Resolved        bool           `json:"resolved"`
	ResolutionNotes string         `json:"resolution_notes,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	ResolvedAt      *time.Time     `json:"resolved_at,omitempty"`
}

// Identity returns the reconciliation key: category plus the sorted affected
// node set. Two runs that detect the same structural problem produce
// findings with the same identity even though their generated ids differ.
func (f *Finding) Identity() string {
	ids := make([]string, len(f.AffectedNodeIDs))
	copy(ids, f.AffectedNodeIDs)
	sort.Strings(ids)
	return string(f.Category) + "|" + strings.Join(ids, ",")
}

// newFinding stamps a rule-produced finding with id, version and timestamp.
// Affected node ids are sorted so identity and ordering are deterministic.
func newFinding(f Finding, graphVersion int) Finding {
	f.ID = uuid.New().String()
	f.GraphVersion = graphVersion
	f.CreatedAt = time.Now()
	sort.Strings(f.AffectedNodeIDs)
	return f
}
