package risk

import (
	"sort"
	"strings"
	"sync"
	"time"

	pkgerrors "knowflow-backend/pkg/errors"
)

// Ledger is the per-process finding store. Findings live independently of
// any single graph version: a fresh analysis run is reconciled against the
// stored set by identity instead of replacing it, so acknowledged and
// resolved findings are never silently invalidated by graph changes.
type Ledger struct {
	mu       sync.RWMutex
	findings map[string]*Finding // by finding id
}

// NewLedger creates an empty finding ledger
func NewLedger() *Ledger {
	return &Ledger{
		findings: make(map[string]*Finding),
	}
}

// Reconcile merges a fresh finding set into the ledger. A fresh finding
// whose identity matches a stored unresolved finding refreshes that
// finding's content while keeping its id and acknowledgment state; a fresh
// identity is appended. Stored findings absent from the fresh set are
// retained for audit. Returns the findings corresponding to the fresh set,
// in the fresh set's order.
func (l *Ledger) Reconcile(fresh []Finding) []Finding {
	l.mu.Lock()
	defer l.mu.Unlock()

	byIdentity := make(map[string]*Finding, len(l.findings))
	for _, f := range l.findings {
		if !f.Resolved {
			byIdentity[f.Identity()] = f
		}
	}

	result := make([]Finding, 0, len(fresh))
	for i := range fresh {
		f := fresh[i]
		if existing, ok := byIdentity[f.Identity()]; ok {
			// Same structural problem seen again: refresh the narrative
			// fields, keep id, first-seen time, and acknowledgment.
			existing.GraphVersion = f.GraphVersion
			existing.Severity = f.Severity
			existing.Title = f.Title
			existing.Description = f.Description
			existing.Explanation = f.Explanation
			existing.Recommendation = f.Recommendation
			existing.EffortEstimate = f.EffortEstimate
			result = append(result, *existing)
			continue
		}
		stored := f
		l.findings[stored.ID] = &stored
		// Register the identity immediately so a duplicate later in the
		// same batch folds into this finding instead of being stored twice.
		byIdentity[stored.Identity()] = &stored
		result = append(result, stored)
	}
	return result
}

// Get returns a copy of the finding with the given id
func (l *Ledger) Get(id string) (Finding, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	f, ok := l.findings[id]
	if !ok {
		return Finding{}, pkgerrors.NewFindingNotFoundError(id)
	}
	return *f, nil
}

// List returns all stored findings ordered by severity descending, then
// creation time, then id.
func (l *Ledger) List() []Finding {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Finding, 0, len(l.findings))
	for _, f := range l.findings {
		out = append(out, *f)
	}
	sortFindings(out)
	return out
}

// Active returns stored findings that have not been resolved. Resolved
// findings are retained for audit but excluded from active counts.
func (l *Ledger) Active() []Finding {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Finding, 0, len(l.findings))
	for _, f := range l.findings {
		if !f.Resolved {
			out = append(out, *f)
		}
	}
	sortFindings(out)
	return out
}

// Acknowledge marks a finding as acknowledged. Idempotent.
func (l *Ledger) Acknowledge(id string) (Finding, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, ok := l.findings[id]
	if !ok {
		return Finding{}, pkgerrors.NewFindingNotFoundError(id)
	}
	f.Acknowledged = true
	return *f, nil
}

// Resolve moves a finding to its terminal resolved state. Resolution
// requires non-empty notes; resolving an already-resolved finding is a
// conflict.
func (l *Ledger) Resolve(id, notes string) (Finding, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, ok := l.findings[id]
	if !ok {
		return Finding{}, pkgerrors.NewFindingNotFoundError(id)
	}
	if strings.TrimSpace(notes) == "" {
		return Finding{}, pkgerrors.NewInvalidResolutionError()
	}
	if f.Resolved {
		return Finding{}, pkgerrors.NewConflictError("finding is already resolved")
	}

	now := time.Now()
	f.Resolved = true
	f.ResolutionNotes = notes
	f.ResolvedAt = &now
	return *f, nil
}

func sortFindings(findings []Finding) {
	sort.Slice(findings, func(i, j int) bool {
		if findings[i].Severity.Rank() != findings[j].Severity.Rank() {
			return findings[i].Severity.Rank() > findings[j].Severity.Rank()
		}
		if !findings[i].CreatedAt.Equal(findings[j].CreatedAt) {
			return findings[i].CreatedAt.Before(findings[j].CreatedAt)
		}
		return findings[i].ID < findings[j].ID
	})
}
