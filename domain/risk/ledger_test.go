package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "knowflow-backend/pkg/errors"
)

func stampedFinding(category Category, severity Severity, version int, affected ...string) Finding {
	return newFinding(Finding{
		Category:        category,
		Severity:        severity,
		Title:           "title",
		AffectedNodeIDs: affected,
	}, version)
}

func TestLedgerReconcile(t *testing.T) {
	t.Run("FreshFindingsAreStored", func(t *testing.T) {
		ledger := NewLedger()
		fresh := []Finding{
			stampedFinding(CategoryCircularDependency, SeverityCritical, 1, "n1", "n2"),
			stampedFinding(CategoryOrphanedTask, SeverityHigh, 1, "n3"),
		}

		result := ledger.Reconcile(fresh)
		require.Len(t, result, 2)
		assert.Equal(t, fresh[0].ID, result[0].ID)
		assert.Equal(t, fresh[1].ID, result[1].ID)
		assert.Len(t, ledger.List(), 2)
	})

	t.Run("MatchingIdentityKeepsIDAndAcknowledgment", func(t *testing.T) {
		ledger := NewLedger()
		first := ledger.Reconcile([]Finding{
			stampedFinding(CategoryBottleneck, SeverityMedium, 1, "hub"),
		})
		_, err := ledger.Acknowledge(first[0].ID)
		require.NoError(t, err)

		rerun := stampedFinding(CategoryBottleneck, SeverityHigh, 2, "hub")
		rerun.Title = "worse now"
		result := ledger.Reconcile([]Finding{rerun})

		require.Len(t, result, 1)
		assert.Equal(t, first[0].ID, result[0].ID, "id survives the rerun")
		assert.True(t, result[0].Acknowledged)
		assert.Equal(t, first[0].CreatedAt, result[0].CreatedAt)
		assert.Equal(t, SeverityHigh, result[0].Severity)
		assert.Equal(t, "worse now", result[0].Title)
		assert.Equal(t, 2, result[0].GraphVersion)
		assert.Len(t, ledger.List(), 1, "no duplicate stored")
	})

	t.Run("DuplicateIdentityWithinOneBatchFoldsTogether", func(t *testing.T) {
		ledger := NewLedger()
		result := ledger.Reconcile([]Finding{
			stampedFinding(CategorySinglePointOfFailure, SeverityHigh, 1, "role", "t1"),
			stampedFinding(CategorySinglePointOfFailure, SeverityHigh, 1, "role", "t1"),
		})

		require.Len(t, result, 2)
		assert.Equal(t, result[0].ID, result[1].ID, "second duplicate folds into the first")
		assert.Len(t, ledger.List(), 1, "only one finding stored")
	})

	t.Run("DifferentAffectedSetIsANewFinding", func(t *testing.T) {
		ledger := NewLedger()
		first := ledger.Reconcile([]Finding{
			stampedFinding(CategoryBottleneck, SeverityMedium, 1, "hub"),
		})
		second := ledger.Reconcile([]Finding{
			stampedFinding(CategoryBottleneck, SeverityMedium, 2, "other"),
		})

		assert.NotEqual(t, first[0].ID, second[0].ID)
		assert.Len(t, ledger.List(), 2)
	})

	t.Run("ResolvedFindingIsNotRefreshed", func(t *testing.T) {
		ledger := NewLedger()
		first := ledger.Reconcile([]Finding{
			stampedFinding(CategoryOrphanedTask, SeverityHigh, 1, "n1"),
		})
		_, err := ledger.Resolve(first[0].ID, "assigned an owner")
		require.NoError(t, err)

		// The same structural problem reappears: it starts a new life.
		result := ledger.Reconcile([]Finding{
			stampedFinding(CategoryOrphanedTask, SeverityHigh, 2, "n1"),
		})
		require.Len(t, result, 1)
		assert.NotEqual(t, first[0].ID, result[0].ID)
		assert.False(t, result[0].Resolved)
		assert.Len(t, ledger.List(), 2)
	})

	t.Run("StoredFindingsAbsentFromFreshSetAreRetained", func(t *testing.T) {
		ledger := NewLedger()
		ledger.Reconcile([]Finding{
			stampedFinding(CategoryOrphanedTask, SeverityHigh, 1, "n1"),
		})
		result := ledger.Reconcile(nil)

		assert.Empty(t, result)
		assert.Len(t, ledger.List(), 1)
	})
}

func TestLedgerLookup(t *testing.T) {
	ledger := NewLedger()
	stored := ledger.Reconcile([]Finding{
		stampedFinding(CategoryBrittleChain, SeverityLow, 1, "n1"),
	})

	t.Run("GetReturnsTheFinding", func(t *testing.T) {
		f, err := ledger.Get(stored[0].ID)
		require.NoError(t, err)
		assert.Equal(t, stored[0].ID, f.ID)
	})

	t.Run("UnknownIDIsNotFound", func(t *testing.T) {
		_, err := ledger.Get("nope")
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeFindingNotFound))
	})
}

func TestLedgerActive(t *testing.T) {
	ledger := NewLedger()
	stored := ledger.Reconcile([]Finding{
		stampedFinding(CategoryCircularDependency, SeverityCritical, 1, "a", "b"),
		stampedFinding(CategoryOrphanedTask, SeverityMedium, 1, "c"),
	})
	_, err := ledger.Resolve(stored[1].ID, "wired into the flow")
	require.NoError(t, err)

	active := ledger.Active()
	require.Len(t, active, 1)
	assert.Equal(t, stored[0].ID, active[0].ID)

	all := ledger.List()
	assert.Len(t, all, 2, "resolved findings stay listed for audit")
	assert.Equal(t, SeverityCritical, all[0].Severity, "ordered by severity descending")
}

func TestLedgerAcknowledge(t *testing.T) {
	ledger := NewLedger()
	stored := ledger.Reconcile([]Finding{
		stampedFinding(CategoryBottleneck, SeverityMedium, 1, "hub"),
	})

	t.Run("MarksAndIsIdempotent", func(t *testing.T) {
		f, err := ledger.Acknowledge(stored[0].ID)
		require.NoError(t, err)
		assert.True(t, f.Acknowledged)

		again, err := ledger.Acknowledge(stored[0].ID)
		require.NoError(t, err)
		assert.True(t, again.Acknowledged)
	})

	t.Run("UnknownIDIsNotFound", func(t *testing.T) {
		_, err := ledger.Acknowledge("nope")
		assert.True(t, pkgerrors.IsNotFound(err))
	})
}

func TestLedgerResolve(t *testing.T) {
	newStored := func(t *testing.T) (*Ledger, Finding) {
		ledger := NewLedger()
		stored := ledger.Reconcile([]Finding{
			stampedFinding(CategoryUndocumentedDecision, SeverityMedium, 1, "d1"),
		})
		return ledger, stored[0]
	}

	t.Run("ResolvesWithNotes", func(t *testing.T) {
		ledger, stored := newStored(t)
		f, err := ledger.Resolve(stored.ID, "documented the branch conditions")
		require.NoError(t, err)
		assert.True(t, f.Resolved)
		assert.Equal(t, "documented the branch conditions", f.ResolutionNotes)
		require.NotNil(t, f.ResolvedAt)
	})

	t.Run("EmptyNotesAreRejected", func(t *testing.T) {
		ledger, stored := newStored(t)
		_, err := ledger.Resolve(stored.ID, "   ")
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidResolution))

		f, getErr := ledger.Get(stored.ID)
		require.NoError(t, getErr)
		assert.False(t, f.Resolved, "rejected resolve leaves the finding active")
	})

	t.Run("DoubleResolveIsAConflict", func(t *testing.T) {
		ledger, stored := newStored(t)
		_, err := ledger.Resolve(stored.ID, "fixed")
		require.NoError(t, err)

		_, err = ledger.Resolve(stored.ID, "fixed again")
		assert.True(t, pkgerrors.IsConflict(err))
	})

	t.Run("UnknownIDIsNotFound", func(t *testing.T) {
		ledger, _ := newStored(t)
		_, err := ledger.Resolve("nope", "notes")
		assert.True(t, pkgerrors.IsNotFound(err))
	})
}
