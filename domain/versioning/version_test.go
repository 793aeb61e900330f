package versioning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"knowflow-backend/domain/core/aggregates"
	"knowflow-backend/domain/core/entities"
	"knowflow-backend/domain/core/valueobjects"
	pkgerrors "knowflow-backend/pkg/errors"
)

func newGraphWith(t *testing.T, labels ...string) *aggregates.ProcessGraph {
	t.Helper()
	g := aggregates.NewProcessGraph(valueobjects.NewProcessID())
	var candidates []entities.CandidateNode
	for _, label := range labels {
		candidates = append(candidates, entities.CandidateNode{
			Type: entities.NodeTypeTask, Label: label, Confidence: entities.Score(0.8),
		})
	}
	out := g.MergeEntities(candidates)
	require.Equal(t, len(labels), out.Inserted)
	return g
}

func TestLedgerSeedsVersionZero(t *testing.T) {
	l := NewLedger()

	v := l.Latest()
	assert.Equal(t, 0, v.VersionNumber())
	assert.Equal(t, 0, v.NodeCount())
	assert.Equal(t, 0, v.EdgeCount())
	assert.Equal(t, "process created", v.Description())

	metas := l.List()
	require.Len(t, metas, 1)
	assert.Equal(t, 0, metas[0].VersionNumber)
}

func TestLedgerCapture(t *testing.T) {
	t.Run("NumbersAreGapless", func(t *testing.T) {
		l := NewLedger()
		g := newGraphWith(t, "A")

		v1 := l.Capture(g, "first")
		v2 := l.Capture(g, "second")
		assert.Equal(t, 1, v1.VersionNumber())
		assert.Equal(t, 2, v2.VersionNumber())

		metas := l.List()
		require.Len(t, metas, 3)
		for i, meta := range metas {
			assert.Equal(t, i, meta.VersionNumber)
		}
	})

	t.Run("SnapshotIsIsolatedFromLiveMutation", func(t *testing.T) {
		l := NewLedger()
		g := newGraphWith(t, "A")

		v := l.Capture(g, "before growth")
		g.MergeEntities([]entities.CandidateNode{
			{Type: entities.NodeTypeTask, Label: "B", Confidence: entities.Score(0.8)},
			{Type: entities.NodeTypeTask, Label: "A", Confidence: entities.Score(0.95)},
		})

		assert.Equal(t, 1, v.NodeCount())
		assert.Equal(t, 0.8, v.Nodes()[0].Confidence())
		assert.Equal(t, 2, g.NodeCount())
	})
}

func TestLedgerVersionLookup(t *testing.T) {
	l := NewLedger()
	g := newGraphWith(t, "A")
	l.Capture(g, "first")

	t.Run("Found", func(t *testing.T) {
		v, err := l.Version(1)
		require.NoError(t, err)
		assert.Equal(t, 1, v.VersionNumber())
	})

	t.Run("OutOfRange", func(t *testing.T) {
		_, err := l.Version(2)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeVersionNotFound))

		_, err = l.Version(-1)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeVersionNotFound))
	})
}
