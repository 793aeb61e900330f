package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"knowflow-backend/domain/core/valueobjects"
	pkgerrors "knowflow-backend/pkg/errors"
)

func TestNewEdge(t *testing.T) {
	src := valueobjects.NewNodeID()
	dst := valueobjects.NewNodeID()

	t.Run("SuccessfulCreation", func(t *testing.T) {
		edge, err := NewEdge(src, dst, RelationDependsOn, "blocks", []string{"after sign-off"})
		require.NoError(t, err)

		assert.NotEmpty(t, edge.ID())
		assert.Equal(t, src, edge.SourceID())
		assert.Equal(t, dst, edge.TargetID())
		assert.Equal(t, RelationDependsOn, edge.Relation())
		assert.Equal(t, EdgeIdentity{SourceID: src.String(), TargetID: dst.String(), Relation: RelationDependsOn}, edge.Identity())
	})

	t.Run("UnknownRelation", func(t *testing.T) {
		_, err := NewEdge(src, dst, "related_to", "", nil)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsValidation(err))
	})

	t.Run("SelfLoopAllowed", func(t *testing.T) {
		// Self-referential rules exist in real processes; the graph layer
		// decides whether to reject them, not the entity.
		_, err := NewEdge(src, src, RelationTriggers, "", nil)
		require.NoError(t, err)
	})
}

func TestEdgeMergeCandidate(t *testing.T) {
	src := valueobjects.NewNodeID()
	dst := valueobjects.NewNodeID()

	t.Run("LongestLabelWins", func(t *testing.T) {
		edge, err := NewEdge(src, dst, RelationDecides, "approves", nil)
		require.NoError(t, err)

		edge.MergeCandidate("approves after committee review", nil)
		assert.Equal(t, "approves after committee review", edge.Label())

		edge.MergeCandidate("ok", nil)
		assert.Equal(t, "approves after committee review", edge.Label())

		edge.MergeCandidate("", nil)
		assert.Equal(t, "approves after committee review", edge.Label())
	})

	t.Run("ConditionsUnionPreservesOrder", func(t *testing.T) {
		edge, err := NewEdge(src, dst, RelationDecides, "", []string{"amount > 10000"})
		require.NoError(t, err)

		edge.MergeCandidate("", []string{"amount > 10000", "requires manager"})
		assert.Equal(t, []string{"amount > 10000", "requires manager"}, edge.Conditions())
	})
}
