package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "knowflow-backend/pkg/errors"
)

func TestNewNode(t *testing.T) {
	t.Run("SuccessfulCreation", func(t *testing.T) {
		node, err := NewNode(CandidateNode{
			Type:             NodeTypeTask,
			Label:            "  Review Application  ",
			Description:      "Initial review of the submitted form",
			Confidence:       Score(0.85),
			Attributes:       map[string]interface{}{"sla_hours": 24},
			SourceResponseID: "resp-1",
		})
		require.NoError(t, err)

		assert.False(t, node.ID().IsZero())
		assert.Equal(t, NodeTypeTask, node.Type())
		assert.Equal(t, "Review Application", node.Label())
		assert.Equal(t, "review application", node.NormalizedLabel())
		assert.Equal(t, 0.85, node.Confidence())
		assert.Equal(t, []string{"resp-1"}, node.Provenance())
	})

	t.Run("UnknownType", func(t *testing.T) {
		_, err := NewNode(CandidateNode{Type: "gateway", Label: "X", Confidence: Score(0.5)})
		require.Error(t, err)
		assert.True(t, pkgerrors.IsValidation(err))
	})

	t.Run("EmptyLabel", func(t *testing.T) {
		_, err := NewNode(CandidateNode{Type: NodeTypeTask, Label: "   ", Confidence: Score(0.5)})
		require.Error(t, err)
		assert.True(t, pkgerrors.IsValidation(err))
	})

	t.Run("AbsentConfidenceDefaults", func(t *testing.T) {
		node, err := NewNode(CandidateNode{Type: NodeTypeTask, Label: "X"})
		require.NoError(t, err)
		assert.Equal(t, DefaultConfidence, node.Confidence())
	})

	t.Run("ConfidenceOutOfRange", func(t *testing.T) {
		_, err := NewNode(CandidateNode{Type: NodeTypeTask, Label: "X", Confidence: Score(1.2)})
		require.Error(t, err)
		assert.True(t, pkgerrors.IsValidation(err))
	})
}

func TestNodeMerge(t *testing.T) {
	base := CandidateNode{
		Type:             NodeTypeTask,
		Label:            "Approve Request",
		Description:      "",
		Confidence:       Score(0.6),
		Attributes:       map[string]interface{}{"owner": "finance", "sla_hours": 24},
		SourceResponseID: "resp-1",
	}

	t.Run("ConfidenceIsMax", func(t *testing.T) {
		node, err := NewNode(base)
		require.NoError(t, err)

		require.NoError(t, node.Merge(CandidateNode{Type: NodeTypeTask, Label: "Approve Request", Confidence: Score(0.9)}))
		assert.Equal(t, 0.9, node.Confidence())

		// Lower confidence never degrades the node.
		require.NoError(t, node.Merge(CandidateNode{Type: NodeTypeTask, Label: "Approve Request", Confidence: Score(0.3)}))
		assert.Equal(t, 0.9, node.Confidence())
	})

	t.Run("AttributesUnionCandidateWins", func(t *testing.T) {
		node, err := NewNode(base)
		require.NoError(t, err)

		require.NoError(t, node.Merge(CandidateNode{
			Type:       NodeTypeTask,
			Label:      "Approve Request",
			Confidence: Score(0.5),
			Attributes: map[string]interface{}{"sla_hours": 48, "escalation": "manager"},
		}))

		attrs := node.Attributes()
		assert.Equal(t, 48, attrs["sla_hours"])
		assert.Equal(t, "finance", attrs["owner"])
		assert.Equal(t, "manager", attrs["escalation"])
	})

	t.Run("DescriptionFillsEmptyOnly", func(t *testing.T) {
		node, err := NewNode(base)
		require.NoError(t, err)

		require.NoError(t, node.Merge(CandidateNode{
			Type: NodeTypeTask, Label: "Approve Request", Confidence: Score(0.5),
			Description: "Manager signs off on the request",
		}))
		assert.Equal(t, "Manager signs off on the request", node.Description())

		require.NoError(t, node.Merge(CandidateNode{
			Type: NodeTypeTask, Label: "Approve Request", Confidence: Score(0.5),
			Description: "A different description",
		}))
		assert.Equal(t, "Manager signs off on the request", node.Description())
	})

	t.Run("ProvenanceAppendsWithoutDuplicates", func(t *testing.T) {
		node, err := NewNode(base)
		require.NoError(t, err)

		require.NoError(t, node.Merge(CandidateNode{
			Type: NodeTypeTask, Label: "Approve Request", Confidence: Score(0.5),
			SourceResponseID: "resp-2",
		}))
		require.NoError(t, node.Merge(CandidateNode{
			Type: NodeTypeTask, Label: "Approve Request", Confidence: Score(0.5),
			SourceResponseID: "resp-1",
		}))
		assert.Equal(t, []string{"resp-1", "resp-2"}, node.Provenance())
	})

	t.Run("TypeIsImmutable", func(t *testing.T) {
		node, err := NewNode(base)
		require.NoError(t, err)

		err = node.Merge(CandidateNode{Type: NodeTypeRole, Label: "Approve Request", Confidence: Score(0.5)})
		require.Error(t, err)
		assert.True(t, pkgerrors.IsConflict(err))
		assert.Equal(t, NodeTypeTask, node.Type())
	})
}

func TestNodeClone(t *testing.T) {
	node, err := NewNode(CandidateNode{
		Type:       NodeTypeArtifact,
		Label:      "Invoice",
		Confidence: Score(0.7),
		Attributes: map[string]interface{}{"format": "pdf"},
	})
	require.NoError(t, err)

	clone := node.Clone()
	require.NoError(t, node.Merge(CandidateNode{
		Type: NodeTypeArtifact, Label: "Invoice", Confidence: Score(0.95),
		Attributes: map[string]interface{}{"format": "xml"},
	}))

	assert.Equal(t, 0.7, clone.Confidence())
	attrs := clone.Attributes()
	assert.Equal(t, "pdf", attrs["format"])
}

func TestNormalizeLabel(t *testing.T) {
	assert.Equal(t, "review application", NormalizeLabel("Review  Application"))
	assert.Equal(t, "review application", NormalizeLabel("  REVIEW\tAPPLICATION "))
	assert.Equal(t, "", NormalizeLabel("   "))
}
