package entities

import (
	"strings"
	"time"

	"knowflow-backend/domain/core/valueobjects"
	pkgerrors "knowflow-backend/pkg/errors"
)

// RelationType defines the typed relationship an edge carries
type RelationType string

const (
	RelationDependsOn RelationType = "depends_on" // source requires target's completion
	RelationTriggers  RelationType = "triggers"   // source initiates target
	RelationOwnedBy   RelationType = "owned_by"   // source task is owned by target role
	RelationProduces  RelationType = "produces"   // source produces target artifact
	RelationConsumes  RelationType = "consumes"   // source requires target artifact as input
	RelationDecides   RelationType = "decides"    // source decision leads to target path
)

// ValidRelationType reports whether t is one of the known relation types
func ValidRelationType(t RelationType) bool {
	switch t {
	case RelationDependsOn, RelationTriggers, RelationOwnedBy,
		RelationProduces, RelationConsumes, RelationDecides:
		return true
	}
	return false
}

// EdgeIdentity is the logical identity of an edge for merge and diff
// purposes. Two edges with the same (source, target, relation) triple are
// the same edge regardless of their generated ids.
type EdgeIdentity struct {
	SourceID string
	TargetID string
	Relation RelationType
}

// Edge is a directed, typed relationship between two nodes in the same graph
type Edge struct {
	id         string
	sourceID   valueobjects.NodeID
	targetID   valueobjects.NodeID
	relation   RelationType
	label      string
	conditions []string
	createdAt  time.Time
	updatedAt  time.Time
}

// NewEdge creates a new edge between two resolved node ids
func NewEdge(sourceID, targetID valueobjects.NodeID, relation RelationType, label string, conditions []string) (*Edge, error) {
	if sourceID.IsZero() || targetID.IsZero() {
		return nil, pkgerrors.NewValidationError("edge endpoints cannot be empty")
	}
	if !ValidRelationType(relation) {
		return nil, pkgerrors.NewValidationError("unknown relation type: " + string(relation))
	}

	now := time.Now()
	e := &Edge{
		id:         valueobjects.NewNodeID().String(),
		sourceID:   sourceID,
		targetID:   targetID,
		relation:   relation,
		label:      strings.TrimSpace(label),
		conditions: []string{},
		createdAt:  now,
		updatedAt:  now,
	}
	e.mergeConditions(conditions)
	return e, nil
}

// ReconstructEdge rebuilds an edge from stored state
func ReconstructEdge(
	id string,
	sourceID, targetID valueobjects.NodeID,
	relation RelationType,
	label string,
	conditions []string,
	createdAt, updatedAt time.Time,
) *Edge {
	e := &Edge{
		id:         id,
		sourceID:   sourceID,
		targetID:   targetID,
		relation:   relation,
		label:      label,
		conditions: make([]string, len(conditions)),
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
	copy(e.conditions, conditions)
	return e
}

// ID returns the edge's generated identifier
func (e *Edge) ID() string {
	return e.id
}

// SourceID returns the source node id
func (e *Edge) SourceID() valueobjects.NodeID {
	return e.sourceID
}

// TargetID returns the target node id
func (e *Edge) TargetID() valueobjects.NodeID {
	return e.targetID
}

// Relation returns the typed relation the edge carries
func (e *Edge) Relation() RelationType {
	return e.relation
}

// Label returns the edge label, e.g. branch condition text
func (e *Edge) Label() string {
	return e.label
}

// Conditions returns a copy of the ordered condition strings
func (e *Edge) Conditions() []string {
	c := make([]string, len(e.conditions))
	copy(c, e.conditions)
	return c
}

// CreatedAt returns when the edge was first merged
func (e *Edge) CreatedAt() time.Time {
	return e.createdAt
}

// UpdatedAt returns when the edge last absorbed a candidate
func (e *Edge) UpdatedAt() time.Time {
	return e.updatedAt
}

// Identity returns the (source, target, relation) triple that defines the
// edge's logical identity
func (e *Edge) Identity() EdgeIdentity {
	return EdgeIdentity{
		SourceID: e.sourceID.String(),
		TargetID: e.targetID.String(),
		Relation: e.relation,
	}
}

// MergeCandidate folds a duplicate candidate into this edge: conditions are
// unioned preserving order of first appearance, and the most specific
// non-empty label wins.
func (e *Edge) MergeCandidate(label string, conditions []string) {
	label = strings.TrimSpace(label)
	if len(label) > len(e.label) {
		e.label = label
	}
	e.mergeConditions(conditions)
	e.updatedAt = time.Now()
}

// Clone returns a deep copy of the edge for snapshot isolation
func (e *Edge) Clone() *Edge {
	return ReconstructEdge(
		e.id, e.sourceID, e.targetID, e.relation,
		e.label, e.conditions, e.createdAt, e.updatedAt,
	)
}

func (e *Edge) mergeConditions(conditions []string) {
	for _, c := range conditions {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		exists := false
		for _, have := range e.conditions {
			if have == c {
				exists = true
				break
			}
		}
		if !exists {
			e.conditions = append(e.conditions, c)
		}
	}
}
