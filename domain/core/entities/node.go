package entities

import (
	"strings"
	"time"

	"knowflow-backend/domain/core/valueobjects"
	pkgerrors "knowflow-backend/pkg/errors"
)

// NodeType classifies the kind of knowledge a node represents
type NodeType string

const (
	NodeTypeTask     NodeType = "task"     // an action or step in the process
	NodeTypeRole     NodeType = "role"     // a person or team responsible for tasks
	NodeTypeTrigger  NodeType = "trigger"  // an event that initiates a task
	NodeTypeDecision NodeType = "decision" // a branching point with conditions
	NodeTypeArtifact NodeType = "artifact" // a document, form, or output
	NodeTypeSystem   NodeType = "system"   // an external system or tool
	NodeTypeRule     NodeType = "rule"     // a business rule or constraint
)

// ValidNodeType reports whether t is one of the known node types
func ValidNodeType(t NodeType) bool {
	switch t {
	case NodeTypeTask, NodeTypeRole, NodeTypeTrigger, NodeTypeDecision,
		NodeTypeArtifact, NodeTypeSystem, NodeTypeRule:
		return true
	}
	return false
}

// Node is a single knowledge entity in a process graph.
// This is a rich domain model with encapsulated merge semantics:
// nodes are never updated field-by-field from the outside, they only
// absorb extraction candidates through Merge.
type Node struct {
	id          valueobjects.NodeID
	nodeType    NodeType
	label       string
	description string
	confidence  float64
	attributes  map[string]interface{}
	provenance  []string
	createdAt   time.Time
	updatedAt   time.Time
}

// NewNode creates a new node from an extraction candidate with full validation.
// The node type is immutable after creation.
func NewNode(c CandidateNode) (*Node, error) {
	if !ValidNodeType(c.Type) {
		return nil, pkgerrors.NewValidationError("unknown node type: " + string(c.Type))
	}
	if strings.TrimSpace(c.Label) == "" {
		return nil, pkgerrors.NewValidationError("node label cannot be empty")
	}
	confidence := c.ConfidenceOrDefault()
	if confidence < 0 || confidence > 1 {
		return nil, pkgerrors.NewValidationError("confidence score must be within [0,1]")
	}

	now := time.Now()
	node := &Node{
		id:          valueobjects.NewNodeID(),
		nodeType:    c.Type,
		label:       strings.TrimSpace(c.Label),
		description: c.Description,
		confidence:  confidence,
		attributes:  make(map[string]interface{}, len(c.Attributes)),
		provenance:  []string{},
		createdAt:   now,
		updatedAt:   now,
	}
	for k, v := range c.Attributes {
		node.attributes[k] = v
	}
	if c.SourceResponseID != "" {
		node.provenance = append(node.provenance, c.SourceResponseID)
	}

	return node, nil
}

// ReconstructNode rebuilds a node from stored state with preserved timestamps.
// Used by snapshot copies; no candidate validation is re-applied.
func ReconstructNode(
	id valueobjects.NodeID,
	nodeType NodeType,
	label, description string,
	confidence float64,
	attributes map[string]interface{},
	provenance []string,
	createdAt, updatedAt time.Time,
) *Node {
	n := &Node{
		id:          id,
		nodeType:    nodeType,
		label:       label,
		description: description,
		confidence:  confidence,
		attributes:  make(map[string]interface{}, len(attributes)),
		provenance:  make([]string, len(provenance)),
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
	for k, v := range attributes {
		n.attributes[k] = v
	}
	copy(n.provenance, provenance)
	return n
}

// ID returns the node's unique identifier
func (n *Node) ID() valueobjects.NodeID {
	return n.id
}

// Type returns the node type. Immutable after creation.
func (n *Node) Type() NodeType {
	return n.nodeType
}

// Label returns the display name
func (n *Node) Label() string {
	return n.label
}

// NormalizedLabel returns the label lowered and whitespace-collapsed,
// which is the node's dedup key together with its type.
func (n *Node) NormalizedLabel() string {
	return NormalizeLabel(n.label)
}

// Description returns the free-text description
func (n *Node) Description() string {
	return n.description
}

// Confidence returns the extraction confidence score in [0,1]
func (n *Node) Confidence() float64 {
	return n.confidence
}

// Attributes returns a copy of the open key/value attribute map
func (n *Node) Attributes() map[string]interface{} {
	attrs := make(map[string]interface{}, len(n.attributes))
	for k, v := range n.attributes {
		attrs[k] = v
	}
	return attrs
}

// Attribute returns a single attribute value
func (n *Node) Attribute(key string) (interface{}, bool) {
	v, ok := n.attributes[key]
	return v, ok
}

// Provenance returns a copy of the ordered source-response identifiers
func (n *Node) Provenance() []string {
	p := make([]string, len(n.provenance))
	copy(p, n.provenance)
	return p
}

// CreatedAt returns when the node was first extracted
func (n *Node) CreatedAt() time.Time {
	return n.createdAt
}

// UpdatedAt returns when the node last absorbed a candidate
func (n *Node) UpdatedAt() time.Time {
	return n.updatedAt
}

// Merge absorbs an extraction candidate into this node:
// confidence becomes the max of both, new provenance entries are appended
// (provenance never shrinks), attributes are unioned with candidate keys
// winning on conflict, and a non-empty candidate description replaces an
// empty one. The node type never changes.
func (n *Node) Merge(c CandidateNode) error {
	if c.Type != n.nodeType {
		return pkgerrors.NewConflictError("cannot change node type from " +
			string(n.nodeType) + " to " + string(c.Type))
	}
	confidence := c.ConfidenceOrDefault()
	if confidence < 0 || confidence > 1 {
		return pkgerrors.NewValidationError("confidence score must be within [0,1]")
	}

	if confidence > n.confidence {
		n.confidence = confidence
	}
	for k, v := range c.Attributes {
		n.attributes[k] = v
	}
	if n.description == "" && c.Description != "" {
		n.description = c.Description
	}
	if c.SourceResponseID != "" && !n.hasProvenance(c.SourceResponseID) {
		n.provenance = append(n.provenance, c.SourceResponseID)
	}
	n.updatedAt = time.Now()

	return nil
}

// Clone returns a deep copy of the node for snapshot isolation
func (n *Node) Clone() *Node {
	return ReconstructNode(
		n.id, n.nodeType, n.label, n.description, n.confidence,
		n.attributes, n.provenance, n.createdAt, n.updatedAt,
	)
}

func (n *Node) hasProvenance(responseID string) bool {
	for _, p := range n.provenance {
		if p == responseID {
			return true
		}
	}
	return false
}

// NormalizeLabel lowercases a label and collapses internal whitespace so
// that "Review  Application" and "review application" dedup to one node.
func NormalizeLabel(label string) string {
	return strings.Join(strings.Fields(strings.ToLower(label)), " ")
}
