package entities

// DefaultConfidence is assumed for candidates that carry no confidence
// score. Unscored knowledge is treated as unverified rather than wrong,
// so it sits in the middle of the scale.
const DefaultConfidence = 0.5

// CandidateNode is a node proposal produced by the extraction collaborator.
// Candidates carry no ids; the graph resolves them to existing nodes by
// (type, normalized label) or inserts them with freshly generated ids.
type CandidateNode struct {
	Type             NodeType               `json:"type" validate:"required"`
	Label            string                 `json:"label" validate:"required"`
	Description      string                 `json:"description,omitempty"`
	Confidence       *float64               `json:"confidence_score,omitempty" validate:"omitempty,gte=0,lte=1"`
	Attributes       map[string]interface{} `json:"attributes,omitempty"`
	SourceResponseID string                 `json:"source_response_id,omitempty"`
}

// ConfidenceOrDefault resolves the candidate's confidence score, falling
// back to DefaultConfidence when none was supplied.
func (c CandidateNode) ConfidenceOrDefault() float64 {
	if c.Confidence == nil {
		return DefaultConfidence
	}
	return *c.Confidence
}

// Score wraps a confidence value for building candidates
func Score(v float64) *float64 {
	return &v
}

// CandidateEdge is a relation proposal produced by the extraction
// collaborator. Endpoints are references, not ids: each resolves against the
// live graph first as a node id and then as a normalized label. A reference
// that resolves to nothing fails that candidate alone, not the batch.
type CandidateEdge struct {
	Source     string       `json:"source" validate:"required"`
	Target     string       `json:"target" validate:"required"`
	Relation   RelationType `json:"relation_type" validate:"required"`
	Label      string       `json:"label,omitempty"`
	Conditions []string     `json:"conditions,omitempty"`
}
