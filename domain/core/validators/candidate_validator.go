// Package validators validates extraction candidates before they reach the
// graph aggregate, so a malformed batch is rejected at the boundary with
// field-level detail instead of failing candidate by candidate inside the
// merge.
package validators

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"knowflow-backend/domain/core/entities"
	"knowflow-backend/pkg/errors"
)

// CandidateValidator validates extraction candidate batches
type CandidateValidator struct {
	validate *validator.Validate
}

// NewCandidateValidator creates a validator with the domain rules registered
func NewCandidateValidator() *CandidateValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	return &CandidateValidator{validate: v}
}

// ValidateNodes checks structural validity of a node candidate batch.
// Type membership and label normalization are the aggregate's concern; this
// catches missing fields and out-of-range confidence before the merge runs.
func (cv *CandidateValidator) ValidateNodes(candidates []entities.CandidateNode) error {
	for i, c := range candidates {
		if err := cv.validate.Struct(c); err != nil {
			return fieldError("nodes", i, err)
		}
		if !entities.ValidNodeType(c.Type) {
			return errors.NewValidationError(
				fmt.Sprintf("nodes[%d]: unknown node type %q", i, c.Type))
		}
	}
	return nil
}

// ValidateEdges checks structural validity of an edge candidate batch.
// Endpoint resolution happens later against the live graph; here only the
// shape and the relation type vocabulary are enforced.
func (cv *CandidateValidator) ValidateEdges(candidates []entities.CandidateEdge) error {
	for i, c := range candidates {
		if err := cv.validate.Struct(c); err != nil {
			return fieldError("edges", i, err)
		}
		if !entities.ValidRelationType(c.Relation) {
			return errors.NewValidationError(
				fmt.Sprintf("edges[%d]: unknown relation type %q", i, c.Relation))
		}
	}
	return nil
}

func fieldError(batch string, index int, err error) error {
	if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return errors.NewValidationError(
			fmt.Sprintf("%s[%d]: field %s failed %s validation", batch, index, fe.Field(), fe.Tag()))
	}
	return errors.NewValidationError(fmt.Sprintf("%s[%d]: %v", batch, index, err))
}
