package risk

import (
	"fmt"

	"knowflow-backend/domain/core/entities"
)

// bottleneckThreshold is the in-degree at which a node becomes a queueing
// point for the whole process.
const bottleneckThreshold = 4

// BottleneckRule detects nodes that many other steps converge on. Any delay
// upstream cascades into such a node, and it becomes a queue that slows the
// entire process.
type BottleneckRule struct{}

// Category implements Rule
func (BottleneckRule) Category() Category {
	return CategoryBottleneck
}

// Evaluate implements Rule
func (BottleneckRule) Evaluate(idx *GraphIndex) []Finding {
	var findings []Finding
	for _, id := range idx.NodeIDs() {
		count := idx.InDegree(id)
		if count < bottleneckThreshold {
			continue
		}

		label := idx.Label(id)
		findings = append(findings, Finding{
			Category: CategoryBottleneck,
			Severity: SeverityMedium,
			Title:    fmt.Sprintf("Bottleneck: %s", label),
			Description: fmt.Sprintf("'%s' has %d incoming dependencies.",
				label, count),
			Explanation: "This step must wait for many other things to complete " +
				"before it can proceed. Any delay in upstream tasks cascades " +
				"here, and the node becomes a queue that slows the entire process.",
			Recommendation: "Consider parallelizing this step or splitting it " +
				"into sub-tasks that can complete independently.",
			AffectedNodeIDs: []string{id},
			EffortEstimate:  EffortHigh,
		})
	}
	return findings
}

// UndocumentedDecisionRule detects decision points whose outgoing branches
// carry no documented conditions. Without explicit criteria, different
// people make different choices for the same inputs.
type UndocumentedDecisionRule struct{}

// Category implements Rule
func (UndocumentedDecisionRule) Category() Category {
	return CategoryUndocumentedDecision
}

// Evaluate implements Rule
func (UndocumentedDecisionRule) Evaluate(idx *GraphIndex) []Finding {
	var findings []Finding
	for _, id := range idx.NodesOfType(entities.NodeTypeDecision) {
		outgoing := idx.EdgesFrom(id)
		if len(outgoing) == 0 {
			// Nothing branches off yet; there is no branching to document.
			continue
		}

		documented := false
		for _, e := range outgoing {
			if len(e.Conditions()) > 0 {
				documented = true
				break
			}
		}
		if documented {
			continue
		}
		if node, ok := idx.Node(id); ok {
			// Conditions recorded on the node itself also count.
			if conds, found := node.Attribute("conditions"); found {
				if list, isList := conds.([]interface{}); isList && len(list) > 0 {
					continue
				}
				if list, isList := conds.([]string); isList && len(list) > 0 {
					continue
				}
			}
		}

		label := idx.Label(id)
		findings = append(findings, Finding{
			Category: CategoryUndocumentedDecision,
			Severity: SeverityMedium,
			Title:    fmt.Sprintf("Undocumented Decision: %s", label),
			Description: fmt.Sprintf("Decision point '%s' lacks explicit "+
				"conditions for its branches.", label),
			Explanation: "Without documented criteria, decision-making becomes " +
				"subjective and inconsistent. Different people may make different " +
				"choices given the same inputs, leading to unpredictable outcomes.",
			Recommendation: "Define explicit, measurable conditions for each " +
				"possible outcome (e.g. 'if amount > $10,000: require manager " +
				"approval').",
			AffectedNodeIDs: []string{id},
			EffortEstimate:  EffortLow,
		})
	}
	return findings
}
