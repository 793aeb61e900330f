package risk

import (
	"fmt"
	"sort"
	"strings"

	"knowflow-backend/domain/core/entities"
)

// singleOwnerThreshold is the number of solely-owned tasks at which a role
// becomes a single point of failure.
const singleOwnerThreshold = 3

// SinglePointOfFailureRule detects roles that are the sole owner of three
// or more tasks. If that person is unavailable, none of those tasks can be
// performed.
type SinglePointOfFailureRule struct{}

// Category implements Rule
func (SinglePointOfFailureRule) Category() Category {
	return CategorySinglePointOfFailure
}

// Evaluate implements Rule
func (SinglePointOfFailureRule) Evaluate(idx *GraphIndex) []Finding {
	// owners[task] = set of roles reached via owned_by
	owners := make(map[string]map[string]bool)
	for _, e := range idx.Edges() {
		if e.Relation() != entities.RelationOwnedBy {
			continue
		}
		task, okTask := idx.Node(e.SourceID().String())
		role, okRole := idx.Node(e.TargetID().String())
		if !okTask || !okRole {
			continue
		}
		if task.Type() != entities.NodeTypeTask || role.Type() != entities.NodeTypeRole {
			continue
		}
		taskID := task.ID().String()
		if owners[taskID] == nil {
			owners[taskID] = make(map[string]bool)
		}
		owners[taskID][role.ID().String()] = true
	}

	// soleTasks[role] = tasks owned by that role and nobody else
	soleTasks := make(map[string][]string)
	for taskID, roleSet := range owners {
		if len(roleSet) != 1 {
			continue
		}
		for roleID := range roleSet {
			soleTasks[roleID] = append(soleTasks[roleID], taskID)
		}
	}

	roleIDs := make([]string, 0, len(soleTasks))
	for roleID := range soleTasks {
		roleIDs = append(roleIDs, roleID)
	}
	sort.Strings(roleIDs)

	var findings []Finding
	for _, roleID := range roleIDs {
		tasks := soleTasks[roleID]
		if len(tasks) < singleOwnerThreshold {
			continue
		}
		sort.Strings(tasks)

		taskLabels := make([]string, 0, len(tasks))
		for _, t := range tasks {
			taskLabels = append(taskLabels, idx.Label(t))
		}
		roleLabel := idx.Label(roleID)

		findings = append(findings, Finding{
			Category: CategorySinglePointOfFailure,
			Severity: SeverityHigh,
			Title:    fmt.Sprintf("Single Point of Failure: %s", roleLabel),
			Description: fmt.Sprintf("'%s' is solely responsible for %d tasks: %s",
				roleLabel, len(tasks), strings.Join(taskLabels, ", ")),
			Explanation: fmt.Sprintf("If %s is unavailable (vacation, illness, "+
				"departure), these %d tasks cannot be performed. This creates "+
				"operational risk and potential bottlenecks.", roleLabel, len(tasks)),
			Recommendation: fmt.Sprintf("Cross-train at least one other person on "+
				"%s's responsibilities and document the procedures thoroughly.", roleLabel),
			AffectedNodeIDs: append([]string{roleID}, tasks...),
			EffortEstimate:  EffortMedium,
		})
	}
	return findings
}

// OrphanedTaskRule detects tasks with no incoming edges and no owning role:
// nothing starts them and nobody is responsible for them.
type OrphanedTaskRule struct{}

// Category implements Rule
func (OrphanedTaskRule) Category() Category {
	return CategoryOrphanedTask
}

// Evaluate implements Rule
func (OrphanedTaskRule) Evaluate(idx *GraphIndex) []Finding {
	var findings []Finding
	for _, taskID := range idx.NodesOfType(entities.NodeTypeTask) {
		if idx.InDegree(taskID) > 0 {
			continue
		}
		if len(idx.EdgesFrom(taskID, entities.RelationOwnedBy)) > 0 {
			continue
		}

		// A task that at least feeds something downstream is less severe
		// than one that is fully disconnected.
		severity := SeverityMedium
		if idx.Degree(taskID) == 0 {
			severity = SeverityHigh
		}

		label := idx.Label(taskID)
		findings = append(findings, Finding{
			Category: CategoryOrphanedTask,
			Severity: severity,
			Title:    fmt.Sprintf("Orphaned Task: %s", label),
			Description: fmt.Sprintf("Task '%s' has no assigned owner and no "+
				"trigger or upstream dependency.", label),
			Explanation: "Tasks without clear ownership may never be completed, " +
				"and tasks without triggers may never be initiated. Both lead to " +
				"process delays or complete failure.",
			Recommendation: fmt.Sprintf("Assign an owner to '%s' and clarify what "+
				"event or preceding task triggers it.", label),
			AffectedNodeIDs: []string{taskID},
			EffortEstimate:  EffortLow,
		})
	}
	return findings
}
