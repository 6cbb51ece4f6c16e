// Package bulk holds the bookkeeping for the bulk wizard: question scopes,
// result selection and the sequential best-effort save.
package bulk

import (
	"fmt"

	"github.com/spboyer/estimator/internal/models"
)

// CheckScopes reports every scope annotation that is inconsistent with the
// requirement batch. Global questions may list no requirements at all.
func CheckScopes(questions []models.Question, requirements []models.RequirementStub) []string {
	known := make(map[string]bool, len(requirements))
	for _, r := range requirements {
		known[r.ID] = true
	}

	var errs []string
	for _, q := range questions {
		switch q.Scope {
		case "", models.ScopeGlobal:
		case models.ScopeMultiRequirement:
			if len(q.AffectedRequirementIDs) == 0 {
				errs = append(errs, fmt.Sprintf("question %q: multi-requirement scope needs at least one requirement", q.ID))
			}
		case models.ScopeSpecific:
			if len(q.AffectedRequirementIDs) != 1 {
				errs = append(errs, fmt.Sprintf("question %q: specific scope needs exactly one requirement, got %d", q.ID, len(q.AffectedRequirementIDs)))
			}
		default:
			errs = append(errs, fmt.Sprintf("question %q: unknown scope %q", q.ID, q.Scope))
			continue
		}
		for _, id := range q.AffectedRequirementIDs {
			if !known[id] {
				errs = append(errs, fmt.Sprintf("question %q: unknown requirement %q", q.ID, id))
			}
		}
	}
	return errs
}

// AppliesTo reports whether the answer to q is relevant for a requirement.
func AppliesTo(q models.Question, requirementID string) bool {
	if q.Scope == "" || q.Scope == models.ScopeGlobal {
		return true
	}
	for _, id := range q.AffectedRequirementIDs {
		if id == requirementID {
			return true
		}
	}
	return false
}

// CountByScope counts the questions per scope. Unscoped questions count as global.
func CountByScope(questions []models.Question) map[models.Scope]int {
	counts := map[models.Scope]int{
		models.ScopeGlobal:           0,
		models.ScopeMultiRequirement: 0,
		models.ScopeSpecific:         0,
	}
	for _, q := range questions {
		scope := q.Scope
		if scope == "" {
			scope = models.ScopeGlobal
		}
		counts[scope]++
	}
	return counts
}
