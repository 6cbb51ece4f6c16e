package bulk

import (
	"slices"

	"github.com/spboyer/estimator/internal/models"
)

// Selection is the set of requirement ids chosen for saving. It is a value:
// every change returns a new Selection.
type Selection struct {
	ids map[string]bool
}

// Toggle flips a requirement in or out of the selection. Failed or unknown
// results can't be selected and leave the selection unchanged.
func (s Selection) Toggle(results []models.EstimationResult, requirementID string) Selection {
	if s.Has(requirementID) {
		next := s.clone()
		delete(next.ids, requirementID)
		return next
	}
	i := slices.IndexFunc(results, func(r models.EstimationResult) bool { return r.RequirementID == requirementID })
	if i < 0 || !results[i].Success {
		return s
	}
	next := s.clone()
	next.ids[requirementID] = true
	return next
}

// SelectAllSuccessful selects every successful result.
func SelectAllSuccessful(results []models.EstimationResult) Selection {
	next := Selection{ids: map[string]bool{}}
	for _, r := range results {
		if r.Success {
			next.ids[r.RequirementID] = true
		}
	}
	return next
}

// Has reports whether a requirement is selected.
func (s Selection) Has(requirementID string) bool {
	return s.ids[requirementID]
}

// Len is the number of selected requirements.
func (s Selection) Len() int {
	return len(s.ids)
}

// Items returns the selected successful results in result order.
func (s Selection) Items(results []models.EstimationResult) []models.EstimationResult {
	var out []models.EstimationResult
	for _, r := range results {
		if r.Success && s.ids[r.RequirementID] {
			out = append(out, r)
		}
	}
	return out
}

func (s Selection) clone() Selection {
	next := Selection{ids: make(map[string]bool, len(s.ids)+1)}
	for id := range s.ids {
		next.ids[id] = true
	}
	return next
}
