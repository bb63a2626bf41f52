package score

import (
	"strings"

	"github.com/counselkit/aidmatch/internal/model"
)

// explain builds the deterministic human-readable rationale for a match,
// drawing on the strongest strengths, near-misses, or issues depending on
// the category.
func explain(category model.MatchCategory, ev *evaluation) string {
	switch category {
	case model.MatchHigh:
		return "Excellent fit. " + joinFirst(ev.strengths, 2)
	case model.MatchMedium:
		return "Good fit. " + joinFirst(ev.strengths, 2)
	case model.MatchLow:
		return "Possible fit. " + joinFirst(ev.strengths, 1)
	case model.MatchNear:
		return "Close match with minor gaps. " + joinFirst(ev.nearMiss, 2)
	default:
		return "Not eligible. " + joinFirst(ev.issues, 2)
	}
}

func joinFirst(parts []string, n int) string {
	return strings.Join(firstN(parts, n), ". ")
}
