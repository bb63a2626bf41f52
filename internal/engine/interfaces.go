// Package engine wires the matching pipeline together: sweep, enrich, score,
// categorize, reconcile, report.
package engine

import (
	"context"

	"github.com/counselkit/aidmatch/internal/enrich"
	"github.com/counselkit/aidmatch/internal/model"
)

// Enricher augments candidate postings from their source pages.
type Enricher interface {
	EnrichAll(ctx context.Context, postings []model.CandidatePosting, progress func()) []enrich.Result
}

// Matcher evaluates a single posting against a profile.
type Matcher interface {
	Evaluate(profile *model.Profile, posting model.CandidatePosting) model.MatchResult
}
