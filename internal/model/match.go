package model

// MatchCategory buckets a scored posting.
type MatchCategory string

// Match category constants.
const (
	MatchHigh        MatchCategory = "High Match"
	MatchMedium      MatchCategory = "Medium Match"
	MatchLow         MatchCategory = "Low Match"
	MatchNear        MatchCategory = "Near Match"
	MatchNotEligible MatchCategory = "Not Eligible"
)

// Tag is a semantic posting category.
type Tag string

// Posting tag constants.
const (
	TagMeritBased          Tag = "Merit-Based"
	TagNeedBased           Tag = "Need-Based"
	TagMajorSpecific       Tag = "Major-Specific"
	TagDemographicSpecific Tag = "Demographic-Specific"
	TagEssayRequired       Tag = "Essay Required"
)

// ValidTags lists every recognized tag in display order.
var ValidTags = []Tag{
	TagMeritBased,
	TagNeedBased,
	TagMajorSpecific,
	TagDemographicSpecific,
	TagEssayRequired,
}

// IsValidTag reports whether an upstream-supplied category is recognized.
func IsValidTag(s string) bool {
	for _, t := range ValidTags {
		if string(t) == s {
			return true
		}
	}
	return false
}

// MatchResult is the per-invocation outcome of scoring one posting against a
// profile. CanonicalDeadline is the ISO date ("" when unknown);
// DeadlineKnown exposes parse confidence to structured consumers.
type MatchResult struct {
	MatchCategory     MatchCategory
	CanonicalDeadline string
	Explanation       string
	Tags              []Tag
	Strengths         []string
	EligibilityIssues []string
	NearMissReasons   []string
	Posting           CandidatePosting
	MatchScore        float64
	Eligible          bool
	DeadlineKnown     bool
}
