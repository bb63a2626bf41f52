package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/counselkit/aidmatch/internal/model"
)

func floatPtr(v float64) *float64 { return &v }

func strPtr(v string) *string { return &v }

func testProfile() *model.Profile {
	return &model.Profile{
		ID:                "student-1",
		GPA:               floatPtr(3.6),
		IntendedMajor:     strPtr("computer science"),
		Budget:            floatPtr(20000),
		SeeksFinancialAid: true,
		Preferences:       map[string]string{"state": "california"},
	}
}

func openPosting(minGPA *float64) model.CandidatePosting {
	return model.CandidatePosting{
		Name:      "Open Award",
		SourceURL: "https://example.com/open",
		MinGPA:    minGPA,
	}
}

func TestEvaluateGPAMet(t *testing.T) {
	result := NewScorer().Evaluate(testProfile(), openPosting(floatPtr(3.5)))

	assert.True(t, result.Eligible)
	assert.Equal(t, model.MatchHigh, result.MatchCategory)
	assert.Empty(t, result.NearMissReasons)
	assert.Empty(t, result.EligibilityIssues)
	assert.InDelta(t, 95.8, result.MatchScore, 0.1)
}

func TestEvaluateGPANearMiss(t *testing.T) {
	profile := testProfile()
	profile.GPA = floatPtr(3.35)

	result := NewScorer().Evaluate(profile, openPosting(floatPtr(3.5)))

	assert.True(t, result.Eligible)
	assert.Equal(t, model.MatchNear, result.MatchCategory)
	require.Len(t, result.NearMissReasons, 1)
	assert.Contains(t, result.NearMissReasons[0], "close to the requirement")
}

func TestEvaluateGPATooLow(t *testing.T) {
	profile := testProfile()
	profile.GPA = floatPtr(3.0)

	result := NewScorer().Evaluate(profile, openPosting(floatPtr(3.5)))

	assert.False(t, result.Eligible)
	assert.Equal(t, model.MatchNotEligible, result.MatchCategory)
	require.Len(t, result.EligibilityIssues, 1)
	assert.Contains(t, result.EligibilityIssues[0], "below the requirement")
}

func TestEvaluateGPARequiredButUnknown(t *testing.T) {
	profile := testProfile()
	profile.GPA = nil

	result := NewScorer().Evaluate(profile, openPosting(floatPtr(3.5)))

	assert.False(t, result.Eligible)
	assert.Equal(t, model.MatchNotEligible, result.MatchCategory)
}

func TestEvaluateMajor(t *testing.T) {
	tests := []struct {
		name         string
		majors       []string
		wantCategory model.MatchCategory
		wantEligible bool
	}{
		{
			name:         "direct match",
			majors:       []string{"computer science"},
			wantCategory: model.MatchHigh,
			wantEligible: true,
		},
		{
			name:         "related cluster",
			majors:       []string{"electrical engineering"},
			wantCategory: model.MatchNear,
			wantEligible: true,
		},
		{
			name:         "unrelated field",
			majors:       []string{"nursing"},
			wantCategory: model.MatchNotEligible,
			wantEligible: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posting := openPosting(nil)
			posting.EligibleMajors = tt.majors

			result := NewScorer().Evaluate(testProfile(), posting)
			assert.Equal(t, tt.wantCategory, result.MatchCategory)
			assert.Equal(t, tt.wantEligible, result.Eligible)
		})
	}
}

func TestEvaluateNeedBased(t *testing.T) {
	posting := openPosting(nil)
	posting.NeedBased = true
	posting.MaxFamilyIncome = floatPtr(80000)

	// Budget 20000 estimates to 60000 income, under the 80000 ceiling.
	result := NewScorer().Evaluate(testProfile(), posting)
	assert.True(t, result.Eligible)
	assert.Empty(t, result.NearMissReasons)

	// Budget 28000 estimates to 84000, inside the ceiling buffer.
	profile := testProfile()
	profile.Budget = floatPtr(28000)
	result = NewScorer().Evaluate(profile, posting)
	assert.Equal(t, model.MatchNear, result.MatchCategory)
	require.NotEmpty(t, result.NearMissReasons)
	assert.Contains(t, result.NearMissReasons[0], "income ceiling")
}

func TestEvaluateNeedBasedNotSeekingAid(t *testing.T) {
	posting := openPosting(nil)
	posting.NeedBased = true

	// High budget and not seeking aid is a hard issue.
	profile := testProfile()
	profile.SeeksFinancialAid = false
	profile.Budget = floatPtr(70000)
	result := NewScorer().Evaluate(profile, posting)
	assert.False(t, result.Eligible)

	// Modest budget is only a near-miss.
	profile.Budget = floatPtr(30000)
	result = NewScorer().Evaluate(profile, posting)
	assert.True(t, result.Eligible)
	assert.Equal(t, model.MatchNear, result.MatchCategory)
}

func TestEvaluateDemographics(t *testing.T) {
	posting := openPosting(nil)
	posting.DemographicRequirements = []string{"First generation college students"}

	profile := testProfile()
	profile.Preferences["background"] = "first generation college student"

	result := NewScorer().Evaluate(profile, posting)
	assert.True(t, result.Eligible)
	assert.Empty(t, result.NearMissReasons)

	// No demographic data at all is a soft near-miss, never an issue.
	result = NewScorer().Evaluate(testProfile(), posting)
	assert.True(t, result.Eligible)
	assert.Equal(t, model.MatchNear, result.MatchCategory)
}

func TestEvaluateLocation(t *testing.T) {
	posting := openPosting(nil)
	posting.LocationRestrictions = []string{"California"}

	result := NewScorer().Evaluate(testProfile(), posting)
	assert.True(t, result.Eligible)
	assert.Empty(t, result.NearMissReasons)

	posting.LocationRestrictions = []string{"Texas"}
	result = NewScorer().Evaluate(testProfile(), posting)
	assert.Equal(t, model.MatchNear, result.MatchCategory)
}

func TestEvaluateRegionOrdering(t *testing.T) {
	// "midwest" must not be swallowed by the "west" region entry.
	posting := openPosting(nil)
	posting.LocationRestrictions = []string{"Midwest residents"}

	profile := testProfile()
	profile.Preferences["region"] = "great lakes"

	result := NewScorer().Evaluate(profile, posting)
	assert.Empty(t, result.NearMissReasons)
}

func TestEvaluateScoreBounds(t *testing.T) {
	postings := []model.CandidatePosting{
		openPosting(nil),
		openPosting(floatPtr(3.5)),
		{Name: "Strict", MinGPA: floatPtr(4.0), NeedBased: true, EligibleMajors: model.StringList{"nursing"}},
	}

	for _, posting := range postings {
		result := NewScorer().Evaluate(testProfile(), posting)
		assert.GreaterOrEqual(t, result.MatchScore, 0.0)
		assert.LessOrEqual(t, result.MatchScore, 100.0)
		// Eligible is false exactly when the category is Not Eligible.
		assert.Equal(t, result.MatchCategory != model.MatchNotEligible, result.Eligible)
	}
}

func TestEstimateFamilyIncome(t *testing.T) {
	tests := []struct {
		budget float64
		want   float64
	}{
		{10000, 25000},
		{15000, 37500},
		{20000, 60000},
		{40000, 140000},
		{60000, 240000},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, estimateFamilyIncome(tt.budget), 0.001)
	}
}

func TestExplain(t *testing.T) {
	result := NewScorer().Evaluate(testProfile(), openPosting(floatPtr(3.5)))
	assert.Contains(t, result.Explanation, "Excellent fit.")

	profile := testProfile()
	profile.GPA = floatPtr(3.35)
	result = NewScorer().Evaluate(profile, openPosting(floatPtr(3.5)))
	assert.Contains(t, result.Explanation, "Close match")
}
