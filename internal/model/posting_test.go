package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidatePostingDecode(t *testing.T) {
	raw := `{
		"name": "Global Tech Innovators Scholarship",
		"description": "For future engineers. Renewable annually.",
		"deadline": "December 1, 2026",
		"source_url": "https://example.com/gti",
		"award_amount": "$5,000",
		"min_gpa": 3.5,
		"eligible_majors": ["computer science", "engineering"],
		"need_based": true,
		"essay_required": true
	}`

	var posting CandidatePosting
	require.NoError(t, json.Unmarshal([]byte(raw), &posting))

	assert.Equal(t, "Global Tech Innovators Scholarship", posting.Name)
	assert.Equal(t, []string{"computer science", "engineering"}, []string(posting.EligibleMajors))
	require.NotNil(t, posting.MinGPA)
	assert.InDelta(t, 3.5, *posting.MinGPA, 0.001)
	assert.True(t, posting.NeedBased)
	assert.True(t, posting.EssayRequired)
	assert.InDelta(t, 5000, posting.AwardAmount.Value, 0.001)
	assert.Empty(t, posting.Coerced)
	assert.True(t, posting.IsRenewable())
}

func TestCandidatePostingCoercesMalformedLists(t *testing.T) {
	// Upstream feeds sometimes emit a JSONB default of 0 or a bare string
	// where a list belongs.
	raw := `{
		"name": "Odd Feed Award",
		"eligible_majors": 0,
		"field_keywords": "engineering",
		"location_restrictions": ["California"]
	}`

	var posting CandidatePosting
	require.NoError(t, json.Unmarshal([]byte(raw), &posting))

	assert.Empty(t, posting.EligibleMajors)
	assert.Empty(t, posting.FieldKeywords)
	assert.Equal(t, []string{"California"}, []string(posting.LocationRestrictions))
	assert.ElementsMatch(t, []string{"eligible_majors", "field_keywords"}, posting.Coerced)
}

func TestAmountDecode(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantValue float64
		wantText  string
		wantKnown bool
	}{
		{name: "number", raw: `2500`, wantValue: 2500, wantKnown: true},
		{name: "currency string", raw: `"$5,000"`, wantValue: 5000, wantKnown: true},
		{name: "descriptive", raw: `"Full-Tuition"`, wantText: "Full-Tuition"},
		{name: "null", raw: `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var amount Amount
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &amount))
			assert.Equal(t, tt.wantKnown, amount.Known)
			assert.InDelta(t, tt.wantValue, amount.Value, 0.001)
			assert.Equal(t, tt.wantText, amount.Text)
		})
	}
}

func TestAmountString(t *testing.T) {
	assert.Equal(t, "$5,000", NewAmount(5000).String())
	assert.Equal(t, "$1,250,000", NewAmount(1250000).String())
	assert.Equal(t, "$500", NewAmount(500).String())
	assert.Equal(t, "Varies", Amount{Text: "Varies"}.String())
	assert.Equal(t, "TBD", Amount{}.String())
}

func TestIsRenewable(t *testing.T) {
	assert.True(t, (&CandidatePosting{Renewable: true}).IsRenewable())
	assert.True(t, (&CandidatePosting{Description: "This award is RENEWABLE for four years"}).IsRenewable())
	assert.False(t, (&CandidatePosting{Description: "One-time award"}).IsRenewable())
}
