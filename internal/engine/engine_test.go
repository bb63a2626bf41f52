package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/counselkit/aidmatch/internal/common"
	"github.com/counselkit/aidmatch/internal/engine"
	"github.com/counselkit/aidmatch/internal/enrich"
	"github.com/counselkit/aidmatch/internal/model"
	"github.com/counselkit/aidmatch/internal/score"
	"github.com/counselkit/aidmatch/internal/storage"
	"github.com/counselkit/aidmatch/internal/testutil"
)

// passthroughEnricher returns every posting unchanged.
type passthroughEnricher struct{}

func (passthroughEnricher) EnrichAll(_ context.Context, postings []model.CandidatePosting, progress func()) []enrich.Result {
	results := make([]enrich.Result, len(postings))
	for i, posting := range postings {
		results[i] = enrich.Result{Posting: posting, Provenance: enrich.ProvenanceOriginal}
		if progress != nil {
			progress()
		}
	}
	return results
}

var testToday = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T) (*engine.Engine, *storage.SQLiteStorage) {
	t.Helper()

	store := testutil.SetupTestDB(t)
	eng, err := engine.New(store, passthroughEnricher{}, score.NewScorer(), engine.Config{
		Now: func() time.Time { return testToday },
	})
	require.NoError(t, err)
	return eng, store
}

func saveTestProfile(t *testing.T, store *storage.SQLiteStorage, subjectID string) {
	t.Helper()

	gpa := 3.6
	major := "computer science"
	budget := 20000.0
	require.NoError(t, store.SaveProfile(context.Background(), &model.Profile{
		ID:                subjectID,
		GPA:               &gpa,
		IntendedMajor:     &major,
		Budget:            &budget,
		SeeksFinancialAid: true,
		Preferences:       map[string]string{"state": "california"},
	}))
}

func openPosting(name, deadline string) model.CandidatePosting {
	return model.CandidatePosting{
		Name:        name,
		Description: "An award for motivated students",
		Deadline:    deadline,
		SourceURL:   "https://example.com/" + name,
		AwardAmount: model.NewAmount(5000),
	}
}

func TestMatchPipeline(t *testing.T) {
	eng, store := newTestEngine(t)
	saveTestProfile(t, store, "student-1")

	tooStrict := 3.95
	postings := []model.CandidatePosting{
		openPosting("Global Tech Innovators Scholarship", "2026-12-01"),
		openPosting("Expired Award", "2026-01-15"),
		openPosting("Rolling Deadline Award", "TBD"),
		{
			Name:        "Elite Honors Grant",
			Deadline:    "2026-11-01",
			SourceURL:   "https://example.com/elite",
			MinGPA:      &tooStrict,
			AwardAmount: model.NewAmount(10000),
		},
		{Name: "No Source Award", Deadline: "2026-10-01"},
	}

	out, err := eng.Match(context.Background(), "student-1", postings)
	require.NoError(t, err)

	assert.Equal(t, 1, out.SkippedExpired)
	assert.Equal(t, 1, out.SkippedNoURL)
	assert.Equal(t, 1, out.Ineligible)
	require.Len(t, out.Results, 2)

	// Best score first.
	assert.GreaterOrEqual(t, out.Results[0].MatchScore, out.Results[1].MatchScore)
	for _, result := range out.Results {
		assert.True(t, result.Eligible)
		assert.NotEmpty(t, result.Tags)
	}

	records, err := store.ListRecordsBySubject(context.Background(), "student-1")
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Contains(t, out.Report, "Global Tech Innovators Scholarship")
}

func TestMatchUnknownDeadlineRetained(t *testing.T) {
	eng, store := newTestEngine(t)
	saveTestProfile(t, store, "student-1")

	out, err := eng.Match(context.Background(), "student-1", []model.CandidatePosting{
		openPosting("Rolling Deadline Award", "Unknown Deadline"),
	})
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	assert.False(t, out.Results[0].DeadlineKnown)
	assert.Empty(t, out.Results[0].CanonicalDeadline)

	records, err := store.ListRecordsBySubject(context.Background(), "student-1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Nil(t, records[0].Deadline)
}

func TestMatchReconcileIdempotent(t *testing.T) {
	eng, store := newTestEngine(t)
	saveTestProfile(t, store, "student-1")

	postings := []model.CandidatePosting{
		openPosting("Global Tech Innovators Scholarship", "2026-12-01"),
		openPosting("Community Leaders Award", "2026-11-15"),
	}

	first, err := eng.Match(context.Background(), "student-1", postings)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Persisted)
	assert.Equal(t, 0, first.Replaced)

	second, err := eng.Match(context.Background(), "student-1", postings)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Persisted)
	assert.Equal(t, 2, second.Replaced)

	records, err := store.ListRecordsBySubject(context.Background(), "student-1")
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestMatchCollapsesBatchDuplicates(t *testing.T) {
	eng, store := newTestEngine(t)
	saveTestProfile(t, store, "student-1")

	out, err := eng.Match(context.Background(), "student-1", []model.CandidatePosting{
		openPosting("Global Tech Innovators Scholarship", "2026-12-01"),
		openPosting("GLOBAL TECH INNOVATORS", "2026-12-01"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Duplicates)
	assert.Len(t, out.Results, 1)

	records, err := store.ListRecordsBySubject(context.Background(), "student-1")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestMatchExpiredSweep(t *testing.T) {
	eng, store := newTestEngine(t)
	saveTestProfile(t, store, "student-1")
	ctx := context.Background()

	expired := "2026-02-01"
	require.NoError(t, store.InsertRecord(ctx, &model.PersistedRecord{
		ID:             "stale-1",
		SubjectID:      "student-1",
		Name:           "Stale Award",
		NormalizedName: "staleaward",
		Deadline:       &expired,
	}))

	out, err := eng.Match(ctx, "student-1", []model.CandidatePosting{
		openPosting("Fresh Award", "2026-12-01"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, out.SweptExpired)

	records, err := store.ListRecordsBySubject(ctx, "student-1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Fresh Award", records[0].Name)
}

func TestMatchSameDayDeadlineDropped(t *testing.T) {
	eng, store := newTestEngine(t)
	saveTestProfile(t, store, "student-1")

	out, err := eng.Match(context.Background(), "student-1", []model.CandidatePosting{
		openPosting("Last Minute Award", "2026-06-01"),
		openPosting("Tomorrow Award", "2026-06-02"),
	})
	require.NoError(t, err)

	// A deadline today leaves no time to apply; only strictly-future
	// deadlines stay active.
	assert.Equal(t, 1, out.SkippedExpired)
	require.Len(t, out.Results, 1)
	assert.Equal(t, "Tomorrow Award", out.Results[0].Posting.Name)
}

func TestMatchEmptyBatch(t *testing.T) {
	eng, store := newTestEngine(t)
	saveTestProfile(t, store, "student-1")
	ctx := context.Background()

	expired := "2026-02-01"
	require.NoError(t, store.InsertRecord(ctx, &model.PersistedRecord{
		ID:             "stale-1",
		SubjectID:      "student-1",
		Name:           "Stale Award",
		NormalizedName: "staleaward",
		Deadline:       &expired,
	}))

	// An empty batch is a valid run: the sweep still happens and the
	// report shows zero matches.
	out, err := eng.Match(ctx, "student-1", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, out.SweptExpired)
	assert.Empty(t, out.Results)
	assert.Equal(t, 0, out.Persisted)
	assert.Contains(t, out.Report, "Found 0 eligible posting(s)")
}

func TestMatchPersistsEligibilityHighlights(t *testing.T) {
	eng, store := newTestEngine(t)
	saveTestProfile(t, store, "student-1")

	minGPA := 3.5
	posting := model.CandidatePosting{
		Name:                    "Global Tech Innovators Scholarship",
		Description:             "For future engineers",
		Deadline:                "2026-12-01",
		SourceURL:               "https://example.com/gti",
		MinGPA:                  &minGPA,
		EligibleMajors:          model.StringList{"computer science", "engineering"},
		DemographicRequirements: model.StringList{"First generation college students"},
		EssayRequired:           true,
	}

	_, err := eng.Match(context.Background(), "student-1", []model.CandidatePosting{posting})
	require.NoError(t, err)

	records, err := store.ListRecordsBySubject(context.Background(), "student-1")
	require.NoError(t, err)
	require.Len(t, records, 1)

	// Highlights restate the posting's eligibility facts, not the scorer's
	// strengths.
	assert.Equal(t, []string{
		"Minimum GPA: 3.5",
		"Majors: computer science, engineering",
		"Demographics: First generation college students",
		"Essay required",
	}, records[0].EligibilitySummary.Highlights)
	require.NotNil(t, records[0].EligibilitySummary.GPARequirement)
	assert.InDelta(t, 3.5, *records[0].EligibilitySummary.GPARequirement, 0.001)
}

func TestMatchErrors(t *testing.T) {
	eng, store := newTestEngine(t)

	_, err := eng.Match(context.Background(), "student-1", []model.CandidatePosting{
		openPosting("Some Award", "2026-12-01"),
	})
	assert.ErrorIs(t, err, common.ErrProfileNotFound)

	saveTestProfile(t, store, "student-1")
	_, err = eng.Match(context.Background(), "", []model.CandidatePosting{
		openPosting("Some Award", "2026-12-01"),
	})
	assert.Error(t, err)
}
