package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/counselkit/aidmatch/internal/model"
	"github.com/counselkit/aidmatch/internal/normalize"
)

// Persisted descriptions are capped; the source page has the full text.
const maxDescriptionRunes = 200

// plannedInsert pairs a new record with the persisted record IDs it
// supersedes under the same normalized name.
type plannedInsert struct {
	record     model.PersistedRecord
	supersedes []string
}

// reconciliationPlan is the computed delta between this run's matches and the
// subject's persisted records.
type reconciliationPlan struct {
	results    []model.MatchResult
	inserts    []plannedInsert
	duplicates int
}

// planReconciliation dedupes the batch by normalized name and pairs each kept
// match with the persisted record IDs it supersedes.
func (e *Engine) planReconciliation(ctx context.Context, subjectID string, results []model.MatchResult, now time.Time) (*reconciliationPlan, error) {
	existing, err := e.storage.ListRecordsBySubject(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list persisted records: %w", err)
	}

	existingByName := make(map[string][]string, len(existing))
	for _, record := range existing {
		existingByName[record.NormalizedName] = append(existingByName[record.NormalizedName], record.ID)
	}

	plan := &reconciliationPlan{}
	seen := make(map[string]bool, len(results))
	for _, result := range results {
		key := normalize.Name(result.Posting.Name)
		if seen[key] {
			// Results arrive best score first, so the first occurrence wins.
			plan.duplicates++
			slog.Debug("Collapsed duplicate posting in batch",
				"posting", result.Posting.Name,
				"key", key)
			continue
		}
		seen[key] = true

		plan.inserts = append(plan.inserts, plannedInsert{
			record:     buildRecord(subjectID, result, key, now),
			supersedes: existingByName[key],
		})
		plan.results = append(plan.results, result)
	}

	return plan, nil
}

// applyReconciliation executes the plan record by record. A failure skips
// only that record: a superseded row that cannot be deleted keeps its old
// record rather than gaining a duplicate.
func (e *Engine) applyReconciliation(ctx context.Context, plan *reconciliationPlan) (persisted, replaced int) {
	for i := range plan.inserts {
		insert := &plan.inserts[i]

		deleted := 0
		failed := false
		for _, id := range insert.supersedes {
			if err := e.storage.DeleteRecord(ctx, id); err != nil {
				slog.Error("Failed to delete superseded record, keeping it",
					"record", id,
					"posting", insert.record.Name,
					"error", err)
				failed = true
				break
			}
			deleted++
		}
		if failed {
			continue
		}

		if err := e.storage.InsertRecord(ctx, &insert.record); err != nil {
			slog.Error("Failed to persist record, skipping",
				"posting", insert.record.Name,
				"error", err)
			continue
		}
		persisted++
		replaced += deleted
	}
	return persisted, replaced
}

func buildRecord(subjectID string, result model.MatchResult, normalizedName string, now time.Time) model.PersistedRecord {
	posting := result.Posting

	record := model.PersistedRecord{
		ID:             uuid.NewString(),
		SubjectID:      subjectID,
		Name:           posting.Name,
		NormalizedName: normalizedName,
		Description:    truncateRunes(posting.Description, maxDescriptionRunes),
		SourceURL:      posting.SourceURL,
		AwardAmount:    posting.AwardAmount,
		Renewable:      posting.IsRenewable(),
		MatchedAt:      now.UTC(),
		EligibilitySummary: model.EligibilitySummary{
			GPARequirement:          posting.MinGPA,
			MatchCategory:           result.MatchCategory,
			WhyMatch:                result.Explanation,
			Highlights:              summaryHighlights(posting),
			MajorRestrictions:       posting.EligibleMajors,
			DemographicRequirements: posting.DemographicRequirements,
			NearMissReasons:         result.NearMissReasons,
			Tags:                    result.Tags,
			MatchScore:              result.MatchScore,
			EssayRequired:           posting.EssayRequired,
			NeedBased:               posting.NeedBased,
			Analysis: model.EligibilityAnalysis{
				Strengths:         result.Strengths,
				EligibilityIssues: result.EligibilityIssues,
				NearMissCount:     len(result.NearMissReasons),
			},
		},
	}

	if len(result.Tags) > 0 {
		record.Category = string(result.Tags[0])
	}
	if result.DeadlineKnown {
		deadline := result.CanonicalDeadline
		record.Deadline = &deadline
	}

	return record
}

// summaryHighlights lists the posting's eligibility facts for the persisted
// summary, independent of how the match scored.
func summaryHighlights(posting model.CandidatePosting) []string {
	var highlights []string
	if posting.MinGPA != nil {
		highlights = append(highlights, fmt.Sprintf("Minimum GPA: %g", *posting.MinGPA))
	}
	if len(posting.EligibleMajors) > 0 {
		highlights = append(highlights, "Majors: "+strings.Join(firstN(posting.EligibleMajors, 3), ", "))
	}
	if len(posting.DemographicRequirements) > 0 {
		highlights = append(highlights, "Demographics: "+strings.Join(firstN(posting.DemographicRequirements, 2), ", "))
	}
	if posting.EssayRequired {
		highlights = append(highlights, "Essay required")
	}
	if posting.NeedBased {
		highlights = append(highlights, "Financial need based")
	}
	return highlights
}

func firstN(values []string, n int) []string {
	if len(values) <= n {
		return values
	}
	return values[:n]
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}
