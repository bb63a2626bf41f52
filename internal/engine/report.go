package engine

import (
	"fmt"
	"strings"

	"github.com/counselkit/aidmatch/internal/model"
)

// Display order of match buckets in the report.
var reportBuckets = []model.MatchCategory{
	model.MatchHigh,
	model.MatchMedium,
	model.MatchLow,
	model.MatchNear,
}

// buildReport renders the run summary. Plain text here; the CLI applies
// styling on top.
func buildReport(subjectID string, out *MatchOutput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Eligibility matches for %s\n", subjectID)
	fmt.Fprintf(&b, "Found %d eligible posting(s)", len(out.Results))

	var skipped []string
	if out.SkippedExpired > 0 {
		skipped = append(skipped, fmt.Sprintf("%d expired", out.SkippedExpired))
	}
	if out.SkippedNoURL > 0 {
		skipped = append(skipped, fmt.Sprintf("%d missing source URL", out.SkippedNoURL))
	}
	if out.Ineligible > 0 {
		skipped = append(skipped, fmt.Sprintf("%d not eligible", out.Ineligible))
	}
	if out.Duplicates > 0 {
		skipped = append(skipped, fmt.Sprintf("%d duplicate", out.Duplicates))
	}
	if len(skipped) > 0 {
		fmt.Fprintf(&b, " (skipped: %s)", strings.Join(skipped, ", "))
	}
	b.WriteString("\n")

	grouped := make(map[model.MatchCategory][]model.MatchResult)
	for _, result := range out.Results {
		grouped[result.MatchCategory] = append(grouped[result.MatchCategory], result)
	}

	for _, bucket := range reportBuckets {
		results := grouped[bucket]
		if len(results) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s (%d)\n", strings.ToUpper(string(bucket)), len(results))
		for _, result := range results {
			writeResult(&b, result)
		}
	}

	writeTagBreakdown(&b, out.Results)
	writeInsights(&b, out)

	return b.String()
}

func writeResult(b *strings.Builder, result model.MatchResult) {
	deadline := "rolling/unknown deadline"
	if result.DeadlineKnown {
		deadline = "due " + result.CanonicalDeadline
	}
	fmt.Fprintf(b, "  %s — %s — %s (score %.1f)\n",
		result.Posting.Name, result.Posting.AwardAmount.String(), deadline, result.MatchScore)
	if result.Explanation != "" {
		fmt.Fprintf(b, "    %s\n", result.Explanation)
	}
	for _, reason := range result.NearMissReasons {
		fmt.Fprintf(b, "    near miss: %s\n", reason)
	}
}

func writeTagBreakdown(b *strings.Builder, results []model.MatchResult) {
	if len(results) == 0 {
		return
	}

	counts := make(map[model.Tag]int)
	for _, result := range results {
		for _, tag := range result.Tags {
			counts[tag]++
		}
	}

	b.WriteString("\nCategory breakdown\n")
	for _, tag := range model.ValidTags {
		if n := counts[tag]; n > 0 {
			fmt.Fprintf(b, "  %s: %d\n", tag, n)
		}
	}
}

// writeInsights appends actionable notes about the run.
func writeInsights(b *strings.Builder, out *MatchOutput) {
	var notes []string

	var nearMisses, essays int
	for _, result := range out.Results {
		if result.MatchCategory == model.MatchNear {
			nearMisses++
		}
		if result.Posting.EssayRequired {
			essays++
		}
	}

	if nearMisses > 0 {
		notes = append(notes, fmt.Sprintf("%d near match(es) could become full matches; review their gaps above.", nearMisses))
	}
	if essays > 0 {
		notes = append(notes, fmt.Sprintf("%d match(es) require an essay; plan writing time before the deadlines.", essays))
	}
	if out.SweptExpired > 0 {
		notes = append(notes, fmt.Sprintf("%d previously saved posting(s) expired and were removed.", out.SweptExpired))
	}
	if len(out.Results) == 0 {
		notes = append(notes, "No eligible postings in this batch; consider broadening the profile preferences.")
	}

	if len(notes) == 0 {
		return
	}
	b.WriteString("\nInsights\n")
	for _, note := range notes {
		fmt.Fprintf(b, "  - %s\n", note)
	}
}
