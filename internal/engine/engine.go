package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/counselkit/aidmatch/internal/model"
	"github.com/counselkit/aidmatch/internal/normalize"
	"github.com/counselkit/aidmatch/internal/score"
	"github.com/counselkit/aidmatch/internal/service"
)

// Config tunes a matching run.
type Config struct {
	// Now supplies the reference time for deadline decisions. Defaults to
	// time.Now.
	Now func() time.Time
	// Progress, when non-nil, is called once per enriched posting.
	Progress func()
}

// Engine orchestrates one matching run end to end.
type Engine struct {
	storage  service.Storage
	enricher Enricher
	matcher  Matcher
	now      func() time.Time
	progress func()
}

// New creates a matching engine.
func New(store service.Storage, enricher Enricher, matcher Matcher, cfg Config) (*Engine, error) {
	if store == nil {
		return nil, errors.New("storage is required")
	}
	if enricher == nil {
		return nil, errors.New("enricher is required")
	}
	if matcher == nil {
		return nil, errors.New("matcher is required")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		storage:  store,
		enricher: enricher,
		matcher:  matcher,
		now:      now,
		progress: cfg.Progress,
	}, nil
}

// MatchOutput is the result of one matching run.
type MatchOutput struct {
	// Results holds the eligible, deduplicated matches, best score first.
	Results []model.MatchResult
	// Report is the human-readable summary of the run.
	Report string

	SweptExpired   int // previously persisted records removed for passed deadlines
	SkippedNoURL   int // input postings dropped for missing source URL
	SkippedExpired int // input postings dropped for passed deadlines
	Ineligible     int // postings scored but not eligible
	Duplicates     int // intra-batch duplicates collapsed by normalized name
	Replaced       int // persisted records replaced by fresher duplicates
	Persisted      int // records written this run
}

// Match runs the full pipeline for one subject over a batch of candidate
// postings. The run is idempotent: feeding the same batch twice leaves one
// record per distinct posting. An empty batch is a valid run; the expired
// sweep still happens and the report shows zero matches.
func (e *Engine) Match(ctx context.Context, subjectID string, postings []model.CandidatePosting) (*MatchOutput, error) {
	if subjectID == "" {
		return nil, errors.New("subject ID is required")
	}

	out := &MatchOutput{}
	today := e.now()

	swept, err := e.storage.DeleteExpiredRecords(ctx, subjectID, today)
	if err != nil {
		return nil, fmt.Errorf("failed to sweep expired records: %w", err)
	}
	out.SweptExpired = swept
	if swept > 0 {
		slog.Info("Swept expired records", "subject", subjectID, "count", swept)
	}

	profile, err := e.storage.GetProfile(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	candidates := make([]model.CandidatePosting, 0, len(postings))
	for _, posting := range postings {
		if len(posting.Coerced) > 0 {
			slog.Warn("Coerced malformed posting fields",
				"posting", posting.Name,
				"fields", posting.Coerced)
		}
		if posting.SourceURL == "" {
			out.SkippedNoURL++
			slog.Debug("Skipping posting without source URL", "posting", posting.Name)
			continue
		}
		candidates = append(candidates, posting)
	}

	enriched := e.enricher.EnrichAll(ctx, candidates, e.progress)

	var results []model.MatchResult
	for _, enr := range enriched {
		posting := enr.Posting
		if enr.Note != "" {
			slog.Debug("Enrichment kept original fields",
				"posting", posting.Name,
				"reason", enr.Note)
		}

		iso, known := normalize.Deadline(posting.Deadline)
		if known && normalize.DeadlineClosed(iso, today) {
			out.SkippedExpired++
			slog.Debug("Skipping closed posting", "posting", posting.Name, "deadline", iso)
			continue
		}

		result := e.matcher.Evaluate(profile, posting)
		result.CanonicalDeadline = iso
		result.DeadlineKnown = known
		if !result.Eligible {
			out.Ineligible++
			continue
		}

		result.Tags = score.Categorize(posting)
		results = append(results, result)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].MatchScore != results[j].MatchScore {
			return results[i].MatchScore > results[j].MatchScore
		}
		return results[i].Posting.Name < results[j].Posting.Name
	})

	plan, err := e.planReconciliation(ctx, subjectID, results, today)
	if err != nil {
		return nil, err
	}
	persisted, replaced := e.applyReconciliation(ctx, plan)

	out.Results = plan.results
	out.Duplicates = plan.duplicates
	out.Replaced = replaced
	out.Persisted = persisted
	out.Report = buildReport(subjectID, out)

	slog.Info("Matching run complete",
		"subject", subjectID,
		"matches", len(out.Results),
		"persisted", out.Persisted,
		"replaced", out.Replaced,
		"skipped_expired", out.SkippedExpired,
		"skipped_no_url", out.SkippedNoURL,
		"ineligible", out.Ineligible)

	return out, nil
}
