package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/counselkit/aidmatch/internal/cli"
	"github.com/counselkit/aidmatch/internal/common"
	"github.com/counselkit/aidmatch/internal/config"
	"github.com/counselkit/aidmatch/internal/engine"
	"github.com/counselkit/aidmatch/internal/enrich"
	"github.com/counselkit/aidmatch/internal/model"
	"github.com/counselkit/aidmatch/internal/score"
)

func matchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match candidate postings against a student profile",
		Long: `Score a batch of candidate aid postings against a saved profile,
enrich them from their source pages, and persist the eligible matches.

Expired postings are dropped, duplicates are collapsed, and previously
saved matches whose deadlines have passed are cleaned up automatically.`,
		RunE: runMatch,
	}

	cmd.Flags().String("subject", "", "subject (student) ID to match for")
	cmd.Flags().String("input", "", "path to the candidate postings JSON file")
	cmd.Flags().Int("workers", enrich.DefaultWorkers, "concurrent enrichment fetches")
	cmd.Flags().Duration("fetch-timeout", enrich.DefaultTimeout, "per-page enrichment fetch timeout")
	cmd.Flags().Bool("no-enrich", false, "skip fetching source pages")
	_ = cmd.MarkFlagRequired("subject")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runMatch(cmd *cobra.Command, _ []string) error {
	subjectID, _ := cmd.Flags().GetString("subject")
	inputPath, _ := cmd.Flags().GetString("input")
	workers, _ := cmd.Flags().GetInt("workers")
	fetchTimeout, _ := cmd.Flags().GetDuration("fetch-timeout")
	noEnrich, _ := cmd.Flags().GetBool("no-enrich")

	postings, err := loadPostings(config.ExpandPath(inputPath))
	if err != nil {
		return err
	}

	store, err := openStorage()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx := cmd.Context()
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	var enricher engine.Enricher = enrich.NewHTTP(fetchTimeout, workers)
	if noEnrich {
		enricher = noopEnricher{}
	}

	bar := progressbar.NewOptions(len(postings),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Enriching postings...[reset]"),
	)

	eng, err := engine.New(store, enricher, score.NewScorer(), engine.Config{
		Progress: func() { _ = bar.Add(1) },
	})
	if err != nil {
		return err
	}

	out, err := eng.Match(ctx, subjectID, postings)
	if errors.Is(err, common.ErrProfileNotFound) {
		return common.NewUserError(
			fmt.Sprintf("no profile saved for %q; run 'aidmatch profile set %s' first", subjectID, subjectID), err)
	}
	if err != nil {
		return err
	}
	_ = bar.Finish()
	fmt.Fprintln(os.Stderr)

	fmt.Println(cli.RenderBox(cli.CapIcon+" Match results", out.Report))
	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Persisted %d match(es), replaced %d", out.Persisted, out.Replaced)))
	return nil
}

func loadPostings(path string) ([]model.CandidatePosting, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-supplied input file
	if err != nil {
		return nil, fmt.Errorf("failed to read postings file: %w", err)
	}

	var postings []model.CandidatePosting
	if err := json.Unmarshal(data, &postings); err != nil {
		return nil, fmt.Errorf("failed to parse postings file: %w", err)
	}
	return postings, nil
}

// noopEnricher skips source-page fetching entirely.
type noopEnricher struct{}

func (noopEnricher) EnrichAll(_ context.Context, postings []model.CandidatePosting, progress func()) []enrich.Result {
	results := make([]enrich.Result, len(postings))
	for i, posting := range postings {
		results[i] = enrich.Result{Posting: posting, Provenance: enrich.ProvenanceOriginal}
		if progress != nil {
			progress()
		}
	}
	return results
}
