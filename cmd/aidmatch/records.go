package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/counselkit/aidmatch/internal/cli"
	"github.com/counselkit/aidmatch/internal/model"
)

func recordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Inspect and clean persisted matches",
	}

	cmd.AddCommand(recordsListCmd())
	cmd.AddCommand(recordsCleanCmd())

	return cmd
}

func recordsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <subject-id>",
		Short: "List the subject's persisted matches",
		Args:  cobra.ExactArgs(1),
		RunE:  runRecordsList,
	}
}

func runRecordsList(cmd *cobra.Command, args []string) error {
	store, err := openStorage()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx := cmd.Context()
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	records, err := store.ListRecordsBySubject(ctx, args[0])
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println(cli.FormatInfo("No matches saved for " + args[0]))
		return nil
	}

	var b strings.Builder
	for _, record := range records {
		writeRecord(&b, record)
	}
	fmt.Println(cli.RenderBox(
		fmt.Sprintf("%s %d saved match(es) for %s", cli.FolderIcon, len(records), args[0]),
		strings.TrimRight(b.String(), "\n")))
	return nil
}

func writeRecord(b *strings.Builder, record model.PersistedRecord) {
	deadline := "rolling/unknown"
	if record.Deadline != nil {
		deadline = *record.Deadline
	}

	fmt.Fprintf(b, "%s — %s — due %s\n",
		cli.BoldStyle.Render(record.Name), record.AwardAmount.String(), deadline)
	fmt.Fprintf(b, "  %s, score %.1f",
		record.EligibilitySummary.MatchCategory, record.EligibilitySummary.MatchScore)
	if record.Renewable {
		b.WriteString(", renewable")
	}
	b.WriteString("\n")
	if record.Category != "" {
		fmt.Fprintf(b, "  %s\n", cli.StyleSubtle(record.Category))
	}
}

func recordsCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean <subject-id>",
		Short: "Remove the subject's expired matches",
		RunE:  runRecordsClean,
		Args:  cobra.ExactArgs(1),
	}

	cmd.Flags().String("before", "", "remove records with deadlines before this date (YYYY-MM-DD, default today)")

	return cmd
}

func runRecordsClean(cmd *cobra.Command, args []string) error {
	before := time.Now().UTC()
	if raw, _ := cmd.Flags().GetString("before"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return fmt.Errorf("invalid --before date %q: %w", raw, err)
		}
		before = parsed
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

	deleted, err := store.DeleteExpiredRecords(ctx, args[0], before)
	if err != nil {
		return err
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Removed %d expired match(es)", deleted)))
	return nil
}
