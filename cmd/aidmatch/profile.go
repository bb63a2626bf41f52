package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/counselkit/aidmatch/internal/cli"
	"github.com/counselkit/aidmatch/internal/common"
	"github.com/counselkit/aidmatch/internal/model"
)

func profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage student profiles",
	}

	cmd.AddCommand(profileSetCmd())
	cmd.AddCommand(profileShowCmd())

	return cmd
}

func profileSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <subject-id>",
		Short: "Create or update a student profile",
		Long: `Save the matching inputs for a student. Preferences are free-form
key=value pairs consulted by the demographic and location criteria,
for example: --pref state=california --pref background="first generation".`,
		Args: cobra.ExactArgs(1),
		RunE: runProfileSet,
	}

	cmd.Flags().Float64("gpa", -1, "GPA on a 0-5 scale")
	cmd.Flags().String("major", "", "intended major")
	cmd.Flags().Float64("budget", -1, "annual education budget in dollars")
	cmd.Flags().Bool("seeks-aid", false, "whether the student is seeking financial aid")
	cmd.Flags().StringArray("pref", nil, "preference as key=value (repeatable)")

	return cmd
}

func runProfileSet(cmd *cobra.Command, args []string) error {
	profile := &model.Profile{ID: args[0]}

	if gpa, _ := cmd.Flags().GetFloat64("gpa"); gpa >= 0 {
		profile.GPA = &gpa
	}
	if major, _ := cmd.Flags().GetString("major"); major != "" {
		profile.IntendedMajor = &major
	}
	if budget, _ := cmd.Flags().GetFloat64("budget"); budget >= 0 {
		profile.Budget = &budget
	}
	profile.SeeksFinancialAid, _ = cmd.Flags().GetBool("seeks-aid")

	prefs, _ := cmd.Flags().GetStringArray("pref")
	for _, pref := range prefs {
		key, value, found := strings.Cut(pref, "=")
		if !found || strings.TrimSpace(key) == "" {
			return fmt.Errorf("invalid preference %q, expected key=value", pref)
		}
		if profile.Preferences == nil {
			profile.Preferences = make(map[string]string)
		}
		profile.Preferences[strings.TrimSpace(key)] = strings.TrimSpace(value)
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
	if err := store.SaveProfile(ctx, profile); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}

	fmt.Println(cli.FormatSuccess("Saved profile " + profile.ID))
	return nil
}

func profileShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <subject-id>",
		Short: "Show a student profile",
		Args:  cobra.ExactArgs(1),
		RunE:  runProfileShow,
	}
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	store, err := openStorage()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx := cmd.Context()
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	profile, err := store.GetProfile(ctx, args[0])
	if errors.Is(err, common.ErrProfileNotFound) {
		fmt.Println(cli.FormatWarning("No profile saved for " + args[0]))
		return nil
	}
	if err != nil {
		return err
	}

	var b strings.Builder
	writeField := func(label, value string) {
		fmt.Fprintf(&b, "%s %s\n", cli.BoldStyle.Render(label+":"), value)
	}

	writeField("Subject", profile.ID)
	if profile.GPA != nil {
		writeField("GPA", fmt.Sprintf("%.2f", *profile.GPA))
	}
	if profile.IntendedMajor != nil {
		writeField("Major", *profile.IntendedMajor)
	}
	if profile.Budget != nil {
		writeField("Budget", fmt.Sprintf("$%.0f", *profile.Budget))
	}
	writeField("Seeks financial aid", fmt.Sprintf("%t", profile.SeeksFinancialAid))
	for key, value := range profile.Preferences {
		writeField("  "+key, value)
	}

	fmt.Println(cli.RenderBox(cli.CapIcon+" Profile", strings.TrimRight(b.String(), "\n")))
	return nil
}
