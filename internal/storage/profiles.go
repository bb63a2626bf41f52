package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/counselkit/aidmatch/internal/common"
	"github.com/counselkit/aidmatch/internal/model"
)

// GetProfile loads the subject's profile snapshot.
func (s *SQLiteStorage) GetProfile(ctx context.Context, subjectID string) (*model.Profile, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(subjectID, "subjectID"); err != nil {
		return nil, err
	}

	var (
		profile     model.Profile
		gpa         sql.NullFloat64
		major       sql.NullString
		budget      sql.NullFloat64
		seeksAid    bool
		preferences sql.NullString
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, gpa, intended_major, budget, seeks_financial_aid, preferences
		FROM profiles
		WHERE id = ?
	`, subjectID).Scan(&profile.ID, &gpa, &major, &budget, &seeksAid, &preferences)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", common.ErrProfileNotFound, subjectID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	if gpa.Valid {
		profile.GPA = &gpa.Float64
	}
	if major.Valid {
		profile.IntendedMajor = &major.String
	}
	if budget.Valid {
		profile.Budget = &budget.Float64
	}
	profile.SeeksFinancialAid = seeksAid

	if preferences.Valid && preferences.String != "" {
		if err := json.Unmarshal([]byte(preferences.String), &profile.Preferences); err != nil {
			// A corrupt preference blob degrades to an empty map; matching
			// still works on the remaining fields.
			profile.Preferences = map[string]string{}
		}
	}

	return &profile, nil
}

// SaveProfile inserts or replaces the subject's profile.
func (s *SQLiteStorage) SaveProfile(ctx context.Context, profile *model.Profile) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateProfile(profile); err != nil {
		return err
	}

	var preferences any
	if len(profile.Preferences) > 0 {
		blob, err := json.Marshal(profile.Preferences)
		if err != nil {
			return fmt.Errorf("failed to encode preferences: %w", err)
		}
		preferences = string(blob)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, gpa, intended_major, budget, seeks_financial_aid, preferences)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			gpa = excluded.gpa,
			intended_major = excluded.intended_major,
			budget = excluded.budget,
			seeks_financial_aid = excluded.seeks_financial_aid,
			preferences = excluded.preferences,
			updated_at = CURRENT_TIMESTAMP
	`,
		profile.ID,
		nullableFloat(profile.GPA),
		nullableString(profile.IntendedMajor),
		nullableFloat(profile.Budget),
		profile.SeeksFinancialAid,
		preferences,
	)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

func nullableFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}
