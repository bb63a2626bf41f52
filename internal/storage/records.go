package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/counselkit/aidmatch/internal/model"
	"github.com/counselkit/aidmatch/internal/normalize"
)

// ListRecordsBySubject returns all persisted matches for a subject, most
// recent first.
func (s *SQLiteStorage) ListRecordsBySubject(ctx context.Context, subjectID string) ([]model.PersistedRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(subjectID, "subjectID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, subject_id, name, normalized_name, category, award_amount,
		       deadline, renewable, description, eligibility_summary, source_url, matched_at
		FROM match_records
		WHERE subject_id = ?
		ORDER BY matched_at DESC, name ASC
	`, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.PersistedRecord
	for rows.Next() {
		record, scanErr := scanRecord(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}

	return records, nil
}

// InsertRecord stores a single match record.
func (s *SQLiteStorage) InsertRecord(ctx context.Context, record *model.PersistedRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRecord(record); err != nil {
		return err
	}

	summary, err := json.Marshal(record.EligibilitySummary)
	if err != nil {
		return fmt.Errorf("failed to encode eligibility summary: %w", err)
	}

	matchedAt := record.MatchedAt
	if matchedAt.IsZero() {
		matchedAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO match_records (id, subject_id, name, normalized_name, category,
			award_amount, deadline, renewable, description, eligibility_summary,
			source_url, matched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		record.ID,
		record.SubjectID,
		record.Name,
		record.NormalizedName,
		record.Category,
		amountColumn(record.AwardAmount),
		nullableString(record.Deadline),
		record.Renewable,
		record.Description,
		string(summary),
		record.SourceURL,
		matchedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}
	return nil
}

// DeleteRecord removes a single record by ID. Deleting a missing record is
// not an error.
func (s *SQLiteStorage) DeleteRecord(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM match_records WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

// DeleteExpiredRecords removes the subject's records whose deadline has
// passed. Records without a known deadline are never swept.
func (s *SQLiteStorage) DeleteExpiredRecords(ctx context.Context, subjectID string, before time.Time) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(subjectID, "subjectID"); err != nil {
		return 0, err
	}

	result, err := s.db.ExecContext(ctx, `
		DELETE FROM match_records
		WHERE subject_id = ? AND deadline IS NOT NULL AND deadline < ?
	`, subjectID, before.UTC().Format(normalize.ISODate))
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired records: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted records: %w", err)
	}
	return int(affected), nil
}

// amountColumn renders an award amount for the TEXT column so that
// ParseAmount recovers it on read: numeric amounts as bare digits,
// descriptive ones verbatim, unspecified as NULL.
func amountColumn(amount model.Amount) any {
	switch {
	case amount.Known:
		return strconv.FormatFloat(amount.Value, 'f', -1, 64)
	case amount.Text != "":
		return amount.Text
	default:
		return nil
	}
}

func scanRecord(rows *sql.Rows) (*model.PersistedRecord, error) {
	var (
		record    model.PersistedRecord
		category  sql.NullString
		amount    sql.NullString
		deadline  sql.NullString
		desc      sql.NullString
		summary   sql.NullString
		sourceURL sql.NullString
		matchedAt string
	)

	err := rows.Scan(
		&record.ID,
		&record.SubjectID,
		&record.Name,
		&record.NormalizedName,
		&category,
		&amount,
		&deadline,
		&record.Renewable,
		&desc,
		&summary,
		&sourceURL,
		&matchedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan record: %w", err)
	}

	record.Category = category.String
	record.Description = desc.String
	record.SourceURL = sourceURL.String
	if amount.Valid && amount.String != "" {
		record.AwardAmount = model.ParseAmount(amount.String)
	}
	if deadline.Valid {
		record.Deadline = &deadline.String
	}
	if summary.Valid && summary.String != "" {
		if err := json.Unmarshal([]byte(summary.String), &record.EligibilitySummary); err != nil {
			return nil, fmt.Errorf("failed to decode eligibility summary: %w", err)
		}
	}
	if t, err := time.Parse(time.RFC3339, matchedAt); err == nil {
		record.MatchedAt = t
	} else if t, err := time.Parse("2006-01-02 15:04:05", matchedAt); err == nil {
		record.MatchedAt = t
	}

	return &record, nil
}
