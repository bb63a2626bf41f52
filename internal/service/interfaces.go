// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/counselkit/aidmatch/internal/model"
)

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Profile operations
	GetProfile(ctx context.Context, subjectID string) (*model.Profile, error)
	SaveProfile(ctx context.Context, profile *model.Profile) error

	// Persisted match records
	ListRecordsBySubject(ctx context.Context, subjectID string) ([]model.PersistedRecord, error)
	InsertRecord(ctx context.Context, record *model.PersistedRecord) error
	DeleteRecord(ctx context.Context, id string) error
	DeleteExpiredRecords(ctx context.Context, subjectID string, before time.Time) (int, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// Fetcher retrieves page text for candidate enrichment. Implementations are
// best-effort: callers treat every error as soft.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}
