package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/counselkit/aidmatch/internal/model"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrNilParameter   = errors.New("parameter cannot be nil")
	ErrInvalidRecord  = errors.New("invalid record")
	ErrInvalidProfile = errors.New("invalid profile")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateRecord validates a persisted match record.
func validateRecord(record *model.PersistedRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record", ErrNilParameter)
	}
	if record.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidRecord)
	}
	if record.SubjectID == "" {
		return fmt.Errorf("%w: missing subject ID", ErrInvalidRecord)
	}
	if strings.TrimSpace(record.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidRecord)
	}
	if record.NormalizedName == "" {
		return fmt.Errorf("%w: missing normalized name", ErrInvalidRecord)
	}
	return nil
}

// validateProfile validates a profile.
func validateProfile(profile *model.Profile) error {
	if profile == nil {
		return fmt.Errorf("%w: profile", ErrNilParameter)
	}
	if strings.TrimSpace(profile.ID) == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidProfile)
	}
	if profile.GPA != nil && (*profile.GPA < 0 || *profile.GPA > 5) {
		return fmt.Errorf("%w: GPA out of range", ErrInvalidProfile)
	}
	return nil
}
