// Package model defines the core domain models used throughout the application.
package model

// Profile is a snapshot of the student being matched. It is owned by an
// external profile store; the engine only reads it.
type Profile struct {
	Preferences       map[string]string `json:"preferences"`
	ID                string            `json:"id"`
	IntendedMajor     *string           `json:"intended_major"`
	GPA               *float64          `json:"gpa"`
	Budget            *float64          `json:"budget"`
	SeeksFinancialAid bool              `json:"seeks_financial_aid"`
}

// Preference returns the named preference value, or "" when absent.
func (p *Profile) Preference(key string) string {
	if p.Preferences == nil {
		return ""
	}
	return p.Preferences[key]
}

// HasPreference reports whether the preference key exists, even if empty.
func (p *Profile) HasPreference(key string) bool {
	_, ok := p.Preferences[key]
	return ok
}
