package model

import "time"

// EligibilityAnalysis summarizes the scorer's reasoning for persistence.
type EligibilityAnalysis struct {
	Strengths         []string `json:"strengths"`
	EligibilityIssues []string `json:"eligibility_issues"`
	NearMissCount     int      `json:"near_miss_count"`
}

// EligibilitySummary is the structured blob stored with each persisted
// record. It embeds the posting's eligibility highlights plus the full match
// analysis so downstream consumers can explain a recommendation without
// re-scoring.
type EligibilitySummary struct {
	GPARequirement          *float64            `json:"gpa_requirement"`
	MatchCategory           MatchCategory       `json:"match_category"`
	WhyMatch                string              `json:"why_match"`
	Highlights              []string            `json:"highlights"`
	MajorRestrictions       []string            `json:"major_restrictions"`
	DemographicRequirements []string            `json:"demographic_requirements"`
	NearMissReasons         []string            `json:"near_miss_reasons"`
	Tags                    []Tag               `json:"categories"`
	Analysis                EligibilityAnalysis `json:"eligibility_analysis"`
	MatchScore              float64             `json:"match_score"`
	EssayRequired           bool                `json:"essay_required"`
	NeedBased               bool                `json:"need_based"`
}

// PersistedRecord is a durable match keyed by (subject, normalized name).
// The reconciler guarantees at most one record per normalized name per
// subject.
type PersistedRecord struct {
	MatchedAt          time.Time
	Deadline           *string
	ID                 string
	SubjectID          string
	Name               string
	NormalizedName     string
	Category           string
	Description        string
	SourceURL          string
	EligibilitySummary EligibilitySummary
	AwardAmount        Amount
	Renewable          bool
}
