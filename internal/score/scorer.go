// Package score implements the weighted eligibility scorer and the posting
// categorizer for (profile, posting) pairs.
package score

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/counselkit/aidmatch/internal/model"
)

// Criterion weights. They sum to 100, so the total contribution is the
// match score directly.
const (
	weightAcademic     = 28.0
	weightMajor        = 25.0
	weightFinancial    = 22.0
	weightDemographics = 13.0
	weightLocation     = 12.0
)

// Match category thresholds on the 0-100 score.
const (
	thresholdHigh   = 85.0
	thresholdMedium = 70.0
	thresholdLow    = 50.0
)

// gpaNearMissMargin is how far below a GPA minimum still counts as
// recoverable.
const gpaNearMissMargin = 0.2

// incomeCeilingBuffer widens a need-based income ceiling for near-miss
// credit.
const incomeCeilingBuffer = 1.15

// Scorer evaluates postings against a profile.
type Scorer struct{}

// NewScorer returns a ready scorer.
func NewScorer() *Scorer {
	return &Scorer{}
}

// evaluation accumulates criterion contributions and rationale.
type evaluation struct {
	score     float64
	strengths []string
	issues    []string
	nearMiss  []string
}

func (ev *evaluation) add(points float64, strength string) {
	ev.score += points
	ev.strengths = append(ev.strengths, strength)
}

func (ev *evaluation) addNearMiss(points float64, reason string) {
	ev.score += points
	ev.nearMiss = append(ev.nearMiss, reason)
}

func (ev *evaluation) addIssue(issue string) {
	ev.issues = append(ev.issues, issue)
}

// Evaluate computes the weighted match result for one posting. The returned
// score is always within [0, 100], and Eligible is false exactly when the
// category is Not Eligible.
func (s *Scorer) Evaluate(profile *model.Profile, posting model.CandidatePosting) model.MatchResult {
	ev := &evaluation{}

	s.scoreAcademic(profile, posting, ev)
	s.scoreMajor(profile, posting, ev)
	s.scoreFinancial(profile, posting, ev)
	s.scoreDemographics(profile, posting, ev)
	s.scoreLocation(profile, posting, ev)

	total := math.Round(ev.score*10) / 10

	eligible := len(ev.issues) == 0
	var category model.MatchCategory
	switch {
	case !eligible && len(ev.nearMiss) > 0:
		// Close but missing a hard criterion; surfaced as recoverable.
		eligible = true
		category = model.MatchNear
	case !eligible:
		category = model.MatchNotEligible
	case len(ev.nearMiss) > 0:
		category = model.MatchNear
	case total >= thresholdHigh:
		category = model.MatchHigh
	case total >= thresholdMedium:
		category = model.MatchMedium
	case total >= thresholdLow:
		category = model.MatchLow
	default:
		eligible = false
		category = model.MatchNotEligible
	}

	slog.Debug("scored posting",
		"subject", profile.ID,
		"posting", posting.Name,
		"score", total,
		"category", category,
		"near_misses", len(ev.nearMiss),
		"issues", len(ev.issues))

	return model.MatchResult{
		Posting:           posting,
		Eligible:          eligible,
		MatchCategory:     category,
		MatchScore:        total,
		Strengths:         ev.strengths,
		EligibilityIssues: ev.issues,
		NearMissReasons:   ev.nearMiss,
		Explanation:       explain(category, ev),
	}
}

func (s *Scorer) scoreAcademic(profile *model.Profile, posting model.CandidatePosting, ev *evaluation) {
	required := posting.MinGPA
	gpa := profile.GPA

	switch {
	case required != nil && gpa != nil:
		switch {
		case *gpa >= *required:
			ev.add(weightAcademic, fmt.Sprintf("GPA %.2f meets the requirement of %.2f", *gpa, *required))
		case *gpa >= *required-gpaNearMissMargin:
			ev.addNearMiss(weightAcademic*0.7, fmt.Sprintf("GPA %.2f is close to the requirement of %.2f", *gpa, *required))
		default:
			ev.addIssue(fmt.Sprintf("GPA %.2f below the requirement of %.2f", *gpa, *required))
		}
	case required != nil:
		ev.addIssue("GPA requirement exists but profile GPA is unknown")
	case gpa != nil:
		ev.add(weightAcademic*0.95, fmt.Sprintf("Strong GPA of %.2f with no minimum required", *gpa))
	default:
		ev.add(weightAcademic*0.8, "No GPA requirement")
	}
}

func (s *Scorer) scoreMajor(profile *model.Profile, posting model.CandidatePosting, ev *evaluation) {
	var major string
	if profile.IntendedMajor != nil {
		major = strings.ToLower(strings.TrimSpace(*profile.IntendedMajor))
	}

	fields := lowerAll(posting.EligibleMajors)
	keywords := lowerAll(posting.FieldKeywords)

	if len(fields) == 0 && len(keywords) == 0 {
		// Most postings are open to all majors.
		ev.add(weightMajor*0.9, "No major restriction")
		return
	}

	if containsAnyToken(major, fields) || containsAnyToken(major, keywords) {
		ev.add(weightMajor, fmt.Sprintf("Major %q matches the posting's field requirements", major))
		return
	}

	if relatedMajor(major, append(fields, keywords...)) {
		ev.addNearMiss(weightMajor*0.6, fmt.Sprintf("Major %q is related to the required fields", major))
		return
	}

	ev.addIssue(fmt.Sprintf("Major %q does not match the required fields", major))
}

// relatedMajor reports whether the profile major shares a cluster with any
// posting field.
func relatedMajor(major string, postingFields []string) bool {
	var cluster []string
	for _, members := range majorClusters {
		if containsAnyToken(major, members) {
			cluster = members
			break
		}
	}
	if cluster == nil {
		return false
	}
	for _, field := range postingFields {
		if containsAnyToken(field, cluster) {
			return true
		}
	}
	return false
}

func (s *Scorer) scoreFinancial(profile *model.Profile, posting model.CandidatePosting, ev *evaluation) {
	if !posting.NeedBased {
		// Merit-based: need is never a requirement, so always rewarded.
		if profile.SeeksFinancialAid {
			ev.add(weightFinancial*0.95, "Merit-based posting with financial need motivation")
		} else {
			ev.add(weightFinancial*0.85, "Merit-based posting with no financial need requirements")
		}
		return
	}

	if !profile.SeeksFinancialAid {
		if profile.Budget != nil && *profile.Budget > 60000 {
			ev.addIssue("Need-based posting but subject is not seeking financial aid")
		} else {
			ev.addNearMiss(weightFinancial*0.4, "Need-based posting; applying for financial aid would improve eligibility")
		}
		return
	}

	ceiling := posting.MaxFamilyIncome
	budget := profile.Budget

	switch {
	case ceiling != nil && budget != nil:
		income := estimateFamilyIncome(*budget)
		switch {
		case income <= *ceiling:
			ev.add(weightFinancial, "Seeking financial aid and estimated income meets the need-based ceiling")
		case income <= *ceiling*incomeCeilingBuffer:
			ev.addNearMiss(weightFinancial*0.7,
				fmt.Sprintf("Seeking aid and close to the income ceiling (estimated $%.0f, limit $%.0f)", income, *ceiling))
		default:
			ev.addNearMiss(weightFinancial*0.3, "Seeking aid but estimated income may exceed the ceiling")
		}
	case ceiling != nil:
		ev.add(weightFinancial*0.8, "Seeking financial aid; likely eligible for the need-based posting")
	default:
		ev.add(weightFinancial*0.9, "Seeking financial aid and the posting has flexible need requirements")
	}
}

// estimateFamilyIncome derives a conservative family income from the annual
// education budget. Lower budgets imply lower income multipliers.
func estimateFamilyIncome(budget float64) float64 {
	switch {
	case budget <= 15000:
		return budget * 2.5
	case budget <= 30000:
		return budget * 3.0
	case budget <= 50000:
		return budget * 3.5
	default:
		return budget * 4.0
	}
}

func (s *Scorer) scoreDemographics(profile *model.Profile, posting model.CandidatePosting, ev *evaluation) {
	requirements := posting.DemographicRequirements
	if len(requirements) == 0 {
		ev.add(weightDemographics*0.95, "No demographic restrictions")
		return
	}

	demoText := joinPreferences(profile,
		"background", "identity", "student_status", "military_status", "demographics")

	var matched []string
	var hints int
	for _, req := range requirements {
		reqLower := strings.ToLower(req)
		switch {
		case containsAnyToken(demoText, strings.Fields(reqLower)):
			matched = append(matched, req)
		case strings.Contains(reqLower, "women") || strings.Contains(reqLower, "female"):
			if containsAnyToken(demoText, []string{"female", "woman", "women"}) {
				matched = append(matched, req)
			} else if profile.HasPreference("gender") {
				hints++
			}
		case strings.Contains(reqLower, "minority") || strings.Contains(reqLower, "underrepresented"):
			if containsAnyToken(demoText, []string{"minority", "underrepresented", "diverse", "ethnicity"}) {
				matched = append(matched, req)
			} else if profile.HasPreference("ethnicity") || profile.HasPreference("race") {
				hints++
			}
		case strings.Contains(reqLower, "first generation") || strings.Contains(reqLower, "first-gen"):
			if containsAnyToken(demoText, []string{"first generation", "first-gen", "first gen"}) {
				matched = append(matched, req)
			}
		case strings.Contains(reqLower, "veteran") || strings.Contains(reqLower, "military"):
			if containsAnyToken(demoText, []string{"veteran", "military", "armed forces"}) {
				matched = append(matched, req)
			}
		case strings.Contains(reqLower, "international"):
			if containsAnyToken(demoText, []string{"international", "foreign", "visa"}) {
				matched = append(matched, req)
			} else if profile.HasPreference("citizenship") || profile.HasPreference("visa_status") {
				hints++
			}
		}
	}

	switch {
	case len(matched) > 0:
		fraction := float64(len(matched)) / float64(len(requirements))
		ev.add(weightDemographics*fraction,
			"Meets demographic requirements: "+strings.Join(firstN(matched, 2), ", "))
	case hints > 0:
		ev.addNearMiss(weightDemographics*0.6,
			"May qualify for demographic requirements; review: "+strings.Join(firstN(requirements, 2), ", "))
	case demoText != "":
		ev.addNearMiss(weightDemographics*0.4,
			"Demographic requirements exist ("+strings.Join(firstN(requirements, 2), ", ")+"); verify eligibility")
	default:
		ev.addNearMiss(weightDemographics*0.3,
			"Demographic requirements may apply: "+strings.Join(firstN(requirements, 2), ", ")+"; update profile for better matching")
	}
}

// Coarse US regions recognized in location restrictions. Checked in order
// so "midwest" is not swallowed by the "west" entry.
var regionChecks = []struct {
	name     string
	synonyms []string
}{
	{"northeast", []string{"northeast", "new england", "mid-atlantic"}},
	{"southeast", []string{"southeast", "south", "atlantic"}},
	{"midwest", []string{"midwest", "great lakes", "plains"}},
	{"west", []string{"west", "pacific", "mountain"}},
}

var nationwideTerms = []string{"us", "usa", "united states", "national", "nationwide"}

func (s *Scorer) scoreLocation(profile *model.Profile, posting model.CandidatePosting, ev *evaluation) {
	restrictions := posting.LocationRestrictions
	if len(restrictions) == 0 {
		ev.add(weightLocation, "No location restrictions")
		return
	}

	locText := joinPreferences(profile,
		"state", "region", "location_preference", "residence", "home_state")

	var matched []string
	var hints int
	for _, req := range restrictions {
		reqLower := strings.ToLower(req)
		switch {
		case containsAnyToken(locText, strings.Fields(reqLower)):
			matched = append(matched, req)
		case len(strings.TrimSpace(req)) == 2:
			// Two-letter state code.
			if strings.Contains(strings.ToUpper(locText), strings.ToUpper(strings.TrimSpace(req))) {
				matched = append(matched, req)
			}
		case matchesRegion(reqLower, locText):
			matched = append(matched, req)
		case containsAnyToken(reqLower, nationwideTerms):
			matched = append(matched, req)
		case len(locText) > 3:
			hints++
		}
	}

	switch {
	case len(matched) > 0:
		ev.add(weightLocation, "Location requirements met: "+strings.Join(firstN(matched, 2), ", "))
	case hints > 0:
		ev.addNearMiss(weightLocation*0.6,
			"Location requirements may apply: "+strings.Join(firstN(restrictions, 2), ", ")+"; verify residence eligibility")
	case locText != "":
		ev.addNearMiss(weightLocation*0.3,
			"Location restrictions apply: "+strings.Join(firstN(restrictions, 2), ", "))
	default:
		ev.addNearMiss(weightLocation*0.2,
			"Location requirements exist ("+strings.Join(firstN(restrictions, 2), ", ")+"); add location to profile for accurate matching")
	}
}

func matchesRegion(requirement, locText string) bool {
	for _, rc := range regionChecks {
		if strings.Contains(requirement, rc.name) {
			return containsAnyToken(locText, rc.synonyms)
		}
	}
	return false
}

// containsAnyToken reports whether text contains any of the tokens as a
// substring. Empty tokens never match.
func containsAnyToken(text string, tokens []string) bool {
	if text == "" {
		return false
	}
	for _, token := range tokens {
		if token != "" && strings.Contains(text, token) {
			return true
		}
	}
	return false
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.ToLower(v))
	}
	return out
}

func joinPreferences(profile *model.Profile, keys ...string) string {
	var parts []string
	for _, key := range keys {
		if v := strings.TrimSpace(strings.ToLower(profile.Preference(key))); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

func firstN(values []string, n int) []string {
	if len(values) <= n {
		return values
	}
	return values[:n]
}
