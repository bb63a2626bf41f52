package score

import (
	"strings"

	"github.com/counselkit/aidmatch/internal/model"
)

// Keyword cues for each fallback tag.
var (
	meritKeywords = []string{
		"merit", "academic", "gpa", "grade", "achievement", "excellence",
		"honor", "scholar", "dean", "valedictorian", "academic achievement",
		"high achiever", "sat", "act", "gre", "test score",
		"academic performance", "top student",
	}
	needKeywords = []string{
		"need", "financial", "income", "hardship", "low income", "economic",
		"disadvantaged", "pell grant", "fafsa", "family income", "poverty",
		"financial aid", "financial assistance", "need-based",
	}
	majorKeywords = []string{
		"engineering", "business", "nursing", "education", "computer science",
		"medicine", "law", "arts", "science", "mathematics", "psychology",
		"communications", "journalism", "agriculture", "pharmacy", "dentistry",
	}
	demographicKeywords = []string{
		"women", "female", "male", "hispanic", "latino", "african american",
		"black", "asian", "native american", "indigenous", "minority",
		"first generation", "veteran", "military", "disability", "lgbtq",
		"immigrant", "refugee", "single parent", "non-traditional",
		"underrepresented",
	}
	essayKeywords = []string{
		"essay", "personal statement", "written", "write", "composition",
		"statement of purpose", "letter of intent", "narrative", "reflection",
		"writing sample", "creative writing", "application essay",
	}
)

// Categorize assigns semantic tags to a posting. An explicit valid upstream
// category wins as the sole tag; otherwise independent keyword and field
// heuristics may assign several, defaulting to Merit-Based when nothing
// matches.
func Categorize(posting model.CandidatePosting) []model.Tag {
	if model.IsValidTag(posting.Category) {
		return []model.Tag{model.Tag(posting.Category)}
	}

	text := strings.ToLower(posting.Name + " " + posting.Description + " " +
		strings.Join(posting.RequiredDocuments, " "))

	var tags []model.Tag

	if posting.MinGPA != nil || containsAnyToken(text, meritKeywords) {
		tags = append(tags, model.TagMeritBased)
	}
	if posting.NeedBased || posting.MaxFamilyIncome != nil || containsAnyToken(text, needKeywords) {
		tags = append(tags, model.TagNeedBased)
	}
	if len(posting.EligibleMajors) > 0 || len(posting.FieldKeywords) > 0 || containsAnyToken(text, majorKeywords) {
		tags = append(tags, model.TagMajorSpecific)
	}
	if len(posting.DemographicRequirements) > 0 || containsAnyToken(text, demographicKeywords) {
		tags = append(tags, model.TagDemographicSpecific)
	}
	if posting.EssayRequired || containsAnyToken(text, essayKeywords) {
		tags = append(tags, model.TagEssayRequired)
	}

	if len(tags) == 0 {
		tags = append(tags, model.TagMeritBased)
	}
	return tags
}
