package model

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// StringList is the explicit optional-collection type for criterion fields.
// Upstream feeds carry no guaranteed typing: list fields sometimes arrive as
// scalars (a JSONB default of 0, a bare string). Any value that is not an
// array of strings decodes to an empty list rather than an error.
type StringList []string

// UnmarshalJSON tolerates malformed upstream values.
func (l *StringList) UnmarshalJSON(data []byte) error {
	var vals []string
	if err := json.Unmarshal(data, &vals); err != nil {
		*l = StringList{}
		return nil
	}
	*l = vals
	return nil
}

var amountDigits = regexp.MustCompile(`[\d,]+`)

// Amount is an award amount that may be numeric or descriptive
// ("Full-Tuition", "Variable"). Numeric strings like "$5,000" are parsed;
// descriptive text is preserved as supplied.
type Amount struct {
	Text  string
	Value float64
	Known bool
}

// NewAmount returns a numeric amount.
func NewAmount(value float64) Amount {
	return Amount{Value: value, Known: true}
}

// ParseAmount extracts a numeric value from free text when possible,
// otherwise preserves the text.
func ParseAmount(s string) Amount {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}
	}
	if m := amountDigits.FindString(s); m != "" {
		if v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64); err == nil {
			return Amount{Value: v, Known: true}
		}
	}
	return Amount{Text: s}
}

// UnmarshalJSON accepts a JSON number, a numeric string, or descriptive text.
func (a *Amount) UnmarshalJSON(data []byte) error {
	// json.Unmarshal treats null as a no-op for numbers, which would read
	// as a known $0 award.
	if string(data) == "null" {
		*a = Amount{}
		return nil
	}
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*a = NewAmount(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = ParseAmount(s)
		return nil
	}
	// Anything else (null, object) is treated as unspecified.
	*a = Amount{}
	return nil
}

// MarshalJSON emits a number when the amount is numeric, otherwise the text.
func (a Amount) MarshalJSON() ([]byte, error) {
	if a.Known {
		return json.Marshal(a.Value)
	}
	if a.Text == "" {
		return []byte("null"), nil
	}
	return json.Marshal(a.Text)
}

// IsZero reports whether no amount was supplied at all.
func (a Amount) IsZero() bool {
	return !a.Known && a.Text == ""
}

// String renders the amount for display: "$5,000", "Full-Tuition", or "TBD".
func (a Amount) String() string {
	switch {
	case a.Known:
		return "$" + formatThousands(int64(a.Value))
	case a.Text != "":
		return a.Text
	default:
		return "TBD"
	}
}

func formatThousands(v int64) string {
	s := strconv.FormatInt(v, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// CandidatePosting is a single aid opportunity from the upstream candidate
// feed. It is transient input, optionally enriched in place.
type CandidatePosting struct {
	Name                    string     `json:"name"`
	Description             string     `json:"description"`
	Category                string     `json:"category"`
	Deadline                string     `json:"deadline"`
	SourceURL               string     `json:"source_url"`
	EligibleMajors          StringList `json:"eligible_majors"`
	FieldKeywords           StringList `json:"field_keywords"`
	DemographicRequirements StringList `json:"demographic_requirements"`
	LocationRestrictions    StringList `json:"location_restrictions"`
	RequiredDocuments       StringList `json:"required_documents"`
	Coerced                 []string   `json:"-"`
	AwardAmount             Amount     `json:"award_amount"`
	MinGPA                  *float64   `json:"min_gpa"`
	MaxFamilyIncome         *float64   `json:"max_family_income"`
	NeedBased               bool       `json:"need_based"`
	EssayRequired           bool       `json:"essay_required"`
	Renewable               bool       `json:"renewable"`
}

// UnmarshalJSON is the single coercion boundary for criterion fields. Fields
// that arrive malformed are reset to empty lists and their names recorded in
// Coerced so the caller can log the event instead of losing the signal.
func (p *CandidatePosting) UnmarshalJSON(data []byte) error {
	type alias CandidatePosting
	aux := struct {
		EligibleMajors          json.RawMessage `json:"eligible_majors"`
		FieldKeywords           json.RawMessage `json:"field_keywords"`
		DemographicRequirements json.RawMessage `json:"demographic_requirements"`
		LocationRestrictions    json.RawMessage `json:"location_restrictions"`
		RequiredDocuments       json.RawMessage `json:"required_documents"`
		*alias
	}{alias: (*alias)(p)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("failed to decode posting: %w", err)
	}

	p.EligibleMajors = p.coerceList(aux.EligibleMajors, "eligible_majors")
	p.FieldKeywords = p.coerceList(aux.FieldKeywords, "field_keywords")
	p.DemographicRequirements = p.coerceList(aux.DemographicRequirements, "demographic_requirements")
	p.LocationRestrictions = p.coerceList(aux.LocationRestrictions, "location_restrictions")
	p.RequiredDocuments = p.coerceList(aux.RequiredDocuments, "required_documents")
	return nil
}

func (p *CandidatePosting) coerceList(raw json.RawMessage, field string) StringList {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil
	}
	var vals []string
	if err := json.Unmarshal(raw, &vals); err != nil {
		p.Coerced = append(p.Coerced, field)
		return StringList{}
	}
	return vals
}

// IsRenewable reports whether the posting renews, either by flag or by the
// description saying so.
func (p *CandidatePosting) IsRenewable() bool {
	return p.Renewable || strings.Contains(strings.ToLower(p.Description), "renewable")
}
