package normalize

import (
	"regexp"
	"strings"
)

var (
	punctuation = regexp.MustCompile(`[^\w\s]`)
	whitespace  = regexp.MustCompile(`\s+`)
)

// Title and abbreviation expansions applied before compacting, so "Col."
// and "Colonel" postings collide.
var titleExpansions = []struct {
	pattern     *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`\bcol\b`), "colonel"},
	{regexp.MustCompile(`\bdr\b`), "doctor"},
	{regexp.MustCompile(`\bprof\b`), "professor"},
	{regexp.MustCompile(`\bmr\b`), "mister"},
	{regexp.MustCompile(`\bms\b`), "miss"},
	{regexp.MustCompile(`\bmrs\b`), "missus"},
	{regexp.MustCompile(`\bst\b`), "saint"},
	{regexp.MustCompile(`\buniv\b`), "university"},
	{regexp.MustCompile(`\bcoll\b`), "college"},
}

// Generic tokens stripped from the compacted key; they carry no identity.
var genericTokens = []string{
	"scholarship", "award", "grant", "fellowship", "program", "foundation",
}

// Name derives the deduplication comparison key for a posting name. Names
// differing only in case, punctuation, spacing, or a generic suffix word
// normalize identically. The key is heuristic, not guaranteed-unique.
func Name(name string) string {
	lowered := strings.ToLower(strings.TrimSpace(name))
	if lowered == "" {
		return ""
	}

	key := punctuation.ReplaceAllString(lowered, "")
	key = whitespace.ReplaceAllString(key, " ")
	key = strings.TrimSpace(key)

	for _, exp := range titleExpansions {
		key = exp.pattern.ReplaceAllString(key, exp.replacement)
	}

	// Compact form: organizations vary in spacing.
	key = strings.ReplaceAll(key, " ", "")

	stripped := stripGenericTokens(key)
	if stripped == "" {
		// Stripping would erase the whole name ("The Scholarship"); keep
		// the lowercase-trimmed original instead.
		return lowered
	}
	return stripped
}

func stripGenericTokens(key string) string {
	for {
		next := key
		for _, token := range genericTokens {
			next = strings.TrimSuffix(next, token)
			next = strings.TrimPrefix(next, token)
		}
		if next == key {
			return key
		}
		key = next
	}
}
