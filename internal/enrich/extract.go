package enrich

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/counselkit/aidmatch/internal/model"
)

// Heading-like elements scanned for a better posting name.
const headingSelector = "h1, h2, h3, .scholarship-title, .title, .name"

// A heading only qualifies as a name when it mentions an aid keyword and
// sits inside a plausible length window.
var aidKeywords = []string{"scholarship", "grant", "fellowship", "award", "prize"}

const (
	minNameLength = 10
	maxNameLength = 100
)

// Currency patterns tried in order; the first match anywhere on the page
// wins.
var amountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\$[\d,]+(?:\.\d{2})?`),
	regexp.MustCompile(`(?i)USD?\s*[\d,]+`),
	regexp.MustCompile(`(?i)[\d,]+\s*dollars?`),
	regexp.MustCompile(`(?i)up to \$[\d,]+`),
}

// Deadline-keyword-adjacent date patterns; the capture group holds the raw
// date text, which the deadline normalizer canonicalizes later.
var deadlinePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:deadline|due|apply by):?\s*([A-Za-z]+ \d{1,2},? \d{4})`),
	regexp.MustCompile(`(?i)(?:deadline|due|apply by):?\s*(\d{1,2}/\d{1,2}/\d{4})`),
	regexp.MustCompile(`(?i)(?:deadline|due|apply by):?\s*(\d{4}-\d{2}-\d{2})`),
}

var amountDigits = regexp.MustCompile(`[\d,]+`)

// pageContent wraps a parsed source page.
type pageContent struct {
	doc  *goquery.Document
	text string
}

func parsePage(page string) (*pageContent, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}
	return &pageContent{doc: doc, text: doc.Text()}, nil
}

// postingName returns the first heading-like element that looks like an aid
// posting name.
func (c *pageContent) postingName() (string, bool) {
	var name string
	c.doc.Find(headingSelector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(sel.Text())
		lower := strings.ToLower(text)
		for _, kw := range aidKeywords {
			if strings.Contains(lower, kw) {
				if n := utf8.RuneCountInString(text); n > minNameLength && n < maxNameLength {
					name = text
					return false
				}
			}
		}
		return true
	})
	return name, name != ""
}

// awardAmount returns the first plausible currency amount on the page.
func (c *pageContent) awardAmount() (model.Amount, bool) {
	for _, pattern := range amountPatterns {
		for _, match := range pattern.FindAllString(c.text, -1) {
			digits := strings.ReplaceAll(amountDigits.FindString(match), ",", "")
			if len(digits) >= 3 {
				return model.ParseAmount(match), true
			}
		}
	}
	return model.Amount{}, false
}

// deadline returns the first deadline-keyword-adjacent date, raw.
func (c *pageContent) deadline() (string, bool) {
	for _, pattern := range deadlinePatterns {
		if m := pattern.FindStringSubmatch(c.text); len(m) > 1 {
			return strings.TrimSpace(m[1]), true
		}
	}
	return "", false
}
