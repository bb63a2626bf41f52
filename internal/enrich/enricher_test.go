package enrich

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/counselkit/aidmatch/internal/model"
)

const testPage = `<html><body>
<h1>Global Tech Innovators Scholarship</h1>
<p>We support future engineers. Award: $7,500 per recipient.</p>
<p>Application deadline: December 1, 2026</p>
</body></html>`

// stubFetcher serves canned pages keyed by URL.
type stubFetcher struct {
	pages map[string]string
	err   error
}

func (f *stubFetcher) Fetch(_ context.Context, url string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	page, ok := f.pages[url]
	if !ok {
		return "", errors.New("no such page")
	}
	return page, nil
}

func TestEnrichExtractsFields(t *testing.T) {
	enricher := New(&stubFetcher{pages: map[string]string{
		"https://example.com/gti": testPage,
	}}, 1)

	posting := model.CandidatePosting{
		Name:      "gti scholarship",
		SourceURL: "https://example.com/gti",
		Deadline:  "Unknown Deadline",
	}

	result := enricher.Enrich(context.Background(), posting)

	assert.Equal(t, ProvenanceExtracted, result.Provenance)
	assert.Empty(t, result.Note)
	assert.Equal(t, "Global Tech Innovators Scholarship", result.Posting.Name)
	assert.InDelta(t, 7500, result.Posting.AwardAmount.Value, 0.001)
	assert.Equal(t, "December 1, 2026", result.Posting.Deadline)
}

func TestEnrichKeepsOriginalOnFetchError(t *testing.T) {
	enricher := New(&stubFetcher{err: errors.New("connection refused")}, 1)

	posting := model.CandidatePosting{
		Name:      "Original Name",
		SourceURL: "https://example.com/down",
		Deadline:  "2026-12-01",
	}

	result := enricher.Enrich(context.Background(), posting)

	assert.Equal(t, ProvenanceOriginal, result.Provenance)
	assert.Contains(t, result.Note, "connection refused")
	assert.Equal(t, "Original Name", result.Posting.Name)
	assert.Equal(t, "2026-12-01", result.Posting.Deadline)
}

func TestEnrichNoSourceURL(t *testing.T) {
	enricher := New(&stubFetcher{}, 1)

	result := enricher.Enrich(context.Background(), model.CandidatePosting{Name: "No URL"})

	assert.Equal(t, ProvenanceOriginal, result.Provenance)
	assert.Empty(t, result.Note)
}

func TestEnrichIgnoresShortHeadings(t *testing.T) {
	enricher := New(&stubFetcher{pages: map[string]string{
		"https://example.com/short": `<html><h1>Grant</h1><p>Details.</p></html>`,
	}}, 1)

	posting := model.CandidatePosting{Name: "Kept Name", SourceURL: "https://example.com/short"}
	result := enricher.Enrich(context.Background(), posting)

	// "Grant" mentions an aid keyword but is below the length window.
	assert.Equal(t, "Kept Name", result.Posting.Name)
}

func TestEnrichAllPreservesOrder(t *testing.T) {
	pages := make(map[string]string, 8)
	postings := make([]model.CandidatePosting, 8)
	for i := range postings {
		url := fmt.Sprintf("https://example.com/p%d", i)
		pages[url] = fmt.Sprintf(`<html><h1>Numbered Scholarship %d Fund</h1></html>`, i)
		postings[i] = model.CandidatePosting{Name: fmt.Sprintf("posting %d", i), SourceURL: url}
	}

	var completed atomic.Int32
	enricher := New(&stubFetcher{pages: pages}, 3)
	results := enricher.EnrichAll(context.Background(), postings, func() {
		completed.Add(1)
	})

	require.Len(t, results, len(postings))
	assert.Equal(t, int32(len(postings)), completed.Load())
	for i, result := range results {
		assert.Equal(t, fmt.Sprintf("Numbered Scholarship %d Fund", i), result.Posting.Name)
	}
}

func TestHTTPFetcher(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		assert.Contains(t, r.Header.Get("User-Agent"), "aidmatch")
		_, _ = w.Write([]byte(testPage))
	}))
	defer server.Close()

	fetcher := NewHTTPFetcher(5 * time.Second)

	body, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, body, "Global Tech Innovators")

	_, err = fetcher.Fetch(context.Background(), server.URL+"/missing")
	assert.ErrorContains(t, err, "status 404")
}
