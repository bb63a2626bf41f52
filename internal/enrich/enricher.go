// Package enrich performs best-effort enrichment of candidate postings from
// their source pages. Every failure is soft: a posting that cannot be
// enriched is returned unchanged with its provenance noting why.
package enrich

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/counselkit/aidmatch/internal/model"
	"github.com/counselkit/aidmatch/internal/service"
)

// Provenance records where a posting's fields came from.
type Provenance string

// Provenance values.
const (
	ProvenanceOriginal  Provenance = "original"
	ProvenanceExtracted Provenance = "extracted"
)

// Result pairs a (possibly updated) posting with its provenance. Note holds
// the fetch failure text when enrichment fell back to the original fields.
type Result struct {
	Posting    model.CandidatePosting
	Provenance Provenance
	Note       string
}

// Default fetch settings.
const (
	DefaultTimeout = 15 * time.Second
	DefaultWorkers = 4

	fetchUserAgent = "aidmatch/1.0 (+https://github.com/counselkit/aidmatch)"
	maxFetchBytes  = 2 << 20
)

// Enricher fetches posting source pages and extracts better name, amount,
// and deadline values.
type Enricher struct {
	fetcher service.Fetcher
	workers int
}

// New creates an enricher using the given fetcher and worker count.
func New(fetcher service.Fetcher, workers int) *Enricher {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Enricher{fetcher: fetcher, workers: workers}
}

// NewHTTP creates an enricher backed by a plain HTTP fetcher.
func NewHTTP(timeout time.Duration, workers int) *Enricher {
	return New(NewHTTPFetcher(timeout), workers)
}

// Enrich fetches the posting's source page and overwrites any field a
// better value was found for. It never returns an error.
func (e *Enricher) Enrich(ctx context.Context, posting model.CandidatePosting) Result {
	if posting.SourceURL == "" {
		return Result{Posting: posting, Provenance: ProvenanceOriginal}
	}

	page, err := e.fetcher.Fetch(ctx, posting.SourceURL)
	if err != nil {
		return Result{Posting: posting, Provenance: ProvenanceOriginal, Note: err.Error()}
	}

	content, err := parsePage(page)
	if err != nil {
		return Result{Posting: posting, Provenance: ProvenanceOriginal, Note: err.Error()}
	}

	if name, ok := content.postingName(); ok {
		posting.Name = name
	}
	if amount, ok := content.awardAmount(); ok {
		posting.AwardAmount = amount
	}
	if deadline, ok := content.deadline(); ok {
		posting.Deadline = deadline
	}

	return Result{Posting: posting, Provenance: ProvenanceExtracted}
}

// EnrichAll enriches every posting with a bounded worker pool, preserving
// input order. The fetches are independent and failure-tolerant, so they
// run concurrently. progress, when non-nil, is called once per completed
// posting.
func (e *Enricher) EnrichAll(ctx context.Context, postings []model.CandidatePosting, progress func()) []Result {
	results := make([]Result, len(postings))
	sem := make(chan struct{}, e.workers)

	var wg sync.WaitGroup
	for i := range postings {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results[i] = e.Enrich(ctx, postings[i])
			if progress != nil {
				progress()
			}
		}(i)
	}
	wg.Wait()

	return results
}

// HTTPFetcher is the default service.Fetcher implementation.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher creates a fetcher with a bounded timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPFetcher{client: &http.Client{Timeout: timeout}}
}

// Fetch performs a single GET and returns the page body as text.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", fetchUserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read body: %w", err)
	}
	return string(body), nil
}
