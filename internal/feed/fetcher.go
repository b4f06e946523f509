// Package feed retrieves and parses the external job feed during ingestion.
package feed

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"autoapply/pipeline-service/internal/model"
)

const httpTimeout = 15 * time.Second

// Fallbacks used when the profile leaves titles or locations empty.
var (
	defaultTitles    = []string{"Digital Health", "Healthcare AI", "Medical Director", "Clinical"}
	defaultLocations = []string{"United Arab Emirates"}
)

// Fetcher issues bounded single-shot GETs against the feed endpoint.
//
// Failure is absorbed, never propagated: a network error, timeout or non-2xx
// status is indistinguishable to callers from a feed with zero matching items.
// Ingestion must survive partial feed outages.
type Fetcher struct {
	baseURL string
	client  *http.Client
}

// NewFetcher constructs a Fetcher with a shared HTTP client.
func NewFetcher(baseURL string) *Fetcher {
	return &Fetcher{
		baseURL: baseURL,
		client:  &http.Client{Timeout: httpTimeout},
	}
}

// BuildQueryURLs returns one percent-encoded query URL per
// (target title × preferred location) pair, falling back to the default title
// and location lists when the profile leaves them empty. Identical URLs are
// deduplicated preserving first-seen order.
func (f *Fetcher) BuildQueryURLs(p *model.Profile) []string {
	titles := p.TargetTitles
	if len(titles) == 0 {
		titles = defaultTitles
	}
	locations := p.Locations
	if len(locations) == 0 {
		locations = defaultLocations
	}

	seen := make(map[string]struct{})
	urls := make([]string, 0, len(titles)*len(locations))
	for _, title := range titles {
		for _, location := range locations {
			params := url.Values{}
			params.Set("q", title)
			params.Set("l", location)
			queryURL := f.baseURL + "?" + params.Encode()
			if _, ok := seen[queryURL]; ok {
				continue
			}
			seen[queryURL] = struct{}{}
			urls = append(urls, queryURL)
		}
	}
	return urls
}

// Fetch issues a single GET for queryURL and returns the raw response body.
// Any failure yields an empty body.
func (f *Fetcher) Fetch(ctx context.Context, queryURL string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		log.Printf("[feed] request build for %s failed: %v — skipping", queryURL, err)
		return ""
	}

	resp, err := f.client.Do(req)
	if err != nil {
		log.Printf("[feed] GET %s failed: %v — skipping", queryURL, err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("[feed] GET %s returned %d — skipping", queryURL, resp.StatusCode)
		return ""
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("[feed] read body for %s failed: %v — skipping", queryURL, err)
		return ""
	}
	return string(body)
}
