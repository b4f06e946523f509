// Package ingest drives one full feed ingestion cycle for a profile:
// build query URLs, fetch and parse every feed, then upsert the results into
// the job collection keyed by URL.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"autoapply/pipeline-service/internal/feed"
	"autoapply/pipeline-service/internal/model"
	"autoapply/pipeline-service/internal/store"
)

// Result is the aggregate outcome of one ingestion cycle.
// Found counts extracted items before URL dedup; Inserted counts jobs that
// were new to the store (the rest were overwritten in place).
type Result struct {
	Sources  []string `json:"sources"`
	Found    int      `json:"found"`
	Inserted int      `json:"inserted"`
}

// Coordinator wires the fetcher and parser to the job collection.
type Coordinator struct {
	fetcher  *feed.Fetcher
	profiles store.ProfileStore
	jobs     store.JobStore
	rdb      *redis.Client
}

// NewCoordinator constructs a Coordinator. rdb may be nil; ingest events are
// then simply not published.
func NewCoordinator(fetcher *feed.Fetcher, profiles store.ProfileStore, jobs store.JobStore, rdb *redis.Client) *Coordinator {
	return &Coordinator{fetcher: fetcher, profiles: profiles, jobs: jobs, rdb: rdb}
}

// Run executes one ingestion cycle for the profile matching email (or the
// sole stored profile when email is empty). Feeds are fetched and parsed
// concurrently; upserts run on a single goroutine so writes per URL key are
// serialized. Per-item failures are logged and skipped — previously processed
// items stay committed and partial success is the intended outcome.
func (c *Coordinator) Run(ctx context.Context, email string) (*Result, error) {
	profile, err := store.ResolveProfile(ctx, c.profiles, email)
	if err != nil {
		return nil, err
	}

	urls := c.fetcher.BuildQueryURLs(profile)
	log.Printf("[ingest] Starting cycle for %s — %d feed URL(s)", profile.Email, len(urls))

	batches := make([][]model.Job, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	for i, queryURL := range urls {
		i, queryURL := i, queryURL
		g.Go(func() error {
			raw := c.fetcher.Fetch(gctx, queryURL)
			if raw == "" {
				return nil
			}
			batches[i] = feed.ParseItems(raw)
			return nil
		})
	}
	// Fetch failures are absorbed inside Fetch, so the group never errors.
	_ = g.Wait()

	result := &Result{Sources: urls}
	for _, batch := range batches {
		for _, job := range batch {
			result.Found++
			inserted, err := c.upsert(ctx, job)
			if err != nil {
				log.Printf("[ingest] Upsert %s failed: %v — continuing", job.URL, err)
				continue
			}
			if inserted {
				result.Inserted++
			}
		}
	}

	log.Printf("[ingest] Cycle for %s done — found=%d inserted=%d",
		profile.Email, result.Found, result.Inserted)
	c.publishIngested(ctx, profile.Email, result)
	return result, nil
}

// upsert overwrites the job stored under the same URL, preserving its
// identity and any matched_score (the parsed record carries neither); when no
// job exists for the URL a new document is inserted. Reports whether a new
// document was created.
func (c *Coordinator) upsert(ctx context.Context, job model.Job) (bool, error) {
	existing, err := c.jobs.FindByURL(ctx, job.URL)
	switch {
	case err == nil:
		if err := c.jobs.SetFields(ctx, existing.ID, job); err != nil {
			return false, fmt.Errorf("overwrite: %w", err)
		}
		return false, nil
	case errors.Is(err, store.ErrNotFound):
		if _, err := c.jobs.Insert(ctx, &job); err != nil {
			return false, fmt.Errorf("insert: %w", err)
		}
		return true, nil
	default:
		return false, fmt.Errorf("lookup: %w", err)
	}
}

// publishIngested notifies downstream consumers that the feed was refreshed.
// Non-fatal: failures are logged and ignored.
func (c *Coordinator) publishIngested(ctx context.Context, email string, result *Result) {
	if c.rdb == nil {
		return
	}
	event, _ := json.Marshal(map[string]any{
		"type":     "EVENT_JOBS_INGESTED",
		"email":    email,
		"found":    result.Found,
		"inserted": result.Inserted,
	})
	if err := c.rdb.Publish(ctx, "EVENT_JOBS_INGESTED", event).Err(); err != nil {
		slog.Warn("publish EVENT_JOBS_INGESTED failed", "err", err)
	}
}
