// Package scheduler wires up the cron job that periodically refreshes the
// feed and rescoring. The core operations stay request-driven; this is the
// periodic caller sitting above them.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"autoapply/pipeline-service/internal/ingest"
	"autoapply/pipeline-service/internal/match"
	"autoapply/pipeline-service/internal/store"
)

// Scheduler wraps robfig/cron and manages the refresh loop.
type Scheduler struct {
	cron     *cron.Cron
	ingester *ingest.Coordinator
	scorer   *match.Scorer
	spec     string // cron spec, e.g. "@every 6h"
}

// New creates a Scheduler that fires every intervalHours hours.
func New(ingester *ingest.Coordinator, scorer *match.Scorer, intervalHours int) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithLogger(cron.DefaultLogger)),
		ingester: ingester,
		scorer:   scorer,
		spec:     fmt.Sprintf("@every %dh", intervalHours),
	}
}

// Start registers the job and starts the scheduler. Also runs one refresh
// immediately so the feed is populated without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runRefresh(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[scheduler] Cron started — spec: %s", s.spec)

	// Run immediately on startup (non-blocking)
	go s.runRefresh(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[scheduler] Cron stopped")
}

// runRefresh ingests the feed for the stored profile and rescores all jobs.
func (s *Scheduler) runRefresh(ctx context.Context) {
	log.Println("[scheduler] Refresh cycle started")

	result, err := s.ingester.Run(ctx, "")
	if errors.Is(err, store.ErrNotFound) {
		log.Println("[scheduler] No profile yet — nothing to ingest")
		return
	}
	if err != nil {
		log.Printf("[scheduler] Ingest error: %v", err)
		return
	}
	log.Printf("[scheduler] Ingested — found=%d inserted=%d", result.Found, result.Inserted)

	ranked, err := s.scorer.Rank(ctx, "", 0)
	if err != nil {
		log.Printf("[scheduler] Rescore error: %v", err)
		return
	}
	log.Printf("[scheduler] Rescored %d job(s)", ranked.Count)

	log.Println("[scheduler] Refresh cycle complete")
}
