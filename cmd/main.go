// autoapply-pipeline-service
//
// Ingestion–normalization–scoring pipeline for job postings:
//   - ingests the external feed for the stored profile (dedup by URL)
//   - scores every job against the profile by weighted token overlap
//   - classifies apply channels and records application state
//
// A cron collaborator refreshes the feed periodically; queued applications
// are handed to the downstream submission executor via Redis.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"autoapply/pipeline-service/internal/api"
	"autoapply/pipeline-service/internal/apply"
	"autoapply/pipeline-service/internal/config"
	"autoapply/pipeline-service/internal/db"
	"autoapply/pipeline-service/internal/feed"
	"autoapply/pipeline-service/internal/ingest"
	"autoapply/pipeline-service/internal/match"
	"autoapply/pipeline-service/internal/scheduler"
	"autoapply/pipeline-service/internal/store"
)

const version = "1.0.0"

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[pipeline-service] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	log.Println("[pipeline-service] Connecting to PostgreSQL…")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[pipeline-service] PostgreSQL: %v", err)
	}
	defer pool.Close()
	log.Println("[pipeline-service] PostgreSQL connected ✓")

	// ── Redis ────────────────────────────────────────────────────────────────
	log.Println("[pipeline-service] Connecting to Redis…")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("[pipeline-service] Redis: %v", err)
	}
	defer rdb.Close()
	log.Println("[pipeline-service] Redis connected ✓")

	// ── Services ─────────────────────────────────────────────────────────────
	st := store.NewPostgres(pool)
	fetcher := feed.NewFetcher(cfg.FeedBaseURL)
	ingester := ingest.NewCoordinator(fetcher, st.Profiles, st.Jobs, rdb)
	scorer := match.NewScorer(st.Profiles, st.Jobs)
	tracker := apply.NewTracker(st.Jobs, st.Applications, rdb)

	// ── Scheduler ────────────────────────────────────────────────────────────
	sched := scheduler.New(ingester, scorer, cfg.IngestIntervalHours)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("[pipeline-service] Scheduler: %v", err)
	}
	defer sched.Stop()

	// ── HTTP server ──────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)

	h := api.NewHandler(st, ingester, scorer, tracker)
	h.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Printf("[pipeline-service] v%s listening on :%s", version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[pipeline-service] HTTP server error: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[pipeline-service] Shutting down…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[pipeline-service] Shutdown error: %v", err)
	}
	log.Println("[pipeline-service] Stopped.")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "pipeline-service",
		"version": version,
	})
}
