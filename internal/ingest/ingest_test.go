package ingest_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"autoapply/pipeline-service/internal/feed"
	"autoapply/pipeline-service/internal/ingest"
	"autoapply/pipeline-service/internal/model"
	"autoapply/pipeline-service/internal/store"
)

func seedProfile(t *testing.T, st *store.Store, p model.Profile) {
	t.Helper()
	if p.Email == "" {
		p.Email = "user@example.com"
	}
	if p.FullName == "" {
		p.FullName = "Test User"
	}
	if _, err := st.Profiles.Upsert(context.Background(), &p); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
}

func feedItem(title, link, desc string) string {
	return fmt.Sprintf("<item><title>%s</title><link>%s</link><description>%s</description></item>",
		title, link, desc)
}

func newCoordinator(st *store.Store, baseURL string) *ingest.Coordinator {
	return ingest.NewCoordinator(feed.NewFetcher(baseURL), st.Profiles, st.Jobs, nil)
}

func TestRun_InsertsParsedJobs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, feedItem("Nurse - Acme Health - Dubai", "https://jobs/1", "ward nurse"))
	}))
	defer srv.Close()

	st := store.NewMemory()
	seedProfile(t, st, model.Profile{TargetTitles: []string{"Nurse"}, Locations: []string{"Dubai"}})

	result, err := newCoordinator(st, srv.URL).Run(context.Background(), "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Sources) != 1 || result.Found != 1 || result.Inserted != 1 {
		t.Errorf("result = %+v, want 1 source / 1 found / 1 inserted", result)
	}

	job, err := st.Jobs.FindByURL(context.Background(), "https://jobs/1")
	if err != nil {
		t.Fatalf("FindByURL: %v", err)
	}
	if job.Title != "Nurse" || job.Company == nil || *job.Company != "Acme Health" {
		t.Errorf("stored job = %+v", job)
	}
}

// Ingesting the same URL twice keeps one job carrying the second description.
func TestRun_DedupByURL(t *testing.T) {
	desc := "first version"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, feedItem("Nurse", "https://jobs/1", desc))
	}))
	defer srv.Close()

	st := store.NewMemory()
	seedProfile(t, st, model.Profile{TargetTitles: []string{"Nurse"}, Locations: []string{"Dubai"}})
	coord := newCoordinator(st, srv.URL)

	if _, err := coord.Run(context.Background(), ""); err != nil {
		t.Fatalf("first Run: %v", err)
	}

	desc = "second version"
	result, err := coord.Run(context.Background(), "")
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if result.Found != 1 || result.Inserted != 0 {
		t.Errorf("second run result = %+v, want found=1 inserted=0", result)
	}

	jobs, _ := st.Jobs.List(context.Background())
	if len(jobs) != 1 {
		t.Fatalf("stored %d jobs, want 1", len(jobs))
	}
	if jobs[0].Description == nil || *jobs[0].Description != "second version" {
		t.Errorf("Description = %v, want \"second version\"", jobs[0].Description)
	}
}

// Re-ingestion overwrites fields but must not clobber a persisted score.
func TestRun_PreservesMatchedScore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, feedItem("Nurse", "https://jobs/1", "ward nurse"))
	}))
	defer srv.Close()

	st := store.NewMemory()
	seedProfile(t, st, model.Profile{TargetTitles: []string{"Nurse"}, Locations: []string{"Dubai"}})
	coord := newCoordinator(st, srv.URL)

	if _, err := coord.Run(context.Background(), ""); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	job, _ := st.Jobs.FindByURL(context.Background(), "https://jobs/1")
	if err := st.Jobs.SetScore(context.Background(), job.ID, 4.2); err != nil {
		t.Fatalf("SetScore: %v", err)
	}

	if _, err := coord.Run(context.Background(), ""); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	job, _ = st.Jobs.FindByURL(context.Background(), "https://jobs/1")
	if job.MatchedScore == nil || *job.MatchedScore != 4.2 {
		t.Errorf("MatchedScore after re-ingest = %v, want 4.2", job.MatchedScore)
	}
	if job.ID == "" {
		t.Error("job identity lost on re-ingest")
	}
}

// A failing feed URL contributes nothing; the cycle still succeeds.
func TestRun_PartialFeedOutage(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Query().Get("q") == "Broken" {
			http.Error(w, "upstream down", http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, feedItem("Nurse", "https://jobs/1", "ok"))
	}))
	defer srv.Close()

	st := store.NewMemory()
	seedProfile(t, st, model.Profile{
		TargetTitles: []string{"Nurse", "Broken"},
		Locations:    []string{"Dubai"},
	})

	result, err := newCoordinator(st, srv.URL).Run(context.Background(), "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("feed called %d times, want 2", n)
	}
	if len(result.Sources) != 2 || result.Found != 1 || result.Inserted != 1 {
		t.Errorf("result = %+v, want 2 sources / 1 found / 1 inserted", result)
	}
}

func TestRun_NoProfile(t *testing.T) {
	st := store.NewMemory()
	_, err := newCoordinator(st, "https://feed.example/rss").Run(context.Background(), "")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Run without profile = %v, want ErrNotFound", err)
	}
}

func TestRun_ProfileByEmail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "")
	}))
	defer srv.Close()

	st := store.NewMemory()
	seedProfile(t, st, model.Profile{Email: "a@example.com", TargetTitles: []string{"A"}, Locations: []string{"X"}})
	seedProfile(t, st, model.Profile{Email: "b@example.com", TargetTitles: []string{"B"}, Locations: []string{"X"}})
	coord := newCoordinator(st, srv.URL)

	result, err := coord.Run(context.Background(), "b@example.com")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := srv.URL + "?l=X&q=B"
	if len(result.Sources) != 1 || result.Sources[0] != want {
		t.Errorf("Sources = %v, want [%s]", result.Sources, want)
	}

	if _, err := coord.Run(context.Background(), "missing@example.com"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Run(unknown email) = %v, want ErrNotFound", err)
	}
}
