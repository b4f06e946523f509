// Package api implements the HTTP handlers for the pipeline service.
//
// Routes:
//
//	POST /profile        → upsert the user profile (keyed by email)
//	GET  /profile        → fetch profile by ?email= or the sole profile
//	POST /ingest/indeed  → run one feed ingestion cycle
//	POST /match          → score all jobs, return the top-N ranked
//	POST /apply          → record an application for a job
//	GET  /jobs           → list stored jobs by minimum score
//	GET  /applications   → list recorded applications, newest first
//
// Field names in request and response bodies are the wire contract; they
// mirror the stored document fields exactly.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"autoapply/pipeline-service/internal/apply"
	"autoapply/pipeline-service/internal/ingest"
	"autoapply/pipeline-service/internal/match"
	"autoapply/pipeline-service/internal/model"
	"autoapply/pipeline-service/internal/store"
)

const defaultTopN = 50

// Handler holds shared dependencies.
type Handler struct {
	store    *store.Store
	ingester *ingest.Coordinator
	scorer   *match.Scorer
	tracker  *apply.Tracker
}

// NewHandler returns a configured Handler.
func NewHandler(st *store.Store, ingester *ingest.Coordinator, scorer *match.Scorer, tracker *apply.Tracker) *Handler {
	return &Handler{store: st, ingester: ingester, scorer: scorer, tracker: tracker}
}

// RegisterRoutes mounts all pipeline-service routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/profile", h.handleProfile)
	mux.HandleFunc("/ingest/indeed", h.handleIngest)
	mux.HandleFunc("/match", h.handleMatch)
	mux.HandleFunc("/apply", h.handleApply)
	mux.HandleFunc("/jobs", h.handleJobs)
	mux.HandleFunc("/applications", h.handleApplications)
}

// ─── profile ─────────────────────────────────────────────────────────────────

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.upsertProfile(w, r)
	case http.MethodGet:
		h.getProfile(w, r)
	default:
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) upsertProfile(w http.ResponseWriter, r *http.Request) {
	// remote_ok defaults to true when the payload omits it.
	payload := model.Profile{RemoteOK: true}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if payload.Email == "" || payload.FullName == "" {
		jsonError(w, "full_name and email are required", http.StatusBadRequest)
		return
	}
	payload.ID = ""

	stored, err := h.store.Profiles.Upsert(r.Context(), &payload)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	jsonOK(w, stored)
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := store.ResolveProfile(r.Context(), h.store.Profiles, r.URL.Query().Get("email"))
	if err != nil {
		h.writeErr(w, err)
		return
	}
	jsonOK(w, profile)
}

// ─── ingestion ───────────────────────────────────────────────────────────────

func (h *Handler) handleIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	result, err := h.ingester.Run(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		h.writeErr(w, err)
		return
	}
	jsonOK(w, result)
}

// ─── matching ────────────────────────────────────────────────────────────────

func (h *Handler) handleMatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req := struct {
		Email string `json:"email"`
		TopN  int    `json:"top_n"`
	}{TopN: defaultTopN}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonError(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
	}

	result, err := h.scorer.Rank(r.Context(), req.Email, req.TopN)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	jsonOK(w, result)
}

// ─── applications ────────────────────────────────────────────────────────────

func (h *Handler) handleApply(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		JobID string `json:"job_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.JobID == "" {
		jsonError(w, "job_id is required", http.StatusBadRequest)
		return
	}

	receipt, err := h.tracker.Queue(r.Context(), req.JobID)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	jsonOK(w, receipt)
}

func (h *Handler) handleApplications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	apps, err := h.store.Applications.List(r.Context())
	if err != nil {
		h.writeErr(w, err)
		return
	}
	jsonOK(w, map[string]any{"count": len(apps), "applications": apps})
}

// ─── jobs ────────────────────────────────────────────────────────────────────

func (h *Handler) handleJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	minScore := 0.0
	if s := r.URL.Query().Get("min_score"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			jsonError(w, "min_score must be a number", http.StatusBadRequest)
			return
		}
		minScore = v
	}
	limit := defaultTopN
	if s := r.URL.Query().Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			jsonError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = v
	}

	jobs, err := h.store.Jobs.ListByMinScore(r.Context(), minScore, limit)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	jsonOK(w, map[string]any{"count": len(jobs), "jobs": jobs})
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// writeErr maps service errors onto HTTP statuses: missing documents → 404,
// validation failures → 400, everything else → 500.
func (h *Handler) writeErr(w http.ResponseWriter, err error) {
	var vErr *apply.ValidationError
	switch {
	case errors.Is(err, store.ErrNotFound):
		jsonError(w, "not found", http.StatusNotFound)
	case errors.As(err, &vErr):
		jsonError(w, vErr.Msg, http.StatusBadRequest)
	default:
		log.Printf("[api] Internal error: %v", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
	}
}

func jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[api] Response encode error: %v", err)
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
