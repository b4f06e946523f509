// Package match scores stored jobs against the profile and ranks them.
//
// The score is deliberately transparent: an additive, weighted lexical
// overlap between the job text and the profile's titles, skills and CV.
// Changing the weights or the tokenizer changes system behaviour and is a
// breaking change.
package match

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strings"

	"autoapply/pipeline-service/internal/model"
	"autoapply/pipeline-service/internal/store"
	"autoapply/pipeline-service/internal/textmatch"
)

const (
	titleWeight = 2.0
	skillWeight = 1.5
	cvWeight    = 0.2
)

// Result is the ranked outcome of one scoring pass.
type Result struct {
	Count int         `json:"count"`
	Jobs  []model.Job `json:"jobs"`
}

// Scorer computes and persists relevance scores.
type Scorer struct {
	profiles store.ProfileStore
	jobs     store.JobStore
}

// NewScorer constructs a Scorer.
func NewScorer(profiles store.ProfileStore, jobs store.JobStore) *Scorer {
	return &Scorer{profiles: profiles, jobs: jobs}
}

// Rank scores every stored job against the profile matching email (or the
// sole stored profile when email is empty), persists each score, and returns
// the topN jobs by score descending. topN <= 0 returns all jobs. Ordering is
// stable over the store snapshot, so a fixed store yields a fixed ranking.
// A failed score write is logged and does not abort the pass.
func (s *Scorer) Rank(ctx context.Context, email string, topN int) (*Result, error) {
	profile, err := store.ResolveProfile(ctx, s.profiles, email)
	if err != nil {
		return nil, err
	}

	titleSet := textmatch.Set(strings.Join(profile.TargetTitles, " "))
	skillSet := textmatch.Set(strings.Join(profile.Skills, " "))
	cvSet := textmatch.Set(profile.CVText)

	jobs, err := s.jobs.List(ctx)
	if err != nil {
		return nil, err
	}

	for i := range jobs {
		score := Score(&jobs[i], titleSet, skillSet, cvSet)
		jobs[i].MatchedScore = &score
		if err := s.jobs.SetScore(ctx, jobs[i].ID, score); err != nil {
			slog.Warn("persist matched_score failed", "jobId", jobs[i].ID, "err", err)
		}
	}

	sort.SliceStable(jobs, func(i, j int) bool {
		return *jobs[i].MatchedScore > *jobs[j].MatchedScore
	})
	if topN > 0 && len(jobs) > topN {
		jobs = jobs[:topN]
	}
	return &Result{Count: len(jobs), Jobs: jobs}, nil
}

// Score computes the weighted token-overlap score of one job against the
// profile token sets, rounded to two decimal places. A term whose profile
// side is empty contributes exactly zero.
func Score(j *model.Job, titleSet, skillSet, cvSet map[string]struct{}) float64 {
	jobSet := textmatch.Set(strings.Join([]string{
		j.Title,
		strValue(j.Company),
		strValue(j.Description),
	}, " "))

	score := titleWeight*float64(textmatch.Overlap(jobSet, titleSet)) +
		skillWeight*float64(textmatch.Overlap(jobSet, skillSet)) +
		cvWeight*float64(textmatch.Overlap(jobSet, cvSet))
	return math.Round(score*100) / 100
}

func strValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
