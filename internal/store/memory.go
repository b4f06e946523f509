package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"autoapply/pipeline-service/internal/model"
)

// NewMemory returns a Store holding documents in process memory. It mirrors
// the Postgres implementation's semantics (insertion-order listing, partial
// field merge) and backs the package tests; nothing is persisted.
func NewMemory() *Store {
	return &Store{
		Profiles:     &memProfiles{},
		Jobs:         &memJobs{},
		Applications: &memApplications{},
	}
}

// ─── profile ─────────────────────────────────────────────────────────────────

type memProfiles struct {
	mu       sync.Mutex
	profiles []model.Profile
}

func (s *memProfiles) FindByEmail(_ context.Context, email string) (*model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.profiles {
		if s.profiles[i].Email == email {
			p := s.profiles[i]
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memProfiles) FindFirst(_ context.Context) (*model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.profiles) == 0 {
		return nil, ErrNotFound
	}
	p := s.profiles[0]
	return &p, nil
}

func (s *memProfiles) Upsert(_ context.Context, p *model.Profile) (*model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.profiles {
		if s.profiles[i].Email == p.Email {
			stored := *p
			stored.ID = s.profiles[i].ID
			s.profiles[i] = stored
			return &stored, nil
		}
	}
	stored := *p
	stored.ID = uuid.NewString()
	s.profiles = append(s.profiles, stored)
	return &stored, nil
}

// ─── job ─────────────────────────────────────────────────────────────────────

type memJobs struct {
	mu   sync.Mutex
	jobs []model.Job
}

func (s *memJobs) FindByID(_ context.Context, id string) (*model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.jobs {
		if s.jobs[i].ID == id {
			j := s.jobs[i]
			return &j, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memJobs) FindByURL(_ context.Context, url string) (*model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.jobs {
		if s.jobs[i].URL == url {
			j := s.jobs[i]
			return &j, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memJobs) List(_ context.Context) ([]model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Job, len(s.jobs))
	copy(out, s.jobs)
	return out, nil
}

func (s *memJobs) ListByMinScore(_ context.Context, minScore float64, limit int) ([]model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Job, 0)
	for _, j := range s.jobs {
		score := 0.0
		if j.MatchedScore != nil {
			score = *j.MatchedScore
		}
		if score >= minScore {
			out = append(out, j)
		}
	}
	sort.SliceStable(out, func(i, k int) bool {
		var a, b float64
		if out[i].MatchedScore != nil {
			a = *out[i].MatchedScore
		}
		if out[k].MatchedScore != nil {
			b = *out[k].MatchedScore
		}
		return a > b
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memJobs) Insert(_ context.Context, j *model.Job) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *j
	stored.ID = uuid.NewString()
	s.jobs = append(s.jobs, stored)
	return stored.ID, nil
}

func (s *memJobs) SetFields(_ context.Context, id string, fields any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.jobs {
		if s.jobs[i].ID == id {
			merged, err := mergeFields(&s.jobs[i], fields)
			if err != nil {
				return err
			}
			merged.ID = id
			s.jobs[i] = *merged
			return nil
		}
	}
	return ErrNotFound
}

func (s *memJobs) SetScore(_ context.Context, id string, score float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.jobs {
		if s.jobs[i].ID == id {
			v := score
			s.jobs[i].MatchedScore = &v
			return nil
		}
	}
	return ErrNotFound
}

// mergeFields applies JSON partial-set semantics: keys present in the encoded
// fields overwrite the stored document, everything else is preserved.
func mergeFields(current *model.Job, fields any) (*model.Job, error) {
	curRaw, err := json.Marshal(current)
	if err != nil {
		return nil, fmt.Errorf("doc marshal: %w", err)
	}
	setRaw, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("fields marshal: %w", err)
	}

	doc := map[string]json.RawMessage{}
	if err := json.Unmarshal(curRaw, &doc); err != nil {
		return nil, fmt.Errorf("doc unmarshal: %w", err)
	}
	set := map[string]json.RawMessage{}
	if err := json.Unmarshal(setRaw, &set); err != nil {
		return nil, fmt.Errorf("fields unmarshal: %w", err)
	}
	for k, v := range set {
		doc[k] = v
	}

	mergedRaw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("merged marshal: %w", err)
	}
	var merged model.Job
	if err := json.Unmarshal(mergedRaw, &merged); err != nil {
		return nil, fmt.Errorf("merged unmarshal: %w", err)
	}
	return &merged, nil
}

// ─── application ─────────────────────────────────────────────────────────────

type memApplications struct {
	mu   sync.Mutex
	apps []model.Application
}

func (s *memApplications) Insert(_ context.Context, a *model.Application) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *a
	stored.ID = uuid.NewString()
	s.apps = append(s.apps, stored)
	return stored.ID, nil
}

func (s *memApplications) List(_ context.Context) ([]model.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Application, 0, len(s.apps))
	for i := len(s.apps) - 1; i >= 0; i-- {
		out = append(out, s.apps[i])
	}
	return out, nil
}
