package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"autoapply/pipeline-service/internal/model"
)

// NewPostgres returns a Store backed by the JSONB collection tables
// (see migrations/001_init.sql). Each collection is one table with an
// id uuid primary key and a doc jsonb column; unique expression indexes on
// doc->>'email' (profile) and doc->>'url' (job) enforce the upsert keys.
func NewPostgres(pool *pgxpool.Pool) *Store {
	return &Store{
		Profiles:     &pgProfiles{pool: pool},
		Jobs:         &pgJobs{pool: pool},
		Applications: &pgApplications{pool: pool},
	}
}

// ─── profile ─────────────────────────────────────────────────────────────────

type pgProfiles struct {
	pool *pgxpool.Pool
}

func (s *pgProfiles) FindByEmail(ctx context.Context, email string) (*model.Profile, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id::text, doc FROM profile WHERE doc->>'email' = $1`, email)
	return scanProfile(row)
}

func (s *pgProfiles) FindFirst(ctx context.Context) (*model.Profile, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id::text, doc FROM profile ORDER BY created_at, id LIMIT 1`)
	return scanProfile(row)
}

func (s *pgProfiles) Upsert(ctx context.Context, p *model.Profile) (*model.Profile, error) {
	doc, err := marshalDoc(p, &p.ID)
	if err != nil {
		return nil, err
	}

	// Full field replace on conflict — the profile document is replaced, not
	// merged, so cleared optional fields do not linger.
	row := s.pool.QueryRow(ctx,
		`INSERT INTO profile (doc) VALUES ($1::jsonb)
		 ON CONFLICT ((doc->>'email')) DO UPDATE SET doc = EXCLUDED.doc
		 RETURNING id::text, doc`,
		doc)
	return scanProfile(row)
}

func scanProfile(row pgx.Row) (*model.Profile, error) {
	var (
		id  string
		doc []byte
	)
	if err := row.Scan(&id, &doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("profile scan: %w", err)
	}
	var p model.Profile
	if err := json.Unmarshal(doc, &p); err != nil {
		return nil, fmt.Errorf("profile doc unmarshal: %w", err)
	}
	p.ID = id
	return &p, nil
}

// ─── job ─────────────────────────────────────────────────────────────────────

type pgJobs struct {
	pool *pgxpool.Pool
}

func (s *pgJobs) FindByID(ctx context.Context, id string) (*model.Job, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id::text, doc FROM job WHERE id = $1::uuid`, id)
	return scanJob(row)
}

func (s *pgJobs) FindByURL(ctx context.Context, url string) (*model.Job, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id::text, doc FROM job WHERE doc->>'url' = $1`, url)
	return scanJob(row)
}

func (s *pgJobs) List(ctx context.Context) ([]model.Job, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id::text, doc FROM job ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("job list query: %w", err)
	}
	defer rows.Close()
	return collectJobs(rows)
}

func (s *pgJobs) ListByMinScore(ctx context.Context, minScore float64, limit int) ([]model.Job, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id::text, doc FROM job
		 WHERE COALESCE((doc->>'matched_score')::float8, 0) >= $1
		 ORDER BY (doc->>'matched_score')::float8 DESC NULLS LAST, created_at, id
		 LIMIT $2`,
		minScore, limit)
	if err != nil {
		return nil, fmt.Errorf("job list-by-score query: %w", err)
	}
	defer rows.Close()
	return collectJobs(rows)
}

func (s *pgJobs) Insert(ctx context.Context, j *model.Job) (string, error) {
	doc, err := marshalDoc(j, &j.ID)
	if err != nil {
		return "", err
	}
	var id string
	err = s.pool.QueryRow(ctx,
		`INSERT INTO job (doc) VALUES ($1::jsonb) RETURNING id::text`, doc).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("job insert: %w", err)
	}
	return id, nil
}

func (s *pgJobs) SetFields(ctx context.Context, id string, fields any) error {
	doc, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("job fields marshal: %w", err)
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE job SET doc = doc || $2::jsonb WHERE id = $1::uuid`, id, doc)
	if err != nil {
		return fmt.Errorf("job update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *pgJobs) SetScore(ctx context.Context, id string, score float64) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE job SET doc = doc || jsonb_build_object('matched_score', $2::float8)
		 WHERE id = $1::uuid`,
		id, score)
	if err != nil {
		return fmt.Errorf("job score update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanJob(row pgx.Row) (*model.Job, error) {
	var (
		id  string
		doc []byte
	)
	if err := row.Scan(&id, &doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("job scan: %w", err)
	}
	var j model.Job
	if err := json.Unmarshal(doc, &j); err != nil {
		return nil, fmt.Errorf("job doc unmarshal: %w", err)
	}
	j.ID = id
	return &j, nil
}

func collectJobs(rows pgx.Rows) ([]model.Job, error) {
	jobs := make([]model.Job, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *j)
	}
	return jobs, rows.Err()
}

// ─── application ─────────────────────────────────────────────────────────────

type pgApplications struct {
	pool *pgxpool.Pool
}

func (s *pgApplications) Insert(ctx context.Context, a *model.Application) (string, error) {
	doc, err := marshalDoc(a, &a.ID)
	if err != nil {
		return "", err
	}
	var id string
	err = s.pool.QueryRow(ctx,
		`INSERT INTO application (doc) VALUES ($1::jsonb) RETURNING id::text`, doc).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("application insert: %w", err)
	}
	return id, nil
}

func (s *pgApplications) List(ctx context.Context) ([]model.Application, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id::text, doc FROM application ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("application list query: %w", err)
	}
	defer rows.Close()

	apps := make([]model.Application, 0)
	for rows.Next() {
		var (
			id  string
			doc []byte
		)
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, fmt.Errorf("application scan: %w", err)
		}
		var a model.Application
		if err := json.Unmarshal(doc, &a); err != nil {
			return nil, fmt.Errorf("application doc unmarshal: %w", err)
		}
		a.ID = id
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

// marshalDoc encodes an entity for storage, blanking the identity field first
// so the id never leaks into the document body.
func marshalDoc(entity any, id *string) ([]byte, error) {
	saved := *id
	*id = ""
	doc, err := json.Marshal(entity)
	*id = saved
	if err != nil {
		return nil, fmt.Errorf("doc marshal: %w", err)
	}
	return doc, nil
}
