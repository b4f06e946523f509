// Package store exposes the document collections backing the pipeline:
// profile, job and application. Identity is an opaque string id assigned on
// insert. The core packages depend only on the interfaces defined here.
package store

import (
	"context"
	"errors"

	"autoapply/pipeline-service/internal/model"
)

// ErrNotFound is returned when a lookup matches no document.
var ErrNotFound = errors.New("document not found")

// ProfileStore holds the user search configuration.
// Upsert is keyed by email: create when absent, full field replace when present.
type ProfileStore interface {
	FindByEmail(ctx context.Context, email string) (*model.Profile, error)
	// FindFirst returns the oldest stored profile, for single-user deployments
	// where callers omit the email.
	FindFirst(ctx context.Context) (*model.Profile, error)
	Upsert(ctx context.Context, p *model.Profile) (*model.Profile, error)
}

// JobStore holds normalised postings, deduplicated by URL.
type JobStore interface {
	FindByID(ctx context.Context, id string) (*model.Job, error)
	FindByURL(ctx context.Context, url string) (*model.Job, error)
	// List returns every stored job in insertion order.
	List(ctx context.Context) ([]model.Job, error)
	// ListByMinScore returns up to limit jobs with matched_score >= minScore,
	// best first.
	ListByMinScore(ctx context.Context, minScore float64, limit int) ([]model.Job, error)
	Insert(ctx context.Context, j *model.Job) (string, error)
	// SetFields merges the JSON encoding of fields into the stored document,
	// leaving absent keys (and the identity) untouched.
	SetFields(ctx context.Context, id string, fields any) error
	SetScore(ctx context.Context, id string, score float64) error
}

// ApplicationStore holds immutable outreach records.
type ApplicationStore interface {
	Insert(ctx context.Context, a *model.Application) (string, error)
	// List returns all applications, newest first.
	List(ctx context.Context) ([]model.Application, error)
}

// Store bundles the three collections for injection into services.
type Store struct {
	Profiles     ProfileStore
	Jobs         JobStore
	Applications ApplicationStore
}

// ResolveProfile returns the profile matching email, or the sole stored
// profile when email is empty. Returns ErrNotFound when nothing matches.
func ResolveProfile(ctx context.Context, profiles ProfileStore, email string) (*model.Profile, error) {
	if email != "" {
		return profiles.FindByEmail(ctx, email)
	}
	return profiles.FindFirst(ctx)
}
