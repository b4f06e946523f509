// Package model defines the entities shared across the pipeline service.
// JSON tags double as the wire contract and the document-store field names.
package model

// Profile is the single user's search configuration. Collection "profile",
// upserted by email.
type Profile struct {
	ID           string   `json:"_id,omitempty"`
	FullName     string   `json:"full_name"`
	Email        string   `json:"email"`
	Phone        *string  `json:"phone,omitempty"`
	Locations    []string `json:"locations"`
	RemoteOK     bool     `json:"remote_ok"`
	TargetTitles []string `json:"target_titles"`
	Skills       []string `json:"skills"`
	MinSalaryAED *int     `json:"min_salary_aed,omitempty"`
	CVText       string   `json:"cv_text"`
	LinkedIn     *string  `json:"linkedin,omitempty"`
	Website      *string  `json:"website,omitempty"`
}

// Job is a normalised posting. Collection "job", deduplicated by URL.
//
// MatchedScore is omitted from JSON when unset so that re-ingesting a job
// (a partial-set update of the stored document) never clobbers a score
// written by the scorer.
type Job struct {
	ID           string   `json:"_id,omitempty"`
	Source       string   `json:"source"`
	SourceID     *string  `json:"source_id"`
	Title        string   `json:"title"`
	Company      *string  `json:"company"`
	Location     *string  `json:"location"`
	URL          string   `json:"url"`
	Description  *string  `json:"description"`
	PostedAt     *string  `json:"posted_at"`
	Tags         []string `json:"tags"`
	MatchedScore *float64 `json:"matched_score,omitempty"`
}

// Application is a tracked outreach record. Collection "application".
// Job fields are snapshotted at creation time and never synced afterwards.
type Application struct {
	ID           string  `json:"_id,omitempty"`
	JobID        string  `json:"job_id"`
	JobURL       string  `json:"job_url"`
	JobTitle     string  `json:"job_title"`
	Company      *string `json:"company"`
	ApplyChannel string  `json:"apply_channel"`
	Status       string  `json:"status"`
	TailoredCV   *string `json:"tailored_cv,omitempty"`
	CoverLetter  *string `json:"cover_letter,omitempty"`
	Notes        *string `json:"notes,omitempty"`
}
