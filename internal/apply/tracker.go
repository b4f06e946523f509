package apply

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"autoapply/pipeline-service/internal/model"
	"autoapply/pipeline-service/internal/store"
)

// Tracker records one immutable application per "apply to job X" request.
type Tracker struct {
	jobs store.JobStore
	apps store.ApplicationStore
	rdb  *redis.Client
}

// NewTracker constructs a Tracker. rdb may be nil; submission events are then
// simply not published.
func NewTracker(jobs store.JobStore, apps store.ApplicationStore, rdb *redis.Client) *Tracker {
	return &Tracker{jobs: jobs, apps: apps, rdb: rdb}
}

// Receipt is returned to the caller after an application is recorded.
type Receipt struct {
	Message string  `json:"message"`
	Channel Channel `json:"channel"`
	Status  Status  `json:"status"`
}

// Queue classifies the job's apply URL, decides the initial status and
// records an application snapshotting the job's identity, URL, title and
// company as of now. Later job edits do not touch the snapshot.
// Returns a ValidationError for a malformed job id and store.ErrNotFound when
// no such job exists.
func (t *Tracker) Queue(ctx context.Context, jobID string) (*Receipt, error) {
	if _, err := uuid.Parse(jobID); err != nil {
		return nil, &ValidationError{Msg: "invalid job id format"}
	}

	job, err := t.jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	channel := DetectChannel(job.URL)
	status := InitialStatus(channel)

	app := model.Application{
		JobID:        job.ID,
		JobURL:       job.URL,
		JobTitle:     job.Title,
		Company:      job.Company,
		ApplyChannel: string(channel),
		Status:       string(status),
	}
	appID, err := t.apps.Insert(ctx, &app)
	if err != nil {
		return nil, fmt.Errorf("insert application: %w", err)
	}

	t.publishCreated(ctx, appID, &app)
	return &Receipt{Message: "Application queued", Channel: channel, Status: status}, nil
}

// publishCreated hands the new application to the downstream submission
// executor: queued applications go out as CMD_SUBMIT_APPLICATION, manual ones
// as EVENT_MANUAL_REVIEW. Non-fatal: failures are logged and ignored.
func (t *Tracker) publishCreated(ctx context.Context, appID string, app *model.Application) {
	if t.rdb == nil {
		return
	}
	topic := "CMD_SUBMIT_APPLICATION"
	if Status(app.Status) != StatusQueued {
		topic = "EVENT_MANUAL_REVIEW"
	}
	event, _ := json.Marshal(map[string]string{
		"type":          topic,
		"applicationId": appID,
		"jobId":         app.JobID,
		"channel":       app.ApplyChannel,
	})
	if err := t.rdb.Publish(ctx, topic, event).Err(); err != nil {
		slog.Warn("publish application event failed", "topic", topic, "err", err)
	}
}

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }
