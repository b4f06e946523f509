// Package apply classifies a job's apply channel and records outreach state.
//
// The state machine here is single-transition and terminal on create: an
// application is born queued or manual_required from channel classification
// and is never mutated again by this service. Moving to submitted or failed
// belongs to the downstream submission executor fed by the Redis events.
package apply

import "strings"

// Channel identifies the downstream application-submission system a job URL
// belongs to.
type Channel string

const (
	ChannelLever      Channel = "lever"
	ChannelGreenhouse Channel = "greenhouse"
	ChannelWorkable   Channel = "workable"
	ChannelIndeed     Channel = "indeed"
	ChannelOther      Channel = "other"
)

// Status values mirror the application status enum.
type Status string

const (
	StatusQueued         Status = "queued"
	StatusManualRequired Status = "manual_required"
	// Set by the downstream submission executor, never by this service.
	StatusSubmitted Status = "submitted"
	StatusFailed    Status = "failed"
)

// DetectChannel classifies an apply URL by substring match.
// The checks run in a fixed order and the first match wins.
func DetectChannel(url string) Channel {
	switch {
	case strings.Contains(url, "greenhouse.io"):
		return ChannelGreenhouse
	case strings.Contains(url, "jobs.lever.co"):
		return ChannelLever
	case strings.Contains(url, "workable.com"):
		return ChannelWorkable
	case strings.Contains(url, "indeed"):
		return ChannelIndeed
	}
	return ChannelOther
}

// InitialStatus returns the status a new application starts in: queued for
// machine-submittable channels, manual_required for everything else.
func InitialStatus(ch Channel) Status {
	switch ch {
	case ChannelLever, ChannelGreenhouse, ChannelWorkable:
		return StatusQueued
	}
	return StatusManualRequired
}
