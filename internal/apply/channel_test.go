package apply_test

import (
	"testing"

	"autoapply/pipeline-service/internal/apply"
)

// ── DetectChannel / InitialStatus ──────────────────────────────────────────

func TestDetectChannel(t *testing.T) {
	cases := []struct {
		url     string
		channel apply.Channel
		status  apply.Status
	}{
		{"https://jobs.lever.co/acme/123", apply.ChannelLever, apply.StatusQueued},
		{"https://boards.greenhouse.io/acme/jobs/5", apply.ChannelGreenhouse, apply.StatusQueued},
		{"https://apply.workable.com/acme/j/42", apply.ChannelWorkable, apply.StatusQueued},
		{"https://ae.indeed.com/viewjob?jk=1", apply.ChannelIndeed, apply.StatusManualRequired},
		{"https://acme.com/careers/42", apply.ChannelOther, apply.StatusManualRequired},
		{"", apply.ChannelOther, apply.StatusManualRequired},
	}
	for _, c := range cases {
		ch := apply.DetectChannel(c.url)
		if ch != c.channel {
			t.Errorf("DetectChannel(%q) = %q, want %q", c.url, ch, c.channel)
		}
		if st := apply.InitialStatus(ch); st != c.status {
			t.Errorf("InitialStatus(%q) = %q, want %q", ch, st, c.status)
		}
	}
}

// The classification order is fixed: greenhouse.io wins over a URL that also
// happens to contain "indeed".
func TestDetectChannel_FirstMatchWins(t *testing.T) {
	url := "https://boards.greenhouse.io/indeed/jobs/7"
	if ch := apply.DetectChannel(url); ch != apply.ChannelGreenhouse {
		t.Errorf("DetectChannel(%q) = %q, want greenhouse", url, ch)
	}
}

func TestInitialStatus_DownstreamStatusesNeverInitial(t *testing.T) {
	for _, ch := range []apply.Channel{
		apply.ChannelLever, apply.ChannelGreenhouse, apply.ChannelWorkable,
		apply.ChannelIndeed, apply.ChannelOther,
	} {
		st := apply.InitialStatus(ch)
		if st == apply.StatusSubmitted || st == apply.StatusFailed {
			t.Errorf("InitialStatus(%q) = %q: submitted/failed are downstream-only", ch, st)
		}
	}
}
