package feed_test

import (
	"testing"

	"autoapply/pipeline-service/internal/feed"
)

// ── ParseItems ─────────────────────────────────────────────────────────────

func TestParseItems_EmptyFeed(t *testing.T) {
	bodies := []string{
		"",
		"<?xml version=\"1.0\"?><rss><channel><title>feed</title></channel></rss>",
		"this is not markup at all",
	}
	for _, body := range bodies {
		if got := feed.ParseItems(body); len(got) != 0 {
			t.Errorf("ParseItems(%q) = %d items, want 0", body, len(got))
		}
	}
}

func TestParseItems_SingleItem(t *testing.T) {
	body := `<rss><channel>
		<item>
			<title>Nurse - Acme Health - Dubai</title>
			<link>https://ae.indeed.com/viewjob?jk=abc123</link>
			<description>Ward nurse, <b>full time</b>.</description>
			<pubDate>Mon, 05 Jan 2026 08:00:00 GMT</pubDate>
		</item>
	</channel></rss>`

	jobs := feed.ParseItems(body)
	if len(jobs) != 1 {
		t.Fatalf("ParseItems = %d items, want 1", len(jobs))
	}

	j := jobs[0]
	if j.Source != "indeed" {
		t.Errorf("Source = %q, want \"indeed\"", j.Source)
	}
	if j.Title != "Nurse" {
		t.Errorf("Title = %q, want \"Nurse\"", j.Title)
	}
	if j.Company == nil || *j.Company != "Acme Health" {
		t.Errorf("Company = %v, want \"Acme Health\"", j.Company)
	}
	if j.URL != "https://ae.indeed.com/viewjob?jk=abc123" {
		t.Errorf("URL = %q", j.URL)
	}
	if j.Description == nil || *j.Description != "Ward nurse, full time." {
		t.Errorf("Description = %v, want markup stripped", j.Description)
	}
	if j.PostedAt == nil || *j.PostedAt != "Mon, 05 Jan 2026 08:00:00 GMT" {
		t.Errorf("PostedAt = %v", j.PostedAt)
	}
	if j.SourceID != nil {
		t.Errorf("SourceID = %v, want nil", j.SourceID)
	}
	if j.Location != nil {
		t.Errorf("Location = %v, want nil", j.Location)
	}
	if j.MatchedScore != nil {
		t.Errorf("MatchedScore = %v, want nil", j.MatchedScore)
	}
	if j.Tags == nil || len(j.Tags) != 0 {
		t.Errorf("Tags = %v, want empty list", j.Tags)
	}
}

func TestParseItems_MultipleItems(t *testing.T) {
	body := `<item><title>One</title><link>https://x/1</link></item>
		<item><title>Two</title><link>https://x/2</link></item>
		<item><title>Three</title><link>https://x/3</link></item>`

	jobs := feed.ParseItems(body)
	if len(jobs) != 3 {
		t.Fatalf("ParseItems = %d items, want 3", len(jobs))
	}
	if jobs[0].Title != "One" || jobs[1].Title != "Two" || jobs[2].Title != "Three" {
		t.Errorf("item order not preserved: %q %q %q", jobs[0].Title, jobs[1].Title, jobs[2].Title)
	}
}

func TestParseItems_MissingFieldsAreUnset(t *testing.T) {
	jobs := feed.ParseItems(`<item><title>Bare Posting</title></item>`)
	if len(jobs) != 1 {
		t.Fatalf("ParseItems = %d items, want 1", len(jobs))
	}
	j := jobs[0]
	if j.Title != "Bare Posting" {
		t.Errorf("Title = %q", j.Title)
	}
	if j.URL != "" {
		t.Errorf("URL = %q, want empty", j.URL)
	}
	if j.Description != nil || j.PostedAt != nil || j.Company != nil {
		t.Errorf("optional fields should be unset: %+v", j)
	}
}

func TestParseItems_CaseInsensitiveTags(t *testing.T) {
	jobs := feed.ParseItems(`<ITEM><TITLE>Shouty</TITLE><LINK>https://x/4</LINK></ITEM>`)
	if len(jobs) != 1 {
		t.Fatalf("ParseItems = %d items, want 1", len(jobs))
	}
	if jobs[0].Title != "Shouty" || jobs[0].URL != "https://x/4" {
		t.Errorf("uppercase tags not handled: %+v", jobs[0])
	}
}

// ── SplitTitle ─────────────────────────────────────────────────────────────

func TestSplitTitle(t *testing.T) {
	cases := []struct {
		raw     string
		title   string
		company string
	}{
		{"Nurse - Acme Health - Dubai", "Nurse", "Acme Health"},
		{"Backend Engineer - Initech", "Backend Engineer", "Initech"},
		{"Just A Title", "Just A Title", ""},
		{"", "", ""},
		{"A - B - C - D", "A", "B"},
	}
	for _, c := range cases {
		title, company := feed.SplitTitle(c.raw)
		if title != c.title || company != c.company {
			t.Errorf("SplitTitle(%q) = (%q, %q), want (%q, %q)",
				c.raw, title, company, c.title, c.company)
		}
	}
}
