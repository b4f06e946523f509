package feed

import (
	"regexp"
	"strings"

	"autoapply/pipeline-service/internal/model"
)

// The feed is not guaranteed to be well-formed XML, so items are extracted by
// tolerant tag-delimited scanning rather than a strict parse. A document with
// zero <item> blocks is a valid, empty feed.
var (
	itemPattern    = regexp.MustCompile(`(?is)<item>(.*?)</item>`)
	titlePattern   = regexp.MustCompile(`(?is)<title>(.*?)</title>`)
	linkPattern    = regexp.MustCompile(`(?is)<link>(.*?)</link>`)
	descPattern    = regexp.MustCompile(`(?is)<description>(.*?)</description>`)
	pubDatePattern = regexp.MustCompile(`(?is)<pubDate>(.*?)</pubDate>`)
	markupPattern  = regexp.MustCompile(`(?s)<.*?>`)
)

const titleSeparator = " - "

// ParseItems extracts provisional job records from one raw feed document.
// Records carry source "indeed", no source id, no score and empty tags;
// location is not present in the feed format and stays unset.
func ParseItems(raw string) []model.Job {
	var jobs []model.Job
	for _, m := range itemPattern.FindAllStringSubmatch(raw, -1) {
		block := m[1]

		title, company := SplitTitle(extractTag(titlePattern, block))
		job := model.Job{
			Source: "indeed",
			Title:  title,
			URL:    extractTag(linkPattern, block),
			Tags:   []string{},
		}
		if company != "" {
			job.Company = &company
		}
		if desc := extractTag(descPattern, block); desc != "" {
			job.Description = &desc
		}
		if pub := extractTag(pubDatePattern, block); pub != "" {
			job.PostedAt = &pub
		}
		jobs = append(jobs, job)
	}
	return jobs
}

// SplitTitle handles the feed's "<JobTitle> - <Company> - <Location...>"
// convention: with two or more hyphen-separated segments the first is the
// title and the second the company; otherwise the whole string is the title.
func SplitTitle(raw string) (title, company string) {
	parts := strings.Split(raw, titleSeparator)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) >= 2 {
		return parts[0], parts[1]
	}
	return strings.TrimSpace(raw), ""
}

// extractTag returns the trimmed text of the first occurrence of a tag,
// with any nested markup stripped.
func extractTag(pattern *regexp.Regexp, block string) string {
	m := pattern.FindStringSubmatch(block)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(markupPattern.ReplaceAllString(m[1], ""))
}
