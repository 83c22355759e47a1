package scraper

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/Dicode-Tech/dicode-app-jobseeker/internal/model"
)

// Defaults substituted for partially-missing upstream fields.
const (
	unknownTitle   = "Unknown Position"
	unknownCompany = "Unknown Company"
)

// NormalizeJobType maps a source's native employment-type string onto the
// canonical job type vocabulary.
func NormalizeJobType(raw string) string {
	if raw == "" {
		return model.JobTypeFullTime
	}
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "contract"):
		return model.JobTypeContract
	case strings.Contains(lower, "part_time"), strings.Contains(lower, "part-time"), strings.Contains(lower, "part"):
		return model.JobTypePartTime
	case strings.Contains(lower, "freelance"):
		return model.JobTypeFreelance
	case strings.Contains(lower, "intern"):
		return model.JobTypeInternship
	case strings.Contains(lower, "full_time"), strings.Contains(lower, "full-time"), strings.Contains(lower, "full"):
		return model.JobTypeFullTime
	case strings.Contains(lower, "remote"):
		return model.JobTypeRemote
	}
	return lower
}

// ParseSalaryDigits strips every non-digit character and parses the rest.
// Unparsable or empty input yields nil; sources report salary as noisy
// display strings ("$90,000", "90k USD") or not at all.
func ParseSalaryDigits(raw string) *int {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)
	if digits == "" {
		return nil
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return nil
	}
	return &n
}

var salaryRangeRe = regexp.MustCompile(`(?i)\$?([\d,]+)k?\s*-\s*\$?([\d,]+)k?`)

// ParseSalaryRange extracts a (min, max) pair from a display string like
// "$100k - $120k" or "90,000 - 110,000". The "k" suffix multiplies values
// under 10000 by 1000. Returns (nil, nil) when no range is present.
func ParseSalaryRange(raw string) (*int, *int) {
	m := salaryRangeRe.FindStringSubmatch(raw)
	if m == nil {
		return nil, nil
	}
	lo, err1 := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	hi, err2 := strconv.Atoi(strings.ReplaceAll(m[2], ",", ""))
	if err1 != nil || err2 != nil {
		return nil, nil
	}
	if strings.Contains(strings.ToLower(raw), "k") {
		if lo < 10000 {
			lo *= 1000
		}
		if hi < 10000 {
			hi *= 1000
		}
	}
	return &lo, &hi
}

// SplitKeywords breaks a raw keyword string on whitespace and commas,
// lowercased. Empty input yields nil.
func SplitKeywords(raw string) []string {
	fields := strings.FieldsFunc(strings.ToLower(raw), func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == ','
	})
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// matchesAnyKeyword reports whether any keyword appears as a substring of
// text. An empty keyword list matches everything.
func matchesAnyKeyword(text string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// remoteKeywords drive the remote heuristic shared by adapters whose
// sources are not remote-only.
var remoteKeywords = []string{"remote", "híbrido", "hybrid", "home office", "teletrabajo"}

// looksRemote reports whether any of the remote keywords appear in the
// given fields.
func looksRemote(fields ...string) bool {
	for _, f := range fields {
		lower := strings.ToLower(f)
		for _, kw := range remoteKeywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	return false
}

// titleTagKeywords is the fixed vocabulary mined from titles when a source
// exposes no tag data of its own.
var titleTagKeywords = []string{
	"javascript", "python", "react", "node", "typescript", "go", "golang",
	"ruby", "rails", "php", "laravel", "java", "kotlin", "swift",
	"aws", "docker", "kubernetes", "devops", "frontend", "backend",
	"full-stack", "fullstack", "mobile", "ios", "android", "web",
	"senior", "lead", "principal", "staff", "manager", "director",
	"data", "engineer", "designer", "marketing", "sales", "product",
}

// ExtractTitleTags mines a comma-joined tag set out of a job title.
func ExtractTitleTags(title string) string {
	if title == "" {
		return ""
	}
	lower := strings.ToLower(title)
	var tags []string
	for _, kw := range titleTagKeywords {
		if strings.Contains(lower, kw) {
			tags = append(tags, kw)
		}
	}
	return strings.Join(tags, ",")
}

var nonIdentRe = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// sanitizeID turns an arbitrary string (usually a URL) into a stable
// identifier fragment, capped at 50 characters.
func sanitizeID(raw string) string {
	s := nonIdentRe.ReplaceAllString(raw, "_")
	if len(s) > 50 {
		s = s[:50]
	}
	return s
}

// ValidJob reports whether a normalized job carries every required field:
// external_id, title, company, and an absolute HTTP(S) url. Jobs failing
// this check are dropped by the orchestrator before being returned.
func ValidJob(j model.Job) bool {
	if j.ExternalID == "" || j.Title == "" || j.Company == "" || j.URL == "" {
		return false
	}
	u, err := url.Parse(j.URL)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// flexString unmarshals a JSON value that upstreams serve inconsistently
// as either a string or a number (RemoteOK ids and salaries, notably).
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

func (f flexString) String() string { return string(f) }
