// Package model defines the shared data structures for the jobseeker backend.
package model

import "time"

// Normalized job type values. Every adapter maps its source's native
// employment-type vocabulary onto one of these.
const (
	JobTypeFullTime   = "full-time"
	JobTypePartTime   = "part-time"
	JobTypeContract   = "contract"
	JobTypeFreelance  = "freelance"
	JobTypeInternship = "internship"
	JobTypeRemote     = "remote"
	JobTypeUnknown    = "unknown"
)

// Job is the canonical normalized posting produced by every source adapter.
//
// ExternalID is the dedup/upsert key: "{source}_{source-native-id}", stable
// across repeated fetches of the same posting.
type Job struct {
	ID             int64     `json:"id,omitempty"`
	ExternalID     string    `json:"external_id"`
	Source         string    `json:"source"`
	Title          string    `json:"title"`
	Company        string    `json:"company"`
	Location       string    `json:"location"`
	Description    string    `json:"description"`
	URL            string    `json:"url"`
	SalaryMin      *int      `json:"salary_min"`
	SalaryMax      *int      `json:"salary_max"`
	SalaryCurrency string    `json:"salary_currency"`
	JobType        string    `json:"job_type"`
	Remote         bool      `json:"remote"`
	Tags           string    `json:"tags"` // comma-joined skill/category set
	PostedAt       time.Time `json:"posted_at"`
}

// MatchResult is the outcome of scoring one Job against the user profile.
// It is recomputed on every scoring pass; staleness policy belongs to the
// caller that persists it.
type MatchResult struct {
	Score   int      `json:"score"` // 0–100
	Reasons []string `json:"reasons"`
}

// ScoredJob is a Job joined with its persisted match row, as returned by
// the store's listing queries.
type ScoredJob struct {
	Job
	MatchScore   *int     `json:"match_score,omitempty"`
	MatchReasons []string `json:"match_reasons,omitempty"`
	Status       string   `json:"status,omitempty"`
	Favorited    bool     `json:"favorited"`
	Applied      bool     `json:"applied"`
}

// ScraperRun is the log record for one scrape cycle.
type ScraperRun struct {
	Source      string    `json:"source"` // comma-joined when a cycle spans sources
	JobsFound   int       `json:"jobs_found"`
	JobsAdded   int       `json:"jobs_added"`
	JobsUpdated int       `json:"jobs_updated"`
	Error       string    `json:"error,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
}

// SourceInfo describes one registered source adapter for the API surface.
type SourceInfo struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	RequiresAuth bool     `json:"requires_auth"`
	Locations    []string `json:"locations"`
	JobTypes     []string `json:"job_types"`
}

// Stats aggregates feed-level counters for the dashboard.
type Stats struct {
	TotalJobs   int        `json:"total_jobs"`
	HighMatches int        `json:"high_matches"` // score >= 70
	Favorited   int        `json:"favorited"`
	Applied     int        `json:"applied"`
	LastUpdate  *time.Time `json:"last_update"`
}
