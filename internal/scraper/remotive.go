package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Dicode-Tech/dicode-app-jobseeker/internal/model"
)

const (
	remotiveDefaultBaseURL = "https://remotive.com/api/remote-jobs"
	remotivePageLimit      = 100
	remotiveTargetSize     = 50
)

// remotiveCategories is the fan-out list used when the caller supplies no
// keywords; only the first two are fetched to cap call volume.
var remotiveCategories = []string{"software-dev", "devops", "data", "qa"}

// Remotive fetches remote jobs from the Remotive public API. With keywords
// it issues one server-side search; without, it fans out over the first two
// tech categories with an inter-request delay.
type Remotive struct {
	BaseURL string

	client *http.Client
	gate   Gate
	log    *zap.SugaredLogger
}

// NewRemotive constructs the adapter.
func NewRemotive(gate Gate, log *zap.SugaredLogger) *Remotive {
	return &Remotive{
		BaseURL: remotiveDefaultBaseURL,
		client:  newHTTPClient(),
		gate:    gate,
		log:     log.Named("scraper.remotive"),
	}
}

// Source implements Adapter.
func (r *Remotive) Source() string { return "remotive" }

// Info implements Adapter.
func (r *Remotive) Info() model.SourceInfo {
	return model.SourceInfo{
		Name:         "Remotive",
		Description:  "Remote job board with public JSON API",
		RequiresAuth: false,
		Locations:    []string{"Remote/Global"},
		JobTypes:     []string{"Remote only"},
	}
}

// Search implements Adapter.
func (r *Remotive) Search(ctx context.Context, keywords, _ string) []model.Job {
	var all []model.Job

	if keywords != "" {
		jobs, err := r.fetch(ctx, keywords, "")
		if err != nil {
			r.log.Errorw("search failed", "keywords", keywords, "err", err)
			return nil
		}
		all = jobs
	} else {
		for i, category := range remotiveCategories[:2] {
			if i > 0 {
				r.gate.Wait(ctx)
			}
			jobs, err := r.fetch(ctx, "", category)
			if err != nil {
				r.log.Errorw("category fetch failed", "category", category, "err", err)
				continue
			}
			all = append(all, jobs...)
		}
	}

	if kws := SplitKeywords(keywords); kws != nil {
		filtered := all[:0:0]
		for _, j := range all {
			text := j.Title + " " + j.Company + " " + j.Tags + " " + j.Description
			if matchesAnyKeyword(text, kws) {
				filtered = append(filtered, j)
			}
		}
		all = filtered
	}

	unique := DedupeByExternalID(all)
	if len(unique) > remotiveTargetSize {
		unique = unique[:remotiveTargetSize]
	}
	r.log.Infow("search done", "keywords", keywords, "found", len(unique))
	return unique
}

func (r *Remotive) fetch(ctx context.Context, search, category string) ([]model.Job, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(remotivePageLimit))
	if search != "" {
		params.Set("search", search)
	}
	if category != "" {
		params.Set("category", category)
	}

	body, err := getBody(ctx, r.client, r.BaseURL+"?"+params.Encode(), map[string]string{"Accept": "application/json"})
	if err != nil {
		return nil, err
	}

	var resp remotiveResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unexpected payload: %w", err)
	}
	return r.normalize(resp.Jobs), nil
}

type remotiveResponse struct {
	Jobs []remotiveJob `json:"jobs"`
}

type remotiveJob struct {
	ID                        flexString `json:"id"`
	Title                     string     `json:"title"`
	CompanyName               string     `json:"company_name"`
	Description               string     `json:"description"`
	Excerpt                   string     `json:"excerpt"`
	URL                       string     `json:"url"`
	Tags                      []string   `json:"tags"`
	JobType                   string     `json:"job_type"`
	Salary                    string     `json:"salary"` // display string, e.g. "$100k - $120k"
	CandidateRequiredLocation string     `json:"candidate_required_location"`
	PublicationDate           string     `json:"publication_date"`
}

func (r *Remotive) normalize(results []remotiveJob) []model.Job {
	jobs := make([]model.Job, 0, len(results))
	for _, j := range results {
		title := j.Title
		if title == "" {
			title = unknownTitle
		}
		company := j.CompanyName
		if company == "" {
			company = unknownCompany
		}

		location := j.CandidateRequiredLocation
		if location == "" {
			location = "Remote"
		}
		lowerLoc := strings.ToLower(location)
		remote := strings.Contains(lowerLoc, "remote") ||
			strings.Contains(lowerLoc, "worldwide") ||
			strings.Contains(lowerLoc, "anywhere")

		desc := j.Description
		if desc == "" {
			desc = j.Excerpt
		}

		jobURL := j.URL
		if jobURL == "" {
			jobURL = fmt.Sprintf("https://remotive.com/remote-jobs/%s", j.ID)
		}

		salaryMin, salaryMax := ParseSalaryRange(j.Salary)

		posted := time.Now()
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
			if t, err := time.Parse(layout, j.PublicationDate); err == nil {
				posted = t
				break
			}
		}

		jobs = append(jobs, model.Job{
			ExternalID:     fmt.Sprintf("remotive_%s", j.ID),
			Source:         r.Source(),
			Title:          title,
			Company:        company,
			Location:       location,
			Description:    desc,
			URL:            jobURL,
			SalaryMin:      salaryMin,
			SalaryMax:      salaryMax,
			SalaryCurrency: "USD",
			JobType:        NormalizeJobType(j.JobType),
			Remote:         remote,
			Tags:           strings.Join(j.Tags, ","),
			PostedAt:       posted,
		})
	}
	return jobs
}
