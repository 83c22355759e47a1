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

const arbeitnowDefaultBaseURL = "https://www.arbeitnow.com/api/job-board-api"

// Arbeitnow fetches European tech jobs from the unauthenticated Arbeitnow
// board API: direct server-side keyword/location search with page-based
// pagination. The orchestrator opportunistically asks for a second page
// when the first under-fills the target size.
type Arbeitnow struct {
	BaseURL string

	client *http.Client
	log    *zap.SugaredLogger
}

// NewArbeitnow constructs the adapter.
func NewArbeitnow(log *zap.SugaredLogger) *Arbeitnow {
	return &Arbeitnow{
		BaseURL: arbeitnowDefaultBaseURL,
		client:  newHTTPClient(),
		log:     log.Named("scraper.arbeitnow"),
	}
}

// Source implements Adapter.
func (a *Arbeitnow) Source() string { return "arbeitnow" }

// Info implements Adapter.
func (a *Arbeitnow) Info() model.SourceInfo {
	return model.SourceInfo{
		Name:         "Arbeitnow",
		Description:  "European tech jobs (GitHub Jobs alternative)",
		RequiresAuth: false,
		Locations:    []string{"Europe", "Germany", "Remote EU"},
		JobTypes:     []string{"Tech/Software"},
	}
}

// Search implements Adapter: first page only.
func (a *Arbeitnow) Search(ctx context.Context, keywords, location string) []model.Job {
	return a.SearchPage(ctx, keywords, location, 1)
}

// SearchPage fetches one result page.
func (a *Arbeitnow) SearchPage(ctx context.Context, keywords, location string, page int) []model.Job {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("sort_by", "date")
	if keywords != "" {
		params.Set("query", keywords)
	}
	if location != "" {
		params.Set("location", location)
	}

	body, err := getBody(ctx, a.client, a.BaseURL+"?"+params.Encode(), map[string]string{"Accept": "application/json"})
	if err != nil {
		a.log.Errorw("search failed", "page", page, "err", err)
		return nil
	}

	var resp arbeitnowResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		a.log.Errorw("unexpected payload", "err", err)
		return nil
	}

	a.log.Infow("search done", "keywords", keywords, "page", page, "found", len(resp.Data))
	return a.normalize(resp.Data)
}

type arbeitnowResponse struct {
	Data []arbeitnowJob `json:"data"`
}

type arbeitnowJob struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	CompanyName string   `json:"company_name"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Remote      bool     `json:"remote"`
	Tags        []string `json:"tags"`
	JobTypes    []string `json:"job_types"`
	CreatedAt   int64    `json:"created_at"` // unix seconds
}

func (a *Arbeitnow) normalize(results []arbeitnowJob) []model.Job {
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
		location := j.Location
		if location == "" {
			location = "Remote/Unknown"
		}

		desc := j.Description
		if desc == "" {
			desc = strings.Join(j.Tags, ", ")
		}

		jobURL := j.URL
		if jobURL == "" {
			jobURL = fmt.Sprintf("https://www.arbeitnow.com/jobs/%s", j.Slug)
		}

		jobType := model.JobTypeFullTime
		if len(j.JobTypes) > 0 {
			jobType = NormalizeJobType(j.JobTypes[0])
		}

		posted := time.Now()
		if j.CreatedAt > 0 {
			posted = time.Unix(j.CreatedAt, 0)
		}

		jobs = append(jobs, model.Job{
			ExternalID:     fmt.Sprintf("arbeitnow_%s", j.Slug),
			Source:         a.Source(),
			Title:          title,
			Company:        company,
			Location:       location,
			Description:    desc,
			URL:            jobURL,
			SalaryCurrency: "EUR", // mostly European listings, salary rarely provided
			JobType:        jobType,
			Remote:         j.Remote || looksRemote(j.Location),
			Tags:           strings.Join(j.Tags, ","),
			PostedAt:       posted,
		})
	}
	return jobs
}
