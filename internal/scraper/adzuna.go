package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/Dicode-Tech/dicode-app-jobseeker/internal/model"
)

const (
	adzunaDefaultBaseURL = "https://api.adzuna.com/v1/api/jobs"
	adzunaPageSize       = 50
	adzunaMaxDaysOld     = 7
)

// Adzuna fetches offers from the Adzuna public API: an authenticated,
// server-side-paginated search. If AppID or AppKey is empty, Search returns
// an empty slice immediately without a network call.
type Adzuna struct {
	AppID   string
	AppKey  string
	Country string // "es", "gb", "us", …
	BaseURL string

	client *http.Client
	log    *zap.SugaredLogger
}

// NewAdzuna constructs the adapter with its own HTTP client.
func NewAdzuna(appID, appKey, country string, log *zap.SugaredLogger) *Adzuna {
	return &Adzuna{
		AppID:   appID,
		AppKey:  appKey,
		Country: country,
		BaseURL: adzunaDefaultBaseURL,
		client:  newHTTPClient(),
		log:     log.Named("scraper.adzuna"),
	}
}

// Source implements Adapter.
func (a *Adzuna) Source() string { return "adzuna" }

// Info implements Adapter.
func (a *Adzuna) Info() model.SourceInfo {
	return model.SourceInfo{
		Name:         "Adzuna",
		Description:  "Job search engine for Spain and Europe",
		RequiresAuth: true,
		Locations:    []string{"Spain", "UK", "Germany", "France", "Europe"},
		JobTypes:     []string{"All types"},
	}
}

// Search implements Adapter: one first-page search for the given
// keyword/location pair. The orchestrator drives the keyword × location
// cross-product strategy on top of this.
func (a *Adzuna) Search(ctx context.Context, keywords, location string) []model.Job {
	if a.AppID == "" || a.AppKey == "" {
		a.log.Warn("ADZUNA_APP_ID / ADZUNA_APP_KEY not set, skipping source")
		return nil
	}

	endpoint := fmt.Sprintf("%s/%s/search/1", a.BaseURL, a.Country)
	params := url.Values{}
	params.Set("app_id", a.AppID)
	params.Set("app_key", a.AppKey)
	params.Set("what", keywords)
	params.Set("where", location)
	params.Set("max_days_old", strconv.Itoa(adzunaMaxDaysOld))
	params.Set("sort_by", "date")
	params.Set("results_per_page", strconv.Itoa(adzunaPageSize))

	body, err := getBody(ctx, a.client, endpoint+"?"+params.Encode(), map[string]string{"Accept": "application/json"})
	if err != nil {
		a.log.Errorw("search failed", "keywords", keywords, "location", location, "err", err)
		return nil
	}

	var resp adzunaResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		a.log.Errorw("unexpected payload", "err", err)
		return nil
	}

	a.log.Infow("search done", "keywords", keywords, "location", location, "found", len(resp.Results))
	return a.normalize(resp.Results)
}

// adzunaResponse mirrors the top-level Adzuna JSON response.
type adzunaResponse struct {
	Results []adzunaResult `json:"results"`
	Count   int            `json:"count"`
}

// adzunaResult mirrors a single Adzuna listing. The posting-date key has
// drifted across API versions, so all known spellings are mapped.
type adzunaResult struct {
	ID           flexString     `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Company      adzunaCompany  `json:"company"`
	Location     adzunaLocation `json:"location"`
	SalaryMin    float64        `json:"salary_min"`
	SalaryMax    float64        `json:"salary_max"`
	SalaryCur    string         `json:"salary_currency"`
	RedirectURL  string         `json:"redirect_url"`
	Created      string         `json:"created"`
	CreatedAt    string         `json:"created_at"`
	Date         string         `json:"date"`
	ContractTime string         `json:"contract_time"`
	ContractType string         `json:"contract_type"`
	Category     adzunaCategory `json:"category"`
}

type adzunaCompany struct {
	DisplayName string `json:"display_name"`
}

type adzunaLocation struct {
	DisplayName string `json:"display_name"`
}

type adzunaCategory struct {
	Tag   string `json:"tag"`
	Label string `json:"label"`
}

func (a *Adzuna) normalize(results []adzunaResult) []model.Job {
	jobs := make([]model.Job, 0, len(results))
	for _, r := range results {
		company := r.Company.DisplayName
		if company == "" {
			company = unknownCompany
		}

		contract := r.ContractType
		if contract == "" {
			contract = r.ContractTime
		}

		tags := r.Category.Tag
		if tags == "" {
			tags = r.Category.Label
		}

		currency := r.SalaryCur
		if currency == "" {
			currency = "EUR"
		}

		jobs = append(jobs, model.Job{
			ExternalID:     fmt.Sprintf("adzuna_%s", r.ID),
			Source:         a.Source(),
			Title:          r.Title,
			Company:        company,
			Location:       r.Location.DisplayName,
			Description:    r.Description,
			URL:            r.RedirectURL,
			SalaryMin:      floatSalary(r.SalaryMin),
			SalaryMax:      floatSalary(r.SalaryMax),
			SalaryCurrency: currency,
			JobType:        NormalizeJobType(contract),
			Remote:         looksRemote(r.Title, r.Description),
			Tags:           tags,
			PostedAt:       adzunaPostedAt(r),
		})
	}
	return jobs
}

// adzunaPostedAt tries the posting-date keys in preference order, falling
// back to fetch time.
func adzunaPostedAt(r adzunaResult) time.Time {
	for _, raw := range []string{r.Created, r.CreatedAt, r.Date} {
		if raw == "" {
			continue
		}
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05Z", "2006-01-02"} {
			if t, err := time.Parse(layout, raw); err == nil {
				return t
			}
		}
	}
	return time.Now()
}

func floatSalary(v float64) *int {
	if v <= 0 {
		return nil
	}
	n := int(v)
	return &n
}
