package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Dicode-Tech/dicode-app-jobseeker/internal/model"
)

const (
	himalayasDefaultBaseURL = "https://himalayas.app/jobs/api"
	himalayasPageSize       = 100
	himalayasMaxRequests    = 3
	himalayasTargetSize     = 50
)

var himalayasIDRe = regexp.MustCompile(`/jobs/([^/]+)$`)

// Himalayas fetches remote jobs from the Himalayas JSON API by looping over
// increasing offsets up to a bounded request count (or until the reported
// total is reached), then filters by keyword/location and dedups locally.
type Himalayas struct {
	BaseURL string

	client *http.Client
	gate   Gate
	log    *zap.SugaredLogger
}

// NewHimalayas constructs the adapter. The gate spaces the offset-loop
// requests.
func NewHimalayas(gate Gate, log *zap.SugaredLogger) *Himalayas {
	return &Himalayas{
		BaseURL: himalayasDefaultBaseURL,
		client:  newHTTPClient(),
		gate:    gate,
		log:     log.Named("scraper.himalayas"),
	}
}

// Source implements Adapter.
func (h *Himalayas) Source() string { return "himalayas" }

// Info implements Adapter.
func (h *Himalayas) Info() model.SourceInfo {
	return model.SourceInfo{
		Name:         "Himalayas",
		Description:  "Remote job board with open JSON API",
		RequiresAuth: false,
		Locations:    []string{"Remote/Global"},
		JobTypes:     []string{"Remote only"},
	}
}

// Search implements Adapter.
func (h *Himalayas) Search(ctx context.Context, keywords, location string) []model.Job {
	var all []model.Job
	offset := 0

	for i := 0; i < himalayasMaxRequests && len(all) < himalayasTargetSize; i++ {
		if i > 0 {
			h.gate.Wait(ctx)
		}

		resp, err := h.fetchPage(ctx, offset)
		if err != nil {
			h.log.Errorw("page fetch failed", "offset", offset, "err", err)
			break
		}
		if len(resp.Jobs) == 0 {
			break
		}

		all = append(all, h.normalize(resp.Jobs)...)
		if resp.TotalCount > 0 && len(all) >= resp.TotalCount {
			break
		}
		offset += himalayasPageSize
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

	if location != "" {
		loc := strings.ToLower(location)
		filtered := all[:0:0]
		for _, j := range all {
			if strings.Contains(strings.ToLower(j.Location), loc) {
				filtered = append(filtered, j)
			}
		}
		all = filtered
	}

	unique := DedupeByExternalID(all)
	if len(unique) > himalayasTargetSize {
		unique = unique[:himalayasTargetSize]
	}
	h.log.Infow("search done", "keywords", keywords, "found", len(unique))
	return unique
}

func (h *Himalayas) fetchPage(ctx context.Context, offset int) (*himalayasResponse, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(himalayasPageSize))
	params.Set("offset", strconv.Itoa(offset))

	body, err := getBody(ctx, h.client, h.BaseURL+"?"+params.Encode(), map[string]string{
		"Accept":  "application/json, text/plain, */*",
		"Referer": "https://himalayas.app/jobs",
	})
	if err != nil {
		return nil, err
	}

	var resp himalayasResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unexpected payload: %w", err)
	}
	return &resp, nil
}

type himalayasResponse struct {
	Jobs       []himalayasJob `json:"jobs"`
	TotalCount int            `json:"totalCount"`
}

type himalayasJob struct {
	Title                string   `json:"title"`
	CompanyName          string   `json:"companyName"`
	Description          string   `json:"description"`
	Excerpt              string   `json:"excerpt"`
	ApplicationLink      string   `json:"applicationLink"`
	GUID                 string   `json:"guid"`
	LocationRestrictions []string `json:"locationRestrictions"`
	Categories           []string `json:"categories"`
	Seniority            []string `json:"seniority"`
	EmploymentType       string   `json:"employmentType"`
	MinSalary            int      `json:"minSalary"`
	MaxSalary            int      `json:"maxSalary"`
	Currency             string   `json:"currency"`
	PubDate              int64    `json:"pubDate"` // unix seconds
}

func (h *Himalayas) normalize(results []himalayasJob) []model.Job {
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

		location := "Remote"
		if len(j.LocationRestrictions) > 0 {
			location = strings.Join(j.LocationRestrictions, ", ")
		}

		tags := strings.Join(j.Categories, ",")
		if len(j.Seniority) > 0 {
			seniority := strings.Join(j.Seniority, ", ")
			if tags != "" {
				tags += "," + seniority
			} else {
				tags = seniority
			}
		}

		desc := j.Description
		if desc == "" {
			desc = j.Excerpt
		}

		jobURL := j.ApplicationLink
		if jobURL == "" {
			jobURL = j.GUID
		}
		if jobURL == "" {
			jobURL = "https://himalayas.app/jobs"
		}

		posted := time.Now()
		if j.PubDate > 0 {
			posted = time.Unix(j.PubDate, 0)
		}

		currency := j.Currency
		if currency == "" {
			currency = "USD"
		}

		jobs = append(jobs, model.Job{
			ExternalID:     fmt.Sprintf("himalayas_%s", himalayasID(j.GUID, j.ApplicationLink)),
			Source:         h.Source(),
			Title:          title,
			Company:        company,
			Location:       location,
			Description:    desc,
			URL:            jobURL,
			SalaryMin:      positiveSalary(j.MinSalary),
			SalaryMax:      positiveSalary(j.MaxSalary),
			SalaryCurrency: currency,
			JobType:        NormalizeJobType(j.EmploymentType),
			Remote:         true, // remote-only board
			Tags:           tags,
			PostedAt:       posted,
		})
	}
	return jobs
}

// himalayasID derives a stable id from the job's canonical URL.
func himalayasID(guid, applicationLink string) string {
	src := guid
	if src == "" {
		src = applicationLink
	}
	if src == "" {
		// Last resort: not idempotent across fetches, only hit for payloads
		// carrying no identifier at all.
		return strconv.FormatInt(time.Now().UnixNano(), 10)
	}
	if m := himalayasIDRe.FindStringSubmatch(src); m != nil {
		return m[1]
	}
	return sanitizeID(src)
}

func positiveSalary(v int) *int {
	if v <= 0 {
		return nil
	}
	return &v
}
