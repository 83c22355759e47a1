package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Dicode-Tech/dicode-app-jobseeker/internal/model"
)

const (
	workingnomadsDefaultBaseURL = "https://www.workingnomads.com/api/exposed_jobs/"
	workingnomadsCacheKey       = "scrape:workingnomads:listing"
	workingnomadsCacheTTL       = 10 * time.Minute
	workingnomadsTargetSize     = 50
)

var workingnomadsIDRe = regexp.MustCompile(`/job/go/(\d+)`)

// WorkingNomads fetches the Working Nomads exposed-jobs bulk listing and
// filters client-side. Like RemoteOK, the raw bulk payload is cached in
// Redis under a short TTL.
type WorkingNomads struct {
	BaseURL string

	client *http.Client
	cache  *redis.Client // nil disables caching
	log    *zap.SugaredLogger
}

// NewWorkingNomads constructs the adapter. cache may be nil.
func NewWorkingNomads(cache *redis.Client, log *zap.SugaredLogger) *WorkingNomads {
	return &WorkingNomads{
		BaseURL: workingnomadsDefaultBaseURL,
		client:  newHTTPClient(),
		cache:   cache,
		log:     log.Named("scraper.workingnomads"),
	}
}

// Source implements Adapter.
func (w *WorkingNomads) Source() string { return "workingnomads" }

// Info implements Adapter.
func (w *WorkingNomads) Info() model.SourceInfo {
	return model.SourceInfo{
		Name:         "Working Nomads",
		Description:  "Curated remote jobs for digital nomads",
		RequiresAuth: false,
		Locations:    []string{"Remote/Global"},
		JobTypes:     []string{"Remote only"},
	}
}

// Search implements Adapter.
func (w *WorkingNomads) Search(ctx context.Context, keywords, location string) []model.Job {
	body, err := w.listing(ctx)
	if err != nil {
		w.log.Errorw("bulk fetch failed", "err", err)
		return nil
	}

	var raw []workingnomadsJob
	if err := json.Unmarshal(body, &raw); err != nil {
		w.log.Errorw("unexpected payload", "err", err)
		return nil
	}

	jobs := w.normalize(raw)

	if kws := SplitKeywords(keywords); kws != nil {
		filtered := jobs[:0:0]
		for _, j := range jobs {
			text := j.Title + " " + j.Company + " " + j.Tags + " " + j.Description
			if matchesAnyKeyword(text, kws) {
				filtered = append(filtered, j)
			}
		}
		jobs = filtered
	}

	if location != "" {
		loc := strings.ToLower(location)
		filtered := jobs[:0:0]
		for _, j := range jobs {
			if strings.Contains(strings.ToLower(j.Location), loc) {
				filtered = append(filtered, j)
			}
		}
		jobs = filtered
	}

	// Newest first before truncation.
	sort.SliceStable(jobs, func(i, k int) bool { return jobs[i].PostedAt.After(jobs[k].PostedAt) })
	if len(jobs) > workingnomadsTargetSize {
		jobs = jobs[:workingnomadsTargetSize]
	}

	w.log.Infow("search done", "keywords", keywords, "found", len(jobs))
	return jobs
}

func (w *WorkingNomads) listing(ctx context.Context) ([]byte, error) {
	if w.cache != nil {
		if cached, err := w.cache.Get(ctx, workingnomadsCacheKey).Bytes(); err == nil {
			return cached, nil
		}
	}

	body, err := getBody(ctx, w.client, w.BaseURL, map[string]string{"Accept": "application/json"})
	if err != nil {
		return nil, err
	}

	if w.cache != nil {
		if err := w.cache.Set(ctx, workingnomadsCacheKey, body, workingnomadsCacheTTL).Err(); err != nil {
			w.log.Warnw("listing cache write failed", "err", err)
		}
	}
	return body, nil
}

type workingnomadsJob struct {
	URL          string `json:"url"`
	Title        string `json:"title"`
	CompanyName  string `json:"company_name"`
	CategoryName string `json:"category_name"`
	Tags         string `json:"tags"`
	Location     string `json:"location"`
	Description  string `json:"description"`
	PubDate      string `json:"pub_date"`
}

func (w *WorkingNomads) normalize(results []workingnomadsJob) []model.Job {
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
			location = "Remote"
		}

		tags := j.Tags
		if j.CategoryName != "" && !strings.Contains(tags, j.CategoryName) {
			if tags != "" {
				tags += "," + j.CategoryName
			} else {
				tags = j.CategoryName
			}
		}

		jobURL := j.URL
		if jobURL == "" {
			jobURL = "https://www.workingnomads.com/jobs"
		}

		posted := time.Now()
		if t, err := time.Parse(time.RFC3339, j.PubDate); err == nil {
			posted = t
		}

		jobs = append(jobs, model.Job{
			ExternalID:     fmt.Sprintf("workingnomads_%s", workingnomadsID(j.URL)),
			Source:         w.Source(),
			Title:          title,
			Company:        company,
			Location:       location,
			Description:    j.Description,
			URL:            jobURL,
			SalaryCurrency: "USD", // salary not consistently provided
			JobType:        model.JobTypeRemote,
			Remote:         true, // remote-only board
			Tags:           tags,
			PostedAt:       posted,
		})
	}
	return jobs
}

// workingnomadsID extracts the numeric id out of the redirect URL pattern
// /job/go/123456/, falling back to a sanitized URL fragment.
func workingnomadsID(url string) string {
	if url == "" {
		// Last resort: not idempotent across fetches, only hit for payloads
		// carrying no identifier at all.
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	if m := workingnomadsIDRe.FindStringSubmatch(url); m != nil {
		return m[1]
	}
	return sanitizeID(url)
}
