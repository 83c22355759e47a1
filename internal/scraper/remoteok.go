package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Dicode-Tech/dicode-app-jobseeker/internal/model"
)

const (
	remoteokDefaultBaseURL = "https://remoteok.com/api"
	remoteokCacheKey       = "scrape:remoteok:listing"
	remoteokCacheTTL       = 10 * time.Minute
)

// RemoteOK fetches the one unfiltered bulk listing the RemoteOK API serves
// and filters it client-side by keyword and tag. Every posting on the board
// is remote by definition. The raw listing is cached in Redis under a short
// TTL so back-to-back runs don't re-hit the upstream.
type RemoteOK struct {
	BaseURL string

	client *http.Client
	cache  *redis.Client // nil disables caching
	log    *zap.SugaredLogger
}

// NewRemoteOK constructs the adapter. cache may be nil.
func NewRemoteOK(cache *redis.Client, log *zap.SugaredLogger) *RemoteOK {
	return &RemoteOK{
		BaseURL: remoteokDefaultBaseURL,
		client:  newHTTPClient(),
		cache:   cache,
		log:     log.Named("scraper.remoteok"),
	}
}

// Source implements Adapter.
func (r *RemoteOK) Source() string { return "remoteok" }

// Info implements Adapter.
func (r *RemoteOK) Info() model.SourceInfo {
	return model.SourceInfo{
		Name:         "RemoteOK",
		Description:  "Remote jobs from companies worldwide",
		RequiresAuth: false,
		Locations:    []string{"Remote/Global"},
		JobTypes:     []string{"Remote only"},
	}
}

// Search implements Adapter.
func (r *RemoteOK) Search(ctx context.Context, keywords, _ string) []model.Job {
	return r.SearchTags(ctx, keywords, nil)
}

// SearchTags is the full strategy: bulk fetch, then keyword substring
// filtering and exact tag filtering client-side.
func (r *RemoteOK) SearchTags(ctx context.Context, keywords string, tags []string) []model.Job {
	body, err := r.listing(ctx)
	if err != nil {
		r.log.Errorw("bulk fetch failed", "err", err)
		return nil
	}

	var raw []remoteokJob
	if err := json.Unmarshal(body, &raw); err != nil {
		r.log.Errorw("unexpected payload", "err", err)
		return nil
	}

	// The first listing entry is a legal notice without an id.
	entries := raw[:0:0]
	for _, j := range raw {
		if j.ID.String() != "" {
			entries = append(entries, j)
		}
	}

	if kws := SplitKeywords(keywords); kws != nil {
		filtered := entries[:0:0]
		for _, j := range entries {
			text := j.Position + " " + j.Description + " " + strings.Join(j.Tags, " ")
			if matchesAnyKeyword(text, kws) {
				filtered = append(filtered, j)
			}
		}
		entries = filtered
	}

	if len(tags) > 0 {
		filtered := entries[:0:0]
		for _, j := range entries {
			if hasAnyTag(j.Tags, tags) {
				filtered = append(filtered, j)
			}
		}
		entries = filtered
	}

	r.log.Infow("search done", "keywords", keywords, "found", len(entries))
	return r.normalize(entries)
}

// listing returns the raw bulk payload, from Redis when fresh.
func (r *RemoteOK) listing(ctx context.Context) ([]byte, error) {
	if r.cache != nil {
		if cached, err := r.cache.Get(ctx, remoteokCacheKey).Bytes(); err == nil {
			return cached, nil
		}
	}

	body, err := getBody(ctx, r.client, r.BaseURL, map[string]string{"Accept": "application/json"})
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, remoteokCacheKey, body, remoteokCacheTTL).Err(); err != nil {
			r.log.Warnw("listing cache write failed", "err", err)
		}
	}
	return body, nil
}

// remoteokJob mirrors one bulk listing entry. Ids and salaries arrive as
// either strings or numbers depending on the entry.
type remoteokJob struct {
	ID          flexString `json:"id"`
	Position    string     `json:"position"`
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Description string     `json:"description"`
	About       string     `json:"about"`
	ApplyURL    string     `json:"apply_url"`
	URL         string     `json:"url"`
	SalaryMin   flexString `json:"salary_min"`
	SalaryMax   flexString `json:"salary_max"`
	Tags        []string   `json:"tags"`
	Date        string     `json:"date"`
}

func (r *RemoteOK) normalize(entries []remoteokJob) []model.Job {
	jobs := make([]model.Job, 0, len(entries))
	for _, j := range entries {
		title := j.Position
		if title == "" {
			title = j.Title
		}
		if title == "" {
			title = unknownTitle
		}

		company := j.Company
		if company == "" {
			company = unknownCompany
		}

		desc := j.Description
		if desc == "" {
			desc = j.About
		}

		jobURL := j.ApplyURL
		if jobURL == "" {
			jobURL = j.URL
		}
		if jobURL == "" {
			jobURL = fmt.Sprintf("https://remoteok.com/remote-jobs/%s", j.ID)
		}

		posted := time.Now()
		if t, err := time.Parse(time.RFC3339, j.Date); err == nil {
			posted = t
		}

		jobs = append(jobs, model.Job{
			ExternalID:     fmt.Sprintf("remoteok_%s", j.ID),
			Source:         r.Source(),
			Title:          title,
			Company:        company,
			Location:       "Remote",
			Description:    desc,
			URL:            jobURL,
			SalaryMin:      ParseSalaryDigits(j.SalaryMin.String()),
			SalaryMax:      ParseSalaryDigits(j.SalaryMax.String()),
			SalaryCurrency: "USD",
			JobType:        model.JobTypeRemote,
			Remote:         true, // remote-only board
			Tags:           strings.Join(j.Tags, ","),
			PostedAt:       posted,
		})
	}
	return jobs
}

func hasAnyTag(jobTags, wanted []string) bool {
	for _, jt := range jobTags {
		for _, w := range wanted {
			if strings.EqualFold(jt, w) {
				return true
			}
		}
	}
	return false
}
