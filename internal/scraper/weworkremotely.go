package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/Dicode-Tech/dicode-app-jobseeker/internal/model"
)

const (
	wwrDefaultBaseURL = "https://weworkremotely.com"
	wwrRSSPath        = "/remote-jobs.rss"
)

// wwrDefaultCategories are the HTML category pages scraped by the fallback
// path when no category is requested.
var wwrDefaultCategories = []string{"programming", "devops-sysadmin", "design"}

var wwrJobPathRe = regexp.MustCompile(`/remote-jobs/(.+)$`)

// WeWorkRemotely fetches from the We Work Remotely board. The primary
// strategy parses the RSS feed (item titles follow "Company: Title");
// only when the feed yields zero results does it fall back to scraping the
// rendered HTML category pages, a brittle selector-based path that skips
// entries whose markup has drifted and has no reliable posting date.
type WeWorkRemotely struct {
	BaseURL string

	client *http.Client
	gate   Gate
	log    *zap.SugaredLogger
}

// NewWeWorkRemotely constructs the adapter. The gate spaces the category
// page fetches on the HTML fallback path.
func NewWeWorkRemotely(gate Gate, log *zap.SugaredLogger) *WeWorkRemotely {
	return &WeWorkRemotely{
		BaseURL: wwrDefaultBaseURL,
		client:  newHTTPClient(),
		gate:    gate,
		log:     log.Named("scraper.weworkremotely"),
	}
}

// Source implements Adapter.
func (w *WeWorkRemotely) Source() string { return "weworkremotely" }

// Info implements Adapter.
func (w *WeWorkRemotely) Info() model.SourceInfo {
	return model.SourceInfo{
		Name:         "We Work Remotely",
		Description:  "Curated remote jobs from top companies",
		RequiresAuth: false,
		Locations:    []string{"Remote/Global"},
		JobTypes:     []string{"Remote only", "Programming", "Design", "DevOps"},
	}
}

// Search implements Adapter.
func (w *WeWorkRemotely) Search(ctx context.Context, keywords, _ string) []model.Job {
	return w.SearchCategory(ctx, keywords, "")
}

// SearchCategory runs the full strategy: RSS first, HTML category pages
// only when RSS yields nothing.
func (w *WeWorkRemotely) SearchCategory(ctx context.Context, keywords, category string) []model.Job {
	jobs := w.fetchRSS(ctx, keywords)
	if len(jobs) > 0 {
		w.log.Infow("rss search done", "keywords", keywords, "found", len(jobs))
		return jobs
	}

	w.log.Warn("rss feed empty, falling back to html scraping")
	jobs = w.fetchHTML(ctx, keywords, category)
	w.log.Infow("html search done", "keywords", keywords, "found", len(jobs))
	return jobs
}

// ── RSS primary path ───────────────────────────────────────────────────────

func (w *WeWorkRemotely) fetchRSS(ctx context.Context, keywords string) []model.Job {
	body, err := getBody(ctx, w.client, w.BaseURL+wwrRSSPath, map[string]string{
		"Accept": "application/rss+xml, application/xml, text/xml, */*",
	})
	if err != nil {
		w.log.Errorw("rss fetch failed", "err", err)
		return nil
	}

	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		w.log.Errorw("rss parse failed", "err", err)
		return nil
	}

	kws := SplitKeywords(keywords)
	jobs := make([]model.Job, 0, len(feed.Items))

	for i, item := range feed.Items {
		company, title := splitFeedTitle(item.Title)

		jobURL := item.GUID
		if jobURL == "" {
			jobURL = item.Link
		}
		jobURL = w.absoluteURL(jobURL)

		externalID := wwrIDFromURL(jobURL)
		if externalID == "" {
			// Last resort: not idempotent across fetches, only hit for items
			// carrying no usable link at all.
			externalID = fmt.Sprintf("%d_%d", time.Now().Unix(), i)
		}

		posted := time.Now()
		if item.PublishedParsed != nil {
			posted = *item.PublishedParsed
		}

		region := strings.TrimSpace(item.Custom["region"])
		if region == "" {
			region = "Remote"
		}
		jobType := strings.TrimSpace(item.Custom["type"])
		category := strings.Join(item.Categories, ",")
		tags := wwrTags(item.Custom["skills"])

		if kws != nil {
			searchText := title + " " + company + " " + tags + " " + category
			if !matchesAnyKeyword(searchText, kws) {
				continue
			}
		}

		desc := strings.TrimSpace(item.Description)
		if desc == "" {
			desc = fmt.Sprintf("Remote position at %s. Posted on We Work Remotely.", company)
		}

		jobs = append(jobs, model.Job{
			ExternalID:     fmt.Sprintf("wwr_%s", externalID),
			Source:         w.Source(),
			Title:          title,
			Company:        company,
			Location:       region,
			Description:    desc,
			URL:            jobURL,
			SalaryCurrency: "USD",
			JobType:        NormalizeJobType(jobType),
			Remote:         true, // remote-only board
			Tags:           tags,
			PostedAt:       posted,
		})
	}
	return jobs
}

// splitFeedTitle parses the feed's "Company: Title" convention on the
// first colon. Titles without a colon keep the whole string as title with
// an unknown company.
func splitFeedTitle(raw string) (company, title string) {
	raw = strings.TrimSpace(raw)
	if before, after, ok := strings.Cut(raw, ":"); ok && strings.TrimSpace(after) != "" {
		return strings.TrimSpace(before), strings.TrimSpace(after)
	}
	return unknownCompany, raw
}

func wwrTags(skills string) string {
	parts := strings.Split(skills, ",")
	var tags []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return strings.Join(tags, ",")
}

// ── HTML fallback path ─────────────────────────────────────────────────────

func (w *WeWorkRemotely) fetchHTML(ctx context.Context, keywords, category string) []model.Job {
	categories := wwrDefaultCategories
	if category != "" {
		categories = []string{category}
	}

	var all []model.Job
	for i, cat := range categories {
		if i > 0 {
			w.gate.Wait(ctx)
		}

		body, err := getBody(ctx, w.client, fmt.Sprintf("%s/categories/%s", w.BaseURL, cat), map[string]string{
			"Accept": "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		})
		if err != nil {
			w.log.Errorw("category fetch failed", "category", cat, "err", err)
			continue
		}

		jobs, err := w.parseCategoryHTML(body, keywords, cat)
		if err != nil {
			w.log.Errorw("category parse failed", "category", cat, "err", err)
			continue
		}
		all = append(all, jobs...)
	}
	return all
}

// parseCategoryHTML extracts listings from a category page. Entries whose
// required selectors are absent are skipped, not errors; the markup
// drifts and a partial harvest beats none.
func (w *WeWorkRemotely) parseCategoryHTML(body []byte, keywords, category string) ([]model.Job, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	kws := SplitKeywords(keywords)
	var jobs []model.Job

	doc.Find("section.jobs li").Each(func(i int, sel *goquery.Selection) {
		if sel.HasClass("feature--ad") {
			return
		}

		title := strings.TrimSpace(sel.Find(".new-listing__header__title").Text())
		if title == "" {
			return
		}

		company := strings.TrimSpace(sel.Find(".new-listing__company-name").Text())
		if company == "" {
			company = unknownCompany
		}

		href, _ := sel.Find(`a.listing-link--unlocked, a[href^="/remote-jobs/"]`).First().Attr("href")
		jobURL := w.absoluteURL(href)

		externalID := wwrIDFromURL(href)
		if externalID == "" {
			externalID = sanitizeID(href)
		}
		if externalID == "" {
			// Last resort: not idempotent across fetches.
			externalID = fmt.Sprintf("%d_%d", time.Now().Unix(), i)
		}

		location := strings.TrimSpace(sel.Find(".new-listing__company-headquarters").Text())
		if location == "" {
			location = "Remote"
		}

		if kws != nil && !matchesAnyKeyword(title+" "+company, kws) {
			return
		}

		lower := strings.ToLower(title)
		jobType := model.JobTypeFullTime
		switch {
		case strings.Contains(lower, "contract"):
			jobType = model.JobTypeContract
		case strings.Contains(lower, "part-time"):
			jobType = model.JobTypePartTime
		case strings.Contains(lower, "freelance"):
			jobType = model.JobTypeFreelance
		}

		jobs = append(jobs, model.Job{
			ExternalID:     fmt.Sprintf("wwr_%s", externalID),
			Source:         w.Source(),
			Title:          title,
			Company:        company,
			Location:       location,
			Description:    fmt.Sprintf("Remote position at %s. Posted on We Work Remotely in %s.", company, category),
			URL:            jobURL,
			SalaryCurrency: "USD",
			JobType:        jobType,
			Remote:         true,
			Tags:           ExtractTitleTags(title),
			PostedAt:       time.Now(), // category pages show no dates
		})
	})

	return jobs, nil
}

// wwrIDFromURL derives the stable listing id from a /remote-jobs/... URL,
// slashes folded to underscores.
func wwrIDFromURL(rawURL string) string {
	if m := wwrJobPathRe.FindStringSubmatch(rawURL); m != nil {
		return strings.ReplaceAll(m[1], "/", "_")
	}
	return ""
}

func (w *WeWorkRemotely) absoluteURL(href string) string {
	if href == "" || strings.HasPrefix(href, "http") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return w.BaseURL + href
}
