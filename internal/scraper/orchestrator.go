package scraper

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Dicode-Tech/dicode-app-jobseeker/internal/model"
)

// DefaultLimit caps the aggregate result set when the caller gives none.
const DefaultLimit = 100

// Candidate lists for the authenticated search when the caller supplies no
// keywords/location. Only a bounded slice of the cross-product is queried
// (first 3 keywords × first 2 locations) to cap external call volume.
var (
	adzunaCandidateKeywords = []string{
		"software engineer", "desarrollador", "programador",
		"tech lead", "engineering manager", "cto", "vp engineering",
	}
	adzunaCandidateLocations = []string{"madrid", "barcelona", "valencia", "españa"}
)

// ProgressFunc is invoked synchronously after each adapter completes. err
// is non-nil when the adapter failed outright; it never triggers retries.
type ProgressFunc func(source string, found, processed int, err error)

// Options configures one orchestrator run.
type Options struct {
	Sources    []string // source names, or "all"; empty means "all"
	Keywords   string
	Location   string
	Limit      int // 0 means DefaultLimit
	OnProgress ProgressFunc
}

// Orchestrator coordinates the source adapters into one deduplicated
// result set. Runs are stateless: no cursor survives between calls.
type Orchestrator struct {
	registry *Registry
	gate     Gate
	log      *zap.SugaredLogger
}

// NewOrchestrator wires the orchestrator with its adapter registry and the
// gate used to space multi-request strategies.
func NewOrchestrator(registry *Registry, gate Gate, log *zap.SugaredLogger) *Orchestrator {
	return &Orchestrator{
		registry: registry,
		gate:     gate,
		log:      log.Named("orchestrator"),
	}
}

// Run executes the requested sources sequentially, deduplicates within and
// then across sources (first-seen wins, order-preserving), drops jobs
// missing required fields, and truncates to the limit in insertion order.
//
// One adapter's failure is reported through OnProgress and never aborts
// the remaining adapters; the caller always receives a (possibly empty)
// list, never an error.
func (o *Orchestrator) Run(ctx context.Context, opts Options) []model.Job {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	progress := opts.OnProgress
	if progress == nil {
		progress = func(string, int, int, error) {}
	}
	sources := opts.Sources
	if len(sources) == 0 {
		sources = []string{"all"}
	}

	adapters := o.registry.Resolve(sources)
	if len(adapters) == 0 {
		o.log.Warnw("no valid sources resolved", "requested", sources)
		return nil
	}

	o.log.Infow("run started", "adapters", len(adapters), "keywords", opts.Keywords, "limit", limit)

	var all []model.Job
	dropped := 0

	for _, adapter := range adapters {
		source := adapter.Source()

		jobs, err := o.searchSource(ctx, adapter, opts.Keywords, opts.Location, limit)
		if err != nil {
			o.log.Errorw("adapter failed", "source", source, "err", err)
			progress(source, 0, 0, err)
			continue
		}

		valid := jobs[:0:0]
		for _, j := range jobs {
			if ValidJob(j) {
				valid = append(valid, j)
			} else {
				dropped++
			}
		}

		unique := DedupeByExternalID(valid)
		o.log.Infow("adapter done", "source", source, "unique", len(unique))
		progress(source, len(unique), len(unique), nil)
		all = append(all, unique...)
	}

	if dropped > 0 {
		o.log.Warnw("dropped jobs missing required fields", "count", dropped)
	}

	unique := DedupeByExternalID(all)
	if len(unique) > limit {
		unique = unique[:limit]
	}

	o.log.Infow("run complete", "total", len(unique), "adapters", len(adapters))
	return unique
}

// searchSource dispatches the source-specific search strategy. The
// per-source branching reflects real upstream heterogeneity and is kept
// explicit rather than generalized away. A panic escaping an adapter's own
// handling is converted into a per-adapter error so siblings keep running.
func (o *Orchestrator) searchSource(ctx context.Context, a Adapter, keywords, location string, limit int) (jobs []model.Job, err error) {
	defer func() {
		if r := recover(); r != nil {
			jobs, err = nil, fmt.Errorf("adapter panic: %v", r)
		}
	}()

	switch ad := a.(type) {
	case *Adzuna:
		// Bounded keyword × location cross-product.
		kwList := []string{keywords}
		if keywords == "" {
			kwList = adzunaCandidateKeywords
		}
		locList := []string{location}
		if location == "" {
			locList = adzunaCandidateLocations
		}
		if len(kwList) > 3 {
			kwList = kwList[:3]
		}
		if len(locList) > 2 {
			locList = locList[:2]
		}

		first := true
		for _, kw := range kwList {
			for _, loc := range locList {
				if !first {
					o.gate.Wait(ctx)
				}
				first = false
				jobs = append(jobs, ad.Search(ctx, kw, loc)...)
			}
		}
		return jobs, nil

	case *RemoteOK:
		// Bulk listing filtered by the keywords both as substrings and as tags.
		tags := SplitKeywords(keywords)
		if tags == nil {
			tags = []string{"software", "engineering"}
		}
		return ad.SearchTags(ctx, keywords, tags), nil

	case *Arbeitnow:
		// Direct search; opportunistic second page when the first
		// under-fills half the target.
		jobs = ad.SearchPage(ctx, keywords, location, 1)
		if len(jobs) < limit/2 {
			o.gate.Wait(ctx)
			jobs = append(jobs, ad.SearchPage(ctx, keywords, location, 2)...)
		}
		return jobs, nil

	case *WeWorkRemotely:
		// Feed first; without keywords, scope the HTML fallback to the
		// programming category.
		category := ""
		if keywords == "" {
			category = "programming"
		}
		return ad.SearchCategory(ctx, keywords, category), nil

	default:
		return a.Search(ctx, keywords, location), nil
	}
}

// DedupeByExternalID removes duplicate jobs by external_id, keeping the
// first occurrence and preserving order. Idempotent.
func DedupeByExternalID(jobs []model.Job) []model.Job {
	seen := make(map[string]bool, len(jobs))
	out := make([]model.Job, 0, len(jobs))
	for _, j := range jobs {
		if seen[j.ExternalID] {
			continue
		}
		seen[j.ExternalID] = true
		out = append(out, j)
	}
	return out
}
