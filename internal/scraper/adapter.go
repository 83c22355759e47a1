// Package scraper implements the multi-source job fetching pipeline:
// one adapter per external job board, normalizing everything onto the
// canonical model.Job record, plus the orchestrator that coordinates them.
package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Dicode-Tech/dicode-app-jobseeker/internal/model"
)

const (
	httpTimeout      = 15 * time.Second
	defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Adapter is the one capability every source implements: fetch postings
// matching the given keywords/location and map them onto model.Job.
//
// Search never returns an error. Ordinary failures (missing credentials,
// network error, malformed upstream payload, empty result) degrade to an
// empty slice with a logged diagnostic; one failing source must never
// abort the aggregate run. Retry policy, if any, belongs to the caller.
type Adapter interface {
	Source() string
	Info() model.SourceInfo
	Search(ctx context.Context, keywords, location string) []model.Job
}

// Registry is an explicit, order-preserving map from source name to
// adapter. It is built once at startup and passed into the orchestrator;
// no package-level registration.
type Registry struct {
	order  []string
	byName map[string]Adapter
}

// NewRegistry builds a registry from the given adapters, preserving their
// order. That order is the "all"-sources processing order.
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{byName: make(map[string]Adapter, len(adapters))}
	for _, a := range adapters {
		name := a.Source()
		if _, dup := r.byName[name]; dup {
			continue
		}
		r.order = append(r.order, name)
		r.byName[name] = a
	}
	return r
}

// Names returns the registered source names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Get returns the adapter registered under name.
func (r *Registry) Get(name string) (Adapter, bool) {
	a, ok := r.byName[name]
	return a, ok
}

// Infos returns the SourceInfo of every registered adapter, in order.
func (r *Registry) Infos() []model.SourceInfo {
	infos := make([]model.SourceInfo, 0, len(r.order))
	for _, name := range r.order {
		infos = append(infos, r.byName[name].Info())
	}
	return infos
}

// Resolve maps requested source names to adapters. The name "all" expands
// to every registered adapter; unknown names are silently dropped.
func (r *Registry) Resolve(names []string) []Adapter {
	for _, n := range names {
		if n == "all" {
			out := make([]Adapter, 0, len(r.order))
			for _, name := range r.order {
				out = append(out, r.byName[name])
			}
			return out
		}
	}

	var out []Adapter
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		a, ok := r.byName[n]
		if !ok || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, a)
	}
	return out
}

// newHTTPClient returns the shared per-adapter HTTP client. Each adapter
// owns its own client so one source's timeout tuning never leaks into
// another's.
func newHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// getBody performs a GET with the given headers and returns the response
// body. Non-2xx statuses are errors.
func getBody(ctx context.Context, client *http.Client, rawURL string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("upstream returned %d", resp.StatusCode)
	}
	return body, nil
}
