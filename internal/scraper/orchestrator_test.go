package scraper_test

import (
	"context"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/Dicode-Tech/dicode-app-jobseeker/internal/model"
	"github.com/Dicode-Tech/dicode-app-jobseeker/internal/scraper"
)

// fakeAdapter serves a canned job list, optionally panicking instead.
type fakeAdapter struct {
	name   string
	jobs   []model.Job
	panics bool
}

func (f *fakeAdapter) Source() string { return f.name }

func (f *fakeAdapter) Info() model.SourceInfo {
	return model.SourceInfo{Name: f.name}
}

func (f *fakeAdapter) Search(context.Context, string, string) []model.Job {
	if f.panics {
		panic("upstream payload changed shape")
	}
	return f.jobs
}

func fakeJob(source string, n int) model.Job {
	return model.Job{
		ExternalID: fmt.Sprintf("%s_%d", source, n),
		Source:     source,
		Title:      fmt.Sprintf("Engineer %d", n),
		Company:    "Acme",
		URL:        fmt.Sprintf("https://example.com/%s/%d", source, n),
	}
}

func fakeJobs(source string, count int) []model.Job {
	jobs := make([]model.Job, 0, count)
	for i := 0; i < count; i++ {
		jobs = append(jobs, fakeJob(source, i))
	}
	return jobs
}

func newOrchestrator(adapters ...scraper.Adapter) *scraper.Orchestrator {
	registry := scraper.NewRegistry(adapters...)
	return scraper.NewOrchestrator(registry, scraper.NopGate{}, zap.NewNop().Sugar())
}

// ── Run — dedup ────────────────────────────────────────────────────────────

func TestRun_DedupesWithinSource(t *testing.T) {
	dup := fakeJob("alpha", 1)
	a := &fakeAdapter{name: "alpha", jobs: []model.Job{dup, fakeJob("alpha", 2), dup}}

	got := newOrchestrator(a).Run(context.Background(), scraper.Options{})
	if len(got) != 2 {
		t.Fatalf("Run returned %d jobs, want 2", len(got))
	}
	if got[0].ExternalID != "alpha_1" || got[1].ExternalID != "alpha_2" {
		t.Errorf("dedup should keep first occurrence in order, got %v", got)
	}
}

func TestRun_DedupesAcrossSources_FirstSeenWins(t *testing.T) {
	shared := "shared_1"
	first := fakeJob("alpha", 0)
	first.ExternalID = shared
	first.Title = "From Alpha"
	second := fakeJob("beta", 0)
	second.ExternalID = shared
	second.Title = "From Beta"

	o := newOrchestrator(
		&fakeAdapter{name: "alpha", jobs: []model.Job{first}},
		&fakeAdapter{name: "beta", jobs: []model.Job{second}},
	)
	got := o.Run(context.Background(), scraper.Options{})
	if len(got) != 1 {
		t.Fatalf("Run returned %d jobs, want 1", len(got))
	}
	if got[0].Title != "From Alpha" {
		t.Errorf("cross-source collision should keep the first-seen job, got %q", got[0].Title)
	}
}

func TestDedupeByExternalID_Idempotent(t *testing.T) {
	jobs := append(fakeJobs("alpha", 3), fakeJob("alpha", 1))
	once := scraper.DedupeByExternalID(jobs)
	twice := scraper.DedupeByExternalID(once)
	if len(once) != 3 || len(twice) != 3 {
		t.Fatalf("dedup lengths = %d, %d, want 3, 3", len(once), len(twice))
	}
	for i := range once {
		if once[i].ExternalID != twice[i].ExternalID {
			t.Errorf("second dedup pass reordered element %d", i)
		}
	}
}

// ── Run — partial failure isolation ────────────────────────────────────────

func TestRun_PanickingAdapterDoesNotAbortSiblings(t *testing.T) {
	o := newOrchestrator(
		&fakeAdapter{name: "alpha", panics: true},
		&fakeAdapter{name: "beta", jobs: fakeJobs("beta", 3)},
	)

	var failedSource string
	var failErr error
	got := o.Run(context.Background(), scraper.Options{
		OnProgress: func(source string, found, processed int, err error) {
			if err != nil {
				failedSource = source
				failErr = err
			}
		},
	})

	if len(got) != 3 {
		t.Errorf("Run returned %d jobs, want the 3 from the healthy source", len(got))
	}
	if failedSource != "alpha" || failErr == nil {
		t.Errorf("progress should report the failing source, got (%q, %v)", failedSource, failErr)
	}
}

// ── Run — limit ────────────────────────────────────────────────────────────

func TestRun_TruncatesToLimit(t *testing.T) {
	a := &fakeAdapter{name: "alpha", jobs: fakeJobs("alpha", 10)}
	o := newOrchestrator(a)

	full := o.Run(context.Background(), scraper.Options{Limit: 10})
	capped := o.Run(context.Background(), scraper.Options{Limit: 4})

	if len(capped) != 4 {
		t.Fatalf("Run returned %d jobs, want 4", len(capped))
	}
	// Truncation keeps insertion order: the capped list is a prefix.
	for i := range capped {
		if capped[i].ExternalID != full[i].ExternalID {
			t.Errorf("capped[%d] = %q, want %q", i, capped[i].ExternalID, full[i].ExternalID)
		}
	}
}

func TestRun_DefaultLimit(t *testing.T) {
	a := &fakeAdapter{name: "alpha", jobs: fakeJobs("alpha", scraper.DefaultLimit+20)}
	got := newOrchestrator(a).Run(context.Background(), scraper.Options{})
	if len(got) != scraper.DefaultLimit {
		t.Errorf("Run returned %d jobs, want the default limit %d", len(got), scraper.DefaultLimit)
	}
}

// ── Run — validation ───────────────────────────────────────────────────────

func TestRun_DropsIncompleteJobs(t *testing.T) {
	broken := fakeJob("alpha", 9)
	broken.Company = ""
	a := &fakeAdapter{name: "alpha", jobs: []model.Job{fakeJob("alpha", 1), broken}}

	got := newOrchestrator(a).Run(context.Background(), scraper.Options{})
	if len(got) != 1 {
		t.Fatalf("Run returned %d jobs, want 1 (incomplete job dropped)", len(got))
	}
	if got[0].ExternalID != "alpha_1" {
		t.Errorf("surviving job = %q, want alpha_1", got[0].ExternalID)
	}
}

// ── Run — source resolution ────────────────────────────────────────────────

func TestRun_UnknownSourcesSilentlyDropped(t *testing.T) {
	o := newOrchestrator(&fakeAdapter{name: "alpha", jobs: fakeJobs("alpha", 2)})

	got := o.Run(context.Background(), scraper.Options{Sources: []string{"alpha", "nosuch"}})
	if len(got) != 2 {
		t.Errorf("Run returned %d jobs, want 2 (unknown source ignored)", len(got))
	}

	got = o.Run(context.Background(), scraper.Options{Sources: []string{"nosuch"}})
	if len(got) != 0 {
		t.Errorf("Run with only unknown sources returned %d jobs, want 0", len(got))
	}
}

func TestRun_AllExpandsToEveryAdapterInOrder(t *testing.T) {
	o := newOrchestrator(
		&fakeAdapter{name: "alpha", jobs: fakeJobs("alpha", 1)},
		&fakeAdapter{name: "beta", jobs: fakeJobs("beta", 1)},
	)

	var order []string
	o.Run(context.Background(), scraper.Options{
		Sources: []string{"all"},
		OnProgress: func(source string, _, _ int, _ error) {
			order = append(order, source)
		},
	})
	if len(order) != 2 || order[0] != "alpha" || order[1] != "beta" {
		t.Errorf("processing order = %v, want [alpha beta]", order)
	}
}

// ── Registry ───────────────────────────────────────────────────────────────

func TestRegistry_Resolve(t *testing.T) {
	r := scraper.NewRegistry(
		&fakeAdapter{name: "alpha"},
		&fakeAdapter{name: "beta"},
	)

	if got := r.Resolve([]string{"beta", "beta", "ghost"}); len(got) != 1 || got[0].Source() != "beta" {
		t.Errorf("Resolve should drop duplicates and unknowns, got %d adapters", len(got))
	}
	if got := r.Resolve([]string{"ghost", "all"}); len(got) != 2 {
		t.Errorf("Resolve with \"all\" should expand to every adapter, got %d", len(got))
	}
}
