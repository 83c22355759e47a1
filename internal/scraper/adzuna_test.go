package scraper_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Dicode-Tech/dicode-app-jobseeker/internal/scraper"
)

const adzunaFixture = `{
	"count": 2,
	"results": [
		{
			"id": 4567,
			"title": "VP of Engineering",
			"description": "Lead our platform team. Remote friendly.",
			"company": {"display_name": "Acme SL"},
			"location": {"display_name": "Valencia, Comunidad Valenciana"},
			"salary_min": 70000.0,
			"salary_max": 90000.0,
			"redirect_url": "https://adzuna.example.com/details/4567",
			"created": "2026-08-28T10:00:00Z",
			"contract_time": "full_time",
			"category": {"tag": "it-jobs", "label": "IT Jobs"}
		},
		{
			"id": "8901",
			"title": "Desarrollador Backend",
			"description": "Equipo de producto.",
			"company": {},
			"location": {"display_name": "Madrid"},
			"redirect_url": "https://adzuna.example.com/details/8901",
			"date": "2026-08-27"
		}
	]
}`

// ── Search — credentials guard ─────────────────────────────────────────────

func TestAdzuna_MissingCredentialsSkipsNetwork(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer srv.Close()

	a := scraper.NewAdzuna("", "", "es", zap.NewNop().Sugar())
	a.BaseURL = srv.URL

	if got := a.Search(context.Background(), "go", "madrid"); got != nil {
		t.Errorf("Search without credentials = %d jobs, want nil", len(got))
	}
	if hits != 0 {
		t.Errorf("Search without credentials made %d upstream calls, want 0", hits)
	}
}

// ── Search — mapping ───────────────────────────────────────────────────────

func TestAdzuna_Search(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"app_id":  q.Get("app_id"),
			"what":    q.Get("what"),
			"where":   q.Get("where"),
			"sort_by": q.Get("sort_by"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(adzunaFixture))
	}))
	defer srv.Close()

	a := scraper.NewAdzuna("id", "key", "es", zap.NewNop().Sugar())
	a.BaseURL = srv.URL

	jobs := a.Search(context.Background(), "engineering", "valencia")
	if len(jobs) != 2 {
		t.Fatalf("Search returned %d jobs, want 2", len(jobs))
	}

	if gotQuery["app_id"] != "id" || gotQuery["what"] != "engineering" ||
		gotQuery["where"] != "valencia" || gotQuery["sort_by"] != "date" {
		t.Errorf("unexpected query params: %v", gotQuery)
	}

	j := jobs[0]
	if j.ExternalID != "adzuna_4567" {
		t.Errorf("ExternalID = %q, want adzuna_4567 (numeric id accepted)", j.ExternalID)
	}
	if j.Source != "adzuna" || j.Company != "Acme SL" || j.Title != "VP of Engineering" {
		t.Errorf("unexpected mapping: %+v", j)
	}
	if j.SalaryMin == nil || *j.SalaryMin != 70000 || j.SalaryMax == nil || *j.SalaryMax != 90000 {
		t.Errorf("salary = (%v, %v), want (70000, 90000)", j.SalaryMin, j.SalaryMax)
	}
	if j.SalaryCurrency != "EUR" {
		t.Errorf("SalaryCurrency = %q, want EUR default", j.SalaryCurrency)
	}
	if !j.Remote {
		t.Error("description mentions remote, Remote should be true")
	}
	if j.Tags != "it-jobs" {
		t.Errorf("Tags = %q, want it-jobs", j.Tags)
	}
	want := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	if !j.PostedAt.Equal(want) {
		t.Errorf("PostedAt = %v, want %v", j.PostedAt, want)
	}
}

func TestAdzuna_DateKeyFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(adzunaFixture))
	}))
	defer srv.Close()

	a := scraper.NewAdzuna("id", "key", "es", zap.NewNop().Sugar())
	a.BaseURL = srv.URL

	jobs := a.Search(context.Background(), "", "")
	if len(jobs) != 2 {
		t.Fatalf("Search returned %d jobs, want 2", len(jobs))
	}

	// Second fixture entry has only the legacy "date" key, date-only format.
	j := jobs[1]
	want := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)
	if !j.PostedAt.Equal(want) {
		t.Errorf("PostedAt = %v, want %v (fallback to \"date\" key)", j.PostedAt, want)
	}
	if j.Company != "Unknown Company" {
		t.Errorf("Company = %q, want the unknown-company default", j.Company)
	}
}

func TestAdzuna_UpstreamErrorYieldsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	a := scraper.NewAdzuna("id", "key", "es", zap.NewNop().Sugar())
	a.BaseURL = srv.URL

	if got := a.Search(context.Background(), "go", ""); len(got) != 0 {
		t.Errorf("Search against failing upstream = %d jobs, want 0", len(got))
	}
}
