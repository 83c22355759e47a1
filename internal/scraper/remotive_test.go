package scraper_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/Dicode-Tech/dicode-app-jobseeker/internal/scraper"
)

const remotiveFixture = `{
	"jobs": [
		{
			"id": 2041337,
			"title": "Senior Backend Engineer",
			"company_name": "Orbital",
			"description": "Python and Go services.",
			"url": "https://remotive.com/remote-jobs/software-dev/senior-backend-engineer-2041337",
			"tags": ["python", "go"],
			"job_type": "full_time",
			"salary": "$100k - $120k",
			"candidate_required_location": "Worldwide",
			"publication_date": "2026-08-21T09:30:00"
		},
		{
			"id": "2041901",
			"title": "QA Engineer",
			"company_name": "Checkmark",
			"description": "Manual and automated testing.",
			"url": "https://remotive.com/remote-jobs/qa/qa-engineer-2041901",
			"tags": ["qa"],
			"job_type": "contract",
			"salary": "",
			"candidate_required_location": "USA Only",
			"publication_date": "2026-08-22T14:00:00"
		}
	]
}`

// ── Search — request strategy ──────────────────────────────────────────────

func TestRemotive_KeywordsUseSingleSearchRequest(t *testing.T) {
	var searches, categories []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		searches = append(searches, r.URL.Query().Get("search"))
		categories = append(categories, r.URL.Query().Get("category"))
		w.Write([]byte(remotiveFixture))
	}))
	defer srv.Close()

	rm := scraper.NewRemotive(scraper.NopGate{}, zap.NewNop().Sugar())
	rm.BaseURL = srv.URL

	rm.Search(context.Background(), "backend", "")
	if len(searches) != 1 || searches[0] != "backend" || categories[0] != "" {
		t.Errorf("keyword search issued requests (search=%v, category=%v), want one search request", searches, categories)
	}
}

func TestRemotive_NoKeywordsFanOutOverCategories(t *testing.T) {
	var categories []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		categories = append(categories, r.URL.Query().Get("category"))
		w.Write([]byte(remotiveFixture))
	}))
	defer srv.Close()

	rm := scraper.NewRemotive(scraper.NopGate{}, zap.NewNop().Sugar())
	rm.BaseURL = srv.URL

	rm.Search(context.Background(), "", "")
	if len(categories) != 2 || categories[0] != "software-dev" || categories[1] != "devops" {
		t.Errorf("category fan-out = %v, want [software-dev devops]", categories)
	}
}

// ── Search — mapping ───────────────────────────────────────────────────────

func TestRemotive_SalaryRangeParsing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(remotiveFixture))
	}))
	defer srv.Close()

	rm := scraper.NewRemotive(scraper.NopGate{}, zap.NewNop().Sugar())
	rm.BaseURL = srv.URL

	jobs := rm.Search(context.Background(), "engineer", "")
	if len(jobs) != 2 {
		t.Fatalf("Search returned %d jobs, want 2", len(jobs))
	}

	j := jobs[0]
	if j.SalaryMin == nil || *j.SalaryMin != 100000 || j.SalaryMax == nil || *j.SalaryMax != 120000 {
		t.Errorf("salary = (%v, %v), want (100000, 120000) from the display string", j.SalaryMin, j.SalaryMax)
	}
	if jobs[1].SalaryMin != nil || jobs[1].SalaryMax != nil {
		t.Errorf("empty salary string should yield nil bounds, got (%v, %v)", jobs[1].SalaryMin, jobs[1].SalaryMax)
	}
}

func TestRemotive_RemoteDetection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(remotiveFixture))
	}))
	defer srv.Close()

	rm := scraper.NewRemotive(scraper.NopGate{}, zap.NewNop().Sugar())
	rm.BaseURL = srv.URL

	jobs := rm.Search(context.Background(), "engineer", "")
	if !jobs[0].Remote {
		t.Error("Worldwide listing should be remote")
	}
	if jobs[1].Remote {
		t.Error("USA Only listing should not be remote")
	}
	if jobs[0].ExternalID != "remotive_2041337" || jobs[1].ExternalID != "remotive_2041901" {
		t.Errorf("external ids = %q, %q; numeric and string ids should normalize alike",
			jobs[0].ExternalID, jobs[1].ExternalID)
	}
}
