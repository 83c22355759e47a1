package scraper_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"go.uber.org/zap"

	"github.com/Dicode-Tech/dicode-app-jobseeker/internal/scraper"
)

func himalayasPayload(offset, count, total int) string {
	type job struct {
		Title       string `json:"title"`
		CompanyName string `json:"companyName"`
		GUID        string `json:"guid"`
		PubDate     int64  `json:"pubDate"`
	}
	jobs := make([]job, 0, count)
	for i := 0; i < count; i++ {
		n := offset + i
		jobs = append(jobs, job{
			Title:       fmt.Sprintf("Engineer %d", n),
			CompanyName: "Summit Inc",
			GUID:        fmt.Sprintf("https://himalayas.app/companies/summit/jobs/engineer-%d", n),
			PubDate:     1756300800,
		})
	}
	payload, _ := json.Marshal(map[string]any{"jobs": jobs, "totalCount": total})
	return string(payload)
}

// ── Search — offset loop ───────────────────────────────────────────────────

func TestHimalayas_StopsAtRequestCap(t *testing.T) {
	var offsets []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		offsets = append(offsets, offset)
		// Always report more remaining so only the request cap can stop the loop.
		w.Write([]byte(himalayasPayload(offset, 10, 10000)))
	}))
	defer srv.Close()

	h := scraper.NewHimalayas(scraper.NopGate{}, zap.NewNop().Sugar())
	h.BaseURL = srv.URL

	h.Search(context.Background(), "", "")
	if len(offsets) != 3 {
		t.Fatalf("Search issued %d requests, want the cap of 3", len(offsets))
	}
	if offsets[0] != 0 || offsets[1] != 100 || offsets[2] != 200 {
		t.Errorf("offsets = %v, want [0 100 200]", offsets)
	}
}

func TestHimalayas_StopsWhenTotalReached(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte(himalayasPayload(0, 8, 8)))
	}))
	defer srv.Close()

	h := scraper.NewHimalayas(scraper.NopGate{}, zap.NewNop().Sugar())
	h.BaseURL = srv.URL

	jobs := h.Search(context.Background(), "", "")
	if requests != 1 {
		t.Errorf("Search issued %d requests, want 1 (total already covered)", requests)
	}
	if len(jobs) != 8 {
		t.Errorf("Search returned %d jobs, want 8", len(jobs))
	}
}

// ── Search — mapping and filters ───────────────────────────────────────────

func TestHimalayas_IDFromGUID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(himalayasPayload(0, 1, 1)))
	}))
	defer srv.Close()

	h := scraper.NewHimalayas(scraper.NopGate{}, zap.NewNop().Sugar())
	h.BaseURL = srv.URL

	jobs := h.Search(context.Background(), "", "")
	if len(jobs) != 1 {
		t.Fatalf("Search returned %d jobs, want 1", len(jobs))
	}
	if jobs[0].ExternalID != "himalayas_engineer-0" {
		t.Errorf("ExternalID = %q, want the GUID path segment", jobs[0].ExternalID)
	}
	if !jobs[0].Remote {
		t.Error("Remote should be forced true")
	}
}

func TestHimalayas_KeywordFilter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(himalayasPayload(0, 5, 5)))
	}))
	defer srv.Close()

	h := scraper.NewHimalayas(scraper.NopGate{}, zap.NewNop().Sugar())
	h.BaseURL = srv.URL

	jobs := h.Search(context.Background(), "engineer 3", "")
	// Each keyword matches independently: "engineer" matches all five.
	if len(jobs) != 5 {
		t.Errorf("Search(engineer 3) returned %d jobs, want 5", len(jobs))
	}

	jobs = h.Search(context.Background(), "astronaut", "")
	if len(jobs) != 0 {
		t.Errorf("Search(astronaut) returned %d jobs, want 0", len(jobs))
	}
}
