package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/dalemusser/notehub/internal/app/system/metrics"
)

func TestMiddleware_CountsByRoutePattern(t *testing.T) {
	c := metrics.NewCollector()

	r := chi.NewRouter()
	r.Use(c.Middleware)
	r.Get("/notes/{noteId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, id := range []string{"abc", "def", "ghi"} {
		req := httptest.NewRequest("GET", "/notes/"+id, nil)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	families, err := c.Gatherer().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	var found bool
	for _, fam := range families {
		if fam.GetName() != "notehub_http_requests_total" {
			continue
		}
		for _, m := range fam.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["path"] != "/notes/{noteId}" {
				t.Errorf("path label: got %q, want route pattern", labels["path"])
			}
			if labels["status"] != "200" {
				t.Errorf("status label: got %q", labels["status"])
			}
			if got := m.GetCounter().GetValue(); got != 3 {
				t.Errorf("counter: got %v, want 3 (one series per pattern)", got)
			}
			found = true
		}
	}
	if !found {
		t.Fatal("request counter not found in gathered metrics")
	}
}

func TestHandler_ServesScrapeOutput(t *testing.T) {
	c := metrics.NewCollector()

	r := chi.NewRouter()
	r.Use(c.Middleware)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/health", nil))

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "notehub_http_requests_total") {
		t.Error("scrape output missing request counter")
	}
	if !strings.Contains(string(body), "notehub_http_request_duration_seconds") {
		t.Error("scrape output missing latency histogram")
	}
}

func TestNewCollector_IndependentRegistries(t *testing.T) {
	a := metrics.NewCollector()
	b := metrics.NewCollector()

	r := chi.NewRouter()
	r.Use(a.Middleware)
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	families, err := b.Gatherer().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, fam := range families {
		if fam.GetName() == "notehub_http_requests_total" && len(fam.GetMetric()) > 0 {
			t.Error("second collector observed first collector's traffic")
		}
	}
}
