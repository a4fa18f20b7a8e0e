package api_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/obsidianstack/launchdash/server/internal/api"
	"github.com/obsidianstack/launchdash/server/internal/dataset"
	"github.com/obsidianstack/launchdash/server/internal/metrics"
	"github.com/obsidianstack/launchdash/server/internal/query"
)

// --- test helpers -----------------------------------------------------------

func newDataset() *dataset.Dataset {
	return dataset.New([]dataset.Record{
		{Site: "CCAFS", PayloadMassKg: 5000, Outcome: dataset.Success, BoosterVersionCategory: "v1.0"},
		{Site: "CCAFS", PayloadMassKg: 3000, Outcome: dataset.Failure, BoosterVersionCategory: "v1.0"},
		{Site: "KSC", PayloadMassKg: 7000, Outcome: dataset.Success, BoosterVersionCategory: "v1.1"},
	})
}

func newHandler() (http.Handler, *metrics.Metrics) {
	m := metrics.New()
	return api.New(newDataset(), m, []string{"http://localhost:3000"}), m
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode JSON: %v (body: %s)", err, rr.Body.String())
	}
}

func counter(t *testing.T, m *metrics.Metrics, kind string) float64 {
	t.Helper()
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	mfs, err := metrics.Parse(rr.Body)
	if err != nil {
		t.Fatalf("parse metrics: %v", err)
	}
	return metrics.SumFamily(mfs[metrics.QueriesTotal], map[string]string{"kind": kind, "transport": metrics.TransportHTTP})
}

// --- /api/v1/health ---------------------------------------------------------

func TestHealth(t *testing.T) {
	h, _ := newHandler()
	rr := get(t, h, "/api/v1/health")

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}
	var resp api.HealthResponse
	decode(t, rr, &resp)

	want := api.HealthResponse{State: "ok", Records: 3, Sites: 2, MinPayload: 3000, MaxPayload: 7000}
	if diff := cmp.Diff(want, resp); diff != "" {
		t.Errorf("health mismatch (-want +got):\n%s", diff)
	}
}

// --- /api/v1/options --------------------------------------------------------

func TestOptions(t *testing.T) {
	h, _ := newHandler()
	rr := get(t, h, "/api/v1/options")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}

	var resp api.OptionsResponse
	decode(t, rr, &resp)

	wantSites := []api.SiteOption{
		{Label: "All Sites", Value: "ALL"},
		{Label: "CCAFS", Value: "CCAFS"},
		{Label: "KSC", Value: "KSC"},
	}
	if diff := cmp.Diff(wantSites, resp.Sites); diff != "" {
		t.Errorf("sites mismatch (-want +got):\n%s", diff)
	}
	if resp.DefaultSite != "ALL" {
		t.Errorf("default_site: got %q, want ALL", resp.DefaultSite)
	}
	if resp.Slider.Min != 0 || resp.Slider.Max != 10000 || resp.Slider.Step != 1000 {
		t.Errorf("slider: got %+v", resp.Slider)
	}
	if resp.Slider.Value != [2]float64{3000, 7000} {
		t.Errorf("slider value: got %v, want [3000 7000]", resp.Slider.Value)
	}
}

// --- /api/v1/summary --------------------------------------------------------

func TestSummary_AllSites(t *testing.T) {
	h, m := newHandler()
	rr := get(t, h, "/api/v1/summary?site=ALL")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}

	var resp api.SummaryResponse
	decode(t, rr, &resp)

	want := api.SummaryResponse{
		Site:   "ALL",
		Mode:   "by_site",
		Title:  "Total Success Launches By Site",
		Slices: []api.Slice{{Label: "CCAFS", Value: 1}, {Label: "KSC", Value: 1}},
	}
	if diff := cmp.Diff(want, resp); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
	if got := counter(t, m, metrics.KindSummary); got != 1 {
		t.Errorf("summary counter: got %v, want 1", got)
	}
}

func TestSummary_DefaultsToAllSites(t *testing.T) {
	h, _ := newHandler()
	var resp api.SummaryResponse
	decode(t, get(t, h, "/api/v1/summary"), &resp)
	if resp.Site != "ALL" || resp.Mode != "by_site" {
		t.Errorf("got site %q mode %q, want ALL by_site", resp.Site, resp.Mode)
	}
}

func TestSummary_OneSite(t *testing.T) {
	h, _ := newHandler()
	var resp api.SummaryResponse
	decode(t, get(t, h, "/api/v1/summary?site=CCAFS"), &resp)

	want := api.SummaryResponse{
		Site:   "CCAFS",
		Mode:   "site_outcomes",
		Title:  "Total Success Launches for site CCAFS",
		Slices: []api.Slice{{Label: "Success", Value: 1}, {Label: "Failure", Value: 1}},
	}
	if diff := cmp.Diff(want, resp); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestSummary_UnknownSiteIsEmpty(t *testing.T) {
	h, _ := newHandler()
	rr := get(t, h, "/api/v1/summary?site=Nowhere")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	// Slices must encode as [] rather than null.
	if !strings.Contains(rr.Body.String(), `"slices":[]`) {
		t.Errorf("body: want empty slices array, got %s", rr.Body.String())
	}
}

// --- /api/v1/correlation ----------------------------------------------------

func TestCorrelation_AllSitesRange(t *testing.T) {
	h, m := newHandler()
	rr := get(t, h, "/api/v1/correlation?site=ALL&low=4000&high=8000")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}

	var resp api.CorrelationResponse
	decode(t, rr, &resp)

	want := api.CorrelationResponse{
		Site:        "ALL",
		PayloadLow:  4000,
		PayloadHigh: 8000,
		Title:       "Correlation between Payload and Success for all Sites",
		Count:       2,
		Points: []api.Point{
			{PayloadMassKg: 5000, Outcome: 1, OutcomeLabel: "Success", BoosterVersionCategory: "v1.0", Site: "CCAFS"},
			{PayloadMassKg: 7000, Outcome: 1, OutcomeLabel: "Success", BoosterVersionCategory: "v1.1", Site: "KSC"},
		},
	}
	if diff := cmp.Diff(want, resp); diff != "" {
		t.Errorf("correlation mismatch (-want +got):\n%s", diff)
	}
	if got := counter(t, m, metrics.KindCorrelation); got != 1 {
		t.Errorf("correlation counter: got %v, want 1", got)
	}
}

func TestCorrelation_DefaultBounds(t *testing.T) {
	h, _ := newHandler()
	var resp api.CorrelationResponse
	decode(t, get(t, h, "/api/v1/correlation?site=KSC"), &resp)

	if resp.PayloadLow != 3000 || resp.PayloadHigh != 7000 {
		t.Errorf("bounds: got [%v,%v], want dataset range [3000,7000]", resp.PayloadLow, resp.PayloadHigh)
	}
	if resp.Count != 1 || resp.Points[0].Site != "KSC" {
		t.Errorf("points: got %+v, want the single KSC launch", resp.Points)
	}
	if resp.Title != "Correlation between Payload and Success for site KSC" {
		t.Errorf("title: got %q", resp.Title)
	}
}

func TestCorrelation_ReversedBoundsSwapped(t *testing.T) {
	h, _ := newHandler()
	var resp api.CorrelationResponse
	decode(t, get(t, h, "/api/v1/correlation?low=8000&high=4000"), &resp)

	if resp.PayloadLow != 4000 || resp.PayloadHigh != 8000 {
		t.Errorf("bounds: got [%v,%v], want [4000,8000]", resp.PayloadLow, resp.PayloadHigh)
	}
	if resp.Count != 2 {
		t.Errorf("count: got %d, want 2", resp.Count)
	}
}

func TestCorrelation_EmptyRange(t *testing.T) {
	h, _ := newHandler()
	rr := get(t, h, "/api/v1/correlation?low=20000&high=30000")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"points":[]`) {
		t.Errorf("body: want empty points array, got %s", rr.Body.String())
	}
}

func TestCorrelation_InvalidBound(t *testing.T) {
	h, _ := newHandler()
	for _, path := range []string{
		"/api/v1/correlation?low=heavy",
		"/api/v1/correlation?high=NaN",
		"/api/v1/correlation?low=-Inf",
	} {
		rr := get(t, h, path)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: status got %d, want 400", path, rr.Code)
			continue
		}
		var resp map[string]string
		decode(t, rr, &resp)
		if !strings.HasPrefix(resp["error"], "invalid query") {
			t.Errorf("%s: error got %q", path, resp["error"])
		}
	}
}

// --- routing ----------------------------------------------------------------

func TestMethodNotAllowed(t *testing.T) {
	h, _ := newHandler()
	for _, path := range []string{"/api/v1/health", "/api/v1/summary", "/api/v1/correlation", "/api/v1/options"} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, path, nil))
		if rr.Code != http.StatusMethodNotAllowed {
			t.Errorf("POST %s: got %d, want 405", path, rr.Code)
		}
	}
}

func TestNotFound(t *testing.T) {
	h, _ := newHandler()
	rr := get(t, h, "/api/v1/nope")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want 404", rr.Code)
	}
	var resp map[string]string
	decode(t, rr, &resp)
	if resp["error"] != "not found" {
		t.Errorf("error: got %q", resp["error"])
	}
}

func TestCORS_AllowedOrigin(t *testing.T) {
	h, _ := newHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin: got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("disallowed origin got Access-Control-Allow-Origin %q", got)
	}
}

// --- builders ---------------------------------------------------------------

func TestParseQuery(t *testing.T) {
	ds := newDataset()

	q, err := api.ParseQuery(ds, " KSC ", "", "6000")
	if err != nil {
		t.Fatalf("ParseQuery: %v", err)
	}
	want := query.Query{Site: "KSC", PayloadLow: 3000, PayloadHigh: 6000}
	if diff := cmp.Diff(want, q); diff != "" {
		t.Errorf("ParseQuery mismatch (-want +got):\n%s", diff)
	}

	if _, err := api.ParseQuery(ds, "", "abc", ""); !errors.Is(err, query.ErrInvalidQuery) {
		t.Errorf("bad low: got %v, want ErrInvalidQuery", err)
	}
}

func TestQueryRequest(t *testing.T) {
	ds := newDataset()
	low, high := 9000.0, 1000.0

	q, err := api.QueryRequest{Site: "CCAFS", PayloadLow: &low, PayloadHigh: &high}.Query(ds)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	want := query.Query{Site: "CCAFS", PayloadLow: 1000, PayloadHigh: 9000}
	if diff := cmp.Diff(want, q); diff != "" {
		t.Errorf("Query mismatch (-want +got):\n%s", diff)
	}

	q, err = api.QueryRequest{}.Query(ds)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if diff := cmp.Diff(query.DefaultQuery(ds), q); diff != "" {
		t.Errorf("empty request mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildUpdate_MatchesEndpoints(t *testing.T) {
	ds := newDataset()
	q := query.Query{Site: "CCAFS", PayloadLow: 0, PayloadHigh: 10000}
	up := api.BuildUpdate(ds, q)

	if diff := cmp.Diff(api.BuildSummary(ds, "CCAFS"), up.Summary); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(api.BuildCorrelation(ds, q), up.Correlation); diff != "" {
		t.Errorf("correlation mismatch (-want +got):\n%s", diff)
	}
}
