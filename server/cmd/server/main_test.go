package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/obsidianstack/launchdash/server/internal/config"
	"github.com/obsidianstack/launchdash/server/internal/dataset"
	"github.com/obsidianstack/launchdash/server/internal/metrics"
	"github.com/obsidianstack/launchdash/server/internal/ws"
)

const testCSV = "../../internal/dataset/testdata/spacex_launch_dash.csv"

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, found, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if found {
		t.Error("found: got true, want false")
	}
	if cfg.Server.HTTPPort != config.DefaultHTTPPort {
		t.Errorf("http_port: got %d, want %d", cfg.Server.HTTPPort, config.DefaultHTTPPort)
	}
}

func TestLoadConfig_InvalidFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  http_port: -1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, _, err := loadConfig(path); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestLoadDataset_RecordsMetrics(t *testing.T) {
	m := metrics.New()
	ds, err := loadDataset(context.Background(), config.DatasetConfig{Source: testCSV}, m)
	if err != nil {
		t.Fatalf("loadDataset: %v", err)
	}
	if ds.Len() != 14 {
		t.Errorf("records: got %d, want 14", ds.Len())
	}

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	mfs, err := metrics.Parse(rr.Body)
	if err != nil {
		t.Fatalf("parse metrics: %v", err)
	}
	if got := metrics.SumFamily(mfs[metrics.DatasetSites], nil); got != 4 {
		t.Errorf("%s: got %v, want 4", metrics.DatasetSites, got)
	}
}

func TestLoadDataset_MissingSource(t *testing.T) {
	_, err := loadDataset(context.Background(), config.DatasetConfig{Source: "does-not-exist.csv"}, nil)
	var le *dataset.LoadError
	if !errors.As(err, &le) {
		t.Fatalf("error: got %v, want *dataset.LoadError", err)
	}
}

func newRoutes(t *testing.T, uiDir string) http.Handler {
	t.Helper()
	m := metrics.New()
	ds, err := loadDataset(context.Background(), config.DatasetConfig{Source: testCSV}, m)
	if err != nil {
		t.Fatalf("loadDataset: %v", err)
	}
	cfg := config.Defaults().Server
	cfg.UIDir = uiDir
	return routes(cfg, ds, m, ws.New(ds, m, cfg.CORS.AllowedOrigins))
}

func TestRoutes(t *testing.T) {
	h := newRoutes(t, "")

	tests := []struct {
		path     string
		wantCode int
		wantBody string
	}{
		{"/api/v1/health", http.StatusOK, `"records":14`},
		{"/api/v1/summary?site=KSC%20LC-39A", http.StatusOK, `"mode":"site_outcomes"`},
		{"/metrics", http.StatusOK, metrics.DatasetRecords + " 14"},
		{"/ws/query", http.StatusBadRequest, ""},
		{"/index.html", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rr.Code != tt.wantCode {
				t.Errorf("status: got %d, want %d", rr.Code, tt.wantCode)
			}
			if !strings.Contains(rr.Body.String(), tt.wantBody) {
				t.Errorf("body: %q does not contain %q", rr.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestRoutes_UIFallback(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>dashboard</html>"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o600); err != nil {
		t.Fatal(err)
	}
	h := newRoutes(t, dir)

	for path, want := range map[string]string{
		"/":                "dashboard",
		"/app.js":          "console.log",
		"/launches/recent": "dashboard",
	} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusOK {
			t.Errorf("%s: status got %d, want 200", path, rr.Code)
		}
		if !strings.Contains(rr.Body.String(), want) {
			t.Errorf("%s: body %q does not contain %q", path, rr.Body.String(), want)
		}
	}
}

func listen(t *testing.T) net.Listener {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	return lis
}

// freePort reserves a loopback port and releases it for run to bind.
func freePort(t *testing.T) int {
	t.Helper()
	lis := listen(t)
	defer lis.Close()
	return lis.Addr().(*net.TCPAddr).Port
}

// waitReturn waits for errc to deliver run's or serve's result.
func waitReturn(t *testing.T, errc <-chan error) {
	t.Helper()
	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("returned %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("did not return after cancel")
	}
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	m := metrics.New()
	ds, err := loadDataset(context.Background(), config.DatasetConfig{Source: testCSV}, m)
	if err != nil {
		t.Fatalf("loadDataset: %v", err)
	}
	httpLis, grpcLis := listen(t), listen(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errc := make(chan error, 1)
	go func() { errc <- serve(ctx, config.Defaults(), ds, m, httpLis, grpcLis, "") }()

	url := "http://" + httpLis.Addr().String() + "/api/v1/health"
	deadline := time.Now().Add(3 * time.Second)
	for {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("health: status %d, want 200", resp.StatusCode)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("health: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	waitReturn(t, errc)

	if _, err := http.Get(url); err == nil {
		t.Error("health after shutdown: want connection error, got nil")
	}
}

func TestRun_CancelledBeforeServing(t *testing.T) {
	cfg := config.Defaults()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.HTTPPort = freePort(t)
	cfg.Server.GRPCPort = freePort(t)
	cfg.Server.Dataset.Source = testCSV

	// Shutdown can win the race with both Serve calls; neither counts as a
	// failure.
	for i := 0; i < 5; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		errc := make(chan error, 1)
		go func() { errc <- run(ctx, cfg, "", false) }()
		waitReturn(t, errc)
	}
}

func TestRun_GRPCDisabled(t *testing.T) {
	cfg := config.Defaults()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.HTTPPort = freePort(t)
	cfg.Server.GRPCPort = 0
	cfg.Server.Dataset.Source = testCSV

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	errc := make(chan error, 1)
	go func() { errc <- run(ctx, cfg, "", false) }()
	waitReturn(t, errc)
}
