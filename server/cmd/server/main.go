package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/obsidianstack/launchdash/server/internal/api"
	"github.com/obsidianstack/launchdash/server/internal/config"
	"github.com/obsidianstack/launchdash/server/internal/dataset"
	"github.com/obsidianstack/launchdash/server/internal/logging"
	"github.com/obsidianstack/launchdash/server/internal/metrics"
	"github.com/obsidianstack/launchdash/server/internal/rpc"
	"github.com/obsidianstack/launchdash/server/internal/ws"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	uiDir := flag.String("ui-dir", "", "serve dashboard static files from this directory (overrides server.ui_dir)")
	source := flag.String("dataset", "", "CSV path or URL of the launch records (overrides server.dataset.source)")
	flag.Parse()

	cfg, watch, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	if *uiDir != "" {
		cfg.Server.UIDir = *uiDir
	}
	if *source != "" {
		cfg.Server.Dataset.Source = *source
	}

	logging.Init(cfg.Server.Log.SlogLevel(), cfg.Server.Log.Format)
	slog.Info("launchdash-server starting", "config", *configPath)
	if !watch {
		slog.Warn("config file not found, using defaults", "path", *configPath)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, *configPath, watch); err != nil {
		slog.Error("launchdash-server stopped", "err", err)
		os.Exit(1)
	}
	slog.Info("launchdash-server stopped")
}

// loadConfig reads name, falling back to defaults when the file does not
// exist. found reports whether the file was read, i.e. whether it can be
// watched.
func loadConfig(name string) (cfg *config.Config, found bool, err error) {
	cfg, err = config.Load(name)
	if errors.Is(err, fs.ErrNotExist) {
		return config.Defaults(), false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return cfg, true, nil
}

// run loads the dataset and serves HTTP, WebSocket and gRPC until ctx is
// cancelled.
func run(ctx context.Context, cfg *config.Config, configPath string, watch bool) error {
	m := metrics.New()

	ds, err := loadDataset(ctx, cfg.Server.Dataset, m)
	if err != nil {
		return err
	}

	httpLis, err := net.Listen("tcp", cfg.Server.HTTPAddr())
	if err != nil {
		return err
	}

	var grpcLis net.Listener
	if cfg.Server.GRPCPort != 0 {
		grpcLis, err = net.Listen("tcp", cfg.Server.GRPCAddr())
		if err != nil {
			httpLis.Close()
			return err
		}
	}

	var watchPath string
	if watch {
		watchPath = configPath
	}
	return serve(ctx, cfg, ds, m, httpLis, grpcLis, watchPath)
}

// serve runs the servers on the given listeners until ctx is cancelled, then
// shuts them down gracefully. A nil grpcLis disables gRPC; an empty
// watchPath disables config reloads.
func serve(ctx context.Context, cfg *config.Config, ds *dataset.Dataset, m *metrics.Metrics,
	httpLis, grpcLis net.Listener, watchPath string) error {
	hub := ws.New(ds, m, cfg.Server.CORS.AllowedOrigins)
	httpSrv := &http.Server{
		Handler:           routes(cfg.Server, ds, m, hub),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var grpcSrv *grpc.Server
	if grpcLis != nil {
		grpcSrv = grpc.NewServer(grpc.UnaryInterceptor(rpc.LoggingInterceptor()))
		rpc.Register(grpcSrv, rpc.NewServer(ds, m))
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		slog.Info("HTTP server listening", "addr", httpLis.Addr().String())
		if err := httpSrv.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if grpcSrv != nil {
		g.Go(func() error {
			slog.Info("gRPC query service listening", "addr", grpcLis.Addr().String())
			// Stopped before Serve started: shutdown won the race.
			if err := grpcSrv.Serve(grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return err
			}
			return nil
		})
	}

	if watchPath != "" {
		g.Go(func() error {
			current := cfg
			err := config.Watch(gctx, watchPath, func(updated *config.Config) {
				logging.SetLevel(updated.Server.Log.SlogLevel())
				if changed := config.RestartRequired(current, updated); len(changed) > 0 {
					slog.Warn("config: changes take effect after restart", "settings", changed)
				}
				current = updated
			})
			if err != nil {
				slog.Error("config: watch disabled", "path", watchPath, "err", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("launchdash-server shutting down")
		if grpcSrv != nil {
			grpcSrv.GracefulStop()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// loadDataset fetches the launch records once and records their size.
func loadDataset(ctx context.Context, cfg config.DatasetConfig, m *metrics.Metrics) (*dataset.Dataset, error) {
	loader, err := dataset.NewLoader(cfg)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	ds, err := loader.Load(ctx, cfg.Source)
	if err != nil {
		return nil, err
	}
	m.SetDataset(ds.Len(), len(ds.Sites()), time.Since(start))
	return ds, nil
}

// routes builds the combined HTTP handler: REST API, WebSocket query channel,
// metrics and the optional dashboard UI.
func routes(cfg config.ServerConfig, ds *dataset.Dataset, m *metrics.Metrics, hub *ws.Hub) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/", api.New(ds, m, cfg.CORS.AllowedOrigins))
	mux.Handle("/ws/query", hub)
	mux.Handle("/metrics", m.Handler())

	if cfg.UIDir != "" {
		mux.Handle("/", spaHandler(cfg.UIDir))
		slog.Info("serving UI static files", "dir", cfg.UIDir)
	}
	return mux
}

// spaHandler serves files from dir. Unknown paths get index.html so the
// dashboard's client-side routes resolve.
func spaHandler(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
		if _, err := os.Stat(name); err != nil {
			http.ServeFile(w, r, filepath.Join(dir, "index.html"))
			return
		}
		files.ServeHTTP(w, r)
	})
}
