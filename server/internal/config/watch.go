package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch monitors path for changes and calls onChange with the newly loaded
// Config each time the file is written or replaced. It runs until ctx is
// cancelled.
//
// The parent directory is watched rather than the file, so saves that write a
// temporary file and rename it over path keep being seen.
//
// If a reload fails (e.g., invalid YAML), the error is logged and the
// previous config remains active; onChange is not called.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	path = filepath.Clean(path)
	if _, err := os.Stat(path); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	slog.Info("config: watching for changes", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			// A rename onto path arrives as Create.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			cfg, err := Load(path)
			if err != nil {
				slog.Error("config: reload failed, keeping previous config",
					"path", path, "err", err)
				continue
			}

			slog.Info("config: reloaded", "path", path)
			onChange(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watcher error", "err", err)
		}
	}
}

// RestartRequired lists the settings that differ between old and updated
// which only take effect after a restart.
func RestartRequired(old, updated *Config) []string {
	a, b := old.Server, updated.Server
	var out []string
	if a.Host != b.Host {
		out = append(out, "host")
	}
	if a.HTTPPort != b.HTTPPort {
		out = append(out, "http_port")
	}
	if a.GRPCPort != b.GRPCPort {
		out = append(out, "grpc_port")
	}
	if a.UIDir != b.UIDir {
		out = append(out, "ui_dir")
	}
	if a.Log.Format != b.Log.Format {
		out = append(out, "log.format")
	}
	if a.Dataset != b.Dataset {
		out = append(out, "dataset")
	}
	if !equalStrings(a.CORS.AllowedOrigins, b.CORS.AllowedOrigins) {
		out = append(out, "cors.allowed_origins")
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
