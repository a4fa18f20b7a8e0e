// Package config loads the server configuration from the `server:` section
// of config.yaml.
//
// Config fields:
//   - Host, HTTPPort, GRPCPort — listener addresses (defaults 0.0.0.0, 8050, 50051)
//   - UIDir                    — optional static dashboard directory
//   - Log.Level, Log.Format    — slog level (info) and handler (json)
//   - Dataset.Source           — CSV path or URL of the launch records table
//   - Dataset.Timeout          — remote fetch timeout (30s)
//   - CORS.AllowedOrigins      — browser origins allowed to call the API
//
// Load(path) applies defaults before unmarshalling, then validates.
// Watch(ctx, path, onChange) reloads the file on change via fsnotify; only the
// log level is applied live, RestartRequired reports the rest.
package config
