// Package config loads the arenaguard service configuration from YAML.
//
// Config fields:
//   - Server.HTTPPort          — port for the JSON API and WebSocket hub (default 8080)
//   - Server.Auth.Mode         — "apikey" or "none"
//   - Server.Auth.KeyEnv       — environment variable holding the expected API key
//   - Server.Auth.Header       — header name (default "x-api-key")
//   - Server.BroadcastInterval — WebSocket snapshot push interval (default 5s)
//   - Server.Notify.Floor      — status that triggers webhooks: "suspicious"|"flagged" (default flagged)
//   - Server.Notify.Cooldown   — per-judge refire suppression (default 15m)
//   - Server.Notify.Webhooks   — delivery targets (type + url_env)
//
// Load(path) applies defaults before unmarshalling, then validates.
// Watch(ctx, path, onChange) hot-reloads the file on write.
package config
