// Package logging provides structured logging with per-module log level configuration.
//
// Records go to stdout (text or json) and, when journald is reachable, to the
// systemd journal under the identifier "profilenode".
//
// Initialize once at startup, then fetch module loggers:
//
//	logging.Initialize(logging.Config{
//		Level:  "info",
//		Format: "text",
//		Modules: map[string]string{
//			"nats":    "debug",
//			"catalog": "warn",
//		},
//	})
//
//	logger := logging.GetLogger("catalog").With("stream", name)
//	logger.Info("Loaded stream", "profiles", n)
//
// Loggers obtained before Initialize are cached and pick up the configured levels
// afterwards. Module levels override the global level for that module only.
//
// Example TOML configuration:
//
//	[logging]
//	level = "info"
//	format = "text"
//	nats = "debug"
package logging
