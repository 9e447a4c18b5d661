package config

import (
	"time"

	"github.com/smazurov/profilenode/internal/logging"
)

// Options is the flat runtime configuration shared by every command.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"config.toml"`

	// Server settings
	Port string `help:"HTTP API listen address" short:"p" default:":8091" toml:"server.port" env:"SERVER_PORT"`

	// Auth settings (empty disables auth)
	AuthUsername string `help:"Basic auth username" default:"" toml:"auth.username" env:"AUTH_USERNAME"`
	AuthPassword string `help:"Basic auth password" default:"" toml:"auth.password" env:"AUTH_PASSWORD"`

	// Catalog settings
	CatalogFile  string `help:"Stream catalog file (.toml or .yaml)" default:"streams.toml" toml:"catalog.file" env:"CATALOG_FILE"`
	CatalogWatch bool   `help:"Reload the catalog when the file changes" default:"true" toml:"catalog.watch" env:"CATALOG_WATCH"`

	// NATS settings
	NATSEmbedded      bool   `help:"Run an embedded NATS server" default:"true" toml:"nats.embedded" env:"NATS_EMBEDDED"`
	NATSURL           string `help:"NATS server URL (when not embedded)" default:"nats://127.0.0.1:4222" toml:"nats.url" env:"NATS_URL"`
	NATSPort          int    `help:"Embedded NATS server port" default:"4222" toml:"nats.port" env:"NATS_PORT"`
	NATSReconnectWait string `help:"Delay between NATS reconnect attempts" default:"2s" toml:"nats.reconnect_wait" env:"NATS_RECONNECT_WAIT"`

	// Observability settings
	MetricsEnabled bool `help:"Expose Prometheus metrics on /metrics" default:"true" toml:"metrics.enabled" env:"METRICS_ENABLED"`

	// Logging settings
	LoggingLevel   string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat  string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingCatalog string `help:"Catalog logging level" default:"info" toml:"logging.catalog" env:"LOGGING_CATALOG"`
	LoggingNATS    string `help:"NATS logging level" default:"info" toml:"logging.nats" env:"LOGGING_NATS"`
	LoggingAPI     string `help:"API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
}

// LoggingConfig assembles the logging configuration from the flat options.
func (o *Options) LoggingConfig() logging.Config {
	return logging.Config{
		Level:  o.LoggingLevel,
		Format: o.LoggingFormat,
		Modules: map[string]string{
			"catalog": o.LoggingCatalog,
			"nats":    o.LoggingNATS,
			"api":     o.LoggingAPI,
		},
	}
}

// DefaultOptions returns the options with their documented defaults, for commands
// that do not go through humacli flag parsing.
func DefaultOptions() Options {
	return Options{
		Config:            "config.toml",
		Port:              ":8091",
		CatalogFile:       "streams.toml",
		CatalogWatch:      true,
		NATSEmbedded:      true,
		NATSURL:           "nats://127.0.0.1:4222",
		NATSPort:          4222,
		NATSReconnectWait: "2s",
		MetricsEnabled:    true,
		LoggingLevel:      "info",
		LoggingFormat:     "text",
		LoggingCatalog:    "info",
		LoggingNATS:       "info",
		LoggingAPI:        "info",
	}
}

// ReconnectWait parses NATSReconnectWait, falling back to two seconds.
func (o *Options) ReconnectWait() time.Duration {
	d, err := time.ParseDuration(o.NATSReconnectWait)
	if err != nil || d <= 0 {
		return 2 * time.Second
	}
	return d
}
