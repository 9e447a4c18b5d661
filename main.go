package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/smazurov/profilenode/cmd"
	"github.com/smazurov/profilenode/internal/api"
	"github.com/smazurov/profilenode/internal/catalog"
	"github.com/smazurov/profilenode/internal/config"
	"github.com/smazurov/profilenode/internal/events"
	"github.com/smazurov/profilenode/internal/logging"
	"github.com/smazurov/profilenode/internal/metrics"
	"github.com/smazurov/profilenode/internal/nats"
	"github.com/smazurov/profilenode/internal/version"
	"github.com/smazurov/profilenode/pkg/dds"
)

const catalogDebounce = 1500 * time.Millisecond

func main() {
	var cli humacli.CLI
	cli = humacli.New(func(hooks humacli.Hooks, opts *config.Options) {
		// Load configuration automatically
		if loadErr := config.LoadConfig(opts, cli.Root()); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		logging.Initialize(opts.LoggingConfig())
		logger := logging.GetLogger("main")
		natsLogger := logging.GetLogger("nats")

		eventBus := events.New()

		// Catalog streams live in their own table; remote streams go in the bridge's.
		table := dds.NewStreamTable()
		store, err := catalog.NewStore(opts.CatalogFile)
		if err != nil {
			logger.Error("Invalid catalog file", "path", opts.CatalogFile, "error", err)
			os.Exit(1)
		}
		manager := catalog.NewManager(store, table, eventBus, logging.GetLogger("catalog"))
		if loadErr := manager.Load(); loadErr != nil {
			logger.Warn("Failed to load stream catalog", "path", store.Path(), "error", loadErr)
		}

		var natsServer *nats.Server
		natsURL := opts.NATSURL
		if opts.NATSEmbedded {
			natsServer = nats.NewServer(nats.ServerOptions{Port: opts.NATSPort, Logger: natsLogger})
		}

		var publisher *nats.Publisher
		var bridge *nats.Bridge
		var server *api.Server

		apiOpts := &api.Options{
			AuthUsername: opts.AuthUsername,
			AuthPassword: opts.AuthPassword,
			Catalog:      manager,
			EventBus:     eventBus,
		}
		if opts.MetricsEnabled {
			apiOpts.PrometheusHandler = metrics.HTTPHandler()
		}

		hooks.OnStop(func() {
			logger.Info("Shutting down server")
			if server != nil {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if stopErr := server.Stop(ctx); stopErr != nil {
					logger.Error("Error stopping HTTP server", "error", stopErr)
				}
			}
			if stopErr := manager.Stop(); stopErr != nil {
				logger.Warn("Error stopping catalog watcher", "error", stopErr)
			}
			if bridge != nil {
				bridge.Stop()
			}
			if publisher != nil {
				publisher.Close()
			}
			if natsServer != nil {
				natsServer.Stop()
			}
		})

		hooks.OnStart(func() {
			if natsServer != nil {
				if startErr := natsServer.Start(); startErr != nil {
					logger.Error("Failed to start embedded NATS server", "error", startErr)
					os.Exit(1)
				}
				natsURL = natsServer.ClientURL()
			}

			publisher = nats.NewPublisher(nats.PublisherOptions{
				URL:           natsURL,
				ReconnectWait: opts.ReconnectWait(),
				EventBus:      eventBus,
				Logger:        natsLogger,
			})
			if connErr := publisher.Connect(); connErr != nil {
				logger.Warn("NATS publisher offline", "url", natsURL, "error", connErr)
			}
			publisher.OnRepublish(func(stream string) {
				if stream == "" {
					_, _ = publisher.PublishAll(manager.Streams())
					return
				}
				if c := manager.Current(); c != nil {
					if s, ok := c.Stream(stream); ok {
						_ = publisher.PublishStream(s)
					}
				}
			})
			manager.OnChange(func(c *catalog.Catalog) {
				_, _ = publisher.PublishAll(c.Streams())
			})
			if n, pubErr := publisher.PublishAll(manager.Streams()); pubErr != nil {
				logger.Warn("Initial profile publish incomplete", "published", n, "error", pubErr)
			}

			bridge = nats.NewBridge(nats.BridgeOptions{
				URL:           natsURL,
				ReconnectWait: opts.ReconnectWait(),
				EventBus:      eventBus,
				Logger:        natsLogger,
			})
			if startErr := bridge.Start(); startErr != nil {
				logger.Warn("NATS bridge offline", "url", natsURL, "error", startErr)
			} else {
				apiOpts.Remote = bridge
			}

			if opts.CatalogWatch {
				if watchErr := manager.Watch(catalogDebounce); watchErr != nil {
					logger.Warn("Catalog watch disabled", "path", store.Path(), "error", watchErr)
				}
			}

			server = api.NewServer(apiOpts)
			logger.Info("Starting HTTP server", "port", opts.Port, "version", version.String())
			if startErr := server.Start(opts.Port); startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
				logger.Error("Failed to start HTTP server", "error", startErr)
				os.Exit(1)
			}
		})
	})

	cli.Root().Use = "profilenode"
	cli.Root().Version = version.String()
	cli.Root().AddCommand(cmd.CreateFormatsCmd())
	cli.Root().AddCommand(cmd.CreateDecodeCmd())
	cli.Root().AddCommand(cmd.CreatePublishCmd())

	cli.Run()
}
