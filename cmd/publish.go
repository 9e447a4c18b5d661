package cmd

import (
	"fmt"
	"time"

	"github.com/smazurov/profilenode/internal/catalog"
	"github.com/smazurov/profilenode/internal/config"
	"github.com/smazurov/profilenode/internal/logging"
	"github.com/smazurov/profilenode/internal/nats"
	"github.com/smazurov/profilenode/pkg/dds"
	"github.com/spf13/cobra"
)

// CreatePublishCmd creates the publish command, a one-shot announcement of the
// catalog's profile lists to a running NATS server.
func CreatePublishCmd() *cobra.Command {
	var configFile string
	var catalogFile string
	var natsURL string
	var stream string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish the stream catalog over NATS and exit",
		Long: `Loads the stream catalog, validates every profile, and publishes each stream's ` +
			`profile list on its NATS subject. Nothing is published if the catalog is invalid.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := config.DefaultOptions()
			opts.Config = configFile
			if err := config.LoadConfig(&opts, nil); err != nil {
				return err
			}
			if cmd.Flags().Changed("catalog") {
				opts.CatalogFile = catalogFile
			}
			if cmd.Flags().Changed("nats") {
				opts.NATSURL = natsURL
			}

			logging.Initialize(opts.LoggingConfig())
			logger := logging.GetLogger("nats")

			store, err := catalog.NewStore(opts.CatalogFile)
			if err != nil {
				return err
			}
			f, err := store.Load()
			if err != nil {
				return err
			}
			cat, err := catalog.Build(f, dds.NewStreamTable())
			if err != nil {
				return fmt.Errorf("catalog %s: %w", store.Path(), err)
			}
			defer cat.Close()

			streams := cat.Streams()
			if stream != "" {
				s, ok := cat.Stream(stream)
				if !ok {
					return fmt.Errorf("stream %q not in catalog %s", stream, store.Path())
				}
				streams = []*dds.Stream{s}
			}

			pub := nats.NewPublisher(nats.PublisherOptions{
				URL:           opts.NATSURL,
				Name:          "profilenode-publish",
				ReconnectWait: opts.ReconnectWait(),
				Logger:        logger,
			})
			if err := pub.Connect(); err != nil {
				return fmt.Errorf("connect %s: %w", opts.NATSURL, err)
			}
			defer pub.Close()

			n, err := pub.PublishAll(streams)
			if err != nil {
				return err
			}
			if err := pub.Flush(timeout); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "published %d of %d streams to %s\n", n, len(streams), opts.NATSURL)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "config.toml", "Path to configuration file")
	cmd.Flags().StringVar(&catalogFile, "catalog", "", "Stream catalog file (overrides catalog.file)")
	cmd.Flags().StringVar(&natsURL, "nats", "", "NATS server URL (overrides nats.url)")
	cmd.Flags().StringVarP(&stream, "stream", "s", "", "Publish only this stream")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "Flush timeout")
	return cmd
}
