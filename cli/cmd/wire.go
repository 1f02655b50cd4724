package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/deckhand/adapter"
	"github.com/pithecene-io/deckhand/adapter/redis"
	"github.com/pithecene-io/deckhand/adapter/webhook"
	"github.com/pithecene-io/deckhand/archive"
	"github.com/pithecene-io/deckhand/cli/config"
	"github.com/pithecene-io/deckhand/drive"
	"github.com/pithecene-io/deckhand/journal"
	"github.com/pithecene-io/deckhand/runtime"
)

// loadConfig reads the config file named by --config. A missing file is
// an error only when the flag was set explicitly; the default path is
// allowed to be absent (flags alone can drive a run).
func loadConfig(c *cli.Context) (*config.Config, error) {
	path := c.String("config")
	if path == "" {
		return &config.Config{}, nil
	}
	if !c.IsSet("config") {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return &config.Config{}, nil
		}
	}
	return config.Load(path)
}

// buildNotifier constructs the configured notifier, or nil when none is
// configured.
func buildNotifier(cfg *config.Config) (adapter.Notifier, error) {
	nc := cfg.Notifier
	switch nc.Type {
	case "":
		return nil, nil
	case "webhook":
		retries := webhook.DefaultRetries
		if nc.Retries != nil {
			retries = *nc.Retries
		}
		return webhook.New(webhook.Config{
			URL:     nc.URL,
			Headers: nc.Headers,
			Timeout: nc.Timeout.Duration,
			Retries: retries,
		})
	case "redis":
		retries := redis.DefaultRetries
		if nc.Retries != nil {
			retries = *nc.Retries
		}
		return redis.New(redis.Config{
			URL:     nc.URL,
			Channel: nc.Channel,
			Timeout: nc.Timeout.Duration,
			Retries: retries,
		})
	default:
		return nil, fmt.Errorf("unknown notifier type %q (must be webhook or redis)", nc.Type)
	}
}

// buildUploader constructs the Drive uploader, or nil when Drive is not
// configured.
func buildUploader(cfg *config.Config) runtime.Uploader {
	if cfg.Drive.ClientPath == "" || cfg.Drive.TokenPath == "" {
		return nil
	}
	return drive.NewUploader(drive.NewStore(cfg.Drive.ClientPath, cfg.Drive.TokenPath))
}

// buildArchiver constructs the S3 archiver, or nil when no bucket is
// configured.
func buildArchiver(ctx context.Context, cfg *config.Config) (runtime.Archiver, error) {
	if cfg.Archive.Bucket == "" {
		return nil, nil
	}
	archiver, err := archive.New(ctx, archive.Config{
		Bucket:       cfg.Archive.Bucket,
		Prefix:       cfg.Archive.Prefix,
		Region:       cfg.Archive.Region,
		Endpoint:     cfg.Archive.Endpoint,
		UsePathStyle: cfg.Archive.S3PathStyle,
	})
	if err != nil {
		return nil, fmt.Errorf("archive: %w", err)
	}
	return archiver, nil
}

// openJournal opens the run journal, or returns nil when journaling is
// not configured.
func openJournal(cfg *config.Config) (*journal.Journal, error) {
	if cfg.Journal.Path == "" {
		return nil, nil
	}
	return journal.Open(cfg.Journal.Path)
}

// buildPipeline wires the full pipeline from config plus run flags.
func buildPipeline(ctx context.Context, c *cli.Context, cfg *config.Config) (*runtime.Pipeline, adapter.Notifier, error) {
	workDir := cfg.WorkDir
	if c.IsSet("workdir") || workDir == "" {
		workDir = c.String("workdir")
	}
	agentBinary := cfg.AgentBinary
	if c.IsSet("agent") || agentBinary == "" {
		agentBinary = c.String("agent")
	}
	timeout := cfg.Timeout.Duration
	if c.IsSet("timeout") {
		timeout = c.Duration("timeout")
	}
	recipient := cfg.Notifier.Recipient
	if c.IsSet("recipient") {
		recipient = c.String("recipient")
	}

	notifier, err := buildNotifier(cfg)
	if err != nil {
		return nil, nil, err
	}
	if c.Bool("no-notify") {
		if notifier != nil {
			_ = notifier.Close()
		}
		notifier = nil
	}

	var uploader runtime.Uploader
	if !c.Bool("no-upload") {
		uploader = buildUploader(cfg)
	}

	archiver, err := buildArchiver(ctx, cfg)
	if err != nil {
		if notifier != nil {
			_ = notifier.Close()
		}
		return nil, nil, err
	}

	j, err := openJournal(cfg)
	if err != nil {
		if notifier != nil {
			_ = notifier.Close()
		}
		return nil, nil, err
	}

	pipeline := runtime.NewPipeline(&runtime.PipelineConfig{
		Run: runtime.RunConfig{
			WorkDir:     workDir,
			AgentBinary: agentBinary,
			Timeout:     timeout,
		},
		Reconcile: runtime.ReconcileConfig{
			Uploader:  uploader,
			Notifier:  notifier,
			Archiver:  archiver,
			Recipient: recipient,
			DeckTitle: cfg.Drive.DeckTitle,
		},
		Journal: j,
	})
	return pipeline, notifier, nil
}
