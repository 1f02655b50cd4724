package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/deckhand/discord"
)

// ServeCommand returns the serve command: the long-running Discord bot
// daemon that processes transcript uploads.
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the Discord bot daemon",
		Flags: []cli.Flag{
			ConfigFlag,
			&cli.StringFlag{
				Name:  "workdir",
				Usage: "Working directory shared with the analysis agent",
				Value: "output",
			},
			&cli.StringFlag{
				Name:  "agent",
				Usage: "Analysis agent binary",
				Value: "claude",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Hard deadline for the agent (default 10m)",
			},
			&cli.StringFlag{
				Name:  "recipient",
				Usage: "Notification recipient address",
			},
			&cli.BoolFlag{
				Name:  "no-upload",
				Usage: "Skip the hosted deck upload",
			},
			&cli.BoolFlag{
				Name:  "no-notify",
				Usage: "Skip the downstream notification",
			},
		},
		Action: serveAction,
	}
}

func serveAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if cfg.Discord.Token == "" {
		return errors.New("serve requires discord.token in the config file")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pipeline, notifier, err := buildPipeline(ctx, c, cfg)
	if err != nil {
		return err
	}
	if notifier != nil {
		defer func() { _ = notifier.Close() }()
	}

	workDir := cfg.WorkDir
	if c.IsSet("workdir") || workDir == "" {
		workDir = c.String("workdir")
	}

	bot, err := discord.New(&discord.Config{
		Token:       cfg.Discord.Token,
		ChannelID:   cfg.Discord.ChannelID,
		DownloadDir: workDir,
		Processor:   pipeline,
	})
	if err != nil {
		return err
	}

	if err := bot.Start(); err != nil {
		return err
	}
	defer func() { _ = bot.Close() }()

	fmt.Fprintln(os.Stderr, "deckhand bot is running. Press Ctrl+C to exit.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	return nil
}
