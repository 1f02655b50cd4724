package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/deckhand/types"
)

// Exit codes for the run command.
const (
	exitCompleted = 0
	exitError     = 1
	exitPartial   = 2
)

// RunCommand returns the run command: one full pipeline pass over a
// transcript file.
func RunCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Process one meeting transcript PDF",
		ArgsUsage: "<transcript.pdf>",
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
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "Suppress the report output",
			},
		},
		Action: runAction,
	}
}

func runAction(c *cli.Context) error {
	sourcePath := c.Args().First()
	if sourcePath == "" {
		return cli.Exit("usage: deckhand run <transcript.pdf>", exitError)
	}
	if _, err := os.Stat(sourcePath); err != nil {
		return cli.Exit(fmt.Sprintf("transcript not found: %s", sourcePath), exitError)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	// Set up context with signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	pipeline, notifier, err := buildPipeline(ctx, c, cfg)
	if err != nil {
		return err
	}
	if notifier != nil {
		defer func() { _ = notifier.Close() }()
	}

	processed, err := pipeline.Process(ctx, sourcePath)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	if !c.Bool("quiet") {
		fmt.Println(processed.Outcome.Report)
	}

	return cli.Exit("", statusToExitCode(processed.Result.Status))
}

func statusToExitCode(status types.WorkflowStatus) int {
	switch status {
	case types.StatusCompleted:
		return exitCompleted
	case types.StatusPartial:
		return exitPartial
	case types.StatusError:
		return exitError
	default:
		return exitError
	}
}
