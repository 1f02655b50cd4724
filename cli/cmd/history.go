package cmd

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/deckhand/cli/render"
	"github.com/pithecene-io/deckhand/journal"
)

// historyWarningThreshold is the record count above which we suggest --limit.
const historyWarningThreshold = 100

// HistoryCommand returns the history command: a read-only view over the
// run journal.
func HistoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show past runs from the run journal",
		Flags: append(ReadOnlyFlags(),
			ConfigFlag,
			&cli.StringFlag{
				Name:  "status",
				Usage: "Filter by status: completed, partial, error",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to show, newest last (0 = no limit)",
				Value: 0,
			},
		),
		Action: historyAction,
	}
}

func historyAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if cfg.Journal.Path == "" {
		return cli.Exit("history requires journal.path in the config file", 1)
	}

	j, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		return err
	}
	records, err := j.Records()
	if err != nil {
		return err
	}

	if status := c.String("status"); status != "" {
		filtered := records[:0]
		for _, rec := range records {
			if string(rec.Status) == status {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
	}

	if limit := c.Int("limit"); limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}

	if c.Bool("tui") {
		return r.RenderTUI("history", records)
	}

	// Warn if output is large and --limit was not specified (TTY only to avoid noise in pipelines)
	if len(records) > historyWarningThreshold && c.Int("limit") == 0 && isStderrTTY() {
		fmt.Fprintf(os.Stderr, "Warning: returning %d runs. Consider using --limit to reduce output.\n\n", len(records))
	}

	return r.Render(records)
}
