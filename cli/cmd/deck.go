package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/deckhand/deck"
)

// DeckCommand returns the deck command: build a .pptx file from a JSON
// deck spec, without running the agent.
func DeckCommand() *cli.Command {
	return &cli.Command{
		Name:      "deck",
		Usage:     "Build a .pptx slide deck from a JSON deck spec",
		ArgsUsage: "<spec.json>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Output .pptx path",
				Value:   "slides.pptx",
			},
		},
		Action: deckAction,
	}
}

func deckAction(c *cli.Context) error {
	specPath := c.Args().First()
	if specPath == "" {
		return cli.Exit("usage: deckhand deck <spec.json>", 1)
	}

	spec, err := deck.LoadSpec(specPath)
	if err != nil {
		return err
	}

	outPath := c.String("out")
	builder := deck.FromSpec(spec)
	if err := builder.Save(outPath); err != nil {
		return err
	}

	fmt.Printf("wrote %s (%d slides)\n", outPath, len(spec.Slides))
	return nil
}
