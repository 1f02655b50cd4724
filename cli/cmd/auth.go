package cmd

import (
	"context"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/deckhand/drive"
)

// AuthCommand returns the auth command: the one-time OAuth bootstrap
// that produces the refreshable Drive token file.
func AuthCommand() *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authorize Google Drive access and save the token file",
		Flags: []cli.Flag{
			ConfigFlag,
			&cli.StringFlag{
				Name:  "client",
				Usage: "OAuth2 client config file",
			},
			&cli.StringFlag{
				Name:  "token",
				Usage: "Token file to write",
			},
		},
		Action: authAction,
	}
}

func authAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	clientPath := cfg.Drive.ClientPath
	if c.IsSet("client") || clientPath == "" {
		clientPath = c.String("client")
	}
	tokenPath := cfg.Drive.TokenPath
	if c.IsSet("token") || tokenPath == "" {
		tokenPath = c.String("token")
	}
	if clientPath == "" || tokenPath == "" {
		return cli.Exit("auth requires --client and --token (or drive.client_path and drive.token_path in the config file)", 1)
	}

	store := drive.NewStore(clientPath, tokenPath)
	return store.Authorize(context.Background(), os.Stdin, os.Stdout)
}
