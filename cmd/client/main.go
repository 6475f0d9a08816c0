// Command client is a minimal line-oriented chat client. It logs in, joins
// one conversation, and reconciles the paginated history with the live event
// stream through the timeline buffer.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cmd := &cli.Command{
		Name:      "client",
		Usage:     "Connect to a parley server and chat from the terminal",
		UsageText: "client --server URL --email EMAIL --password PASSWORD --conversation ID",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Usage:   "server base URL",
				Sources: cli.EnvVars("PARLEY_SERVER"),
				Value:   "http://localhost:3000",
			},
			&cli.StringFlag{
				Name:     "email",
				Usage:    "account email",
				Sources:  cli.EnvVars("PARLEY_EMAIL"),
				Required: true,
			},
			&cli.StringFlag{
				Name:     "password",
				Usage:    "account password",
				Sources:  cli.EnvVars("PARLEY_PASSWORD"),
				Required: true,
			},
			&cli.IntFlag{
				Name:     "conversation",
				Usage:    "conversation id to open",
				Required: true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			app := &chatApp{
				serverURL: c.String("server"),
				email:     c.String("email"),
				password:  c.String("password"),
				convID:    int64(c.Int("conversation")),
				out:       os.Stdout,
				in:        bufio.NewScanner(os.Stdin),
				log:       log,
			}
			return app.run(ctx)
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
