package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"nft-sweeper/pipeline"
	"nft-sweeper/thumbnail"
)

func FilenameCmd() []*cli.Command {
	var nameCommands []*cli.Command
	nameCmd := &cli.Command{
		Name:  "filename",
		Usage: "Print the local video and thumbnail names a token would be stored under",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "name",
				Usage: "Display name from the token metadata",
			},
			&cli.IntFlag{
				Name:     "token-id",
				Usage:    "Token id, used when the name is empty",
				Required: true,
			},
		},
		Action: func(c *cli.Context) error {
			video := pipeline.LocalFileName(c.String("name"), c.Int("token-id"))
			fmt.Fprintln(c.App.Writer, video)
			fmt.Fprintln(c.App.Writer, thumbnail.Path(video))
			return nil
		},
	}
	nameCommands = append(nameCommands, nameCmd)

	return nameCommands
}
