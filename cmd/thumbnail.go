package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"nft-sweeper/config"
	"nft-sweeper/logger"
	"nft-sweeper/thumbnail"
)

func ThumbnailCmd(cfg *config.SweeperConfig) []*cli.Command {
	var thumbCommands []*cli.Command
	thumbCmd := &cli.Command{
		Name:      "thumbnail",
		Usage:     "Generate the _thumb.jpg still for one or more local videos",
		ArgsUsage: "<video.mp4> [video.mp4...]",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return cli.Exit("at least one video path is required", 1)
			}
			gen := thumbnail.New(cfg.Sweep.FFmpegPath, logger.New("thumbnail"))
			failed := 0
			for _, video := range c.Args().Slice() {
				created, err := gen.Generate(c.Context, video)
				switch {
				case err != nil:
					failed++
				case created:
					fmt.Fprintln(c.App.Writer, thumbnail.Path(video))
				}
			}
			if failed > 0 {
				return cli.Exit(fmt.Sprintf("%d thumbnail(s) failed", failed), 1)
			}
			return nil
		},
	}
	thumbCommands = append(thumbCommands, thumbCmd)

	return thumbCommands
}
