// It loads the configuration, wires the sweep commands, and runs the app. Without a
// subcommand it runs a full sweep of the configured collection.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli/v2"

	"nft-sweeper/cmd"
	"nft-sweeper/config"
	"nft-sweeper/logger"
)

var (
	log = logging.Logger("sweeper")
)

var Commit string
var Version string

func main() {

	var cfg config.SweeperConfig

	// get all the commands
	var commands []*cli.Command

	// cli
	commands = append(commands, cmd.SweepCmd(&cfg)...)
	commands = append(commands, cmd.ThumbnailCmd(&cfg)...)
	commands = append(commands, cmd.RunsCmd(&cfg)...)
	commands = append(commands, cmd.FilenameCmd()...)

	app := &cli.App{
		Commands:    commands,
		Name:        "nft-sweeper",
		Description: "Downloads every video of an NFT collection from IPFS, with thumbnails and a results report",
		Version:     fmt.Sprintf("%s+git.%s\n", Version, Commit),
		Usage:       "nft-sweeper [command] [arguments]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "run-config",
				Usage:   "YAML file overlaying the environment configuration",
				EnvVars: []string{"RUN_CONFIG"},
			},
		},
		Before: func(c *cli.Context) error {
			loaded, err := config.InitConfig(c.String("run-config"))
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			loaded.Common.Commit = Commit
			loaded.Common.Version = Version
			if err := logger.SetLevel(loaded.Common.LogLevel); err != nil {
				log.Warnf("invalid LOG_LEVEL %q: %s", loaded.Common.LogLevel, err)
			}
			cfg = loaded
			return nil
		},
		Action: func(c *cli.Context) error {
			return cmd.RunSweep(c.Context, cfg, os.Stdout)
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Errorf("Application failed: %s", err)
		os.Exit(1)
	}
}
