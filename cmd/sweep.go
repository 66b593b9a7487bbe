package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"

	"nft-sweeper/asset"
	"nft-sweeper/config"
	"nft-sweeper/logger"
	"nft-sweeper/metadata"
	"nft-sweeper/model"
	"nft-sweeper/pipeline"
	"nft-sweeper/report"
	"nft-sweeper/thumbnail"
)

func SweepCmd(cfg *config.SweeperConfig) []*cli.Command {
	var sweepCommands []*cli.Command
	sweepCmd := &cli.Command{
		Name:  "sweep",
		Usage: "Download every token's video and thumbnail, then write the report",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "total-nfts",
				Usage: "Override TOTAL_NFTS (highest token id to process)",
			},
			&cli.StringFlag{
				Name:  "dir-path",
				Usage: "Override DIR_PATH (output directory for videos)",
			},
			&cli.DurationFlag{
				Name:  "delay",
				Usage: "Override RATE_LIMIT_DELAY (pause between tokens)",
			},
			&cli.StringFlag{
				Name:  "report",
				Usage: "Override REPORT_PATH",
			},
		},
		Action: func(c *cli.Context) error {
			runCfg := *cfg
			if c.IsSet("total-nfts") {
				runCfg.Collection.TotalNFTs = c.Int("total-nfts")
			}
			if c.IsSet("dir-path") {
				runCfg.Collection.DirPath = c.String("dir-path")
			}
			if c.IsSet("delay") {
				runCfg.Sweep.Delay = c.Duration("delay")
			}
			if c.IsSet("report") {
				runCfg.Sweep.ReportPath = c.String("report")
			}
			return RunSweep(c.Context, runCfg, os.Stdout)
		},
	}
	sweepCommands = append(sweepCommands, sweepCmd)

	return sweepCommands
}

// RunSweep wires the pipeline from configuration, runs it, and persists the
// report. Returned errors are cli exit errors.
func RunSweep(ctx context.Context, cfg config.SweeperConfig, out io.Writer) error {
	appLog := logger.New("sweeper")

	if err := cfg.Validate(); err != nil {
		appLog.Error("App", fmt.Sprintf("Invalid configuration: %v", err))
		return cli.Exit(err.Error(), 1)
	}
	col := cfg.CollectionConfig()

	provider := metadata.NewClient(metadata.ClientConfig{
		BaseURL:         cfg.Sweep.MoralisURL,
		APIKey:          col.APIKey,
		ChainID:         col.ChainID,
		ContractAddress: col.ContractAddress,
		Timeout:         cfg.Sweep.HTTPTimeout,
	}, logger.New("metadata"))
	thumbs := thumbnail.New(cfg.Sweep.FFmpegPath, logger.New("thumbnail"))
	downloader := asset.NewDownloader(cfg.Sweep.HTTPTimeout, thumbs, logger.New("asset"))
	sweeper := pipeline.New(col, provider, downloader, pipeline.FixedDelay(cfg.Sweep.Delay), logger.New("pipeline"))

	appLog.Info("App", "Starting NFT download process...")
	result, runErr := sweeper.Run(ctx)
	if result == nil {
		appLog.Error("App", fmt.Sprintf("Process failed: %v", runErr))
		return cli.Exit(runErr.Error(), 1)
	}

	emitter := report.NewEmitter(cfg.Sweep.ReportPath, out, logger.New("report"))
	if err := emitter.Save(result); err != nil {
		appLog.Error("App", fmt.Sprintf("Process failed: %v", err))
		return cli.Exit(err.Error(), 1)
	}

	if cfg.Common.DBDSN != "" {
		if err := recordRun(cfg.Common.DBDSN, cfg.Sweep.ReportPath, result); err != nil {
			appLog.Warning("Ledger", err.Error())
		}
	}

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			return cli.Exit("sweep interrupted; partial report saved", 130)
		}
		return cli.Exit(runErr.Error(), 1)
	}

	appLog.Success("App", "Process completed successfully")
	return nil
}

func recordRun(dsn, reportPath string, r *model.Report) error {
	ledger, err := report.OpenLedger(dsn)
	if err != nil {
		return xerrors.Errorf("run ledger unavailable: %w", err)
	}
	defer ledger.Close()
	return ledger.Record(r, reportPath)
}
