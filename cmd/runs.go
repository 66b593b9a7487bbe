package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"nft-sweeper/config"
	"nft-sweeper/report"
)

func RunsCmd(cfg *config.SweeperConfig) []*cli.Command {
	var runCommands []*cli.Command
	runsCmd := &cli.Command{
		Name:  "runs",
		Usage: "List past sweeps recorded in the run ledger (requires DB_DSN)",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Number of runs to show",
				Value: 10,
			},
			&cli.StringFlag{
				Name:  "run-id",
				Usage: "Show the per-token outcomes of one run",
			},
		},
		Action: func(c *cli.Context) error {
			if cfg.Common.DBDSN == "" {
				return cli.Exit("DB_DSN is not set; no run ledger to read", 1)
			}
			ledger, err := report.OpenLedger(cfg.Common.DBDSN)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			defer ledger.Close()

			w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			defer w.Flush()

			if id := c.String("run-id"); id != "" {
				rows, err := ledger.Outcomes(id)
				if err != nil {
					return cli.Exit(err.Error(), 1)
				}
				fmt.Fprintln(w, "TOKEN\tOUTCOME\tURI\tERROR")
				for _, r := range rows {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.TokenID, r.Outcome, r.SourceURI, r.Error)
				}
				return nil
			}

			runs, err := ledger.Runs(c.Int("limit"))
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			fmt.Fprintln(w, "RUN\tSTARTED\tCONTRACT\tDOWNLOADED\tSKIPPED\tFAILED\tNO META\tNO IMAGE")
			for _, r := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\n",
					r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), r.ContractAddress,
					r.Downloaded, r.Skipped, r.Failed, r.NoMetadata, r.NoImage)
			}
			return nil
		},
	}
	runCommands = append(runCommands, runsCmd)

	return runCommands
}
