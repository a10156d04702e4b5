package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/footprint-cli/internal/normalize"
	"github.com/sells-group/footprint-cli/internal/report"
)

var (
	reportStart     string
	reportEnd       string
	reportEnrichOut string
	reportDirectOut string
	reportChain     int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Produce change-event and location reports",
}

var reportEnrichedCmd = &cobra.Command{
	Use:   "enriched",
	Short: "Write the enriched change-event report",
	Long: "Assembles all events recorded in the scrape-date range, joins location " +
		"attributes and census region data, explains each event's detection window, " +
		"and writes the result as CSV.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		start, err := normalize.ParseDate(reportStart)
		if err != nil {
			return eris.Wrap(err, "parse --start")
		}
		end, err := normalize.ParseDate(reportEnd)
		if err != nil {
			return eris.Wrap(err, "parse --end")
		}

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close() //nolint:errcheck

		rows, err := report.NewAssembler(s).Assemble(ctx, normalize.Day(start), normalize.Day(end))
		if err != nil {
			return eris.Wrap(err, "assemble report")
		}
		if err := report.WriteEnrichedCSV(rows, reportEnrichOut); err != nil {
			return eris.Wrap(err, "write report")
		}

		zap.L().Info("enriched report written",
			zap.Int("events", len(rows)),
			zap.String("output", reportEnrichOut),
		)
		return nil
	},
}

var reportDirectCmd = &cobra.Command{
	Use:   "direct",
	Short: "Write the current-state location report",
	Long:  "Dumps the current resolved state of every location (optionally one chain) with region enrichment, independent of the event ledger.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close() //nolint:errcheck

		n, err := report.WriteDirectCSV(ctx, s, reportChain, reportDirectOut)
		if err != nil {
			return eris.Wrap(err, "write direct report")
		}

		zap.L().Info("direct report written",
			zap.Int("locations", n),
			zap.Int("chain_id", reportChain),
			zap.String("output", reportDirectOut),
		)
		return nil
	},
}

func init() {
	reportEnrichedCmd.Flags().StringVar(&reportStart, "start", "", "scrape-date range start (YYYY-MM-DD)")
	reportEnrichedCmd.Flags().StringVar(&reportEnd, "end", "", "scrape-date range end (YYYY-MM-DD)")
	reportEnrichedCmd.Flags().StringVar(&reportEnrichOut, "out", "enriched_events.csv", "output CSV path")
	_ = reportEnrichedCmd.MarkFlagRequired("start")
	_ = reportEnrichedCmd.MarkFlagRequired("end")

	reportDirectCmd.Flags().IntVar(&reportChain, "chain", 0, "restrict to one chain (0 = all)")
	reportDirectCmd.Flags().StringVar(&reportDirectOut, "out", "locations.csv", "output CSV path")

	reportCmd.AddCommand(reportEnrichedCmd)
	reportCmd.AddCommand(reportDirectCmd)
	rootCmd.AddCommand(reportCmd)
}
