package main

import (
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/footprint-cli/internal/engine"
	"github.com/sells-group/footprint-cli/internal/normalize"
	"github.com/sells-group/footprint-cli/internal/report"
	"github.com/sells-group/footprint-cli/internal/snapshot"
)

var (
	processCollectionID int
	processWindowStart  string
	processWindowEnd    string
	processOutDir       string
)

var processCmd = &cobra.Command{
	Use:   "process <collection-file>",
	Short: "Process a collection snapshot",
	Long: "Runs the full pipeline over one collection snapshot: quality validation, " +
		"identity resolution, event recording with remodel classification. " +
		"Writes the quality report next to the output directory. " +
		"The scrape window defaults to the min/max LastUpdate in the file.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		path := args[0]

		table, err := readTable(path)
		if err != nil {
			return err
		}

		window, err := parseWindowFlags()
		if err != nil {
			return err
		}

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close() //nolint:errcheck

		eng := engine.New(s)
		res, err := eng.ProcessCollection(ctx, filepath.Base(path), processCollectionID, table, window)
		if err != nil {
			return eris.Wrap(err, "process collection")
		}

		qualityPath := filepath.Join(processOutDir, "quality_report.csv")
		if err := report.WriteQualityCSV(res.QualityRows, qualityPath); err != nil {
			return eris.Wrap(err, "write quality report")
		}

		if window.Start.IsZero() {
			window = engine.DeriveWindow(snapshot.ParseCollection(table))
		}
		enriched, err := report.NewAssembler(s).Assemble(ctx, window.Start, window.End)
		if err != nil {
			return eris.Wrap(err, "assemble enriched report")
		}
		enrichedPath := filepath.Join(processOutDir, "enriched_events.csv")
		if err := report.WriteEnrichedCSV(enriched, enrichedPath); err != nil {
			return eris.Wrap(err, "write enriched report")
		}

		zap.L().Info("collection processed",
			zap.String("file", filepath.Base(path)),
			zap.Int("collection_id", processCollectionID),
			zap.Int("processed", res.Processed),
			zap.Int("skipped", res.Skipped),
			zap.Int("chains_with_errors", len(res.ErrorsByChain)),
			zap.Int("events_reported", len(enriched)),
			zap.String("quality_report", qualityPath),
			zap.String("enriched_report", enrichedPath),
		)
		return nil
	},
}

var processScrapesCmd = &cobra.Command{
	Use:   "chain-scrapes <scrape-file> <collection-file>",
	Short: "Reconcile chain-scrape counts against a collection snapshot",
	Long: "Counts added/removed locations per (chain, date) in the collection snapshot, " +
		"maintains per-chain running balances, and writes the annotated scrape report " +
		"with actual counts, diffs, and match status.",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		scrapeTable, err := readTable(args[0])
		if err != nil {
			return err
		}
		collectionTable, err := readTable(args[1])
		if err != nil {
			return err
		}

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close() //nolint:errcheck

		eng := engine.New(s)
		header, annotated, err := eng.ProcessChainScrapes(ctx, processCollectionID, scrapeTable, collectionTable)
		if err != nil {
			return eris.Wrap(err, "process chain scrapes")
		}

		outPath := filepath.Join(processOutDir, "chain_scrapes_annotated.csv")
		if err := report.WriteChainScrapeCSV(header, annotated, outPath); err != nil {
			return eris.Wrap(err, "write annotated scrapes")
		}

		zap.L().Info("chain scrapes reconciled",
			zap.Int("collection_id", processCollectionID),
			zap.Int("rows", len(annotated)),
			zap.String("output", outPath),
		)
		return nil
	},
}

// parseWindowFlags builds the scrape window from the flags. Both empty means
// derive from the file; setting only one is an error.
func parseWindowFlags() (snapshot.Window, error) {
	if processWindowStart == "" && processWindowEnd == "" {
		return snapshot.Window{}, nil
	}
	if processWindowStart == "" || processWindowEnd == "" {
		return snapshot.Window{}, eris.New("both --window-start and --window-end are required")
	}
	start, err := normalize.ParseDate(processWindowStart)
	if err != nil {
		return snapshot.Window{}, eris.Wrap(err, "parse --window-start")
	}
	end, err := normalize.ParseDate(processWindowEnd)
	if err != nil {
		return snapshot.Window{}, eris.Wrap(err, "parse --window-end")
	}
	if end.Before(start) {
		return snapshot.Window{}, eris.New("--window-end precedes --window-start")
	}
	return snapshot.Window{Start: normalize.Day(start), End: normalize.Day(end)}, nil
}

func init() {
	processCmd.PersistentFlags().IntVar(&processCollectionID, "collection-id", 0, "collection identifier for this snapshot")
	processCmd.PersistentFlags().StringVar(&processOutDir, "out", ".", "output directory for reports")
	processCmd.Flags().StringVar(&processWindowStart, "window-start", "", "scrape window start (YYYY-MM-DD); defaults to earliest LastUpdate")
	processCmd.Flags().StringVar(&processWindowEnd, "window-end", "", "scrape window end (YYYY-MM-DD); defaults to latest LastUpdate")
	_ = processCmd.MarkPersistentFlagRequired("collection-id")

	processCmd.AddCommand(processScrapesCmd)
	rootCmd.AddCommand(processCmd)
}
