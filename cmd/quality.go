package main

import (
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/footprint-cli/internal/model"
	"github.com/sells-group/footprint-cli/internal/quality"
	"github.com/sells-group/footprint-cli/internal/report"
	"github.com/sells-group/footprint-cli/internal/snapshot"
)

var (
	qualityCollectionID int
	qualityOut          string
)

var qualityCmd = &cobra.Command{
	Use:   "quality <collection-file>",
	Short: "Validate a collection snapshot without processing it",
	Long:  "Runs only the quality pass over a collection snapshot and writes the per-row validation report. Nothing is persisted.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := readTable(args[0])
		if err != nil {
			return err
		}

		fileName := filepath.Base(args[0])
		rows := snapshot.ParseCollection(table)

		var (
			reportRows []model.QualityReportRow
			invalid    int
		)
		for _, row := range rows {
			qr := quality.Report(fileName, qualityCollectionID, row)
			if qr.Result == model.ValidationInvalid {
				invalid++
			}
			reportRows = append(reportRows, qr)
		}

		if err := report.WriteQualityCSV(reportRows, qualityOut); err != nil {
			return eris.Wrap(err, "write quality report")
		}

		zap.L().Info("quality report written",
			zap.String("file", fileName),
			zap.Int("rows", len(reportRows)),
			zap.Int("invalid", invalid),
			zap.String("output", qualityOut),
		)
		return nil
	},
}

func init() {
	qualityCmd.Flags().IntVar(&qualityCollectionID, "collection-id", 0, "collection identifier for the report rows")
	qualityCmd.Flags().StringVar(&qualityOut, "out", "quality_report.csv", "output CSV path")
	rootCmd.AddCommand(qualityCmd)
}
