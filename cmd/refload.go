package main

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/footprint-cli/internal/refdata"
	"github.com/sells-group/footprint-cli/internal/snapshot"
)

var refloadCmd = &cobra.Command{
	Use:   "refload",
	Short: "Load reference tables from partner exports",
	Long:  "Loads the lookup tables the enriched report joins against: census regions by zip, parent chains, landlords, shopping centers, and center-landlord links. Accepts CSV, XLSX, or zipped files.",
}

func refloadRunE(load func(ctx context.Context, l *refdata.Loader, t snapshot.Table) (int64, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		table, err := readTable(args[0])
		if err != nil {
			return err
		}

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close() //nolint:errcheck

		n, err := load(ctx, refdata.New(s), table)
		if err != nil {
			return eris.Wrap(err, "load reference data")
		}

		zap.L().Info("reference data loaded",
			zap.String("file", args[0]),
			zap.Int64("rows", n),
		)
		return nil
	}
}

func init() {
	subcommands := []struct {
		use   string
		short string
		load  func(ctx context.Context, l *refdata.Loader, t snapshot.Table) (int64, error)
	}{
		{
			use:   "regions <file>",
			short: "Load the zip-to-census-region table",
			load: func(ctx context.Context, l *refdata.Loader, t snapshot.Table) (int64, error) {
				return l.LoadRegions(ctx, t)
			},
		},
		{
			use:   "parent-chains <file>",
			short: "Load the parent chain table",
			load: func(ctx context.Context, l *refdata.Loader, t snapshot.Table) (int64, error) {
				return l.LoadParentChains(ctx, t)
			},
		},
		{
			use:   "landlords <file>",
			short: "Load the landlord table",
			load: func(ctx context.Context, l *refdata.Loader, t snapshot.Table) (int64, error) {
				return l.LoadLandlords(ctx, t)
			},
		},
		{
			use:   "centers <file>",
			short: "Load the shopping center table",
			load: func(ctx context.Context, l *refdata.Loader, t snapshot.Table) (int64, error) {
				return l.LoadCenters(ctx, t)
			},
		},
		{
			use:   "center-landlords <file>",
			short: "Load the center-landlord link table",
			load: func(ctx context.Context, l *refdata.Loader, t snapshot.Table) (int64, error) {
				return l.LoadCenterLandlords(ctx, t)
			},
		},
	}

	for _, sc := range subcommands {
		refloadCmd.AddCommand(&cobra.Command{
			Use:   sc.use,
			Short: sc.short,
			Args:  cobra.ExactArgs(1),
			RunE:  refloadRunE(sc.load),
		})
	}
	rootCmd.AddCommand(refloadCmd)
}
