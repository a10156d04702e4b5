package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/footprint-cli/internal/config"
	"github.com/sells-group/footprint-cli/internal/fetcher"
	"github.com/sells-group/footprint-cli/internal/snapshot"
	"github.com/sells-group/footprint-cli/internal/store"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "footprint-cli",
	Short: "Location lifecycle and change-event resolution engine",
	Long:  "Ingests partner location snapshots, resolves location identity across scrapes, records open/close events with remodel classification, and produces enriched change reports.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// openStore opens the configured backend. Callers own Close.
func openStore(ctx context.Context) (store.Store, error) {
	s, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL, &cfg.Store.Pool)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	return s, nil
}

// readTable loads a snapshot file, dispatching on extension. Zipped files
// are extracted next to themselves and the single entry is read.
func readTable(path string) (snapshot.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip":
		inner, err := fetcher.ExtractZIPSingle(path, filepath.Dir(path))
		if err != nil {
			return snapshot.Table{}, eris.Wrapf(err, "extract %s", path)
		}
		return readTable(inner)
	case ".xlsx":
		return fetcher.ReadXLSXTable(path, fetcher.XLSXOptions{})
	default:
		f, err := os.Open(path)
		if err != nil {
			return snapshot.Table{}, eris.Wrapf(err, "open %s", path)
		}
		defer f.Close() //nolint:errcheck
		return fetcher.ReadCSVTable(f, fetcher.CSVOptions{TrimSpace: true})
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
