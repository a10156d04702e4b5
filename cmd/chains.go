package main

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/footprint-cli/internal/model"
	"github.com/sells-group/footprint-cli/internal/store"
)

var (
	chainsChainID int
	chainsStatus  string
	chainsCSV     string
	staleWeeks    int
)

var chainsCmd = &cobra.Command{
	Use:   "chains",
	Short: "Bulk maintenance on tracked chains",
}

var chainsSetStatusCmd = &cobra.Command{
	Use:   "set-status",
	Short: "Set the status of every location in a chain",
	Long: "Force-updates every location of a chain to the given status, either from " +
		"--chain/--status or in bulk from a CSV of (ChainId, Status) rows. Used when " +
		"the partner drops or re-adds entire chains outside the normal snapshot flow.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close() //nolint:errcheck

		if chainsCSV != "" {
			return setStatusFromCSV(ctx, s, chainsCSV)
		}

		if chainsChainID == 0 || chainsStatus == "" {
			return eris.New("either --csv or both --chain and --status are required")
		}
		status, err := parseLifecycleStatus(chainsStatus)
		if err != nil {
			return err
		}

		n, err := s.SetStatusByChain(ctx, chainsChainID, status)
		if err != nil {
			return eris.Wrap(err, "set chain status")
		}

		zap.L().Info("chain status updated",
			zap.Int("chain_id", chainsChainID),
			zap.String("status", string(status)),
			zap.Int64("locations", n),
		)
		return nil
	},
}

// setStatusFromCSV applies one SetStatusByChain per (ChainId, Status) row.
// Rows with a bad chain id or status are logged and skipped.
func setStatusFromCSV(ctx context.Context, s store.Store, path string) error {
	table, err := readTable(path)
	if err != nil {
		return err
	}

	chainCol, statusCol := -1, -1
	for i, name := range table.Header {
		switch strings.TrimSpace(name) {
		case "ChainId":
			chainCol = i
		case "Status":
			statusCol = i
		}
	}
	if chainCol == -1 || statusCol == -1 {
		return eris.Errorf("%s: ChainId and Status columns are required", path)
	}

	var updated int64
	for i, record := range table.Rows {
		if chainCol >= len(record) || statusCol >= len(record) {
			continue
		}
		chainID, err := strconv.Atoi(strings.TrimSpace(record[chainCol]))
		if err != nil || chainID == 0 {
			zap.L().Warn("skipping row with bad chain id", zap.Int("row", i+1))
			continue
		}
		status, err := parseLifecycleStatus(record[statusCol])
		if err != nil {
			zap.L().Warn("skipping row with bad status",
				zap.Int("row", i+1),
				zap.Int("chain_id", chainID),
			)
			continue
		}
		n, err := s.SetStatusByChain(ctx, chainID, status)
		if err != nil {
			return eris.Wrapf(err, "set status for chain %d", chainID)
		}
		updated += n
	}

	zap.L().Info("chain statuses updated from csv",
		zap.String("file", path),
		zap.Int("rows", len(table.Rows)),
		zap.Int64("locations", updated),
	)
	return nil
}

var chainsCloseStaleCmd = &cobra.Command{
	Use:   "close-stale",
	Short: "Close locations missing from recent snapshots",
	Long:  "Marks OPEN locations as CLOSED when their last event date is older than the stale cutoff. The cutoff defaults to the configured pipeline stale_days.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		days := staleWeeks * 7
		if days == 0 {
			days = cfg.Pipeline.StaleDays
		}
		cutoff := time.Now().UTC().AddDate(0, 0, -days)

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close() //nolint:errcheck

		n, err := s.CloseStaleLocations(ctx, cutoff)
		if err != nil {
			return eris.Wrap(err, "close stale locations")
		}

		zap.L().Info("stale locations closed",
			zap.Int("days", days),
			zap.Time("cutoff", cutoff),
			zap.Int64("locations", n),
		)
		return nil
	},
}

func parseLifecycleStatus(s string) (model.LocationStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "open":
		return model.StatusOpen, nil
	case "close", "closed":
		return model.StatusClose, nil
	}
	return "", eris.Errorf("unknown status %q (want open or closed)", s)
}

func init() {
	chainsSetStatusCmd.Flags().IntVar(&chainsChainID, "chain", 0, "chain identifier")
	chainsSetStatusCmd.Flags().StringVar(&chainsStatus, "status", "", "target status (open or closed)")
	chainsSetStatusCmd.Flags().StringVar(&chainsCSV, "csv", "", "bulk update from a CSV of (ChainId, Status) rows")

	chainsCloseStaleCmd.Flags().IntVar(&staleWeeks, "weeks", 0, "stale cutoff in weeks (0 = use configured pipeline.stale_days)")

	chainsCmd.AddCommand(chainsSetStatusCmd)
	chainsCmd.AddCommand(chainsCloseStaleCmd)
	rootCmd.AddCommand(chainsCmd)
}
