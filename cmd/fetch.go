package main

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/footprint-cli/internal/fetcher"
	"github.com/sells-group/footprint-cli/pkg/partner"
)

var (
	fetchType    string
	fetchDir     string
	fetchExtract bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download partner export files",
}

var fetchExportsCmd = &cobra.Command{
	Use:   "exports",
	Short: "Download exports from the partner API",
	Long:  "Lists the exports the partner API currently publishes (optionally filtered by type) and downloads them all into the download directory.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		dir := fetchDir
		if dir == "" {
			dir = cfg.Partner.DownloadDir
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrap(err, "create download dir")
		}

		client := partner.NewClient(cfg.Partner.BaseURL, cfg.Partner.APIKey,
			partner.WithRateLimit(cfg.Partner.RatePerSec, cfg.Partner.Burst),
		)

		exports, err := client.ListExports(ctx, fetchType)
		if err != nil {
			return err
		}
		if len(exports) == 0 {
			zap.L().Info("no exports available", zap.String("type", fetchType))
			return nil
		}

		paths, err := client.DownloadAll(ctx, exports, dir)
		if err != nil {
			return err
		}
		if fetchExtract {
			if err := extractDownloads(paths, dir); err != nil {
				return err
			}
		}

		zap.L().Info("exports downloaded",
			zap.Int("count", len(paths)),
			zap.String("dir", dir),
		)
		return nil
	},
}

var fetchFTPCmd = &cobra.Command{
	Use:   "ftp <dir-url>",
	Short: "Download every file from a partner FTP drop directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		dir := fetchDir
		if dir == "" {
			dir = cfg.Partner.DownloadDir
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrap(err, "create download dir")
		}

		ftp := fetcher.NewFTPFetcher(fetcher.FTPOptions{
			User:     cfg.FTP.User,
			Password: cfg.FTP.Password,
			Timeout:  time.Duration(cfg.Partner.TimeoutSecs) * time.Second,
		})

		names, err := ftp.ListDir(ctx, args[0])
		if err != nil {
			return err
		}

		dirURL := strings.TrimRight(args[0], "/")
		var paths []string
		for _, name := range names {
			local := filepath.Join(dir, name)
			n, err := ftp.DownloadToFile(ctx, dirURL+"/"+name, local)
			if err != nil {
				return eris.Wrapf(err, "download %s", name)
			}
			zap.L().Info("downloaded ftp drop",
				zap.String("file", name),
				zap.Int64("bytes", n),
			)
			paths = append(paths, local)
		}
		if fetchExtract {
			if err := extractDownloads(paths, dir); err != nil {
				return err
			}
		}

		zap.L().Info("ftp drop fetched",
			zap.Int("count", len(paths)),
			zap.String("dir", dir),
		)
		return nil
	},
}

// extractDownloads unpacks any zip archives among the downloaded files.
func extractDownloads(paths []string, dir string) error {
	for _, p := range paths {
		if strings.ToLower(filepath.Ext(p)) != ".zip" {
			continue
		}
		entries, err := fetcher.ExtractZIP(p, dir)
		if err != nil {
			return eris.Wrapf(err, "extract %s", p)
		}
		zap.L().Info("extracted archive",
			zap.String("archive", filepath.Base(p)),
			zap.Int("entries", len(entries)),
		)
	}
	return nil
}

func init() {
	fetchCmd.PersistentFlags().StringVar(&fetchDir, "dir", "", "download directory (default: configured partner.download_dir)")
	fetchCmd.PersistentFlags().BoolVar(&fetchExtract, "extract", false, "unpack downloaded zip archives")
	fetchExportsCmd.Flags().StringVar(&fetchType, "type", "", "export type filter (collection, chain-scrape, reference)")

	fetchCmd.AddCommand(fetchExportsCmd)
	fetchCmd.AddCommand(fetchFTPCmd)
	rootCmd.AddCommand(fetchCmd)
}
