// Package fetcher retrieves partner export files over HTTP and FTP and
// parses the tabular formats they arrive in (CSV, XLSX, zipped CSV).
package fetcher

import (
	"context"
	"io"
)

// Fetcher downloads remote export files.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadToFile fetches the URL and writes it to the given path.
	// Returns bytes written.
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)
}

// ConditionalFetcher additionally supports ETag-gated downloads, so daily
// export polls skip unchanged files.
type ConditionalFetcher interface {
	Fetcher

	// HeadETag performs a HEAD request and returns the ETag header value.
	HeadETag(ctx context.Context, url string) (string, error)

	// DownloadIfChanged fetches the URL only if the ETag has changed.
	// Returns (body, newETag, changed, error).
	DownloadIfChanged(ctx context.Context, url string, etag string) (io.ReadCloser, string, bool, error)
}
