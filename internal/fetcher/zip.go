package fetcher

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// securePath resolves an archive entry name under destDir, rejecting names
// that would escape it.
func securePath(destDir, name string) (string, error) {
	p := filepath.Join(destDir, name)
	if !strings.HasPrefix(filepath.Clean(p), filepath.Clean(destDir)+string(os.PathSeparator)) {
		return "", eris.Errorf("zip: illegal path %q", name)
	}
	return p, nil
}

func writeEntry(f *zip.File, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrap(err, "zip: create parent directory")
	}

	rc, err := f.Open()
	if err != nil {
		return eris.Wrap(err, "zip: open entry")
	}
	defer rc.Close() //nolint:errcheck

	out, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "zip: create file")
	}
	defer out.Close() //nolint:errcheck

	if _, err := io.Copy(out, rc); err != nil {
		return eris.Wrap(err, "zip: write file")
	}
	return nil
}

// ExtractZIP unpacks a zipped export bundle into destDir and returns the
// extracted file paths. Directory entries are created but not returned.
func ExtractZIP(zipPath, destDir string) ([]string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, eris.Wrap(err, "zip: open archive")
	}
	defer r.Close() //nolint:errcheck

	var extracted []string
	for _, f := range r.File {
		path, err := securePath(destDir, f.Name)
		if err != nil {
			return extracted, err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(path, 0o755); err != nil {
				return extracted, eris.Wrap(err, "zip: create directory")
			}
			continue
		}
		if err := writeEntry(f, path); err != nil {
			return extracted, err
		}
		extracted = append(extracted, path)
	}
	return extracted, nil
}

// ExtractZIPSingle unpacks the one file a single-file archive holds.
// Collection exports arrive as one zipped CSV.
func ExtractZIPSingle(zipPath, destDir string) (string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", eris.Wrap(err, "zip: open archive")
	}
	defer r.Close() //nolint:errcheck

	var entry *zip.File
	count := 0
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		entry = f
		count++
	}
	if count != 1 {
		return "", eris.Errorf("zip: expected exactly 1 file, got %d", count)
	}

	path, err := securePath(destDir, entry.Name)
	if err != nil {
		return "", err
	}
	if err := writeEntry(entry, path); err != nil {
		return "", err
	}
	return path, nil
}
