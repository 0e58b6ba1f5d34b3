package lexicon

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/japaniel/sentbreak/pkg/sentbreak"
)

// maxListBytes bounds a single extracted list file.
const maxListBytes = 1 << 20

// EnsureBundle makes sure dir holds the word lists. When dir has no list
// files yet, the .tgz bundle at url is downloaded and its list files are
// extracted into dir. It returns the number of files written.
func EnsureBundle(ctx context.Context, url, dir string, logger *zap.Logger) (int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if hasLists(dir) {
		return 0, nil
	}
	if url == "" {
		return 0, fmt.Errorf("word lists not found in %s and no bundle url configured", dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create word list dir: %w", err)
	}

	logger.Info("Word lists not found, downloading bundle", zap.String("dir", dir), zap.String("url", url))
	return downloadAndExtract(ctx, url, dir)
}

func hasLists(dir string) bool {
	for _, name := range sentbreak.ListNames() {
		if _, err := os.Stat(filepath.Join(dir, FileName(name))); err == nil {
			return true
		}
	}
	return false
}

func isListFile(base string) bool {
	for _, name := range sentbreak.ListNames() {
		if base == FileName(name) {
			return true
		}
	}
	return false
}

func downloadAndExtract(ctx context.Context, url, dir string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", "sentbreak-cli")
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("download bundle: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("download failed: %s", resp.Status)
	}

	gzReader, err := gzip.NewReader(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzReader.Close()

	tarReader := tar.NewReader(gzReader)
	written := 0
	for {
		header, err := tarReader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return written, fmt.Errorf("error reading tar archive: %w", err)
		}
		// only known list names, flattened, so entries cannot escape dir
		base := path.Base(header.Name)
		if header.Typeflag != tar.TypeReg || !isListFile(base) {
			continue
		}
		if err := writeList(filepath.Join(dir, base), tarReader); err != nil {
			return written, err
		}
		written++
	}

	if written == 0 {
		return 0, fmt.Errorf("no word list files found in bundle")
	}
	return written, nil
}

func writeList(dest string, r io.Reader) error {
	tmp := dest + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	n, err := io.Copy(out, io.LimitReader(r, maxListBytes+1))
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > maxListBytes {
		err = fmt.Errorf("%s exceeds %d bytes", strings.TrimSuffix(filepath.Base(dest), ".txt"), maxListBytes)
	}
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	return os.Rename(tmp, dest)
}
