// Package installer downloads a released dmenv binary and puts it on the
// PATH.
package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/valter-silva-au/dmenv/internal/fsutil"
)

// DefaultBaseURL is the repository the release artifacts are attached to.
const DefaultBaseURL = "https://github.com/dmerejkowsky/dmenv"

// ChunkSize is the size of the reads made while downloading.
const ChunkSize = 100 * 1024

// Platforms are the operating systems a release is built for.
var Platforms = []string{"linux", "darwin", "windows"}

// ArtifactName returns the name of the release asset for goos.
func ArtifactName(goos string) (string, error) {
	switch goos {
	case "windows":
		return "dmenv-windows.exe", nil
	case "darwin":
		return "dmenv-osx", nil
	case "linux":
		return "dmenv-linux", nil
	}
	return "", fmt.Errorf("no dmenv release for platform %q", goos)
}

// URL returns the download URL of the release asset for goos.
func URL(base, version, goos string) (string, error) {
	artifact, err := ArtifactName(goos)
	if err != nil {
		return "", err
	}
	if base == "" {
		base = DefaultBaseURL
	}
	return fmt.Sprintf("%s/releases/download/%s/%s", strings.TrimRight(base, "/"), version, artifact), nil
}

// ShortReadError is returned when the body is shorter or longer than the
// announced Content-Length.
type ShortReadError struct {
	Expected int64
	Got      int64
}

func (e *ShortReadError) Error() string {
	return fmt.Sprintf("expecting %d, got %d", e.Expected, e.Got)
}

// ProgressFunc receives the number of bytes transferred so far and the
// total size, which is -1 when the server did not announce it.
type ProgressFunc func(transferred, total int64)

// Download streams url to a temporary file next to dest and atomically
// moves it over dest as an executable once the whole body arrived.
func Download(ctx context.Context, client *http.Client, url, dest string, progress ProgressFunc) error {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("downloading %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("downloading %s: %s", url, resp.Status)
	}

	dst, err := fsutil.NewPendingFile(dest, 0o755)
	if err != nil {
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	defer dst.Cleanup()

	size := resp.ContentLength
	chunk := make([]byte, ChunkSize)
	var transferred int64
	for {
		n, err := resp.Body.Read(chunk)
		if n > 0 {
			if _, werr := dst.Write(chunk[:n]); werr != nil {
				return fmt.Errorf("writing %s: %w", dest, werr)
			}
			transferred += int64(n)
			if progress != nil {
				progress(transferred, size)
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) && size >= 0 {
				return &ShortReadError{Expected: size, Got: transferred}
			}
			return fmt.Errorf("reading %s: %w", url, err)
		}
	}
	if size >= 0 && transferred != size {
		return &ShortReadError{Expected: size, Got: transferred}
	}

	if err := dst.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	return nil
}
