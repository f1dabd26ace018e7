package update

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	goupdate "github.com/inconshreveable/go-update"
)

const maxChecksumSize = 4 << 10

// maxArchiveSize caps how much of a zip asset is read into memory.
const maxArchiveSize = 512 << 20

// install downloads r's asset and swaps it in for the running executable.
func (m *Manager) install(ctx context.Context, r *Release) error {
	bin, opts, closeFn, err := m.prepare(ctx, r)
	if err != nil {
		return err
	}
	defer closeFn()

	if err := goupdate.Apply(bin, opts); err != nil {
		if rerr := goupdate.RollbackError(err); rerr != nil {
			return fmt.Errorf("apply update (rollback failed: %w): %w", rerr, err)
		}
		return fmt.Errorf("apply update: %w", err)
	}
	return nil
}

// prepare downloads r's asset and returns the new executable with the options
// to apply it. A published checksum covers the asset as downloaded: a zip is
// verified before it is extracted, a raw binary is verified by Apply.
func (m *Manager) prepare(ctx context.Context, r *Release) (io.Reader, goupdate.Options, func(), error) {
	var opts goupdate.Options
	if r.AssetURL == "" {
		return nil, opts, nil, fmt.Errorf("release %s has no download for %s/%s", r.Tag, m.goos, m.goarch)
	}

	var sum []byte
	if r.ChecksumURL != "" {
		var err error
		if sum, err = m.fetchChecksum(ctx, r.ChecksumURL); err != nil {
			return nil, opts, nil, err
		}
	}

	body, err := m.fetch(ctx, r.AssetURL)
	if err != nil {
		return nil, opts, nil, err
	}
	closeFn := func() { body.Close() } //nolint:errcheck,gosec // read-only

	if !strings.HasSuffix(strings.ToLower(r.AssetName), ".zip") {
		if sum != nil {
			opts.Checksum = sum
			opts.Hash = crypto.SHA256
		}
		return body, opts, closeFn, nil
	}

	defer closeFn()
	data, err := io.ReadAll(io.LimitReader(body, maxArchiveSize))
	if err != nil {
		return nil, opts, nil, fmt.Errorf("read archive: %w", err)
	}
	if sum != nil {
		if got := sha256.Sum256(data); !bytes.Equal(got[:], sum) {
			return nil, opts, nil, fmt.Errorf("verify %s: checksum mismatch: got %x, want %x", r.AssetName, got, sum)
		}
	}
	bin, err := extractZip(data)
	if err != nil {
		return nil, opts, nil, err
	}
	return bin, opts, func() {}, nil
}

func (m *Manager) fetch(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create download request: %w", err)
	}
	resp, err := m.download.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", rawURL, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close() //nolint:errcheck,gosec // status error takes precedence
		return nil, fmt.Errorf("download %s: %s", rawURL, resp.Status)
	}
	return resp.Body, nil
}

// fetchChecksum reads a "<hex digest>  <file name>" checksum file.
func (m *Manager) fetchChecksum(ctx context.Context, rawURL string) ([]byte, error) {
	body, err := m.fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer body.Close() //nolint:errcheck // read-only

	data, err := io.ReadAll(io.LimitReader(body, maxChecksumSize))
	if err != nil {
		return nil, fmt.Errorf("read checksum: %w", err)
	}
	return parseChecksum(string(data))
}

func parseChecksum(s string) ([]byte, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, errors.New("empty checksum file")
	}
	sum, err := hex.DecodeString(fields[0])
	if err != nil {
		return nil, fmt.Errorf("decode checksum: %w", err)
	}
	if len(sum) != crypto.SHA256.Size() {
		return nil, fmt.Errorf("checksum has %d bytes, want %d", len(sum), crypto.SHA256.Size())
	}
	return sum, nil
}

// extractZip returns the first regular file in a zip archive.
func extractZip(data []byte) (io.Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", f.Name, err)
		}
		defer rc.Close() //nolint:errcheck // read-only
		bin, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("extract %s: %w", f.Name, err)
		}
		return bytes.NewReader(bin), nil
	}
	return nil, errors.New("archive contains no files")
}
