package llamaserver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"lingod/internal/capability"
	"lingod/internal/common/fsutil"
)

// progressEvery bounds how often progress is dispatched while copying.
const progressEvery = 1 << 20

func (b *Backend) modelPath() (string, error) {
	u, err := url.Parse(b.modelURL)
	if err != nil {
		return "", fmt.Errorf("model url: %w", err)
	}
	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		return "", fmt.Errorf("model url has no file name: %s", b.modelURL)
	}
	dir, err := fsutil.EnsureDir(b.cacheDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

func (b *Backend) modelCached() bool {
	p, err := b.modelPath()
	if err != nil {
		return false
	}
	_, ok := fsutil.FileSize(p)
	return ok
}

// fetchModel downloads the configured model file unless it is cached,
// dispatching progress on mon. A cached model reports nothing.
func (b *Backend) fetchModel(ctx context.Context, mon *capability.Monitor) error {
	if b.modelURL == "" {
		return nil
	}
	b.dlMu.Lock()
	defer b.dlMu.Unlock()
	dst, err := b.modelPath()
	if err != nil {
		return err
	}
	if _, ok := fsutil.FileSize(dst); ok {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.modelURL, nil)
	if err != nil {
		return err
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("model download: %s", resp.Status)
	}
	total := resp.ContentLength
	if total < 0 {
		total = 0
	}

	tmp := dst + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	pw := &progressWriter{w: f, total: total, mon: mon}
	mon.Dispatch(capability.EventDownloadProgress, capability.ProgressEvent{Loaded: 0, Total: total})
	_, copyErr := io.Copy(pw, resp.Body)
	closeErr := f.Close()
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		_ = os.Remove(tmp)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("model download: %w", copyErr)
	}
	pw.flush()
	if err := os.Rename(tmp, dst); err != nil {
		return err
	}
	b.log.Info().Str("path", dst).Int64("bytes", pw.loaded).Msg("model downloaded")
	return nil
}

type progressWriter struct {
	w      io.Writer
	mon    *capability.Monitor
	total  int64
	loaded int64
	last   int64
}

func (p *progressWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	p.loaded += int64(n)
	if p.loaded-p.last >= progressEvery {
		p.flush()
	}
	return n, err
}

func (p *progressWriter) flush() {
	p.last = p.loaded
	total := p.total
	if total == 0 {
		// unknown size: only the final flush reports completion
		total = p.loaded
	}
	p.mon.Dispatch(capability.EventDownloadProgress, capability.ProgressEvent{Loaded: p.loaded, Total: total})
}
