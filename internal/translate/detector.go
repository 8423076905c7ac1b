package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"lingod/internal/capability"
)

var errDetectorClosed = errors.New("detector closed")

// detectorSession owns the secondary detector capability for the
// lifetime of the translation session.
type detectorSession struct {
	ctx    context.Context
	cancel context.CancelFunc
	ready  chan struct{}
	log    zerolog.Logger

	mu     sync.Mutex
	det    capability.Detector
	err    error
	closed bool
}

func startDetector(p capability.DetectorProvider, log zerolog.Logger, onReady func()) *detectorSession {
	ctx, cancel := context.WithCancel(context.Background())
	d := &detectorSession{ctx: ctx, cancel: cancel, ready: make(chan struct{}), log: log}
	go d.start(p, onReady)
	return d
}

func (d *detectorSession) start(p capability.DetectorProvider, onReady func()) {
	defer close(d.ready)
	det, err := p.Create(d.ctx)
	if err == nil {
		err = det.Ready(d.ctx)
	}
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		if det != nil {
			_ = det.Destroy()
		}
		return
	}
	if err != nil {
		d.err = err
		d.mu.Unlock()
		if det != nil {
			_ = det.Destroy()
		}
		d.log.Warn().Err(err).Msg("language detector unavailable")
		return
	}
	d.det = det
	d.mu.Unlock()
	d.log.Debug().Msg("language detector ready")
	onReady()
}

// detect waits for the detector to become ready, then classifies text.
func (d *detectorSession) detect(ctx context.Context, text string) ([]capability.Detection, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("no text to detect")
	}
	select {
	case <-d.ready:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	d.mu.Lock()
	det, err, closed := d.det, d.err, d.closed
	d.mu.Unlock()
	switch {
	case closed:
		return nil, errDetectorClosed
	case err != nil:
		return nil, fmt.Errorf("detector not ready: %w", err)
	}
	return det.Detect(ctx, text)
}

func (d *detectorSession) close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	det := d.det
	d.det = nil
	d.mu.Unlock()
	d.cancel()
	if det != nil {
		_ = det.Destroy()
	}
}
