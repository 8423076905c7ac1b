package translate

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"lingod/internal/capability"
)

// dictProvider translates by dictionary lookup and reports scripted
// progress during creation.
type dictProvider struct {
	mu       sync.Mutex
	dict     map[string]string
	progress []capability.ProgressEvent
	creates  []Config
	live     atomic.Int32
	// hold, when set, keeps Prompt from returning until closed; ctx is
	// ignored like a host that does not support cancellation.
	hold chan struct{}
}

func (p *dictProvider) Availability(ctx context.Context, cfg Config) (capability.Availability, error) {
	return capability.AvailabilityAfterDownload, nil
}

func (p *dictProvider) Create(ctx context.Context, cfg Config, opts capability.CreateOptions) (capability.Instance, error) {
	p.mu.Lock()
	p.creates = append(p.creates, cfg)
	progress := p.progress
	p.mu.Unlock()
	mon := capability.NewMonitor()
	if opts.Monitor != nil {
		opts.Monitor(mon)
	}
	for _, ev := range progress {
		mon.Dispatch(capability.EventDownloadProgress, ev)
	}
	p.live.Add(1)
	return &dictInstance{p: p}, nil
}

func (p *dictProvider) createCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.creates)
}

type dictInstance struct {
	p    *dictProvider
	gone atomic.Bool
}

func (d *dictInstance) Prompt(ctx context.Context, input string, opts capability.PromptOptions) (string, error) {
	if d.p.hold != nil {
		<-d.p.hold
	}
	if out, ok := d.p.dict[input]; ok {
		return out, nil
	}
	return "", errors.New("unknown phrase")
}

func (d *dictInstance) PromptStreaming(ctx context.Context, input string, opts capability.PromptOptions) (capability.Stream, error) {
	out, err := d.Prompt(ctx, input, opts)
	if err != nil {
		return nil, err
	}
	mid := len(out) / 2
	return capability.NewSliceStream([]string{out[:mid], out[mid:]}), nil
}

func (d *dictInstance) Destroy() error {
	if d.gone.CompareAndSwap(false, true) {
		d.p.live.Add(-1)
	}
	return nil
}

type fakeDetectorProvider struct {
	results   []capability.Detection
	createErr error
	destroyed atomic.Int32
}

func (p *fakeDetectorProvider) Create(ctx context.Context) (capability.Detector, error) {
	if p.createErr != nil {
		return nil, p.createErr
	}
	return &fakeDetector{p: p}, nil
}

type fakeDetector struct{ p *fakeDetectorProvider }

func (d *fakeDetector) Ready(ctx context.Context) error { return nil }

func (d *fakeDetector) Detect(ctx context.Context, text string) ([]capability.Detection, error) {
	return d.p.results, nil
}

func (d *fakeDetector) Destroy() error {
	d.p.destroyed.Add(1)
	return nil
}

func testCtx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return c
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
