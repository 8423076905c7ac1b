package manager

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"lingod/internal/capability"
)

// fakeConfig stands in for a feature config.
type fakeConfig struct {
	Lang string
}

func (c fakeConfig) Fields() map[string]string { return map[string]string{"lang": c.Lang} }

// fakeProvider is a scripted in-memory capability provider.
type fakeProvider struct {
	mu        sync.Mutex
	progress  []capability.ProgressEvent
	createErr error
	panicMsg  string
	// gate, when set, blocks Create until it receives or is closed.
	gate    chan struct{}
	started chan fakeConfig
	// stubborn Create ignores cancellation while gated.
	stubborn bool

	creates   int
	instances []*fakeInstance
	monitors  []*capability.Monitor
	// destroyedAtCreate records, per Create call, how many earlier
	// instances were already destroyed.
	destroyedAtCreate []int

	frags     []string
	promptErr error
	hold      chan struct{}
}

func (p *fakeProvider) Availability(ctx context.Context, cfg fakeConfig) (capability.Availability, error) {
	return capability.AvailabilityReadily, nil
}

func (p *fakeProvider) Create(ctx context.Context, cfg fakeConfig, opts capability.CreateOptions) (capability.Instance, error) {
	p.mu.Lock()
	p.creates++
	destroyed := 0
	for _, in := range p.instances {
		if in.destroyed.Load() > 0 {
			destroyed++
		}
	}
	p.destroyedAtCreate = append(p.destroyedAtCreate, destroyed)
	progress := append([]capability.ProgressEvent(nil), p.progress...)
	createErr, panicMsg, gate, started, stubborn := p.createErr, p.panicMsg, p.gate, p.started, p.stubborn
	p.mu.Unlock()

	if panicMsg != "" {
		panic(panicMsg)
	}
	mon := capability.NewMonitor()
	if opts.Monitor != nil {
		opts.Monitor(mon)
	}
	p.mu.Lock()
	p.monitors = append(p.monitors, mon)
	p.mu.Unlock()
	if started != nil {
		started <- cfg
	}
	for _, ev := range progress {
		mon.Dispatch(capability.EventDownloadProgress, ev)
	}
	if gate != nil && stubborn {
		<-gate
	} else if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if createErr != nil {
		return nil, createErr
	}
	inst := &fakeInstance{p: p, cfg: cfg, mon: mon}
	p.mu.Lock()
	p.instances = append(p.instances, inst)
	p.mu.Unlock()
	return inst, nil
}

func (p *fakeProvider) createCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.creates
}

func (p *fakeProvider) instance(i int) *fakeInstance {
	p.mu.Lock()
	defer p.mu.Unlock()
	if i >= len(p.instances) {
		return nil
	}
	return p.instances[i]
}

func (p *fakeProvider) monitor(i int) *capability.Monitor {
	p.mu.Lock()
	defer p.mu.Unlock()
	if i >= len(p.monitors) {
		return nil
	}
	return p.monitors[i]
}

func (p *fakeProvider) setPromptErr(err error) {
	p.mu.Lock()
	p.promptErr = err
	p.mu.Unlock()
}

type fakeInstance struct {
	p         *fakeProvider
	cfg       fakeConfig
	mon       *capability.Monitor
	prompts   atomic.Int32
	destroyed atomic.Int32
	lastCtx   atomic.Value
}

func (f *fakeInstance) Prompt(ctx context.Context, input string, opts capability.PromptOptions) (string, error) {
	f.prompts.Add(1)
	f.lastCtx.Store(opts.Context)
	f.p.mu.Lock()
	err, hold := f.p.promptErr, f.p.hold
	f.p.mu.Unlock()
	if hold != nil {
		select {
		case <-hold:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err != nil {
		return "", err
	}
	return f.cfg.Lang + ":" + input, nil
}

func (f *fakeInstance) PromptStreaming(ctx context.Context, input string, opts capability.PromptOptions) (capability.Stream, error) {
	f.prompts.Add(1)
	f.p.mu.Lock()
	frags, err := f.p.frags, f.p.promptErr
	f.p.mu.Unlock()
	if err != nil {
		return capability.NewPushStream(ctx, func(ctx context.Context, emit func(string) error) error {
			for _, fr := range frags {
				if err := emit(fr); err != nil {
					return err
				}
			}
			return err
		}), nil
	}
	return capability.NewSliceStream(frags), nil
}

func (f *fakeInstance) Destroy() error {
	f.destroyed.Add(1)
	return errors.New("destroy errors are swallowed")
}

func newTestManager(t *testing.T, p *fakeProvider, mutate func(*ManagerConfig[fakeConfig])) (*Manager[fakeConfig], *MemoryPublisher) {
	t.Helper()
	pub := NewMemoryPublisher()
	cfg := ManagerConfig[fakeConfig]{Name: "fake", Provider: p, Publisher: pub}
	if mutate != nil {
		mutate(&cfg)
	}
	m := NewWithConfig(cfg)
	t.Cleanup(func() { _ = m.Close() })
	return m, pub
}

// testCtx returns a context with a short timeout, canceled on test cleanup.
func testCtx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return c
}

// waitFor polls cond until it holds or the deadline passes.
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
