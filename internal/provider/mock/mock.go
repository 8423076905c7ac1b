// Package mock simulates an on-device capability host: models are
// "downloaded" in steps with progress events, outputs are deterministic and
// streaming yields one word at a time.
package mock

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"lingod/internal/capability"
)

const (
	defaultSteps      = 5
	defaultModelBytes = 64 << 20
)

// Options tune the simulated host.
type Options struct {
	// DownloadSteps is the number of progress events for a cold model.
	DownloadSteps int
	// StepDelay is slept before every progress event.
	StepDelay time.Duration
	// FragmentDelay is slept before every streamed fragment.
	FragmentDelay time.Duration
	ModelBytes    int64
	Logger        *zerolog.Logger
}

// Environment is one simulated host. Downloaded models stay cached for its
// lifetime, so a second creation for the same model reports no progress.
type Environment struct {
	opts Options
	log  zerolog.Logger

	mu       sync.Mutex
	cached   map[string]bool
	failNext error

	creates atomic.Int64
	live    atomic.Int64
}

// New builds an Environment applying defaults for unset options.
func New(opts Options) *Environment {
	if opts.DownloadSteps <= 0 {
		opts.DownloadSteps = defaultSteps
	}
	if opts.ModelBytes <= 0 {
		opts.ModelBytes = defaultModelBytes
	}
	e := &Environment{opts: opts, cached: make(map[string]bool), log: zerolog.Nop()}
	if opts.Logger != nil {
		e.log = opts.Logger.With().Str("provider", "mock").Logger()
	}
	return e
}

// Translator returns the translation provider.
func (e *Environment) Translator() capability.Provider[capability.TranslatorOptions] {
	return &provider[capability.TranslatorOptions]{
		env:    e,
		key:    func(c capability.TranslatorOptions) string { return "translator:" + c.SourceLanguage + "-" + c.TargetLanguage },
		render: translate,
	}
}

// Summarizer returns the summarization provider.
func (e *Environment) Summarizer() capability.Provider[capability.SummarizerOptions] {
	return &provider[capability.SummarizerOptions]{
		env:    e,
		key:    func(capability.SummarizerOptions) string { return "summarizer" },
		render: summarize,
	}
}

// FailNextCreate makes the next Create of any capability return err.
func (e *Environment) FailNextCreate(err error) {
	e.mu.Lock()
	e.failNext = err
	e.mu.Unlock()
}

// Creates reports how many instances were created.
func (e *Environment) Creates() int64 { return e.creates.Load() }

// Live reports how many instances are not yet destroyed.
func (e *Environment) Live() int64 { return e.live.Load() }

// Evict forgets every downloaded model.
func (e *Environment) Evict() {
	e.mu.Lock()
	clear(e.cached)
	e.mu.Unlock()
}

func (e *Environment) isCached(key string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cached[key]
}

// download reports progress for a cold model on mon.
func (e *Environment) download(ctx context.Context, key string, mon *capability.Monitor) error {
	if e.isCached(key) {
		return nil
	}
	total := e.opts.ModelBytes
	steps := e.opts.DownloadSteps
	for i := 0; i <= steps; i++ {
		if err := sleep(ctx, e.opts.StepDelay); err != nil {
			return err
		}
		mon.Dispatch(capability.EventDownloadProgress, capability.ProgressEvent{
			Loaded: total * int64(i) / int64(steps),
			Total:  total,
		})
	}
	e.mu.Lock()
	e.cached[key] = true
	e.mu.Unlock()
	e.log.Debug().Str("model", key).Msg("model downloaded")
	return nil
}

func (e *Environment) takeFailure() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	err := e.failNext
	e.failNext = nil
	return err
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type provider[C comparable] struct {
	env    *Environment
	key    func(C) string
	render func(cfg C, input, sharedContext string) string
}

func (p *provider[C]) Availability(ctx context.Context, cfg C) (capability.Availability, error) {
	if p.env.isCached(p.key(cfg)) {
		return capability.AvailabilityReadily, nil
	}
	return capability.AvailabilityAfterDownload, nil
}

func (p *provider[C]) Create(ctx context.Context, cfg C, opts capability.CreateOptions) (capability.Instance, error) {
	if err := p.env.takeFailure(); err != nil {
		return nil, err
	}
	mon := capability.NewMonitor()
	if opts.Monitor != nil {
		opts.Monitor(mon)
	}
	if err := p.env.download(ctx, p.key(cfg), mon); err != nil {
		return nil, err
	}
	p.env.creates.Add(1)
	p.env.live.Add(1)
	return &instance[C]{p: p, cfg: cfg}, nil
}

type instance[C comparable] struct {
	p         *provider[C]
	cfg       C
	destroyed atomic.Bool
}

func (in *instance[C]) Prompt(ctx context.Context, input string, opts capability.PromptOptions) (string, error) {
	if in.destroyed.Load() {
		return "", errDestroyed
	}
	if err := sleep(ctx, in.p.env.opts.FragmentDelay); err != nil {
		return "", err
	}
	return in.p.render(in.cfg, input, opts.Context), nil
}

func (in *instance[C]) PromptStreaming(ctx context.Context, input string, opts capability.PromptOptions) (capability.Stream, error) {
	if in.destroyed.Load() {
		return nil, errDestroyed
	}
	out := in.p.render(in.cfg, input, opts.Context)
	delay := in.p.env.opts.FragmentDelay
	return capability.NewPushStream(ctx, func(ctx context.Context, emit func(string) error) error {
		for _, frag := range fragments(out) {
			if err := sleep(ctx, delay); err != nil {
				return err
			}
			if in.destroyed.Load() {
				return errDestroyed
			}
			if err := emit(frag); err != nil {
				return err
			}
		}
		return nil
	}), nil
}

func (in *instance[C]) Destroy() error {
	if in.destroyed.CompareAndSwap(false, true) {
		in.p.env.live.Add(-1)
	}
	return nil
}
