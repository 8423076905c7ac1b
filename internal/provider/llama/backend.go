// Package llama runs the capabilities in-process on go-llama.cpp. Real
// support needs the 'llama' build tag; default builds get a stub whose
// creations fail and whose availability is "unavailable".
package llama

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"lingod/internal/capability"
	"lingod/internal/common/fsutil"
	"lingod/internal/provider/prompt"
	"lingod/internal/registry"
	"lingod/pkg/types"
)

// ErrNotBuilt is returned when the binary lacks the 'llama' build tag.
var ErrNotBuilt = errors.New("llama support not built (missing 'llama' build tag)")

// Options configure a Backend.
type Options struct {
	// ModelsDir is scanned for *.gguf files.
	ModelsDir string
	// Model selects a file by ID; empty picks the first one found.
	Model       string
	ContextSize int
	Threads     int
	MaxTokens   int
	Logger      *zerolog.Logger
}

// Backend loads one model per capability instance.
type Backend struct {
	opts Options
	log  zerolog.Logger
}

// New constructs a Backend with defaults for unset sizes.
func New(opts Options) *Backend {
	if opts.ContextSize <= 0 {
		opts.ContextSize = 2048
	}
	if opts.Threads <= 0 {
		opts.Threads = 4
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 512
	}
	b := &Backend{opts: opts, log: zerolog.Nop()}
	if opts.Logger != nil {
		b.log = opts.Logger.With().Str("provider", "llama").Logger()
	}
	return b
}

// Built reports whether this binary carries the in-process runtime.
func Built() bool { return llamaBuilt }

func (b *Backend) resolve() (types.Model, error) {
	models, err := registry.LoadDir(b.opts.ModelsDir)
	if err != nil {
		return types.Model{}, err
	}
	m, ok := registry.Resolve(models, b.opts.Model)
	if !ok {
		return types.Model{}, fmt.Errorf("model %q not found in %s", b.opts.Model, b.opts.ModelsDir)
	}
	return m, nil
}

// Translator returns the translation provider.
func (b *Backend) Translator() capability.Provider[capability.TranslatorOptions] {
	return &provider[capability.TranslatorOptions]{b: b, system: prompt.Translator}
}

// Summarizer returns the summarization provider.
func (b *Backend) Summarizer() capability.Provider[capability.SummarizerOptions] {
	return &provider[capability.SummarizerOptions]{b: b, system: prompt.Summarizer}
}

type provider[C comparable] struct {
	b      *Backend
	system func(C) string
}

func (p *provider[C]) Availability(ctx context.Context, cfg C) (capability.Availability, error) {
	if !Built() {
		return capability.AvailabilityUnavailable, nil
	}
	if _, err := p.b.resolve(); err != nil {
		return capability.AvailabilityNo, nil
	}
	return capability.AvailabilityReadily, nil
}

// Create loads the model. Loading a local file is reported as a single
// progress step from 0 to the file size.
func (p *provider[C]) Create(ctx context.Context, cfg C, opts capability.CreateOptions) (capability.Instance, error) {
	if !Built() {
		return nil, ErrNotBuilt
	}
	mdl, err := p.b.resolve()
	if err != nil {
		return nil, err
	}
	mon := capability.NewMonitor()
	if opts.Monitor != nil {
		opts.Monitor(mon)
	}
	size, _ := fsutil.FileSize(mdl.Path)
	mon.Dispatch(capability.EventDownloadProgress, capability.ProgressEvent{Loaded: 0, Total: size})
	r, err := load(mdl.Path, p.b.opts)
	if err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		r.free()
		return nil, ctx.Err()
	}
	mon.Dispatch(capability.EventDownloadProgress, capability.ProgressEvent{Loaded: size, Total: size})
	p.b.log.Info().Str("model", mdl.ID).Msg("model loaded")
	return &instance{r: r, system: p.system(cfg)}, nil
}

// runner is the loaded model.
type runner interface {
	// predict runs generation; onToken returning false stops it.
	predict(ctx context.Context, text string, onToken func(string) bool) (string, error)
	free()
}

type instance struct {
	mu     sync.Mutex
	r      runner
	system string
}

var errDestroyed = errors.New("llama instance destroyed")

func (in *instance) render(input string, opts capability.PromptOptions) string {
	var b strings.Builder
	b.WriteString("### System:\n")
	b.WriteString(in.system)
	if c := strings.TrimSpace(opts.Context); c != "" {
		b.WriteString("\nContext: ")
		b.WriteString(c)
	}
	b.WriteString("\n### User:\n")
	b.WriteString(input)
	b.WriteString("\n### Assistant:\n")
	return b.String()
}

func (in *instance) Prompt(ctx context.Context, input string, opts capability.PromptOptions) (string, error) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.r == nil {
		return "", errDestroyed
	}
	out, err := in.r.predict(ctx, in.render(input, opts), nil)
	return strings.TrimSpace(out), err
}

func (in *instance) PromptStreaming(ctx context.Context, input string, opts capability.PromptOptions) (capability.Stream, error) {
	text := in.render(input, opts)
	return capability.NewPushStream(ctx, func(ctx context.Context, emit func(string) error) error {
		in.mu.Lock()
		defer in.mu.Unlock()
		if in.r == nil {
			return errDestroyed
		}
		_, err := in.r.predict(ctx, text, func(tok string) bool {
			return emit(tok) == nil
		})
		return err
	}), nil
}

// Destroy frees the model once no generation holds it.
func (in *instance) Destroy() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.r != nil {
		in.r.free()
		in.r = nil
	}
	return nil
}
