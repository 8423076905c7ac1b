// Package app assembles the feature sessions from configuration and serves
// them to the HTTP, terminal and one-shot front ends.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"lingod/internal/capability"
	"lingod/internal/config"
	"lingod/internal/manager"
	"lingod/internal/provider/llama"
	"lingod/internal/provider/llamaserver"
	"lingod/internal/provider/mock"
	"lingod/internal/registry"
	"lingod/internal/summarize"
	"lingod/internal/translate"
)

// Options configure an App.
type Options struct {
	Config    config.Config
	Logger    *zerolog.Logger
	Publisher manager.EventPublisher
	// Registry overrides the capability set derived from the provider kind.
	Registry registry.Checker
	// Mock replaces the mock environment built from Config.
	Mock *mock.Environment
}

// providers is the capability host selected by configuration.
type providers struct {
	translator capability.Provider[translate.Config]
	summarizer capability.Provider[summarize.Config]
	detector   capability.DetectorProvider
	registry   registry.Checker
	probe      func(context.Context) error
}

// App owns one translation and one summarization session.
type App struct {
	Translator *translate.Session
	Summarizer *summarize.Session

	reg     registry.Checker
	probe   func(context.Context) error
	started time.Time
	log     zerolog.Logger
}

// New validates cfg, selects the provider and starts both sessions.
func New(opts Options) (*App, error) {
	cfg := opts.Config
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	p, err := buildProviders(cfg, opts, &log)
	if err != nil {
		return nil, err
	}
	reg := p.registry
	if opts.Registry != nil {
		reg = opts.Registry
	}
	a := &App{reg: reg, probe: p.probe, started: time.Now(), log: log}
	a.Translator = translate.New(translate.Options{
		Registry:      reg,
		Provider:      p.translator,
		Detector:      p.detector,
		Publisher:     opts.Publisher,
		Logger:        &log,
		HistoryCap:    cfg.HistoryCap,
		CreateTimeout: cfg.CreateTimeout.Std(),
		InvokeTimeout: cfg.InvokeTimeout.Std(),
		DrainTimeout:  cfg.DrainTimeout.Std(),
	})
	a.Summarizer = summarize.New(summarize.Options{
		Registry:      reg,
		Provider:      p.summarizer,
		Publisher:     opts.Publisher,
		Logger:        &log,
		HistoryCap:    cfg.HistoryCap,
		CreateTimeout: cfg.CreateTimeout.Std(),
		InvokeTimeout: cfg.InvokeTimeout.Std(),
		DrainTimeout:  cfg.DrainTimeout.Std(),
	})
	log.Info().Str("provider", cfg.Provider.Kind).Strs("capabilities", registeredNames(reg)).Msg("sessions started")
	return a, nil
}

func buildProviders(cfg config.Config, opts Options, log *zerolog.Logger) (providers, error) {
	pc := cfg.Provider
	switch pc.Kind {
	case config.ProviderMock:
		env := opts.Mock
		if env == nil {
			env = mock.New(mock.Options{
				DownloadSteps: pc.DownloadSteps,
				StepDelay:     pc.StepDelay.Std(),
				Logger:        log,
			})
		}
		return providers{
			translator: env.Translator(),
			summarizer: env.Summarizer(),
			detector:   env.Detector(),
			registry:   registry.Full(),
			probe:      func(context.Context) error { return nil },
		}, nil
	case config.ProviderLlamaServer:
		b := llamaserver.New(llamaserver.Options{
			BaseURL:        pc.BaseURL,
			APIKey:         pc.APIKey,
			Model:          pc.Model,
			ModelURL:       pc.ModelURL,
			CacheDir:       pc.CacheDir,
			RequestTimeout: pc.RequestTimeout.Std(),
			Logger:         log,
		})
		return providers{
			translator: b.Translator(),
			summarizer: b.Summarizer(),
			detector:   b.Detector(),
			registry:   registry.Full(),
			probe:      b.Health,
		}, nil
	case config.ProviderLlama:
		b := llama.New(llama.Options{
			ModelsDir:   pc.ModelsDir,
			Model:       pc.Model,
			ContextSize: pc.ContextSize,
			Threads:     pc.Threads,
			Logger:      log,
		})
		reg := registry.New()
		if llama.Built() {
			reg.Register(capability.NameTranslator)
			reg.Register(capability.NameSummarizer)
		} else {
			log.Warn().Err(llama.ErrNotBuilt).Msg("in-process runtime unavailable")
		}
		return providers{
			translator: b.Translator(),
			summarizer: b.Summarizer(),
			registry:   reg,
			probe: func(context.Context) error {
				if !llama.Built() {
					return llama.ErrNotBuilt
				}
				return nil
			},
		}, nil
	}
	return providers{}, fmt.Errorf("unknown provider kind %q", pc.Kind)
}

func registeredNames(c registry.Checker) []string {
	if r, ok := c.(*registry.Registry); ok {
		return r.Names()
	}
	var out []string
	for _, n := range []string{capability.NameTranslator, capability.NameSummarizer, capability.NameLanguageDetector} {
		if c.Has(n) {
			out = append(out, n)
		}
	}
	return out
}

// Close tears down both sessions.
func (a *App) Close() error {
	err1 := a.Translator.Close()
	err2 := a.Summarizer.Close()
	if err1 != nil {
		return err1
	}
	return err2
}
