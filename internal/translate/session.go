// Package translate is the translation feature: form state, user intents
// and the capability session behind them.
package translate

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"lingod/internal/capability"
	"lingod/internal/manager"
	"lingod/internal/registry"
	"lingod/internal/store"
)

// Options configure a Session.
type Options struct {
	Registry  registry.Checker
	Provider  capability.Provider[Config]
	Detector  capability.DetectorProvider
	Publisher manager.EventPublisher
	Logger    *zerolog.Logger

	HistoryCap    int
	CreateTimeout time.Duration
	InvokeTimeout time.Duration
	DrainTimeout  time.Duration
	// Config is the initial form config; zero means DefaultConfig.
	Config Config
}

// Session is one translation feature session.
type Session struct {
	mgr       *manager.Manager[Config]
	store     *store.Store[State, Action]
	supported bool
	det       *detectorSession
	log       zerolog.Logger
}

// New starts a session. Capability presence is resolved here, once; the
// detector, when registered, is created in the background.
func New(opts Options) *Session {
	cfg := opts.Config
	if cfg == (Config{}) {
		cfg = DefaultConfig()
	}
	s := &Session{store: store.New(InitialState(cfg), Reduce), log: zerolog.Nop()}
	if opts.Logger != nil {
		s.log = opts.Logger.With().Str("feature", capability.NameTranslator).Logger()
	}
	s.supported = opts.Registry != nil && opts.Registry.Has(capability.NameTranslator) && opts.Provider != nil
	provider := opts.Provider
	if !s.supported {
		provider = nil
	}
	s.mgr = manager.NewWithConfig(manager.ManagerConfig[Config]{
		Name:          capability.NameTranslator,
		Provider:      provider,
		Publisher:     opts.Publisher,
		Logger:        opts.Logger,
		HistoryCap:    opts.HistoryCap,
		CreateTimeout: opts.CreateTimeout,
		InvokeTimeout: opts.InvokeTimeout,
		DrainTimeout:  opts.DrainTimeout,
		OnChange:      s.syncDownload,
	})
	if !s.supported {
		s.log.Warn().Msg("translator capability not available")
		s.store.Dispatch(Unsupported{Err: manager.ErrUnsupportedEnvironment(capability.NameTranslator)})
	}
	if opts.Registry != nil && opts.Registry.Has(capability.NameLanguageDetector) && opts.Detector != nil {
		s.det = startDetector(opts.Detector, s.log, func() { s.store.Dispatch(DetectorReady{}) })
	}
	return s
}

func (s *Session) syncDownload() {
	snap := s.mgr.Snapshot()
	s.store.Dispatch(Progress{Download: snap.Download, ModelReady: snap.ModelReady})
}

// Manager exposes the capability session for status and history views.
func (s *Session) Manager() *manager.Manager[Config] { return s.mgr }

func (s *Session) Supported() bool { return s.supported }

func (s *Session) State() State { return s.store.State() }

// OnChange subscribes fn to every state change and returns the unsubscribe
// func.
func (s *Session) OnChange(fn func(State)) func() { return s.store.Subscribe(fn) }

func (s *Session) SetSource(tag string) { s.store.Dispatch(SetSource{Tag: tag}) }
func (s *Session) SetTarget(tag string) { s.store.Dispatch(SetTarget{Tag: tag}) }
func (s *Session) SetInput(text string) { s.store.Dispatch(SetInput{Text: text}) }
func (s *Session) Swap() { s.store.Dispatch(Swap{}) }
func (s *Session) Clear() { s.store.Dispatch(Clear{}) }
func (s *Session) LoadSample(i int) { s.store.Dispatch(LoadSample{Index: i}) }
func (s *Session) ToggleStreaming() { s.store.Dispatch(ToggleStreaming{}) }
func (s *Session) DismissNotice() { s.store.Dispatch(DismissNotice{}) }
func (s *Session) Preload(cfg Config) string { return s.mgr.Preload(cfg) }

// Submit translates the form input with the form config.
func (s *Session) Submit(ctx context.Context) (manager.Result, error) {
	st := s.store.State()
	return s.Translate(ctx, st.Config, st.Input, manager.ParseMode(st.Streaming), nil)
}

// Translate runs text through a translator configured with cfg. Partial
// results update the form output and are passed to onPartial when set.
func (s *Session) Translate(ctx context.Context, cfg Config, text string, mode manager.Mode, onPartial func(string)) (manager.Result, error) {
	if !s.supported {
		err := manager.ErrUnsupportedEnvironment(capability.NameTranslator)
		s.store.Dispatch(Failed{Err: err})
		return manager.Result{}, err
	}
	s.store.Dispatch(Started{})
	res, err := s.mgr.Invoke(ctx, cfg, text, manager.InvokeOptions{
		Mode: mode,
		OnPartial: func(p string) {
			s.store.Dispatch(Partial{Text: p})
			if onPartial != nil {
				onPartial(p)
			}
		},
	})
	if err != nil {
		s.log.Debug().Err(err).Msg("translation failed")
		s.store.Dispatch(Failed{Err: err})
		return manager.Result{}, err
	}
	s.store.Dispatch(Succeeded{Result: res, Config: cfg, History: s.mgr.History().Entries()})
	return res, nil
}

// Detect classifies the form input and, on success, makes the detected
// language the source language.
func (s *Session) Detect(ctx context.Context) (capability.Detection, error) {
	return s.DetectText(ctx, s.store.State().Input)
}

// DetectText classifies text and sets the source language from the most
// confident candidate, reduced to its primary subtag.
func (s *Session) DetectText(ctx context.Context, text string) (capability.Detection, error) {
	s.store.Dispatch(DetectStarted{})
	d, err := s.detect(ctx, text)
	if err != nil {
		s.store.Dispatch(DetectFailed{Err: err})
		return capability.Detection{}, err
	}
	s.store.Dispatch(Detected{Language: d.Language, Confidence: d.Confidence})
	return d, nil
}

func (s *Session) detect(ctx context.Context, text string) (capability.Detection, error) {
	if s.det == nil {
		return capability.Detection{}, manager.ErrDetectionFailed("no language detector available", nil)
	}
	results, err := s.det.detect(ctx, text)
	if err != nil {
		return capability.Detection{}, manager.ErrDetectionFailed("", err)
	}
	if len(results) == 0 {
		return capability.Detection{}, manager.ErrDetectionFailed("no language candidates", nil)
	}
	best := results[0]
	best.Language = capability.PrimaryTag(best.Language)
	if best.Language == "" {
		return capability.Detection{}, manager.ErrDetectionFailed("empty language tag", nil)
	}
	return best, nil
}

// Close tears the session down: the translator handle and the detector are
// released, in-flight work is canceled and discarded.
func (s *Session) Close() error {
	// no form updates once teardown starts
	s.store.Freeze()
	err := s.mgr.Close()
	if s.det != nil {
		s.det.close()
	}
	return err
}
