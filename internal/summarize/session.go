// Package summarize is the summarization feature: form state, user intents
// and the capability session behind them.
package summarize

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
	Publisher manager.EventPublisher
	Logger    *zerolog.Logger

	HistoryCap    int
	CreateTimeout time.Duration
	InvokeTimeout time.Duration
	DrainTimeout  time.Duration
	// Config is the initial form config; zero means DefaultConfig.
	Config Config
}

// Session is one summarization feature session.
type Session struct {
	mgr       *manager.Manager[Config]
	store     *store.Store[State, Action]
	supported bool
	log       zerolog.Logger
}

// New starts a session, resolving capability presence once.
func New(opts Options) *Session {
	cfg := opts.Config
	if cfg == (Config{}) {
		cfg = DefaultConfig()
	}
	s := &Session{store: store.New(InitialState(cfg), Reduce), log: zerolog.Nop()}
	if opts.Logger != nil {
		s.log = opts.Logger.With().Str("feature", capability.NameSummarizer).Logger()
	}
	s.supported = opts.Registry != nil && opts.Registry.Has(capability.NameSummarizer) && opts.Provider != nil
	provider := opts.Provider
	if !s.supported {
		provider = nil
	}
	s.mgr = manager.NewWithConfig(manager.ManagerConfig[Config]{
		Name:          capability.NameSummarizer,
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
		s.log.Warn().Msg("summarizer capability not available")
		s.store.Dispatch(Unsupported{Err: manager.ErrUnsupportedEnvironment(capability.NameSummarizer)})
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

func (s *Session) SetType(t capability.SummaryType) { s.store.Dispatch(SetType{Type: t}) }
func (s *Session) SetFormat(f capability.SummaryFormat) { s.store.Dispatch(SetFormat{Format: f}) }
func (s *Session) SetLength(l capability.SummaryLength) { s.store.Dispatch(SetLength{Length: l}) }
func (s *Session) SetContext(text string) { s.store.Dispatch(SetContext{Text: text}) }
func (s *Session) SetInput(text string) { s.store.Dispatch(SetInput{Text: text}) }
func (s *Session) Clear() { s.store.Dispatch(Clear{}) }
func (s *Session) LoadSample(i int) { s.store.Dispatch(LoadSample{Index: i}) }
func (s *Session) ToggleStreaming() { s.store.Dispatch(ToggleStreaming{}) }
func (s *Session) DismissNotice() { s.store.Dispatch(DismissNotice{}) }
func (s *Session) Preload(cfg Config) string { return s.mgr.Preload(cfg) }

// Submit summarizes the form input with the form config.
func (s *Session) Submit(ctx context.Context) (manager.Result, error) {
	st := s.store.State()
	return s.Summarize(ctx, st.Config, st.Input, manager.ParseMode(st.Streaming), nil)
}

// Summarize runs text through a summarizer configured with cfg. The shared
// context is part of the config and is also sent with the call.
func (s *Session) Summarize(ctx context.Context, cfg Config, text string, mode manager.Mode, onPartial func(string)) (manager.Result, error) {
	if !s.supported {
		err := manager.ErrUnsupportedEnvironment(capability.NameSummarizer)
		s.store.Dispatch(Failed{Err: err})
		return manager.Result{}, err
	}
	s.store.Dispatch(Started{})
	res, err := s.mgr.Invoke(ctx, cfg, text, manager.InvokeOptions{
		Mode:    mode,
		Context: cfg.SharedContext,
		OnPartial: func(p string) {
			s.store.Dispatch(Partial{Text: p})
			if onPartial != nil {
				onPartial(p)
			}
		},
	})
	if err != nil {
		s.log.Debug().Err(err).Msg("summarization failed")
		s.store.Dispatch(Failed{Err: err})
		return manager.Result{}, err
	}
	s.store.Dispatch(Succeeded{Result: res, Config: cfg, History: s.mgr.History().Entries()})
	return res, nil
}

// Close releases the summarizer handle and discards in-flight work.
func (s *Session) Close() error {
	// no form updates once teardown starts
	s.store.Freeze()
	return s.mgr.Close()
}
