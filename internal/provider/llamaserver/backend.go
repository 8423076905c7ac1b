// Package llamaserver backs the capabilities with a running llama.cpp server
// speaking the OpenAI-compatible chat API. An optional model file is fetched
// into a local cache before the first instance is created; its transfer is
// reported as download progress.
package llamaserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"lingod/internal/capability"
	"lingod/internal/provider/prompt"
)

// Options configure a Backend.
type Options struct {
	BaseURL string
	APIKey  string
	// Model is sent as the "model" field; servers with a single model
	// ignore it.
	Model string
	// ModelURL, when set, is downloaded into CacheDir before first use.
	ModelURL       string
	CacheDir       string
	RequestTimeout time.Duration
	ConnectTimeout time.Duration
	Logger         *zerolog.Logger
	HTTPClient     *http.Client
}

// Backend is shared by the translator, summarizer and detector providers.
type Backend struct {
	baseURL    string
	apiKey     string
	model      string
	modelURL   string
	cacheDir   string
	reqTimeout time.Duration
	httpClient *http.Client
	log        zerolog.Logger

	// serializes model downloads
	dlMu sync.Mutex
}

// New constructs a Backend.
func New(opts Options) *Backend {
	cli := opts.HTTPClient
	if cli == nil {
		connect := opts.ConnectTimeout
		if connect <= 0 {
			connect = 5 * time.Second
		}
		tr := &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   connect,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		}
		// deadlines come from request contexts
		cli = &http.Client{Transport: tr}
	}
	b := &Backend{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		model:      opts.Model,
		modelURL:   opts.ModelURL,
		cacheDir:   opts.CacheDir,
		reqTimeout: opts.RequestTimeout,
		httpClient: cli,
		log:        zerolog.Nop(),
	}
	if opts.Logger != nil {
		b.log = opts.Logger.With().Str("provider", "llama-server").Logger()
	}
	return b
}

// Health probes GET /health.
func (b *Backend) Health(ctx context.Context) error {
	if b.baseURL == "" {
		return errors.New("llama server base url is empty")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	b.authorize(req)
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.New("llama server unhealthy: " + resp.Status)
	}
	return nil
}

func (b *Backend) authorize(req *http.Request) {
	if b.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+b.apiKey)
	}
}

func (b *Backend) availability(ctx context.Context) (capability.Availability, error) {
	if err := b.Health(ctx); err != nil {
		return capability.AvailabilityUnavailable, nil
	}
	if b.modelURL != "" && !b.modelCached() {
		return capability.AvailabilityDownloadable, nil
	}
	return capability.AvailabilityReadily, nil
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
	return p.b.availability(ctx)
}

func (p *provider[C]) Create(ctx context.Context, cfg C, opts capability.CreateOptions) (capability.Instance, error) {
	mon := capability.NewMonitor()
	if opts.Monitor != nil {
		opts.Monitor(mon)
	}
	if err := p.b.fetchModel(ctx, mon); err != nil {
		return nil, err
	}
	if err := p.b.Health(ctx); err != nil {
		return nil, err
	}
	return &session{b: p.b, system: p.system(cfg)}, nil
}

// session holds the per-instance system prompt. The server keeps no state
// for it, so Destroy only marks it unusable.
type session struct {
	b      *Backend
	system string
	mu     sync.Mutex
	closed bool
}

var errDestroyed = errors.New("llama server session destroyed")

func (s *session) usable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed
}

func (s *session) Prompt(ctx context.Context, input string, opts capability.PromptOptions) (string, error) {
	if !s.usable() {
		return "", errDestroyed
	}
	return s.b.complete(ctx, s.messages(input, opts))
}

func (s *session) PromptStreaming(ctx context.Context, input string, opts capability.PromptOptions) (capability.Stream, error) {
	if !s.usable() {
		return nil, errDestroyed
	}
	msgs := s.messages(input, opts)
	return capability.NewPushStream(ctx, func(ctx context.Context, emit func(string) error) error {
		return s.b.stream(ctx, msgs, emit)
	}), nil
}

func (s *session) Destroy() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func (s *session) messages(input string, opts capability.PromptOptions) []chatMessage {
	msgs := []chatMessage{{Role: "system", Content: s.system}}
	if c := strings.TrimSpace(opts.Context); c != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: "Context: " + c})
	}
	return append(msgs, chatMessage{Role: "user", Content: input})
}
