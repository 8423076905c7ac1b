//go:build llama

package llama

import (
	"context"
	"errors"
	"strings"

	llama "github.com/go-skynet/go-llama.cpp"
)

// llamaBuilt indicates this binary was compiled with real llama support.
var llamaBuilt = true

type model struct {
	m    *llama.LLama
	opts Options
}

func load(path string, opts Options) (runner, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("model path is empty")
	}
	m, err := llama.New(path, llama.SetContext(opts.ContextSize))
	if err != nil {
		return nil, err
	}
	return &model{m: m, opts: opts}, nil
}

func (r *model) predict(ctx context.Context, text string, onToken func(string) bool) (string, error) {
	r.m.SetTokenCallback(func(tok string) bool {
		select {
		case <-ctx.Done():
			return false
		default:
		}
		if onToken == nil {
			return true
		}
		return onToken(tok)
	})
	out, err := r.m.Predict(text,
		llama.SetTokens(r.opts.MaxTokens),
		llama.SetThreads(r.opts.Threads),
		llama.SetTopP(llama.DefaultOptions.TopP),
		llama.SetTopK(llama.DefaultOptions.TopK),
		llama.SetTemperature(0.2),
		llama.SetPenalty(llama.DefaultOptions.Penalty),
		llama.SetStopWords("### User:", "### System:"),
	)
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	return out, err
}

func (r *model) free() { r.m.Free() }
