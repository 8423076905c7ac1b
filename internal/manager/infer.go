package manager

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"lingod/internal/capability"
)

// InvokeOptions configures one invocation.
type InvokeOptions struct {
	Mode Mode
	// Context is forwarded to the capability as per-call shared context.
	Context string
	// OnPartial receives the accumulated text after every fragment in
	// streaming mode. The next fragment is not pulled until it returns.
	OnPartial func(partial string)
}

// Invoke ensures a handle for cfg and runs input through it. Whitespace-only
// input is rejected before any host call. On success the result is recorded
// in the history ledger; on failure nothing is recorded and the handle is
// kept for the next attempt.
func (m *Manager[C]) Invoke(ctx context.Context, cfg C, input string, opts InvokeOptions) (Result, error) {
	if opts.Mode == "" {
		opts.Mode = ModeSingleShot
	}
	if strings.TrimSpace(input) == "" {
		m.emit(EventInvokeRejected, map[string]any{"reason": "empty_input"})
		return Result{}, ErrEmptyInput(m.name)
	}
	h, err := m.Ensure(ctx, cfg)
	if err != nil {
		return Result{}, err
	}
	// Admission: single in-flight invocation per handle
	release, err := h.begin(ctx)
	if err != nil {
		if err == errHandleReleased {
			if m.isClosed() {
				return Result{}, ErrSessionClosed(m.name)
			}
			return Result{}, ErrSuperseded(m.name)
		}
		return Result{}, err
	}
	defer release()

	id := uuid.NewString()
	startTs := time.Now()
	m.log.Debug().Str("event", EventInvokeStart).Str("id", id).Str("mode", string(opts.Mode)).Msg("invocation start")
	m.emit(EventInvokeStart, map[string]any{"id": id, "mode": string(opts.Mode), "handle": h.id})

	ictx, cancel := m.bind(ctx, m.invokeTimeout)
	defer cancel()
	popts := capability.PromptOptions{Context: opts.Context}
	var out string
	switch opts.Mode {
	case ModeStreaming:
		out, err = m.drain(ictx, h, id, input, popts, opts.OnPartial)
	default:
		out, err = m.promptOnce(ictx, h, input, popts)
	}

	if m.isClosed() {
		return Result{}, ErrSessionClosed(m.name)
	}
	dur := int(time.Since(startTs) / time.Millisecond)
	if err != nil {
		m.mu.Lock()
		m.err = err.Error()
		m.mu.Unlock()
		m.log.Warn().Err(err).Str("event", EventInvokeFailed).Str("id", id).Msg("invocation failed")
		m.emit(EventInvokeFailed, map[string]any{"id": id, "error": err.Error(), "dur_ms": dur})
		m.notify()
		return Result{}, ErrInvocationFailed(m.name, opts.Mode, err)
	}

	m.history.Record(HistoryEntry[C]{ID: id, Config: cfg, Input: input, Output: out, CompletedAt: time.Now()})
	m.mu.Lock()
	m.invocations++
	m.err = ""
	m.mu.Unlock()
	m.log.Debug().Str("event", EventInvokeDone).Str("id", id).Int("dur_ms", dur).Msg("invocation done")
	m.emit(EventInvokeDone, map[string]any{"id": id, "mode": string(opts.Mode), "chars": len(out), "dur_ms": dur})
	m.notify()
	return Result{ID: id, Final: out, Partial: out}, nil
}

// promptOnce performs the single-shot call, recovering provider panics.
func (m *Manager[C]) promptOnce(ctx context.Context, h *Handle[C], input string, opts capability.PromptOptions) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = "", fmt.Errorf("provider panic: %v", r)
		}
	}()
	return h.instance.Prompt(ctx, input, opts)
}

// drain pulls fragments strictly one after another, publishing the
// accumulated buffer after each.
func (m *Manager[C]) drain(ctx context.Context, h *Handle[C], id, input string, opts capability.PromptOptions, onPartial func(string)) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = "", fmt.Errorf("provider panic: %v", r)
		}
	}()
	stream, err := h.instance.PromptStreaming(ctx, input, opts)
	if err != nil {
		return "", err
	}
	if stream == nil {
		return "", fmt.Errorf("provider returned no stream")
	}
	defer func() { _ = stream.Close() }()

	var b strings.Builder
	n := 0
	for {
		frag, ok, err := stream.Next(ctx)
		if err != nil {
			return "", err
		}
		if !ok {
			break
		}
		b.WriteString(frag)
		n++
		if m.isClosed() {
			return "", ErrSessionClosed(m.name)
		}
		acc := b.String()
		publishPartial(onPartial, acc)
		m.emit(EventInvokePartial, map[string]any{"id": id, "fragments": n, "chars": len(acc)})
	}
	return b.String(), nil
}

// publishPartial delivers a partial result; a panicking consumer does not
// abort the invocation.
func publishPartial(fn func(string), partial string) {
	if fn == nil {
		return
	}
	defer func() { _ = recover() }()
	fn(partial)
}
