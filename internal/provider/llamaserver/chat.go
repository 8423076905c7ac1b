package llamaserver

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the payload for /v1/chat/completions.
type chatRequest struct {
	Model       string        `json:"model,omitempty"`
	Messages    []chatMessage `json:"messages"`
	Stream      bool          `json:"stream"`
	Temperature float32       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// streamChunk is the minimal subset of an OpenAI streaming chunk.
type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func (b *Backend) post(ctx context.Context, msgs []chatMessage, stream bool) (*http.Response, error) {
	body, err := json.Marshal(chatRequest{Model: b.model, Messages: msgs, Stream: stream})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if stream {
		req.Header.Set("Accept", "text/event-stream")
	}
	b.authorize(req)
	resp, err := b.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("llama server http error: %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}
	return resp, nil
}

func (b *Backend) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.reqTimeout > 0 {
		return context.WithTimeout(ctx, b.reqTimeout)
	}
	return context.WithCancel(ctx)
}

// complete performs a non-streaming chat completion.
func (b *Backend) complete(ctx context.Context, msgs []chatMessage) (string, error) {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()
	resp, err := b.post(ctx, msgs, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode completion: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("llama server returned no choices")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

// stream performs a streaming chat completion, calling emit per fragment.
// Servers answer with Server-Sent Events ("data: {...}") or, for some
// builds, raw JSON objects per line.
func (b *Backend) stream(ctx context.Context, msgs []chatMessage, emit func(string) error) error {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()
	resp, err := b.post(ctx, msgs, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	r := bufio.NewReader(resp.Body)
	for {
		line, err := r.ReadString('\n')
		if data, ok := sseData(line); ok {
			if data == "[DONE]" {
				return nil
			}
			frag, known := parseFragment(data)
			if !known {
				b.log.Debug().Str("line", data).Msg("unknown stream line")
			} else if frag != "" {
				if err := emit(frag); err != nil {
					return err
				}
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.log.Warn().Err(err).Msg("stream read error")
			return err
		}
	}
}

// sseData extracts the payload of a "data:" line; bare JSON lines are
// returned as is. Blank lines, comments and other SSE fields are skipped.
func sseData(line string) (string, bool) {
	line = strings.TrimSpace(line)
	switch {
	case line == "" || strings.HasPrefix(line, ":"):
		return "", false
	case len(line) >= 5 && strings.EqualFold(line[:5], "data:"):
		return strings.TrimSpace(line[5:]), true
	case strings.HasPrefix(line, "{"):
		return line, true
	}
	return "", false
}

func parseFragment(data string) (string, bool) {
	var chunk streamChunk
	if err := json.Unmarshal([]byte(data), &chunk); err == nil && len(chunk.Choices) > 0 {
		return chunk.Choices[0].Delta.Content, true
	}
	var generic map[string]any
	if err := json.Unmarshal([]byte(data), &generic); err == nil {
		if tok, ok := generic["content"].(string); ok {
			return tok, true
		}
	}
	return "", false
}
