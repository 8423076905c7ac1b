package httpapi

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lingod/internal/capability"
	"lingod/internal/manager"
	"lingod/pkg/types"
)

func decodeChunks(t *testing.T, body []byte) []types.PartialChunk {
	t.Helper()
	var out []types.PartialChunk
	sc := bufio.NewScanner(bytes.NewReader(body))
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var c types.PartialChunk
		if err := json.Unmarshal(line, &c); err != nil {
			t.Fatalf("bad ndjson line %q: %v", line, err)
		}
		out = append(out, c)
	}
	return out
}

func TestTranslate_SingleShot(t *testing.T) {
	svc := &fakeService{}
	w := postJSON(t, NewMux(svc), "/translate", `{"text":"hello","source":"en","target":"es"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("content-type=%s", ct)
	}
	var resp types.TranslateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if resp.Translation != "hola" || resp.ID != "t1" {
		t.Fatalf("unexpected body: %+v", resp)
	}
	if svc.gotTranslate.Text != "hello" || svc.gotTranslate.Stream {
		t.Fatalf("request not forwarded: %+v", svc.gotTranslate)
	}
}

func TestTranslate_StreamNDJSON(t *testing.T) {
	svc := &fakeService{partials: []string{"ho", "hola"}}
	w := postJSON(t, NewMux(svc), "/translate", `{"text":"hello","stream":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/x-ndjson" {
		t.Fatalf("content-type=%s", ct)
	}
	chunks := decodeChunks(t, w.Body.Bytes())
	if len(chunks) != 3 {
		t.Fatalf("want 3 lines, got %d: %s", len(chunks), w.Body.String())
	}
	if chunks[0].Partial != "ho" || chunks[1].Partial != "hola" || chunks[0].Done {
		t.Fatalf("partials: %+v", chunks)
	}
	last := chunks[2]
	if !last.Done || last.Final != "hola" || last.ID != "t1" || last.Error != "" {
		t.Fatalf("final line: %+v", last)
	}
}

func TestSummarize_ForwardsOptions(t *testing.T) {
	svc := &fakeService{}
	w := postJSON(t, NewMux(svc), "/summarize", `{"text":"long text","type":"key-points","format":"markdown","length":"long","context":"for kids"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	got := svc.gotSummarize
	if got.Type != "key-points" || got.Format != "markdown" || got.Length != "long" || got.Context != "for kids" {
		t.Fatalf("request not forwarded: %+v", got)
	}
	var resp types.SummarizeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Summary != "short" {
		t.Fatalf("body=%s err=%v", w.Body.String(), err)
	}
}

func TestStream_ErrorBeforeFirstChunkIsJSON(t *testing.T) {
	svc := &fakeService{err: manager.ErrUnsupportedEnvironment(capability.NameSummarizer)}
	w := postJSON(t, NewMux(svc), "/summarize", `{"text":"x","stream":true}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", w.Code)
	}
	var er types.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil || er.Code != http.StatusServiceUnavailable {
		t.Fatalf("body=%s err=%v", w.Body.String(), err)
	}
}

func TestStream_ErrorAfterChunkEndsStream(t *testing.T) {
	svc := &fakeService{
		partials: []string{"par"},
		err:      manager.ErrInvocationFailed(capability.NameTranslator, manager.ModeStreaming, errors.New("host dropped")),
	}
	w := postJSON(t, NewMux(svc), "/translate", `{"text":"x","stream":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("stream already started, status=%d", w.Code)
	}
	chunks := decodeChunks(t, w.Body.Bytes())
	if len(chunks) != 2 {
		t.Fatalf("lines=%d body=%s", len(chunks), w.Body.String())
	}
	last := chunks[1]
	if !last.Done || last.Code != http.StatusBadGateway || !strings.Contains(last.Error, "host dropped") {
		t.Fatalf("error line: %+v", last)
	}
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"empty", manager.ErrEmptyInput(capability.NameTranslator), http.StatusBadRequest},
		{"unsupported", manager.ErrUnsupportedEnvironment(capability.NameTranslator), http.StatusServiceUnavailable},
		{"creation", manager.ErrCreationFailed(capability.NameTranslator, errors.New("no model")), http.StatusBadGateway},
		{"invocation", manager.ErrInvocationFailed(capability.NameTranslator, manager.ModeSingleShot, errors.New("boom")), http.StatusBadGateway},
		{"closed", manager.ErrSessionClosed(capability.NameTranslator), http.StatusServiceUnavailable},
		{"superseded", manager.ErrSuperseded(capability.NameTranslator), http.StatusConflict},
		{"http error", statusErr{msg: "nope", code: http.StatusNotFound}, http.StatusNotFound},
		{"other", errors.New("weird"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := postJSON(t, NewMux(&fakeService{err: tc.err}), "/translate", `{"text":"x"}`)
			if w.Code != tc.want {
				t.Fatalf("status=%d want %d body=%s", w.Code, tc.want, w.Body.String())
			}
			var er types.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil || er.Code != tc.want || er.Error == "" {
				t.Fatalf("body=%s err=%v", w.Body.String(), err)
			}
		})
	}
}

func TestDetect(t *testing.T) {
	w := postJSON(t, NewMux(&fakeService{}), "/detect", `{"text":"bonjour"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var resp types.DetectResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Language != "fr" {
		t.Fatalf("body=%s err=%v", w.Body.String(), err)
	}

	w = postJSON(t, NewMux(&fakeService{err: manager.ErrDetectionFailed("no candidates", nil)}), "/detect", `{"text":"???"}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestRequestValidation(t *testing.T) {
	h := NewMux(&fakeService{})

	req := httptest.NewRequest(http.MethodPost, "/translate", strings.NewReader(`{"text":"x"}`))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("content-type check: status=%d", w.Code)
	}

	if w := postJSON(t, h, "/translate", `{"text":`); w.Code != http.StatusBadRequest {
		t.Fatalf("invalid json: status=%d", w.Code)
	}

	SetMaxBodyBytes(16)
	defer SetMaxBodyBytes(0)
	if w := postJSON(t, h, "/summarize", `{"text":"`+strings.Repeat("a", 64)+`"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("oversize body: status=%d", w.Code)
	}
}

func TestHistoryAndReset(t *testing.T) {
	svc := &fakeService{history: types.HistoryResponse{Entries: []types.HistoryEntry{{ID: "a", Input: "in", Output: "out"}}}}
	h := NewMux(svc)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/history/translator", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var hr types.HistoryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &hr); err != nil || hr.Feature != "translator" || len(hr.Entries) != 1 {
		t.Fatalf("body=%s err=%v", w.Body.String(), err)
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/session/summarizer", nil))
	if w.Code != http.StatusNoContent || svc.gotReset != "summarizer" {
		t.Fatalf("reset status=%d feature=%q", w.Code, svc.gotReset)
	}

	svc.err = statusErr{msg: "unknown feature", code: http.StatusNotFound}
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/history/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown feature status=%d", w.Code)
	}
}

func TestStatusHandler(t *testing.T) {
	svc := &fakeService{status: types.StatusResponse{DetectorAvailable: true, Features: []types.FeatureStatus{{Feature: "Translator", State: "ready"}}}}
	w := httptest.NewRecorder()
	NewMux(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/status", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var body types.StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if !body.DetectorAvailable || len(body.Features) != 1 || body.Features[0].State != "ready" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestLanguages(t *testing.T) {
	w := httptest.NewRecorder()
	NewMux(&fakeService{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/languages", nil))
	var langs []types.Language
	if err := json.Unmarshal(w.Body.Bytes(), &langs); err != nil || len(langs) == 0 {
		t.Fatalf("body=%s err=%v", w.Body.String(), err)
	}
}

func TestHealthAndReady(t *testing.T) {
	svc := &fakeService{}
	h := NewMux(svc)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("healthz status=%d body=%q", w.Code, w.Body.String())
	}
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusServiceUnavailable || !strings.Contains(w.Body.String(), "loading") {
		t.Fatalf("readyz status=%d body=%q", w.Code, w.Body.String())
	}
	svc.ready = true
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("readyz status=%d", w.Code)
	}
}

func TestCORS_Preflight(t *testing.T) {
	SetCORSOptions(true, []string{"http://localhost:3000"}, nil, nil)
	defer SetCORSOptions(false, nil, nil, nil)
	h := NewMux(&fakeService{})
	req := httptest.NewRequest(http.MethodOptions, "/translate", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("allow-origin=%q status=%d", got, w.Code)
	}
}
