package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"lingod/internal/app"
	"lingod/internal/capability"
	"lingod/internal/config"
	"lingod/internal/provider/mock"
	"lingod/internal/registry"
	"lingod/pkg/types"
)

func TestE2E_TranslateReusesAndReplaces(t *testing.T) {
	env := mock.New(mock.Options{DownloadSteps: 3})
	srv, _ := newServer(t, config.Config{}, env)

	for _, text := range []string{"hello", "good morning"} {
		resp, body := httpPostJSON(t, srv.URL+"/translate", types.TranslateRequest{Text: text, Source: "en", Target: "es"})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status=%d body=%s", resp.StatusCode, body)
		}
	}
	st := featureStatus(t, srv.URL, capability.NameTranslator)
	if st.CreationsTotal != 1 || st.InvocationsTotal != 2 || !st.ModelReady || st.State != "ready" {
		t.Fatalf("same config should reuse one instance: %+v", st)
	}

	resp, body := httpPostJSON(t, srv.URL+"/translate", types.TranslateRequest{Text: "hello", Target: "fr"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d body=%s", resp.StatusCode, body)
	}
	var tr types.TranslateResponse
	if err := json.Unmarshal(body, &tr); err != nil || tr.Translation != "[en->fr] hello" {
		t.Fatalf("body=%s err=%v", body, err)
	}
	st = featureStatus(t, srv.URL, capability.NameTranslator)
	if st.CreationsTotal != 2 || st.Config["target"] != "fr" {
		t.Fatalf("config change should replace the instance: %+v", st)
	}
	// translator + detector
	waitFor(t, "old translator released", func() bool { return env.Live() == 2 })
}

func TestE2E_StreamingMatchesSingleShot(t *testing.T) {
	srv, _ := newServer(t, config.Config{}, mock.New(mock.Options{}))
	req := types.SummarizeRequest{
		Text:   "Channels carry values. Select waits on many. Close signals completion.",
		Type:   "key-points",
		Format: "markdown",
		Length: "long",
	}
	_, body := httpPostJSON(t, srv.URL+"/summarize", req)
	var single types.SummarizeResponse
	if err := json.Unmarshal(body, &single); err != nil {
		t.Fatalf("decode: %v (%s)", err, body)
	}

	req.Stream = true
	resp, body := httpPostJSON(t, srv.URL+"/summarize", req)
	if ct := resp.Header.Get("Content-Type"); ct != "application/x-ndjson" {
		t.Fatalf("content-type=%s", ct)
	}
	chunks := ndjsonChunks(t, body)
	if len(chunks) < 3 {
		t.Fatalf("expected several partial lines, got %d", len(chunks))
	}
	last := chunks[len(chunks)-1]
	if !last.Done || last.Final != single.Summary {
		t.Fatalf("streamed final %q != single-shot %q", last.Final, single.Summary)
	}
	prev := ""
	for _, c := range chunks[:len(chunks)-1] {
		if !strings.HasPrefix(c.Partial, prev) {
			t.Fatalf("partials must grow: %q then %q", prev, c.Partial)
		}
		prev = c.Partial
	}
	if st := featureStatus(t, srv.URL, capability.NameSummarizer); st.CreationsTotal != 1 {
		t.Fatalf("mode must not affect reuse: %+v", st)
	}
}

func TestE2E_EvictedModelDownloadsAgain(t *testing.T) {
	env := mock.New(mock.Options{DownloadSteps: 2})
	srv, _ := newServer(t, config.Config{}, env)
	httpPostJSON(t, srv.URL+"/translate", types.TranslateRequest{Text: "hi"})
	if st := featureStatus(t, srv.URL, capability.NameTranslator); st.Availability != string(capability.AvailabilityReadily) {
		t.Fatalf("warm availability %q", st.Availability)
	}

	env.Evict()
	if st := featureStatus(t, srv.URL, capability.NameTranslator); st.Availability != string(capability.AvailabilityAfterDownload) {
		t.Fatalf("availability after evict %q", st.Availability)
	}
	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/session/translate", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	resp.Body.Close()
	resp, body := httpPostJSON(t, srv.URL+"/translate", types.TranslateRequest{Text: "hi"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d body=%s", resp.StatusCode, body)
	}
	st := featureStatus(t, srv.URL, capability.NameTranslator)
	if st.Availability != string(capability.AvailabilityReadily) || st.DownloadPercent != 100 || st.CreationsTotal != 2 {
		t.Fatalf("status after cold recreate %+v", st)
	}
}

func TestE2E_HistoryNewestFirstAndCapped(t *testing.T) {
	srv, _ := newServer(t, config.Config{HistoryCap: 2}, mock.New(mock.Options{}))
	for _, text := range []string{"one", "two", "three"} {
		if resp, body := httpPostJSON(t, srv.URL+"/translate", types.TranslateRequest{Text: text}); resp.StatusCode != http.StatusOK {
			t.Fatalf("status=%d body=%s", resp.StatusCode, body)
		}
	}
	var h types.HistoryResponse
	if code := httpGetJSON(t, srv.URL+"/history/translator", &h); code != http.StatusOK {
		t.Fatalf("history code=%d", code)
	}
	if len(h.Entries) != 2 || h.Entries[0].Input != "three" || h.Entries[1].Input != "two" {
		t.Fatalf("entries=%+v", h.Entries)
	}
	if h.Entries[0].Config["target"] != "es" || h.Entries[0].CompletedAtMs == 0 {
		t.Fatalf("entry config/time missing: %+v", h.Entries[0])
	}
	if code := httpGetJSON(t, srv.URL+"/history/nope", nil); code != http.StatusNotFound {
		t.Fatalf("unknown feature code=%d", code)
	}
}

func TestE2E_EmptyInputRejected(t *testing.T) {
	srv, _ := newServer(t, config.Config{}, mock.New(mock.Options{}))
	resp, body := httpPostJSON(t, srv.URL+"/translate", types.TranslateRequest{Text: "   "})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", resp.StatusCode, body)
	}
	if st := featureStatus(t, srv.URL, capability.NameTranslator); st.CreationsTotal != 0 {
		t.Fatalf("empty input must not create an instance: %+v", st)
	}
}

func TestE2E_CreationFailureThenRecovery(t *testing.T) {
	env := mock.New(mock.Options{})
	srv, _ := newServer(t, config.Config{}, env)
	// let the detector come up first so it does not consume the failure
	waitFor(t, "detector", func() bool { return env.Live() == 1 })
	env.FailNextCreate(errBoom)
	resp, body := httpPostJSON(t, srv.URL+"/summarize", types.SummarizeRequest{Text: "A sentence."})
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status=%d body=%s", resp.StatusCode, body)
	}
	resp, body = httpPostJSON(t, srv.URL+"/summarize", types.SummarizeRequest{Text: "A sentence."})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("retry status=%d body=%s", resp.StatusCode, body)
	}
}

func TestE2E_ResetCreatesFreshInstance(t *testing.T) {
	srv, _ := newServer(t, config.Config{}, mock.New(mock.Options{}))
	httpPostJSON(t, srv.URL+"/translate", types.TranslateRequest{Text: "hi"})

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/session/translator", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("reset status=%d", resp.StatusCode)
	}
	if st := featureStatus(t, srv.URL, capability.NameTranslator); st.State != "idle" {
		t.Fatalf("state after reset: %+v", st)
	}
	httpPostJSON(t, srv.URL+"/translate", types.TranslateRequest{Text: "hi"})
	if st := featureStatus(t, srv.URL, capability.NameTranslator); st.CreationsTotal != 2 {
		t.Fatalf("expected a fresh creation: %+v", st)
	}
}

func TestE2E_DetectFeedsSourceLanguage(t *testing.T) {
	srv, _ := newServer(t, config.Config{}, mock.New(mock.Options{}))
	resp, body := httpPostJSON(t, srv.URL+"/detect", types.DetectRequest{Text: "bonjour je vous aime"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d body=%s", resp.StatusCode, body)
	}
	var d types.DetectResponse
	if err := json.Unmarshal(body, &d); err != nil || d.Language != "fr" {
		t.Fatalf("detect body=%s err=%v", body, err)
	}
	_, body = httpPostJSON(t, srv.URL+"/translate", types.TranslateRequest{Text: "merci"})
	var tr types.TranslateResponse
	if err := json.Unmarshal(body, &tr); err != nil || tr.Source != "fr" {
		t.Fatalf("translate after detect=%s err=%v", body, err)
	}

	resp, _ = httpPostJSON(t, srv.URL+"/detect", types.DetectRequest{Text: "12345"})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("undetectable text status=%d", resp.StatusCode)
	}
}

func TestE2E_ConcurrentConfigsNewestWins(t *testing.T) {
	env := mock.New(mock.Options{DownloadSteps: 4, StepDelay: 20 * time.Millisecond})
	srv, _ := newServer(t, config.Config{}, env)

	var wg sync.WaitGroup
	codes := make([]int, 2)
	targets := []string{"de", "it"}
	for i, tgt := range targets {
		wg.Add(1)
		go func(i int, tgt string) {
			defer wg.Done()
			b, _ := json.Marshal(types.TranslateRequest{Text: "hello", Target: tgt})
			resp, err := http.Post(srv.URL+"/translate", "application/json", bytes.NewReader(b))
			if err != nil {
				return
			}
			resp.Body.Close()
			codes[i] = resp.StatusCode
		}(i, tgt)
		time.Sleep(10 * time.Millisecond)
	}
	wg.Wait()
	if codes[1] != http.StatusOK {
		t.Fatalf("newest request must succeed, codes=%v", codes)
	}
	if codes[0] != http.StatusOK && codes[0] != http.StatusConflict {
		t.Fatalf("older request: unexpected code %d", codes[0])
	}
	st := featureStatus(t, srv.URL, capability.NameTranslator)
	if st.Config["target"] != "it" {
		t.Fatalf("live handle should carry the newest config: %+v", st)
	}
	// translator + detector
	waitFor(t, "old translator released", func() bool { return env.Live() == 2 })
}

func TestE2E_MetricsExposeSessionEvents(t *testing.T) {
	srv, _ := newServer(t, config.Config{}, mock.New(mock.Options{}))
	httpPostJSON(t, srv.URL+"/translate", types.TranslateRequest{Text: "hi"})
	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	out := string(raw)
	for _, want := range []string{"lingod_session_events_total", `event="invoke_done"`, "lingod_http_requests_total"} {
		if !strings.Contains(out, want) {
			t.Fatalf("metrics missing %s", want)
		}
	}
}

func TestE2E_UnsupportedFeature(t *testing.T) {
	reg := registry.New(capability.NameTranslator)
	srv, _ := newServerOpts(t, app.Options{Mock: mock.New(mock.Options{}), Registry: reg})

	resp, body := httpPostJSON(t, srv.URL+"/summarize", types.SummarizeRequest{Text: "One. Two."})
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status=%d body=%s", resp.StatusCode, body)
	}
	resp, body = httpPostJSON(t, srv.URL+"/translate", types.TranslateRequest{Text: "hi"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("translator should still work: status=%d body=%s", resp.StatusCode, body)
	}
	resp, _ = httpPostJSON(t, srv.URL+"/detect", types.DetectRequest{Text: "bonjour"})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("detect without detector status=%d", resp.StatusCode)
	}
	var st types.StatusResponse
	httpGetJSON(t, srv.URL+"/status", &st)
	if st.DetectorAvailable {
		t.Fatalf("detector should be reported missing")
	}
	if code := httpGetJSON(t, srv.URL+"/readyz", nil); code != http.StatusOK {
		t.Fatalf("one usable feature is enough for readiness, got %d", code)
	}
}

func TestE2E_ReadyGoesAwayAfterClose(t *testing.T) {
	srv, a := newServer(t, config.Config{}, mock.New(mock.Options{}))
	if code := httpGetJSON(t, srv.URL+"/readyz", nil); code != http.StatusOK {
		t.Fatalf("readyz=%d", code)
	}
	_ = a.Close()
	if code := httpGetJSON(t, srv.URL+"/readyz", nil); code != http.StatusServiceUnavailable {
		t.Fatalf("readyz after close=%d", code)
	}
	resp, _ := httpPostJSON(t, srv.URL+"/translate", types.TranslateRequest{Text: "hi"})
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("translate after close=%d", resp.StatusCode)
	}
}

type boomErr struct{}

func (boomErr) Error() string { return "model file corrupt" }

var errBoom = boomErr{}
