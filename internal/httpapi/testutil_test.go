package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lingod/pkg/types"
)

// fakeService answers from canned values. partials are passed to onPartial
// before err (or the response) is returned.
type fakeService struct {
	partials []string
	err      error
	ready    bool

	gotTranslate types.TranslateRequest
	gotSummarize types.SummarizeRequest
	gotReset     string
	history      types.HistoryResponse
	status       types.StatusResponse
}

func (f *fakeService) Translate(ctx context.Context, req types.TranslateRequest, onPartial func(string)) (types.TranslateResponse, error) {
	f.gotTranslate = req
	f.emit(onPartial)
	if f.err != nil {
		return types.TranslateResponse{}, f.err
	}
	return types.TranslateResponse{ID: "t1", Source: req.Source, Target: req.Target, Translation: "hola"}, nil
}

func (f *fakeService) Summarize(ctx context.Context, req types.SummarizeRequest, onPartial func(string)) (types.SummarizeResponse, error) {
	f.gotSummarize = req
	f.emit(onPartial)
	if f.err != nil {
		return types.SummarizeResponse{}, f.err
	}
	return types.SummarizeResponse{ID: "s1", Type: "tl;dr", Format: "plain-text", Length: "short", Summary: "short"}, nil
}

func (f *fakeService) emit(onPartial func(string)) {
	if onPartial == nil {
		return
	}
	for _, p := range f.partials {
		onPartial(p)
	}
}

func (f *fakeService) Detect(ctx context.Context, text string) (types.DetectResponse, error) {
	if f.err != nil {
		return types.DetectResponse{}, f.err
	}
	return types.DetectResponse{Language: "fr", Confidence: 0.9}, nil
}

func (f *fakeService) History(feature string) (types.HistoryResponse, error) {
	if f.err != nil {
		return types.HistoryResponse{}, f.err
	}
	h := f.history
	h.Feature = feature
	return h, nil
}

func (f *fakeService) Reset(ctx context.Context, feature string) error {
	f.gotReset = feature
	return f.err
}

func (f *fakeService) Status(ctx context.Context) types.StatusResponse { return f.status }

func (f *fakeService) Ready(ctx context.Context) bool { return f.ready }

type statusErr struct {
	msg  string
	code int
}

func (e statusErr) Error() string   { return e.msg }
func (e statusErr) StatusCode() int { return e.code }

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}
