package e2e

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lingod/internal/app"
	"lingod/internal/config"
	"lingod/internal/httpapi"
	"lingod/internal/provider/mock"
	"lingod/pkg/types"
)

// newServer starts the full HTTP stack over the mock host.
func newServer(t *testing.T, cfg config.Config, env *mock.Environment) (*httptest.Server, *app.App) {
	t.Helper()
	return newServerOpts(t, app.Options{Config: cfg, Mock: env})
}

func newServerOpts(t *testing.T, opts app.Options) (*httptest.Server, *app.App) {
	t.Helper()
	opts.Config.Provider.Kind = config.ProviderMock
	opts.Publisher = httpapi.EventMetrics()
	a, err := app.New(opts)
	if err != nil {
		t.Fatalf("app: %v", err)
	}
	srv := httptest.NewServer(httpapi.NewMux(a))
	t.Cleanup(func() {
		srv.Close()
		_ = a.Close()
	})
	return srv, a
}

func httpPostJSON(t *testing.T, url string, body any) (*http.Response, []byte) {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, data
}

func httpGetJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer resp.Body.Close()
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func featureStatus(t *testing.T, base, feature string) types.FeatureStatus {
	t.Helper()
	var st types.StatusResponse
	if code := httpGetJSON(t, base+"/status", &st); code != http.StatusOK {
		t.Fatalf("/status code=%d", code)
	}
	for _, f := range st.Features {
		if f.Feature == feature {
			return f
		}
	}
	t.Fatalf("feature %s missing from status: %+v", feature, st)
	return types.FeatureStatus{}
}

func ndjsonChunks(t *testing.T, body []byte) []types.PartialChunk {
	t.Helper()
	var out []types.PartialChunk
	sc := bufio.NewScanner(bytes.NewReader(body))
	for sc.Scan() {
		if len(sc.Bytes()) == 0 {
			continue
		}
		var c types.PartialChunk
		if err := json.Unmarshal(sc.Bytes(), &c); err != nil {
			t.Fatalf("ndjson line %q: %v", sc.Text(), err)
		}
		out = append(out, c)
	}
	return out
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
