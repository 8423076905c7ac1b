// Package blackbox builds the lingod binary and drives it over HTTP.
package blackbox

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"testing"
	"time"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()
	return addr
}

func repoRoot(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}
	// <root>/tests/blackbox/blackbox_test.go
	return filepath.Dir(filepath.Dir(filepath.Dir(file)))
}

func buildBinary(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("builds the binary")
	}
	bin := filepath.Join(t.TempDir(), "lingod")
	cmd := exec.Command("go", "build", "-o", bin, "./cmd/lingod")
	cmd.Dir = repoRoot(t)
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0")
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("go build: %v\n%s", err, out)
	}
	return bin
}

type server struct {
	cmd  *exec.Cmd
	base string
}

func startServer(t *testing.T, bin string, extra ...string) *server {
	t.Helper()
	addr := freeAddr(t)
	args := append([]string{"serve", "--addr", addr, "--provider", "mock", "--log-level", "warn"}, extra...)
	cmd := exec.Command(bin, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(func() { _ = cmd.Process.Kill(); _ = cmd.Wait() })
	s := &server{cmd: cmd, base: "http://" + addr}

	deadline := time.Now().Add(10 * time.Second)
	for {
		resp, err := http.Get(s.base + "/healthz")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return s
			}
		}
		if time.Now().After(deadline) {
			t.Fatalf("server at %s did not become healthy", s.base)
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func post(t *testing.T, url, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	b, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	return resp, b
}

func TestBlackbox_ServeFlow(t *testing.T) {
	s := startServer(t, buildBinary(t))

	resp, err := http.Get(s.base + "/readyz")
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("/readyz: %v %v", resp, err)
	}
	resp.Body.Close()

	resp, body := post(t, s.base+"/translate", `{"text":"hello","source":"en","target":"de"}`)
	if resp.StatusCode != http.StatusOK || !bytes.Contains(body, []byte(`"translation":"[en->de] hello"`)) {
		t.Fatalf("/translate %d %s", resp.StatusCode, body)
	}

	resp, body = post(t, s.base+"/summarize", `{"text":"One idea. Another idea.","stream":true}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/summarize %d %s", resp.StatusCode, body)
	}
	var last map[string]any
	sc := bufio.NewScanner(bytes.NewReader(body))
	lines := 0
	for sc.Scan() {
		lines++
		last = nil
		if err := json.Unmarshal(sc.Bytes(), &last); err != nil {
			t.Fatalf("ndjson %q: %v", sc.Text(), err)
		}
	}
	if lines < 2 || last["done"] != true {
		t.Fatalf("expected streamed lines ending in done, got %d lines, last=%v", lines, last)
	}

	resp, err = http.Get(s.base + "/status")
	if err != nil {
		t.Fatalf("/status: %v", err)
	}
	var st struct {
		Features []struct {
			Feature        string `json:"feature"`
			CreationsTotal int    `json:"creations_total"`
		} `json:"features"`
	}
	err = json.NewDecoder(resp.Body).Decode(&st)
	resp.Body.Close()
	if err != nil || len(st.Features) != 2 {
		t.Fatalf("/status decode: %v %+v", err, st)
	}
	for _, f := range st.Features {
		if f.CreationsTotal != 1 {
			t.Fatalf("%s creations=%d", f.Feature, f.CreationsTotal)
		}
	}
}

func TestBlackbox_GracefulShutdown(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no SIGTERM on windows")
	}
	s := startServer(t, buildBinary(t))
	if err := s.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		t.Fatalf("signal: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- s.cmd.Wait() }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("exit: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatalf("server did not exit")
	}
}

func TestBlackbox_OneShotTranslate(t *testing.T) {
	bin := buildBinary(t)
	cmd := exec.Command(bin, "translate", "--provider", "mock", "--from", "en", "--to", "it", "good night")
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := strings.TrimSpace(string(out)); got != "[en->it] good night" {
		t.Fatalf("output=%q", got)
	}
}

func TestBlackbox_BadConfigExits(t *testing.T) {
	bin := buildBinary(t)
	cfg := filepath.Join(t.TempDir(), "lingod.yaml")
	if err := os.WriteFile(cfg, []byte("provider:\n  kind: quantum\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cmd := exec.Command(bin, "serve", "--config", cfg, "--addr", freeAddr(t))
	out, err := cmd.CombinedOutput()
	if err == nil {
		t.Fatalf("expected non-zero exit, output=%s", out)
	}
	if !strings.Contains(string(out), "quantum") {
		t.Fatalf("error should name the bad provider: %s", fmt.Sprint(string(out)))
	}
}
