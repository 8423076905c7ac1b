package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSplitCSV(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b , c ", []string{"a", "b", "c"}},
		{"a,,c", []string{"a", "c"}},
		{"", nil},
	}
	for _, c := range cases {
		got := splitCSV(c.in)
		if len(got) != len(c.want) {
			t.Fatalf("%q -> %v, want %v", c.in, got, c.want)
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Fatalf("%q -> %v, want %v", c.in, got, c.want)
			}
		}
	}
}

func TestResolveConfig_FlagsOverrideFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "lingod.yaml")
	if err := os.WriteFile(p, []byte("log_level: debug\nprovider:\n  kind: llama-server\n  base_url: http://a:1\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := resolveConfig(&options{configPath: p, baseURL: "http://b:2"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.LogLevel != "debug" || cfg.Provider.Kind != "llama-server" || cfg.Provider.BaseURL != "http://b:2" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if _, err := resolveConfig(&options{provider: "quantum"}); err == nil {
		t.Fatalf("expected unknown provider error")
	}
}

func TestHTTPLogLevel(t *testing.T) {
	for in, want := range map[string]string{"debug": "debug", "info": "info", "warn": "error", "disabled": "off", "": "info"} {
		if got := httpLogLevel(in); got != want {
			t.Fatalf("httpLogLevel(%q)=%q want %q", in, got, want)
		}
	}
}

func TestDeltaPrinter(t *testing.T) {
	var buf bytes.Buffer
	dp := &deltaPrinter{w: &buf}
	dp.print("Hel")
	dp.print("Hello")
	dp.print("Hello world")
	if buf.String() != "Hello world" {
		t.Fatalf("out=%q", buf.String())
	}
}

func runCLI(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		t.Fatalf("lingod %v: %v", args, err)
	}
	return out.String()
}

func TestTranslateCommand(t *testing.T) {
	out := runCLI(t, "", "translate", "--provider", "mock", "--log-level", "error", "--to", "fr", "hello", "world")
	if out != "[en->fr] hello world\n" {
		t.Fatalf("out=%q", out)
	}
	out = runCLI(t, "guten tag\n", "translate", "--provider", "mock", "--log-level", "error", "--from", "de", "--to", "en", "--stream")
	if out != "[de->en] guten tag\n" {
		t.Fatalf("stream out=%q", out)
	}
}

func TestSummarizeCommand(t *testing.T) {
	out := runCLI(t, "", "summarize", "--provider", "mock", "--log-level", "error", "--length", "short", "First point. Second point.")
	if out != "TL;DR: First point.\n" {
		t.Fatalf("out=%q", out)
	}
}

func TestDetectCommand(t *testing.T) {
	out := runCLI(t, "", "detect", "--provider", "mock", "--log-level", "error", "bonjour", "je", "vous", "aime")
	if !strings.HasPrefix(out, "fr\t") {
		t.Fatalf("out=%q", out)
	}
}

func TestVersionCommand(t *testing.T) {
	if out := runCLI(t, "", "version"); !strings.HasPrefix(out, "lingod dev") {
		t.Fatalf("out=%q", out)
	}
}
