package fsutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	if got, err := ExpandHome("/tmp"); err != nil || got != "/tmp" {
		t.Fatalf("got %q err=%v", got, err)
	}
	if got, err := ExpandHome(""); err != nil || got != "" {
		t.Fatalf("got %q err=%v", got, err)
	}
	if got, err := ExpandHome("~"); err != nil || got != home {
		t.Fatalf("expected %q, got %q (err=%v)", home, got, err)
	}
	exp, err := ExpandHome("~/models")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if filepath.Base(exp) != "models" || filepath.Dir(exp) != home {
		t.Fatalf("unexpected expanded path: %q", exp)
	}
}

func TestEnsureDirAndFileSize(t *testing.T) {
	base := t.TempDir()
	dir, err := EnsureDir(filepath.Join(base, "cache", "models"))
	if err != nil {
		t.Fatalf("EnsureDir: %v", err)
	}
	if !PathExists(dir) {
		t.Fatalf("dir not created")
	}
	if _, ok := FileSize(dir); ok {
		t.Fatalf("a directory is not a file")
	}
	p := filepath.Join(dir, "m.bin")
	if err := os.WriteFile(p, []byte("12345"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if n, ok := FileSize(p); !ok || n != 5 {
		t.Fatalf("FileSize=%d ok=%v", n, ok)
	}
	if _, ok := FileSize(filepath.Join(dir, "missing")); ok {
		t.Fatalf("missing file reported")
	}
}
