package trim

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newCapturedPolicy(verbose, dryRun bool) (*Policy, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	return &Policy{Verbose: verbose, DryRun: dryRun, Logger: logger}, &buf
}

func TestPrintGating(t *testing.T) {
	tests := []struct {
		name       string
		verbose    bool
		dryRun     bool
		wantOutput bool
		wantPrefix string
	}{
		{name: "silent by default", wantOutput: false},
		{name: "verbose prints plain", verbose: true, wantOutput: true, wantPrefix: "doing the thing"},
		{name: "dry-run prints with prefix", dryRun: true, wantOutput: true, wantPrefix: "[DRY] doing the thing"},
		{name: "dry-run wins over verbose", verbose: true, dryRun: true, wantOutput: true, wantPrefix: "[DRY] doing the thing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, buf := newCapturedPolicy(tt.verbose, tt.dryRun)
			p.Print(func() string { return "doing the thing" })
			got := buf.String()
			if tt.wantOutput != (got != "") {
				t.Fatalf("output present = %v, want %v (output: %q)", got != "", tt.wantOutput, got)
			}
			if tt.wantOutput && !strings.Contains(got, tt.wantPrefix) {
				t.Errorf("output %q missing %q", got, tt.wantPrefix)
			}
		})
	}
}

func TestPrintIsLazyWhenSilent(t *testing.T) {
	p, _ := newCapturedPolicy(false, false)
	called := false
	p.Print(func() string { called = true; return "expensive" })
	if called {
		t.Error("description closure evaluated on the silent path")
	}
}

func TestRenameDryRunLeavesFilesAlone(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.txt")
	dst := filepath.Join(dir, "b.txt")
	if err := os.WriteFile(src, []byte("x"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	p, buf := newCapturedPolicy(false, true)
	if err := p.Rename(src, dst); err != nil {
		t.Fatalf("Rename() error: %v", err)
	}
	if _, err := os.Stat(src); err != nil {
		t.Errorf("source was moved under dry-run: %v", err)
	}
	if _, err := os.Stat(dst); err == nil {
		t.Error("destination exists after dry-run rename")
	}
	if !strings.Contains(buf.String(), "[DRY]") {
		t.Errorf("expected [DRY] description, got %q", buf.String())
	}
}

func TestRenameLive(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.txt")
	dst := filepath.Join(dir, "b.txt")
	if err := os.WriteFile(src, []byte("x"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	p, _ := newCapturedPolicy(false, false)
	if err := p.Rename(src, dst); err != nil {
		t.Fatalf("Rename() error: %v", err)
	}
	if _, err := os.Stat(dst); err != nil {
		t.Errorf("destination missing after rename: %v", err)
	}
}

func TestRemoveDryRunLeavesFileAlone(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	p, _ := newCapturedPolicy(false, true)
	if err := p.Remove(path); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("file removed under dry-run: %v", err)
	}
}

func TestRemoveLive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	p, _ := newCapturedPolicy(false, false)
	if err := p.Remove(path); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}
	if _, err := os.Stat(path); err == nil {
		t.Error("file still present after remove")
	}
}
