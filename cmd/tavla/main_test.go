package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hylla/tavla/internal/domain"
)

func runCommand(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("execute %v: %v", args, err)
	}
	return out.String()
}

func TestPathsCommand(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "tavla.db")
	out := runCommand(t, "paths", "--db", dbPath, "--config", filepath.Join(dir, "config.toml"))

	if !strings.Contains(out, "db: "+dbPath) {
		t.Fatalf("expected db path in output, got %q", out)
	}
	if !strings.Contains(out, "config: "+filepath.Join(dir, "config.toml")) {
		t.Fatalf("expected config path in output, got %q", out)
	}
}

func TestExportWithoutSavedLayoutEmitsDefaults(t *testing.T) {
	dir := t.TempDir()
	out := runCommand(t, "export",
		"--db", filepath.Join(dir, "tavla.db"),
		"--config", filepath.Join(dir, "config.toml"))

	var layout domain.Layout
	if err := json.Unmarshal([]byte(out), &layout); err != nil {
		t.Fatalf("decode exported json: %v", err)
	}
	if !layout.Equal(domain.DefaultLayout()) {
		t.Fatal("expected the default layout export")
	}
}

func TestImportExportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "tavla.db")
	configPath := filepath.Join(dir, "config.toml")

	layout, err := domain.DefaultLayout().MoveCard("alerts", domain.ColumnLeft, 0)
	if err != nil {
		t.Fatalf("MoveCard() error = %v", err)
	}
	payload, err := json.MarshalIndent(layout, "", "  ")
	if err != nil {
		t.Fatalf("encode layout: %v", err)
	}
	inPath := filepath.Join(dir, "layout.json")
	if err := os.WriteFile(inPath, payload, 0o644); err != nil {
		t.Fatalf("write layout file: %v", err)
	}

	runCommand(t, "import", "--db", dbPath, "--config", configPath, "--in", inPath)
	out := runCommand(t, "export", "--db", dbPath, "--config", configPath)

	var exported domain.Layout
	if err := json.Unmarshal([]byte(out), &exported); err != nil {
		t.Fatalf("decode exported json: %v", err)
	}
	if !exported.Equal(layout) {
		t.Fatal("exported layout differs from the imported one")
	}
}

func TestImportRejectsStaleVersion(t *testing.T) {
	dir := t.TempDir()
	layout := domain.DefaultLayout()
	layout.Version = domain.SchemaVersion - 1
	payload, _ := json.Marshal(layout)
	inPath := filepath.Join(dir, "layout.json")
	if err := os.WriteFile(inPath, payload, 0o644); err != nil {
		t.Fatalf("write layout file: %v", err)
	}

	cmd := newRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"import",
		"--db", filepath.Join(dir, "tavla.db"),
		"--config", filepath.Join(dir, "config.toml"),
		"--in", inPath})
	if err := cmd.ExecuteContext(context.Background()); err == nil {
		t.Fatal("expected schema mismatch error")
	}
}

func TestResetCommandDeletesSavedLayout(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "tavla.db")
	configPath := filepath.Join(dir, "config.toml")

	payload, _ := json.Marshal(domain.DefaultLayout())
	inPath := filepath.Join(dir, "layout.json")
	if err := os.WriteFile(inPath, payload, 0o644); err != nil {
		t.Fatalf("write layout file: %v", err)
	}
	runCommand(t, "import", "--db", dbPath, "--config", configPath, "--in", inPath)

	out := runCommand(t, "reset", "--db", dbPath, "--config", configPath)
	if !strings.Contains(out, "deleted") {
		t.Fatalf("unexpected reset output %q", out)
	}
}

func TestVersionCommand(t *testing.T) {
	out := runCommand(t, "version")
	if !strings.Contains(out, "tavla "+version) {
		t.Fatalf("unexpected version output %q", out)
	}
}

func TestDevLogFilePath(t *testing.T) {
	now := time.Date(2026, 8, 24, 10, 30, 0, 0, time.UTC)
	path, err := devLogFilePath("/var/log/tavla", "tavla", now)
	if err != nil {
		t.Fatalf("devLogFilePath() error = %v", err)
	}
	want := filepath.Join("/var/log/tavla", "tavla-20260824.log")
	if path != want {
		t.Fatalf("unexpected path %q, want %q", path, want)
	}
}

func TestSanitizeLogFileStem(t *testing.T) {
	if got := sanitizeLogFileStem("my app:dev"); got != "my-app-dev" {
		t.Fatalf("unexpected stem %q", got)
	}
	if got := sanitizeLogFileStem("   "); got != "tavla" {
		t.Fatalf("unexpected empty-name stem %q", got)
	}
}

func TestWorkspaceRootFrom(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("module x\n"), 0o644); err != nil {
		t.Fatalf("write go.mod: %v", err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if got := workspaceRootFrom(nested); got != root {
		t.Fatalf("unexpected workspace root %q, want %q", got, root)
	}
}
