package main_test

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

func buildCLI(t *testing.T, dir string) string {
	t.Helper()
	bin := filepath.Join(dir, "sentbreak.bin")
	// Build the CLI binary (use full import path so it builds correctly regardless of the current working directory)
	build := exec.Command("go", "build", "-o", bin, "github.com/japaniel/sentbreak/cmd/sentbreak")
	build.Stdout = os.Stdout
	build.Stderr = os.Stderr
	if err := build.Run(); err != nil {
		t.Fatalf("failed to build CLI: %v", err)
	}
	return bin
}

func runCLI(t *testing.T, bin, dir string, args ...string) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		t.Fatalf("cli timed out, output:\n%s", out)
	}
	if err != nil {
		t.Fatalf("cli failed: %v\noutput:\n%s", err, out)
	}
	return string(out)
}

func TestCLI_OfflineServer(t *testing.T) {
	tmp := t.TempDir()

	body, err := os.ReadFile(filepath.Join("..", "..", "pkg", "reader", "testdata", "article.html"))
	if err != nil {
		t.Fatalf("failed to read fixture: %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(body)
	}))
	defer srv.Close()

	dbPath := filepath.Join(tmp, "sentbreak.db")
	bin := buildCLI(t, tmp)

	outStr := runCLI(t, bin, tmp, "-url", srv.URL, "-db", dbPath, "-print")
	if !strings.Contains(outStr, "Processing complete") {
		t.Fatalf("unexpected CLI output; expected success message, got:\n%s", outStr)
	}
	if !strings.Contains(outStr, "Harbor Bridge") {
		t.Fatalf("expected printed sentences to include the headline, got:\n%s", outStr)
	}

	dbConn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	defer dbConn.Close()

	var docs, completed, sents int
	if err := dbConn.QueryRow("SELECT COUNT(*), IFNULL(SUM(completed), 0) FROM documents").Scan(&docs, &completed); err != nil {
		t.Fatalf("db query failed: %v", err)
	}
	if docs != 1 || completed != 1 {
		t.Fatalf("expected one completed document, got %d documents, %d completed", docs, completed)
	}
	if err := dbConn.QueryRow("SELECT COUNT(*) FROM sentences").Scan(&sents); err != nil {
		t.Fatalf("db query failed: %v", err)
	}
	if sents == 0 {
		t.Fatalf("expected stored sentences, found 0")
	}

	// A second run over the same URL is recognised as complete.
	outStr = runCLI(t, bin, tmp, "-url", srv.URL, "-db", dbPath)
	if !strings.Contains(outStr, "Stored 0 sentences from 0 documents (1 already complete)") {
		t.Fatalf("expected rerun to skip the document, got:\n%s", outStr)
	}
}

func TestCLI_TextFile(t *testing.T) {
	tmp := t.TempDir()
	input := filepath.Join(tmp, "notes.txt")
	if err := os.WriteFile(input, []byte("Mr. Lee left on Friday. He did not return.\n"), 0o644); err != nil {
		t.Fatalf("failed to write input: %v", err)
	}
	bin := buildCLI(t, tmp)

	outStr := runCLI(t, bin, tmp, "-file", input, "-db", filepath.Join(tmp, "notes.db"), "-print")
	if !strings.Contains(outStr, "Stored 2 sentences from 1 documents") {
		t.Fatalf("expected two sentences, got:\n%s", outStr)
	}
	if !strings.Contains(outStr, "He did not return.") {
		t.Fatalf("expected printed sentence, got:\n%s", outStr)
	}
}
