package hgcs

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	apperrors "github.com/go-mercurial/cmdserver/internal/errors"
)

// fakeHgCLI writes a shell shim that exits with exitCode, printing
// message to stderr. Used to test Init/Clone, which spawn a transient
// process rather than talking to the command server.
func fakeHgCLI(t *testing.T, exitCode int, message string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "hg")
	contents := "#!/bin/sh\n" +
		"printf '%s' \"" + message + "\" >&2\n" +
		"exit " + strconv.Itoa(exitCode) + "\n"
	if err := os.WriteFile(path, []byte(contents), 0o755); err != nil {
		t.Fatalf("write fake hg CLI: %v", err)
	}
	return path
}

func TestInit_Success(t *testing.T) {
	dest := t.TempDir()
	hgPath := fakeHgCLI(t, 0, "")
	if err := Init(context.Background(), dest, hgPath); err != nil {
		t.Fatalf("Init: %v", err)
	}
}

func TestInit_Failure(t *testing.T) {
	dest := t.TempDir()
	hgPath := fakeHgCLI(t, 1, "abort: permission denied")
	err := Init(context.Background(), dest, hgPath)
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
	if apperrors.GetCode(err) != apperrors.CodeCommandFailed {
		t.Fatalf("expected CodeCommandFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "permission denied") {
		t.Fatalf("expected error message to include stderr, got %v", err)
	}
}

func TestClone_Success(t *testing.T) {
	hgPath := fakeHgCLI(t, 0, "")
	if err := Clone(context.Background(), "https://example.invalid/repo", t.TempDir(), hgPath, "--noupdate"); err != nil {
		t.Fatalf("Clone: %v", err)
	}
}
