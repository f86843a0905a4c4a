package pool

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-mercurial/cmdserver/internal/transport"
	"github.com/go-mercurial/cmdserver/internal/wire"
)

// TestHelperProcess stands in for `hg serve --cmdserver pipe`: it sends a
// handshake frame and then idles, since these tests only exercise
// Acquire/Release bookkeeping, not command execution.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	defer os.Exit(0)

	stdout := os.Stdout
	payload := []byte("capabilities: runcommand getencoding\nencoding: UTF-8\n")
	length := uint32(len(payload))
	header := []byte{byte(wire.Output), byte(length >> 24), byte(length >> 16), byte(length >> 8), byte(length)}
	stdout.Write(header)
	stdout.Write(payload)

	// Block until stdin closes (the session is closed), rather than
	// exiting immediately and racing Close's signal delivery.
	buf := make([]byte, 1)
	for {
		if _, err := os.Stdin.Read(buf); err != nil {
			return
		}
	}
}

func fakeRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, ".hg"), 0o755); err != nil {
		t.Fatalf("mkdir .hg: %v", err)
	}
	return dir
}

func fakeHgScript(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "hg")
	contents := "#!/bin/sh\nexec \"$HG_TEST_BINARY\" -test.run=TestHelperProcess\n"
	if err := os.WriteFile(path, []byte(contents), 0o755); err != nil {
		t.Fatalf("write fake hg script: %v", err)
	}
	return path
}

func testPool(t *testing.T) *Pool {
	t.Helper()
	return New(Options{
		SessionConfig: transport.SessionConfig{
			HgPath: fakeHgScript(t),
			Env:    map[string]string{"HG_TEST_BINARY": os.Args[0], "GO_WANT_HELPER_PROCESS": "1"},
		},
	})
}

func TestPool_AcquireAndReleaseReusesSession(t *testing.T) {
	repo := fakeRepo(t)
	p := testPool(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s1, release1, err := p.Acquire(ctx, repo)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	release1()

	s2, release2, err := p.Acquire(ctx, repo)
	if err != nil {
		t.Fatalf("second Acquire: %v", err)
	}
	defer release2()

	if s1 != s2 {
		t.Fatal("expected the released session to be reused")
	}
}

func TestPool_DiscardClosesSession(t *testing.T) {
	repo := fakeRepo(t)
	p := testPool(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s1, _, err := p.Acquire(ctx, repo)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	p.Discard(s1)

	s2, release2, err := p.Acquire(ctx, repo)
	if err != nil {
		t.Fatalf("second Acquire: %v", err)
	}
	defer release2()

	if s1 == s2 {
		t.Fatal("expected a fresh session after Discard")
	}
}

func TestPool_CloseAll(t *testing.T) {
	repo := fakeRepo(t)
	p := testPool(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, release1, err := p.Acquire(ctx, repo)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	release1()
	p.CloseAll()

	if len(p.idle[repo]) != 0 {
		t.Fatalf("expected idle bucket to be drained, got %d", len(p.idle[repo]))
	}
}
