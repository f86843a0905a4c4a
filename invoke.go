package hgcs

import (
	"bytes"
	"context"
	stderrors "errors"
	"os/exec"
	"time"

	"github.com/go-mercurial/cmdserver/internal/errors"
)

// Init creates a new repository at destination. Unlike every other
// operation in this package, Init and Clone do not go through the
// command server: they run a transient `hg` process and wait for it to
// exit. hgPath defaults to "hg" on PATH when empty.
//
// Init is bounded to a 5-second timeout; a shorter deadline already on ctx
// still applies.
func Init(ctx context.Context, destination, hgPath string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := runOneShot(ctx, hgPath, []string{"init", destination})
	return err
}

// Clone clones source into destination, passing flags through verbatim
// (e.g. "--rev", "tip", "--noupdate"). hgPath defaults to "hg" on PATH
// when empty.
func Clone(ctx context.Context, source, destination, hgPath string, flags ...string) error {
	args := append([]string{"clone"}, flags...)
	args = append(args, source, destination)
	_, err := runOneShot(ctx, hgPath, args)
	return err
}

func runOneShot(ctx context.Context, hgPath string, args []string) (string, error) {
	if hgPath == "" {
		hgPath = "hg"
	}

	cmd := exec.CommandContext(ctx, hgPath, args...)
	var combined bytes.Buffer
	cmd.Stdout = &combined
	cmd.Stderr = &combined

	if err := cmd.Run(); err != nil {
		argv := append([]string{hgPath}, args...)
		return "", errors.OneShotFailed(argv, exitCodeOf(err), combined.String())
	}
	return combined.String(), nil
}

func exitCodeOf(err error) int32 {
	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		return int32(exitErr.ExitCode())
	}
	return -1
}
