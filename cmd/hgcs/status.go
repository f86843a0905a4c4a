package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/mattn/go-isatty"

	hgcs "github.com/go-mercurial/cmdserver"
	"github.com/go-mercurial/cmdserver/internal/config"
)

func runStatus(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var all bool
	fs.BoolVar(&all, "all", false, "Show status of all files, not just changed ones")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: hgcs status [options] <repo>\n\nShow working directory file status.\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return 1
	}
	repo := fs.Arg(0)

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	client, err := hgcs.Open(context.Background(), repo, hgcs.ClientConfig{HgPath: cfg.HgPath, Encoding: cfg.Encoding})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer client.Close()

	status, err := client.Status(hgcs.StatusOptions{All: all})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	paths := make([]string, 0, len(status))
	for p := range status {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	colorize := isTerminal(stdout)
	for _, p := range paths {
		code := status[p].String()
		if colorize {
			fmt.Fprintf(stdout, "%s%s\033[0m %s\n", statusColor(status[p]), code, p)
		} else {
			fmt.Fprintf(stdout, "%s %s\n", code, p)
		}
	}
	return 0
}

func statusColor(s hgcs.FileStatus) string {
	switch s {
	case hgcs.StatusModified:
		return "\033[34m"
	case hgcs.StatusAdded:
		return "\033[32m"
	case hgcs.StatusRemoved, hgcs.StatusMissing:
		return "\033[31m"
	case hgcs.StatusUnknown, hgcs.StatusIgnored:
		return "\033[90m"
	default:
		return ""
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
