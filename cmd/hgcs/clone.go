package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	hgcs "github.com/go-mercurial/cmdserver"
	"github.com/go-mercurial/cmdserver/internal/config"
)

func runClone(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("clone", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var rev string
	fs.StringVar(&rev, "rev", "", "Clone up to this revision")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: hgcs clone [options] <src> <dest>\n\nClone a repository.\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}
	if fs.NArg() < 2 {
		fs.Usage()
		return 1
	}

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	var flags []string
	if rev != "" {
		flags = append(flags, "--rev", rev)
	}

	if err := hgcs.Clone(context.Background(), fs.Arg(0), fs.Arg(1), cfg.HgPath, flags...); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "cloned %s into %s\n", fs.Arg(0), fs.Arg(1))
	return 0
}
