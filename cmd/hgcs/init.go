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

func runInit(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: hgcs init <dest>\n\nCreate a new repository.\n")
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

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if err := hgcs.Init(context.Background(), fs.Arg(0), cfg.HgPath); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "created repository at %s\n", fs.Arg(0))
	return 0
}
