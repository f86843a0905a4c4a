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

func runVersion(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("version", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: hgcs version <repo>\n\nShow the server's version string.\n")
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

	client, err := hgcs.Open(context.Background(), fs.Arg(0), hgcs.ClientConfig{HgPath: cfg.HgPath, Encoding: cfg.Encoding})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer client.Close()

	version, err := client.Version()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, version)
	return 0
}
