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

func runLog(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("log", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var rev string
	var limit int
	fs.StringVar(&rev, "rev", "", "Limit to this revision or revision range")
	fs.IntVar(&limit, "limit", 0, "Limit to this many revisions (0 = no limit)")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: hgcs log [options] <repo>\n\nShow recent revisions.\n\nOptions:\n")
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

	revisions, err := client.Log(hgcs.LogOptions{Rev: rev, Limit: limit})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	for _, r := range revisions {
		branch := "default"
		if r.Branch != nil {
			branch = *r.Branch
		}
		fmt.Fprintf(stdout, "changeset:   %s:%s\nbranch:      %s\nauthor:      %s <%s>\ndate:        %s\nsummary:     %s\n\n",
			r.RevisionID, r.Hash, branch, r.AuthorName, r.AuthorEmail, r.Date.Format("Mon Jan 02 15:04:05 2006 -0700"), r.Message)
	}
	return 0
}
