// Command hgcs is a thin demo CLI over the hgcs client library: it
// exercises log, status, init, and clone against a real `hg` binary
// rather than standing in for Mercurial's own command-line tool.
package main

import (
	"fmt"
	"io"
	"os"
)

const usage = `hgcs - Mercurial command-server client demo

Usage:
  hgcs <command> [options]

Commands:
  log <repo>             Show recent revisions
  status <repo>          Show working directory file status
  init <dest>            Create a new repository
  clone <src> <dest>     Clone a repository
  version <repo>         Show the server's version string
Run 'hgcs <command> --help' for more information on a command.
`

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 2 {
		fmt.Fprint(stdout, usage)
		return 0
	}

	switch args[1] {
	case "log":
		return runLog(args[2:], stdout, stderr)
	case "status":
		return runStatus(args[2:], stdout, stderr)
	case "init":
		return runInit(args[2:], stdout, stderr)
	case "clone":
		return runClone(args[2:], stdout, stderr)
	case "version":
		return runVersion(args[2:], stdout, stderr)
	case "--help", "-h", "help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stdout, "Unknown command: %s\n", args[1])
		fmt.Fprint(stdout, usage)
		return 1
	}
}
