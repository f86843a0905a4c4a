// Package hgcs is a client for Mercurial's command-server protocol: it
// drives a long-lived `hg serve --cmdserver pipe` subprocess over its
// framed pipe protocol and exposes a typed command API on top, instead of
// forking a fresh `hg` process per operation.
package hgcs

import (
	"context"
	"strconv"

	"github.com/go-mercurial/cmdserver/internal/argbuilder"
	"github.com/go-mercurial/cmdserver/internal/errors"
	"github.com/go-mercurial/cmdserver/internal/parse"
	"github.com/go-mercurial/cmdserver/internal/transport"
)

// ClientConfig configures Open. HgPath defaults to "hg" on PATH.
type ClientConfig = transport.SessionConfig

// CommandResult is the raw decoded outcome of a command-server round
// trip, exposed for callers who need the exit code or raw text alongside
// a parsed result.
type CommandResult = transport.CommandResult

// Client drives one `hg serve --cmdserver pipe` session against a single
// repository. A Client is safe for concurrent use because the underlying
// Session serializes commands: concurrent method calls queue behind one
// another rather than running in parallel. Run multiple Clients (one per
// Session) for real concurrency.
type Client struct {
	session *transport.Session
}

// Open spawns the command server for repoPath and performs the
// handshake.
func Open(ctx context.Context, repoPath string, cfg ClientConfig) (*Client, error) {
	session, err := transport.Open(ctx, repoPath, cfg)
	if err != nil {
		return nil, err
	}
	return &Client{session: session}, nil
}

// Close terminates the command server and releases its pipes. Safe to
// call more than once.
func (c *Client) Close() error {
	return c.session.Close()
}

// Encoding returns the handshake-negotiated encoding name.
func (c *Client) Encoding() string { return c.session.Encoding() }

// Capabilities returns the handshake-advertised capability tokens.
func (c *Client) Capabilities() map[string]struct{} { return c.session.Capabilities() }

// Root returns the repository root path, cached after the first call.
func (c *Client) Root() (string, error) { return c.session.Root() }

// Version returns the server's normalized version string, cached after
// the first call.
func (c *Client) Version() (string, error) { return c.session.Version() }

// Configuration returns the effective repository configuration as a flat
// key/value map, cached after the first call.
func (c *Client) Configuration() (map[string]string, error) { return c.session.Configuration() }

// ShowConfig is an alias for Configuration, matching the `hg showconfig`
// command name.
func (c *Client) ShowConfig() (map[string]string, error) { return c.session.Configuration() }

func (c *Client) run(argv []string) (CommandResult, error) {
	return c.session.RunCommand(argv, nil)
}

func requireExit(argv []string, res CommandResult, allowed ...int32) error {
	for _, code := range allowed {
		if res.ExitCode == code {
			return nil
		}
	}
	return errors.CommandFailed(argv, res.ExitCode, res.Stdout, res.Stderr)
}

func requireNonEmpty(values []string, reason string) error {
	if len(values) == 0 {
		return errors.InvalidArgument(reason)
	}
	return nil
}

// Add schedules files to be tracked at the next commit.
func (c *Client) Add(opts AddOptions) error {
	argv := []string{"add"}
	argv = argbuilder.AddIf(argv, opts.Dryrun, "--dry-run")
	argv = argbuilder.AddAllIfNonEmpty(argv, "--include", opts.Include)
	argv = argbuilder.AddAllIfNonEmpty(argv, "--exclude", opts.Exclude)
	argv = append(argv, opts.Files...)

	res, err := c.run(argv)
	if err != nil {
		return err
	}
	return requireExit(argv, res, 0)
}

// Forget stops tracking files without removing them from disk.
func (c *Client) Forget(opts ForgetOptions) error {
	if err := requireNonEmpty(opts.Files, "forget requires at least one file"); err != nil {
		return err
	}
	argv := []string{"forget"}
	argv = argbuilder.AddAllIfNonEmpty(argv, "--include", opts.Include)
	argv = argbuilder.AddAllIfNonEmpty(argv, "--exclude", opts.Exclude)
	argv = append(argv, opts.Files...)

	res, err := c.run(argv)
	if err != nil {
		return err
	}
	return requireExit(argv, res, 0)
}

// Remove deletes files from the working directory and stops tracking
// them.
func (c *Client) Remove(opts RemoveOptions) error {
	if err := requireNonEmpty(opts.Files, "remove requires at least one file"); err != nil {
		return err
	}
	argv := []string{"remove"}
	argv = argbuilder.AddIf(argv, opts.Force, "--force")
	argv = argbuilder.AddIf(argv, opts.After, "--after")
	argv = append(argv, opts.Files...)

	res, err := c.run(argv)
	if err != nil {
		return err
	}
	return requireExit(argv, res, 0)
}

// Revert restores files to a prior revision, discarding local changes.
func (c *Client) Revert(opts RevertOptions) error {
	argv := []string{"revert"}
	argv = argbuilder.AddPairIfNonEmpty(argv, "--rev", opts.Rev)
	argv = argbuilder.AddIf(argv, opts.All, "--all")
	argv = argbuilder.AddIf(argv, opts.NoBackup, "--no-backup")
	argv = append(argv, opts.Files...)

	res, err := c.run(argv)
	if err != nil {
		return err
	}
	return requireExit(argv, res, 0)
}

// Rename moves or renames a tracked file.
func (c *Client) Rename(opts RenameOptions) error {
	if opts.Source == "" || opts.Destination == "" {
		return errors.InvalidArgument("rename requires a source and a destination")
	}
	argv := []string{"rename"}
	argv = argbuilder.AddIf(argv, opts.Force, "--force")
	argv = argbuilder.AddIf(argv, opts.AfterMove, "--after")
	argv = append(argv, opts.Source, opts.Destination)

	res, err := c.run(argv)
	if err != nil {
		return err
	}
	return requireExit(argv, res, 0)
}

// Export renders one or more revisions as a patch and returns it.
func (c *Client) Export(opts ExportOptions) (string, error) {
	if err := requireNonEmpty(opts.Revisions, "export requires at least one revision"); err != nil {
		return "", err
	}
	argv := []string{"export"}
	argv = argbuilder.AddPairIfNonEmpty(argv, "--output", opts.Output)
	argv = argbuilder.AddIf(argv, opts.Git, "--git")
	argv = append(argv, opts.Revisions...)

	res, err := c.run(argv)
	if err != nil {
		return "", err
	}
	if err := requireExit(argv, res, 0); err != nil {
		return "", err
	}
	return res.Stdout, nil
}

// Annotate shows, for each line of each file, the revision that last
// changed it.
func (c *Client) Annotate(opts AnnotateOptions) (string, error) {
	if err := requireNonEmpty(opts.Files, "annotate requires at least one file"); err != nil {
		return "", err
	}
	argv := []string{"annotate"}
	argv = argbuilder.AddPairIfNonEmpty(argv, "--rev", opts.Rev)
	argv = argbuilder.AddIf(argv, opts.User, "--user")
	argv = argbuilder.AddIf(argv, opts.Date, "--date")
	argv = argbuilder.AddIf(argv, opts.Number, "--number")
	argv = argbuilder.AddIf(argv, opts.Changeset, "--changeset")
	argv = append(argv, opts.Files...)

	res, err := c.run(argv)
	if err != nil {
		return "", err
	}
	if err := requireExit(argv, res, 0); err != nil {
		return "", err
	}
	return res.Stdout, nil
}

// Diff shows differences between revisions or the working directory.
func (c *Client) Diff(opts DiffOptions) (string, error) {
	argv := []string{"diff"}
	argv = argbuilder.AddPairIfNonEmpty(argv, "--rev", opts.Rev1)
	argv = argbuilder.AddPairIfNonEmpty(argv, "--rev", opts.Rev2)
	argv = argbuilder.AddIf(argv, opts.Git, "--git")
	argv = argbuilder.AddIf(argv, opts.Stat, "--stat")
	argv = append(argv, opts.Files...)

	res, err := c.run(argv)
	if err != nil {
		return "", err
	}
	if err := requireExit(argv, res, 0); err != nil {
		return "", err
	}
	return res.Stdout, nil
}

// Archive writes a snapshot of the working directory to opts.Destination.
func (c *Client) Archive(opts ArchiveOptions) error {
	if opts.Destination == "" {
		return errors.InvalidArgument("archive requires a destination")
	}
	argv := []string{"archive"}
	argv = argbuilder.AddPairIfNonEmpty(argv, "--rev", opts.Rev)
	if flag := opts.Type.Flag(); flag != "" {
		argv = append(argv, "--type", flag)
	}
	argv = argbuilder.AddAllIfNonEmpty(argv, "--include", opts.Include)
	argv = argbuilder.AddAllIfNonEmpty(argv, "--exclude", opts.Exclude)
	argv = append(argv, opts.Destination)

	res, err := c.run(argv)
	if err != nil {
		return err
	}
	return requireExit(argv, res, 0)
}

// Cat returns the contents of each requested file at opts.Rev, issuing
// one run_command invocation per file.
func (c *Client) Cat(opts CatOptions) (map[string]string, error) {
	if err := requireNonEmpty(opts.Files, "cat requires at least one file"); err != nil {
		return nil, err
	}

	result := make(map[string]string, len(opts.Files))
	for _, file := range opts.Files {
		argv := []string{"cat"}
		argv = argbuilder.AddPairIfNonEmpty(argv, "--rev", opts.Rev)
		argv = append(argv, file)

		res, err := c.run(argv)
		if err != nil {
			return nil, err
		}
		if err := requireExit(argv, res, 0); err != nil {
			return nil, err
		}
		result[file] = res.Stdout
	}
	return result, nil
}

// Summary returns `hg summary`'s working-directory overview text.
func (c *Client) Summary(opts SummaryOptions) (string, error) {
	argv := []string{"summary"}
	argv = argbuilder.AddIf(argv, opts.Remote, "--remote")

	res, err := c.run(argv)
	if err != nil {
		return "", err
	}
	if err := requireExit(argv, res, 0); err != nil {
		return "", err
	}
	return res.Stdout, nil
}

// Commit records a new revision. The returned bool is false when exit
// code 1 signaled a non-fatal outcome (nothing to commit); a distinct
// CommandFailed is returned only for codes outside {0,1}.
func (c *Client) Commit(opts CommitOptions) (bool, error) {
	argv := []string{"commit"}
	argv = argbuilder.AddPairIfNonEmpty(argv, "--message", opts.Message)
	argv = argbuilder.AddPairIfNonEmpty(argv, "--user", opts.User)
	argv = argbuilder.AddDateIf(argv, "--date", opts.Date)
	argv = argbuilder.AddIf(argv, opts.AddRemove, "--addremove")
	argv = argbuilder.AddIf(argv, opts.CloseBranch, "--close-branch")
	argv = append(argv, opts.Files...)

	res, err := c.run(argv)
	if err != nil {
		return false, err
	}
	if err := requireExit(argv, res, 0, 1); err != nil {
		return false, err
	}
	return res.ExitCode == 0, nil
}

// Merge merges another revision into the working directory.
func (c *Client) Merge(opts MergeOptions) (bool, error) {
	argv := []string{"merge"}
	argv = argbuilder.AddPairIfNonEmpty(argv, "--rev", opts.Rev)
	argv = argbuilder.AddIf(argv, opts.Force, "--force")
	argv = argbuilder.AddPairIfNonEmpty(argv, "--tool", opts.Tool)

	res, err := c.run(argv)
	if err != nil {
		return false, err
	}
	if err := requireExit(argv, res, 0, 1); err != nil {
		return false, err
	}
	return res.ExitCode == 0, nil
}

// Pull fetches changesets from opts.Source into the local repository.
func (c *Client) Pull(opts PullOptions) (bool, error) {
	argv := []string{"pull"}
	argv = argbuilder.AddPairIfNonEmpty(argv, "--rev", opts.Rev)
	argv = argbuilder.AddIf(argv, opts.Update, "--update")
	argv = argbuilder.AddIf(argv, opts.Force, "--force")
	if opts.Source != "" {
		argv = append(argv, opts.Source)
	}

	res, err := c.run(argv)
	if err != nil {
		return false, err
	}
	if err := requireExit(argv, res, 0, 1); err != nil {
		return false, err
	}
	return res.ExitCode == 0, nil
}

// Push sends local changesets to opts.Destination.
func (c *Client) Push(opts PushOptions) (bool, error) {
	argv := []string{"push"}
	argv = argbuilder.AddPairIfNonEmpty(argv, "--rev", opts.Rev)
	argv = argbuilder.AddIf(argv, opts.Force, "--force")
	argv = argbuilder.AddIf(argv, opts.NewBranch, "--new-branch")
	if opts.Destination != "" {
		argv = append(argv, opts.Destination)
	}

	res, err := c.run(argv)
	if err != nil {
		return false, err
	}
	if err := requireExit(argv, res, 0, 1); err != nil {
		return false, err
	}
	return res.ExitCode == 0, nil
}

// Update moves the working directory to a different revision.
func (c *Client) Update(opts UpdateOptions) (bool, error) {
	argv := []string{"update"}
	argv = argbuilder.AddPairIfNonEmpty(argv, "--rev", opts.Rev)
	argv = argbuilder.AddIf(argv, opts.Clean, "--clean")
	argv = argbuilder.AddIf(argv, opts.Check, "--check")

	res, err := c.run(argv)
	if err != nil {
		return false, err
	}
	if err := requireExit(argv, res, 0, 1); err != nil {
		return false, err
	}
	return res.ExitCode == 0, nil
}

func xmlArgv(command string) []string {
	return []string{command, "--style", "xml"}
}

// Incoming lists changesets available from opts.Source that are not in
// the local repository. Exit code 1 (no incoming changes) yields an
// empty, non-error result.
func (c *Client) Incoming(opts IncomingOptions) ([]Revision, error) {
	argv := xmlArgv("incoming")
	argv = argbuilder.AddPairIfNonEmpty(argv, "--rev", opts.Rev)
	if opts.Limit > 0 {
		argv = append(argv, "--limit", strconv.Itoa(opts.Limit))
	}
	if opts.Source != "" {
		argv = append(argv, opts.Source)
	}
	return c.runXMLRevisions(argv, 0, 1)
}

// Heads lists the repository's (or a branch's) head revisions.
func (c *Client) Heads(opts HeadsOptions) ([]Revision, error) {
	argv := xmlArgv("heads")
	argv = argbuilder.AddPairIfNonEmpty(argv, "--rev", opts.Rev)
	argv = argbuilder.AddIf(argv, opts.Topo, "--topo")
	return c.runXMLRevisions(argv, 0, 1)
}

// Rollback undoes the last transaction. The returned bool reflects
// whether the rollback itself succeeded (exit == 0); unlike every other
// command, no exit code here is treated as a hard failure.
func (c *Client) Rollback() (bool, error) {
	argv := []string{"rollback"}
	res, err := c.run(argv)
	if err != nil {
		return false, err
	}
	return res.ExitCode == 0, nil
}

// Status reports the working directory's file states.
func (c *Client) Status(opts StatusOptions) (map[string]parse.FileStatus, error) {
	argv := []string{"status"}
	argv = argbuilder.AddIf(argv, opts.All, "--all")
	argv = argbuilder.AddIf(argv, opts.Modified, "--modified")
	argv = argbuilder.AddIf(argv, opts.Added, "--added")
	argv = argbuilder.AddIf(argv, opts.Removed, "--removed")
	argv = argbuilder.AddIf(argv, opts.Deleted, "--deleted")
	argv = argbuilder.AddIf(argv, opts.Clean, "--clean")
	argv = argbuilder.AddIf(argv, opts.Unknown, "--unknown")
	argv = argbuilder.AddIf(argv, opts.Ignored, "--ignored")
	argv = argbuilder.AddPairIfNonEmpty(argv, "--rev", opts.Rev)

	res, err := c.run(argv)
	if err != nil {
		return nil, err
	}
	if err := requireExit(argv, res, 0); err != nil {
		return nil, err
	}
	return parse.ParseStatusLines(res.Stdout), nil
}

// Log lists revisions matching the given filters, most recent first.
func (c *Client) Log(opts LogOptions) ([]Revision, error) {
	argv := xmlArgv("log")
	argv = argbuilder.AddPairIfNonEmpty(argv, "--rev", opts.Rev)
	argv = argbuilder.AddPairIfNonEmpty(argv, "--branch", opts.Branch)
	argv = argbuilder.AddIf(argv, opts.Follow, "--follow")
	if opts.Limit > 0 {
		argv = append(argv, "--limit", strconv.Itoa(opts.Limit))
	}
	argv = append(argv, opts.Files...)
	return c.runXMLRevisions(argv, 0)
}

// Outgoing lists local changesets not yet present at opts.Destination.
func (c *Client) Outgoing(opts OutgoingOptions) ([]Revision, error) {
	argv := xmlArgv("outgoing")
	argv = argbuilder.AddPairIfNonEmpty(argv, "--rev", opts.Rev)
	if opts.Limit > 0 {
		argv = append(argv, "--limit", strconv.Itoa(opts.Limit))
	}
	if opts.Destination != "" {
		argv = append(argv, opts.Destination)
	}
	return c.runXMLRevisions(argv, 0, 1)
}

// Parents lists the parent revision(s) of the working directory or a
// given revision/file.
func (c *Client) Parents(opts ParentsOptions) ([]Revision, error) {
	argv := xmlArgv("parents")
	argv = argbuilder.AddPairIfNonEmpty(argv, "--rev", opts.Rev)
	if opts.File != "" {
		argv = append(argv, opts.File)
	}
	return c.runXMLRevisions(argv, 0)
}

// Paths returns the configured remote repository paths by name.
func (c *Client) Paths() (map[string]string, error) {
	argv := []string{"paths"}
	res, err := c.run(argv)
	if err != nil {
		return nil, err
	}
	if err := requireExit(argv, res, 0); err != nil {
		return nil, err
	}
	return parse.ParseKV(res.Stdout, []string{"="}), nil
}

// Resolve reports or updates the merge-conflict status of files.
func (c *Client) Resolve(opts ResolveOptions) (map[string]bool, error) {
	argv := []string{"resolve"}
	argv = argbuilder.AddIf(argv, opts.List, "--list")
	argv = argbuilder.AddIf(argv, opts.Mark, "--mark")
	argv = argbuilder.AddIf(argv, opts.Unmark, "--unmark")
	argv = append(argv, opts.Files...)

	res, err := c.run(argv)
	if err != nil {
		return nil, err
	}
	if err := requireExit(argv, res, 0); err != nil {
		return nil, err
	}
	return parse.ParseResolveList(res.Stdout), nil
}

func (c *Client) runXMLRevisions(argv []string, allowed ...int32) ([]Revision, error) {
	res, err := c.run(argv)
	if err != nil {
		return nil, err
	}
	if err := requireExit(argv, res, allowed...); err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		// A non-zero-but-allowed exit code (e.g. incoming/outgoing with
		// nothing to report) carries no XML document to parse.
		return nil, nil
	}
	return parse.ParseLogXML([]byte(res.Stdout))
}

