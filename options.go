package hgcs

import "time"

// AddOptions configures Add. Files defaults to the whole working
// directory when empty.
type AddOptions struct {
	Files   []string
	Dryrun  bool
	Include []string
	Exclude []string
}

// ForgetOptions configures Forget. Files is required.
type ForgetOptions struct {
	Files   []string
	Include []string
	Exclude []string
}

// RemoveOptions configures Remove. Files is required.
type RemoveOptions struct {
	Files []string
	Force bool
	After bool
}

// RevertOptions configures Revert.
type RevertOptions struct {
	Files    []string
	Rev      string
	All      bool
	NoBackup bool
}

// RenameOptions configures Rename. Source and Destination are required.
type RenameOptions struct {
	Source      string
	Destination string
	Force       bool
	AfterMove   bool
}

// ExportOptions configures Export. Revisions is required.
type ExportOptions struct {
	Revisions []string
	Output    string
	Git       bool
}

// AnnotateOptions configures Annotate. Files is required.
type AnnotateOptions struct {
	Files     []string
	Rev       string
	User      bool
	Date      bool
	Number    bool
	Changeset bool
}

// DiffOptions configures Diff.
type DiffOptions struct {
	Files []string
	Rev1  string
	Rev2  string
	Git   bool
	Stat  bool
}

// ArchiveOptions configures Archive. Destination is required.
type ArchiveOptions struct {
	Destination string
	Type        ArchiveType
	Rev         string
	Include     []string
	Exclude     []string
}

// CatOptions configures Cat. Files is required; each entry is fetched
// with its own run_command invocation.
type CatOptions struct {
	Files []string
	Rev   string
}

// SummaryOptions configures Summary.
type SummaryOptions struct {
	Remote bool
}

// CommitOptions configures Commit.
type CommitOptions struct {
	Message     string
	Files       []string
	AddRemove   bool
	Date        *time.Time
	User        string
	CloseBranch bool
}

// MergeOptions configures Merge.
type MergeOptions struct {
	Rev   string
	Force bool
	Tool  string
}

// PullOptions configures Pull. Source defaults to the path configured
// as "default" when empty.
type PullOptions struct {
	Source string
	Rev    string
	Update bool
	Force  bool
}

// PushOptions configures Push.
type PushOptions struct {
	Destination string
	Rev         string
	Force       bool
	NewBranch   bool
}

// UpdateOptions configures Update.
type UpdateOptions struct {
	Rev   string
	Clean bool
	Check bool
}

// IncomingOptions configures Incoming.
type IncomingOptions struct {
	Source string
	Rev    string
	Limit  int
}

// HeadsOptions configures Heads.
type HeadsOptions struct {
	Rev  string
	Topo bool
}

// StatusOptions configures Status. All flags default to false, which
// matches `hg status`'s own default filter set (modified, added,
// removed, deleted, unknown).
type StatusOptions struct {
	All      bool
	Modified bool
	Added    bool
	Removed  bool
	Deleted  bool
	Clean    bool
	Unknown  bool
	Ignored  bool
	Rev      string
}

// LogOptions configures Log.
type LogOptions struct {
	Rev    string
	Limit  int
	Branch string
	Files  []string
	Follow bool
}

// OutgoingOptions configures Outgoing.
type OutgoingOptions struct {
	Destination string
	Rev         string
	Limit       int
}

// ParentsOptions configures Parents.
type ParentsOptions struct {
	Rev  string
	File string
}

// ResolveOptions configures Resolve.
type ResolveOptions struct {
	Files  []string
	List   bool
	Mark   bool
	Unmark bool
}
