// Package parse implements the output parsers for the command-server
// client: the XML log parser, the delimited key/value parser used for the
// handshake and `showconfig`/`paths`, the status-line parser, and the
// resolve-list parser.
package parse

import "time"

// Revision describes one Mercurial changeset, as produced by parsing
// `log --style xml` (and the other XML-producing commands: heads,
// parents, incoming, outgoing).
type Revision struct {
	RevisionID  string
	Hash        string
	Date        time.Time
	AuthorName  string
	AuthorEmail string
	Message     string

	// Branch is nil when neither <branch> nor a matching <extra key="branch">
	// element was present.
	Branch *string
}

// FileStatus enumerates the first-column codes in `hg status` output, plus
// two pseudo-values (StatusDefault, StatusAll) that only make sense as
// filter inputs to the Status command, never as parser output.
type FileStatus byte

const (
	StatusModified   FileStatus = 'M'
	StatusAdded      FileStatus = 'A'
	StatusRemoved    FileStatus = 'R'
	StatusClean      FileStatus = 'C'
	StatusMissing    FileStatus = '!'
	StatusUnknown    FileStatus = '?'
	StatusIgnored    FileStatus = 'I'
	StatusOrigin     FileStatus = ' '
	StatusConflicted FileStatus = 'U'

	// StatusDefault and StatusAll are filter-only pseudo-values; they never
	// appear as parser output.
	StatusDefault FileStatus = 0
	StatusAll     FileStatus = 0xFF
)

// ParseFileStatus maps a status character to a FileStatus. An unrecognized
// byte maps to StatusClean, matching `hg status`'s own convention that an
// unexpected first column is treated as no-op.
func ParseFileStatus(b byte) FileStatus {
	switch FileStatus(b) {
	case StatusModified, StatusAdded, StatusRemoved, StatusClean, StatusMissing,
		StatusUnknown, StatusIgnored, StatusOrigin, StatusConflicted:
		return FileStatus(b)
	default:
		return StatusClean
	}
}

// String renders the status as its wire character.
func (s FileStatus) String() string {
	return string(rune(s))
}

// ArchiveType selects the `--type` argument for the Archive command.
type ArchiveType int

const (
	ArchiveDefault ArchiveType = iota
	ArchiveDirectory
	ArchiveTar
	ArchiveTarBzip2
	ArchiveTarGzip
	ArchiveUncompressedZip
	ArchiveZip
)

// Flag returns the `--type` argument value for this archive type.
func (a ArchiveType) Flag() string {
	switch a {
	case ArchiveDirectory:
		return "files"
	case ArchiveTar:
		return "tar"
	case ArchiveTarBzip2:
		return "tbz2"
	case ArchiveTarGzip:
		return "tgz"
	case ArchiveUncompressedZip:
		return "uzip"
	case ArchiveZip:
		return "zip"
	default:
		return ""
	}
}
