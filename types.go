package hgcs

import (
	"github.com/go-mercurial/cmdserver/internal/parse"
)

// Revision describes one Mercurial changeset, as produced by Log, Heads,
// Parents, Incoming, and Outgoing.
type Revision = parse.Revision

// FileStatus enumerates the first-column codes in `hg status` output.
type FileStatus = parse.FileStatus

// ArchiveType selects the `--type` argument for Archive.
type ArchiveType = parse.ArchiveType

const (
	StatusModified   = parse.StatusModified
	StatusAdded      = parse.StatusAdded
	StatusRemoved    = parse.StatusRemoved
	StatusClean      = parse.StatusClean
	StatusMissing    = parse.StatusMissing
	StatusUnknown    = parse.StatusUnknown
	StatusIgnored    = parse.StatusIgnored
	StatusOrigin     = parse.StatusOrigin
	StatusConflicted = parse.StatusConflicted
	StatusDefault    = parse.StatusDefault
	StatusAll        = parse.StatusAll
)

const (
	ArchiveDefault         = parse.ArchiveDefault
	ArchiveDirectory       = parse.ArchiveDirectory
	ArchiveTar             = parse.ArchiveTar
	ArchiveTarBzip2        = parse.ArchiveTarBzip2
	ArchiveTarGzip         = parse.ArchiveTarGzip
	ArchiveUncompressedZip = parse.ArchiveUncompressedZip
	ArchiveZip             = parse.ArchiveZip
)
