package parse

import (
	"bytes"
	"encoding/xml"
	"strings"
	"time"

	"github.com/go-mercurial/cmdserver/internal/errors"
)

type xmlLog struct {
	XMLName xml.Name      `xml:"log"`
	Entries []xmlLogEntry `xml:"logentry"`
}

type xmlLogEntry struct {
	Revision string     `xml:"revision,attr"`
	Node     string     `xml:"node,attr"`
	Author   xmlAuthor  `xml:"author"`
	Date     string     `xml:"date"`
	Msg      string     `xml:"msg"`
	Branch   string     `xml:"branch"`
	Extra    []xmlExtra `xml:"extra"`
}

type xmlAuthor struct {
	Email string `xml:"email,attr"`
	Name  string `xml:",chardata"`
}

type xmlExtra struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

// ParseLogXML parses `log --style xml`-shaped output (also used by heads,
// parents, incoming, and outgoing) into an ordered list of Revisions.
//
// The first occurrence of the literal "<?xml" is located and everything
// before it is discarded (the command server sometimes prefixes progress
// or debug chatter on the same channel); if no such marker exists, parsing
// fails with a ParseError.
func ParseLogXML(output []byte) ([]Revision, error) {
	idx := bytes.Index(output, []byte("<?xml"))
	if idx < 0 {
		return nil, errors.ParseError("no <?xml marker found in log output", nil)
	}

	var doc xmlLog
	if err := xml.Unmarshal(output[idx:], &doc); err != nil {
		return nil, errors.ParseError("failed to parse log XML", err)
	}

	revisions := make([]Revision, 0, len(doc.Entries))
	for _, e := range doc.Entries {
		rev := Revision{
			RevisionID:  e.Revision,
			Hash:        e.Node,
			AuthorName:  strings.TrimSpace(e.Author.Name),
			AuthorEmail: e.Author.Email,
			Message:     e.Msg,
			Branch:      branchOf(e),
		}
		if t, err := parseLogDate(e.Date); err == nil {
			rev.Date = t
		}
		revisions = append(revisions, rev)
	}
	return revisions, nil
}

// branchOf resolves a <logentry>'s branch: the <branch> element's text if
// present, otherwise the first <extra key="branch"> element (matched
// case-insensitively on the key attribute), otherwise nil.
func branchOf(e xmlLogEntry) *string {
	if b := strings.TrimSpace(e.Branch); b != "" {
		return &b
	}
	for _, extra := range e.Extra {
		if strings.EqualFold(extra.Key, "branch") {
			v := extra.Value
			return &v
		}
	}
	return nil
}

func parseLogDate(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, strings.TrimSpace(s))
}
