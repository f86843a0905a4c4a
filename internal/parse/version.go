package parse

import (
	"regexp"
	"strings"

	"github.com/go-mercurial/cmdserver/internal/errors"
)

// versionPattern extracts the major/minor/trivial/additional components
// out of `hg version`'s banner line, e.g. "Mercurial Distributed SCM
// (version 5.9.1)" or "... (version 6.1+20-abcdef)".
var versionPattern = regexp.MustCompile(`\(version (\d)\.(\d)(?:\.(\d))?([^)]*)\)`)

// NormalizeVersion reduces the raw banner text from `hg version` to a bare
// version string: "{major}.{minor}.{trivial}{additional}" when a trivial
// component is present ("5.9.1)" -> "5.9.1"), or "{major}.{minor}0{additional}"
// when it is absent ("5.7)" -> "5.70") — the trivial component's leading dot
// belongs to the match, not the separator, so a missing trivial drops the
// dot along with it.
func NormalizeVersion(raw string) (string, error) {
	match := versionPattern.FindStringSubmatch(raw)
	if match == nil {
		return "", errors.ParseError("could not find a version number in `hg version` output", nil)
	}

	major, minor, trivial, additional := match[1], match[2], match[3], match[4]
	additional = strings.TrimSpace(additional)
	if trivial != "" {
		return major + "." + minor + "." + trivial + additional, nil
	}
	return major + "." + minor + "0" + additional, nil
}
