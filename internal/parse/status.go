package parse

import "strings"

// ParseStatusLines parses `hg status` output into a path -> FileStatus map.
// Empty lines are discarded; lines of length <= 2 (too short to carry a
// status code, a separating space, and a path) are silently skipped.
func ParseStatusLines(output string) map[string]FileStatus {
	result := make(map[string]FileStatus)
	for _, line := range strings.Split(output, "\n") {
		if line == "" || len(line) <= 2 {
			continue
		}
		result[line[2:]] = ParseFileStatus(line[0])
	}
	return result
}

// ParseResolveList parses `hg resolve --list` output into a
// path -> resolved? map. The first column is 'R' for resolved files and
// 'U' for unresolved files.
func ParseResolveList(output string) map[string]bool {
	result := make(map[string]bool)
	for _, line := range strings.Split(output, "\n") {
		if line == "" || len(line) < 2 {
			continue
		}
		path := strings.TrimSpace(line[2:])
		result[path] = line[0] == 'R'
	}
	return result
}
