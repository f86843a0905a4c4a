package parse

import "strings"

// ParseKV splits input on "\n" and, for each non-empty line, splits on the
// earliest occurrence of any delimiter in delims into at most two parts. A
// line that contains none of the delimiters is skipped. Used for the
// handshake's "key: value" lines (delims = [": "]) and for `showconfig`/
// `paths` output (delims = ["="]).
func ParseKV(input string, delims []string) map[string]string {
	result := make(map[string]string)
	for _, line := range strings.Split(input, "\n") {
		if line == "" {
			continue
		}

		bestIdx := -1
		bestDelim := ""
		for _, d := range delims {
			if idx := strings.Index(line, d); idx >= 0 && (bestIdx == -1 || idx < bestIdx) {
				bestIdx = idx
				bestDelim = d
			}
		}
		if bestIdx == -1 {
			continue
		}

		key := line[:bestIdx]
		value := line[bestIdx+len(bestDelim):]
		result[key] = value
	}
	return result
}
