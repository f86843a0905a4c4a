package transport

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
)

// codepageAliases maps the "cpNNN" encoding names Mercurial's handshake can
// report to their golang.org/x/text charmap equivalents. This is a
// best-effort table covering the single-byte codepages charmap supports;
// multi-byte Asian codepages (cp936, cp950, ...) are not covered and
// resolve to an error, same as any other name ianaindex cannot resolve.
var codepageAliases = map[string]encoding.Encoding{
	"cp037":  charmap.CodePage037,
	"cp437":  charmap.CodePage437,
	"cp850":  charmap.CodePage850,
	"cp852":  charmap.CodePage852,
	"cp855":  charmap.CodePage855,
	"cp858":  charmap.CodePage858,
	"cp860":  charmap.CodePage860,
	"cp862":  charmap.CodePage862,
	"cp863":  charmap.CodePage863,
	"cp865":  charmap.CodePage865,
	"cp866":  charmap.CodePage866,
	"cp874":  charmap.Windows874,
	"cp1047": charmap.CodePage1047,
	"cp1140": charmap.CodePage1140,
	"cp1250": charmap.Windows1250,
	"cp1251": charmap.Windows1251,
	"cp1252": charmap.Windows1252,
	"cp1253": charmap.Windows1253,
	"cp1254": charmap.Windows1254,
	"cp1255": charmap.Windows1255,
	"cp1256": charmap.Windows1256,
	"cp1257": charmap.Windows1257,
	"cp1258": charmap.Windows1258,
}

// ResolveEncoding resolves the handshake's negotiated encoding name to a
// concrete encoding.Encoding. "UTF-8" (the overwhelmingly common case) and
// the empty string resolve to a no-op passthrough encoding.
func ResolveEncoding(name string) (encoding.Encoding, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || strings.EqualFold(trimmed, "utf-8") || strings.EqualFold(trimmed, "utf8") {
		return encoding.Nop, nil
	}

	if enc, ok := codepageAliases[strings.ToLower(trimmed)]; ok {
		return enc, nil
	}

	if enc, err := ianaindex.IANA.Encoding(trimmed); err == nil && enc != nil {
		return enc, nil
	}

	return nil, fmt.Errorf("unrecognized encoding %q", trimmed)
}
