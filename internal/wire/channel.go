// Package wire implements the Mercurial command-server's framed pipe
// protocol: the 5-byte header (channel tag + big-endian length), the
// runcommand request encoding, and the channel tag vocabulary.
//
// See Mercurial's `hg help hg-cmdserver` for the protocol this package
// is a client for.
package wire

import "fmt"

// ChannelTag identifies which logical stream a frame belongs to.
// Output/Error/Result/Debug carry server-to-client payload bytes;
// Input/Line carry client-to-server prompts (no payload, just a requested
// size).
type ChannelTag byte

const (
	Output ChannelTag = 'o'
	Error  ChannelTag = 'e'
	Result ChannelTag = 'r'
	Debug  ChannelTag = 'd'
	Input  ChannelTag = 'I'
	Line   ChannelTag = 'L'
)

// String renders the tag as its wire byte, for log lines and error messages.
func (c ChannelTag) String() string {
	return string(rune(c))
}

// IsPrompt reports whether this channel carries a requested-size prompt
// (Input/Line) rather than payload bytes (Output/Error/Result/Debug).
func (c ChannelTag) IsPrompt() bool {
	return c == Input || c == Line
}

// ParseChannelTag validates a wire byte against the known channel
// vocabulary {o, e, r, d, I, L}.
func ParseChannelTag(b byte) (ChannelTag, error) {
	switch ChannelTag(b) {
	case Output, Error, Result, Debug, Input, Line:
		return ChannelTag(b), nil
	default:
		return 0, fmt.Errorf("invalid channel identifier %q", b)
	}
}
