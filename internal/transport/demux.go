package transport

import (
	"io"
	"log"

	"github.com/go-mercurial/cmdserver/internal/wire"
)

// InputProvider answers an Input/Line channel prompt. requestedSize is the
// number of bytes the server is willing to accept; the returned block is
// written back verbatim (truncated by the caller is not attempted here —
// an over-long provider response is the provider's bug, not ours).
type InputProvider func(requestedSize uint32) []byte

// Demultiplexer reads frames from a command server's stdout and routes
// each one by channel: Output/Error/Debug payloads are streamed into the
// matching sink (or discarded if none is registered), Input/Line prompts
// are answered via the matching provider (or an empty block if none is
// registered), and a Result frame ends the loop.
type Demultiplexer struct {
	Outputs map[wire.ChannelTag]io.Writer
	Inputs  map[wire.ChannelTag]InputProvider
}

// Run drives the demultiplexer loop over r (the server's stdout) and w
// (the server's stdin, for answering Input/Line prompts) until a Result
// frame arrives, returning its exit code.
func (d *Demultiplexer) Run(r io.Reader, w io.Writer) (int32, error) {
	for {
		hdr, err := wire.ReadHeader(r)
		if err != nil {
			return 0, err
		}

		switch hdr.Channel {
		case wire.Result:
			payload, err := wire.ReadPayload(r, hdr.Length)
			if err != nil {
				return 0, err
			}
			return wire.ReadResultCode(payload)

		case wire.Output, wire.Error, wire.Debug:
			sink := d.Outputs[hdr.Channel]
			if sink == nil {
				sink = io.Discard
			}
			if _, err := wire.StreamPayload(r, hdr.Length, sink); err != nil {
				return 0, err
			}

		case wire.Input, wire.Line:
			size, err := wire.ReadRequestSize(r, hdr.Length)
			if err != nil {
				return 0, err
			}
			var block []byte
			if provider := d.Inputs[hdr.Channel]; provider != nil {
				block = provider(size)
			}
			if err := wire.WriteInputBlock(w, block); err != nil {
				return 0, err
			}
			if bw, ok := w.(flusher); ok {
				if err := bw.Flush(); err != nil {
					return 0, err
				}
			}

		default:
			log.Printf("cmdserver: dropping frame on unmapped channel %v", hdr.Channel)
			if _, err := wire.StreamPayload(r, hdr.Length, io.Discard); err != nil {
				return 0, err
			}
		}
	}
}

type flusher interface {
	Flush() error
}
