package transport

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/go-mercurial/cmdserver/internal/wire"
)

func frame(channel wire.ChannelTag, payload []byte) []byte {
	var buf bytes.Buffer
	buf.WriteByte(byte(channel))
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	buf.Write(lenBuf[:])
	buf.Write(payload)
	return buf.Bytes()
}

func requestSizePayload(n uint32) []byte {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], n)
	return buf[:]
}

func resultPayload(code int32) []byte {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(code))
	return buf[:]
}

// TestDemultiplexer_InputWriteBack exercises the fix described for the
// Input channel: a prompt must be answered by writing a length-prefixed
// block back to the server's stdin, or an interactive command hangs
// forever waiting for input that never arrives.
func TestDemultiplexer_InputWriteBack(t *testing.T) {
	var r bytes.Buffer
	r.Write(frame(wire.Input, requestSizePayload(64)))
	r.Write(frame(wire.Result, resultPayload(0)))

	var w bytes.Buffer
	d := &Demultiplexer{
		Inputs: map[wire.ChannelTag]InputProvider{
			wire.Input: func(requestedSize uint32) []byte {
				if requestedSize != 64 {
					t.Errorf("provider got requestedSize = %d, want 64", requestedSize)
				}
				return []byte("yes\n")
			},
		},
	}

	code, err := d.Run(&r, &w)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}

	want := []byte{0, 0, 0, 4}
	want = append(want, "yes\n"...)
	if !bytes.Equal(w.Bytes(), want) {
		t.Fatalf("write-back = %v, want %v", w.Bytes(), want)
	}
}

// TestDemultiplexer_LineWriteBack covers the Line channel the same way,
// using a multi-line provider response.
func TestDemultiplexer_LineWriteBack(t *testing.T) {
	var r bytes.Buffer
	r.Write(frame(wire.Line, requestSizePayload(256)))
	r.Write(frame(wire.Result, resultPayload(0)))

	var w bytes.Buffer
	d := &Demultiplexer{
		Inputs: map[wire.ChannelTag]InputProvider{
			wire.Line: func(requestedSize uint32) []byte {
				return []byte("merge\n")
			},
		},
	}

	if _, err := d.Run(&r, &w); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []byte{0, 0, 0, 6}
	want = append(want, "merge\n"...)
	if !bytes.Equal(w.Bytes(), want) {
		t.Fatalf("write-back = %v, want %v", w.Bytes(), want)
	}
}

// TestDemultiplexer_InputWithoutProvider_WritesEmptyBlock verifies the
// no-provider-registered path still answers the prompt (with an empty
// block) rather than silently dropping the frame and stalling the
// server, which is the scenario that used to hang forever.
func TestDemultiplexer_InputWithoutProvider_WritesEmptyBlock(t *testing.T) {
	var r bytes.Buffer
	r.Write(frame(wire.Input, requestSizePayload(16)))
	r.Write(frame(wire.Result, resultPayload(0)))

	var w bytes.Buffer
	d := &Demultiplexer{}

	if _, err := d.Run(&r, &w); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !bytes.Equal(w.Bytes(), []byte{0, 0, 0, 0}) {
		t.Fatalf("write-back = %v, want a 4-byte zero-length block", w.Bytes())
	}
}

// TestDemultiplexer_OutputAndResult exercises the ordinary Output/Result
// path as a control alongside the Input/Line cases above.
func TestDemultiplexer_OutputAndResult(t *testing.T) {
	var r bytes.Buffer
	r.Write(frame(wire.Output, []byte("hello\n")))
	r.Write(frame(wire.Result, resultPayload(7)))

	var stdout bytes.Buffer
	d := &Demultiplexer{
		Outputs: map[wire.ChannelTag]io.Writer{
			wire.Output: &stdout,
		},
	}

	code, err := d.Run(&r, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if code != 7 {
		t.Fatalf("exit code = %d, want 7", code)
	}
	if stdout.String() != "hello\n" {
		t.Fatalf("stdout = %q, want %q", stdout.String(), "hello\n")
	}
}
