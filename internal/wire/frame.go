package wire

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// streamChunkSize bounds how much of a single frame payload we buffer in
// memory at a time. Frame lengths are uint32 and can exceed 2 GiB; copying
// in fixed-size chunks keeps memory bounded regardless of the announced
// length and sidesteps any sign-extension bug a naive int32 length would
// invite.
const streamChunkSize = 32 * 1024

// Header is a decoded 5-byte frame header: one channel tag byte followed
// by a big-endian uint32 payload length.
type Header struct {
	Channel ChannelTag
	Length  uint32
}

// ReadHeader reads exactly 5 bytes from r and decodes them as a Header.
// A short read (including a clean EOF before any bytes were read) is
// reported via io.ErrUnexpectedEOF/io.EOF so callers can map it to
// ServerClosed.
func ReadHeader(r io.Reader) (Header, error) {
	var buf [5]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Header{}, err
	}
	tag, err := ParseChannelTag(buf[0])
	if err != nil {
		return Header{}, err
	}
	return Header{
		Channel: tag,
		Length:  binary.BigEndian.Uint32(buf[1:5]),
	}, nil
}

// ReadPayload reads exactly length bytes from r and returns them. Intended
// for small, bounded payloads (handshake, result frames); large Output/Error
// streams should use StreamPayload instead to avoid materializing the whole
// frame in memory.
func ReadPayload(r io.Reader, length uint32) ([]byte, error) {
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// StreamPayload copies exactly length bytes from r to dst, in bounded
// chunks, and returns the number of bytes copied. A short read before
// length bytes have been copied is reported as an error (wrapping
// io.ErrUnexpectedEOF), consistent with the "short read is ServerClosed"
// rule in the frame codec's read-payload step.
func StreamPayload(r io.Reader, length uint32, dst io.Writer) (int64, error) {
	var copied int64
	remaining := int64(length)
	buf := make([]byte, streamChunkSize)
	for remaining > 0 {
		chunk := buf
		if int64(len(chunk)) > remaining {
			chunk = chunk[:remaining]
		}
		n, err := io.ReadFull(r, chunk)
		copied += int64(n)
		remaining -= int64(n)
		if err != nil {
			return copied, err
		}
		if dst != nil {
			if _, werr := dst.Write(chunk); werr != nil {
				return copied, werr
			}
		}
	}
	return copied, nil
}

// ReadRequestSize reads an Input/Line channel's payload (length bytes,
// normally exactly 4) and decodes the leading 4 bytes as a big-endian
// uint32 requested byte count.
func ReadRequestSize(r io.Reader, length uint32) (uint32, error) {
	if length < 4 {
		return 0, fmt.Errorf("input/line payload too short: %d bytes", length)
	}
	buf, err := ReadPayload(r, length)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:4]), nil
}

// ReadResultCode decodes a Result frame's 4-byte payload as a big-endian
// signed 32-bit exit code.
func ReadResultCode(payload []byte) (int32, error) {
	if len(payload) < 4 {
		return 0, fmt.Errorf("result frame too short: %d bytes", len(payload))
	}
	return int32(binary.BigEndian.Uint32(payload[:4])), nil
}

// WriteRunCommand writes a "runcommand" request: the literal bytes
// "runcommand\n", a 4-byte big-endian length, and the NUL-separated argv
// block (no trailing NUL). If w is a *bufio.Writer, it is flushed before
// returning.
func WriteRunCommand(w io.Writer, argv []string) error {
	block := EncodeArgv(argv)

	if _, err := io.WriteString(w, "runcommand\n"); err != nil {
		return err
	}

	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(block)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}

	if _, err := w.Write(block); err != nil {
		return err
	}

	if bw, ok := w.(*bufio.Writer); ok {
		return bw.Flush()
	}
	return nil
}

// EncodeArgv joins argv with NUL separators, with no leading or trailing
// NUL byte.
func EncodeArgv(argv []string) []byte {
	total := 0
	for i, a := range argv {
		total += len(a)
		if i > 0 {
			total++
		}
	}
	buf := make([]byte, 0, total)
	for i, a := range argv {
		if i > 0 {
			buf = append(buf, 0)
		}
		buf = append(buf, a...)
	}
	return buf
}

// WriteInputBlock writes a response to an Input/Line prompt: a 4-byte
// big-endian length followed by the data itself. This mirrors how the
// command server itself frames O/E/R/D payloads, and is what `hg`'s
// command-server implementation expects back on stdin for interactive
// channels.
func WriteInputBlock(w io.Writer, data []byte) error {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(data)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	_, err := w.Write(data)
	return err
}
