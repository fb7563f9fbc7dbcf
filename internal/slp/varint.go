// Package slp implements the Minecraft Server List Ping wire protocol:
// VarInt framing, the handshake/status-request/status-response packets,
// and a single-shot status client.
package slp

import (
	"bufio"
	"io"
)

// maxVarIntBytes is the hard limit on VarInt length for 32-bit values
// imposed by the Minecraft protocol.
const maxVarIntBytes = 5

// segmentBits and continueBit implement the 7-data-bit, MSB-continuation
// LEB128 encoding used throughout the protocol.
const (
	segmentBits = 0x7F
	continueBit = 0x80
)

// WriteVarInt writes v to w using the protocol's unsigned LEB128 encoding.
func WriteVarInt(w io.Writer, v int32) error {
	uv := uint32(v)
	var buf [maxVarIntBytes]byte
	n := 0
	for {
		if uv&^uint32(segmentBits) == 0 {
			buf[n] = byte(uv)
			n++
			break
		}
		buf[n] = byte(uv&segmentBits) | continueBit
		n++
		uv >>= 7
	}
	_, err := w.Write(buf[:n])
	return err
}

// VarIntSize returns the number of bytes WriteVarInt would emit for v.
func VarIntSize(v int32) int {
	uv := uint32(v)
	n := 1
	for uv&^uint32(segmentBits) != 0 {
		uv >>= 7
		n++
	}
	return n
}

// ReadVarInt reads a VarInt from r, failing with MalformedFrame if it
// exceeds the 5-byte limit.
func ReadVarInt(r io.ByteReader) (int32, error) {
	var result uint32
	var shift uint
	for i := 0; i < maxVarIntBytes; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		result |= uint32(b&segmentBits) << shift
		if b&continueBit == 0 {
			return int32(result), nil
		}
		shift += 7
	}
	return 0, newFailure(MalformedFrame, "varint exceeds 5 bytes")
}

// byteReader adapts an io.Reader lacking ReadByte (e.g. a raw net.Conn)
// to io.ByteReader without double-buffering when the underlying reader
// already implements it.
func byteReader(r io.Reader) io.ByteReader {
	if br, ok := r.(io.ByteReader); ok {
		return br
	}
	return bufio.NewReader(r)
}
