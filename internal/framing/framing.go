// Package framing implements the length-prefixed wire format used to pack
// multiple opaque byte payloads into a single durable-object response body.
//
// Each payload is emitted as a 32-bit little-endian unsigned length followed
// by that many raw bytes. Payloads are not re-encoded: a caller holding
// already-JSON-encoded bytes can frame them verbatim, which is the whole
// point — it avoids paying to deserialize and re-serialize KV values inside
// the durable-object actor.
package framing

import (
	"encoding/binary"
	"fmt"
)

// Encode concatenates payloads into a single framed buffer. An empty
// payloads slice yields an empty buffer. Empty individual payloads (len 0)
// are legal and preserve multiplicity on decode.
func Encode(payloads [][]byte) []byte {
	size := 0
	for _, p := range payloads {
		size += 4 + len(p)
	}
	out := make([]byte, 0, size)
	var lenBuf [4]byte
	for _, p := range payloads {
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(p)))
		out = append(out, lenBuf[:]...)
		out = append(out, p...)
	}
	return out
}

// Decode reverses Encode, reading (len, bytes) pairs until the buffer is
// exhausted. A partial trailer — fewer than 4 bytes remaining, or a
// declared length that runs past the end of buf — is an error.
func Decode(buf []byte) ([][]byte, error) {
	var out [][]byte
	pos := 0
	for pos < len(buf) {
		if len(buf)-pos < 4 {
			return nil, fmt.Errorf("framing: partial length prefix at offset %d", pos)
		}
		n := int(binary.LittleEndian.Uint32(buf[pos : pos+4]))
		pos += 4
		if len(buf)-pos < n {
			return nil, fmt.Errorf("framing: declared payload length %d exceeds remaining buffer (%d) at offset %d", n, len(buf)-pos, pos)
		}
		payload := make([]byte, n)
		copy(payload, buf[pos:pos+n])
		out = append(out, payload)
		pos += n
	}
	return out, nil
}
