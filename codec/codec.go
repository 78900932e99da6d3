/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package codec implements the fixed-width integer encoding and the frame
// envelope layout shared by every task: a 4-byte length prefix, a 1-byte
// payload kind, then a Command or Protobuf payload.
//
// Endianness is resolved once per process (see Endian) and must match
// between both peers of a connection; the wire layout itself never changes.
package codec

import (
	"encoding/binary"

	liberr "github.com/nabbar/hnet/errors"
)

// PayloadKind tags the second discipline used inside a frame's payload.
type PayloadKind uint8

const (
	// KindCommand marks a [u16 cmd_id][opaque body] payload.
	KindCommand PayloadKind = 0x01

	// KindProtobuf marks a [u16 name_len][name][body] payload.
	KindProtobuf PayloadKind = 0x02
)

// HeaderSize is the length of the length-prefix plus payload-kind byte that
// precedes every frame's payload.
const HeaderSize = 5

// ChannelOpenName is the sentinel Protobuf type name whose "fd" field is
// carried as SCM_RIGHTS ancillary data instead of inline bytes.
const ChannelOpenName = "hnet.wChannelOpen"

// Endian is the process-wide byte order used to encode and decode every
// fixed-width field. Little-endian matches the spec's on-wire default.
var Endian binary.ByteOrder = binary.LittleEndian

// PutUint16 writes v into b[0:2] using Endian.
func PutUint16(b []byte, v uint16) { Endian.PutUint16(b, v) }

// Uint16 reads a uint16 from b[0:2] using Endian.
func Uint16(b []byte) uint16 { return Endian.Uint16(b) }

// PutUint32 writes v into b[0:4] using Endian.
func PutUint32(b []byte, v uint32) { Endian.PutUint32(b, v) }

// Uint32 reads a uint32 from b[0:4] using Endian.
func Uint32(b []byte) uint32 { return Endian.Uint32(b) }

// CmdID composes a command byte and a parameter byte into the 16-bit
// dispatch key used by the Command payload discipline. The byte order
// matches Endian: little-endian packs (para<<8)|cmd, big-endian packs
// (cmd<<8)|para, so the wire id is identical either way once PutUint16
// writes it out.
func CmdID(cmd, para uint8) uint16 {
	if Endian == binary.LittleEndian {
		return uint16(para)<<8 | uint16(cmd)
	}

	return uint16(cmd)<<8 | uint16(para)
}

// SplitCmdID decomposes a dispatch key back into its command and parameter
// bytes, inverse of CmdID.
func SplitCmdID(id uint16) (cmd, para uint8) {
	if Endian == binary.LittleEndian {
		return uint8(id & 0xff), uint8(id >> 8)
	}

	return uint8(id >> 8), uint8(id & 0xff)
}

// EncodeHeader writes the 5-byte frame header (total_length, payload_kind)
// into b, which must be at least HeaderSize bytes. The on-wire
// total_length field written is 1 (for the kind byte) plus payloadLen.
func EncodeHeader(b []byte, kind PayloadKind, payloadLen int) {
	PutUint32(b, uint32(1+payloadLen))
	b[4] = byte(kind)
}

// DecodeHeader parses the 5-byte frame header in b (which must be at least
// HeaderSize bytes) into the declared total_length and payload kind.
func DecodeHeader(b []byte) (totalLength uint32, kind PayloadKind) {
	return Uint32(b), PayloadKind(b[4])
}

// EncodeCommand returns a complete framed envelope (header + command
// payload) for cmd_id id and body.
func EncodeCommand(id uint16, body []byte) []byte {
	buf := make([]byte, HeaderSize+2+len(body))
	EncodeHeader(buf, KindCommand, 2+len(body))
	PutUint16(buf[HeaderSize:], id)
	copy(buf[HeaderSize+2:], body)
	return buf
}

// EncodeProtobuf returns a complete framed envelope (header + name-prefixed
// payload) for the given type name and serialized body.
func EncodeProtobuf(name string, body []byte) []byte {
	n := len(name)
	buf := make([]byte, HeaderSize+2+n+len(body))
	EncodeHeader(buf, KindProtobuf, 2+n+len(body))
	PutUint16(buf[HeaderSize:], uint16(n))
	copy(buf[HeaderSize+2:], name)
	copy(buf[HeaderSize+2+n:], body)
	return buf
}

// DecodedCommand is the result of decoding a Command-kind payload.
type DecodedCommand struct {
	ID   uint16
	Body []byte
}

// DecodeCommand parses payload (the bytes after the header's kind byte, not
// including it) as a Command payload.
func DecodeCommand(payload []byte) (DecodedCommand, error) {
	if len(payload) < 2 {
		return DecodedCommand{}, liberr.Framing.Error()
	}

	return DecodedCommand{ID: Uint16(payload), Body: payload[2:]}, nil
}

// DecodedProtobuf is the result of decoding a Protobuf-kind payload.
type DecodedProtobuf struct {
	Name string
	Body []byte
}

// DecodeProtobuf parses payload (the bytes after the header's kind byte) as
// a name-prefixed Protobuf payload.
func DecodeProtobuf(payload []byte) (DecodedProtobuf, error) {
	if len(payload) < 2 {
		return DecodedProtobuf{}, liberr.Framing.Error()
	}

	n := int(Uint16(payload))
	if len(payload) < 2+n {
		return DecodedProtobuf{}, liberr.Framing.Error()
	}

	return DecodedProtobuf{
		Name: string(payload[2 : 2+n]),
		Body: payload[2+n:],
	}, nil
}
