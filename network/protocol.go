/***********************************************************************************************************************
 *
 *   MIT License
 *
 *   Copyright (c) 2022 Nicolas JUHEL
 *
 *   Permission is hereby granted, free of charge, to any person obtaining a copy
 *   of this software and associated documentation files (the "Software"), to deal
 *   in the Software without restriction, including without limitation the rights
 *   to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *   copies of the Software, and to permit persons to whom the Software is
 *   furnished to do so, subject to the following conditions:
 *
 *   The above copyright notice and this permission notice shall be included in all
 *   copies or substantial portions of the Software.
 *
 *   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *   AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *   LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *   OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *   SOFTWARE.
 *
 *
 **********************************************************************************************************************/

// Package network names the wire protocols a listener or an outbound
// connection can speak: the plain transports plus Http (TCP with HTTP
// framing on top) and Channel (the master/worker control socket pair).
package network

import "strings"

// Protocol identifies the transport and framing discipline a Socket or Task
// uses.
type Protocol uint8

const (
	Tcp Protocol = iota
	Udp
	Unix
	UnixGram
	Http
	Channel
)

// Parse converts a case-insensitive protocol name into a Protocol. An
// unrecognized name returns Tcp, the package default.
func Parse(s string) Protocol {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tcp", "tcp4", "tcp6":
		return Tcp
	case "udp", "udp4", "udp6":
		return Udp
	case "unix":
		return Unix
	case "unixgram":
		return UnixGram
	case "http":
		return Http
	case "channel":
		return Channel
	default:
		return Tcp
	}
}

// String returns the canonical lowercase name of the protocol.
func (p Protocol) String() string {
	switch p {
	case Tcp:
		return "tcp"
	case Udp:
		return "udp"
	case Unix:
		return "unix"
	case UnixGram:
		return "unixgram"
	case Http:
		return "http"
	case Channel:
		return "channel"
	default:
		return "tcp"
	}
}

// Network returns the net.Dial/net.Listen network name backing this
// protocol. Http uses the same underlying network as Tcp; Channel has no
// net package equivalent and returns "".
func (p Protocol) Network() string {
	switch p {
	case Tcp, Http:
		return "tcp"
	case Udp:
		return "udp"
	case Unix:
		return "unix"
	case UnixGram:
		return "unixgram"
	default:
		return ""
	}
}

// IsStream reports whether the protocol is connection-oriented (TCP, Unix,
// Http, Channel) as opposed to datagram-oriented (Udp, UnixGram).
func (p Protocol) IsStream() bool {
	switch p {
	case Tcp, Unix, Http, Channel:
		return true
	default:
		return false
	}
}

// IsDatagramEndpoint reports whether the protocol represents an endpoint
// rather than a connection: a socket of this kind is never removed from the
// reactor's task pool on an I/O error.
func (p Protocol) IsDatagramEndpoint() bool {
	switch p {
	case Udp, UnixGram, Channel:
		return true
	default:
		return false
	}
}

// MarshalText implements encoding.TextMarshaler for config decoding.
func (p Protocol) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler for config decoding.
func (p *Protocol) UnmarshalText(text []byte) error {
	*p = Parse(string(text))
	return nil
}
