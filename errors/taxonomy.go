/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
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

package errors

// Error codes shared by every package that sits on the wire path: socket,
// channel, codec and task. A reactor loop classifies a failed syscall or a
// malformed frame into one of these before deciding whether the connection
// is still usable.
const (
	// IoError covers read/write/accept/connect syscall failures that are not
	// a clean peer close and not EAGAIN/EWOULDBLOCK.
	IoError CodeError = iota + 600

	// InvalidArgument is returned for malformed input to a constructor or
	// setter: a bad address, an unsupported protocol, a zero-sized buffer.
	InvalidArgument

	// Timeout is returned when a blocking operation exceeds its deadline.
	// Heartbeat expiry on an idle task is reported by Task.HeartbeatOut,
	// not as an error.
	Timeout

	// ClosedByPeer marks an orderly peer shutdown (EOF, ECONNRESET treated
	// as close) so callers can distinguish it from IoError.
	ClosedByPeer

	// Framing is returned when a length-prefixed frame cannot be used: a
	// declared length of zero or more than PACKAGE_SIZE allows, a payload
	// too short for its Command/Protobuf prefix, or a frame that would
	// overflow a task's buffer.
	Framing

	// Truncated names a frame or datagram cut short. No code path in this
	// module returns it; channel.Received.Truncated reports a truncated
	// datagram as a flag instead.
	Truncated

	// Nothing is a non-error sentinel: the operation made no progress
	// (zero bytes available) but the connection is still healthy.
	Nothing
)

func init() {
	RegisterIdFctMessage(IoError, func(code CodeError) string {
		switch code {
		case IoError:
			return "i/o error"
		case InvalidArgument:
			return "invalid argument"
		case Timeout:
			return "operation timed out"
		case ClosedByPeer:
			return "connection closed by peer"
		case Framing:
			return "invalid frame"
		case Truncated:
			return "truncated frame"
		case Nothing:
			return "no data available"
		default:
			return UnknownMessage
		}
	})
}
