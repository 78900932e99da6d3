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

package socket

// ConnState names the point a connection has reached in its handler
// lifecycle, as reported to task progress callbacks and log fields.
type ConnState uint8

const (
	// ConnectionDial marks an outbound Connect in flight.
	ConnectionDial ConnState = iota

	// ConnectionNew marks a freshly accepted or dialed connection, before
	// any application read/write has happened.
	ConnectionNew

	// ConnectionRead marks an in-progress Recv.
	ConnectionRead

	// ConnectionCloseRead marks the read half being shut down (peer EOF
	// or local half-close).
	ConnectionCloseRead

	// ConnectionHandler marks the application handler running against a
	// decoded frame.
	ConnectionHandler

	// ConnectionWrite marks an in-progress Send.
	ConnectionWrite

	// ConnectionCloseWrite marks the write half being shut down.
	ConnectionCloseWrite

	// ConnectionClose marks the connection fully torn down.
	ConnectionClose
)

// String renders the ConnState's name, or "unknown" for a value outside the
// declared range.
func (c ConnState) String() string {
	switch c {
	case ConnectionDial:
		return "dial"
	case ConnectionNew:
		return "new"
	case ConnectionRead:
		return "read"
	case ConnectionCloseRead:
		return "close-read"
	case ConnectionHandler:
		return "handler"
	case ConnectionWrite:
		return "write"
	case ConnectionCloseWrite:
		return "close-write"
	case ConnectionClose:
		return "close"
	default:
		return "unknown"
	}
}
