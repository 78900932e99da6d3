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

package channel

import (
	"golang.org/x/sys/unix"

	liberr "github.com/nabbar/hnet/errors"
)

// ancillarySpace holds one passed fd: CMSG_SPACE(sizeof(int)).
var ancillarySpace = unix.CmsgSpace(4)

// Received is the result of a single RecvFrame call.
type Received struct {
	// Frame is the raw bytes read (not yet validated as a complete
	// codec frame; the caller runs codec.Scan over it).
	Frame []byte

	// Fd is the passed file descriptor, or -1 if none was attached.
	Fd int

	// Truncated is true when the kernel reports MSG_TRUNC or
	// MSG_CTRUNC: the payload and/or the ancillary data did not fit
	// and were dropped by the kernel.
	Truncated bool
}

// RecvFrame reads one datagram-style message into buf plus its ancillary
// data. If the peer closed (n==0), ClosedByPeer is returned. EINTR is
// retried internally; EAGAIN comes back as a benign empty Received with
// no error, same as Socket.Recv.
func (p *Pair) RecvFrame(buf []byte) (Received, error) {
	p.mu.Lock()
	fd := p.fd
	p.mu.Unlock()

	if fd < 0 {
		return Received{Fd: -1}, liberr.InvalidArgument.Error()
	}

	oob := make([]byte, ancillarySpace)

	var n, oobn, flags int
	for {
		var rerr error
		n, oobn, flags, _, rerr = unix.Recvmsg(fd, buf, oob, 0)
		if rerr == nil {
			break
		}
		if rerr == unix.EINTR {
			continue
		}
		if rerr == unix.EAGAIN || rerr == unix.EWOULDBLOCK {
			return Received{Fd: -1}, nil
		}
		return Received{Fd: -1}, liberr.IoError.Error(rerr)
	}

	if n == 0 {
		return Received{Fd: -1}, liberr.ClosedByPeer.Error()
	}

	out := Received{Frame: buf[:n], Fd: -1}

	if flags&unix.MSG_TRUNC != 0 || flags&unix.MSG_CTRUNC != 0 {
		out.Truncated = true
	}

	if oobn > 0 {
		if fds, ferr := extractFd(oob[:oobn]); ferr == nil && len(fds) > 0 {
			out.Fd = fds[0]
		}
	}

	return out, nil
}

// extractFd parses SCM_RIGHTS ancillary data and returns the carried fds.
func extractFd(oob []byte) ([]int, error) {
	msgs, err := unix.ParseSocketControlMessage(oob)
	if err != nil {
		return nil, liberr.Framing.Error(err)
	}

	for _, m := range msgs {
		if m.Header.Level != unix.SOL_SOCKET || m.Header.Type != unix.SCM_RIGHTS {
			continue
		}

		fds, err := unix.ParseUnixRights(&m)
		if err != nil {
			return nil, liberr.Framing.Error(err)
		}

		return fds, nil
	}

	return nil, nil
}
