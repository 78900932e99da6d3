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

// Package socket is the unified non-blocking endpoint abstraction for
// TCP/UDP/Unix/channel sockets: open, bind, listen, connect, accept,
// recv/send, close. Every reactor task owns exactly one Socket.
package socket

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	liberr "github.com/nabbar/hnet/errors"
	"github.com/nabbar/hnet/network"
)

// FdUnknown is the sentinel fd value denoting a closed or never-opened
// Socket.
const FdUnknown = -1

// Type is whether the Socket is the listening end or a connected end.
type Type uint8

const (
	TypeListen Type = iota
	TypeConnect
)

// Flag describes which directions of traffic this Socket carries.
type Flag uint8

const (
	FlagSend Flag = 1 << iota
	FlagRecv
	FlagBidirectional = FlagSend | FlagRecv
)

// State is the Socket's lifecycle state.
type State uint8

const (
	Unconnected State = iota
	Listened
	Connected
)

// Socket is a non-blocking endpoint. The zero value is not usable; obtain
// one from Listen, Connect, Accept or FromFd.
type Socket struct {
	mu sync.Mutex

	fd       int
	kind     Type
	proto    network.Protocol
	flag     Flag
	state    State
	host     string
	port     int
	closed   bool
	makeTm   time.Time
	recvTm   time.Time
	sendTm   time.Time
}

// FromFd wraps an already-open, already-configured fd (typically inherited
// across exec via ExtraFiles) into a Socket. Used by workers to adopt
// listener and channel descriptors passed down by the master.
func FromFd(fd int, kind Type, proto network.Protocol, flag Flag) *Socket {
	return &Socket{
		fd:     fd,
		kind:   kind,
		proto:  proto,
		flag:   flag,
		state:  Connected,
		makeTm: time.Now(),
	}
}

// Fd returns the underlying file descriptor, or FdUnknown if closed.
func (s *Socket) Fd() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.fd
}

func (s *Socket) Protocol() network.Protocol {
	return s.proto
}

func (s *Socket) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

func (s *Socket) HostPort() (string, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.host, s.port
}

// SetNonblock puts the fd in non-blocking mode. All recv/send on the socket
// after this call loop internally on EINTR and surface EAGAIN as (0, nil).
func (s *Socket) SetNonblock() error {
	s.mu.Lock()
	fd := s.fd
	s.mu.Unlock()

	if fd == FdUnknown {
		return liberr.InvalidArgument.Error()
	}

	if err := unix.SetNonblock(fd, true); err != nil {
		return liberr.IoError.Error(err)
	}

	return nil
}

// SetKeepalive enables TCP keepalive with the given idle time, probe
// interval and probe count (seconds). Only meaningful for network.Tcp and
// network.Http sockets.
func (s *Socket) SetKeepalive(idle, intvl, cnt int) error {
	s.mu.Lock()
	fd := s.fd
	s.mu.Unlock()

	if fd == FdUnknown {
		return liberr.InvalidArgument.Error()
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_KEEPALIVE, 1); err != nil {
		return liberr.IoError.Error(err)
	}
	if err := unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_KEEPIDLE, idle); err != nil {
		return liberr.IoError.Error(err)
	}
	if err := unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_KEEPINTVL, intvl); err != nil {
		return liberr.IoError.Error(err)
	}
	if err := unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_KEEPCNT, cnt); err != nil {
		return liberr.IoError.Error(err)
	}

	// TCP_USER_TIMEOUT is best-effort: not every kernel exposes it.
	_ = unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_USER_TIMEOUT, 10*1000)

	return nil
}

// Close releases the fd. Close is idempotent: calling it more than once is
// a no-op after the first call.
func (s *Socket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.fd == FdUnknown {
		s.closed = true
		s.fd = FdUnknown
		return nil
	}

	s.closed = true
	fd := s.fd
	s.fd = FdUnknown
	s.state = Unconnected

	if err := unix.Close(fd); err != nil {
		return liberr.IoError.Error(err)
	}

	return nil
}

// Recv reads into buf. It returns (n, nil) for a successful read including
// n=0 on EAGAIN/no-data; a ClosedByPeer error when the peer closed the
// connection (n==0 on a stream socket); or an IoError otherwise.
func (s *Socket) Recv(buf []byte) (int, error) {
	s.mu.Lock()
	fd := s.fd
	stream := s.proto.IsStream()
	s.mu.Unlock()

	if fd == FdUnknown {
		return 0, liberr.InvalidArgument.Error()
	}

	for {
		n, err := unix.Read(fd, buf)
		if err == nil {
			if n == 0 && stream {
				return 0, liberr.ClosedByPeer.Error()
			}

			s.mu.Lock()
			s.recvTm = time.Now()
			s.mu.Unlock()

			return n, nil
		}

		if err == unix.EINTR {
			continue
		}
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return 0, nil
		}

		return 0, liberr.IoError.Error(err)
	}
}

// Send writes buf. It returns (n, nil) for a successful write including
// n=0 on EAGAIN, or an IoError otherwise.
func (s *Socket) Send(buf []byte) (int, error) {
	s.mu.Lock()
	fd := s.fd
	s.mu.Unlock()

	if fd == FdUnknown {
		return 0, liberr.InvalidArgument.Error()
	}

	for {
		n, err := unix.Write(fd, buf)
		if err == nil {
			s.mu.Lock()
			s.sendTm = time.Now()
			s.mu.Unlock()

			return n, nil
		}

		if err == unix.EINTR {
			continue
		}
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return 0, nil
		}

		return 0, liberr.IoError.Error(err)
	}
}

// errorIsBenign reports whether err is EINTR/EAGAIN-class and should never
// surface as a disconnect.
func errorIsBenign(err error) bool {
	return err == unix.EINTR || err == unix.EAGAIN || err == unix.EWOULDBLOCK
}

// ErrorFilter maps a raw net/unix error to nil when it merely reflects
// routine connection teardown ("use of closed network connection" and
// equivalent syscall-level errors), so callers can log real failures only.
func ErrorFilter(err error) error {
	if err == nil {
		return nil
	}

	if errorIsBenign(err) {
		return nil
	}

	msg := err.Error()
	if strings.Contains(msg, "use of closed network connection") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "connection reset by peer") {
		return nil
	}

	return err
}
