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

import (
	"strconv"
	"time"

	"golang.org/x/sys/unix"

	liberr "github.com/nabbar/hnet/errors"
	"github.com/nabbar/hnet/network"
)

const listenSendBuf = 4 * 1024 * 1024   // ~4 MiB, per spec for listen sockets
const acceptSendBuf = 3 * 1024 * 1024   // ~3 MiB, per spec for accepted sockets

// Listen creates, binds and listens on host:port (or, for Unix sockets, on
// the path carried in host) for the given protocol, with the given listen
// backlog.
func Listen(proto network.Protocol, host string, port int, backlog int) (*Socket, error) {
	fd, sa, err := newSockaddr(proto, host, port)
	if err != nil {
		return nil, err
	}

	if err = unix.Bind(fd, sa); err != nil {
		_ = unix.Close(fd)
		return nil, liberr.IoError.Error(err)
	}

	if proto.IsStream() {
		if err = unix.Listen(fd, backlog); err != nil {
			_ = unix.Close(fd)
			return nil, liberr.IoError.Error(err)
		}
	}

	s := &Socket{
		fd:     fd,
		kind:   TypeListen,
		proto:  proto,
		flag:   FlagBidirectional,
		state:  Listened,
		host:   host,
		port:   port,
		makeTm: time.Now(),
	}

	if proto == network.Tcp || proto == network.Http {
		_ = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
		_ = unix.SetsockoptLinger(fd, &unix.Linger{Onoff: 1, Linger: 0})
		_ = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_SNDBUF, listenSendBuf)
	}

	if err = s.SetNonblock(); err != nil {
		_ = s.Close()
		return nil, err
	}

	return s, nil
}

// Accept accepts one pending connection on a listening Socket, returning a
// new connected Socket with the peer's host/port recorded.
func (s *Socket) Accept() (*Socket, error) {
	s.mu.Lock()
	fd := s.fd
	proto := s.proto
	s.mu.Unlock()

	if fd == FdUnknown {
		return nil, liberr.InvalidArgument.Error()
	}

	nfd, sa, err := unix.Accept(fd)
	if err != nil {
		if errorIsBenign(err) {
			return nil, nil
		}

		return nil, liberr.IoError.Error(err)
	}

	host, port := sockaddrHostPort(sa)

	n := &Socket{
		fd:     nfd,
		kind:   TypeConnect,
		proto:  proto,
		flag:   FlagBidirectional,
		state:  Connected,
		host:   host,
		port:   port,
		makeTm: time.Now(),
	}

	if err = n.SetNonblock(); err != nil {
		_ = n.Close()
		return nil, err
	}

	_ = unix.SetsockoptInt(nfd, unix.SOL_SOCKET, unix.SO_SNDBUF, acceptSendBuf)

	return n, nil
}

// Connect opens an outbound connection to host:port. A positive timeout
// bounds the connect; zero means block (on the non-blocking fd) until the
// kernel resolves it without an explicit deadline loop.
func Connect(proto network.Protocol, host string, port int, timeout time.Duration) (*Socket, error) {
	fd, sa, err := newSockaddr(proto, host, port)
	if err != nil {
		return nil, err
	}

	if err = unix.SetNonblock(fd, true); err != nil {
		_ = unix.Close(fd)
		return nil, liberr.IoError.Error(err)
	}

	err = unix.Connect(fd, sa)
	if err != nil && err != unix.EINPROGRESS {
		_ = unix.Close(fd)
		return nil, liberr.IoError.Error(err)
	}

	if err == unix.EINPROGRESS {
		if werr := waitWritable(fd, timeout); werr != nil {
			_ = unix.Close(fd)
			return nil, werr
		}

		soErr, gerr := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR)
		if gerr != nil {
			_ = unix.Close(fd)
			return nil, liberr.IoError.Error(gerr)
		}
		if soErr != 0 {
			_ = unix.Close(fd)
			return nil, liberr.IoError.Error(unix.Errno(soErr))
		}
	}

	return &Socket{
		fd:     fd,
		kind:   TypeConnect,
		proto:  proto,
		flag:   FlagBidirectional,
		state:  Connected,
		host:   host,
		port:   port,
		makeTm: time.Now(),
	}, nil
}

// waitWritable polls fd for write-readiness, classifying an expired
// deadline as Timeout rather than IoError.
func waitWritable(fd int, timeout time.Duration) error {
	ms := -1
	if timeout > 0 {
		ms = int(timeout.Milliseconds())
	}

	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLOUT}}

	n, err := unix.Poll(fds, ms)
	if err != nil {
		return liberr.IoError.Error(err)
	}
	if n == 0 {
		return liberr.Timeout.Error()
	}

	return nil
}

func newSockaddr(proto network.Protocol, host string, port int) (int, unix.Sockaddr, error) {
	switch proto {
	case network.Tcp, network.Http:
		fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
		if err != nil {
			return 0, nil, liberr.IoError.Error(err)
		}
		return fd, &unix.SockaddrInet4{Port: port, Addr: parseIPv4(host)}, nil

	case network.Udp:
		fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM, 0)
		if err != nil {
			return 0, nil, liberr.IoError.Error(err)
		}
		return fd, &unix.SockaddrInet4{Port: port, Addr: parseIPv4(host)}, nil

	case network.Unix:
		fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM, 0)
		if err != nil {
			return 0, nil, liberr.IoError.Error(err)
		}
		return fd, &unix.SockaddrUnix{Name: host}, nil

	case network.UnixGram:
		fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_DGRAM, 0)
		if err != nil {
			return 0, nil, liberr.IoError.Error(err)
		}
		return fd, &unix.SockaddrUnix{Name: host}, nil

	default:
		return 0, nil, liberr.InvalidArgument.Error()
	}
}

func parseIPv4(host string) [4]byte {
	var out [4]byte

	if host == "" || host == "0.0.0.0" {
		return out
	}

	parts := [4]int{}
	cur, idx := 0, 0

	for i := 0; i < len(host) && idx < 4; i++ {
		c := host[i]
		if c == '.' {
			parts[idx] = cur
			cur, idx = 0, idx+1
			continue
		}
		cur = cur*10 + int(c-'0')
	}
	if idx < 4 {
		parts[idx] = cur
	}

	for i, p := range parts {
		out[i] = byte(p)
	}

	return out
}

func sockaddrHostPort(sa unix.Sockaddr) (string, int) {
	switch v := sa.(type) {
	case *unix.SockaddrInet4:
		return strconv.Itoa(int(v.Addr[0])) + "." + strconv.Itoa(int(v.Addr[1])) + "." +
			strconv.Itoa(int(v.Addr[2])) + "." + strconv.Itoa(int(v.Addr[3])), v.Port
	case *unix.SockaddrUnix:
		return v.Name, 0
	default:
		return "", 0
	}
}
