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

// Package channel is the full-duplex control link between the master and
// one worker: a socketpair carrying length-framed records and, for the
// "hnet.wChannelOpen" sentinel message, a passed file descriptor.
package channel

import (
	"os"
	"sync"

	"golang.org/x/sys/unix"

	liberr "github.com/nabbar/hnet/errors"
)

// Side is which end of the pair a process holds.
type Side uint8

const (
	// SideMaster is fd [0]: conventionally held by the parent/master.
	SideMaster Side = iota

	// SideWorker is fd [1]: conventionally held by the child/worker.
	SideWorker
)

// Pair is one socketpair(AF_UNIX, SOCK_STREAM) endpoint, non-blocking and
// close-on-exec, held by exactly one process on exactly one side.
type Pair struct {
	mu sync.Mutex

	fd     int
	side   Side
	closed bool
}

// New creates a fresh socketpair and returns both ends; the caller is
// responsible for keeping one and handing the other's fd across fork/exec
// (e.g. via os/exec.Cmd.ExtraFiles) and closing its own copy of the far
// end afterward.
func New() (master, worker *Pair, err error) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, nil, liberr.IoError.Error(err)
	}

	for _, fd := range fds {
		if e := unix.SetNonblock(fd, true); e != nil {
			_ = unix.Close(fds[0])
			_ = unix.Close(fds[1])
			return nil, nil, liberr.IoError.Error(e)
		}
	}

	return &Pair{fd: fds[0], side: SideMaster}, &Pair{fd: fds[1], side: SideWorker}, nil
}

// FromFd wraps an fd inherited across exec (e.g. read from an
// --worker-chan-fd flag pointing into ExtraFiles) as a Pair on side.
func FromFd(fd int, side Side) *Pair {
	return &Pair{fd: fd, side: side}
}

// Fd returns the underlying file descriptor, or -1 once closed.
func (p *Pair) Fd() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return -1
	}

	return p.fd
}

// Side reports which end of the pair this Pair value holds.
func (p *Pair) Side() Side {
	return p.side
}

// Close releases the fd. Close is idempotent.
func (p *Pair) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}

	p.closed = true
	fd := p.fd
	p.fd = -1

	if err := unix.Close(fd); err != nil {
		return liberr.IoError.Error(err)
	}

	return nil
}

// File returns an *os.File wrapping the underlying fd, suitable for
// os/exec.Cmd.ExtraFiles. The returned File takes ownership of the fd;
// do not also Close the Pair afterward.
func (p *Pair) File(name string) *os.File {
	p.mu.Lock()
	fd := p.fd
	p.closed = true
	p.fd = -1
	p.mu.Unlock()

	return os.NewFile(uintptr(fd), name)
}
