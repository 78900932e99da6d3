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

package acceptmutex

import (
	"os"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"

	liberr "github.com/nabbar/hnet/errors"
)

// SharedAtomic holds the mutex state as a single 32-bit atomic integer in
// a memfd-backed, MAP_SHARED anonymous segment: -1 means free, any other
// value is the holding pid. Anonymous MAP_SHARED survives fork but not
// exec on its own; the master passes the memfd's fd across exec via
// ExtraFiles (see master.spawn), and each worker re-mmaps it from the
// inherited fd rather than re-creating the segment.
type SharedAtomic struct {
	fd  int
	mem []byte
}

// NewSharedAtomic creates a fresh memfd-backed segment, initialized to
// Free. The returned fd (via Fd()) must be inherited by every worker
// across exec.
func NewSharedAtomic() (*SharedAtomic, error) {
	fd, err := unix.MemfdCreate("hnet-accept-mutex", 0)
	if err != nil {
		return nil, liberr.IoError.Error(err)
	}

	if err = unix.Ftruncate(fd, 4); err != nil {
		_ = unix.Close(fd)
		return nil, liberr.IoError.Error(err)
	}

	s, err := mapSegment(fd)
	if err != nil {
		_ = unix.Close(fd)
		return nil, err
	}

	s.store(Free)

	return s, nil
}

// OpenSharedAtomic re-maps an already-initialized segment from an
// inherited fd (the worker side, after exec).
func OpenSharedAtomic(fd int) (*SharedAtomic, error) {
	return mapSegment(fd)
}

func mapSegment(fd int) (*SharedAtomic, error) {
	mem, err := unix.Mmap(fd, 0, 4, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, liberr.IoError.Error(err)
	}

	return &SharedAtomic{fd: fd, mem: mem}, nil
}

// Fd returns the memfd backing this segment, for ExtraFiles passing.
func (s *SharedAtomic) Fd() int {
	return s.fd
}

// File wraps Fd as an *os.File for os/exec.Cmd.ExtraFiles. Does not take
// ownership; the SharedAtomic still owns the fd for Close.
func (s *SharedAtomic) File() *os.File {
	return os.NewFile(uintptr(s.fd), "hnet-accept-mutex")
}

func (s *SharedAtomic) ptr() *int32 {
	return (*int32)(unsafe.Pointer(&s.mem[0]))
}

func (s *SharedAtomic) load() int32 {
	return atomic.LoadInt32(s.ptr())
}

func (s *SharedAtomic) store(v int32) {
	atomic.StoreInt32(s.ptr(), v)
}

func (s *SharedAtomic) cas(old, new int32) bool {
	return atomic.CompareAndSwapInt32(s.ptr(), old, new)
}

func (s *SharedAtomic) TryAcquire(pid int) (bool, error) {
	return s.cas(Free, int32(pid)), nil
}

func (s *SharedAtomic) Release(pid int) error {
	s.cas(int32(pid), Free)
	return nil
}

func (s *SharedAtomic) Holder() (int, error) {
	return int(s.load()), nil
}

func (s *SharedAtomic) Reset(expectPid int) error {
	s.cas(int32(expectPid), Free)
	return nil
}

func (s *SharedAtomic) Close() error {
	if err := unix.Munmap(s.mem); err != nil {
		return liberr.IoError.Error(err)
	}

	if err := unix.Close(s.fd); err != nil {
		return liberr.IoError.Error(err)
	}

	return nil
}
