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
	"sync"

	"golang.org/x/sys/unix"

	liberr "github.com/nabbar/hnet/errors"
)

// AdvisoryLock serializes accept ownership with a non-blocking exclusive
// flock on a well-known path, symmetric with SharedAtomic's behavior but
// needing no shared memory segment or fd inheritance across exec — each
// worker opens the same path independently.
type AdvisoryLock struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	holder int
}

// NewAdvisoryLock opens (creating if necessary) the lock file at path.
// Every cooperating process calls this independently with the same path.
func NewAdvisoryLock(path string) (*AdvisoryLock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, liberr.IoError.Error(err)
	}

	return &AdvisoryLock{path: path, file: f, holder: Free}, nil
}

func (a *AdvisoryLock) TryAcquire(pid int) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	err := unix.Flock(int(a.file.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if err != nil {
		if err == unix.EWOULDBLOCK {
			return false, nil
		}
		return false, liberr.IoError.Error(err)
	}

	a.holder = pid

	return true, nil
}

func (a *AdvisoryLock) Release(pid int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.holder != pid {
		return nil
	}

	if err := unix.Flock(int(a.file.Fd()), unix.LOCK_UN); err != nil {
		return liberr.IoError.Error(err)
	}

	a.holder = Free

	return nil
}

func (a *AdvisoryLock) Holder() (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.holder, nil
}

// Reset forcibly unlocks regardless of the in-process holder bookkeeping:
// used by the master, which holds no local "holder" state of its own for
// a worker's lock, only the pid it last observed.
func (a *AdvisoryLock) Reset(expectPid int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := unix.Flock(int(a.file.Fd()), unix.LOCK_UN); err != nil {
		return liberr.IoError.Error(err)
	}

	if a.holder == expectPid {
		a.holder = Free
	}

	return nil
}

func (a *AdvisoryLock) Close() error {
	if err := a.file.Close(); err != nil {
		return liberr.IoError.Error(err)
	}

	return nil
}
