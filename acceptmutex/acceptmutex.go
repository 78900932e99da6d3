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

// Package acceptmutex serializes which single worker has its reactor's
// listeners registered at any instant, avoiding the thundering-herd
// wake-up when several workers share one listening socket. Two
// interchangeable implementations provide identical external behavior:
// SharedAtomic (a memfd-backed shared 32-bit CAS) and AdvisoryLock (flock
// on a well-known path).
package acceptmutex

// Mutex is the common interface both accept-mutex implementations
// satisfy. At most one holder may exist across all cooperating processes
// at any instant (single-holder property).
type Mutex interface {
	// TryAcquire attempts to take the mutex for pid, returning true iff
	// it succeeded. Failure is benign: another worker holds it.
	TryAcquire(pid int) (bool, error)

	// Release gives the mutex back up. pid must match the current
	// holder; a mismatched Release is a no-op, not an error, since the
	// master's recovery path (Reset) is the authority for a dead
	// holder.
	Release(pid int) error

	// Holder returns the pid currently holding the mutex, or -1 if
	// free.
	Holder() (int, error)

	// Reset forcibly frees the mutex, used by the master when it
	// observes a worker exit while that worker held the mutex
	// (including under SIGKILL, where the worker never runs its own
	// Release).
	Reset(expectPid int) error

	// Close releases any OS resources (fd, lock file) held by this
	// Mutex value. For SharedAtomic it does not release the mutex itself
	// if held; for AdvisoryLock, closing the lock file drops the flock.
	Close() error
}

// Kind selects which Mutex implementation a Config names.
type Kind uint8

const (
	KindSharedAtomic Kind = iota
	KindAdvisoryLock
)

// Free is the sentinel holder value meaning no worker currently holds
// the mutex.
const Free = -1
