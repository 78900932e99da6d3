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

package reactor

import (
	"golang.org/x/sys/unix"

	"github.com/nabbar/hnet/task"
)

// highWaterMark is the task-pool size above which accept acquisition is
// skipped for a few iterations, biasing new connections toward
// less-loaded peers (accept_disabled backpressure).
const highWaterMark = 4096

// acquireAcceptTurn implements one iteration of the accept-mutex
// protocol's acquire step: if accept-turn is enabled, we don't already
// hold it, and we're not in a backpressure cooldown, try to take the
// mutex and register listeners on success.
func (s *Server) acquireAcceptTurn() {
	if !s.cfg.UseAcceptTurn || s.mtx == nil {
		return
	}

	s.mu.Lock()
	if s.exiting {
		s.mu.Unlock()
		return
	}
	if s.acceptHeld {
		s.mu.Unlock()
		return
	}
	if s.acceptDis > 0 {
		s.acceptDis--
		s.mu.Unlock()
		return
	}
	overloaded := len(s.tasks) > highWaterMark
	s.mu.Unlock()

	if overloaded {
		s.mu.Lock()
		s.acceptDis = 8
		s.mu.Unlock()
		return
	}

	ok, err := s.mtx.TryAcquire(s.pid)
	if err != nil || !ok {
		return
	}

	s.mu.Lock()
	s.acceptHeld = true
	listeners := append([]*task.Task(nil), s.listeners...)
	s.mu.Unlock()

	for _, l := range listeners {
		_ = s.epollAdd(l.Socket.Fd(), unix.EPOLLIN)
	}
}

// releaseAcceptTurn is the release step run at the end of every loop
// iteration when this worker currently holds the mutex.
func (s *Server) releaseAcceptTurn() {
	s.mu.Lock()
	held := s.acceptHeld
	listeners := append([]*task.Task(nil), s.listeners...)
	s.mu.Unlock()

	if !held {
		return
	}

	for _, l := range listeners {
		_ = s.epollDel(l.Socket.Fd())
	}

	_ = s.mtx.Release(s.pid)

	s.mu.Lock()
	s.acceptHeld = false
	s.mu.Unlock()
}
