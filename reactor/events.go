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

	"github.com/nabbar/hnet/socket"
	"github.com/nabbar/hnet/task"
)

// dispatch routes one epoll event to the accept/read/write/error path.
func (s *Server) dispatch(ev unix.EpollEvent) {
	fd := int(ev.Fd)

	if l := s.listenerByFd(fd); l != nil {
		if ev.Events&(unix.EPOLLERR|unix.EPOLLHUP) != 0 {
			s.log.Warning("listener fd %d reported error", fd)
			return
		}
		s.onAccept(l)
		return
	}

	t := s.taskByFd(fd)
	if t == nil {
		return
	}

	if ev.Events&(unix.EPOLLERR|unix.EPOLLPRI) != 0 {
		s.onTaskError(t)
		return
	}

	if ev.Events&unix.EPOLLIN != 0 {
		s.onReadable(t)
	}

	if ev.Events&unix.EPOLLOUT != 0 {
		s.onWritable(t)
	}
}

func (s *Server) listenerByFd(fd int) *task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range s.listeners {
		if l.Socket.Fd() == fd {
			return l
		}
	}

	return nil
}

func (s *Server) taskByFd(fd int) *task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tasks[fd]
}

// onAccept accepts as many pending connections as cfg.AcceptBurst allows,
// registering each as a new connected Task.
func (s *Server) onAccept(l *task.Task) {
	if s.isExiting() {
		return
	}

	for i := 0; i < s.cfg.AcceptBurst; i++ {
		conn, err := l.Socket.Accept()
		if err != nil {
			s.log.Warning("accept failed: %s", err.Error())
			return
		}
		if conn == nil {
			return
		}

		if err = conn.SetNonblock(); err != nil {
			_ = conn.Close()
			continue
		}

		kind := task.TypeFromProtocol(conn.Protocol())
		t := task.New(conn, kind, s.cfg.PackageSize, s.cfg.HeartbeatMax)

		if err = s.AddTask(t, false); err != nil {
			_ = conn.Close()
			continue
		}

		if s.met != nil {
			s.met.AcceptRecorded(conn.Protocol())
		}

		s.mu.Lock()
		hook := s.onConnect
		s.mu.Unlock()

		if hook != nil {
			hook(t)
		}
	}
}

// onReadable runs one TaskRecv; on a terminal error for a non-persistent
// task, the task is removed.
func (s *Server) onReadable(t *task.Task) {
	_, err := t.TaskRecv()
	if err == nil {
		return
	}

	if filtered := socket.ErrorFilter(err); filtered == nil {
		return
	}

	if !t.Kind.Persistent() {
		s.RemoveTask(t)
	}
}

// onWritable drains the send ring; once empty, write interest is
// dropped.
func (s *Server) onWritable(t *task.Task) {
	if t.PendingSend() == 0 {
		_ = s.DisarmWrite(t)
		return
	}

	_, err := t.TaskSend()
	if err != nil {
		if !t.Kind.Persistent() {
			s.RemoveTask(t)
		}
		return
	}

	if t.PendingSend() == 0 {
		_ = s.DisarmWrite(t)
	}
}

func (s *Server) onTaskError(t *task.Task) {
	if !t.Kind.Persistent() {
		s.RemoveTask(t)
	}
}

// sweepHeartbeats runs the ~10ms tick's heartbeat pass: every connected
// task either gets a heartbeat sent, or is removed if its heartbeat has
// timed out.
func (s *Server) sweepHeartbeats() {
	s.mu.Lock()
	toCheck := make([]*task.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		toCheck = append(toCheck, t)
	}
	s.mu.Unlock()

	for _, t := range toCheck {
		if t.Kind.Persistent() {
			continue
		}

		if t.HeartbeatOut() {
			if s.met != nil {
				s.met.HeartbeatTimeout()
			}
			s.RemoveTask(t)
			continue
		}

		if err := t.HeartbeatSend(); err == nil {
			_ = s.ArmWrite(t)
		}
	}
}
