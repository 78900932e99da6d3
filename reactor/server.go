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

// Package reactor owns the per-worker epoll event loop: the listener set,
// the task pool, the tick timer, and (if configured) the accept-mutex
// protocol that serializes which worker has listeners registered at any
// instant.
package reactor

import (
	"context"
	"os"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/nabbar/hnet/acceptmutex"
	liberr "github.com/nabbar/hnet/errors"
	"github.com/nabbar/hnet/flags"
	"github.com/nabbar/hnet/internal/metrics"
	"github.com/nabbar/hnet/logger"
	"github.com/nabbar/hnet/runner"
	"github.com/nabbar/hnet/socket"
	"github.com/nabbar/hnet/task"
)

// Config bundles the tunables a Server needs, all sourced from
// config.Config at construction time.
type Config struct {
	Timeout       time.Duration // readiness wait timeout, mTimeout (~10ms)
	Tick          time.Duration // heartbeat sweep period, mTick (~10ms)
	HeartbeatMax  int           // kHeartbeat
	PackageSize   int           // PACKAGE_SIZE
	UseAcceptTurn bool          // kAcceptTurn
	AcceptBurst   int           // accepts handled per readiness slice before yielding
}

// Server is one worker's reactor: readiness multiplexer, listener set,
// task pool.
type Server struct {
	runner.Base

	cfg Config
	log logger.Logger
	met *metrics.Registry
	mtx acceptmutex.Mutex
	pid int

	epfd int

	mu          sync.Mutex
	listeners   []*task.Task
	tasks       map[int]*task.Task
	acceptHeld  bool
	acceptDis   int
	exiting     bool
	tick        *runner.Ticker

	onConnect func(*task.Task)
}

// SetAcceptHook registers a callback run once per newly accepted
// connection, after it has been added to the task pool — the place to
// register the connection's command/name dispatch table.
func (s *Server) SetAcceptHook(hook func(*task.Task)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.onConnect = hook
}

// New builds a Server. mtx may be nil when UseAcceptTurn is false or
// there is only one worker.
func New(cfg Config, log logger.Logger, met *metrics.Registry, mtx acceptmutex.Mutex) (*Server, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, liberr.IoError.Error(err)
	}

	if cfg.Tick <= 0 {
		cfg.Tick = 10 * time.Millisecond
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Millisecond
	}
	if cfg.AcceptBurst <= 0 {
		cfg.AcceptBurst = 64
	}

	return &Server{
		cfg:  cfg,
		log:  log,
		met:  met,
		mtx:  mtx,
		pid:  os.Getpid(),
		epfd: epfd,
		tasks: make(map[int]*task.Task),
		tick:  runner.NewTicker(cfg.Tick),
	}, nil
}

// AddListener wraps an already bound+listening Socket as a Task and
// records it in the listener set. When the accept-mutex protocol is
// disabled (single worker), the listener is registered with the reactor
// immediately; otherwise registration is deferred to whichever loop
// iteration next wins the accept mutex (see acquireAcceptTurn).
func (s *Server) AddListener(l *socket.Socket, kind task.Type) error {
	t := task.New(l, kind, s.cfg.PackageSize, s.cfg.HeartbeatMax)

	if !s.cfg.UseAcceptTurn {
		if err := s.epollAdd(l.Fd(), unix.EPOLLIN); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.listeners = append(s.listeners, t)
	s.mu.Unlock()

	return nil
}

// AddTask registers an already-connected Task for read (and optionally
// write) interest and inserts it into the task pool.
func (s *Server) AddTask(t *task.Task, writeAlso bool) error {
	ev := uint32(unix.EPOLLIN)
	if writeAlso {
		ev |= unix.EPOLLOUT
	}

	if err := s.epollAdd(t.Socket.Fd(), ev); err != nil {
		return err
	}

	s.mu.Lock()
	s.tasks[t.Socket.Fd()] = t
	s.mu.Unlock()

	if s.met != nil {
		s.met.ConnectionOpened(t.Socket.Protocol())
	}

	return nil
}

// RemoveTask unregisters and closes t, removing it from the pool. A
// persistent task.Type (UDP/channel) is never removed by the reactor's
// own error handling, only by an explicit call here.
func (s *Server) RemoveTask(t *task.Task) {
	fd := t.Socket.Fd()

	s.mu.Lock()
	delete(s.tasks, fd)
	s.mu.Unlock()

	_ = s.epollDel(fd)
	_ = t.Close()

	if s.met != nil {
		s.met.ConnectionClosed(t.Socket.Protocol())
	}
}

// ArmWrite asks the reactor to also watch for write-readiness on t, used
// after Send2Buf enqueues data into a previously write-idle task.
func (s *Server) ArmWrite(t *task.Task) error {
	return s.epollMod(t.Socket.Fd(), unix.EPOLLIN|unix.EPOLLOUT)
}

// DisarmWrite clears write interest once a task's send ring has drained.
func (s *Server) DisarmWrite(t *task.Task) error {
	return s.epollMod(t.Socket.Fd(), unix.EPOLLIN)
}

func (s *Server) epollAdd(fd int, events uint32) error {
	ev := &unix.EpollEvent{Events: events | unix.EPOLLERR, Fd: int32(fd)}
	if err := unix.EpollCtl(s.epfd, unix.EPOLL_CTL_ADD, fd, ev); err != nil {
		return liberr.IoError.Error(err)
	}
	return nil
}

func (s *Server) epollMod(fd int, events uint32) error {
	ev := &unix.EpollEvent{Events: events | unix.EPOLLERR, Fd: int32(fd)}
	if err := unix.EpollCtl(s.epfd, unix.EPOLL_CTL_MOD, fd, ev); err != nil {
		return liberr.IoError.Error(err)
	}
	return nil
}

func (s *Server) epollDel(fd int) error {
	if err := unix.EpollCtl(s.epfd, unix.EPOLL_CTL_DEL, fd, nil); err != nil {
		return liberr.IoError.Error(err)
	}
	return nil
}

// Start launches the event loop in a new goroutine.
func (s *Server) Start(ctx context.Context) error {
	s.tick.Start()
	s.Base.Run(ctx, s.loop)
	return nil
}

// Stop asks the loop to end and blocks until it has, then releases
// reactor resources (epoll fd, listeners, task pool, accept mutex).
func (s *Server) Stop() error {
	s.Base.Stop()
	s.tick.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.tasks {
		_ = t.Close()
	}
	for _, l := range s.listeners {
		_ = l.Close()
	}

	if s.acceptHeld && s.mtx != nil {
		_ = s.mtx.Release(s.pid)
		s.acceptHeld = false
	}

	return unix.Close(s.epfd)
}

func (s *Server) Restart(ctx context.Context) error {
	_ = s.Stop()
	return s.Start(ctx)
}

func (s *Server) loop(ctx context.Context) error {
	events := make([]unix.EpollEvent, 128)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if flags.IsQuit() {
			s.beginExit()
		}

		s.acquireAcceptTurn()

		n, err := unix.EpollWait(s.epfd, events, int(s.cfg.Timeout.Milliseconds()))
		if err != nil && err != unix.EINTR {
			return liberr.IoError.Error(err)
		}

		for i := 0; i < n; i++ {
			s.dispatch(events[i])
		}

		if flags.IsTerminate() {
			return nil
		}

		select {
		case <-s.tick.C():
			s.sweepHeartbeats()
		default:
		}

		s.releaseAcceptTurn()

		if flags.IsQuit() && s.poolSize() == 0 {
			return nil
		}
	}
}

func (s *Server) poolSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.tasks)
}

// beginExit is the quit-path counterpart to AddListener's immediate
// registration: the first time a graceful quit is observed it flips
// exiting and, for the single-worker case where listeners are
// registered with epoll permanently rather than per accept-turn,
// deregisters them so onAccept is never invoked again. Already
// connected tasks are untouched and keep being served by dispatch
// until the pool drains to zero.
func (s *Server) beginExit() {
	s.mu.Lock()
	if s.exiting {
		s.mu.Unlock()
		return
	}
	s.exiting = true
	useAcceptTurn := s.cfg.UseAcceptTurn
	listeners := append([]*task.Task(nil), s.listeners...)
	s.mu.Unlock()

	if !useAcceptTurn {
		for _, l := range listeners {
			_ = s.epollDel(l.Socket.Fd())
		}
	}
}

func (s *Server) isExiting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.exiting
}
