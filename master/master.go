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

// Package master owns the worker process table: spawning workers via
// os/exec.Cmd plus ExtraFiles (the idiomatic replacement for a literal
// fork), reaping them as they exit, propagating signals into the flags
// package, and recovering the accept mutex when a worker dies while
// holding it.
package master

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/nabbar/hnet/acceptmutex"
	"github.com/nabbar/hnet/channel"
	"github.com/nabbar/hnet/config"
	liberr "github.com/nabbar/hnet/errors"
	"github.com/nabbar/hnet/internal/metrics"
	"github.com/nabbar/hnet/logger"
	"github.com/nabbar/hnet/network"
	"github.com/nabbar/hnet/runner"
	"github.com/nabbar/hnet/socket"
	"github.com/nabbar/hnet/task"
)

// MaxProcess is the compile-time upper bound on worker slots; it also
// doubles as the broadcast sentinel value AsyncWorker/SyncWorker accept
// for slot.
const MaxProcess = 4096

// Master coordinates the worker pool: one accept mutex shared by every
// worker, and one Worker record per spawned process.
type Master struct {
	runner.Base

	cfg     config.Config
	cfgPath string
	log     logger.Logger
	met     *metrics.Registry
	mtx     acceptmutex.Mutex

	exe string

	mu      sync.Mutex
	workers []*Worker
	health  *runner.Ticker
}

// New builds a Master from a validated Config loaded from cfgPath
// (re-passed verbatim to every spawned worker so it loads the identical
// configuration). It creates the shared accept mutex up front
// (SharedAtomic or AdvisoryLock, per cfg.AcceptMutex) when more than one
// worker is configured; a single-worker deployment runs with no accept
// mutex at all.
func New(cfg config.Config, cfgPath string, log logger.Logger, met *metrics.Registry) (*Master, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, liberr.IoError.Error(err)
	}

	var mtx acceptmutex.Mutex
	if cfg.Workers > 1 {
		switch cfg.AcceptMutex {
		case config.AcceptMutexFlock:
			mtx, err = acceptmutex.NewAdvisoryLock(cfg.AcceptMutexPath)
		default:
			mtx, err = acceptmutex.NewSharedAtomic()
		}
		if err != nil {
			return nil, err
		}
	}

	return &Master{
		cfg:     cfg,
		cfgPath: cfgPath,
		log:     log,
		met:     met,
		mtx:     mtx,
		exe:     exe,
		health:  runner.NewTicker(time.Second),
	}, nil
}

// Workers returns a snapshot of the current worker table.
func (m *Master) Workers() []*Worker {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*Worker, len(m.workers))
	copy(out, m.workers)

	return out
}

// spawn starts one worker process for slot, wiring its channel pair and
// (when configured) a view of the shared accept mutex across exec.
func (m *Master) spawn(slot int) (*Worker, error) {
	masterSide, workerSide, err := channel.New()
	if err != nil {
		return nil, err
	}

	files, extraArgs := workerExtraFiles(workerSide, m.mtx)

	args := []string{"serve", "--config", m.cfgPath}
	args = append(args, extraArgs...)
	args = append(args, fmt.Sprintf("--%s=%d", FlagWorkerSlot, slot))

	cmd := exec.Command(m.exe, args...)
	cmd.Env = append(os.Environ(), WorkerEnv+"=1")
	cmd.ExtraFiles = files
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err = cmd.Start(); err != nil {
		_ = masterSide.Close()
		_ = workerSide.Close()
		return nil, liberr.IoError.Error(err)
	}

	// The master's copy of the worker-held end is only useful for
	// ExtraFiles inheritance; once the child has it, our fd is a
	// duplicate referring to the same file description and must be
	// closed so only the child's copy keeps it open.
	_ = workerSide.Close()

	sock := socket.FromFd(masterSide.Fd(), socket.TypeConnect, network.Channel, socket.FlagBidirectional)
	t := task.New(sock, task.TypeChannel, m.cfg.PackageSize, 0)
	t.BindChannel(masterSide, nil)

	w := &Worker{
		Slot:      slot,
		Pid:       cmd.Process.Pid,
		Channel:   masterSide,
		Task:      t,
		Status:    WorkerSpawning,
		StartedAt: time.Now(),
		cmd:       cmd,
	}

	m.mu.Lock()
	m.workers = append(m.workers, w)
	m.mu.Unlock()

	go m.reap(w)

	w.Status = WorkerRunning

	return w, nil
}

// reap blocks until w's process exits, then updates its status and, if
// it held the accept mutex, resets the mutex using its pid — the
// recovery path that makes the mutex protocol survive a SIGKILLed
// worker, since a killed worker never runs its own Release.
func (m *Master) reap(w *Worker) {
	_ = w.cmd.Wait()

	m.mu.Lock()
	w.Status = WorkerExited
	m.mu.Unlock()

	_ = w.Task.Close()
	_ = w.Channel.Close()

	if m.mtx != nil {
		if holder, err := m.mtx.Holder(); err == nil && holder == w.Pid {
			_ = m.mtx.Reset(w.Pid)
		}
	}

	m.log.Warning("worker slot %d (pid %d) exited", w.Slot, w.Pid)
}

// Start spawns cfg.Workers processes and launches the master's own
// background loop (worker health sweep); it returns once spawning is
// complete, not once the pool exits.
func (m *Master) Start(ctx context.Context) error {
	n := m.cfg.Workers
	if n < 1 {
		n = 1
	}

	for i := 0; i < n; i++ {
		if _, err := m.spawn(i); err != nil {
			return err
		}
	}

	m.health.Start()
	m.Base.Run(ctx, m.loop)

	return nil
}

// Stop signals every live worker to quit gracefully, waits up to
// cfg.ShutdownGrace, then escalates to SIGKILL for any worker still
// alive, and finally stops the master's own loop.
func (m *Master) Stop() error {
	_ = m.Broadcast(SignalQuit, 0, nil)

	deadline := time.Now().Add(m.cfg.ShutdownGrace.Time())
	for time.Now().Before(deadline) {
		if m.livePids() == 0 {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	for _, w := range m.Workers() {
		if w.Status != WorkerExited {
			_ = w.cmd.Process.Kill()
		}
	}

	m.health.Stop()
	m.Base.Stop()

	if m.mtx != nil {
		return m.mtx.Close()
	}

	return nil
}

func (m *Master) Restart(ctx context.Context) error {
	_ = m.Stop()
	return m.Start(ctx)
}

func (m *Master) livePids() int {
	n := 0
	for _, w := range m.Workers() {
		if w.Status != WorkerExited {
			n++
		}
	}
	return n
}

// loop is the master's own background body: a once-a-second pass
// draining each worker's channel task (AsyncWorker's receive side) until
// ctx is canceled.
func (m *Master) loop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-m.health.C():
			for _, w := range m.Workers() {
				if w.Status == WorkerExited {
					continue
				}
				_, _ = w.Task.TaskRecv()
				_, _ = w.Task.TaskSend()
			}
		}
	}
}
