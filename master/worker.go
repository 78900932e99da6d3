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

package master

import (
	"os/exec"
	"time"

	"github.com/nabbar/hnet/channel"
	"github.com/nabbar/hnet/task"
)

// WorkerStatus is the master's view of one worker's lifecycle.
type WorkerStatus uint8

const (
	WorkerSpawning WorkerStatus = iota
	WorkerRunning
	WorkerDraining
	WorkerExited
)

func (s WorkerStatus) String() string {
	switch s {
	case WorkerSpawning:
		return "spawning"
	case WorkerRunning:
		return "running"
	case WorkerDraining:
		return "draining"
	case WorkerExited:
		return "exited"
	default:
		return "unknown"
	}
}

// Worker is the master's record of one spawned worker process: its slot,
// pid, the master-side half of its control channel wrapped as a Task
// (for AsyncWorker, routed through the master's own reactor-less send
// path), and the raw Pair (for SyncWorker's bypass path).
type Worker struct {
	Slot      int
	Pid       int
	Channel   *channel.Pair
	Task      *task.Task
	Status    WorkerStatus
	StartedAt time.Time

	cmd *exec.Cmd
}

// Alive reports whether the OS process backing this worker is still
// running, per the master's last observation (exit is detected by the
// reap goroutine, not polled here).
func (w *Worker) Alive() bool {
	return w.Status == WorkerRunning || w.Status == WorkerDraining || w.Status == WorkerSpawning
}
