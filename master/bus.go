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
	"time"

	"github.com/nabbar/hnet/codec"
	liberr "github.com/nabbar/hnet/errors"
)

// SignalQuit and SignalTerminate are the two control-bus commands every
// worker registers a handler for at startup: SignalQuit maps to
// flags.Quit(), SignalTerminate to flags.Terminate(). Both are sent with
// para ParaNull.
const (
	SignalQuit      uint8 = 0xF0
	SignalTerminate uint8 = 0xF1
)

// AsyncWorker enqueues a framed Command envelope to the worker at slot
// via the task mechanism: it goes through the same send ring a reactor
// would drain, and is drained here by the master's own loop (see
// Master.loop) rather than an epoll wait, since the master's side of
// each channel pair is not registered with a reactor of its own.
//
// slot == MaxProcess broadcasts to every live worker instead.
func (m *Master) AsyncWorker(slot int, cmd, para uint8, body []byte) error {
	if slot == MaxProcess {
		return m.Broadcast(cmd, para, body)
	}

	w := m.workerBySlot(slot)
	if w == nil {
		return liberr.InvalidArgument.Error()
	}

	return w.Task.Send2Buf(cmd, para, body)
}

// SyncWorker writes a fully-framed envelope directly over the Channel
// pair, bypassing the task send ring, bounded by timeout. This is the
// bootstrap path used before a worker's own reactor is running, e.g. to
// hand it a listening fd via ChannelOpenFrame.
//
// slot == MaxProcess sends to every live worker instead, returning the
// first error encountered.
func (m *Master) SyncWorker(slot int, frame []byte, fd int, timeout time.Duration) error {
	if slot == MaxProcess {
		var first error

		for _, w := range m.Workers() {
			if w.Status == WorkerExited {
				continue
			}

			if err := m.SyncWorker(w.Slot, frame, fd, timeout); err != nil && first == nil {
				first = err
			}
		}

		return first
	}

	w := m.workerBySlot(slot)
	if w == nil {
		return liberr.InvalidArgument.Error()
	}

	deadline := time.Now().Add(timeout)

	for {
		err := w.Channel.SendFrame(frame, fd)
		if err == nil {
			return nil
		}
		if timeout > 0 && time.Now().After(deadline) {
			return liberr.Timeout.Error(err)
		}
		time.Sleep(time.Millisecond)
	}
}

// Broadcast applies AsyncWorker's send to every live worker, skipping
// any slot named in blacklist.
func (m *Master) Broadcast(cmd, para uint8, body []byte, blacklist ...int) error {
	skip := make(map[int]bool, len(blacklist))
	for _, s := range blacklist {
		skip[s] = true
	}

	var first error

	for _, w := range m.Workers() {
		if w.Status == WorkerExited || skip[w.Slot] {
			continue
		}

		if err := w.Task.Send2Buf(cmd, para, body); err != nil && first == nil {
			first = err
		}
	}

	return first
}

// ChannelOpenFrame builds the bootstrap `hnet.wChannelOpen` envelope used
// with SyncWorker to hand a socket fd to a worker before its reactor has
// started: the envelope carries no meaningful body, the fd itself rides
// as SCM_RIGHTS ancillary data attached by channel.Pair.SendFrame.
func ChannelOpenFrame() []byte {
	return codec.EncodeProtobuf(codec.ChannelOpenName, nil)
}

func (m *Master) workerBySlot(slot int) *Worker {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, w := range m.workers {
		if w.Slot == slot {
			return w
		}
	}

	return nil
}
