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

package task

import (
	"github.com/nabbar/hnet/codec"
	liberr "github.com/nabbar/hnet/errors"
)

// TaskRecv drains one readiness-triggered read from the socket into the
// receive ring, then dispatches every complete frame now buffered. It
// returns the number of frames dispatched.
//
// A non-nil error means the task must be disconnected by the caller
// (ClosedByPeer, IoError, or Framing from an oversized/zero declared
// length) — except for persistent Task kinds (UDP, channel), which the
// caller must keep regardless per the spec's endpoint carve-out.
func (t *Task) TaskRecv() (int, error) {
	t.mu.Lock()
	if t.recvLen >= len(t.recv) {
		t.mu.Unlock()
		return 0, liberr.Framing.Error()
	}
	tail := t.recv[t.recvLen:]
	t.mu.Unlock()

	n, err := t.recvTail(tail)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}

	t.mu.Lock()
	t.recvLen += n
	t.mu.Unlock()

	t.HeartbeatReset()

	return t.drainFrames()
}

// recvTail reads into tail from the task's underlying endpoint. A Task
// bound via BindChannel reads through channel.Pair.RecvFrame instead of
// the plain Socket.Recv, since only recvmsg (not read) retrieves the
// SCM_RIGHTS ancillary fd a `hnet.wChannelOpen` handoff carries; any such
// fd is handed to the registered onFd callback before the frame bytes
// are processed as usual.
func (t *Task) recvTail(tail []byte) (int, error) {
	if t.chanPair == nil {
		return t.Socket.Recv(tail)
	}

	rcv, err := t.chanPair.RecvFrame(tail)
	if err != nil {
		return 0, err
	}

	if rcv.Fd != -1 && t.chanFdHandler != nil {
		t.chanFdHandler(rcv.Fd)
	}

	return len(rcv.Frame), nil
}

// drainFrames pulls every complete frame currently buffered, dispatches
// it, and compacts the residual tail to the front of the buffer.
func (t *Task) drainFrames() (int, error) {
	t.mu.Lock()
	buf := t.recv[:t.recvLen]
	t.mu.Unlock()

	dispatched := 0
	cursor := 0

	for {
		f, ok, err := codec.Scan(buf[cursor:], t.packageSize)
		if err != nil {
			return dispatched, err
		}
		if !ok {
			break
		}

		t.dispatchFrame(f)
		cursor += f.Size
		dispatched++
	}

	t.mu.Lock()
	t.recvLen = copy(t.recv, buf[cursor:])
	t.mu.Unlock()

	return dispatched, nil
}

// dispatchFrame decodes one frame and routes it to its registered
// handler. Unregistered ids/names are dropped silently; the caller (the
// reactor) is expected to log at a higher level if it wants visibility.
func (t *Task) dispatchFrame(f codec.Frame) {
	switch f.Kind {
	case codec.KindCommand:
		dec, err := codec.DecodeCommand(f.Payload)
		if err != nil {
			return
		}
		if dec.ID == codec.CmdID(CmdNull, ParaNull) {
			return
		}
		if h, ok := t.dispatch.Command(dec.ID); ok {
			_ = h(Request{Bytes: dec.Body})
		}

	case codec.KindProtobuf:
		dec, err := codec.DecodeProtobuf(f.Payload)
		if err != nil {
			return
		}
		if h, ok := t.dispatch.Name(dec.Name); ok {
			_ = h(Request{Bytes: dec.Body})
		}
	}
}
