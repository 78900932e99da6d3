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
	"time"

	"github.com/nabbar/hnet/codec"
	liberr "github.com/nabbar/hnet/errors"
)

// Send2Buf frames id/body as a Command envelope and appends it to the send
// ring (async path). On overflow the caller must disconnect the task.
func (t *Task) Send2Buf(cmd, para uint8, body []byte) error {
	return t.enqueue(codec.EncodeCommand(codec.CmdID(cmd, para), body))
}

// Send2BufNamed frames name/body as a Protobuf envelope and appends it to
// the send ring.
func (t *Task) Send2BufNamed(name string, body []byte) error {
	return t.enqueue(codec.EncodeProtobuf(name, body))
}

func (t *Task) enqueue(frame []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.sendLen+len(frame) > t.packageSize {
		return liberr.Framing.Error()
	}

	t.send = append(t.send[:t.sendLen], frame...)
	t.sendLen += len(frame)

	return nil
}

// TaskSend drains the send ring through the socket. It returns the number
// of bytes actually written; EINTR/EAGAIN are benign (0, nil), leaving the
// remainder queued and write interest armed.
func (t *Task) TaskSend() (int, error) {
	t.mu.Lock()
	pending := t.sendLen
	t.mu.Unlock()

	if pending == 0 {
		return 0, nil
	}

	t.mu.Lock()
	buf := t.send[:t.sendLen]
	t.mu.Unlock()

	n, err := t.Socket.Send(buf)
	if err != nil {
		return 0, err
	}

	t.mu.Lock()
	t.sendLen = copy(t.send, t.send[n:t.sendLen])
	t.mu.Unlock()

	return n, nil
}

// SyncSend blocking-writes a fully-framed envelope directly to the socket,
// bypassing the send ring, bounded by timeout. Used for bootstrap
// handshakes outside the reactor loop.
func (t *Task) SyncSend(frame []byte, timeout time.Duration) error {
	start := time.Now()
	off := 0

	for off < len(frame) {
		n, err := t.Socket.Send(frame[off:])
		if err != nil {
			return err
		}

		off += n

		if off == len(frame) {
			return nil
		}

		if terr := classifyTimeout(start, timeout); terr != nil {
			return terr
		}

		time.Sleep(time.Millisecond)
	}

	return nil
}

// SyncRecv blocking-reads exactly one legal, non-heartbeat frame into
// scratch, bounded by timeout. Heartbeat frames (CmdNull/ParaNull) are
// scanned off and discarded rather than returned. wantLen, when non-zero,
// requires the returned frame's payload to be exactly that many bytes;
// a mismatch is a Framing error. Used for bootstrap handshakes before the
// reactor is running.
func (t *Task) SyncRecv(timeout time.Duration, wantLen int) (codec.Frame, error) {
	start := time.Now()
	have := 0

	for {
		n, err := t.Socket.Recv(t.scratch[have:])
		if err != nil {
			return codec.Frame{}, err
		}

		have += n

		for have > 0 {
			f, ok, serr := codec.Scan(t.scratch[:have], t.packageSize)
			if serr != nil {
				return codec.Frame{}, serr
			}
			if !ok {
				break
			}

			have = copy(t.scratch, t.scratch[f.Size:have])

			if isHeartbeatFrame(f) {
				continue
			}

			if wantLen > 0 && len(f.Payload) != wantLen {
				return codec.Frame{}, liberr.Framing.Error()
			}

			return f, nil
		}

		if terr := classifyTimeout(start, timeout); terr != nil {
			return codec.Frame{}, terr
		}

		if have >= len(t.scratch) {
			return codec.Frame{}, liberr.Framing.Error()
		}

		time.Sleep(time.Millisecond)
	}
}

// isHeartbeatFrame reports whether f is the zero-body CmdNull/ParaNull
// heartbeat envelope, the same sentinel drainFrames drops in the
// reactor-driven receive path.
func isHeartbeatFrame(f codec.Frame) bool {
	if f.Kind != codec.KindCommand {
		return false
	}

	dec, err := codec.DecodeCommand(f.Payload)
	if err != nil {
		return false
	}

	return dec.ID == codec.CmdID(CmdNull, ParaNull)
}
