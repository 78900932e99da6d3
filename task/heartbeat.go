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

// HeartbeatSend enqueues a zero-body heartbeat frame (CmdNull/ParaNull)
// and increments the missed-heartbeat counter; HeartbeatReset (called on
// any successful receive) is what brings it back down.
func (t *Task) HeartbeatSend() error {
	t.mu.Lock()
	t.heartbeatCount++
	t.mu.Unlock()

	return t.Send2Buf(CmdNull, ParaNull, nil)
}

// HeartbeatReset zeroes the missed-heartbeat counter.
func (t *Task) HeartbeatReset() {
	t.mu.Lock()
	t.heartbeatCount = 0
	t.mu.Unlock()
}

// HeartbeatOut reports whether the missed-heartbeat counter has exceeded
// the task's configured threshold (kHeartbeat).
func (t *Task) HeartbeatOut() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.heartbeatCount > t.heartbeatMax
}
