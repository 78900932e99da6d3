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
	"github.com/nabbar/hnet/channel"
)

// BindChannel marks t as backed by a full-duplex channel.Pair rather than
// a plain Socket: TaskRecv then reads via pair.RecvFrame (recvmsg) so an
// fd handed off alongside a frame (SCM_RIGHTS, e.g. a `hnet.wChannelOpen`
// message) is not silently dropped the way a plain read would drop it.
// onFd, when non-nil, is invoked with every fd received this way; it is
// the caller's responsibility to close or register the fd.
func (t *Task) BindChannel(pair *channel.Pair, onFd func(fd int)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.chanPair = pair
	t.chanFdHandler = onFd
}
