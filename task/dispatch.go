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
	"sync"

	"github.com/nabbar/hnet/codec"
)

// CmdNull and ParaNull are the sentinel command/parameter pair reserved
// for heartbeat frames.
const (
	CmdNull  uint8 = 0
	ParaNull uint8 = 0
)

// Handler processes one decoded Request and returns an application status.
// A non-nil error is discarded by the task's dispatch; it never by itself
// disconnects the task (only framing/IO errors from the recv loop do that).
type Handler func(Request) error

// Dispatcher holds the two independent lookup tables a Task's decoded
// frames are routed through: by 16-bit (cmd,para) id for Command payloads,
// and by type name for Protobuf payloads.
type Dispatcher struct {
	mu   sync.RWMutex
	byID map[uint16]Handler
	byNm map[string]Handler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		byID: make(map[uint16]Handler),
		byNm: make(map[string]Handler),
	}
}

// OnCommand registers h for the given (cmd,para) pair.
func (d *Dispatcher) OnCommand(cmd, para uint8, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.byID[codec.CmdID(cmd, para)] = h
}

// OnName registers h for the given Protobuf type name.
func (d *Dispatcher) OnName(name string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.byNm[name] = h
}

// Command looks up the handler registered for id, if any.
func (d *Dispatcher) Command(id uint16) (Handler, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	h, ok := d.byID[id]
	return h, ok
}

// Name looks up the handler registered for name, if any.
func (d *Dispatcher) Name(name string) (Handler, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	h, ok := d.byNm[name]
	return h, ok
}
