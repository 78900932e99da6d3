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

package runner

import (
	"sync"
	"time"
)

// Ticker is a restartable time.Ticker wrapper: reactor.Server uses one
// for its ~10ms tick (heartbeat sweep), master.Master for its worker
// health sweep.
type Ticker struct {
	mu     sync.Mutex
	period time.Duration
	t      *time.Ticker
}

// NewTicker builds a Ticker at the given period. It does not start
// firing until Start is called.
func NewTicker(period time.Duration) *Ticker {
	return &Ticker{period: period}
}

// Start begins firing on C() at the configured period. Calling Start
// while already started restarts with the same period.
func (t *Ticker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.t != nil {
		t.t.Stop()
	}

	t.t = time.NewTicker(t.period)
}

// C returns the tick channel, or nil if Start has not been called.
func (t *Ticker) C() <-chan time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.t == nil {
		return nil
	}

	return t.t.C
}

// Stop halts firing. Safe to call even if never started.
func (t *Ticker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.t != nil {
		t.t.Stop()
		t.t = nil
	}
}

// SetPeriod changes the period for the next Start.
func (t *Ticker) SetPeriod(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.period = d
}
