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

// Package runner is the ambient start/stop/restart lifecycle shared by
// reactor.Server and master.Master. It governs the lifecycle of a loop
// from the outside; it never adds concurrency inside the loop itself.
package runner

import (
	"context"
	"sync"
	"time"
)

// Runner is implemented by anything with a start/stop lifecycle and a
// single background loop: reactor.Server, master.Master.
type Runner interface {
	// Start launches the loop in a new goroutine and returns once it has
	// begun running (not once it has finished).
	Start(ctx context.Context) error

	// Stop requests the loop end and blocks until it has.
	Stop() error

	// Restart stops then starts the loop again.
	Restart(ctx context.Context) error

	// IsRunning reports whether the loop is currently active.
	IsRunning() bool

	// Uptime reports how long the loop has been running, zero if not
	// running.
	Uptime() time.Duration

	// LastError returns the most recent error the loop's body returned,
	// or nil.
	LastError() error
}

// Base is an embeddable helper implementing the bookkeeping common to
// every Runner (running flag, start time, last error), leaving only the
// actual loop body (Body) to the embedder.
type Base struct {
	mu        sync.Mutex
	running   bool
	startedAt time.Time
	lastErr   error
	done      chan struct{}
	cancel    context.CancelFunc
}

// Body is the function a Runner embedding Base supplies: it blocks until
// ctx is canceled or it decides to exit on its own, and returns whatever
// error (if any) caused it to stop.
type Body func(ctx context.Context) error

// Run starts body in a new goroutine, tracked by Base. Calling Run while
// already running is a no-op.
func (b *Base) Run(ctx context.Context, body Body) {
	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.running = true
	b.startedAt = time.Now()
	b.lastErr = nil
	b.done = make(chan struct{})
	done := b.done
	b.mu.Unlock()

	go func() {
		err := body(runCtx)

		b.mu.Lock()
		b.running = false
		b.lastErr = err
		b.mu.Unlock()

		close(done)
	}()
}

// Stop cancels the running body's context and waits for it to exit.
func (b *Base) Stop() {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return
	}
	cancel := b.cancel
	done := b.done
	b.mu.Unlock()

	cancel()
	<-done
}

func (b *Base) IsRunning() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.running
}

func (b *Base) Uptime() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.running {
		return 0
	}

	return time.Since(b.startedAt)
}

func (b *Base) LastError() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.lastErr
}
