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

// Package flags holds the process-wide signal-settable flags every reactor
// observes once per loop iteration: a hard stop and a graceful drain
// request. They are written only from signal-delivery contexts (or tests
// standing in for one) and read from the reactor loop.
package flags

import (
	libatm "github.com/nabbar/hnet/atomic"
)

var (
	terminate = libatm.NewValueDefault[bool](false, false)
	quit      = libatm.NewValueDefault[bool](false, false)
)

// Terminate requests an immediate, hard shutdown: the next loop iteration
// tears down tasks, listeners and the accept mutex without draining.
func Terminate() {
	terminate.Store(true)
}

// IsTerminate reports whether a hard shutdown has been requested.
func IsTerminate() bool {
	return terminate.Load()
}

// Quit requests a graceful drain: new accepts cease, existing connections
// are served to completion, then the loop exits.
func Quit() {
	quit.Store(true)
}

// IsQuit reports whether a graceful drain has been requested.
func IsQuit() bool {
	return quit.Load()
}

// Reset clears both flags. Used by tests and by a Runner's Restart.
func Reset() {
	terminate.Store(false)
	quit.Store(false)
}
