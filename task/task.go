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

// Package task is the per-connection state machine: ring-buffered
// receive/send over an owned Socket, frame decoding, heartbeat tracking,
// and dispatch of decoded messages to registered handlers.
package task

import (
	"sync"
	"time"

	"github.com/nabbar/hnet/channel"
	liberr "github.com/nabbar/hnet/errors"
	"github.com/nabbar/hnet/network"
	"github.com/nabbar/hnet/socket"
)

// Type tags what kind of endpoint this Task wraps, mirroring the owned
// Socket's protocol but kept distinct since a listener Task and a
// connected Task share the same Type.
type Type uint8

const (
	TypeTcp Type = iota
	TypeUdp
	TypeUnix
	TypeChannel
	TypeHttp
)

func TypeFromProtocol(p network.Protocol) Type {
	switch p {
	case network.Tcp:
		return TypeTcp
	case network.Udp, network.UnixGram:
		return TypeUdp
	case network.Unix:
		return TypeUnix
	case network.Http:
		return TypeHttp
	case network.Channel:
		return TypeChannel
	default:
		return TypeTcp
	}
}

// Persistent reports whether this Type's tasks are never removed from the
// pool on an I/O error, because the Task represents the endpoint itself
// rather than one connection among many (spec's UDP/channel carve-out).
func (t Type) Persistent() bool {
	return t == TypeUdp || t == TypeChannel
}

// Request is the view handed to a dispatch handler: a read-only slice into
// the Task's receive buffer, valid only for the duration of the call.
type Request struct {
	Bytes []byte
}

// Task owns exactly one Socket and the three fixed-size buffers (recv,
// send, scratch) that frame its traffic.
type Task struct {
	mu sync.Mutex

	Socket *socket.Socket
	Kind   Type

	packageSize int

	recv     []byte
	recvLen  int // bytes currently buffered, starting at offset 0
	scratch  []byte

	send    []byte
	sendLen int

	heartbeatCount int
	heartbeatMax   int

	dispatch *Dispatcher

	chanPair      *channel.Pair
	chanFdHandler func(fd int)
}

// New builds a Task around sock, sized to packageSize (PACKAGE_SIZE),
// with heartbeatMax missed beats tolerated before HeartbeatOut reports
// true.
func New(sock *socket.Socket, kind Type, packageSize, heartbeatMax int) *Task {
	return &Task{
		Socket:       sock,
		Kind:         kind,
		packageSize:  packageSize,
		recv:         make([]byte, packageSize),
		scratch:      make([]byte, packageSize),
		send:         make([]byte, 0, packageSize),
		heartbeatMax: heartbeatMax,
		dispatch:     NewDispatcher(),
	}
}

// Dispatcher returns the task's command/name dispatch table, for handler
// registration.
func (t *Task) Dispatcher() *Dispatcher {
	return t.dispatch
}

// PendingSend reports how many bytes are currently queued in the send
// ring, awaiting TaskSend.
func (t *Task) PendingSend() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.sendLen
}

// Close tears the task's socket down. Close is idempotent, delegated to
// the owned Socket.
func (t *Task) Close() error {
	return t.Socket.Close()
}

func classifyTimeout(start time.Time, timeout time.Duration) error {
	if timeout > 0 && time.Since(start) >= timeout {
		return liberr.Timeout.Error()
	}

	return nil
}
