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

// Package config loads the master/worker configuration: listener set, worker
// pool size, accept-mutex strategy and the durations that drive the reactor
// tick and the per-task heartbeat. Values are read with viper from a
// built-in default, an optional file and HNET_-prefixed environment
// variables; the environment takes precedence over the file, and the file
// over the default.
package config

import (
	libdur "github.com/nabbar/hnet/duration"
	"github.com/nabbar/hnet/logger/level"
)

// Listener describes one address the worker pool will bind and accept
// connections on.
type Listener struct {
	// Name identifies the listener in logs and in the control bus.
	Name string `mapstructure:"name" json:"name" yaml:"name"`

	// Network is one of "tcp", "udp", "unix", "unixgram" or "http" (HTTP
	// framing carried over a TCP listener).
	Network string `mapstructure:"network" json:"network" yaml:"network"`

	// Address is the dial/listen address: "host:port" for tcp/udp/http,
	// a filesystem path for unix/unixgram.
	Address string `mapstructure:"address" json:"address" yaml:"address"`
}

// AcceptMutex selects the implementation workers use to serialize Accept
// calls on a shared listener.
type AcceptMutex string

const (
	// AcceptMutexAtomic uses a memfd-backed shared atomic word, CAS'd on pid.
	AcceptMutexAtomic AcceptMutex = "atomic"

	// AcceptMutexFlock uses an advisory flock on a well-known path.
	AcceptMutexFlock AcceptMutex = "flock"
)

// Config is the complete master/worker configuration tree.
type Config struct {
	// Listeners is the set of addresses every worker binds and accepts on.
	Listeners []Listener `mapstructure:"listeners" json:"listeners" yaml:"listeners"`

	// Workers is the number of worker processes the master maintains.
	// Zero or negative runs a single worker.
	Workers int `mapstructure:"workers" json:"workers" yaml:"workers"`

	// AcceptMutex selects the cross-process accept serialization strategy.
	AcceptMutex AcceptMutex `mapstructure:"accept_mutex" json:"accept_mutex" yaml:"accept_mutex"`

	// AcceptMutexPath is the path used by AcceptMutexFlock, or the memfd
	// name used by AcceptMutexAtomic for diagnostics.
	AcceptMutexPath string `mapstructure:"accept_mutex_path" json:"accept_mutex_path" yaml:"accept_mutex_path"`

	// ReactorTick is how often the reactor's epoll_wait returns to run
	// timer-driven housekeeping (heartbeat scan, pending close).
	ReactorTick libdur.Duration `mapstructure:"reactor_tick" json:"reactor_tick" yaml:"reactor_tick"`

	// Heartbeat is the idle timeout after which a task with no activity is
	// considered dead and closed.
	Heartbeat libdur.Duration `mapstructure:"heartbeat" json:"heartbeat" yaml:"heartbeat"`

	// ConnectTimeout bounds an outbound Connect call.
	ConnectTimeout libdur.Duration `mapstructure:"connect_timeout" json:"connect_timeout" yaml:"connect_timeout"`

	// ShutdownGrace bounds how long the master waits for a worker to drain
	// after a quit signal before it escalates to SIGKILL.
	ShutdownGrace libdur.Duration `mapstructure:"shutdown_grace" json:"shutdown_grace" yaml:"shutdown_grace"`

	// PackageSize is the fixed ring buffer size, in bytes, for every task's
	// receive/send/scratch buffers.
	PackageSize int `mapstructure:"package_size" json:"package_size" yaml:"package_size"`

	// LogLevel is the minimal level emitted by the shared logger.
	LogLevel string `mapstructure:"log_level" json:"log_level" yaml:"log_level"`

	// LogFile, when non-empty, redirects logging output to a file instead
	// of stderr.
	LogFile string `mapstructure:"log_file" json:"log_file" yaml:"log_file"`

	// MetricsListen, when non-empty, exposes Prometheus metrics on this
	// address ("host:port") from the master process.
	MetricsListen string `mapstructure:"metrics_listen" json:"metrics_listen" yaml:"metrics_listen"`
}

// Level parses LogLevel into a level.Level.
func (c Config) Level() level.Level {
	return level.Parse(c.LogLevel)
}

// Validate returns an error describing the first invalid field found, or nil.
func (c Config) Validate() error {
	if len(c.Listeners) == 0 {
		return errConfig("at least one listener is required")
	}

	for _, l := range c.Listeners {
		switch l.Network {
		case "tcp", "udp", "unix", "unixgram", "http":
		default:
			return errConfig("listener %q: unsupported network %q", l.Name, l.Network)
		}

		if l.Address == "" {
			return errConfig("listener %q: empty address", l.Name)
		}
	}

	switch c.AcceptMutex {
	case AcceptMutexAtomic, AcceptMutexFlock:
	default:
		return errConfig("unsupported accept_mutex %q", c.AcceptMutex)
	}

	if c.PackageSize <= 0 {
		return errConfig("package_size must be positive")
	}

	return nil
}
