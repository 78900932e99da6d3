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

// Package metrics is the optional Prometheus instrumentation a reactor
// and master touch at the same points they already touch the task pool
// and the accept mutex. A nil *Registry is valid everywhere it's
// accepted: every call becomes a no-op, so wiring metrics in costs
// nothing when the deployment has no scrape target configured.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nabbar/hnet/network"
)

// Registry wraps a dedicated prometheus.Registry (not the global default)
// with the collectors hnet exposes.
type Registry struct {
	reg *prometheus.Registry

	openConns       *prometheus.GaugeVec
	accepts         *prometheus.CounterVec
	framingErrors   prometheus.Counter
	heartbeatOut    prometheus.Counter
	acceptHoldTime  prometheus.Histogram
}

// New builds a Registry with every collector pre-registered.
func New() *Registry {
	r := &Registry{reg: prometheus.NewRegistry()}

	r.openConns = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "hnet_open_connections",
		Help: "Currently open connections, by protocol.",
	}, []string{"protocol"})

	r.accepts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hnet_accepts_total",
		Help: "Accepted connections, by protocol.",
	}, []string{"protocol"})

	r.framingErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hnet_framing_errors_total",
		Help: "Frames rejected for violating the declared-length bounds.",
	})

	r.heartbeatOut = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hnet_heartbeat_timeouts_total",
		Help: "Tasks removed for exceeding the missed-heartbeat threshold.",
	})

	r.acceptHoldTime = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "hnet_accept_mutex_hold_seconds",
		Help:    "Duration a worker held the accept mutex per acquisition.",
		Buckets: prometheus.DefBuckets,
	})

	r.reg.MustRegister(r.openConns, r.accepts, r.framingErrors, r.heartbeatOut, r.acceptHoldTime)

	return r
}

// Handler returns the promhttp handler for this registry's collectors,
// to be mounted at Config.MetricsListen.
func (r *Registry) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}

	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

func (r *Registry) ConnectionOpened(p network.Protocol) {
	if r == nil {
		return
	}
	r.openConns.WithLabelValues(p.String()).Inc()
}

func (r *Registry) ConnectionClosed(p network.Protocol) {
	if r == nil {
		return
	}
	r.openConns.WithLabelValues(p.String()).Dec()
}

func (r *Registry) AcceptRecorded(p network.Protocol) {
	if r == nil {
		return
	}
	r.accepts.WithLabelValues(p.String()).Inc()
}

func (r *Registry) FramingError() {
	if r == nil {
		return
	}
	r.framingErrors.Inc()
}

func (r *Registry) HeartbeatTimeout() {
	if r == nil {
		return
	}
	r.heartbeatOut.Inc()
}

func (r *Registry) AcceptMutexHeld(d time.Duration) {
	if r == nil {
		return
	}
	r.acceptHoldTime.Observe(d.Seconds())
}
