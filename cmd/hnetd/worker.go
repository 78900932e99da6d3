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

package main

import (
	"context"
	"net"
	"strconv"

	"github.com/nabbar/hnet/acceptmutex"
	"github.com/nabbar/hnet/channel"
	"github.com/nabbar/hnet/codec"
	"github.com/nabbar/hnet/config"
	"github.com/nabbar/hnet/flags"
	"github.com/nabbar/hnet/internal/metrics"
	"github.com/nabbar/hnet/logger"
	logfld "github.com/nabbar/hnet/logger/fields"
	"github.com/nabbar/hnet/master"
	"github.com/nabbar/hnet/network"
	"github.com/nabbar/hnet/reactor"
	"github.com/nabbar/hnet/socket"
	"github.com/nabbar/hnet/task"
)

// runWorker is the body of a re-exec'd worker: adopt the inherited
// channel and accept-mutex fds, build a reactor over cfg.Listeners, bind
// the control-bus channel task, and run until a quit/terminate signal
// drains the pool.
func runWorker(cfg *config.Config, log logger.Logger, f *serveFlags) error {
	log = log.WithFields(logfld.New().Add("slot", f.workerSlot))

	pair, err := master.AdoptWorkerChannel(f.chanFd)
	if err != nil {
		return err
	}

	mtx, err := adoptWorkerMutex(cfg, f.mutexFd)
	if err != nil {
		return err
	}

	var met *metrics.Registry // workers never expose /metrics themselves; the master does

	srv, err := reactor.New(reactor.Config{
		Timeout:       cfg.ReactorTick.Time(),
		Tick:          cfg.ReactorTick.Time(),
		HeartbeatMax:  heartbeatMax(cfg),
		PackageSize:   cfg.PackageSize,
		UseAcceptTurn: cfg.Workers > 1,
	}, log, met, mtx)
	if err != nil {
		return err
	}

	for _, l := range cfg.Listeners {
		if err = addListener(srv, cfg, l); err != nil {
			return err
		}
	}

	bindControlChannel(srv, pair, cfg, log)

	installSignals()
	flags.Reset()

	return srv.Start(context.Background())
}

// heartbeatMax turns the configured idle timeout into a number of
// reactor ticks, the unit Task.HeartbeatReset/HeartbeatOut count in.
func heartbeatMax(cfg *config.Config) int {
	tick := cfg.ReactorTick.Time()
	if tick <= 0 {
		return 0
	}

	n := int(cfg.Heartbeat.Time() / tick)
	if n < 1 {
		n = 1
	}

	return n
}

func adoptWorkerMutex(cfg *config.Config, mutexFd string) (acceptmutex.Mutex, error) {
	mtx, err := master.AdoptWorkerMutex(mutexFd)
	if err != nil {
		return nil, err
	}
	if mtx != nil {
		return mtx, nil
	}
	if cfg.Workers > 1 && cfg.AcceptMutex == config.AcceptMutexFlock {
		return acceptmutex.NewAdvisoryLock(cfg.AcceptMutexPath)
	}

	return nil, nil
}

// addListener binds one configured listener and registers it with srv.
// Unix/unixgram addresses are filesystem paths carried whole in host;
// tcp/udp/http addresses are split into host and port.
func addListener(srv *reactor.Server, cfg *config.Config, l config.Listener) error {
	proto := network.Parse(l.Network)

	host, port, err := splitListenAddress(proto, l.Address)
	if err != nil {
		return err
	}

	sock, err := socket.Listen(proto, host, port, socketBacklog)
	if err != nil {
		return err
	}

	return srv.AddListener(sock, task.TypeFromProtocol(proto))
}

const socketBacklog = 128

func splitListenAddress(proto network.Protocol, address string) (string, int, error) {
	if proto == network.Unix || proto == network.UnixGram {
		return address, 0, nil
	}

	host, portStr, err := net.SplitHostPort(address)
	if err != nil {
		return "", 0, err
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, err
	}

	return host, port, nil
}

// bindControlChannel wraps the inherited master/worker channel pair as a
// channel Task, registers it with the reactor, and arranges for any fd
// handed off over it (a `hnet.wChannelOpen` listener handoff) to be
// adopted as a new listener.
func bindControlChannel(srv *reactor.Server, pair *channel.Pair, cfg *config.Config, log logger.Logger) {
	sock := socket.FromFd(pair.Fd(), socket.TypeConnect, network.Channel, socket.FlagBidirectional)
	t := task.New(sock, task.TypeChannel, cfg.PackageSize, 0)

	t.BindChannel(pair, func(fd int) {
		l := socket.FromFd(fd, socket.TypeListen, network.Tcp, socket.FlagBidirectional)
		if err := srv.AddListener(l, task.TypeTcp); err != nil {
			log.Warning("adopting handed-off listener fd %d: %s", fd, err.Error())
		}
	})

	t.Dispatcher().OnName(codec.ChannelOpenName, func(r task.Request) error {
		log.Debug("channel-open handshake received")
		return nil
	})
	t.Dispatcher().OnCommand(master.SignalQuit, task.ParaNull, func(r task.Request) error {
		flags.Quit()
		return nil
	})
	t.Dispatcher().OnCommand(master.SignalTerminate, task.ParaNull, func(r task.Request) error {
		flags.Terminate()
		return nil
	})

	_ = srv.AddTask(t, false)
}
