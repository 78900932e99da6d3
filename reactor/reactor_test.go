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

package reactor_test

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/hnet/logger"
	"github.com/nabbar/hnet/network"
	"github.com/nabbar/hnet/reactor"
	"github.com/nabbar/hnet/socket"
	"github.com/nabbar/hnet/task"
)

func TestReactor(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Reactor Suite")
}

var _ = Describe("TCP echo", func() {
	It("accepts a connection and echoes a decoded command back with para bumped by one", func() {
		ln, err := socket.Listen(network.Tcp, "127.0.0.1", 0, 16)
		Expect(err).ToNot(HaveOccurred())

		srv, err := reactor.New(reactor.Config{
			Timeout:      5 * time.Millisecond,
			Tick:         10 * time.Millisecond,
			HeartbeatMax: 3,
			PackageSize:  4096,
		}, logger.Default(), nil, nil)
		Expect(err).ToNot(HaveOccurred())

		Expect(srv.AddListener(ln, task.TypeTcp)).ToNot(HaveOccurred())

		srv.SetAcceptHook(func(t *task.Task) {
			t.Dispatcher().OnCommand(1, 0, func(r task.Request) error {
				return t.Send2Buf(1, 1, r.Bytes)
			})
		})

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		Expect(srv.Start(ctx)).ToNot(HaveOccurred())
		defer func() { _ = srv.Stop() }()

		_, port := ln.HostPort()
		client, err := socket.Connect(network.Tcp, "127.0.0.1", port, time.Second)
		Expect(err).ToNot(HaveOccurred())
		defer func() { _ = client.Close() }()

		ct := task.New(client, task.TypeTcp, 4096, 3)

		var frame []byte
		ct.Dispatcher().OnCommand(1, 1, func(r task.Request) error {
			frame = append([]byte(nil), r.Bytes...)
			return nil
		})

		Expect(ct.Send2Buf(1, 0, []byte("hi!"))).ToNot(HaveOccurred())

		Eventually(func() (int, error) {
			return ct.TaskSend()
		}, time.Second, 5*time.Millisecond).Should(BeNumerically(">", 0))

		Eventually(func() []byte {
			_, _ = ct.TaskRecv()
			return frame
		}, time.Second, 5*time.Millisecond).Should(Equal([]byte("hi!")))
	})
})
