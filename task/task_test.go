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

package task_test

import (
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/hnet/channel"
	"github.com/nabbar/hnet/codec"
	"github.com/nabbar/hnet/network"
	"github.com/nabbar/hnet/socket"
	"github.com/nabbar/hnet/task"
)

func TestTask(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Task Suite")
}

func mustPair() (*task.Task, *task.Task) {
	ln, err := socket.Listen(network.Tcp, "127.0.0.1", 0, 4)
	Expect(err).ToNot(HaveOccurred())
	defer func() { _ = ln.Close() }()

	_, port := ln.HostPort()

	accepted := make(chan *socket.Socket, 1)
	go func() {
		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			c, _ := ln.Accept()
			if c != nil {
				accepted <- c
				return
			}
			time.Sleep(5 * time.Millisecond)
		}
		accepted <- nil
	}()

	client, err := socket.Connect(network.Tcp, "127.0.0.1", port, time.Second)
	Expect(err).ToNot(HaveOccurred())

	srv := <-accepted
	Expect(srv).ToNot(BeNil())

	return task.New(client, task.TypeTcp, 4096, 3), task.New(srv, task.TypeTcp, 4096, 3)
}

var _ = Describe("Command dispatch", func() {
	It("routes a decoded frame to its registered handler", func() {
		client, server := mustPair()
		defer func() { _ = client.Close() }()
		defer func() { _ = server.Close() }()

		got := make(chan []byte, 1)
		server.Dispatcher().OnCommand(1, 0, func(r task.Request) error {
			got <- r.Bytes
			return nil
		})

		Expect(client.Send2Buf(1, 0, []byte("hi!"))).ToNot(HaveOccurred())

		Eventually(func() (int, error) {
			return client.TaskSend()
		}, time.Second, 5*time.Millisecond).Should(BeNumerically(">", 0))

		Eventually(func() (int, error) {
			return server.TaskRecv()
		}, time.Second, 5*time.Millisecond).Should(BeNumerically(">", 0))

		Expect(<-got).To(Equal([]byte("hi!")))
	})

	It("drops frames for unregistered ids without error", func() {
		client, server := mustPair()
		defer func() { _ = client.Close() }()
		defer func() { _ = server.Close() }()

		Expect(client.Send2Buf(9, 9, []byte("x"))).ToNot(HaveOccurred())

		Eventually(func() (int, error) {
			return client.TaskSend()
		}, time.Second, 5*time.Millisecond).Should(BeNumerically(">", 0))

		var n int
		var err error
		Eventually(func() error {
			n, err = server.TaskRecv()
			return err
		}, time.Second, 5*time.Millisecond).Should(Succeed())
		Expect(n).To(Equal(1))
	})
})

var _ = Describe("Heartbeat", func() {
	It("resets on successful receive and trips after kHeartbeat misses", func() {
		client, server := mustPair()
		defer func() { _ = client.Close() }()
		defer func() { _ = server.Close() }()

		Expect(server.HeartbeatOut()).To(BeFalse())

		for i := 0; i < 4; i++ {
			Expect(server.HeartbeatSend()).ToNot(HaveOccurred())
		}
		Expect(server.HeartbeatOut()).To(BeTrue())

		server.HeartbeatReset()
		Expect(server.HeartbeatOut()).To(BeFalse())
	})
})

var _ = Describe("BindChannel", func() {
	It("routes a channel-open fd handoff to the bound callback instead of dropping it", func() {
		m, w, err := channel.New()
		Expect(err).ToNot(HaveOccurred())
		defer func() { _ = m.Close() }()
		defer func() { _ = w.Close() }()

		tmp, err := os.CreateTemp("", "hnet-task-channel-*")
		Expect(err).ToNot(HaveOccurred())
		defer func() { _ = os.Remove(tmp.Name()) }()
		defer func() { _ = tmp.Close() }()

		wSock := socket.FromFd(w.Fd(), socket.TypeConnect, network.Channel, socket.FlagBidirectional)
		wTask := task.New(wSock, task.TypeChannel, 4096, 0)

		gotFd := make(chan int, 1)
		wTask.BindChannel(w, func(fd int) { gotFd <- fd })

		frame := codec.EncodeProtobuf(codec.ChannelOpenName, []byte{0, 0, 0, 0})
		Expect(m.SendFrame(frame, int(tmp.Fd()))).ToNot(HaveOccurred())

		Eventually(func() (int, error) {
			return wTask.TaskRecv()
		}, time.Second, 5*time.Millisecond).Should(BeNumerically(">", 0))

		var fd int
		Eventually(gotFd, time.Second, 5*time.Millisecond).Should(Receive(&fd))
		Expect(fd).ToNot(Equal(-1))

		passed := os.NewFile(uintptr(fd), "passed")
		defer func() { _ = passed.Close() }()

		st1, err := tmp.Stat()
		Expect(err).ToNot(HaveOccurred())
		st2, err := passed.Stat()
		Expect(err).ToNot(HaveOccurred())
		Expect(os.SameFile(st1, st2)).To(BeTrue())
	})

	It("falls back to a plain socket read when no channel.Pair is bound", func() {
		client, server := mustPair()
		defer func() { _ = client.Close() }()
		defer func() { _ = server.Close() }()

		Expect(client.Send2Buf(1, 0, []byte("unbound"))).ToNot(HaveOccurred())

		Eventually(func() (int, error) {
			return client.TaskSend()
		}, time.Second, 5*time.Millisecond).Should(BeNumerically(">", 0))

		Eventually(func() (int, error) {
			return server.TaskRecv()
		}, time.Second, 5*time.Millisecond).Should(BeNumerically(">", 0))
	})
})

var _ = Describe("Send2Buf overflow", func() {
	It("rejects a body that would overflow PACKAGE_SIZE", func() {
		client, server := mustPair()
		defer func() { _ = client.Close() }()
		defer func() { _ = server.Close() }()

		big := make([]byte, 8192)
		Expect(client.Send2Buf(1, 0, big)).To(HaveOccurred())
	})
})
