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

package socket_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/hnet/network"
	"github.com/nabbar/hnet/socket"
)

func TestSocket(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Socket Suite")
}

var _ = Describe("ConnState", func() {
	It("names every declared state", func() {
		states := []socket.ConnState{
			socket.ConnectionDial,
			socket.ConnectionNew,
			socket.ConnectionRead,
			socket.ConnectionCloseRead,
			socket.ConnectionHandler,
			socket.ConnectionWrite,
			socket.ConnectionCloseWrite,
			socket.ConnectionClose,
		}

		for _, s := range states {
			Expect(s.String()).ToNot(Equal("unknown"))
		}
	})

	It("falls back to unknown for an out-of-range value", func() {
		Expect(socket.ConnState(99).String()).To(Equal("unknown"))
	})

	It("is safe to call concurrently", func() {
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				_ = socket.ConnState(idx % 10).String()
			}(i)
		}
		wg.Wait()
	})
})

var _ = Describe("ErrorFilter", func() {
	It("passes nil through", func() {
		Expect(socket.ErrorFilter(nil)).To(BeNil())
	})

	It("silences routine teardown errors", func() {
		Expect(socket.ErrorFilter(errors.New("use of closed network connection"))).To(BeNil())
		Expect(socket.ErrorFilter(errors.New("broken pipe"))).To(BeNil())
		Expect(socket.ErrorFilter(errors.New("connection reset by peer"))).To(BeNil())
	})

	It("preserves real failures", func() {
		err := errors.New("disk full")
		Expect(socket.ErrorFilter(err)).To(Equal(err))
	})
})

var _ = Describe("TCP listen/connect/accept/recv/send lifecycle", func() {
	It("accepts a dialed connection and exchanges data both ways", func() {
		ln, err := socket.Listen(network.Tcp, "127.0.0.1", 0, 16)
		Expect(err).ToNot(HaveOccurred())
		defer func() { _ = ln.Close() }()

		_, port := ln.HostPort()
		Expect(port).ToNot(BeZero())

		var (
			accepted *socket.Socket
			acceptEr error
			wg       sync.WaitGroup
		)

		wg.Add(1)
		go func() {
			defer wg.Done()
			deadline := time.Now().Add(2 * time.Second)
			for time.Now().Before(deadline) {
				c, e := ln.Accept()
				if c != nil {
					accepted = c
					return
				}
				if e != nil {
					acceptEr = e
					return
				}
				time.Sleep(5 * time.Millisecond)
			}
		}()

		client, err := socket.Connect(network.Tcp, "127.0.0.1", port, time.Second)
		Expect(err).ToNot(HaveOccurred())
		defer func() { _ = client.Close() }()

		wg.Wait()
		Expect(acceptEr).ToNot(HaveOccurred())
		Expect(accepted).ToNot(BeNil())
		defer func() { _ = accepted.Close() }()

		Expect(client.State()).To(Equal(socket.Connected))

		n, err := client.Send([]byte("ping"))
		Expect(err).ToNot(HaveOccurred())
		Expect(n).To(Equal(4))

		buf := make([]byte, 16)
		var got int
		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			rn, rerr := accepted.Recv(buf)
			Expect(rerr).ToNot(HaveOccurred())
			if rn > 0 {
				got = rn
				break
			}
			time.Sleep(5 * time.Millisecond)
		}
		Expect(string(buf[:got])).To(Equal("ping"))
	})

	It("rejects Connect within the timeout when nothing listens", func() {
		_, err := socket.Connect(network.Tcp, "127.0.0.1", 1, 200*time.Millisecond)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Close", func() {
	It("is idempotent", func() {
		ln, err := socket.Listen(network.Tcp, "127.0.0.1", 0, 4)
		Expect(err).ToNot(HaveOccurred())

		Expect(ln.Close()).ToNot(HaveOccurred())
		Expect(ln.Close()).ToNot(HaveOccurred())
		Expect(ln.Fd()).To(Equal(socket.FdUnknown))
	})
})
