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
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/hnet/config"
	libdur "github.com/nabbar/hnet/duration"
	"github.com/nabbar/hnet/network"
)

func TestCmd(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Cmd Suite")
}

var _ = Describe("splitListenAddress", func() {
	It("splits host:port for stream/datagram protocols", func() {
		host, port, err := splitListenAddress(network.Tcp, "127.0.0.1:8080")
		Expect(err).ToNot(HaveOccurred())
		Expect(host).To(Equal("127.0.0.1"))
		Expect(port).To(Equal(8080))
	})

	It("carries the whole address as a path for unix sockets", func() {
		host, port, err := splitListenAddress(network.Unix, "/var/run/hnet.sock")
		Expect(err).ToNot(HaveOccurred())
		Expect(host).To(Equal("/var/run/hnet.sock"))
		Expect(port).To(Equal(0))
	})

	It("rejects a malformed tcp address", func() {
		_, _, err := splitListenAddress(network.Tcp, "not-an-address")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("heartbeatMax", func() {
	It("divides the idle timeout by the reactor tick", func() {
		cfg := &config.Config{
			ReactorTick: libdur.Duration(10),
			Heartbeat:   libdur.Duration(100),
		}
		Expect(heartbeatMax(cfg)).To(Equal(10))
	})

	It("floors at one tick rather than zero", func() {
		cfg := &config.Config{
			ReactorTick: libdur.Duration(100),
			Heartbeat:   libdur.Duration(10),
		}
		Expect(heartbeatMax(cfg)).To(Equal(1))
	})

	It("returns zero when no tick is configured", func() {
		cfg := &config.Config{}
		Expect(heartbeatMax(cfg)).To(Equal(0))
	})
})
