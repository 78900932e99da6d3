/***********************************************************************************************************************
 *
 *   MIT License
 *
 *   Copyright (c) 2022 Nicolas JUHEL
 *
 *   Permission is hereby granted, free of charge, to any person obtaining a copy
 *   of this software and associated documentation files (the "Software"), to deal
 *   in the Software without restriction, including without limitation the rights
 *   to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *   copies of the Software, and to permit persons to whom the Software is
 *   furnished to do so, subject to the following conditions:
 *
 *   The above copyright notice and this permission notice shall be included in all
 *   copies or substantial portions of the Software.
 *
 *   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *   AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *   LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *   OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *   SOFTWARE.
 *
 *
 **********************************************************************************************************************/

package network_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	. "github.com/nabbar/hnet/network"
)

func TestNetwork(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Network Suite")
}

var _ = Describe("Protocol", func() {
	DescribeTable("Parse is case-insensitive and accepts address-family suffixes",
		func(in string, want Protocol) {
			Expect(Parse(in)).To(Equal(want))
		},
		Entry("tcp", "tcp", Tcp),
		Entry("TCP", "TCP", Tcp),
		Entry("tcp4", "tcp4", Tcp),
		Entry("udp", "udp", Udp),
		Entry("unix", "unix", Unix),
		Entry("UnixGram mixed case", "UnixGram", UnixGram),
		Entry("http", "http", Http),
		Entry("channel", "channel", Channel),
	)

	It("defaults unknown protocol names to Tcp", func() {
		Expect(Parse("sctp")).To(Equal(Tcp))
	})

	It("classifies datagram endpoints that are never dropped on I/O error", func() {
		Expect(Udp.IsDatagramEndpoint()).To(BeTrue())
		Expect(UnixGram.IsDatagramEndpoint()).To(BeTrue())
		Expect(Channel.IsDatagramEndpoint()).To(BeTrue())
		Expect(Tcp.IsDatagramEndpoint()).To(BeFalse())
		Expect(Http.IsDatagramEndpoint()).To(BeFalse())
	})

	It("maps Http onto the tcp net package network", func() {
		Expect(Http.Network()).To(Equal("tcp"))
	})
})
