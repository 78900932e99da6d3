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

package channel_test

import (
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/hnet/channel"
	"github.com/nabbar/hnet/codec"
)

func TestChannel(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Channel Suite")
}

var _ = Describe("New", func() {
	It("creates a connected, non-blocking pair", func() {
		m, w, err := channel.New()
		Expect(err).ToNot(HaveOccurred())
		defer func() { _ = m.Close() }()
		defer func() { _ = w.Close() }()

		Expect(m.Side()).To(Equal(channel.SideMaster))
		Expect(w.Side()).To(Equal(channel.SideWorker))
		Expect(m.Fd()).ToNot(Equal(-1))
	})
})

var _ = Describe("SendFrame/RecvFrame", func() {
	It("round-trips a plain command frame with no ancillary data", func() {
		m, w, err := channel.New()
		Expect(err).ToNot(HaveOccurred())
		defer func() { _ = m.Close() }()
		defer func() { _ = w.Close() }()

		frame := codec.EncodeCommand(codec.CmdID(1, 0), []byte("ping"))
		Expect(m.SendFrame(frame, -1)).ToNot(HaveOccurred())

		buf := make([]byte, 256)
		var rcv channel.Received
		Eventually(func() error {
			r, rerr := w.RecvFrame(buf)
			if rerr == nil {
				rcv = r
			}
			return rerr
		}, time.Second, 5*time.Millisecond).Should(Succeed())

		Expect(rcv.Fd).To(Equal(-1))
		Expect(rcv.Truncated).To(BeFalse())

		f, ok, err := codec.Scan(rcv.Frame, 8192)
		Expect(err).ToNot(HaveOccurred())
		Expect(ok).To(BeTrue())

		dec, err := codec.DecodeCommand(f.Payload)
		Expect(err).ToNot(HaveOccurred())
		Expect(dec.Body).To(Equal([]byte("ping")))
	})

	It("passes a file descriptor alongside the hnet.wChannelOpen sentinel", func() {
		m, w, err := channel.New()
		Expect(err).ToNot(HaveOccurred())
		defer func() { _ = m.Close() }()
		defer func() { _ = w.Close() }()

		tmp, err := os.CreateTemp("", "hnet-channel-*")
		Expect(err).ToNot(HaveOccurred())
		defer func() { _ = os.Remove(tmp.Name()) }()
		defer func() { _ = tmp.Close() }()

		frame := codec.EncodeProtobuf(codec.ChannelOpenName, []byte{0, 0, 0, 0})
		Expect(m.SendFrame(frame, int(tmp.Fd()))).ToNot(HaveOccurred())

		buf := make([]byte, 256)
		var rcv channel.Received
		Eventually(func() error {
			r, rerr := w.RecvFrame(buf)
			if rerr == nil {
				rcv = r
			}
			return rerr
		}, time.Second, 5*time.Millisecond).Should(Succeed())

		Expect(rcv.Fd).ToNot(Equal(-1))

		var st1, st2 os.FileInfo
		st1, err = tmp.Stat()
		Expect(err).ToNot(HaveOccurred())

		passed := os.NewFile(uintptr(rcv.Fd), "passed")
		defer func() { _ = passed.Close() }()
		st2, err = passed.Stat()
		Expect(err).ToNot(HaveOccurred())

		Expect(os.SameFile(st1, st2)).To(BeTrue())
	})
})

var _ = Describe("RecvFrame on a closed peer", func() {
	It("reports ClosedByPeer once the far end is closed", func() {
		m, w, err := channel.New()
		Expect(err).ToNot(HaveOccurred())
		defer func() { _ = m.Close() }()

		Expect(w.Close()).ToNot(HaveOccurred())

		buf := make([]byte, 64)
		Eventually(func() error {
			_, rerr := m.RecvFrame(buf)
			return rerr
		}, time.Second, 5*time.Millisecond).Should(HaveOccurred())
	})
})
