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

package codec_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/hnet/codec"
)

func TestCodec(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Codec Suite")
}

var _ = Describe("Command framing", func() {
	It("round-trips a command id and body through encode/scan/decode", func() {
		id := codec.CmdID(1, 0)
		frame := codec.EncodeCommand(id, []byte("hi!"))

		f, ok, err := codec.Scan(frame, 8192)
		Expect(err).ToNot(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(f.Kind).To(Equal(codec.KindCommand))
		Expect(f.Size).To(Equal(len(frame)))

		dec, err := codec.DecodeCommand(f.Payload)
		Expect(err).ToNot(HaveOccurred())
		Expect(dec.ID).To(Equal(id))
		Expect(dec.Body).To(Equal([]byte("hi!")))
	})

	It("composes and splits cmd/para symmetrically", func() {
		id := codec.CmdID(7, 42)
		cmd, para := codec.SplitCmdID(id)
		Expect(cmd).To(Equal(uint8(7)))
		Expect(para).To(Equal(uint8(42)))
	})
})

var _ = Describe("Protobuf framing", func() {
	It("round-trips a type name and payload", func() {
		frame := codec.EncodeProtobuf(codec.ChannelOpenName, []byte{1, 2, 3, 4})

		f, ok, err := codec.Scan(frame, 8192)
		Expect(err).ToNot(HaveOccurred())
		Expect(ok).To(BeTrue())

		dec, err := codec.DecodeProtobuf(f.Payload)
		Expect(err).ToNot(HaveOccurred())
		Expect(dec.Name).To(Equal(codec.ChannelOpenName))
		Expect(dec.Body).To(Equal([]byte{1, 2, 3, 4}))
	})
})

var _ = Describe("Scan", func() {
	It("reports incomplete when fewer bytes than the declared frame are present", func() {
		frame := codec.EncodeCommand(codec.CmdID(1, 0), []byte("hello world"))

		_, ok, err := codec.Scan(frame[:len(frame)-3], 8192)
		Expect(err).ToNot(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	It("reports incomplete, not an error, when the buffer is shorter than the header", func() {
		_, ok, err := codec.Scan([]byte{1, 2, 3}, 8192)
		Expect(err).ToNot(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	It("rejects a declared length of zero", func() {
		buf := make([]byte, codec.HeaderSize)
		codec.PutUint32(buf, 0)
		buf[4] = byte(codec.KindCommand)
		_, _, err := codec.Scan(buf, 8192)
		Expect(err).To(HaveOccurred())
	})

	It("rejects a declared length larger than PACKAGE_SIZE-4", func() {
		buf := make([]byte, codec.HeaderSize)
		codec.PutUint32(buf, 0xFFFFFFFF)
		buf[4] = byte(codec.KindCommand)
		_, _, err := codec.Scan(buf, 8192)
		Expect(err).To(HaveOccurred())
	})
})
