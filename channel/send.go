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

package channel

import (
	"golang.org/x/sys/unix"

	"github.com/nabbar/hnet/codec"
	liberr "github.com/nabbar/hnet/errors"
)

// SendFrame writes a fully-framed envelope (as produced by codec.EncodeCommand
// or codec.EncodeProtobuf). If the envelope's payload is Protobuf-kind and
// its type name is codec.ChannelOpenName, fd is attached as SCM_RIGHTS
// ancillary data; otherwise fd is ignored and no ancillary data is sent.
//
// EINTR/EAGAIN are the caller's responsibility to retry; they are returned
// verbatim, wrapped as IoError, so a caller polling write-readiness can
// distinguish them from a hard failure.
func (p *Pair) SendFrame(frame []byte, fd int) error {
	p.mu.Lock()
	sfd := p.fd
	p.mu.Unlock()

	if sfd < 0 {
		return liberr.InvalidArgument.Error()
	}

	var oob []byte
	if fd >= 0 && carriesFd(frame) {
		oob = unix.UnixRights(fd)
	}

	if err := unix.Sendmsg(sfd, frame, oob, nil, 0); err != nil {
		return liberr.IoError.Error(err)
	}

	return nil
}

// carriesFd reports whether frame is a Protobuf-kind envelope whose type
// name is the channel-open sentinel.
func carriesFd(frame []byte) bool {
	f, ok, err := codec.Scan(frame, len(frame)+4)
	if err != nil || !ok || f.Kind != codec.KindProtobuf {
		return false
	}

	dec, err := codec.DecodeProtobuf(f.Payload)
	if err != nil {
		return false
	}

	return dec.Name == codec.ChannelOpenName
}
