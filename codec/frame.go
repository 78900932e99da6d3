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

package codec

import (
	liberr "github.com/nabbar/hnet/errors"
)

// Frame is a single decoded envelope: its payload kind and the payload
// bytes, still a view into the caller's buffer.
type Frame struct {
	Kind    PayloadKind
	Payload []byte

	// Size is the total on-wire size of this frame (header + payload),
	// i.e. how far the caller's read cursor must advance.
	Size int
}

// Scan looks for one complete frame at the start of buf. maxPackage is
// PACKAGE_SIZE: the declared length must satisfy 1 <= length <= maxPackage-4.
//
// Returns (frame, true, nil) when a complete frame was found, (Frame{},
// false, nil) when buf holds fewer bytes than the declared frame needs (the
// caller should wait for more data), and a Framing error when the declared
// length violates its bounds.
func Scan(buf []byte, maxPackage int) (Frame, bool, error) {
	if len(buf) < HeaderSize {
		return Frame{}, false, nil
	}

	total, kind := DecodeHeader(buf)

	if total < 1 || int(total) > maxPackage-4 {
		return Frame{}, false, liberr.Framing.Error()
	}

	need := 4 + int(total)
	if len(buf) < need {
		return Frame{}, false, nil
	}

	return Frame{
		Kind:    kind,
		Payload: buf[HeaderSize:need],
		Size:    need,
	}, true, nil
}
