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

// Package fields carries the structured key/value pairs attached to a log
// entry: worker id, connection fd, remote address, command id.
package fields

import "github.com/sirupsen/logrus"

// Fields is a set of structured log fields. The zero value is not usable;
// always obtain one from New.
type Fields map[string]interface{}

// New returns an empty Fields set.
func New() Fields {
	return make(Fields)
}

// Add sets key to val and returns the receiver for chaining.
func (f Fields) Add(key string, val interface{}) Fields {
	if f == nil {
		f = New()
	}

	f[key] = val
	return f
}

// Clone returns an independent copy of f.
func (f Fields) Clone() Fields {
	n := make(Fields, len(f))

	for k, v := range f {
		n[k] = v
	}

	return n
}

// Merge returns a clone of f with every key of o set, o taking priority on
// collision.
func (f Fields) Merge(o Fields) Fields {
	n := f.Clone()

	for k, v := range o {
		n[k] = v
	}

	return n
}

// Logrus adapts the fields to logrus.Fields for use with (*logrus.Entry).WithFields.
func (f Fields) Logrus() logrus.Fields {
	n := make(logrus.Fields, len(f))

	for k, v := range f {
		n[k] = v
	}

	return n
}
