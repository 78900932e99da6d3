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

package logger_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/hnet/logger"
	logfld "github.com/nabbar/hnet/logger/fields"
	loglvl "github.com/nabbar/hnet/logger/level"
)

var _ = Describe("Logger", func() {
	var (
		buf *bytes.Buffer
		log logger.Logger
	)

	BeforeEach(func() {
		buf = &bytes.Buffer{}
		log = logger.New(buf, loglvl.DebugLevel)
	})

	It("filters messages below the configured level", func() {
		log.SetLevel(loglvl.WarnLevel)
		log.Info("should not appear")
		Expect(buf.String()).To(BeEmpty())
	})

	It("writes messages at or above the configured level", func() {
		log.Warning("disk at %d%%", 91)
		Expect(buf.String()).To(ContainSubstring("disk at 91%"))
	})

	It("stamps derived loggers with extra fields without touching the parent", func() {
		child := log.WithFields(logfld.New().Add("worker", 3))
		child.Error("accept failed")

		Expect(buf.String()).To(ContainSubstring("worker=3"))
		Expect(log.GetFields()).ToNot(HaveKey("worker"))
	})

	It("reports CheckError's pass/fail and only logs the ok path when asked", func() {
		Expect(log.CheckError(loglvl.ErrorLevel, loglvl.NilLevel, "op", nil)).To(BeTrue())
		Expect(buf.String()).To(BeEmpty())

		Expect(log.CheckError(loglvl.ErrorLevel, loglvl.NilLevel, "op", errBoom)).To(BeFalse())
		Expect(buf.String()).To(ContainSubstring("op"))
	})
})

var errBoom = &stringError{"boom"}

type stringError struct{ s string }

func (e *stringError) Error() string { return e.s }
