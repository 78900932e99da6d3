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

package runner_test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/hnet/runner"
)

func TestRunner(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Runner Suite")
}

var _ = Describe("Base", func() {
	It("reports running while the body blocks, then stops and records the error", func() {
		var b runner.Base

		boom := errors.New("boom")

		b.Run(context.Background(), func(ctx context.Context) error {
			<-ctx.Done()
			return boom
		})

		Expect(b.IsRunning()).To(BeTrue())
		Expect(b.Uptime()).To(BeNumerically(">=", 0))

		b.Stop()

		Expect(b.IsRunning()).To(BeFalse())
		Expect(b.LastError()).To(Equal(boom))
	})

	It("ignores a second Run while already running", func() {
		var b runner.Base
		calls := 0

		b.Run(context.Background(), func(ctx context.Context) error {
			calls++
			<-ctx.Done()
			return nil
		})
		b.Run(context.Background(), func(ctx context.Context) error {
			calls++
			<-ctx.Done()
			return nil
		})

		b.Stop()
		Expect(calls).To(Equal(1))
	})
})

var _ = Describe("Ticker", func() {
	It("fires at roughly its configured period once started", func() {
		tk := runner.NewTicker(10 * time.Millisecond)
		tk.Start()
		defer tk.Stop()

		Eventually(tk.C(), time.Second).Should(Receive())
	})

	It("returns a nil channel before Start", func() {
		tk := runner.NewTicker(10 * time.Millisecond)
		Expect(tk.C()).To(BeNil())
	})
})
