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

package acceptmutex_test

import (
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/hnet/acceptmutex"
)

func TestAcceptMutex(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "AcceptMutex Suite")
}

// behavesAsSingleHolder exercises the Mutex contract common to both
// implementations. newMutex builds one fresh, independent instance.
// newPeer builds a second handle onto the SAME underlying segment/path
// as the one passed to it, for the single-holder contention check.
func behavesAsSingleHolder(newMutex func() acceptmutex.Mutex, newPeer func(acceptmutex.Mutex) acceptmutex.Mutex) {
	It("starts free", func() {
		m := newMutex()
		defer func() { _ = m.Close() }()

		h, err := m.Holder()
		Expect(err).ToNot(HaveOccurred())
		Expect(h).To(Equal(acceptmutex.Free))
	})

	It("grants exactly one of two competing acquires on the same segment", func() {
		m1 := newMutex()
		defer func() { _ = m1.Close() }()
		m2 := newPeer(m1)
		defer func() { _ = m2.Close() }()

		ok1, err := m1.TryAcquire(111)
		Expect(err).ToNot(HaveOccurred())

		ok2, err := m2.TryAcquire(222)
		Expect(err).ToNot(HaveOccurred())

		Expect(ok1 && ok2).To(BeFalse())
		Expect(ok1 || ok2).To(BeTrue())
	})

	It("allows re-acquire after Release", func() {
		m := newMutex()
		defer func() { _ = m.Close() }()

		ok, err := m.TryAcquire(333)
		Expect(err).ToNot(HaveOccurred())
		Expect(ok).To(BeTrue())

		Expect(m.Release(333)).ToNot(HaveOccurred())

		ok2, err := m.TryAcquire(444)
		Expect(err).ToNot(HaveOccurred())
		Expect(ok2).To(BeTrue())
	})

	It("Reset frees the mutex regardless of which process asks", func() {
		m := newMutex()
		defer func() { _ = m.Close() }()

		ok, err := m.TryAcquire(555)
		Expect(err).ToNot(HaveOccurred())
		Expect(ok).To(BeTrue())

		Expect(m.Reset(555)).ToNot(HaveOccurred())

		h, err := m.Holder()
		Expect(err).ToNot(HaveOccurred())
		Expect(h).To(Equal(acceptmutex.Free))
	})
}

var _ = Describe("SharedAtomic", func() {
	behavesAsSingleHolder(
		func() acceptmutex.Mutex {
			m, err := acceptmutex.NewSharedAtomic()
			Expect(err).ToNot(HaveOccurred())
			return m
		},
		func(m acceptmutex.Mutex) acceptmutex.Mutex {
			peer, err := acceptmutex.OpenSharedAtomic(m.(*acceptmutex.SharedAtomic).Fd())
			Expect(err).ToNot(HaveOccurred())
			return peer
		},
	)
})

var _ = Describe("AdvisoryLock", func() {
	var lockPath string

	BeforeEach(func() {
		lockPath = filepath.Join(GinkgoT().TempDir(), "accept.lock")
	})

	behavesAsSingleHolder(
		func() acceptmutex.Mutex {
			m, err := acceptmutex.NewAdvisoryLock(lockPath)
			Expect(err).ToNot(HaveOccurred())
			return m
		},
		func(acceptmutex.Mutex) acceptmutex.Mutex {
			peer, err := acceptmutex.NewAdvisoryLock(lockPath)
			Expect(err).ToNot(HaveOccurred())
			return peer
		},
	)
})
