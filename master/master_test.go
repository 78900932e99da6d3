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

// White-box: exercises workerBySlot/reap/spawn's internal bookkeeping
// directly, since setting up a Worker normally requires a real re-exec'd
// hnetd binary that this test suite cannot build.
package master

import (
	"io"
	"os"
	"os/exec"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/hnet/acceptmutex"
	"github.com/nabbar/hnet/channel"
	"github.com/nabbar/hnet/logger"
	loglvl "github.com/nabbar/hnet/logger/level"
	"github.com/nabbar/hnet/network"
	"github.com/nabbar/hnet/socket"
	"github.com/nabbar/hnet/task"
)

func testLogger() logger.Logger {
	return logger.New(io.Discard, loglvl.NilLevel)
}

func TestMaster(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Master Suite")
}

func fakeWorker(slot int) (*Worker, *channel.Pair) {
	masterSide, workerSide, err := channel.New()
	Expect(err).ToNot(HaveOccurred())

	sock := socket.FromFd(masterSide.Fd(), socket.TypeConnect, network.Channel, socket.FlagBidirectional)
	t := task.New(sock, task.TypeChannel, 4096, 0)

	return &Worker{
		Slot:      slot,
		Channel:   masterSide,
		Task:      t,
		Status:    WorkerRunning,
		StartedAt: time.Now(),
	}, workerSide
}

var _ = Describe("WorkerStatus", func() {
	It("names every defined value and falls back for the rest", func() {
		Expect(WorkerSpawning.String()).To(Equal("spawning"))
		Expect(WorkerRunning.String()).To(Equal("running"))
		Expect(WorkerDraining.String()).To(Equal("draining"))
		Expect(WorkerExited.String()).To(Equal("exited"))
		Expect(WorkerStatus(99).String()).To(Equal("unknown"))
	})
})

var _ = Describe("AsyncWorker and Broadcast", func() {
	It("enqueues into the addressed worker's send ring", func() {
		w0, peer0 := fakeWorker(0)
		defer func() { _ = peer0.Close() }()

		m := &Master{workers: []*Worker{w0}}

		Expect(m.AsyncWorker(0, 1, 0, []byte("hi"))).ToNot(HaveOccurred())
		Expect(w0.Task.PendingSend()).To(BeNumerically(">", 0))
	})

	It("rejects an unknown slot", func() {
		m := &Master{}
		Expect(m.AsyncWorker(7, 1, 0, nil)).To(HaveOccurred())
	})

	It("broadcasts to every live worker except the blacklist and the exited", func() {
		w0, peer0 := fakeWorker(0)
		defer func() { _ = peer0.Close() }()
		w1, peer1 := fakeWorker(1)
		defer func() { _ = peer1.Close() }()
		w2, peer2 := fakeWorker(2)
		defer func() { _ = peer2.Close() }()
		w2.Status = WorkerExited

		m := &Master{workers: []*Worker{w0, w1, w2}}

		Expect(m.Broadcast(1, 0, []byte("x"), 1)).ToNot(HaveOccurred())

		Expect(w0.Task.PendingSend()).To(BeNumerically(">", 0))
		Expect(w1.Task.PendingSend()).To(Equal(0))
		Expect(w2.Task.PendingSend()).To(Equal(0))
	})
})

var _ = Describe("SyncWorker", func() {
	It("writes a frame directly over the channel pair, bypassing the task ring", func() {
		w0, peer0 := fakeWorker(0)
		defer func() { _ = peer0.Close() }()

		tmp, err := os.CreateTemp("", "hnet-master-*")
		Expect(err).ToNot(HaveOccurred())
		defer func() { _ = os.Remove(tmp.Name()) }()
		defer func() { _ = tmp.Close() }()

		m := &Master{workers: []*Worker{w0}}

		frame := ChannelOpenFrame()
		Expect(m.SyncWorker(0, frame, int(tmp.Fd()), time.Second)).ToNot(HaveOccurred())

		buf := make([]byte, 256)
		rcv, err := peer0.RecvFrame(buf)
		Expect(err).ToNot(HaveOccurred())
		Expect(rcv.Frame).To(Equal(frame))
		Expect(rcv.Fd).ToNot(Equal(-1))

		Expect(w0.Task.PendingSend()).To(Equal(0))
	})
})

var _ = Describe("reap", func() {
	It("resets the accept mutex when the holding worker dies", func() {
		sa, err := acceptmutex.NewSharedAtomic()
		Expect(err).ToNot(HaveOccurred())
		defer func() { _ = sa.Close() }()

		cmd := exec.Command("sleep", "30")
		Expect(cmd.Start()).To(Succeed())
		pid := cmd.Process.Pid

		ok, err := sa.TryAcquire(pid)
		Expect(err).ToNot(HaveOccurred())
		Expect(ok).To(BeTrue())

		w, peer := fakeWorker(0)
		defer func() { _ = peer.Close() }()
		w.Pid = pid
		w.cmd = cmd

		m := &Master{mtx: sa, workers: []*Worker{w}, log: testLogger()}

		go m.reap(w)

		Expect(cmd.Process.Kill()).To(Succeed())

		Eventually(func() WorkerStatus {
			return w.Status
		}, 2*time.Second, 10*time.Millisecond).Should(Equal(WorkerExited))

		holder, err := sa.Holder()
		Expect(err).ToNot(HaveOccurred())
		Expect(holder).To(Equal(acceptmutex.Free))
	})

	It("leaves the mutex alone when the dead worker did not hold it", func() {
		sa, err := acceptmutex.NewSharedAtomic()
		Expect(err).ToNot(HaveOccurred())
		defer func() { _ = sa.Close() }()

		other := 999999
		_, err = sa.TryAcquire(other)
		Expect(err).ToNot(HaveOccurred())

		cmd := exec.Command("sleep", "30")
		Expect(cmd.Start()).To(Succeed())
		pid := cmd.Process.Pid

		w, peer := fakeWorker(0)
		defer func() { _ = peer.Close() }()
		w.Pid = pid
		w.cmd = cmd

		m := &Master{mtx: sa, workers: []*Worker{w}, log: testLogger()}

		go m.reap(w)
		Expect(cmd.Process.Kill()).To(Succeed())

		Eventually(func() WorkerStatus {
			return w.Status
		}, 2*time.Second, 10*time.Millisecond).Should(Equal(WorkerExited))

		holder, err := sa.Holder()
		Expect(err).ToNot(HaveOccurred())
		Expect(holder).To(Equal(other))
	})
})
