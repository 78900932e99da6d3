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

package master

import (
	"fmt"
	"os"
	"strconv"

	"github.com/nabbar/hnet/acceptmutex"
	"github.com/nabbar/hnet/channel"
)

// WorkerEnv marks a re-exec'd process as a worker, read by cmd/hnetd
// before it decides whether to run the master's serve loop or a single
// worker's reactor loop.
const WorkerEnv = "HNET_WORKER"

// Flag names for the three pieces of state a spawned worker inherits
// across exec alongside its ExtraFiles: which slot it was assigned, which
// fd its channel end arrived on, and (for SharedAtomic) which fd the
// mutex segment arrived on.
const (
	FlagWorkerSlot    = "worker-slot"
	FlagWorkerChanFd  = "worker-chan-fd"
	FlagWorkerMutexFd = "worker-mutex-fd"
)

// workerExtraFiles builds the ExtraFiles slice and matching flags for one
// spawned worker: index 0 is always the worker's channel half; index 1,
// present only for SharedAtomic, is the shared mutex memfd.
func workerExtraFiles(pair *channel.Pair, mtx acceptmutex.Mutex) ([]*os.File, []string) {
	files := []*os.File{pair.File("hnet-worker-chan")}
	args := []string{
		fmt.Sprintf("--%s=%d", FlagWorkerChanFd, 3),
	}

	if sa, ok := mtx.(*acceptmutex.SharedAtomic); ok {
		files = append(files, sa.File())
		args = append(args, fmt.Sprintf("--%s=%d", FlagWorkerMutexFd, 4))
	}

	return files, args
}

// AdoptWorkerChannel opens the inherited channel fd named by the
// --worker-chan-fd flag value, for use by cmd/hnetd's worker bootstrap
// path after exec.
func AdoptWorkerChannel(fdFlag string) (*channel.Pair, error) {
	fd, err := strconv.Atoi(fdFlag)
	if err != nil {
		return nil, err
	}

	return channel.FromFd(fd, channel.SideWorker), nil
}

// AdoptWorkerMutex re-maps the inherited SharedAtomic segment named by
// the --worker-mutex-fd flag value. Returns nil, nil when fdFlag is
// empty (AdvisoryLock workers open their own lock file by path instead).
func AdoptWorkerMutex(fdFlag string) (acceptmutex.Mutex, error) {
	if fdFlag == "" {
		return nil, nil
	}

	fd, err := strconv.Atoi(fdFlag)
	if err != nil {
		return nil, err
	}

	return acceptmutex.OpenSharedAtomic(fd)
}
