package jobsystem

import (
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"

	"github.com/jamestiotio/vkframe/fiber"
)

// idleSleep is the pause a worker takes on an empty queue before retrying.
const idleSleep = 100 * time.Microsecond

// WorkerThread is a kernel worker thread that repeatedly dispatches
// fibers. It pins itself to a real OS thread with runtime.LockOSThread,
// the same way a Vulkan/GL context thread does, so ThreadID reports a
// genuine kernel thread id rather than a goroutine id that could migrate.
type WorkerThread struct {
	manager      *JobManager
	currentFiber *fiber.Fiber
	ThreadID     int
	stopFlag     atomic.Bool
}

// run is the worker's body: record thread_id, then dispatch in a loop
// until stop_flag is set. It returns nil on a clean stop so it can be
// handed straight to an errgroup.
func (w *WorkerThread) run() error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	w.ThreadID = unix.Gettid()

	for !w.stopFlag.Load() {
		w.dispatch()
	}
	return nil
}

// dispatch claims a fiber for a freshly popped job if idle, switches to
// the resident fiber, then releases it if its job returned.
func (w *WorkerThread) dispatch() {
	if w.currentFiber == nil {
		job, ok := w.manager.queue.popFront()
		if !ok {
			time.Sleep(idleSleep)
			return
		}

		claimed := w.manager.claimIdleFiber()
		if claimed == nil {
			// Capacity exhaustion: re-enqueue at the front rather than
			// dropping the job.
			w.manager.queue.pushFront(job)
			return
		}

		claimed.Reset(job.Fn, job.Param, job.Counter)
		w.currentFiber = claimed
	}

	yielded := w.currentFiber.SwitchTo()
	if !yielded {
		w.currentFiber.Release()
		w.currentFiber = nil
	}
	// A yielded fiber stays attached to this worker (implicit affinity)
	// and is retried on the next dispatch() call.
}

// stop signals the worker to exit its loop after the in-flight dispatch
// returns.
func (w *WorkerThread) stop() {
	w.stopFlag.Store(true)
}
