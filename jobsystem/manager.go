package jobsystem

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/jamestiotio/vkframe/counter"
	"github.com/jamestiotio/vkframe/fiber"
)

const (
	// FiberPoolSize is the fixed fiber pool size.
	FiberPoolSize = 12
	// MaxWorkerThreadCount is the worker cap.
	MaxWorkerThreadCount = 16
)

// JobManager owns the fiber pool, worker threads, job queue, and live
// counters. Its lifecycle methods — Create, Destroy, RunJobs,
// WaitForCounterAndFree — are not safe to call concurrently with one
// another; this is a documented constraint, not an oversight.
type JobManager struct {
	fibers  [FiberPoolSize]*fiber.Fiber
	workers []*WorkerThread
	queue   jobQueue

	liveCounters []*counter.Counter

	group *errgroup.Group
}

// JobSpec is one caller-supplied unit of work: a function and its opaque
// parameter. RunJobs assigns the shared batch counter.
type JobSpec struct {
	Fn    fiber.JobFunc
	Param unsafe.Pointer
}

// Create allocates the fiber pool and spawns numThreads workers.
// numThreads must be between 1 and MaxWorkerThreadCount.
func Create(numThreads int) (*JobManager, error) {
	if numThreads <= 0 || numThreads > MaxWorkerThreadCount {
		return nil, errors.Newf("jobsystem: num_threads %d out of range (must be 1..%d)", numThreads, MaxWorkerThreadCount)
	}

	m := &JobManager{}
	for i := range m.fibers {
		m.fibers[i] = fiber.New()
	}

	g := &errgroup.Group{}
	m.group = g
	m.workers = make([]*WorkerThread, numThreads)
	for i := 0; i < numThreads; i++ {
		w := &WorkerThread{manager: m}
		m.workers[i] = w
		g.Go(w.run)
	}
	return m, nil
}

// claimIdleFiber scans the pool for the first fiber whose active_flag CAS
// succeeds, claiming that fiber. Returns nil if every fiber is resident
// on some worker.
func (m *JobManager) claimIdleFiber() *fiber.Fiber {
	for _, f := range m.fibers {
		if f.TryClaim() {
			return f
		}
	}
	return nil
}

// RunJobs allocates a counter sized to len(specs), enqueues every job
// against it, and returns the counter handle.
func (m *JobManager) RunJobs(specs []JobSpec) *counter.Counter {
	c := counter.New(int32(len(specs)))
	m.liveCounters = append(m.liveCounters, c)
	for _, s := range specs {
		m.queue.pushBack(Job{Fn: s.Fn, Param: s.Param, Counter: c})
	}
	return c
}

// WaitForCounterAndFree busy-waits until c reaches target, then removes
// it from the live-counter list. The busy-wait is a deliberately
// preserved wart rather than an oversight — a condition variable would be
// strictly better, but callers are expected to keep wait batches small.
func (m *JobManager) WaitForCounterAndFree(c *counter.Counter, target int32) {
	for c.Load() != target {
	}
	m.removeLiveCounter(c)
}

func (m *JobManager) removeLiveCounter(c *counter.Counter) {
	for i, lc := range m.liveCounters {
		if lc == c {
			m.liveCounters = append(m.liveCounters[:i], m.liveCounters[i+1:]...)
			return
		}
	}
}

// LiveCounterCount reports how many counters are still outstanding. Tests
// use this to confirm WaitForCounterAndFree actually freed its counter.
func (m *JobManager) LiveCounterCount() int {
	return len(m.liveCounters)
}

// Destroy signals every worker to stop, waits for them to exit, and closes
// every fiber's backing goroutine.
func (m *JobManager) Destroy() error {
	for _, w := range m.workers {
		w.stop()
	}
	err := m.group.Wait()
	for _, f := range m.fibers {
		f.Close()
	}
	m.liveCounters = nil
	return err
}
