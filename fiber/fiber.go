// Package fiber implements a user-space execution context: a fixed-size
// stack budget, atomic ownership claims, and an explicit suspend/resume
// point a job uses to hand control back to its worker without the OS
// scheduler ever being involved.
//
// The classic implementation of this does the switch as raw x86-64 SysV
// register-save-and-`ret` stack surgery: park the current context's
// callee-saved registers on its own stack, swap the stack pointer, and
// `ret` into whatever the new stack's top now points at. That trick depends
// on the stack being a dumb block of bytes the runtime never looks at. Go's
// goroutine stacks are not that — they move (the runtime copies and
// relocates them on growth) and the garbage collector walks them using
// stack maps the compiler emits per function. Parking a live Go call chain
// by yanking SP out from under it and resuming it later on a stack the
// collector and scheduler have never heard of is exactly the kind of thing
// that's safe in C and undefined in Go. This package hides the switch
// behind a goroutine-per-fiber rendezvous instead of an assembly opcode:
// each Fiber owns one persistent goroutine and a pair of unbuffered
// channels, and SwitchTo/Yield become a channel handshake rather than a
// register swap. The externally observable contract — exactly one owner
// per fiber, completion counted exactly once, a fiber that yields remains
// attached to its claiming worker, no scheduling guarantee across
// different fibers — is preserved exactly.
package fiber

import (
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/cockroachdb/errors"

	"github.com/jamestiotio/vkframe/counter"
)

const (
	// StackSize is the fixed per-fiber stack budget. A fiber's goroutine
	// does not literally run on this slab — see the package doc — but
	// every fiber still reserves and carries it, so the pool's total
	// footprint matches what a raw-stack-switching implementation would
	// allocate.
	StackSize = 65536
	// StackAlignment is the alignment a raw x86-64 stack switch would
	// require of that budget.
	StackAlignment = 16
	// CalleeSavedCount is the x86-64 SysV callee-saved register count a
	// raw switch routine would park on every transfer: rbx, rbp, r12, r13,
	// r14, r15. Recorded here for parity even though this port's switch
	// has no registers to save.
	CalleeSavedCount = 6
)

// JobFunc is a job function: fn(param).
type JobFunc func(param unsafe.Pointer)

// signal is what a fiber's goroutine sends back to whichever side resumed
// it, reporting why it stopped running.
type signal struct {
	yielded bool
}

// Fiber is an execution context. The zero value is not usable; construct
// with New. Fibers are pre-allocated once by the job manager and reused for
// the program's lifetime — Reset re-primes an idle fiber for a new job
// without spawning a new goroutine.
type Fiber struct {
	stack []byte // reserved stack budget; see the package doc

	jobParam unsafe.Pointer
	job      JobFunc

	completionCounter *counter.Counter
	completed         atomic.Bool
	active            atomic.Bool // CAS-claimed by a worker

	resume   chan struct{} // resumer -> fiber goroutine: run (or keep running)
	toCaller chan signal   // fiber goroutine -> resumer: stopped running, here's why
	closed   atomic.Bool
}

// New allocates a fiber with its own reserved stack budget and starts its
// backing goroutine. The goroutine parks immediately, waiting for the first
// Reset+SwitchTo.
func New() *Fiber {
	f := &Fiber{
		stack:    make([]byte, StackSize+StackAlignment),
		resume:   make(chan struct{}),
		toCaller: make(chan signal),
	}
	go f.loop()
	return f
}

// loop is the fiber's one permanent goroutine. It blocks on resume between
// jobs and registers itself so Yield, called from arbitrary depth inside
// the running job, can find its way back here.
func (f *Fiber) loop() {
	for range f.resume {
		registerCurrent(f)
		f.job(f.jobParam)
		unregisterCurrent()
		f.completionCounter.Dec()
		f.completed.Store(true)
		f.toCaller <- signal{yielded: false}
	}
}

// TryClaim atomically claims the fiber for exclusive use by one worker, so
// that exactly one worker owns a running fiber at a time. It returns false
// if the fiber is already claimed.
func (f *Fiber) TryClaim() bool {
	return f.active.CompareAndSwap(false, true)
}

// Release returns the fiber to the idle pool.
func (f *Fiber) Release() {
	f.completed.Store(false)
	f.active.Store(false)
}

// Completed reports whether the fiber's job function has returned.
func (f *Fiber) Completed() bool {
	return f.completed.Load()
}

// Reset primes the fiber for a new job: the job, its param, and the
// counter it must decrement on exit are recorded on the fiber before the
// first SwitchTo.
func (f *Fiber) Reset(job JobFunc, param unsafe.Pointer, completion *counter.Counter) {
	f.job = job
	f.jobParam = param
	f.completionCounter = completion
	f.completed.Store(false)
}

// SwitchTo resumes the fiber — starting its job if this is the first
// resume since Reset, or continuing it past its last Yield otherwise — and
// blocks until the fiber stops running again, either because it yielded or
// because its job returned. It reports whether the fiber yielded.
func (f *Fiber) SwitchTo() (yielded bool) {
	f.resume <- struct{}{}
	sig := <-f.toCaller
	return sig.yielded
}

// Close stops the fiber's backing goroutine. Only safe to call when the
// fiber is idle (not resident on any worker, not parked mid-Yield).
func (f *Fiber) Close() {
	if f.closed.CompareAndSwap(false, true) {
		close(f.resume)
	}
}

// currentFibers is a goroutine-local-storage stand-in: a registry keyed by
// the calling goroutine's id, so Yield can identify its host without a
// fixed-size worker table or a linear scan.
var currentFibers sync.Map // goroutine id (int64) -> *Fiber

func registerCurrent(f *Fiber) {
	currentFibers.Store(goroutineID(), f)
}

func unregisterCurrent() {
	currentFibers.Delete(goroutineID())
}

// Yield is called from inside a job function. It suspends the calling
// fiber and transfers control back to whatever called SwitchTo on it,
// resuming only when that caller calls SwitchTo again.
//
// Calling Yield from a goroutine that isn't running a fiber job is a
// programming error.
func Yield() {
	id := goroutineID()
	v, ok := currentFibers.Load(id)
	if !ok {
		panic(errors.New("fiber: Yield called from a goroutine that is not running a fiber job"))
	}
	f := v.(*Fiber)
	f.toCaller <- signal{yielded: true}
	<-f.resume
}

// goroutineID extracts the calling goroutine's id by parsing the header
// line of runtime.Stack's output ("goroutine 37 [running]:"). The format
// has been stable across Go releases for a long time; it is the standard
// workaround for the absence of any exported goroutine-local-storage API.
func goroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]
	const prefix = "goroutine "
	if len(b) <= len(prefix) {
		panic(errors.New("fiber: unexpected runtime.Stack output"))
	}
	b = b[len(prefix):]
	end := 0
	for end < len(b) && b[end] != ' ' {
		end++
	}
	id, err := strconv.ParseInt(string(b[:end]), 10, 64)
	if err != nil {
		panic(errors.Wrap(err, "fiber: parsing goroutine id"))
	}
	return id
}
