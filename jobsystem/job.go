// Package jobsystem implements a fiber-multiplexed job dispatcher: a
// fixed pool of fibers shared by a bounded set of worker threads, a
// mutex-guarded FIFO job queue, and counter-based completion tracking.
package jobsystem

import (
	"unsafe"

	"github.com/jamestiotio/vkframe/counter"
	"github.com/jamestiotio/vkframe/fiber"
)

// Job is one unit of queued work: a function, its opaque parameter, and
// the counter it must decrement on exit.
type Job struct {
	Fn      fiber.JobFunc
	Param   unsafe.Pointer
	Counter *counter.Counter
}
