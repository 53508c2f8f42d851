package fiber

import (
	"sync/atomic"
	"testing"
	"unsafe"

	"github.com/jamestiotio/vkframe/counter"
)

func TestJobRunsAndDecrementsCounter(t *testing.T) {
	f := New()
	defer f.Close()

	c := counter.New(1)
	var ran bool
	f.Reset(func(unsafe.Pointer) { ran = true }, nil, c)

	if f.SwitchTo() {
		t.Fatal("expected the job to complete, not yield")
	}
	if !ran {
		t.Fatal("expected the job function to have run")
	}
	if !f.Completed() {
		t.Fatal("expected Completed to report true after the job returned")
	}
	if c.Load() != 0 {
		t.Fatalf("expected counter to reach 0, got %d", c.Load())
	}
}

func TestYieldSuspendsAndResumes(t *testing.T) {
	f := New()
	defer f.Close()

	c := counter.New(1)
	var steps atomic.Int32
	f.Reset(func(unsafe.Pointer) {
		steps.Add(1)
		Yield()
		steps.Add(1)
	}, nil, c)

	if yielded := f.SwitchTo(); !yielded {
		t.Fatal("expected the job to yield on its first switch")
	}
	if steps.Load() != 1 {
		t.Fatalf("expected exactly one step before the yield, got %d", steps.Load())
	}
	if f.Completed() {
		t.Fatal("a yielded fiber must not report completed")
	}

	if yielded := f.SwitchTo(); yielded {
		t.Fatal("expected the job to complete on its second switch")
	}
	if steps.Load() != 2 {
		t.Fatalf("expected both steps to have run, got %d", steps.Load())
	}
	if c.Load() != 0 {
		t.Fatalf("expected counter to reach 0 only after completion, got %d", c.Load())
	}
}

func TestYieldFromNonFiberGoroutinePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected Yield called off a fiber goroutine to panic")
		}
	}()
	Yield()
}

func TestTryClaimIsExclusive(t *testing.T) {
	f := New()
	defer f.Close()

	if !f.TryClaim() {
		t.Fatal("expected the first claim to succeed")
	}
	if f.TryClaim() {
		t.Fatal("expected a second claim on an already-active fiber to fail")
	}
	f.Release()
	if !f.TryClaim() {
		t.Fatal("expected a claim to succeed again after Release")
	}
}

func TestParamIsPassedThrough(t *testing.T) {
	f := New()
	defer f.Close()

	c := counter.New(1)
	value := 42
	var seen int
	f.Reset(func(p unsafe.Pointer) {
		seen = *(*int)(p)
	}, unsafe.Pointer(&value), c)

	f.SwitchTo()
	if seen != 42 {
		t.Fatalf("expected job to observe param 42, got %d", seen)
	}
}
