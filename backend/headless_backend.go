package backend

import "sync/atomic"

// HeadlessAllocator, HeadlessStagingAllocator and HeadlessPipelineCache are
// opaque tokens with no backing resources — enough identity for tests to
// assert "one allocator per surviving pass" without a real device.
type HeadlessAllocator struct{ Index int }
type HeadlessStagingAllocator struct{}
type HeadlessPipelineCache struct{}

// HeadlessBackend is the no-device twin of VulkanBackend: same contract,
// no device, used by tests and by `cmd/demo` in both its windowed and
// `-headless` modes.
type HeadlessBackend struct {
	Width, Height uint32
	allocations   atomic.Uint64
}

func NewHeadlessBackend(width, height uint32) *HeadlessBackend {
	return &HeadlessBackend{Width: width, Height: height}
}

func (b *HeadlessBackend) TransientAllocators(frameIndex uint64, n int) []Allocator {
	allocators := make([]Allocator, n)
	for i := 0; i < n; i++ {
		allocators[i] = &HeadlessAllocator{Index: i}
	}
	b.allocations.Add(uint64(n))
	return allocators
}

func (b *HeadlessBackend) StagingAllocator(frameIndex uint64) StagingAllocator {
	return &HeadlessStagingAllocator{}
}

func (b *HeadlessBackend) PipelineCache() PipelineCache {
	return &HeadlessPipelineCache{}
}

func (b *HeadlessBackend) SwapchainExtent() (uint32, uint32) {
	return b.Width, b.Height
}

// AllocationCount reports how many transient allocators have been handed
// out over this backend's lifetime, for test assertions.
func (b *HeadlessBackend) AllocationCount() uint64 {
	return b.allocations.Load()
}

// HeadlessEncoder records the scissor/viewport calls made against it
// instead of submitting to a real command buffer, so tests can assert on
// the preset-default-scissor/viewport-for-draw-passes rule.
type HeadlessEncoder struct {
	Destroyed bool
	Scissors  []Rect2D
	Viewports []Viewport
}

func NewHeadlessEncoder(_ Allocator, _ PipelineCache, _ StagingAllocator, _, _ uint32) *HeadlessEncoder {
	return &HeadlessEncoder{}
}

func (e *HeadlessEncoder) SetScissor(first uint32, rects []Rect2D) {
	e.Scissors = append(e.Scissors, rects...)
}

func (e *HeadlessEncoder) SetViewport(first uint32, viewports []Viewport) {
	e.Viewports = append(e.Viewports, viewports...)
}

func (e *HeadlessEncoder) Destroy() {
	e.Destroyed = true
}
