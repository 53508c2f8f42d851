// Package backend defines the narrow, opaque GPU contract the render graph
// consumes. Everything behind this interface — command encoders,
// allocators, the pipeline cache, swapchain queries — is deliberately out
// of this module's scope; we only need enough surface to drive the graph's
// execution phase.
package backend

// Allocator is an opaque per-frame (or per-pass transient) allocator
// handle. The render graph never looks inside it.
type Allocator interface{}

// PipelineCache is an opaque pipeline cache handle.
type PipelineCache interface{}

// StagingAllocator is an opaque staging allocator handle, distinct from
// the per-pass transient allocators.
type StagingAllocator interface{}

// Backend is the minimal surface the render graph needs from the GPU
// backend to run Graph.Execute.
type Backend interface {
	// TransientAllocators returns n per-pass transient allocators for the
	// given frame index, one per surviving pass in execution order.
	TransientAllocators(frameIndex uint64, n int) []Allocator
	StagingAllocator(frameIndex uint64) StagingAllocator
	PipelineCache() PipelineCache
	SwapchainExtent() (width, height uint32)
}
