package backend

import vk "github.com/goki/vulkan"

// VulkanAllocator wraps a command pool the render graph treats as an
// opaque transient allocator. Pool creation/teardown happens above this
// module — device and swapchain bootstrap are out of scope here.
type VulkanAllocator struct {
	Pool vk.CommandPool
}

// VulkanStagingAllocator wraps the staging command pool, kept as a
// distinct type from VulkanAllocator so a backend can hand out a
// differently-sized pool for staging uploads.
type VulkanStagingAllocator struct {
	Pool vk.CommandPool
}

// VulkanPipelineCache wraps a real vk.PipelineCache handle.
type VulkanPipelineCache struct {
	Cache vk.PipelineCache
}

// VulkanBackend implements Backend on top of a caller-supplied logical
// device. It never creates the device, swapchain, or descriptor/pipeline
// state itself — those stay out of scope — it only hands out the small
// set of per-frame objects Graph.Execute needs.
type VulkanBackend struct {
	Device          vk.Device
	Pools           []vk.CommandPool // one per transient allocator slot
	StagingPool     vk.CommandPool
	Cache           vk.PipelineCache
	SwapchainWidth  uint32
	SwapchainHeight uint32
}

func NewVulkanBackend(device vk.Device, pools []vk.CommandPool, stagingPool vk.CommandPool, cache vk.PipelineCache, swapchainW, swapchainH uint32) *VulkanBackend {
	return &VulkanBackend{
		Device:          device,
		Pools:           pools,
		StagingPool:     stagingPool,
		Cache:           cache,
		SwapchainWidth:  swapchainW,
		SwapchainHeight: swapchainH,
	}
}

func (b *VulkanBackend) TransientAllocators(frameIndex uint64, n int) []Allocator {
	allocators := make([]Allocator, n)
	for i := 0; i < n; i++ {
		pool := b.Pools[i%len(b.Pools)]
		allocators[i] = &VulkanAllocator{Pool: pool}
	}
	return allocators
}

func (b *VulkanBackend) StagingAllocator(frameIndex uint64) StagingAllocator {
	return &VulkanStagingAllocator{Pool: b.StagingPool}
}

func (b *VulkanBackend) PipelineCache() PipelineCache {
	return &VulkanPipelineCache{Cache: b.Cache}
}

func (b *VulkanBackend) SwapchainExtent() (uint32, uint32) {
	return b.SwapchainWidth, b.SwapchainHeight
}

// VulkanEncoder wraps a single command buffer allocated from a transient
// allocator's pool. SetScissor/SetViewport are real vk.CmdSetScissor /
// vk.CmdSetViewport calls — the one place in this module genuine Vulkan
// calls happen, matching the encoder's set_viewport/set_scissor contract
// exactly.
type VulkanEncoder struct {
	Device        vk.Device
	Pool          vk.CommandPool
	CommandBuffer vk.CommandBuffer
}

// CreateVulkanEncoder allocates and begins a primary command buffer from
// allocator's pool. staging and cache are accepted to satisfy the
// encoder.create(allocator, pipeline_cache, staging, extent) contract but,
// like the rest of this backend, are opaque past this point — binding a
// pipeline from the cache or uploading through staging is the execute
// callback's job, not the encoder constructor's.
func CreateVulkanEncoder(device vk.Device, allocator Allocator, _ PipelineCache, _ StagingAllocator, _, _ uint32) (*VulkanEncoder, error) {
	va, ok := allocator.(*VulkanAllocator)
	if !ok {
		return nil, errNotVulkanAllocator
	}

	allocInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        va.Pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}
	var buffers = make([]vk.CommandBuffer, 1)
	if res := vk.AllocateCommandBuffers(device, &allocInfo, buffers); res != vk.Success {
		return nil, errAllocateCommandBuffer
	}

	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}
	if res := vk.BeginCommandBuffer(buffers[0], &beginInfo); res != vk.Success {
		vk.FreeCommandBuffers(device, va.Pool, 1, buffers)
		return nil, errBeginCommandBuffer
	}

	return &VulkanEncoder{Device: device, Pool: va.Pool, CommandBuffer: buffers[0]}, nil
}

func (e *VulkanEncoder) SetScissor(first uint32, rects []Rect2D) {
	vkRects := make([]vk.Rect2D, len(rects))
	for i, r := range rects {
		vkRects[i] = vk.Rect2D{
			Offset: vk.Offset2D{X: r.OffsetX, Y: r.OffsetY},
			Extent: vk.Extent2D{Width: r.Width, Height: r.Height},
		}
	}
	vk.CmdSetScissor(e.CommandBuffer, first, uint32(len(vkRects)), vkRects)
}

func (e *VulkanEncoder) SetViewport(first uint32, viewports []Viewport) {
	vkViewports := make([]vk.Viewport, len(viewports))
	for i, v := range viewports {
		vkViewports[i] = vk.Viewport{
			X: v.X, Y: v.Y,
			Width: v.Width, Height: v.Height,
			MinDepth: v.MinDepth, MaxDepth: v.MaxDepth,
		}
	}
	vk.CmdSetViewport(e.CommandBuffer, first, uint32(len(vkViewports)), vkViewports)
}

func (e *VulkanEncoder) Destroy() {
	if e.CommandBuffer == nil {
		return
	}
	vk.EndCommandBuffer(e.CommandBuffer)
	buffers := []vk.CommandBuffer{e.CommandBuffer}
	vk.FreeCommandBuffers(e.Device, e.Pool, 1, buffers)
	e.CommandBuffer = nil
}

// NewVulkanEncoderFactory binds device to CreateVulkanEncoder, producing the
// factory function rendergraph.NewGraph expects — the real counterpart to a
// headless run's HeadlessEncoder factory.
func NewVulkanEncoderFactory(device vk.Device) func(Allocator, PipelineCache, StagingAllocator, uint32, uint32) (Encoder, error) {
	return func(allocator Allocator, cache PipelineCache, staging StagingAllocator, width, height uint32) (Encoder, error) {
		return CreateVulkanEncoder(device, allocator, cache, staging, width, height)
	}
}
