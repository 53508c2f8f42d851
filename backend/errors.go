package backend

import "github.com/cockroachdb/errors"

var (
	errNotVulkanAllocator    = errors.New("backend: allocator is not a *VulkanAllocator")
	errAllocateCommandBuffer = errors.New("backend: vkAllocateCommandBuffers failed")
	errBeginCommandBuffer    = errors.New("backend: vkBeginCommandBuffer failed")
)
