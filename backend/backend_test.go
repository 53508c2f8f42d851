package backend

import (
	"testing"

	vk "github.com/goki/vulkan"
)

func TestHeadlessBackendHandsOutOneAllocatorPerPass(t *testing.T) {
	b := NewHeadlessBackend(1920, 1080)
	allocators := b.TransientAllocators(0, 3)
	if len(allocators) != 3 {
		t.Fatalf("expected 3 allocators, got %d", len(allocators))
	}
	if b.AllocationCount() != 3 {
		t.Errorf("expected allocation count 3, got %d", b.AllocationCount())
	}
	w, h := b.SwapchainExtent()
	if w != 1920 || h != 1080 {
		t.Errorf("expected extent 1920x1080, got %dx%d", w, h)
	}
}

func TestDefaultScissorAndViewport(t *testing.T) {
	s := DefaultScissor(800, 600)
	if s.OffsetX != 0 || s.OffsetY != 0 || s.Width != 800 || s.Height != 600 {
		t.Errorf("unexpected default scissor: %+v", s)
	}
	v := DefaultViewport(800, 600)
	if v.X != 0 || v.Y != 0 || v.Width != 800 || v.Height != 600 || v.MinDepth != 0 || v.MaxDepth != 1 {
		t.Errorf("unexpected default viewport: %+v", v)
	}
}

func TestCenteredScissorCentersAndClampsToNonnegative(t *testing.T) {
	s := CenteredScissor(1920, 1080, 800, 600)
	if s.OffsetX != 560 || s.OffsetY != 240 || s.Width != 800 || s.Height != 600 {
		t.Errorf("unexpected centered scissor: %+v", s)
	}

	s = CenteredScissor(640, 480, 800, 600)
	if s.OffsetX != 0 || s.OffsetY != 0 {
		t.Errorf("expected offset clamped to 0 when inner exceeds outer, got %+v", s)
	}
}

func TestHeadlessEncoderRecordsCalls(t *testing.T) {
	enc := NewHeadlessEncoder(&HeadlessAllocator{}, &HeadlessPipelineCache{}, &HeadlessStagingAllocator{}, 640, 480)
	enc.SetScissor(0, []Rect2D{DefaultScissor(640, 480)})
	enc.SetViewport(0, []Viewport{DefaultViewport(640, 480)})
	enc.Destroy()

	if len(enc.Scissors) != 1 || len(enc.Viewports) != 1 {
		t.Fatalf("expected one recorded scissor and viewport, got %d/%d", len(enc.Scissors), len(enc.Viewports))
	}
	if !enc.Destroyed {
		t.Error("expected encoder to be marked destroyed")
	}
}

func TestCreateVulkanEncoderRejectsNonVulkanAllocator(t *testing.T) {
	var device vk.Device
	_, err := CreateVulkanEncoder(device, &HeadlessAllocator{}, &VulkanPipelineCache{}, &VulkanStagingAllocator{}, 640, 480)
	if err == nil {
		t.Fatal("expected an error when allocator is not a *VulkanAllocator")
	}
}

func TestNewVulkanEncoderFactoryWrapsCreateVulkanEncoder(t *testing.T) {
	var device vk.Device
	factory := NewVulkanEncoderFactory(device)
	_, err := factory(&HeadlessAllocator{}, &VulkanPipelineCache{}, &VulkanStagingAllocator{}, 640, 480)
	if err == nil {
		t.Fatal("expected the factory to surface CreateVulkanEncoder's allocator-type error")
	}
}
