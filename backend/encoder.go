package backend

import "github.com/go-gl/mathgl/mgl32"

// Rect2D and Viewport mirror the Vulkan structures of the same name
// closely enough that a real backend can convert them with a field copy.
type Rect2D struct {
	OffsetX, OffsetY int32
	Width, Height    uint32
}

type Viewport struct {
	X, Y          float32
	Width, Height float32
	MinDepth      float32
	MaxDepth      float32
}

// DefaultScissor and DefaultViewport preset a draw pass's scissor and
// viewport to the full (0,0,w,h) extent the caller passes in — typically
// a pass's own declared extent, falling back to the swapchain extent when
// unset.
func DefaultScissor(width, height uint32) Rect2D {
	return Rect2D{OffsetX: 0, OffsetY: 0, Width: width, Height: height}
}

func DefaultViewport(width, height uint32) Viewport {
	return Viewport{X: 0, Y: 0, Width: float32(width), Height: float32(height), MinDepth: 0, MaxDepth: 1}
}

// CenteredScissor centers an inner rect within an outer extent — letterboxing
// a pass whose own declared extent doesn't match the swapchain's, rather
// than stretching it to (0,0,w,h). The offset is real mgl32 vector math
// (subtract, halve, clamp to nonnegative), not a field copy.
func CenteredScissor(outerWidth, outerHeight, innerWidth, innerHeight uint32) Rect2D {
	outer := mgl32.Vec2{float32(outerWidth), float32(outerHeight)}
	inner := mgl32.Vec2{float32(innerWidth), float32(innerHeight)}
	offset := outer.Sub(inner).Mul(0.5)
	if offset[0] < 0 {
		offset[0] = 0
	}
	if offset[1] < 0 {
		offset[1] = 0
	}
	return Rect2D{
		OffsetX: int32(offset.X()),
		OffsetY: int32(offset.Y()),
		Width:   innerWidth,
		Height:  innerHeight,
	}
}

// Encoder is the opaque command recorder a pass's execute callback draws
// into. Ownership starts with the render graph, which creates
// one per executed pass, and can be stolen exactly once by a consumer via
// the owning Pass's StealEncoder.
type Encoder interface {
	SetScissor(first uint32, rects []Rect2D)
	SetViewport(first uint32, viewports []Viewport)
	Destroy()
}
