package resource

import "github.com/cockroachdb/errors"

// ImageUsage mirrors VkImageUsageFlagBits bit-for-bit; the render graph
// never talks to Vulkan directly, but keeping the real bit values makes the
// usage bitset trivially convertible at the backend boundary.
type ImageUsage uint32

const (
	ImageUsageTransferSrc            ImageUsage = 0x00000001
	ImageUsageTransferDst            ImageUsage = 0x00000002
	ImageUsageSampled                ImageUsage = 0x00000004
	ImageUsageStorage                ImageUsage = 0x00000008
	ImageUsageColorAttachment        ImageUsage = 0x00000010
	ImageUsageDepthStencilAttachment ImageUsage = 0x00000020
	ImageUsageTransientAttachment    ImageUsage = 0x00000040
	ImageUsageInputAttachment        ImageUsage = 0x00000080
)

// ImageWriteFlags and ImageReadFlags are the masks used to recompute
// read/write set membership after a usage bitset changes.
const (
	ImageWriteFlags = ImageUsageTransferDst | ImageUsageStorage | ImageUsageColorAttachment |
		ImageUsageDepthStencilAttachment | ImageUsageTransientAttachment
	ImageReadFlags = ImageUsageTransferSrc | ImageUsageSampled | ImageUsageStorage |
		ImageUsageColorAttachment | ImageUsageDepthStencilAttachment |
		ImageUsageTransientAttachment | ImageUsageInputAttachment
)

// BufferUsage mirrors VkBufferUsageFlagBits (plus the EXT conditional
// rendering bit) for the same reason ImageUsage mirrors VkImageUsageFlagBits.
type BufferUsage uint32

const (
	BufferUsageTransferSrc          BufferUsage = 0x00000001
	BufferUsageTransferDst          BufferUsage = 0x00000002
	BufferUsageUniformTexelBuffer   BufferUsage = 0x00000004
	BufferUsageStorageTexelBuffer   BufferUsage = 0x00000008
	BufferUsageUniformBuffer        BufferUsage = 0x00000010
	BufferUsageStorageBuffer        BufferUsage = 0x00000020
	BufferUsageIndexBuffer          BufferUsage = 0x00000040
	BufferUsageVertexBuffer         BufferUsage = 0x00000080
	BufferUsageIndirectBuffer       BufferUsage = 0x00000100
	BufferUsageConditionalRendering BufferUsage = 0x00000200
)

const (
	BufferWriteFlags = BufferUsageTransferDst | BufferUsageStorageTexelBuffer | BufferUsageStorageBuffer
	BufferReadFlags  = BufferUsageTransferSrc | BufferUsageUniformTexelBuffer | BufferUsageUniformBuffer |
		BufferUsageIndexBuffer | BufferUsageVertexBuffer | BufferUsageIndirectBuffer |
		BufferUsageConditionalRendering
)

// ImageType, Format, SampleCount and Tiling are opaque enums from the
// render graph's point of view — their values never drive any decision in
// this module, they only have to compare equal across consolidation calls
// for the same handle. Values are placeholders for whatever the backend's
// real enum values are; the backend layer is responsible for converting.
type (
	ImageType   uint32
	Format      uint32
	SampleCount uint32
	Tiling      uint32
)

// Extent3D is the opaque image extent (width/height/depth).
type Extent3D struct {
	Width, Height, Depth uint32
}

// Info is a tagged resource descriptor, covering both buffers and images.
// A single struct serves both kinds rather than an interface hierarchy:
// mismatched-kind consolidation is a caller error we want to catch with a
// cheap comparison rather than a type switch.
type Info struct {
	Kind Kind

	// Buffer fields.
	Size        uint64
	BufferUsage BufferUsage

	// Image fields.
	ImageUsage  ImageUsage
	Flags       uint32
	ImageType   ImageType
	Format      Format
	Extent      Extent3D
	MipLevels   uint32
	ArrayLayers uint32
	Samples     SampleCount
	Tiling      Tiling
}

// imageDescriptorEqual compares every image field except usage, which is
// the one field consolidation is allowed to OR together.
func imageDescriptorEqual(a, b Info) bool {
	return a.Flags == b.Flags &&
		a.ImageType == b.ImageType &&
		a.Format == b.Format &&
		a.Extent == b.Extent &&
		a.MipLevels == b.MipLevels &&
		a.ArrayLayers == b.ArrayLayers &&
		a.Samples == b.Samples &&
		a.Tiling == b.Tiling
}

// Consolidate merges a newly declared Info into the one already stored for
// a resource handle known to a pass. It never mutates either argument.
func Consolidate(handle Handle, stored, incoming Info) (Info, error) {
	if stored.Kind != incoming.Kind {
		return Info{}, errors.Newf(
			"resource %s: consolidation kind mismatch (stored=%s incoming=%s)",
			handle, stored.Kind, incoming.Kind)
	}

	merged := stored
	switch stored.Kind {
	case KindBuffer:
		if incoming.Size > merged.Size {
			merged.Size = incoming.Size
		}
		merged.BufferUsage = stored.BufferUsage | incoming.BufferUsage
	case KindImage:
		if !imageDescriptorEqual(stored, incoming) {
			return Info{}, errors.Newf(
				"resource %s: image descriptor mismatch under consolidation (stored=%+v incoming=%+v)",
				handle, stored, incoming)
		}
		merged.ImageUsage = stored.ImageUsage | incoming.ImageUsage
	case KindBlas, KindTlas:
		// Acceleration structures carry no descriptor of their own; nothing
		// to consolidate besides identity, which is already guaranteed by
		// the caller keying on the same Handle.
	}
	return merged, nil
}

// IsRead and IsWrite report whether the resource's current usage bitset
// places it in the pass's read and/or write projection. Both may be true
// at once (Storage and attachment usages are load-bearing for later
// barrier insertion and must remain aliased).
func (info Info) IsRead() bool {
	switch info.Kind {
	case KindBuffer:
		return info.BufferUsage&BufferReadFlags != 0
	case KindImage:
		return info.ImageUsage&ImageReadFlags != 0
	default:
		return false
	}
}

func (info Info) IsWrite() bool {
	switch info.Kind {
	case KindBuffer:
		return info.BufferUsage&BufferWriteFlags != 0
	case KindImage:
		return info.ImageUsage&ImageWriteFlags != 0
	default:
		return false
	}
}
