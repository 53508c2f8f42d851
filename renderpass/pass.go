// Package renderpass defines the value object a user declares for one unit
// of GPU work within a frame: its type, declared resources, attachments,
// sampled textures, and setup/execute callbacks. Passes flow user → module
// → graph with single-owner hand-offs (see rendergraph.Module.SetupPasses);
// this package only knows how to build and mutate one pass in isolation.
package renderpass

import (
	"hash/fnv"

	"github.com/cockroachdb/errors"

	"github.com/jamestiotio/vkframe/backend"
	"github.com/jamestiotio/vkframe/resource"
)

// Type is the kind of GPU work a pass records.
type Type uint8

const (
	TypeDraw Type = iota
	TypeCompute
	TypeTransfer
)

// SetupFunc declares a pass's resources, attachments and extent. Returning
// false tells the owning module to destroy the pass instead of handing it
// to the graph.
type SetupFunc func(pass *Pass, userData any) bool

// ExecuteFunc records GPU commands into the encoder the graph created for
// this pass. It must finish recording before returning —
// encoder ownership only transfers via StealEncoder after execution.
type ExecuteFunc func(encoder backend.Encoder, userData any)

// AttachmentBinding records one color or depth/stencil attachment slot.
// Attachment *builder* helpers (the user-facing convenience layer real
// engines put on top of this) are out of scope; this is the minimal
// bookkeeping the graph itself needs.
type AttachmentBinding struct {
	Index        uint32
	DepthStencil bool
}

// TextureBinding records one sampled-texture declaration.
type TextureBinding struct {
	ID uint64
}

// Pass is the render-graph's view of one declared unit of work. The zero
// value is not usable; construct with New.
type Pass struct {
	ID       uint64
	Name     string
	Type     Type
	IsRoot   bool
	SortKey  int // 0 = unassigned/dead
	Width    uint32
	Height   uint32
	Setup    SetupFunc
	Execute  ExecuteFunc
	UserData any

	// Encoder is non-nil only between Graph.Execute creating it and a
	// consumer's StealEncoder call, or until the pass is destroyed.
	Encoder backend.Encoder

	resources     []resource.Handle
	resourceInfos []resource.Info

	readResources  []resource.Handle
	writeResources []resource.Handle

	imageAttachments    []AttachmentBinding
	attachmentResources []resource.Handle

	textureInfoIDs []uint64
	textureInfos   []TextureBinding
}

// New creates a pass. id is the hash of name, computed here so callers
// never have to pick a hash themselves.
func New(name string, passType Type, isRoot bool, setup SetupFunc, execute ExecuteFunc, userData any) *Pass {
	return &Pass{
		ID:       hashName(name),
		Name:     name,
		Type:     passType,
		IsRoot:   isRoot,
		Setup:    setup,
		Execute:  execute,
		UserData: userData,
	}
}

func hashName(name string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return h.Sum64()
}

// Clone returns a value copy of the pass with independently-owned slices,
// used when the module stages a user-submitted pass on submission.
func (p *Pass) Clone() *Pass {
	clone := *p
	clone.resources = append([]resource.Handle(nil), p.resources...)
	clone.resourceInfos = append([]resource.Info(nil), p.resourceInfos...)
	clone.readResources = append([]resource.Handle(nil), p.readResources...)
	clone.writeResources = append([]resource.Handle(nil), p.writeResources...)
	clone.imageAttachments = append([]AttachmentBinding(nil), p.imageAttachments...)
	clone.attachmentResources = append([]resource.Handle(nil), p.attachmentResources...)
	clone.textureInfoIDs = append([]uint64(nil), p.textureInfoIDs...)
	clone.textureInfos = append([]TextureBinding(nil), p.textureInfos...)
	return &clone
}

// Resources returns the pass's declared resources and their consolidated
// infos, one-to-one and in declaration order.
func (p *Pass) Resources() ([]resource.Handle, []resource.Info) {
	return p.resources, p.resourceInfos
}

// ReadResources and WriteResources are the derived projections
// recomputed on every UseResource call.
func (p *Pass) ReadResources() []resource.Handle  { return p.readResources }
func (p *Pass) WriteResources() []resource.Handle { return p.writeResources }

// indexOf returns the index of handle in p.resources, or -1.
func (p *Pass) indexOf(handle resource.Handle) int {
	for i, h := range p.resources {
		if h == handle {
			return i
		}
	}
	return -1
}

func containsHandle(set []resource.Handle, handle resource.Handle) bool {
	for _, h := range set {
		if h == handle {
			return true
		}
	}
	return false
}

// UseResource is the single chokepoint through which a pass declares any
// resource. A first declaration is appended verbatim; a
// repeat declaration is consolidated with resource.Consolidate, and the
// read/write projections are recomputed from the merged usage bitset.
func (p *Pass) UseResource(handle resource.Handle, info resource.Info) error {
	idx := p.indexOf(handle)
	var merged resource.Info
	if idx < 0 {
		p.resources = append(p.resources, handle)
		p.resourceInfos = append(p.resourceInfos, info)
		merged = info
	} else {
		var err error
		merged, err = resource.Consolidate(handle, p.resourceInfos[idx], info)
		if err != nil {
			return errors.Wrapf(err, "pass %q: use_resource", p.Name)
		}
		p.resourceInfos[idx] = merged
	}

	if merged.IsRead() && !containsHandle(p.readResources, handle) {
		p.readResources = append(p.readResources, handle)
	}
	if merged.IsWrite() && !containsHandle(p.writeResources, handle) {
		p.writeResources = append(p.writeResources, handle)
	}
	return nil
}

// AddColorAttachment records a color attachment at the given index and
// forces the ColorAttachment usage bit before declaring the resource.
func (p *Pass) AddColorAttachment(index uint32, handle resource.Handle, info resource.Info) error {
	info.Kind = resource.KindImage
	info.ImageUsage |= resource.ImageUsageColorAttachment
	if err := p.UseResource(handle, info); err != nil {
		return err
	}
	p.imageAttachments = append(p.imageAttachments, AttachmentBinding{Index: index})
	p.attachmentResources = append(p.attachmentResources, handle)
	return nil
}

// AddDepthStencilAttachment is AddColorAttachment's depth/stencil twin.
func (p *Pass) AddDepthStencilAttachment(handle resource.Handle, info resource.Info) error {
	info.Kind = resource.KindImage
	info.ImageUsage |= resource.ImageUsageDepthStencilAttachment
	if err := p.UseResource(handle, info); err != nil {
		return err
	}
	p.imageAttachments = append(p.imageAttachments, AttachmentBinding{DepthStencil: true})
	p.attachmentResources = append(p.attachmentResources, handle)
	return nil
}

// SampleTexture records handle as a sampled texture, forcing the Sampled
// usage bit. It is idempotent per texture id within a pass: calling it
// twice with the same handle leaves the pass in the same state one call
// would.
func (p *Pass) SampleTexture(handle resource.Handle, info resource.Info) error {
	info.Kind = resource.KindImage
	info.ImageUsage |= resource.ImageUsageSampled
	if err := p.UseResource(handle, info); err != nil {
		return err
	}
	for _, id := range p.textureInfoIDs {
		if id == handle.ID() {
			return nil
		}
	}
	p.textureInfoIDs = append(p.textureInfoIDs, handle.ID())
	p.textureInfos = append(p.textureInfos, TextureBinding{ID: handle.ID()})
	return nil
}

// EffectiveExtent resolves the pass's effective extent: prefer its own
// extent when nonzero, else fall back to the swapchain extent.
func (p *Pass) EffectiveExtent(swapchainW, swapchainH uint32) (uint32, uint32) {
	w, h := p.Width, p.Height
	if w == 0 {
		w = swapchainW
	}
	if h == 0 {
		h = swapchainH
	}
	return w, h
}

// StealEncoder returns the pass's encoder and clears its slot; it may be
// called at most once per encoder — a second call returns nil, matching
// single-take semantics.
func (p *Pass) StealEncoder() backend.Encoder {
	enc := p.Encoder
	p.Encoder = nil
	return enc
}

// Destroy releases the pass's own encoder, if it still owns one. Pruned or
// declined passes (setup returned false) must go through Destroy so a
// stolen encoder is never double-destroyed.
func (p *Pass) Destroy() {
	if p.Encoder != nil {
		p.Encoder.Destroy()
		p.Encoder = nil
	}
}
