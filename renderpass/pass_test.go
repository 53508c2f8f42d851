package renderpass

import (
	"testing"

	"github.com/jamestiotio/vkframe/backend"
	"github.com/jamestiotio/vkframe/resource"
)

func TestUseResourceFirstDeclarationIsAppended(t *testing.T) {
	p := New("gbuffer", TypeDraw, false, nil, nil, nil)
	h := resource.NewHandle(resource.KindImage, 1)
	info := resource.Info{Kind: resource.KindImage, ImageUsage: resource.ImageUsageColorAttachment}

	if err := p.UseResource(h, info); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	handles, infos := p.Resources()
	if len(handles) != 1 || handles[0] != h {
		t.Fatalf("expected resource to be appended, got %v", handles)
	}
	if infos[0].ImageUsage != info.ImageUsage {
		t.Errorf("expected stored info to match declared info")
	}
}

func TestSampleTextureIsIdempotent(t *testing.T) {
	p := New("lighting", TypeDraw, false, nil, nil, nil)
	h := resource.NewHandle(resource.KindImage, 2)
	info := resource.Info{Kind: resource.KindImage}

	if err := p.SampleTexture(h, info); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	firstLen := len(p.textureInfoIDs)

	if err := p.SampleTexture(h, info); err != nil {
		t.Fatalf("unexpected error on second call: %v", err)
	}
	if len(p.textureInfoIDs) != firstLen {
		t.Errorf("expected SampleTexture to be idempotent, got %d bindings after second call", len(p.textureInfoIDs))
	}
	if !containsHandle(p.readResources, h) {
		t.Error("sampled texture must appear in read_resources")
	}
}

func TestColorAttachmentParticipatesInBothSets(t *testing.T) {
	p := New("scene", TypeDraw, false, nil, nil, nil)
	h := resource.NewHandle(resource.KindImage, 3)
	info := resource.Info{Kind: resource.KindImage}

	if err := p.AddColorAttachment(0, h, info); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !containsHandle(p.readResources, h) {
		t.Error("color attachment must be in read_resources")
	}
	if !containsHandle(p.writeResources, h) {
		t.Error("color attachment must be in write_resources")
	}
}

func TestConsolidationAcrossSpecializations(t *testing.T) {
	// Same handle declared Sampled then ColorAttachment consolidates to
	// usage = Sampled | ColorAttachment, appearing in both read and write
	// sets.
	p := New("post", TypeDraw, false, nil, nil, nil)
	h := resource.NewHandle(resource.KindImage, 4)

	if err := p.SampleTexture(h, resource.Info{Kind: resource.KindImage}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.AddColorAttachment(0, h, resource.Info{Kind: resource.KindImage}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, infos := p.Resources()
	want := resource.ImageUsageSampled | resource.ImageUsageColorAttachment
	if infos[0].ImageUsage != want {
		t.Errorf("expected merged usage %v, got %v", want, infos[0].ImageUsage)
	}
	if !containsHandle(p.readResources, h) || !containsHandle(p.writeResources, h) {
		t.Error("expected handle to participate in both read and write sets after consolidation")
	}
}

func TestEffectiveExtentFallsBackToSwapchain(t *testing.T) {
	p := New("shadow", TypeDraw, false, nil, nil, nil)
	w, h := p.EffectiveExtent(1920, 1080)
	if w != 1920 || h != 1080 {
		t.Errorf("expected swapchain fallback 1920x1080, got %dx%d", w, h)
	}

	p.Width, p.Height = 512, 512
	w, h = p.EffectiveExtent(1920, 1080)
	if w != 512 || h != 512 {
		t.Errorf("expected pass extent 512x512 to win, got %dx%d", w, h)
	}
}

func TestStealEncoderIsSingleTake(t *testing.T) {
	p := New("present", TypeDraw, false, nil, nil, nil)
	enc := &fakeEncoder{}
	p.Encoder = enc

	stolen := p.StealEncoder()
	if stolen != enc {
		t.Fatal("expected StealEncoder to return the pass's encoder")
	}
	if p.StealEncoder() != nil {
		t.Error("expected second StealEncoder call to return nil")
	}
}

type fakeEncoder struct{ destroyed bool }

func (f *fakeEncoder) SetScissor(uint32, []backend.Rect2D)   {}
func (f *fakeEncoder) SetViewport(uint32, []backend.Viewport) {}
func (f *fakeEncoder) Destroy()                               { f.destroyed = true }
