package rendergraph

import (
	"testing"

	"github.com/jamestiotio/vkframe/renderpass"
	"github.com/jamestiotio/vkframe/resource"
)

func passReadWrite(name string, reads, writes []resource.Handle) *renderpass.Pass {
	p := renderpass.New(name, renderpass.TypeDraw, false, nil, nil, nil)
	for _, r := range reads {
		_ = p.UseResource(r, resource.Info{Kind: resource.KindImage, ImageUsage: resource.ImageUsageSampled})
	}
	for _, w := range writes {
		_ = p.UseResource(w, resource.Info{Kind: resource.KindImage, ImageUsage: resource.ImageUsageColorAttachment})
	}
	return p
}

func TestResolveDependenciesLinearChain(t *testing.T) {
	x := resource.NewHandle(resource.KindImage, 1)
	y := resource.NewHandle(resource.KindImage, 2)

	a := passReadWrite("A", nil, []resource.Handle{x})
	b := passReadWrite("B", []resource.Handle{x}, []resource.Handle{y})
	c := passReadWrite("C", []resource.Handle{y}, nil)

	deps := resolveDependencies([]*renderpass.Pass{a, b, c})

	if len(deps[0]) != 0 {
		t.Errorf("A should have no dependencies, got %v", deps[0])
	}
	if len(deps[1]) != 1 || deps[1][0] != 0 {
		t.Errorf("B should depend on A (index 0), got %v", deps[1])
	}
	if len(deps[2]) != 1 || deps[2][0] != 1 {
		t.Errorf("C should depend on B (index 1), got %v", deps[2])
	}
}

func TestResolveDependenciesLatestWriterWins(t *testing.T) {
	x := resource.NewHandle(resource.KindImage, 1)

	a := passReadWrite("A", nil, []resource.Handle{x})
	b := passReadWrite("B", nil, []resource.Handle{x})
	c := passReadWrite("C", []resource.Handle{x}, nil)

	deps := resolveDependencies([]*renderpass.Pass{a, b, c})

	if len(deps[2]) != 1 || deps[2][0] != 1 {
		t.Errorf("C should depend only on the latest writer B (index 1), got %v", deps[2])
	}
}
