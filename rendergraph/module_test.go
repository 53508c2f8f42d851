package rendergraph

import (
	"testing"

	"github.com/jamestiotio/vkframe/renderpass"
)

func TestSetupPassesHonorsSetupReturnValue(t *testing.T) {
	m := NewModule()
	accepted := renderpass.New("accepted", renderpass.TypeDraw, true, func(*renderpass.Pass, any) bool { return true }, nil, nil)
	declined := renderpass.New("declined", renderpass.TypeDraw, false, func(*renderpass.Pass, any) bool { return false }, nil, nil)
	noSetup := renderpass.New("no-setup", renderpass.TypeDraw, false, nil, nil, nil)

	m.AddRenderPass(accepted)
	m.AddRenderPass(declined)
	m.AddRenderPass(noSetup)

	g := newTestGraph()
	m.SetupPasses(g)

	if m.Len() != 0 {
		t.Error("expected module to be emptied after SetupPasses")
	}
	if len(g.Passes()) != 2 {
		t.Fatalf("expected 2 passes transferred to the graph, got %d", len(g.Passes()))
	}
	for _, p := range g.Passes() {
		if p.Name == "declined" {
			t.Error("declined pass must not be transferred to the graph")
		}
	}
}

func TestAddRenderPassClonesNotAliases(t *testing.T) {
	m := NewModule()
	original := renderpass.New("pass", renderpass.TypeDraw, false, nil, nil, nil)
	m.AddRenderPass(original)

	original.Width = 999 // mutate after submission

	g := newTestGraph()
	m.SetupPasses(g)

	if g.Passes()[0].Width == 999 {
		t.Error("expected module to clone the pass on submission, not alias the caller's value")
	}
}
