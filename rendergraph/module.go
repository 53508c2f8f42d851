package rendergraph

import "github.com/jamestiotio/vkframe/renderpass"

// Module is the ordered staging buffer of passes a user submits for one
// frame. Passes are cloned on submission so the caller's own RenderPass
// value can be reused or discarded freely.
type Module struct {
	passes []*renderpass.Pass
}

func NewModule() *Module {
	return &Module{}
}

// AddRenderPass clones p and appends it in submission order.
func (m *Module) AddRenderPass(p *renderpass.Pass) {
	m.passes = append(m.passes, p.Clone())
}

// Len reports how many passes are staged.
func (m *Module) Len() int {
	return len(m.passes)
}

// SetupPasses runs each staged pass's Setup callback (if any) to decide
// whether the pass survives into the graph. A pass with
// no Setup callback transfers unconditionally. The module owns nothing
// once this returns, whether or not every pass survived.
func (m *Module) SetupPasses(g *Graph) {
	for _, p := range m.passes {
		if p.Setup == nil {
			g.AddRenderPass(p)
			continue
		}
		if p.Setup(p, p.UserData) {
			g.AddRenderPass(p)
		} else {
			p.Destroy()
		}
	}
	m.passes = nil
}
