// Package rendergraph implements an offline, frame-scoped planner:
// it takes a user-declared, unordered set of render passes,
// resolves producer→consumer dependencies by resource identity, prunes
// passes that do not contribute to a root, and emits a linearized
// execution order suitable for command recording.
package rendergraph

import (
	"github.com/cockroachdb/errors"

	"github.com/jamestiotio/vkframe/backend"
	"github.com/jamestiotio/vkframe/renderpass"
)

// EncoderFactory is the encoder-creation collaborator. It is a free
// function rather than a Backend method because encoder creation is its
// own narrow contract, independent of the allocator/cache/extent queries
// Backend answers.
type EncoderFactory func(allocator backend.Allocator, cache backend.PipelineCache, staging backend.StagingAllocator, width, height uint32) (backend.Encoder, error)

// Stats is the small post-Build summary useful for profiling overlays.
type Stats struct {
	Surviving  int
	Pruned     int
	MaxSortKey int
}

// Graph owns passes after setup and drives dependency resolution, sort-key
// assignment, pruning and execution. A Graph is reused across frames via
// Reset → (passes inserted) → Build → Execute, which must run in that
// order on a single thread and must not overlap.
type Graph struct {
	passes        []*renderpass.Pass
	backend       backend.Backend
	createEncoder EncoderFactory
	frameIndex    uint64
	stats         Stats
}

func NewGraph(b backend.Backend, createEncoder EncoderFactory) *Graph {
	return &Graph{backend: b, createEncoder: createEncoder}
}

// Reset destroys every pass the graph currently owns (releasing any
// encoder they still hold) and clears the pass list, ready for the next
// frame's AddRenderPass calls.
func (g *Graph) Reset() {
	for _, p := range g.passes {
		p.Destroy()
	}
	g.passes = nil
	g.stats = Stats{}
}

// AddRenderPass transfers ownership of p to the graph. Called directly by
// tests, or indirectly by Module.SetupPasses during the normal
// module→graph hand-off.
func (g *Graph) AddRenderPass(p *renderpass.Pass) {
	g.passes = append(g.passes, p)
}

// Passes returns the graph's current pass list, in whatever order the
// last Build left it (submission order before Build, sorted execution
// order after).
func (g *Graph) Passes() []*renderpass.Pass {
	return g.passes
}

func (g *Graph) Stats() Stats {
	return g.stats
}

// Build resolves dependencies, assigns sort keys via root-driven DFS,
// prunes unreachable passes (destroying them), and leaves g.Passes() in
// descending-sort-key execution order.
func (g *Graph) Build() error {
	deps := resolveDependencies(g.passes)
	survivors, pruned, err := assignSortKeysAndPrune(g.passes, deps)

	for _, p := range pruned {
		p.Destroy()
	}

	maxSortKey := 0
	for _, p := range survivors {
		if p.SortKey > maxSortKey {
			maxSortKey = p.SortKey
		}
	}

	g.passes = survivors
	g.stats = Stats{Surviving: len(survivors), Pruned: len(pruned), MaxSortKey: maxSortKey}

	if err != nil {
		return errors.Wrap(err, "rendergraph: build")
	}
	return nil
}

// Execute asks the backend for one transient
// allocator per surviving pass, a staging allocator, the pipeline cache
// and the swapchain extent, then creates an encoder and invokes each
// executable pass's Execute callback in sorted order.
func (g *Graph) Execute(frameIndex uint64) error {
	g.frameIndex = frameIndex
	n := len(g.passes)
	allocators := g.backend.TransientAllocators(frameIndex, n)
	staging := g.backend.StagingAllocator(frameIndex)
	cache := g.backend.PipelineCache()
	swapchainW, swapchainH := g.backend.SwapchainExtent()

	next := 0
	for _, p := range g.passes {
		if p.Execute == nil || p.SortKey == 0 {
			continue
		}

		width, height := p.EffectiveExtent(swapchainW, swapchainH)
		enc, err := g.createEncoder(allocators[next], cache, staging, width, height)
		next++
		if err != nil {
			return errors.Wrapf(err, "rendergraph: create encoder for pass %q", p.Name)
		}
		p.Encoder = enc

		if p.Type == renderpass.TypeDraw {
			enc.SetScissor(0, []backend.Rect2D{backend.DefaultScissor(width, height)})
			enc.SetViewport(0, []backend.Viewport{backend.DefaultViewport(width, height)})
		}

		p.Execute(enc, p.UserData)
	}
	return nil
}
