package rendergraph

import (
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/jamestiotio/vkframe/renderpass"
)

// MaxRecursionDepth is the DFS cycle guard. The graph is assumed acyclic;
// this only bounds how far a caller's mistake can run before the
// traversal of that branch is abandoned.
const MaxRecursionDepth = 20

// assignSortKeysAndPrune performs a root-driven DFS: every
// pass reachable from a root gets sort_order = max recursion depth at
// which it was visited (root starts at depth 1). Passes left at SortKey 0
// are unreachable and are returned as pruned. Survivors are stably sorted
// by descending SortKey, ties breaking on original submission order.
func assignSortKeysAndPrune(passes []*renderpass.Pass, deps [][]int) (survivors, pruned []*renderpass.Pass, err error) {
	for _, p := range passes {
		p.SortKey = 0
	}

	var cycleAt *renderpass.Pass
	var visit func(idx, depth int)
	visit = func(idx, depth int) {
		if depth > MaxRecursionDepth {
			if cycleAt == nil {
				cycleAt = passes[idx]
			}
			return
		}
		if depth > passes[idx].SortKey {
			passes[idx].SortKey = depth
		}
		for _, dep := range deps[idx] {
			visit(dep, depth+1)
		}
	}

	for i, p := range passes {
		if p.IsRoot {
			visit(i, 1)
		}
	}

	for _, p := range passes {
		if p.SortKey > 0 {
			survivors = append(survivors, p)
		} else {
			pruned = append(pruned, p)
		}
	}

	sort.SliceStable(survivors, func(i, j int) bool {
		return survivors[i].SortKey > survivors[j].SortKey
	})

	if cycleAt != nil {
		err = errors.Newf(
			"rendergraph: dependency traversal exceeded max recursion depth (%d) at pass %q — graph is assumed acyclic, this pass (or one of its producers) forms a cycle",
			MaxRecursionDepth, cycleAt.Name)
	}
	return survivors, pruned, err
}
