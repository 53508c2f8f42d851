package rendergraph

import (
	"github.com/jamestiotio/vkframe/renderpass"
	"github.com/jamestiotio/vkframe/resource"
)

// resolveDependencies performs a single linear sweep over
// passes in module-submission order that produces, for each pass index,
// the indices of the passes it directly depends on. Duplicates are
// permitted and left in place; the traversal does not need them removed,
// since revisiting a pass at the same depth leaves its sort key unchanged.
func resolveDependencies(passes []*renderpass.Pass) [][]int {
	lastWriter := make(map[resource.Handle]int)
	deps := make([][]int, len(passes))

	for i, p := range passes {
		for _, r := range p.ReadResources() {
			if writer, ok := lastWriter[r]; ok {
				deps[i] = append(deps[i], writer)
			}
		}
		for _, w := range p.WriteResources() {
			lastWriter[w] = i
		}
	}
	return deps
}
