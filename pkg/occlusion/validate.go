package occlusion

import (
	"fmt"
	"math"
)

// areaTolerance is the relative slack allowed when checking area sums
const areaTolerance = 1e-5

// Validate checks that every node's area equals the sum of its children
// and leaf faces, and that branch indices stay inside the arena
func (t *Tree) Validate() error {
	for id := range t.nodes {
		node := &t.nodes[id]
		sum := 0.0
		for k, slot := range node.Child {
			switch slot.Kind {
			case SlotLeaf:
				if int(slot.Index) >= len(t.faces) {
					return fmt.Errorf("%w: node %d slot %d references face %d", ErrInconsistentTree, id, k, slot.Index)
				}
				sum += t.faces[slot.Index].area
			case SlotBranch:
				if slot.Index <= int32(id) || int(slot.Index) >= len(t.nodes) {
					return fmt.Errorf("%w: node %d slot %d references node %d", ErrInconsistentTree, id, k, slot.Index)
				}
				sum += t.nodes[slot.Index].Area
			}
		}
		if math.Abs(node.Area-sum) > areaTolerance*max(math.Abs(sum), 1e-12) {
			return fmt.Errorf("%w: node %d area %g, children sum %g", ErrInconsistentTree, id, node.Area, sum)
		}
	}
	return nil
}
