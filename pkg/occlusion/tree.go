package occlusion

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/df07/go-gi-shading/pkg/core"
	"github.com/df07/go-gi-shading/pkg/geometry"
	"github.com/df07/go-gi-shading/pkg/material"
)

// childCount is the branching factor of the tree
const childCount = 8

// NodeID indexes a node in the tree arena
type NodeID int32

// SlotKind tells what a child slot holds
type SlotKind uint8

const (
	SlotEmpty SlotKind = iota
	SlotLeaf
	SlotBranch
)

// Slot is one of the eight children of a node: nothing, a single face or
// another node
type Slot struct {
	Kind  SlotKind
	Index int32 // face index for leaves, NodeID for branches
}

// Node is a cluster of faces approximated as a single emitter
type Node struct {
	Child     [childCount]Slot
	Center    core.Vec3 // area weighted face center
	Area      float64
	DCO       float64 // max squared distance from Center to a descendant vertex
	SH        SH        // normalised by Area once the build completes
	Occlusion float64   // area weighted occlusion of the descendants
	Radiance  core.Vec3 // area weighted outgoing radiance
}

// faceRecord caches what the tree needs of a scene face
type faceRecord struct {
	ref    geometry.FaceRef
	verts  [4]core.Vec3
	count  int
	center core.Vec3
	normal core.Vec3
	area   float64
	albedo core.Vec3
	face   *geometry.Face
}

func (f *faceRecord) vertices() []core.Vec3 {
	return f.verts[:f.count]
}

// FaceSource enumerates the faces of a scene
type FaceSource interface {
	ForEachFace(fn func(f *geometry.Face))
}

// FaceShader returns the radiance leaving point p with normal n on face f
// under direct lighting. It seeds indirect bounces and must be safe for
// concurrent use.
type FaceShader func(f *geometry.Face, p, n core.Vec3) core.Vec3

// Tree is the occlusion octree. After Build returns it is read-only.
type Tree struct {
	nodes    []Node
	faces    []faceRecord
	occ      []float64   // per face occlusion weight
	rad      []core.Vec3 // per face outgoing radiance
	maxDepth int
	settings Settings
}

// Build constructs the tree over every face whose material takes part in
// approximate occlusion, then runs the configured refinement passes and
// indirect bounces. shader may be nil when Bounces is 0.
func Build(ctx context.Context, src FaceSource, settings Settings, shader FaceShader) (*Tree, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	log := settings.logger()
	start := time.Now()

	t := &Tree{settings: settings}
	skipped := 0
	src.ForEachFace(func(f *geometry.Face) {
		if f.Material != nil && !f.Material.Has(material.ModeApproxOcclusion) {
			return
		}
		if f.Area() <= 0 {
			skipped++
			return
		}
		rec := faceRecord{
			ref:    f.Ref,
			count:  f.Count,
			verts:  f.V,
			center: f.Center(),
			normal: f.Normal,
			area:   f.Area(),
			albedo: core.Splat(0.8),
			face:   f,
		}
		if f.Material != nil {
			rec.albedo = f.Material.Color.Multiply(f.Material.Reflect)
		}
		t.faces = append(t.faces, rec)
	})
	if skipped > 0 {
		log.Debugf("skipped %d degenerate faces", skipped)
	}
	if len(t.faces) == 0 {
		return nil, ErrNoFaces
	}
	if settings.MaxFaces > 0 && len(t.faces) > settings.MaxFaces {
		return nil, fmt.Errorf("%w: %d faces, limit %d", ErrTooManyFaces, len(t.faces), settings.MaxFaces)
	}

	t.occ = make([]float64, len(t.faces))
	for i := range t.occ {
		t.occ[i] = 1
	}
	t.rad = make([]core.Vec3, len(t.faces))

	if err := t.build(ctx); err != nil {
		return nil, err
	}
	log.Infof("built occlusion tree: %d faces, %d nodes, depth %d in %v",
		len(t.faces), len(t.nodes), t.maxDepth, time.Since(start))

	if settings.Indirect() {
		if err := t.shadeFaces(ctx, shader); err != nil {
			return nil, err
		}
		t.sumOcclusion(0)
	}
	if settings.Passes > 0 {
		if err := t.computePasses(ctx, settings.Passes); err != nil {
			return nil, err
		}
	}
	if settings.Indirect() {
		if err := t.computeBounces(ctx, settings.Bounces); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// NumFaces returns the number of faces in the tree
func (t *Tree) NumFaces() int {
	return len(t.faces)
}

// NumNodes returns the number of internal nodes
func (t *Tree) NumNodes() int {
	return len(t.nodes)
}

// MaxDepth returns the depth of the deepest node, the root being 1
func (t *Tree) MaxDepth() int {
	return t.maxDepth
}

// Root returns the root node
func (t *Tree) Root() *Node {
	return &t.nodes[0]
}

// Node returns the node with the given id
func (t *Tree) Node(id NodeID) *Node {
	return &t.nodes[id]
}

// FaceArea returns the area of leaf face i
func (t *Tree) FaceArea(i int32) float64 {
	return t.faces[i].area
}

// FaceOcclusion returns the occlusion weight of leaf face i
func (t *Tree) FaceOcclusion(i int32) float64 {
	return t.occ[i]
}

// builder owns one arena while building a subtree
type builder struct {
	ctx      context.Context
	faces    []faceRecord
	order    []int32 // face indices, partitioned in place
	scratch  []int32
	split    SplitStrategy
	nodes    []Node
	maxDepth int
}

func (t *Tree) build(ctx context.Context) error {
	n := len(t.faces)
	order := make([]int32, n)
	for i := range order {
		order[i] = int32(i)
	}

	b := &builder{
		ctx:      ctx,
		faces:    t.faces,
		order:    order,
		scratch:  make([]int32, n),
		split:    t.settings.Split,
		maxDepth: 1,
	}
	b.nodes = append(b.nodes, Node{})

	threaded := n > t.settings.ThreadedThreshold && t.settings.workers() > 1
	if err := b.buildNode(0, 0, n, 1, threaded, t.settings.workers()); err != nil {
		return err
	}

	t.nodes = b.nodes
	t.maxDepth = b.maxDepth
	normalizeSH(t.nodes)
	return nil
}

// buildNode fills node id from the faces order[lo:hi]. With threaded set
// the branch children are built concurrently, each in its own arena.
func (b *builder) buildNode(id NodeID, lo, hi, depth int, threaded bool, workers int) error {
	if depth <= 8 {
		if err := b.ctx.Err(); err != nil {
			return err
		}
	}

	b.nodes[id].Occlusion = 1

	if hi-lo <= childCount {
		for k, a := 0, lo; a < hi; k, a = k+1, a+1 {
			b.nodes[id].Child[k] = Slot{Kind: SlotLeaf, Index: b.order[a]}
		}
	} else {
		offset, count := b.split8(lo, hi)

		var pending []int
		for k := 0; k < childCount; k++ {
			switch count[k] {
			case 0:
				b.nodes[id].Child[k] = Slot{Kind: SlotEmpty}
			case 1:
				b.nodes[id].Child[k] = Slot{Kind: SlotLeaf, Index: b.order[offset[k]]}
			default:
				if threaded {
					pending = append(pending, k)
					continue
				}
				child := NodeID(len(b.nodes))
				b.nodes = append(b.nodes, Node{})
				b.nodes[id].Child[k] = Slot{Kind: SlotBranch, Index: int32(child)}
				b.maxDepth = max(b.maxDepth, depth+1)
				if err := b.buildNode(child, offset[k], offset[k]+count[k], depth+1, false, 1); err != nil {
					return err
				}
			}
		}

		if len(pending) > 0 {
			if err := b.buildParallel(id, pending, offset, count, depth, workers); err != nil {
				return err
			}
		}
	}

	b.aggregate(id)
	return nil
}

// buildParallel builds the pending children of node id concurrently and
// merges their arenas. Each subtree only touches its own range of order.
func (b *builder) buildParallel(id NodeID, pending []int, offset, count [childCount]int, depth, workers int) error {
	subs := make([]*builder, len(pending))
	errs := make([]error, len(pending))
	sem := make(chan struct{}, workers)

	var wg sync.WaitGroup
	for i, k := range pending {
		sub := &builder{
			ctx:      b.ctx,
			faces:    b.faces,
			order:    b.order,
			scratch:  b.scratch,
			split:    b.split,
			nodes:    []Node{{}},
			maxDepth: depth + 1,
		}
		subs[i] = sub

		wg.Add(1)
		go func(i, k int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			errs[i] = sub.buildNode(0, offset[k], offset[k]+count[k], depth+1, false, 1)
		}(i, k)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	for i, k := range pending {
		sub := subs[i]
		base := int32(len(b.nodes))
		for _, node := range sub.nodes {
			for c := range node.Child {
				if node.Child[c].Kind == SlotBranch {
					node.Child[c].Index += base
				}
			}
			b.nodes = append(b.nodes, node)
		}
		b.nodes[id].Child[k] = Slot{Kind: SlotBranch, Index: base}
		b.maxDepth = max(b.maxDepth, sub.maxDepth)
	}
	return nil
}

// split8 divides order[lo:hi] into eight groups with three rounds of
// binary splits and returns each group's start and size
func (b *builder) split8(lo, hi int) (offset, count [childCount]int) {
	sx := b.splitRange(lo, hi)
	sy0 := b.splitRange(lo, sx)
	sy1 := b.splitRange(sx, hi)
	sz := [4]int{
		b.splitRange(lo, sy0),
		b.splitRange(sy0, sx),
		b.splitRange(sx, sy1),
		b.splitRange(sy1, hi),
	}

	bounds := [childCount + 1]int{lo, sz[0], sy0, sz[1], sx, sz[2], sy1, sz[3], hi}
	for k := 0; k < childCount; k++ {
		offset[k] = bounds[k]
		count[k] = bounds[k+1] - bounds[k]
	}
	return offset, count
}

// splitRange partitions order[lo:hi] along the longest axis of the face
// centers and returns the first index of the upper half. A split that
// leaves one side empty is forced to the middle of the range so
// coincident centers still terminate.
func (b *builder) splitRange(lo, hi int) int {
	if hi-lo < 2 {
		return lo
	}

	bounds := core.EmptyAABB()
	for _, fi := range b.order[lo:hi] {
		bounds = bounds.Extend(b.faces[fi].center)
	}
	axis := bounds.LongestAxis()

	var split int
	if b.split == SplitMedian {
		part := b.order[lo:hi]
		sort.SliceStable(part, func(i, j int) bool {
			return b.faces[part[i]].center.Index(axis) < b.faces[part[j]].center.Index(axis)
		})
		split = (lo + hi) / 2
	} else {
		mid := 0.5 * (bounds.Min.Index(axis) + bounds.Max.Index(axis))

		// stable partition through the scratch buffer
		left := lo
		for _, fi := range b.order[lo:hi] {
			if b.faces[fi].center.Index(axis) <= mid {
				b.scratch[left] = fi
				left++
			}
		}
		k := left
		for _, fi := range b.order[lo:hi] {
			if b.faces[fi].center.Index(axis) > mid {
				b.scratch[k] = fi
				k++
			}
		}
		copy(b.order[lo:hi], b.scratch[lo:hi])
		split = left
	}

	if split == lo || split == hi {
		split = (lo + hi) / 2
	}
	return split
}

// aggregate sums area, center and harmonics of the children of node id
// and measures its extent
func (b *builder) aggregate(id NodeID) {
	node := &b.nodes[id]
	node.Area = 0
	node.Center = core.Vec3{}
	node.SH = SH{}

	for _, slot := range node.Child {
		switch slot.Kind {
		case SlotLeaf:
			f := &b.faces[slot.Index]
			sh := shFromDisc(f.normal, f.area)
			node.Area += f.area
			node.SH.add(&sh)
			node.Center = node.Center.AddScaled(f.center, f.area)
		case SlotBranch:
			child := &b.nodes[slot.Index]
			node.Area += child.Area
			node.SH.add(&child.SH)
			node.Center = node.Center.AddScaled(child.Center, child.Area)
		}
	}

	if node.Area != 0 {
		node.Center = node.Center.Multiply(1 / node.Area)
	}

	node.DCO = 0
	if node.Area > 0 {
		node.DCO = b.maxDistance(id, node.Center, 0)
	}
}

// maxDistance returns the largest squared distance from co to any vertex
// below node id
func (b *builder) maxDistance(id NodeID, co core.Vec3, dco float64) float64 {
	for _, slot := range b.nodes[id].Child {
		switch slot.Kind {
		case SlotLeaf:
			for _, v := range b.faces[slot.Index].vertices() {
				dco = max(dco, v.Subtract(co).LengthSquared())
			}
		case SlotBranch:
			dco = b.maxDistance(NodeID(slot.Index), co, dco)
		}
	}
	return dco
}

// normalizeSH divides every node's harmonics by its area so lookups can
// clamp the emitted cosine before scaling by area again
func normalizeSH(nodes []Node) {
	for i := range nodes {
		if nodes[i].Area != 0 {
			nodes[i].SH.scale(1 / nodes[i].Area)
		}
	}
}

// sumOcclusion recomputes area weighted occlusion and radiance bottom-up
func (t *Tree) sumOcclusion(id NodeID) {
	node := &t.nodes[id]
	indirect := t.settings.Indirect()

	occ, total := 0.0, 0.0
	var rad core.Vec3
	for _, slot := range node.Child {
		switch slot.Kind {
		case SlotLeaf:
			area := t.faces[slot.Index].area
			occ += area * t.occ[slot.Index]
			if indirect {
				rad = rad.AddScaled(t.rad[slot.Index], area)
			}
			total += area
		case SlotBranch:
			t.sumOcclusion(NodeID(slot.Index))
			child := &t.nodes[slot.Index]
			occ += child.Area * child.Occlusion
			if indirect {
				rad = rad.AddScaled(child.Radiance, child.Area)
			}
			total += child.Area
		}
	}

	if total != 0 {
		occ /= total
		rad = rad.Multiply(1 / total)
	}
	node.Occlusion = occ
	if indirect {
		node.Radiance = rad
	}
}
