package sss

import (
	"context"
	"fmt"
	"math"

	"github.com/df07/go-gi-shading/pkg/core"
)

const (
	maxLeafPoints = 8
	maxTreeDepth  = 15

	noChild int32 = -1
)

// Point is a surface sample lit from outside. Area is negative for
// samples seen from the back of the surface.
type Point struct {
	Position core.Vec3
	Radiance core.Vec3
	Area     float64
}

// Back reports whether the sample was taken on a back facing surface
func (p Point) Back() bool {
	return p.Area < 0
}

// Options configures a scatter tree
type Options struct {
	Error float64 // admissibility threshold, smaller is more accurate
	Scale float64 // world to scatter units, radii are given in scatter units
}

// DefaultOptions matches the material defaults
func DefaultOptions() Options {
	return Options{Error: 0.05, Scale: 0.1}
}

// Validate checks the options
func (o Options) Validate() error {
	if o.Error <= 0 {
		return fmt.Errorf("%w: error threshold %g must be positive", ErrInvalidSettings, o.Error)
	}
	if o.Scale <= 0 {
		return fmt.Errorf("%w: scale %g must be positive", ErrInvalidSettings, o.Scale)
	}
	return nil
}

type node struct {
	child [8]int32
	split core.Vec3

	area, backarea float64
	rad, backrad   core.Vec3 // area weighted average
	co, backco     core.Vec3 // radiance weighted position

	first, count int32 // leaf points
}

func (n *node) leaf() bool {
	return n.count > 0
}

// Tree clusters scatter points for fast BSSRDF gathering. It holds one
// dipole model per color channel and is read-only after BuildTree.
type Tree struct {
	settings [3]*Settings
	opts     Options
	nodes    []node
	points   []Point
	depth    int
}

// BuildTree scales the points into scatter units and sorts them into an
// octree split at the middle of each node's bounds. Nodes where every point
// falls into one child are collapsed into that child.
func BuildTree(ctx context.Context, points []Point, settings [3]*Settings, opts Options) (*Tree, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	for c, s := range settings {
		if s == nil {
			return nil, fmt.Errorf("%w: missing settings for channel %d", ErrInvalidSettings, c)
		}
	}
	if len(points) == 0 {
		return nil, ErrNoPoints
	}

	t := &Tree{settings: settings, opts: opts, points: make([]Point, len(points))}
	bounds := core.EmptyAABB()
	a2 := opts.Scale * opts.Scale
	for i, p := range points {
		p.Position = p.Position.Multiply(opts.Scale)
		p.Area *= a2
		t.points[i] = p
		bounds = bounds.Extend(p.Position)
	}

	mid := bounds.Center()
	half := bounds.Size().Multiply(0.5)

	b := &treeBuilder{tree: t, ctx: ctx, scratch: make([]Point, len(points))}
	t.nodes = append(t.nodes, newNode())
	if err := b.build(0, 0, len(points), mid, half, 1); err != nil {
		return nil, err
	}
	return t, nil
}

func newNode() node {
	n := node{}
	for i := range n.child {
		n.child[i] = noChild
	}
	return n
}

// NumPoints returns the number of points in the tree
func (t *Tree) NumPoints() int {
	return len(t.points)
}

// NumNodes returns the number of nodes in the tree
func (t *Tree) NumNodes() int {
	return len(t.nodes)
}

// Depth returns the depth of the deepest node, the root being 1
func (t *Tree) Depth() int {
	return t.depth
}

// Settings returns the dipole model of a color channel
func (t *Tree) Settings(channel int) *Settings {
	return t.settings[channel]
}

type treeBuilder struct {
	tree    *Tree
	ctx     context.Context
	scratch []Point
}

func subnodeIndex(p, split core.Vec3) int {
	i := 0
	if p.X >= split.X {
		i |= 1
	}
	if p.Y >= split.Y {
		i |= 2
	}
	if p.Z >= split.Z {
		i |= 4
	}
	return i
}

// subnodeBounds returns the middle and half size of child i
func subnodeBounds(i int, mid, half core.Vec3) (core.Vec3, core.Vec3) {
	q := half.Multiply(0.5)
	sub := mid
	if i&1 != 0 {
		sub.X += q.X
	} else {
		sub.X -= q.X
	}
	if i&2 != 0 {
		sub.Y += q.Y
	} else {
		sub.Y -= q.Y
	}
	if i&4 != 0 {
		sub.Z += q.Z
	} else {
		sub.Z -= q.Z
	}
	return sub, q
}

func (b *treeBuilder) build(id int32, lo, hi int, mid, half core.Vec3, depth int) error {
	if depth <= 8 {
		if err := b.ctx.Err(); err != nil {
			return err
		}
	}
	t := b.tree

	var count [8]int
	for {
		t.depth = max(t.depth, depth)
		if hi-lo <= maxLeafPoints || depth >= maxTreeDepth {
			n := &t.nodes[id]
			n.first, n.count = int32(lo), int32(hi-lo)
			n.split = mid
			b.sumLeaf(n)
			return nil
		}

		count = [8]int{}
		for i := lo; i < hi; i++ {
			count[subnodeIndex(t.points[i].Position, mid)]++
		}

		used, only := 0, 0
		for i, c := range count {
			if c > 0 {
				used++
				only = i
			}
		}
		if used != 1 {
			break
		}
		// every point is in one octant, descend without adding a node
		mid, half = subnodeBounds(only, mid, half)
		depth++
	}

	var offset [8]int
	pos := lo
	for i := range offset {
		offset[i] = pos
		pos += count[i]
	}

	fill := offset
	for i := lo; i < hi; i++ {
		k := subnodeIndex(t.points[i].Position, mid)
		b.scratch[fill[k]] = t.points[i]
		fill[k]++
	}
	copy(t.points[lo:hi], b.scratch[lo:hi])

	t.nodes[id].split = mid
	for k := 0; k < 8; k++ {
		if count[k] == 0 {
			continue
		}
		child := int32(len(t.nodes))
		t.nodes = append(t.nodes, newNode())
		t.nodes[id].child[k] = child

		submid, subhalf := subnodeBounds(k, mid, half)
		if err := b.build(child, offset[k], offset[k]+count[k], submid, subhalf, depth+1); err != nil {
			return err
		}
	}

	b.sumBranch(&t.nodes[id])
	return nil
}

// sumLeaf aggregates the points of a leaf. Positions are weighted by area
// times radiance so the cluster sits where most light enters.
func (b *treeBuilder) sumLeaf(n *node) {
	var wco, wback float64
	var avg, backavg core.Vec3
	var nfront, nback int

	for _, p := range b.tree.points[n.first : n.first+n.count] {
		w := p.Radiance.Sum()
		if p.Area >= 0 {
			n.area += p.Area
			n.rad = n.rad.AddScaled(p.Radiance, p.Area)
			n.co = n.co.AddScaled(p.Position, p.Area*math.Abs(w))
			wco += p.Area * math.Abs(w)
			avg = avg.Add(p.Position)
			nfront++
		} else {
			a := -p.Area
			n.backarea += a
			n.backrad = n.backrad.AddScaled(p.Radiance, a)
			n.backco = n.backco.AddScaled(p.Position, a*math.Abs(w))
			wback += a * math.Abs(w)
			backavg = backavg.Add(p.Position)
			nback++
		}
	}

	finishCluster(&n.rad, &n.co, n.area, wco, avg, nfront)
	finishCluster(&n.backrad, &n.backco, n.backarea, wback, backavg, nback)
}

func (b *treeBuilder) sumBranch(n *node) {
	var wco, wback float64
	var avg, backavg core.Vec3
	var nfront, nback int

	for _, c := range n.child {
		if c == noChild {
			continue
		}
		sub := &b.tree.nodes[c]

		if sub.area > 0 {
			w := sub.area * math.Abs(sub.rad.Sum())
			n.area += sub.area
			n.rad = n.rad.AddScaled(sub.rad, sub.area)
			n.co = n.co.AddScaled(sub.co, w)
			wco += w
			avg = avg.Add(sub.co)
			nfront++
		}
		if sub.backarea > 0 {
			w := sub.backarea * math.Abs(sub.backrad.Sum())
			n.backarea += sub.backarea
			n.backrad = n.backrad.AddScaled(sub.backrad, sub.backarea)
			n.backco = n.backco.AddScaled(sub.backco, w)
			wback += w
			backavg = backavg.Add(sub.backco)
			nback++
		}
	}

	finishCluster(&n.rad, &n.co, n.area, wco, avg, nfront)
	finishCluster(&n.backrad, &n.backco, n.backarea, wback, backavg, nback)
}

// finishCluster turns the weighted sums of one side into averages. Without
// any radiance the plain average position is used.
func finishCluster(rad, co *core.Vec3, area, wco float64, avg core.Vec3, count int) {
	if area > 0 {
		*rad = rad.Multiply(1 / area)
	}
	if wco > 0 {
		*co = co.Multiply(1 / wco)
	} else if count > 0 {
		*co = avg.Multiply(1 / float64(count))
	}
}
