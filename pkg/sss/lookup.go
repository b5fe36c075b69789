package sss

import (
	"github.com/df07/go-gi-shading/pkg/core"
)

// gather accumulates weighted radiance and the matching Rd weights per
// channel, separately for front and back facing samples
type gather struct {
	rad, backrad     core.Vec3
	rdsum, backrdsum core.Vec3
}

func (t *Tree) rd(r2 float64) core.Vec3 {
	return core.NewVec3(t.settings[0].Rd(r2), t.settings[1].Rd(r2), t.settings[2].Rd(r2))
}

func (t *Tree) add(g *gather, co core.Vec3, rad core.Vec3, area float64, back bool) {
	if area <= 0 {
		return
	}
	rd := t.rd(co.LengthSquared()).Multiply(area)
	if back {
		g.backrad = g.backrad.Add(rd.MultiplyVec(rad))
		g.backrdsum = g.backrdsum.Add(rd)
	} else {
		g.rad = g.rad.Add(rd.MultiplyVec(rad))
		g.rdsum = g.rdsum.Add(rd)
	}
}

// traverse gathers node id for a point p in scatter units. The child that
// contains p is always opened; other children are opened only while they
// look too large from p.
func (t *Tree) traverse(id int32, p core.Vec3, self bool, g *gather) {
	n := &t.nodes[id]

	if n.leaf() {
		for _, pt := range t.points[n.first : n.first+n.count] {
			d := pt.Position.Subtract(p)
			if pt.Area < 0 {
				t.add(g, d, pt.Radiance, -pt.Area, true)
			} else {
				t.add(g, d, pt.Radiance, pt.Area, false)
			}
		}
		return
	}

	own := subnodeIndex(p, n.split)
	for i, c := range n.child {
		if c == noChild {
			continue
		}
		if self && i == own {
			t.traverse(c, p, true, g)
			continue
		}

		sub := &t.nodes[c]
		d2 := sub.co.Subtract(p).LengthSquared()
		if sub.area == 0 {
			d2 = sub.backco.Subtract(p).LengthSquared()
		}
		if sub.area+sub.backarea > t.opts.Error*d2 {
			t.traverse(c, p, false, g)
			continue
		}

		t.add(g, sub.co.Subtract(p), sub.rad, sub.area, false)
		t.add(g, sub.backco.Subtract(p), sub.backrad, sub.backarea, true)
	}
}

// Sample returns the radiance scattered out of the surface at world
// position p. The gathered light is divided by the gathered Rd weight and
// scaled by the target reflectance, which compensates for surface that was
// never sampled. Back facing light only counts when it makes the result
// brighter.
func (t *Tree) Sample(p core.Vec3) core.Vec3 {
	var g gather
	t.traverse(0, p.Multiply(t.opts.Scale), true, &g)

	s := t.settings
	rad := g.rad.Multiply(s[0].Front)
	back := g.backrad.Multiply(s[0].Back)
	all := rad.Add(back)
	allsum := g.rdsum.Add(g.backrdsum)

	var out [3]float64
	for c := 0; c < 3; c++ {
		var front, both float64
		if rs := g.rdsum.Index(c); rs > 1e-16 {
			front = s[c].Color * rad.Index(c) / rs
		}
		if rs := allsum.Index(c); rs > 1e-16 {
			both = s[c].Color * all.Index(c) / rs
		}
		out[c] = max(front, both)
	}
	return core.NewVec3(out[0], out[1], out[2])
}
