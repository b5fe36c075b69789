package occlusion

import (
	"math"

	"github.com/df07/go-gi-shading/pkg/core"
	"github.com/df07/go-gi-shading/pkg/geometry"
)

// minFalloff skips occluders whose distance attenuation drops below it
const minFalloff = 0.01

// Stack is per-thread traversal scratch space. It must not be shared
// between goroutines.
type Stack struct {
	ids []NodeID
}

// NewStack allocates a stack deep enough for any traversal of the tree
func (t *Tree) NewStack() *Stack {
	return &Stack{ids: make([]NodeID, 0, childCount*(t.maxDepth+1)+1)}
}

// Result is what a lookup gathers at a point
type Result struct {
	Occlusion  float64   // accumulated occluder form factor, may exceed 1
	Indirect   core.Vec3 // irradiance from the cached face radiance
	BentNormal core.Vec3 // average unoccluded direction, only with BentNormal
}

// solidAngle approximates the form factor of a node seen from a receiver
// with normal n, where v points from the receiver to the node center
func solidAngle(node *Node, v core.Vec3, d2, invd float64, n core.Vec3) float64 {
	emit := core.Clamp01(node.SH.eval(v.Multiply(-invd)))
	receive := core.Clamp01(n.Dot(v) * invd)
	return (node.Area * emit * receive) / (d2 + node.Area*emit) / math.Pi
}

// falloff is the distance attenuation of an occluder at squared distance d2
func falloff(distfac, d2 float64) float64 {
	if distfac == 0 {
		return 1
	}
	return 1 / (1 + distfac*d2)
}

// Lookup gathers occlusion at p with normal n. Nodes far enough away
// relative to their size are approximated by their harmonics; closer ones
// are opened and their faces evaluated with exact form factors. exclude is
// skipped so a surface does not occlude itself.
func (t *Tree) Lookup(st *Stack, exclude geometry.FaceRef, p, n core.Vec3) Result {
	s := &t.settings
	indirect := s.Indirect()

	var occ float64
	var rad core.Vec3
	bent := n

	stack := append(st.ids[:0], 0)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node := &t.nodes[id]

		v := node.Center.Subtract(p)
		d2 := v.Dot(v) + 1e-16

		if d2*s.Error > node.Area && d2*s.Error > node.DCO {
			// only an approximated node may be culled by falloff, an opened
			// node can still hold faces next to p
			fac := falloff(s.DistanceFalloff, d2)
			if fac < minFalloff {
				continue
			}
			invd := 1 / math.Sqrt(d2)
			w := solidAngle(node, v, d2, invd, n) * fac
			if indirect {
				rad = rad.AddScaled(node.Radiance, w)
			}
			w *= node.Occlusion
			if s.BentNormal {
				bent = bent.AddScaled(v, -w*invd)
			}
			occ += w
			continue
		}

		for _, slot := range node.Child {
			switch slot.Kind {
			case SlotBranch:
				stack = append(stack, NodeID(slot.Index))
			case SlotLeaf:
				f := &t.faces[slot.Index]
				if f.ref == exclude {
					continue
				}

				fv := f.center.Subtract(p)
				fd2 := fv.Dot(fv) + 1e-16
				fac := falloff(s.DistanceFalloff, fd2)
				if fac < minFalloff {
					continue
				}

				w := core.VisibleFormFactor(p, n, f.vertices()) * fac
				if indirect {
					rad = rad.AddScaled(t.rad[slot.Index], w)
				}
				w *= t.occ[slot.Index]
				if s.BentNormal {
					bent = bent.AddScaled(fv, -w/math.Sqrt(fd2))
				}
				occ += w
			}
		}
	}
	st.ids = stack[:0]

	res := Result{Occlusion: occ, Indirect: rad}
	if s.BentNormal {
		res.BentNormal = bent.Normalize()
	}
	return res
}

// Sky returns the environment color seen along a direction
type Sky func(dir core.Vec3) core.Vec3

// Sample is the final shading input derived from a lookup
type Sample struct {
	AO       float64   // visibility, 1 is fully open
	Env      core.Vec3 // environment light reaching the point
	Indirect core.Vec3 // one or more bounces of diffuse light
}

// Intensity is the largest channel, used to reject cache interpolation
// across sharp changes
func (s Sample) Intensity() float64 {
	return max(s.AO, s.Env.MaxComponent(), s.Indirect.MaxComponent())
}

// Sample looks up p and converts the result to visibility, environment
// light and indirect light. The environment is looked up along the bent
// normal when available; sky may be nil for a white environment.
func (t *Tree) Sample(st *Stack, exclude geometry.FaceRef, p, n core.Vec3, sky Sky) Sample {
	res := t.Lookup(st, exclude, p, n)

	ao := core.Clamp01(1 - res.Occlusion)
	dir := n
	if t.settings.BentNormal {
		dir = res.BentNormal
	}

	env := core.Splat(ao)
	if sky != nil {
		env = sky(dir).Multiply(ao)
	}

	var indirect core.Vec3
	if t.settings.Indirect() {
		indirect = res.Indirect.MaxVec(core.Vec3{})
	}
	return Sample{AO: ao, Env: env, Indirect: indirect}
}
