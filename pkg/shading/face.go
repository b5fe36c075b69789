package shading

import (
	"sync"

	"github.com/df07/go-gi-shading/pkg/core"
	"github.com/df07/go-gi-shading/pkg/geometry"
)

// FaceLight returns a shader giving the direct light leaving point p of
// face f. It feeds indirect bounces of the occlusion tree and the point
// collection of subsurface materials. The shader may be called from many
// goroutines; each call borrows a thread context from a pool.
func FaceLight(rc *RenderContext) func(f *geometry.Face, p, n core.Vec3) core.Vec3 {
	pool := &sync.Pool{New: func() any { return NewThreadContext(rc, -1) }}
	return func(f *geometry.Face, p, n core.Vec3) core.Vec3 {
		tc := pool.Get().(*ThreadContext)
		defer pool.Put(tc)

		s := faceInput(rc, tc, f, p, n)
		var res ShadeResult
		for _, lamp := range rc.Scene.LightsFor(s.Material) {
			ShadeOneLight(s, lamp, &res)
		}
		return res.Shad.MaxVec(core.Vec3{}).AddScaled(s.Color, s.Material.Emit)
	}
}

// faceInput builds a shaded-ready input looking straight down on p
func faceInput(rc *RenderContext, tc *ThreadContext, f *geometry.Face, p, n core.Vec3) *ShadeInput {
	s := &ShadeInput{rc: rc, tc: tc, Depth: 1}
	s.Ray = core.NewRay(p.Add(n), n.Negate())
	s.Face = f
	s.Distance = 1
	s.P = p
	s.View = n.Negate()
	s.FaceNormal = n
	s.N = n
	s.Global = p

	s.Material = f.Material
	if s.Material == nil {
		s.Material = defaultMaterial
	}
	s.Color = s.Material.ColorAt(core.Vec2{}, p)
	s.Layer = rc.Scene.InstanceLayer(f.Ref.Instance)
	s.state = StateTexCoords
	return s
}
