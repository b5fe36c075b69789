package shading

import (
	"github.com/df07/go-gi-shading/pkg/core"
)

// Pass is a bitmask of the light components folded into the combined color
type Pass uint32

const (
	PassDiffuse Pass = 1 << iota
	PassSpecular
	PassShadow // use shadowed diffuse instead of unshadowed
	PassAO
	PassEnvironment
	PassIndirect
	PassReflection
	PassRefraction
	PassEmit
	PassSubsurface

	PassAll = PassDiffuse | PassSpecular | PassShadow | PassAO | PassEnvironment |
		PassIndirect | PassReflection | PassRefraction | PassEmit | PassSubsurface
)

// Has reports whether every bit of flag is set
func (p Pass) Has(flag Pass) bool {
	return p&flag == flag
}

// ShadeResult holds every render pass produced for one sample. The shadow
// pass can be reconstructed as Shad / Diff.
type ShadeResult struct {
	Combined core.Vec3

	Diff     core.Vec3 // diffuse light ignoring shadows
	Shad     core.Vec3 // diffuse light with shadows
	Spec     core.Vec3
	AO       core.Vec3
	Env      core.Vec3
	Indirect core.Vec3
	Refl     core.Vec3 // mirror reflection, already weighted by the mirror factor
	Refr     core.Vec3 // transmitted light, already tinted by the filter
	Emit     core.Vec3
	SSS      core.Vec3

	Normal core.Vec3
	Z      float64 // distance along the primary ray, +Inf for misses
	Alpha  float64
	Hit    bool
}

// Add accumulates o into r weighted by w, used to average samples
func (r *ShadeResult) Add(o *ShadeResult, w float64) {
	r.Combined = r.Combined.AddScaled(o.Combined, w)
	r.Diff = r.Diff.AddScaled(o.Diff, w)
	r.Shad = r.Shad.AddScaled(o.Shad, w)
	r.Spec = r.Spec.AddScaled(o.Spec, w)
	r.AO = r.AO.AddScaled(o.AO, w)
	r.Env = r.Env.AddScaled(o.Env, w)
	r.Indirect = r.Indirect.AddScaled(o.Indirect, w)
	r.Refl = r.Refl.AddScaled(o.Refl, w)
	r.Refr = r.Refr.AddScaled(o.Refr, w)
	r.Emit = r.Emit.AddScaled(o.Emit, w)
	r.SSS = r.SSS.AddScaled(o.SSS, w)
	r.Normal = r.Normal.AddScaled(o.Normal, w)
	r.Alpha += o.Alpha * w
}

// combine folds the passes selected by flags into Combined. mirror is the
// mirror factor and opacity the fraction of the surface that is not
// transmitting.
func (r *ShadeResult) combine(flags Pass, mirror, opacity float64) {
	var c core.Vec3
	if flags.Has(PassDiffuse) {
		if flags.Has(PassShadow) {
			c = c.Add(r.Shad)
		} else {
			c = c.Add(r.Diff)
		}
	}
	if flags.Has(PassEnvironment) {
		c = c.Add(r.Env)
	}
	if flags.Has(PassIndirect) {
		c = c.Add(r.Indirect)
	}
	if flags.Has(PassEmit) {
		c = c.Add(r.Emit)
	}
	c = c.MaxVec(core.Vec3{})

	if flags.Has(PassReflection) && mirror > 0 {
		c = c.Multiply(1 - mirror).Add(r.Refl)
	}
	if flags.Has(PassSpecular) {
		c = c.Add(r.Spec)
	}
	if flags.Has(PassRefraction) && opacity < 1 {
		c = c.Multiply(opacity).Add(r.Refr)
	}
	r.Combined = c
}
