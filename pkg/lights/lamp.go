package lights

import (
	"math"

	"github.com/df07/go-gi-shading/pkg/core"
)

// LampType selects the emission model of a lamp
type LampType int

const (
	LampPoint LampType = iota
	LampSun
	LampSpot
	LampHemi
	LampArea
)

func (t LampType) String() string {
	switch t {
	case LampPoint:
		return "point"
	case LampSun:
		return "sun"
	case LampSpot:
		return "spot"
	case LampHemi:
		return "hemi"
	case LampArea:
		return "area"
	default:
		return "unknown"
	}
}

// Falloff selects how lamp intensity decreases with distance
type Falloff int

const (
	FalloffConstant Falloff = iota
	FalloffInvLinear
	FalloffInvSquare
	FalloffSliders
	FalloffCurve
)

// ShadowMode selects how a lamp computes shadows
type ShadowMode int

const (
	ShadowNone ShadowMode = iota
	ShadowRay
	ShadowBuffer
)

// ShadowMap is a precomputed shadow buffer owned by the caller. Shadow
// returns the lit fraction of p in [0, 1].
type ShadowMap interface {
	Shadow(p, n core.Vec3) float64
}

// visibilityCutoff below this a lamp is considered to not reach a point
const visibilityCutoff = 0.001

// Lamp is a light source as seen by the shading core
type Lamp struct {
	Name      string
	Type      LampType
	Position  core.Vec3
	Direction core.Vec3 // where the lamp points; unused for point lamps
	Color     core.Vec3
	Energy    float64

	Distance  float64 // reference distance of the falloff curves
	Falloff   Falloff
	Linear    float64 // sliders falloff weights
	Quadratic float64
	Curve     func(t float64) float64 // FalloffCurve, t is distance/Distance

	SpotSize     float64 // full cone angle in radians
	SpotBlend    float64 // soft edge as a fraction of the cone
	SquareSpot   bool
	SphereCutoff bool // fade to zero at Distance

	Shadow            ShadowMode
	ShadowOnly        bool // only darken, never add light
	ShadowColor       core.Vec3
	TransparentShadow bool // shadow rays pass through transparent materials
	ShadowMap         ShadowMap

	NoDiffuse  bool
	NoSpecular bool
	Layer      uint32
	Group      string // light group used by materials to restrict lighting

	SizeX    float64 // area lamp size along U
	SizeY    float64 // area lamp size along V
	Samples  int     // shadow samples per side, area lamps and soft shadows
	SoftSize float64 // width of the soft shadow disc of point and spot lamps
	Dither   bool    // rotate the jitter table between neighbouring pixels

	spotCos   float64
	spotBlend float64
	u, v      core.Vec3
	corners   [4]core.Vec3
	areaScale float64
	jitter    *JitterPlane
}

// NewPointLamp creates an omnidirectional lamp with inverse-square falloff
func NewPointLamp(pos, color core.Vec3, energy float64) *Lamp {
	return &Lamp{
		Name:     "point",
		Type:     LampPoint,
		Position: pos,
		Color:    color,
		Energy:   energy,
		Distance: 25,
		Falloff:  FalloffInvSquare,
		Shadow:   ShadowRay,
		Layer:    ^uint32(0),
		Samples:  1,
	}
}

// NewSunLamp creates a directional lamp
func NewSunLamp(dir, color core.Vec3, energy float64) *Lamp {
	l := NewPointLamp(core.Vec3{}, color, energy)
	l.Name = "sun"
	l.Type = LampSun
	l.Direction = dir
	return l
}

// NewHemiLamp creates a sky like lamp lighting from the half space it
// points away from
func NewHemiLamp(dir, color core.Vec3, energy float64) *Lamp {
	l := NewPointLamp(core.Vec3{}, color, energy)
	l.Name = "hemi"
	l.Type = LampHemi
	l.Direction = dir
	return l
}

// NewSpotLamp creates a cone lamp at pos pointing along dir
func NewSpotLamp(pos, dir, color core.Vec3, energy, size, blend float64) *Lamp {
	l := NewPointLamp(pos, color, energy)
	l.Name = "spot"
	l.Type = LampSpot
	l.Direction = dir
	l.SpotSize = size
	l.SpotBlend = blend
	return l
}

// NewAreaLamp creates a rectangular single-sided lamp centered at pos and
// emitting along dir. u gives the orientation of the SizeX edge.
func NewAreaLamp(pos, dir, u core.Vec3, sizeX, sizeY float64, color core.Vec3, energy float64, samples int) *Lamp {
	l := NewPointLamp(pos, color, energy)
	l.Name = "area"
	l.Type = LampArea
	l.Direction = dir
	l.u = u
	l.SizeX = sizeX
	l.SizeY = sizeY
	l.Samples = samples
	return l
}

// Prepare derives the cached frame, spot cone and jitter tables. It must
// be called after the lamp is configured and before shading starts.
func (l *Lamp) Prepare() {
	if l.Type != LampPoint {
		l.Direction = l.Direction.Normalize()
	}
	if l.Distance <= 0 {
		l.Distance = 1
	}
	if l.Samples < 1 {
		l.Samples = 1
	}

	half := l.SpotSize / 2
	l.spotCos = math.Cos(half)
	l.spotBlend = (1 - l.spotCos) * l.SpotBlend

	if l.u.IsZero() || math.Abs(l.u.Normalize().Dot(l.Direction)) > 0.999 {
		l.u, l.v = l.Direction.Orthonormal()
	} else {
		l.v = l.Direction.Cross(l.u).Normalize()
		l.u = l.v.Cross(l.Direction).Normalize()
	}

	hx := l.u.Multiply(l.SizeX / 2)
	hy := l.v.Multiply(l.SizeY / 2)
	c := l.Position
	l.corners = [4]core.Vec3{
		c.Subtract(hx).Subtract(hy),
		c.Add(hx).Subtract(hy),
		c.Add(hx).Add(hy),
		c.Subtract(hx).Add(hy),
	}

	l.areaScale = 1
	if l.Type == LampArea && l.SizeX*l.SizeY > 0 {
		// unit irradiance at Distance on the axis of a small lamp
		l.areaScale = math.Pi * l.Distance * l.Distance / (l.SizeX * l.SizeY)
	}

	l.jitter = nil
	total := l.Samples * l.Samples
	switch {
	case l.Type == LampArea:
		l.jitter = NewJitterPlane(total, l.SizeX, l.SizeY)
	case l.SoftSize > 0 && total > 1 && (l.Type == LampPoint || l.Type == LampSpot):
		l.jitter = NewJitterPlane(total, l.SoftSize, l.SoftSize)
	}
}

// Intensity returns the lamp color scaled by its energy
func (l *Lamp) Intensity() core.Vec3 {
	return l.Color.Multiply(l.Energy)
}

// Lights reports whether the lamp contributes to surfaces on layer
func (l *Lamp) Lights(layer uint32) bool {
	return l.Energy != 0 && l.Layer&layer != 0
}

// CastsShadow reports whether shadows should be computed for this lamp
func (l *Lamp) CastsShadow() bool {
	return l.Shadow != ShadowNone && l.Type != LampHemi
}

// Visibility returns the unit direction from p toward the lamp, the
// distance to it and the falloff factor including spot cone and sphere
// cutoff. Directional lamps report a distance of 1.
func (l *Lamp) Visibility(p core.Vec3) (lv core.Vec3, dist, fac float64) {
	if l.Type == LampSun || l.Type == LampHemi {
		return l.Direction.Negate(), 1, 1
	}

	toLamp := l.Position.Subtract(p)
	dist = toLamp.Length()
	if dist == 0 {
		return l.Direction.Negate(), 0, 0
	}
	lv = toLamp.Multiply(1 / dist)

	// area lamps integrate their own falloff through the form factor
	if l.Type == LampArea {
		return lv, dist, 1
	}

	fac = l.falloff(dist)
	if l.SphereCutoff {
		t := l.Distance - dist
		if t <= 0 {
			fac = 0
		} else {
			fac *= t / l.Distance
		}
	}

	if fac > 0 && l.Type == LampSpot {
		fac *= l.spotFactor(lv.Negate())
	}

	if fac <= visibilityCutoff {
		fac = 0
	}
	return lv, dist, fac
}

func (l *Lamp) falloff(dist float64) float64 {
	switch l.Falloff {
	case FalloffInvLinear:
		return l.Distance / (l.Distance + dist)
	case FalloffInvSquare:
		return l.Distance / (l.Distance + dist*dist)
	case FalloffSliders:
		fac := 1.0
		if l.Linear > 0 {
			fac = l.Distance / (l.Distance + l.Linear*dist)
		}
		if l.Quadratic > 0 {
			d2 := l.Distance * l.Distance
			fac *= d2 / (d2 + l.Quadratic*dist*dist)
		}
		return fac
	case FalloffCurve:
		if l.Curve == nil {
			return 1
		}
		return l.Curve(dist / l.Distance)
	default:
		return 1
	}
}

// spotFactor attenuates by the spot cone. out is the unit direction from
// the lamp toward the shaded point.
func (l *Lamp) spotFactor(out core.Vec3) float64 {
	var inpr float64
	if l.SquareSpot {
		along := out.Dot(l.Direction)
		if along <= 0 {
			return 0
		}
		x := max(math.Abs(out.Dot(l.u)/along), math.Abs(out.Dot(l.v)/along))
		// cos(atan(x))
		inpr = 1 / math.Sqrt(1+x*x)
	} else {
		inpr = out.Dot(l.Direction)
	}

	if inpr <= l.spotCos {
		return 0
	}
	t := inpr - l.spotCos
	if t < l.spotBlend && l.spotBlend != 0 {
		// smoothstep into the soft edge
		i := t / l.spotBlend
		t = i * i
		inpr *= 3*t - 2*t*i
	}
	return inpr
}

// Corners returns the world-space corners of an area lamp
func (l *Lamp) Corners() []core.Vec3 {
	return l.corners[:]
}

// AreaEnergy returns the irradiance factor of an area lamp at p with
// normal n: the visible form factor of the lamp rectangle, scaled so a
// small lamp at Distance on its axis gives 1. The lamp is single sided.
func (l *Lamp) AreaEnergy(p, n core.Vec3) float64 {
	if p.Subtract(l.Position).Dot(l.Direction) <= 0 {
		return 0
	}
	return core.VisibleFormFactor(p, n, l.corners[:]) * l.areaScale
}

// Jitter returns the shadow sample offsets for pixel x, y, or nil for
// lamps with hard shadows
func (l *Lamp) Jitter(x, y int) []core.Vec2 {
	if l.jitter == nil {
		return nil
	}
	return l.jitter.Table(x, y, l.Dither)
}

// SamplePosition maps a jitter offset to a world position on the lamp.
// Area lamps use their own plane; soft point and spot lamps use a disc
// facing the shaded point p.
func (l *Lamp) SamplePosition(offset core.Vec2, p core.Vec3) core.Vec3 {
	u, v := l.u, l.v
	if l.Type != LampArea {
		u, v = l.Position.Subtract(p).Normalize().Orthonormal()
	}
	return l.Position.Add(u.Multiply(offset.X)).Add(v.Multiply(offset.Y))
}
