package sss

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-gi-shading/pkg/core"
	"github.com/df07/go-gi-shading/pkg/log"
)

var logger = log.New("sss")

var (
	// ErrNoPoints is returned when a scatter tree has nothing to build from
	ErrNoPoints = errors.New("sss: no scatter points")

	// ErrInvalidSettings is returned for parameters the dipole model cannot use
	ErrInvalidSettings = errors.New("sss: invalid settings")
)

const (
	tableRange  = 100.0   // squared radius covered by the fine table
	tableRange2 = 10000.0 // radius covered by the coarse table
	tableSize   = 10000

	// maxReflectance keeps the albedo solve away from the singular ro = 1
	maxReflectance = 0.999

	// minAlpha is the floor applied to the solved reduced albedo
	minAlpha = 1e-5
)

// Settings is the dipole diffusion model for one color channel
type Settings struct {
	Ro    float64 // target diffuse reflectance
	Color float64 // reflectance after color factor blending
	IOR   float64
	Front float64
	Back  float64

	A      float64 // internal reflection term (1+Fdr)/(1-Fdr)
	Alpha  float64 // reduced albedo
	Sigma  float64 // effective transport coefficient
	SigmaT float64 // reduced extinction coefficient
	Zr     float64 // depth of the real source
	Zv     float64 // depth of the virtual source

	table  []float64 // Rd indexed by squared radius up to tableRange
	table2 []float64 // Rd indexed by radius up to tableRange2
}

// fresnelDiffuse is the diffuse Fresnel reflectance of a dielectric
// boundary, a polynomial fit in the relative index of refraction
func fresnelDiffuse(ior float64) float64 {
	return -1.44/(ior*ior) + 0.71/ior + 0.668 + 0.0636*ior
}

// totalReflectance is the total diffuse reflectance of a semi-infinite
// medium with reduced albedo alpha, less the target ro
func totalReflectance(alpha, a, ro float64) float64 {
	sq := math.Sqrt(3 * (1 - alpha))
	return alpha/2*(1+math.Exp(-4.0/3.0*a*sq))*math.Exp(-sq) - ro
}

// reducedAlbedo solves totalReflectance(alpha) = 0 on [0, 1] with a secant
// iteration kept inside a shrinking bracket. Steps that leave the bracket
// fall back to bisection. The result is floored at minAlpha and reported as
// converged when the residual is small.
func reducedAlbedo(a, ro float64) (float64, bool) {
	const (
		maxIter = 20
		tol     = 1e-10
	)

	lo, hi := 0.0, 1.0
	xp, x := lo, hi
	fp, fx := totalReflectance(lo, a, ro), totalReflectance(hi, a, ro)

	for i := 0; i < maxIter; i++ {
		fs := fx - fp
		if math.Abs(fs) < 1e-12 {
			break
		}
		d := (x - xp) / fs * fx
		nx := x - d
		if !(nx > lo && nx < hi) {
			nx = 0.5 * (lo + hi)
		}

		fn := totalReflectance(nx, a, ro)
		xp, fp = x, fx
		x, fx = nx, fn

		if fn < 0 {
			lo = nx
		} else {
			hi = nx
		}
		if math.Abs(fn) < tol || math.Abs(d) < 1e-12 {
			break
		}
	}

	converged := math.Abs(totalReflectance(x, a, ro)) <= 1e-6
	return math.Max(x, minAlpha), converged
}

// NewSettings builds the dipole model for one channel. reflectance is the
// diffuse color the surface should show, radius the mean free path and ior
// the relative index of refraction. colorFactor blends the result between
// white and reflectance. front and back weight light entering from the
// front and back of the surface.
func NewSettings(reflectance, radius, ior, colorFactor, front, back float64) (*Settings, error) {
	return newSettings(reflectance, radius, ior, colorFactor, front, back, logger)
}

func newSettings(reflectance, radius, ior, colorFactor, front, back float64, lg core.Logger) (*Settings, error) {
	if radius <= 0 || math.IsNaN(radius) {
		return nil, fmt.Errorf("%w: radius %g must be positive", ErrInvalidSettings, radius)
	}
	if ior <= 0 || math.IsNaN(ior) {
		return nil, fmt.Errorf("%w: ior %g must be positive", ErrInvalidSettings, ior)
	}
	if reflectance < 0 || math.IsNaN(reflectance) {
		return nil, fmt.Errorf("%w: negative reflectance %g", ErrInvalidSettings, reflectance)
	}

	fdr := fresnelDiffuse(ior)
	s := &Settings{
		Ro:    math.Min(reflectance, maxReflectance),
		IOR:   ior,
		Front: front,
		Back:  back,
		A:     (1 + fdr) / (1 - fdr),
	}
	s.Color = s.Ro*colorFactor + (1 - colorFactor)

	alpha, ok := reducedAlbedo(s.A, s.Ro)
	if !ok {
		lg.Warningf("reduced albedo did not converge for reflectance %.4f ior %.3f, using %.6f", s.Ro, ior, alpha)
	}
	s.Alpha = alpha

	s.Sigma = 1 / radius
	s.SigmaT = s.Sigma / math.Sqrt(3*(1-alpha))
	s.Zr = 1 / s.SigmaT
	s.Zv = s.Zr + 4*s.A/(3*s.SigmaT)

	s.buildTables()
	return s, nil
}

// rd evaluates the dipole diffuse reflectance at squared radius r2
func (s *Settings) rd(r2 float64) float64 {
	sr := math.Sqrt(r2 + s.Zr*s.Zr)
	sv := math.Sqrt(r2 + s.Zv*s.Zv)

	fr := s.Zr * (1 + s.Sigma*sr) * math.Exp(-s.Sigma*sr) / (sr * sr * sr)
	fv := s.Zv * (1 + s.Sigma*sv) * math.Exp(-s.Sigma*sv) / (sv * sv * sv)
	return (fr + fv) / (4 * math.Pi)
}

func (s *Settings) buildTables() {
	s.table = make([]float64, tableSize+1)
	s.table2 = make([]float64, tableSize+1)
	for i := range s.table {
		s.table[i] = s.rd(float64(i) * tableRange / tableSize)

		r := float64(i) * tableRange2 / tableSize
		s.table2[i] = s.rd(r * r)
	}
}

// Rd returns the diffuse reflectance at squared distance r2 from the
// entry point. Small distances come from the fine table, larger ones from
// the coarse table and anything beyond both is evaluated directly.
func (s *Settings) Rd(r2 float64) float64 {
	index := r2 * tableSize / tableRange
	if i := int(index); i < tableSize {
		t := index - float64(i)
		return s.table[i]*(1-t) + s.table[i+1]*t
	}

	index = math.Sqrt(r2) * tableSize / tableRange2
	if i := int(index); i < tableSize {
		t := index - float64(i)
		return s.table2[i]*(1-t) + s.table2[i+1]*t
	}

	return s.rd(r2)
}

// Reflectance is the total diffuse reflectance the model produces, which
// matches Ro when the albedo solve converged
func (s *Settings) Reflectance() float64 {
	return totalReflectance(s.Alpha, s.A, 0)
}

// ChannelSettings builds the three per channel models of a material
func ChannelSettings(color, radius core.Vec3, ior, colorFactor, front, back float64) ([3]*Settings, error) {
	var out [3]*Settings
	for c := 0; c < 3; c++ {
		s, err := NewSettings(color.Index(c), radius.Index(c), ior, colorFactor, front, back)
		if err != nil {
			return out, fmt.Errorf("channel %d: %w", c, err)
		}
		out[c] = s
	}
	return out, nil
}
