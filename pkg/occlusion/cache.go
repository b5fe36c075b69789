package occlusion

import (
	"math"

	"github.com/df07/go-gi-shading/pkg/core"
)

const (
	// CacheStep is the pixel spacing of cached samples
	CacheStep = 3

	// cacheMaxSpread rejects interpolation when corner intensities differ more
	cacheMaxSpread = 0.05

	// cacheMinWeight rejects interpolation when normals disagree too much
	cacheMinWeight = 0.9

	// cacheNormalPower sharpens the normal similarity weight
	cacheNormalPower = 32

	// cachePlaneTolerance rejects corners whose tangent plane p lies off by
	// more than this fraction of its distance to them, such as across a step
	cachePlaneTolerance = 0.1
)

type cacheSample struct {
	p, n   core.Vec3
	sample Sample
	filled bool
}

// Cache stores occlusion samples on a coarse pixel grid over one tile and
// interpolates between them. It belongs to a single worker.
type Cache struct {
	x0, y0, w, h int
	samples      []cacheSample
}

// NewCache creates an empty cache
func NewCache() *Cache {
	return &Cache{}
}

// Reset prepares the cache for the tile starting at x0, y0
func (c *Cache) Reset(x0, y0, w, h int) {
	c.x0, c.y0, c.w, c.h = x0, y0, w, h
	if cap(c.samples) < w*h {
		c.samples = make([]cacheSample, w*h)
	}
	c.samples = c.samples[:w*h]
	for i := range c.samples {
		c.samples[i] = cacheSample{}
	}
}

// IsGridPoint reports whether x, y is one of the cached pixels. The last
// row and column of the tile are always included so interpolation never
// runs off the edge.
func (c *Cache) IsGridPoint(x, y int) bool {
	lx, ly := x-c.x0, y-c.y0
	onX := lx%CacheStep == 0 || lx == c.w-1
	onY := ly%CacheStep == 0 || ly == c.h-1
	return onX && onY
}

func (c *Cache) at(lx, ly int) *cacheSample {
	if lx < 0 || ly < 0 || lx >= c.w || ly >= c.h {
		return nil
	}
	return &c.samples[ly*c.w+lx]
}

// Store records the sample computed at pixel x, y
func (c *Cache) Store(x, y int, p, n core.Vec3, s Sample) {
	if cs := c.at(x-c.x0, y-c.y0); cs != nil {
		*cs = cacheSample{p: p, n: n, sample: s, filled: true}
	}
}

// Lookup returns a sample for pixel x, y from the cache. A sample stored at
// the same pixel is returned directly. Otherwise the four surrounding grid
// samples are blended with bilinear weights times a normal similarity
// term; the lookup fails if a corner is missing, their intensities spread
// too far, the normals disagree or p is off a corner's tangent plane.
func (c *Cache) Lookup(x, y int, p, n core.Vec3) (Sample, bool) {
	lx, ly := x-c.x0, y-c.y0
	if own := c.at(lx, ly); own == nil {
		return Sample{}, false
	} else if own.filled {
		return own.sample, true
	}

	gx0 := lx - lx%CacheStep
	gy0 := ly - ly%CacheStep
	gx1 := min(gx0+CacheStep, c.w-1)
	gy1 := min(gy0+CacheStep, c.h-1)
	if gx1 <= gx0 || gy1 <= gy0 {
		return Sample{}, false
	}

	corners := [4]*cacheSample{c.at(gx0, gy0), c.at(gx1, gy0), c.at(gx0, gy1), c.at(gx1, gy1)}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, cs := range corners {
		if cs == nil || !cs.filled {
			return Sample{}, false
		}
		d := p.Subtract(cs.p)
		if math.Abs(d.Dot(cs.n)) > cachePlaneTolerance*d.Length() {
			return Sample{}, false
		}
		in := cs.sample.Intensity()
		lo, hi = min(lo, in), max(hi, in)
	}
	if hi-lo > cacheMaxSpread {
		return Sample{}, false
	}

	tx := float64(lx-gx0) / float64(gx1-gx0)
	ty := float64(ly-gy0) / float64(gy1-gy0)
	bilinear := [4]float64{(1 - tx) * (1 - ty), tx * (1 - ty), (1 - tx) * ty, tx * ty}

	var out Sample
	total := 0.0
	for i, cs := range corners {
		w := bilinear[i] * math.Pow(max(n.Dot(cs.n), 0), cacheNormalPower)
		total += w
		out.AO += cs.sample.AO * w
		out.Env = out.Env.AddScaled(cs.sample.Env, w)
		out.Indirect = out.Indirect.AddScaled(cs.sample.Indirect, w)
	}
	if total < cacheMinWeight {
		return Sample{}, false
	}

	inv := 1 / total
	out.AO *= inv
	out.Env = out.Env.Multiply(inv)
	out.Indirect = out.Indirect.Multiply(inv)
	return out, true
}
