package lights

import (
	"math"
	"math/rand"

	"github.com/df07/go-gi-shading/pkg/core"
)

// jitterIterations is the number of repulsion sweeps used to spread samples
const jitterIterations = 12

// JitterPlane is a set of sample offsets on a lamp's plane, spread out by
// energy minimisation so they cover the area like blue noise. Tables[0] is
// the relaxed set; Tables[1..3] are the same set shifted by half the size
// along x, both axes and y, used to dither neighbouring pixels.
type JitterPlane struct {
	SizeX, SizeY float64
	Tables       [4][]core.Vec2
}

// NewJitterPlane creates a relaxed table of total points covering a
// sizeX by sizeY rectangle centered at the origin. The same total always
// yields the same table.
func NewJitterPlane(total int, sizeX, sizeY float64) *JitterPlane {
	rng := rand.New(rand.NewSource(int64(total)))
	base := RandomJitter(total, sizeX, sizeY, rng)
	RelaxJitter(base, sizeX, sizeY, jitterIterations)

	jp := &JitterPlane{SizeX: sizeX, SizeY: sizeY}
	jp.Tables[0] = base
	jp.Tables[1] = offsetJitter(base, sizeX, sizeY, 0.5, 0.0)
	jp.Tables[2] = offsetJitter(base, sizeX, sizeY, 0.5, 0.5)
	jp.Tables[3] = offsetJitter(base, sizeX, sizeY, 0.0, 0.5)
	return jp
}

// Table returns the offsets for a pixel. With dither set neighbouring
// pixels cycle through the shifted copies.
func (jp *JitterPlane) Table(x, y int, dither bool) []core.Vec2 {
	if !dither {
		return jp.Tables[0]
	}
	return jp.Tables[(x+y)&3]
}

// RandomJitter places total uniformly random points in the rectangle
func RandomJitter(total int, sizeX, sizeY float64, rng *rand.Rand) []core.Vec2 {
	points := make([]core.Vec2, total)
	for i := range points {
		points[i] = core.NewVec2((rng.Float64()-0.5)*sizeX, (rng.Float64()-0.5)*sizeY)
	}
	return points
}

// RelaxJitter pushes the points apart in place. Each point is repelled by
// every other point and its periodic images in the 3x3 neighbourhood of
// tiles with force 1/distance, then wrapped back into the rectangle.
func RelaxJitter(points []core.Vec2, sizeX, sizeY float64, iterations int) {
	for it := 0; it < iterations; it++ {
		for i := range points {
			points[i] = jitterEnergy(points, points[i], sizeX, sizeY)
		}
	}
}

func jitterEnergy(points []core.Vec2, p core.Vec2, sizeX, sizeY float64) core.Vec2 {
	reach := min(sizeX, sizeY)
	reach *= reach

	var rx, ry float64
	for y := -1; y <= 1; y++ {
		dy := sizeY * float64(y)
		for x := -1; x <= 1; x++ {
			dx := sizeX * float64(x)
			for _, q := range points {
				fx := p.X - q.X - dx
				fy := p.Y - q.Y - dy
				dist := fx*fx + fy*fy
				if dist < reach && dist > 0 {
					rx += fx / dist
					ry += fy / dist
				}
			}
		}
	}

	total := float64(len(points))
	p.X += 0.1 * reach * rx / total
	p.Y += 0.1 * reach * ry / total

	// cyclic wrap
	p.X -= sizeX * math.Floor(p.X/sizeX+0.5)
	p.Y -= sizeY * math.Floor(p.Y/sizeY+0.5)
	return p
}

// offsetJitter shifts a table by a fraction of the size, wrapping points
// that leave the rectangle
func offsetJitter(points []core.Vec2, sizeX, sizeY, ofsX, ofsY float64) []core.Vec2 {
	halfX, halfY := 0.5*sizeX, 0.5*sizeY
	out := make([]core.Vec2, len(points))
	for i, p := range points {
		q := core.NewVec2(p.X+ofsX*sizeX, p.Y+ofsY*sizeY)
		if q.X > halfX {
			q.X -= sizeX
		}
		if q.Y > halfY {
			q.Y -= sizeY
		}
		out[i] = q
	}
	return out
}

// MinPeriodicDistance returns the smallest distance between two distinct
// points of the table, taking the periodic tiling into account
func MinPeriodicDistance(points []core.Vec2, sizeX, sizeY float64) float64 {
	best := math.Inf(1)
	for i := range points {
		for j := i + 1; j < len(points); j++ {
			for y := -1; y <= 1; y++ {
				for x := -1; x <= 1; x++ {
					dx := points[i].X - points[j].X - sizeX*float64(x)
					dy := points[i].Y - points[j].Y - sizeY*float64(y)
					best = min(best, dx*dx+dy*dy)
				}
			}
		}
	}
	return math.Sqrt(best)
}
