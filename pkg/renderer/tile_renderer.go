package renderer

import (
	"image"
	"math"

	"github.com/df07/go-gi-shading/pkg/shading"
)

// TileRenderer shades the pixels of one tile at a time
type TileRenderer struct {
	rc      *shading.RenderContext
	camera  *Camera
	samples int
	grid    int // side of the stratified sample grid
}

// NewTileRenderer creates a tile renderer taking samples camera rays per pixel
func NewTileRenderer(rc *shading.RenderContext, camera *Camera, samples int) *TileRenderer {
	samples = max(samples, 1)
	return &TileRenderer{
		rc:      rc,
		camera:  camera,
		samples: samples,
		grid:    int(math.Ceil(math.Sqrt(float64(samples)))),
	}
}

// RenderTileBounds shades the pixels within bounds into frame. With an
// occlusion tree, the worker's cache is first filled on its sparse grid
// so that most pixels interpolate instead of looking up the tree.
func (tr *TileRenderer) RenderTileBounds(tc *shading.ThreadContext, bounds image.Rectangle, frame *Frame) {
	rc := tr.rc
	if rc.Occlusion != nil && rc.UseOcclusionCache {
		tc.Cache.Reset(bounds.Min.X, bounds.Min.Y, bounds.Dx(), bounds.Dy())
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				if tc.Cache.IsGridPoint(x, y) {
					shading.CacheSample(rc, tc, x, y, tr.camera.PixelRay(x, y, 0.5, 0.5))
				}
			}
		}
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			*frame.At(x, y) = tr.shadePixel(tc, x, y)
		}
	}
}

// shadePixel averages the samples of one pixel. Depth is the nearest hit
// of any sample.
func (tr *TileRenderer) shadePixel(tc *shading.ThreadContext, x, y int) shading.ShadeResult {
	if tr.samples == 1 {
		return shading.ShadeSample(tr.rc, tc, x, y, tr.camera.PixelRay(x, y, 0.5, 0.5))
	}

	var avg shading.ShadeResult
	avg.Z = math.Inf(1)
	w := 1 / float64(tr.samples)
	for i := 0; i < tr.samples; i++ {
		dx, dy := tr.offset(i)
		res := shading.ShadeSample(tr.rc, tc, x, y, tr.camera.PixelRay(x, y, dx, dy))
		avg.Add(&res, w)
		avg.Z = min(avg.Z, res.Z)
		avg.Hit = avg.Hit || res.Hit
	}
	return avg
}

// offset returns the center of stratum i of the pixel
func (tr *TileRenderer) offset(i int) (float64, float64) {
	g := float64(tr.grid)
	return (float64(i%tr.grid) + 0.5) / g, (float64(i/tr.grid) + 0.5) / g
}
