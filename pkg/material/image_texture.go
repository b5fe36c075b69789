package material

import (
	"image"
	"math"

	"github.com/df07/go-gi-shading/pkg/core"
)

// ImageTexture provides color from a 2D image
type ImageTexture struct {
	Width    int
	Height   int
	Pixels   []core.Vec3 // row-major, Pixels[y*Width+x], row 0 at the top
	Bilinear bool
}

// NewImageTexture creates a new image texture
func NewImageTexture(width, height int, pixels []core.Vec3) *ImageTexture {
	return &ImageTexture{
		Width:  width,
		Height: height,
		Pixels: pixels,
	}
}

// NewImageTextureFromImage converts a decoded image. Colors are kept in
// the image's own encoding, no gamma is removed.
func NewImageTextureFromImage(img image.Image) *ImageTexture {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	pixels := make([]core.Vec3, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			pixels[y*width+x] = core.NewVec3(float64(r)/65535, float64(g)/65535, float64(b)/65535)
		}
	}
	return NewImageTexture(width, height, pixels)
}

// wrap maps a coordinate into [0, 1)
func wrap(x float64) float64 {
	x -= math.Floor(x)
	if x >= 1 {
		return 0
	}
	return x
}

func (t *ImageTexture) texel(x, y int) core.Vec3 {
	x = ((x % t.Width) + t.Width) % t.Width
	y = ((y % t.Height) + t.Height) % t.Height
	return t.Pixels[y*t.Width+x]
}

// Evaluate samples the texture at uv. V=0 is the bottom row of the image.
// UVs outside [0, 1] repeat.
func (t *ImageTexture) Evaluate(uv core.Vec2, _ core.Vec3) core.Vec3 {
	if t.Width == 0 || t.Height == 0 {
		return core.Vec3{}
	}
	u := wrap(uv.X) * float64(t.Width)
	v := (1 - wrap(uv.Y)) * float64(t.Height)

	if !t.Bilinear {
		x := min(int(u), t.Width-1)
		y := min(int(v), t.Height-1)
		return t.Pixels[y*t.Width+x]
	}

	// texel centers sit at half coordinates
	u -= 0.5
	v -= 0.5
	x0, y0 := int(math.Floor(u)), int(math.Floor(v))
	fx, fy := u-float64(x0), v-float64(y0)

	top := t.texel(x0, y0).Lerp(t.texel(x0+1, y0), fx)
	bottom := t.texel(x0, y0+1).Lerp(t.texel(x0+1, y0+1), fx)
	return top.Lerp(bottom, fy)
}
