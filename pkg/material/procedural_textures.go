package material

import (
	"math"

	"github.com/df07/go-gi-shading/pkg/core"
)

// CheckerTexture alternates two colors in 3D cells of the given size. It
// ignores UVs, so it needs an object, global or window TexCoordSource.
type CheckerTexture struct {
	Size           float64
	Color1, Color2 core.Vec3
}

// NewCheckerTexture creates a 3D checker pattern
func NewCheckerTexture(size float64, color1, color2 core.Vec3) *CheckerTexture {
	return &CheckerTexture{Size: size, Color1: color1, Color2: color2}
}

// Evaluate returns the color of the cell containing p
func (c *CheckerTexture) Evaluate(_ core.Vec2, p core.Vec3) core.Vec3 {
	if c.Size <= 0 {
		return c.Color1
	}
	ix := int(math.Floor(p.X / c.Size))
	iy := int(math.Floor(p.Y / c.Size))
	iz := int(math.Floor(p.Z / c.Size))
	if (ix+iy+iz)&1 == 0 {
		return c.Color1
	}
	return c.Color2
}

// NewCheckerboardTexture creates a checkerboard image texture
func NewCheckerboardTexture(width, height, checkSize int, color1, color2 core.Vec3) *ImageTexture {
	pixels := make([]core.Vec3, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if (x/checkSize+y/checkSize)%2 == 0 {
				pixels[y*width+x] = color1
			} else {
				pixels[y*width+x] = color2
			}
		}
	}
	return NewImageTexture(width, height, pixels)
}

// NewGradientTexture creates a vertical gradient from color1 at the top to
// color2 at the bottom
func NewGradientTexture(width, height int, color1, color2 core.Vec3) *ImageTexture {
	pixels := make([]core.Vec3, width*height)
	for y := 0; y < height; y++ {
		t := 0.0
		if height > 1 {
			t = float64(y) / float64(height-1)
		}
		color := color1.Lerp(color2, t)
		for x := 0; x < width; x++ {
			pixels[y*width+x] = color
		}
	}
	return NewImageTexture(width, height, pixels)
}
