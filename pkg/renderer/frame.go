package renderer

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/df07/go-gi-shading/pkg/core"
	"github.com/df07/go-gi-shading/pkg/shading"
)

// Channel selects one render pass of a frame
type Channel int

const (
	ChannelCombined Channel = iota
	ChannelDiffuse
	ChannelShadow
	ChannelSpecular
	ChannelAO
	ChannelEnvironment
	ChannelIndirect
	ChannelReflection
	ChannelRefraction
	ChannelEmit
	ChannelSubsurface
	ChannelNormal
	ChannelZ
	ChannelAlpha
)

var channelNames = []string{
	"combined", "diffuse", "shadow", "specular", "ao", "environment", "indirect",
	"reflection", "refraction", "emit", "subsurface", "normal", "z", "alpha",
}

func (c Channel) String() string {
	if c < 0 || int(c) >= len(channelNames) {
		return fmt.Sprintf("channel(%d)", int(c))
	}
	return channelNames[c]
}

// ParseChannel looks a channel up by name
func ParseChannel(name string) (Channel, error) {
	for i, n := range channelNames {
		if n == name {
			return Channel(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown channel %q", ErrInvalidOptions, name)
}

// Frame holds the shading result of every pixel
type Frame struct {
	Width, Height int
	Pixels        []shading.ShadeResult // row major, row 0 at the top
}

// NewFrame allocates an empty frame
func NewFrame(width, height int) *Frame {
	return &Frame{
		Width:  width,
		Height: height,
		Pixels: make([]shading.ShadeResult, width*height),
	}
}

// At returns the result stored for pixel x, y
func (f *Frame) At(x, y int) *shading.ShadeResult {
	return &f.Pixels[y*f.Width+x]
}

// Value returns channel c of pixel x, y. Scalar channels are splatted.
func (f *Frame) Value(c Channel, x, y int) core.Vec3 {
	r := f.At(x, y)
	switch c {
	case ChannelDiffuse:
		return r.Diff
	case ChannelShadow:
		return core.NewVec3(ratio(r.Shad.X, r.Diff.X), ratio(r.Shad.Y, r.Diff.Y), ratio(r.Shad.Z, r.Diff.Z))
	case ChannelSpecular:
		return r.Spec
	case ChannelAO:
		return r.AO
	case ChannelEnvironment:
		return r.Env
	case ChannelIndirect:
		return r.Indirect
	case ChannelReflection:
		return r.Refl
	case ChannelRefraction:
		return r.Refr
	case ChannelEmit:
		return r.Emit
	case ChannelSubsurface:
		return r.SSS
	case ChannelNormal:
		return r.Normal
	case ChannelZ:
		return core.Splat(r.Z)
	case ChannelAlpha:
		return core.Splat(r.Alpha)
	default:
		return r.Combined
	}
}

// ratio is the shadow factor of one component, lit where there is no light
func ratio(shad, diff float64) float64 {
	if diff <= 0 {
		return 1
	}
	return core.Clamp01(shad / diff)
}

// Image converts channel c to 8 bit. Light passes are gamma corrected,
// normals are mapped from [-1,1] and depth is scaled to the farthest hit
// with misses left black.
func (f *Frame) Image(c Channel) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, f.Width, f.Height))

	far := 0.0
	if c == ChannelZ {
		for i := range f.Pixels {
			if z := f.Pixels[i].Z; !math.IsInf(z, 1) {
				far = max(far, z)
			}
		}
	}

	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			v := f.Value(c, x, y)
			switch c {
			case ChannelNormal:
				v = v.Multiply(0.5).Add(core.Splat(0.5))
			case ChannelZ:
				if math.IsInf(v.X, 1) || far == 0 {
					v = core.Vec3{}
				} else {
					v = core.Splat(1 - v.X/far)
				}
			case ChannelAlpha, ChannelShadow, ChannelAO:
			default:
				v = gammaCorrect(v)
			}
			img.SetNRGBA(x, y, toNRGBA(v))
		}
	}
	return img
}

// gammaCorrect applies gamma 2
func gammaCorrect(v core.Vec3) core.Vec3 {
	return core.NewVec3(math.Sqrt(max(v.X, 0)), math.Sqrt(max(v.Y, 0)), math.Sqrt(max(v.Z, 0)))
}

func toNRGBA(v core.Vec3) color.NRGBA {
	v = v.Clamp(0.0, 1.0)
	return color.NRGBA{
		R: uint8(255*v.X + 0.5),
		G: uint8(255*v.Y + 0.5),
		B: uint8(255*v.Z + 0.5),
		A: 255,
	}
}

// AverageLuminance returns the mean luminance of channel c
func (f *Frame) AverageLuminance(c Channel) float64 {
	if len(f.Pixels) == 0 {
		return 0
	}
	total := 0.0
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			total += f.Value(c, x, y).Luminance()
		}
	}
	return total / float64(len(f.Pixels))
}
