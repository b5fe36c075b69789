package renderer

import (
	"fmt"

	"github.com/df07/go-gi-shading/pkg/core"
	"github.com/df07/go-gi-shading/pkg/occlusion"
	"github.com/df07/go-gi-shading/pkg/shading"
)

// Options configures a frame
type Options struct {
	// Frame dims.
	Width  int
	Height int

	TileSize   int // Size of each square tile (64 recommended)
	NumWorkers int // Number of parallel workers (0 = use CPU count)
	Samples    int // Camera rays per pixel on a stratified grid

	// Ambient occlusion and indirect light. A failed build renders without.
	Occlusion         bool
	OcclusionSettings occlusion.Settings

	// Subsurface scattering for materials with the subsurface mode.
	Subsurface      bool
	SSSSubdivisions int // scatter point samples per triangle edge

	Passes               shading.Pass
	RayDepth             int
	RayDepthTransmission int
	ShadowDepth          int
	Layer                uint32

	Logger core.Logger
}

// DefaultOptions returns sensible default values
func DefaultOptions() Options {
	return Options{
		Width:                400,
		Height:               300,
		TileSize:             64,
		NumWorkers:           0,
		Samples:              1,
		Occlusion:            true,
		OcclusionSettings:    occlusion.DefaultSettings(),
		Subsurface:           true,
		SSSSubdivisions:      4,
		Passes:               shading.PassAll,
		RayDepth:             4,
		RayDepthTransmission: 4,
		ShadowDepth:          8,
		Layer:                ^uint32(0),
	}
}

// Validate checks the options for values a frame cannot be rendered with
func (o Options) Validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("%w: frame size %dx%d", ErrInvalidOptions, o.Width, o.Height)
	}
	if o.TileSize <= 0 {
		return fmt.Errorf("%w: tile size %d", ErrInvalidOptions, o.TileSize)
	}
	if o.Samples <= 0 {
		return fmt.Errorf("%w: %d samples per pixel", ErrInvalidOptions, o.Samples)
	}
	if o.RayDepth < 0 || o.RayDepthTransmission < 0 || o.ShadowDepth < 0 {
		return fmt.Errorf("%w: negative ray depth", ErrInvalidOptions)
	}
	return nil
}

func (o Options) logger() core.Logger {
	if o.Logger == nil {
		return logger
	}
	return o.Logger
}
