package shading

import (
	"math/rand"

	"github.com/df07/go-gi-shading/pkg/core"
	"github.com/df07/go-gi-shading/pkg/geometry"
	"github.com/df07/go-gi-shading/pkg/material"
	"github.com/df07/go-gi-shading/pkg/occlusion"
	"github.com/df07/go-gi-shading/pkg/sss"
)

// OcclusionMode selects how ambient occlusion changes diffuse light
type OcclusionMode int

const (
	AOMultiply OcclusionMode = iota // darken lit diffuse by the visibility
	AOAdd                           // add unoccluded ambient light
	AOSubtract                      // remove light where occluded
)

// World holds the environment settings of a frame
type World struct {
	Horizon core.Vec3
	Zenith  core.Vec3
	Ambient core.Vec3 // flat ambient light when there is no occlusion tree

	AOMode         OcclusionMode
	AOEnergy       float64
	EnvEnergy      float64
	IndirectEnergy float64
}

// DefaultWorld returns a grey sky with AO multiplied at full strength
func DefaultWorld() World {
	return World{
		Horizon:        core.NewVec3(0.8, 0.85, 0.9),
		Zenith:         core.NewVec3(0.3, 0.45, 0.8),
		AOMode:         AOMultiply,
		AOEnergy:       1,
		EnvEnergy:      1,
		IndirectEnergy: 1,
	}
}

// Sky blends from horizon to zenith with the height of dir. Directions
// below the horizon see the horizon color.
func (w World) Sky(dir core.Vec3) core.Vec3 {
	return w.Horizon.Lerp(w.Zenith, core.Clamp01(dir.Normalize().Y))
}

// RenderContext is everything shading reads during a frame. It is built
// once before rendering and never modified while workers run.
type RenderContext struct {
	Scene     *geometry.Scene
	World     World
	Occlusion *occlusion.Tree                  // nil disables ambient occlusion
	Scatter   map[*material.Material]*sss.Tree // scatter tree per subsurface material

	Passes               Pass   // components folded into the combined color
	RayDepth             int    // cap on nested mirror rays
	RayDepthTransmission int    // cap on nested transmission rays
	ShadowDepth          int    // transparent surfaces a shadow ray may cross
	Layer                uint32 // render layers, lamps must share a bit
	Width, Height        int    // image size for window coordinates
	UseOcclusionCache    bool
}

// NewRenderContext creates a context with every pass enabled
func NewRenderContext(scene *geometry.Scene, width, height int) *RenderContext {
	return &RenderContext{
		Scene:                scene,
		World:                DefaultWorld(),
		Scatter:              make(map[*material.Material]*sss.Tree),
		Passes:               PassAll,
		RayDepth:             4,
		RayDepthTransmission: 4,
		ShadowDepth:          8,
		Layer:                ^uint32(0),
		Width:                width,
		Height:               height,
		UseOcclusionCache:    true,
	}
}

// ThreadStats counts work done by one worker
type ThreadStats struct {
	Samples     int64
	Rays        int64
	ShadowRays  int64
	AOLookups   int64
	CacheHits   int64
	ScatterHits int64
}

// Add accumulates o into s
func (s *ThreadStats) Add(o ThreadStats) {
	s.Samples += o.Samples
	s.Rays += o.Rays
	s.ShadowRays += o.ShadowRays
	s.AOLookups += o.AOLookups
	s.CacheHits += o.CacheHits
	s.ScatterHits += o.ScatterHits
}

// ThreadContext is the scratch state owned by one worker. It must never
// be shared between goroutines.
type ThreadContext struct {
	ID    int
	Stack *occlusion.Stack // nil when there is no occlusion tree
	Cache *occlusion.Cache
	Rand  *rand.Rand
	Stats ThreadStats
}

// NewThreadContext allocates the scratch state for worker id
func NewThreadContext(rc *RenderContext, id int) *ThreadContext {
	tc := &ThreadContext{
		ID:    id,
		Cache: occlusion.NewCache(),
		Rand:  rand.New(rand.NewSource(int64(id) + 1)),
	}
	if rc.Occlusion != nil {
		tc.Stack = rc.Occlusion.NewStack()
	}
	return tc
}
