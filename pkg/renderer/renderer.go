package renderer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/df07/go-gi-shading/pkg/core"
	"github.com/df07/go-gi-shading/pkg/geometry"
	"github.com/df07/go-gi-shading/pkg/log"
	"github.com/df07/go-gi-shading/pkg/material"
	"github.com/df07/go-gi-shading/pkg/occlusion"
	"github.com/df07/go-gi-shading/pkg/shading"
	"github.com/df07/go-gi-shading/pkg/sss"
)

var logger = log.New("renderer")

// Renderer shades frames of a scene. The occlusion and scatter trees are
// rebuilt for every frame and dropped afterwards.
type Renderer struct {
	scene  *geometry.Scene
	camera CameraConfig
	world  shading.World
	opts   Options
}

// New creates a renderer for scene seen through camera
func New(scene *geometry.Scene, camera *CameraConfig, world shading.World, opts Options) (*Renderer, error) {
	if scene == nil {
		return nil, ErrSceneNotDefined
	}
	if camera == nil {
		return nil, ErrCameraNotDefined
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Renderer{scene: scene, camera: *camera, world: world, opts: opts}, nil
}

// Options returns the options the renderer was created with
func (r *Renderer) Options() Options {
	return r.opts
}

// Render builds the occlusion and scatter trees and then shades every tile.
// A tree that fails to build is left out of the frame, except when the
// scene is too large for the occlusion tree. Cancelling ctx stops the
// frame at the next tile and returns ErrInterrupted.
func (r *Renderer) Render(ctx context.Context) (*Frame, RenderStats, error) {
	start := time.Now()
	w, h := r.opts.Width, r.opts.Height
	stats := RenderStats{TotalPixels: w * h, Samples: r.opts.Samples}

	if err := r.scene.Finalize(); err != nil {
		return nil, stats, fmt.Errorf("renderer: preparing scene: %w", err)
	}
	camera := NewCamera(r.camera, w, h)
	rc := r.renderContext()

	err := stats.timeStage(StageOcclusion, func() (string, bool, error) {
		return r.buildOcclusion(ctx, rc)
	})
	if err != nil {
		return nil, stats, err
	}

	err = stats.timeStage(StageSubsurface, func() (string, bool, error) {
		return r.buildScatter(ctx, rc, camera)
	})
	if err != nil {
		return nil, stats, err
	}

	frame := NewFrame(w, h)
	err = stats.timeStage(StageShading, func() (string, bool, error) {
		return r.shade(ctx, rc, camera, frame, &stats)
	})
	stats.RenderTime = time.Since(start)
	if err != nil {
		return nil, stats, err
	}

	r.opts.logger().Infof("rendered %dx%d frame in %v", w, h, stats.RenderTime)
	return frame, stats, nil
}

func (r *Renderer) renderContext() *shading.RenderContext {
	rc := shading.NewRenderContext(r.scene, r.opts.Width, r.opts.Height)
	rc.World = r.world
	rc.Passes = r.opts.Passes
	rc.RayDepth = r.opts.RayDepth
	rc.RayDepthTransmission = r.opts.RayDepthTransmission
	rc.ShadowDepth = r.opts.ShadowDepth
	rc.Layer = r.opts.Layer
	return rc
}

func interrupted(ctx context.Context) error {
	return fmt.Errorf("%w: %w", ErrInterrupted, ctx.Err())
}

// buildOcclusion attaches the occlusion tree to rc
func (r *Renderer) buildOcclusion(ctx context.Context, rc *shading.RenderContext) (string, bool, error) {
	if !r.opts.Occlusion {
		return "disabled", false, nil
	}

	settings := r.opts.OcclusionSettings
	if settings.Logger == nil {
		settings.Logger = r.opts.logger()
	}
	if settings.NumWorkers == 0 {
		settings.NumWorkers = r.opts.NumWorkers
	}
	var shader occlusion.FaceShader
	if settings.Indirect() {
		shader = shading.FaceLight(rc)
	}

	tree, err := occlusion.Build(ctx, r.scene, settings, shader)
	switch {
	case err == nil:
	case errors.Is(err, occlusion.ErrTooManyFaces):
		return err.Error(), true, fmt.Errorf("renderer: building occlusion tree: %w", err)
	case ctx.Err() != nil:
		return "interrupted", true, interrupted(ctx)
	default:
		r.opts.logger().Warningf("rendering without occlusion: %v", err)
		return err.Error(), true, nil
	}

	rc.Occlusion = tree
	rc.UseOcclusionCache = settings.CacheEnabled
	return fmt.Sprintf("%d faces, %d nodes, depth %d", tree.NumFaces(), tree.NumNodes(), tree.MaxDepth()), false, nil
}

// buildScatter builds a scatter tree for every subsurface material
func (r *Renderer) buildScatter(ctx context.Context, rc *shading.RenderContext, camera *Camera) (string, bool, error) {
	if !r.opts.Subsurface {
		return "disabled", false, nil
	}
	mats := subsurfaceMaterials(r.scene)
	if len(mats) == 0 {
		return "no subsurface materials", false, nil
	}

	shade := shading.FaceLight(rc)
	built, failed := 0, false
	for _, m := range mats {
		tree, err := r.buildScatterTree(ctx, m, shade, camera)
		if err != nil {
			if ctx.Err() != nil {
				return "interrupted", true, interrupted(ctx)
			}
			r.opts.logger().Warningf("material %q renders without subsurface scattering: %v", m.Name, err)
			failed = true
			continue
		}
		rc.Scatter[m] = tree
		built++
	}
	return fmt.Sprintf("%d of %d materials", built, len(mats)), failed, nil
}

// scatterViewMargin keeps scatter samples just outside the frame, which
// still bleed light into pixels at the border
const scatterViewMargin = 0.1

// buildScatterTree collects the points of m inside the camera frustum,
// both the sides facing the camera and the sides turned away, and builds
// the tree that lookups renormalise over.
func (r *Renderer) buildScatterTree(ctx context.Context, m *material.Material, shade sss.ShadeFunc, camera *Camera) (*sss.Tree, error) {
	points, err := sss.Collect(ctx, r.scene, m, shade, sss.CollectOptions{
		Eye:          camera.Origin(),
		Visible:      func(p core.Vec3) bool { return camera.InView(p, scatterViewMargin) },
		Subdivisions: r.opts.SSSSubdivisions,
		NumWorkers:   r.opts.NumWorkers,
	})
	if err != nil {
		return nil, err
	}
	settings, err := sss.ChannelSettings(m.SSSColor, m.SSSRadius, m.SSSIOR, m.SSSColorFac, m.SSSFront, m.SSSBack)
	if err != nil {
		return nil, err
	}
	return sss.BuildTree(ctx, points, settings, sss.Options{Error: m.SSSError, Scale: m.SSSScale})
}

// subsurfaceMaterials lists the subsurface materials of the scene in the
// order their first face appears
func subsurfaceMaterials(scene *geometry.Scene) []*material.Material {
	seen := make(map[*material.Material]bool)
	var mats []*material.Material
	scene.ForEachFace(func(f *geometry.Face) {
		m := f.Material
		if m == nil || seen[m] || !m.Has(material.ModeSubsurface) {
			return
		}
		seen[m] = true
		mats = append(mats, m)
	})
	return mats
}

// shade renders every tile on the worker pool
func (r *Renderer) shade(ctx context.Context, rc *shading.RenderContext, camera *Camera, frame *Frame, stats *RenderStats) (string, bool, error) {
	tiles := NewTileGrid(r.opts.Width, r.opts.Height, r.opts.TileSize)
	pool := NewWorkerPool(rc, NewTileRenderer(rc, camera, r.opts.Samples), frame, len(tiles), r.opts.NumWorkers)
	pool.Start(ctx)

	for i, tile := range tiles {
		pool.SubmitTask(TileTask{Tile: tile, TaskID: i})
	}

	var failed error
	for range tiles {
		result, ok := pool.GetResult()
		if !ok {
			break
		}
		if result.Error != nil && failed == nil {
			failed = result.Error
		}
	}
	pool.Stop()

	stats.Shading = pool.Stats()
	stats.Tiles = len(tiles)
	stats.Workers = pool.GetNumWorkers()
	if failed != nil {
		return "interrupted", true, fmt.Errorf("%w: %w", ErrInterrupted, failed)
	}
	return fmt.Sprintf("%d tiles on %d workers", len(tiles), stats.Workers), false, nil
}
