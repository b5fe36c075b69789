package renderer

import (
	"context"
	"image"
	"math"
	"testing"

	"github.com/df07/go-gi-shading/pkg/core"
	"github.com/df07/go-gi-shading/pkg/geometry"
	"github.com/df07/go-gi-shading/pkg/material"
	"github.com/df07/go-gi-shading/pkg/occlusion"
	"github.com/df07/go-gi-shading/pkg/shading"
)

func TestNewTileGrid(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		tileSize      int
		count         int
		last          image.Rectangle
	}{
		{"exact fit", 16, 16, 8, 4, image.Rect(8, 8, 16, 16)},
		{"partial edge tiles", 16, 12, 8, 4, image.Rect(8, 8, 16, 12)},
		{"uneven", 10, 10, 4, 9, image.Rect(8, 8, 10, 10)},
		{"single tile", 5, 3, 64, 1, image.Rect(0, 0, 5, 3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tiles := NewTileGrid(tt.width, tt.height, tt.tileSize)
			if len(tiles) != tt.count {
				t.Fatalf("Expected %d tiles, got %d", tt.count, len(tiles))
			}
			if last := tiles[len(tiles)-1]; last.Bounds != tt.last || last.ID != tt.count-1 {
				t.Errorf("Expected last tile %d at %v, got %d at %v", tt.count-1, tt.last, last.ID, last.Bounds)
			}

			covered := 0
			for _, tile := range tiles {
				covered += tile.Bounds.Dx() * tile.Bounds.Dy()
			}
			if covered != tt.width*tt.height {
				t.Errorf("Expected tiles to cover %d pixels, got %d", tt.width*tt.height, covered)
			}
		})
	}
}

// wallContext looks straight at a shadeless wall filling the view
func wallContext(t *testing.T, width, height int) (*shading.RenderContext, *Camera) {
	t.Helper()
	wall := material.NewMaterial("wall", core.NewVec3(1, 0, 0))
	wall.Mode |= material.ModeShadeless

	scene := geometry.NewScene()
	scene.AddMesh(geometry.NewQuadMesh("wall", core.NewVec3(-50, -50, 0), core.NewVec3(100, 0, 0), core.NewVec3(0, 100, 0), wall))
	if err := scene.Finalize(); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}

	camera := NewCamera(CameraConfig{
		Center: core.NewVec3(0, 0, 5),
		LookAt: core.NewVec3(0, 0, 0),
		Up:     core.NewVec3(0, 1, 0),
		VFov:   40,
	}, width, height)
	return shading.NewRenderContext(scene, width, height), camera
}

func TestTileRenderer_RenderTileBounds(t *testing.T) {
	tests := []struct {
		name    string
		samples int
	}{
		{"one sample", 1},
		{"four samples", 4},
		{"three samples", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc, camera := wallContext(t, 8, 8)
			tc := shading.NewThreadContext(rc, 0)
			frame := NewFrame(8, 8)

			bounds := image.Rect(2, 2, 6, 5)
			NewTileRenderer(rc, camera, tt.samples).RenderTileBounds(tc, bounds, frame)

			for y := 0; y < 8; y++ {
				for x := 0; x < 8; x++ {
					res := frame.At(x, y)
					inside := image.Pt(x, y).In(bounds)
					if inside != res.Hit {
						t.Fatalf("Pixel %d,%d: expected hit=%v, got %v", x, y, inside, res.Hit)
					}
					if inside && !vecNear(res.Combined, core.NewVec3(1, 0, 0), 1e-9) {
						t.Errorf("Pixel %d,%d: expected the wall color, got %v", x, y, res.Combined)
					}
				}
			}

			center := frame.At(4, 4)
			if center.Z < 5 || center.Z > 5.2 {
				t.Errorf("Expected the wall about 5 units away, got %f", center.Z)
			}
			if want := int64(bounds.Dx() * bounds.Dy() * tt.samples); tc.Stats.Samples != want {
				t.Errorf("Expected %d samples, got %d", want, tc.Stats.Samples)
			}
		})
	}
}

func TestTileRenderer_Offsets(t *testing.T) {
	tr := NewTileRenderer(nil, nil, 4)
	want := [][2]float64{{0.25, 0.25}, {0.75, 0.25}, {0.25, 0.75}, {0.75, 0.75}}
	for i, w := range want {
		dx, dy := tr.offset(i)
		if math.Abs(dx-w[0]) > 1e-12 || math.Abs(dy-w[1]) > 1e-12 {
			t.Errorf("offset(%d) = %f, %f, want %f, %f", i, dx, dy, w[0], w[1])
		}
	}
}

func TestTileRenderer_FillsOcclusionCache(t *testing.T) {
	for _, useCache := range []bool{true, false} {
		scene := testScene(material.NewLambertian(core.Splat(0.8)))
		if err := scene.Finalize(); err != nil {
			t.Fatalf("Finalize failed: %v", err)
		}
		settings := occlusion.DefaultSettings()
		settings.Logger = core.NopLogger{}
		tree, err := occlusion.Build(context.Background(), scene, settings, nil)
		if err != nil {
			t.Fatalf("occlusion.Build failed: %v", err)
		}

		rc := shading.NewRenderContext(scene, 16, 12)
		rc.Occlusion = tree
		rc.UseOcclusionCache = useCache
		tc := shading.NewThreadContext(rc, 0)
		camera := NewCamera(testCamera, 16, 12)

		NewTileRenderer(rc, camera, 1).RenderTileBounds(tc, image.Rect(0, 4, 8, 12), NewFrame(16, 12))
		if useCache && tc.Stats.CacheHits == 0 {
			t.Error("Expected pixels between grid points to come from the cache")
		}
		if !useCache && tc.Stats.CacheHits != 0 {
			t.Errorf("Expected no cache hits with the cache disabled, got %d", tc.Stats.CacheHits)
		}
		if tc.Stats.AOLookups == 0 {
			t.Errorf("cache=%v: expected occlusion lookups", useCache)
		}
	}
}
