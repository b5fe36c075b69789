package scene

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/df07/go-gi-shading/pkg/core"
	"github.com/df07/go-gi-shading/pkg/geometry"
	"github.com/df07/go-gi-shading/pkg/material"
	"github.com/df07/go-gi-shading/pkg/renderer"
)

// writeHouse saves a small ascii PLY whose vertices span y from 10 to 14
func writeHouse(t *testing.T) string {
	t.Helper()
	data := `ply
format ascii 1.0
element vertex 5
property float x
property float y
property float z
element face 2
property list uchar int vertex_indices
end_header
4 10 0
6 10 0
6 12 0
4 12 0
5 14 0
4 0 1 2 3
3 3 2 4
`
	path := filepath.Join(t.TempDir(), "little_house.ply")
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("Failed to write PLY file: %v", err)
	}
	return path
}

func TestLoad_Builtins(t *testing.T) {
	for _, info := range List() {
		if info.Assets == "mesh" {
			continue
		}
		t.Run(info.ID, func(t *testing.T) {
			s, err := Load(info.ID, Assets{})
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if s.Name != info.Name {
				t.Errorf("Expected name %q, got %q", info.Name, s.Name)
			}
			if s.FaceCount() == 0 {
				t.Error("Expected the scene to have faces")
			}
			if len(s.Geometry.Lamps) == 0 {
				t.Error("Expected the scene to have lamps")
			}
			if s.Camera.VFov <= 0 {
				t.Errorf("Expected a positive field of view, got %f", s.Camera.VFov)
			}
			if err := s.Geometry.Finalize(); err != nil {
				t.Fatalf("Finalize failed: %v", err)
			}
			if s.Geometry.NumFaces() != s.FaceCount() {
				t.Errorf("Expected %d world faces, got %d", s.FaceCount(), s.Geometry.NumFaces())
			}
		})
	}
}

func TestList_UniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for _, info := range List() {
		if seen[info.ID] {
			t.Errorf("Expected unique scene ids, %q appears twice", info.ID)
		}
		seen[info.ID] = true
		if normalizeID(info.ID) != info.ID {
			t.Errorf("Expected id %q to be in normal form", info.ID)
		}
	}
}

func TestListGroups(t *testing.T) {
	groups := ListGroups()
	expected := []string{"Global Illumination", "Materials", "Assets"}
	if len(groups) != len(expected) {
		t.Fatalf("Expected %d groups, got %d", len(expected), len(groups))
	}
	total := 0
	for i, g := range groups {
		if g.Name != expected[i] {
			t.Errorf("Expected group %d to be %q, got %q", i, expected[i], g.Name)
		}
		for _, info := range g.Scenes {
			if info.Group != g.Name {
				t.Errorf("Expected %s in group %q, found it in %q", info.ID, info.Group, g.Name)
			}
		}
		total += len(g.Scenes)
	}
	if total != len(List()) {
		t.Errorf("Expected %d grouped scenes, got %d", len(List()), total)
	}
}

func TestLoad_IDs(t *testing.T) {
	tests := []struct {
		id       string
		expected string
		err      error
	}{
		{"occluder", "Occluder", nil},
		{"Cornell Box", "Cornell Box", nil},
		{"sphere_grid", "Sphere Grid", nil},
		{" GLASS ", "Glass", nil},
		{"teapot", "", ErrUnknownScene},
		{"mesh", "", ErrMissingAsset},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			s, err := Load(tt.id, Assets{})
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Errorf("Expected %v, got %v", tt.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if s.Name != tt.expected {
				t.Errorf("Expected scene %q, got %q", tt.expected, s.Name)
			}
		})
	}
}

func TestLoad_Mesh(t *testing.T) {
	s, err := Load("mesh", Assets{Mesh: writeHouse(t)})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Name != "Little House" {
		t.Errorf("Expected the scene to be named after the file, got %q", s.Name)
	}

	var house *geometry.Instance
	for _, in := range s.Geometry.Instances {
		if in.Mesh.Name == "little_house" {
			house = in
		}
	}
	if house == nil {
		t.Fatal("Expected the loaded mesh to be in the scene")
	}

	box := core.EmptyAABB()
	for _, v := range house.Mesh.Vertices {
		box = box.Extend(house.TransformPoint(v))
	}
	expected := core.NewAABB(core.NewVec3(-0.5, 0, 0), core.NewVec3(0.5, meshHeight, 0))
	const tol = 1e-9
	for _, pair := range [][2]core.Vec3{{box.Min, expected.Min}, {box.Max, expected.Max}} {
		d := pair[0].Subtract(pair[1])
		if d.Dot(d) > tol {
			t.Errorf("Expected fitted bounds %v, got %v", expected, box)
		}
	}
}

func TestLoad_MeshMissingFile(t *testing.T) {
	if _, err := Load("mesh", Assets{Mesh: filepath.Join(t.TempDir(), "missing.ply")}); err == nil {
		t.Error("Expected error for a missing PLY file")
	}
}

func TestLoad_TexturedWithImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 64, 32))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	path := filepath.Join(t.TempDir(), "poster.png")
	if err := imaging.Save(img, path); err != nil {
		t.Fatalf("Failed to save image: %v", err)
	}

	s, err := Load("textured", Assets{Texture: path, MaxTextureSize: 16})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	for _, in := range s.Geometry.Instances {
		if in.Mesh.Name != "panel" {
			continue
		}
		tex, ok := in.Mesh.Materials[0].Texture.(*material.ImageTexture)
		if !ok {
			t.Fatalf("Expected the panel to use an image texture, got %T", in.Mesh.Materials[0].Texture)
		}
		if tex.Width != 16 || tex.Height != 8 {
			t.Errorf("Expected the image scaled to 16x8, got %dx%d", tex.Width, tex.Height)
		}
		return
	}
	t.Fatal("Expected a panel in the textured scene")
}

func TestTranslucentScene_Subsurface(t *testing.T) {
	s, err := Load("translucent", Assets{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	found := false
	for _, in := range s.Geometry.Instances {
		for _, m := range in.Mesh.Materials {
			if m != nil && m.Has(material.ModeSubsurface) {
				found = true
			}
		}
	}
	if !found {
		t.Error("Expected a subsurface material in the translucent scene")
	}
}

func TestOccluderScene_Render(t *testing.T) {
	s, err := Load("occluder", Assets{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	opts := renderer.DefaultOptions()
	opts.Width, opts.Height = 24, 16
	opts.TileSize = 8
	opts.NumWorkers = 2
	opts.Logger = core.NopLogger{}
	opts.OcclusionSettings.Logger = core.NopLogger{}

	r, err := renderer.New(s.Geometry, &s.Camera, s.World, opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	frame, stats, err := r.Render(context.Background())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if st, ok := stats.Stage(renderer.StageOcclusion); !ok || st.Failed {
		t.Errorf("Expected the occlusion tree to build, got %+v", st)
	}
	if frame.AverageLuminance(renderer.ChannelCombined) <= 0 {
		t.Error("Expected a lit frame")
	}
	// the ball hides part of the sky from the floor at its foot
	if frame.AverageLuminance(renderer.ChannelAO) >= 1 {
		t.Error("Expected some occlusion in the frame")
	}
}

func TestTitleCase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"simple", "Simple"},
		{"stanford-bunny", "Stanford Bunny"},
		{"little_house", "Little House"},
		{"UPPER-case", "Upper Case"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := titleCase(tt.input); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}
