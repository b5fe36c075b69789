package geometry

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-gi-shading/pkg/core"
	"github.com/df07/go-gi-shading/pkg/lights"
	"github.com/df07/go-gi-shading/pkg/material"
)

// Scene holds instanced meshes and lamps and provides world-space faces
// to the shading core. It is immutable after Finalize.
type Scene struct {
	Instances []*Instance
	Lamps     []*lights.Lamp

	faces     []Face
	offsets   []int // first global face index of each instance
	bvh       *BVH
	exclusive map[string]bool
}

// NewScene creates an empty scene
func NewScene() *Scene {
	return &Scene{}
}

// AddInstance places mesh in the scene with the given transform
func (s *Scene) AddInstance(mesh *Mesh, transform mgl64.Mat4) *Instance {
	in := NewInstance(mesh, transform)
	in.ID = len(s.Instances)
	s.Instances = append(s.Instances, in)
	return in
}

// AddMesh places mesh in the scene without transformation
func (s *Scene) AddMesh(mesh *Mesh) *Instance {
	return s.AddInstance(mesh, mgl64.Ident4())
}

// AddLamp adds a light source
func (s *Scene) AddLamp(l *lights.Lamp) {
	s.Lamps = append(s.Lamps, l)
}

// Finalize converts every instance to world space, prepares the lamps and
// builds the ray intersection hierarchy
func (s *Scene) Finalize() error {
	s.faces = s.faces[:0]
	s.offsets = s.offsets[:0]
	s.exclusive = make(map[string]bool)

	for _, in := range s.Instances {
		if err := in.Mesh.Validate(); err != nil {
			return fmt.Errorf("instance %d: %w", in.ID, err)
		}
		in.update()
		s.offsets = append(s.offsets, len(s.faces))
		s.faces = in.worldFaces(s.faces)

		for _, m := range in.Mesh.Materials {
			if m != nil && m.LightGroup != "" && m.LightGroupExclusive {
				s.exclusive[m.LightGroup] = true
			}
		}
	}

	for _, l := range s.Lamps {
		l.Prepare()
	}

	s.bvh = NewBVH(s.faces)
	return nil
}

// NumFaces returns the number of world-space faces
func (s *Scene) NumFaces() int {
	return len(s.faces)
}

// ForEachFace calls fn for every face in instance order
func (s *Scene) ForEachFace(fn func(f *Face)) {
	for i := range s.faces {
		fn(&s.faces[i])
	}
}

// FaceIndex converts a reference to a global face index
func (s *Scene) FaceIndex(ref FaceRef) (int, bool) {
	if !ref.Valid() || int(ref.Instance) >= len(s.offsets) {
		return 0, false
	}
	i := s.offsets[ref.Instance] + int(ref.Index)
	if i >= len(s.faces) || s.faces[i].Ref != ref {
		return 0, false
	}
	return i, true
}

// Face returns the face for a reference, or nil
func (s *Scene) Face(ref FaceRef) *Face {
	i, ok := s.FaceIndex(ref)
	if !ok {
		return nil
	}
	return &s.faces[i]
}

// FaceVertices returns the world-space corners of a face
func (s *Scene) FaceVertices(ref FaceRef) []core.Vec3 {
	if f := s.Face(ref); f != nil {
		return f.Vertices()
	}
	return nil
}

// FaceMaterial returns the material of a face
func (s *Scene) FaceMaterial(ref FaceRef) *material.Material {
	if f := s.Face(ref); f != nil {
		return f.Material
	}
	return nil
}

// InstanceTransform returns the object-to-world matrix of an instance
func (s *Scene) InstanceTransform(id int) mgl64.Mat4 {
	if id < 0 || id >= len(s.Instances) {
		return mgl64.Ident4()
	}
	return s.Instances[id].Transform
}

// Instance returns the instance with the given id, or nil
func (s *Scene) Instance(id int32) *Instance {
	if id < 0 || int(id) >= len(s.Instances) {
		return nil
	}
	return s.Instances[id]
}

// InstanceLayer returns the layer mask of an instance
func (s *Scene) InstanceLayer(id int32) uint32 {
	if id < 0 || int(id) >= len(s.Instances) {
		return ^uint32(0)
	}
	return s.Instances[id].Layer
}

// LightsFor returns the lamps that may light a material. A material with
// a light group only sees that group; others see every lamp not claimed by
// an exclusive group.
func (s *Scene) LightsFor(m *material.Material) []*lights.Lamp {
	if m != nil && m.LightGroup != "" {
		var out []*lights.Lamp
		for _, l := range s.Lamps {
			if l.Group == m.LightGroup {
				out = append(out, l)
			}
		}
		return out
	}

	if len(s.exclusive) == 0 {
		return s.Lamps
	}
	var out []*lights.Lamp
	for _, l := range s.Lamps {
		if !s.exclusive[l.Group] {
			out = append(out, l)
		}
	}
	return out
}

// Intersector returns the ray intersection engine built by Finalize
func (s *Scene) Intersector() *BVH {
	return s.bvh
}

// Bounds returns the world bounding box
func (s *Scene) Bounds() core.AABB {
	if s.bvh == nil {
		return core.EmptyAABB()
	}
	return s.bvh.Bounds()
}
