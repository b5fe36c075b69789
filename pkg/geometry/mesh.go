package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-gi-shading/pkg/core"
	"github.com/df07/go-gi-shading/pkg/material"
)

var (
	// ErrInvalidFace is returned for faces that are not triangles or quads
	ErrInvalidFace = errors.New("geometry: face must have 3 or 4 vertices")

	// ErrIndexOutOfRange is returned when a face references a missing vertex or material
	ErrIndexOutOfRange = errors.New("geometry: index out of range")
)

// Mesh is object-space geometry shared by any number of instances
type Mesh struct {
	Name      string
	Vertices  []core.Vec3
	Normals   []core.Vec3 // per vertex, optional
	UVs       []core.Vec2 // per vertex, optional
	Faces     [][]int
	Materials []*material.Material
	FaceMat   []int // index into Materials per face, nil means slot 0
	Smooth    bool
}

// NewMesh creates an empty mesh using a single material
func NewMesh(name string, mat *material.Material) *Mesh {
	return &Mesh{Name: name, Materials: []*material.Material{mat}}
}

// AddVertex appends a vertex and returns its index
func (m *Mesh) AddVertex(p core.Vec3) int {
	m.Vertices = append(m.Vertices, p)
	return len(m.Vertices) - 1
}

// AddFace appends a triangle or quad
func (m *Mesh) AddFace(indices ...int) error {
	if len(indices) != 3 && len(indices) != 4 {
		return ErrInvalidFace
	}
	for _, idx := range indices {
		if idx < 0 || idx >= len(m.Vertices) {
			return fmt.Errorf("vertex %d of mesh %q: %w", idx, m.Name, ErrIndexOutOfRange)
		}
	}
	m.Faces = append(m.Faces, append([]int(nil), indices...))
	return nil
}

// Validate checks every face and per-face material slot
func (m *Mesh) Validate() error {
	for i, face := range m.Faces {
		if len(face) != 3 && len(face) != 4 {
			return fmt.Errorf("face %d of mesh %q: %w", i, m.Name, ErrInvalidFace)
		}
		for _, idx := range face {
			if idx < 0 || idx >= len(m.Vertices) {
				return fmt.Errorf("face %d of mesh %q: %w", i, m.Name, ErrIndexOutOfRange)
			}
		}
		if m.FaceMat != nil && (m.FaceMat[i] < 0 || m.FaceMat[i] >= len(m.Materials)) {
			return fmt.Errorf("material slot of face %d in mesh %q: %w", i, m.Name, ErrIndexOutOfRange)
		}
	}
	if m.Normals != nil && len(m.Normals) != len(m.Vertices) {
		return fmt.Errorf("normals of mesh %q: %w", m.Name, ErrIndexOutOfRange)
	}
	if m.UVs != nil && len(m.UVs) != len(m.Vertices) {
		return fmt.Errorf("uvs of mesh %q: %w", m.Name, ErrIndexOutOfRange)
	}
	return nil
}

// FaceMaterial returns the material of face i
func (m *Mesh) FaceMaterial(i int) *material.Material {
	if m.FaceMat == nil {
		return m.Materials[0]
	}
	return m.Materials[m.FaceMat[i]]
}

// NewQuadMesh creates a single quad with corner at corner spanned by u and v.
// The front side faces along u x v.
func NewQuadMesh(name string, corner, u, v core.Vec3, mat *material.Material) *Mesh {
	m := NewMesh(name, mat)
	m.AddVertex(corner)
	m.AddVertex(corner.Add(u))
	m.AddVertex(corner.Add(u).Add(v))
	m.AddVertex(corner.Add(v))
	m.UVs = []core.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	m.Faces = [][]int{{0, 1, 2, 3}}
	return m
}

// NewGridMesh creates a square grid of quads in the XZ plane centered at the
// origin, facing +Y.
func NewGridMesh(name string, size float64, divisions int, mat *material.Material) *Mesh {
	if divisions < 1 {
		divisions = 1
	}
	m := NewMesh(name, mat)
	step := size / float64(divisions)
	half := size / 2
	row := divisions + 1
	for j := 0; j <= divisions; j++ {
		for i := 0; i <= divisions; i++ {
			m.AddVertex(core.NewVec3(-half+float64(i)*step, 0, -half+float64(j)*step))
			m.UVs = append(m.UVs, core.NewVec2(float64(i)/float64(divisions), float64(j)/float64(divisions)))
		}
	}
	for j := 0; j < divisions; j++ {
		for i := 0; i < divisions; i++ {
			a := j*row + i
			// counter-clockwise seen from +Y
			m.Faces = append(m.Faces, []int{a, a + row, a + row + 1, a + 1})
		}
	}
	return m
}

// NewSphereMesh creates a latitude-longitude sphere with triangle fans at the
// poles and quads elsewhere. With inward set the faces point to the center.
func NewSphereMesh(name string, center core.Vec3, radius float64, segments, rings int, inward bool, mat *material.Material) *Mesh {
	if segments < 3 {
		segments = 3
	}
	if rings < 2 {
		rings = 2
	}

	m := NewMesh(name, mat)
	m.Smooth = true

	addVertex := func(dir core.Vec3) int {
		n := dir
		if inward {
			n = dir.Negate()
		}
		m.Normals = append(m.Normals, n)
		return m.AddVertex(center.Add(dir.Multiply(radius)))
	}

	top := addVertex(core.NewVec3(0, 1, 0))
	for r := 1; r < rings; r++ {
		theta := math.Pi * float64(r) / float64(rings)
		for s := 0; s < segments; s++ {
			phi := 2 * math.Pi * float64(s) / float64(segments)
			addVertex(core.NewVec3(math.Sin(theta)*math.Cos(phi), math.Cos(theta), math.Sin(theta)*math.Sin(phi)))
		}
	}
	bottom := addVertex(core.NewVec3(0, -1, 0))

	ring := func(r, s int) int { return 1 + (r-1)*segments + s%segments }
	emit := func(idx ...int) {
		if inward {
			for i, j := 0, len(idx)-1; i < j; i, j = i+1, j-1 {
				idx[i], idx[j] = idx[j], idx[i]
			}
		}
		m.Faces = append(m.Faces, idx)
	}

	// winding is counter-clockwise seen from outside
	for s := 0; s < segments; s++ {
		emit(top, ring(1, s+1), ring(1, s))
	}
	for r := 1; r < rings-1; r++ {
		for s := 0; s < segments; s++ {
			emit(ring(r, s), ring(r, s+1), ring(r+1, s+1), ring(r+1, s))
		}
	}
	for s := 0; s < segments; s++ {
		emit(bottom, ring(rings-1, s), ring(rings-1, s+1))
	}
	return m
}
