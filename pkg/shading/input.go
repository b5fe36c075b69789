package shading

import (
	"errors"
	"fmt"

	"github.com/df07/go-gi-shading/pkg/core"
	"github.com/df07/go-gi-shading/pkg/geometry"
	"github.com/df07/go-gi-shading/pkg/material"
)

// ErrStageOrder is returned when a pipeline stage runs before the one it
// depends on
var ErrStageOrder = errors.New("shading: stage out of order")

// State is the progress of a ShadeInput through the pipeline
type State int

const (
	StateUninitialized State = iota
	StateGeometry
	StateNormals
	StateTexCoords
	StateShaded
)

func (s State) String() string {
	switch s {
	case StateGeometry:
		return "geometry"
	case StateNormals:
		return "normals"
	case StateTexCoords:
		return "texcoords"
	case StateShaded:
		return "shaded"
	default:
		return "uninitialized"
	}
}

// ShadeInput is the state of one shading sample. Stages fill it in order:
// SetGeometry, SetNormals, SetTexCoords and finally Shade. Recursive rays
// create a nested input one level deeper.
type ShadeInput struct {
	rc    *RenderContext
	tc    *ThreadContext
	state State

	X, Y        int // pixel being shaded
	Depth       int // recursion level, 0 for camera rays
	MirrorDepth int // mirror bounces taken so far
	TransDepth  int // transmission bounces taken so far

	Ray      core.Ray
	Face     *geometry.Face
	U, V     float64
	Second   bool
	Distance float64

	P          core.Vec3 // hit position
	View       core.Vec3 // unit direction from the eye to P
	FaceNormal core.Vec3 // geometric normal facing the viewer
	Flipped    bool      // the ray hit the back of the face
	N          core.Vec3 // shading normal facing the viewer
	Tangent    core.Vec3 // only with tangent shading

	UV      core.Vec2
	Global  core.Vec3
	Object  core.Vec3
	Window  core.Vec3
	Reflect core.Vec3 // mirror direction of View about N

	Material *material.Material
	Color    core.Vec3 // diffuse color after textures
	Layer    uint32
}

// NewShadeInput starts a camera sample for pixel x, y
func NewShadeInput(rc *RenderContext, tc *ThreadContext, x, y int) *ShadeInput {
	return &ShadeInput{rc: rc, tc: tc, X: x, Y: y}
}

// State returns how far the pipeline has run
func (s *ShadeInput) State() State {
	return s.state
}

// nested creates the input for a ray leaving s
func (s *ShadeInput) nested(transmission bool) *ShadeInput {
	n := &ShadeInput{
		rc:          s.rc,
		tc:          s.tc,
		X:           s.X,
		Y:           s.Y,
		Depth:       s.Depth + 1,
		MirrorDepth: s.MirrorDepth,
		TransDepth:  s.TransDepth,
	}
	if transmission {
		n.TransDepth++
	} else {
		n.MirrorDepth++
	}
	return n
}

// SetGeometry binds the face hit by ray. The face normal is turned to face
// the viewer and the flip is recorded.
func (s *ShadeInput) SetGeometry(ray core.Ray, hit geometry.Hit) error {
	if s.state != StateUninitialized {
		return fmt.Errorf("%w: geometry set twice", ErrStageOrder)
	}
	if hit.Face == nil {
		return fmt.Errorf("%w: hit without face", ErrStageOrder)
	}

	s.Ray = ray
	s.Face = hit.Face
	s.U, s.V, s.Second = hit.U, hit.V, hit.Second
	s.Distance = hit.Distance
	s.View = ray.Direction.Normalize()
	s.P = hit.Face.Point(hit.U, hit.V, hit.Second)

	s.FaceNormal = hit.Face.Normal
	s.Flipped = s.FaceNormal.Dot(s.View) > 0
	if s.Flipped {
		s.FaceNormal = s.FaceNormal.Negate()
	}

	s.Material = hit.Face.Material
	if s.Material == nil {
		s.Material = defaultMaterial
	}
	s.Layer = s.rc.Scene.InstanceLayer(hit.Face.Ref.Instance)
	s.state = StateGeometry
	return nil
}

var defaultMaterial = material.NewMaterial("default", core.Splat(0.8))

// SetNormals interpolates the shading normal. Smooth normals are flipped
// with the face and pushed back in front of the viewer if interpolation
// turned them away.
func (s *ShadeInput) SetNormals() error {
	if s.state != StateGeometry {
		return fmt.Errorf("%w: normals need geometry, state is %v", ErrStageOrder, s.state)
	}

	n := s.Face.SmoothNormal(s.U, s.V, s.Second)
	if s.Flipped {
		n = n.Negate()
	}
	if n.Dot(s.View) > 0 {
		n = s.FaceNormal
	}
	s.N = n

	if s.Material.Has(material.ModeTangentShading) {
		s.Tangent = s.tangent()
	}
	s.state = StateNormals
	return nil
}

// tangent follows the U direction of the face, or any perpendicular when
// the face has no UVs
func (s *ShadeInput) tangent() core.Vec3 {
	f := s.Face
	c := geometry.Corners(s.Second)
	if f.HasUV {
		e1 := f.V[c[1]].Subtract(f.V[c[0]])
		e2 := f.V[c[2]].Subtract(f.V[c[0]])
		d1 := f.UV[c[1]].Subtract(f.UV[c[0]])
		d2 := f.UV[c[2]].Subtract(f.UV[c[0]])
		det := d1.X*d2.Y - d2.X*d1.Y
		if det != 0 {
			t := e1.Multiply(d2.Y).Subtract(e2.Multiply(d1.Y)).Multiply(1 / det)
			t = t.Subtract(s.N.Multiply(t.Dot(s.N)))
			if !t.IsZero() {
				return t.Normalize()
			}
		}
	}
	t, _ := s.N.Orthonormal()
	return t
}

// SetTexCoords computes UVs and the 3D coordinates the material's texture
// needs, then evaluates the diffuse color
func (s *ShadeInput) SetTexCoords() error {
	if s.state != StateNormals {
		return fmt.Errorf("%w: texcoords need normals, state is %v", ErrStageOrder, s.state)
	}
	m := s.Material

	s.UV = s.Face.TexCoord(s.U, s.V, s.Second)
	s.Global = s.P

	var p core.Vec3
	if m.Texture != nil {
		switch m.TexCoords {
		case material.TexCoordObject:
			if in := s.rc.Scene.Instance(s.Face.Ref.Instance); in != nil {
				s.Object = in.ToObject(s.P)
			}
			p = s.Object
		case material.TexCoordGlobal:
			p = s.Global
		case material.TexCoordWindow:
			if s.rc.Width > 0 && s.rc.Height > 0 {
				s.Window = core.NewVec3(float64(s.X)/float64(s.rc.Width), float64(s.Y)/float64(s.rc.Height), 0)
			}
			p = s.Window
		}
	}
	s.Color = m.ColorAt(s.UV, p)

	if m.Has(material.ModeRayMirror) {
		s.Reflect = material.Reflect(s.View, s.N)
	}
	s.state = StateTexCoords
	return nil
}

// Shade runs the material and fills res
func (s *ShadeInput) Shade(res *ShadeResult) error {
	if s.state != StateTexCoords {
		return fmt.Errorf("%w: shade needs texcoords, state is %v", ErrStageOrder, s.state)
	}
	*res = ShadeResult{}
	shadeMaterial(s, res)
	s.state = StateShaded
	return nil
}

// run takes a fresh input through every stage
func (s *ShadeInput) run(ray core.Ray, hit geometry.Hit, res *ShadeResult) error {
	if err := s.SetGeometry(ray, hit); err != nil {
		return err
	}
	if err := s.SetNormals(); err != nil {
		return err
	}
	if err := s.SetTexCoords(); err != nil {
		return err
	}
	return s.Shade(res)
}
