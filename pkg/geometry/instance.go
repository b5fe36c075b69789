package geometry

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-gi-shading/pkg/core"
)

// Instance places a mesh in the world
type Instance struct {
	ID        int
	Mesh      *Mesh
	Transform mgl64.Mat4
	Layer     uint32 // lamps only light instances sharing a layer bit

	inverse      mgl64.Mat4
	normalMatrix mgl64.Mat3
	flipped      bool // negative determinant mirrors the winding
}

// NewInstance creates an instance with the given object-to-world transform
func NewInstance(mesh *Mesh, transform mgl64.Mat4) *Instance {
	in := &Instance{Mesh: mesh, Transform: transform, Layer: 1}
	in.update()
	return in
}

func (in *Instance) update() {
	m3 := in.Transform.Mat3()
	in.flipped = m3.Det() < 0
	in.inverse = in.Transform.Inv()
	in.normalMatrix = m3.Inv().Transpose()
}

// TransformPoint maps an object-space position to world space
func (in *Instance) TransformPoint(p core.Vec3) core.Vec3 {
	w := mgl64.TransformCoordinate(mgl64.Vec3{p.X, p.Y, p.Z}, in.Transform)
	return core.NewVec3(w[0], w[1], w[2])
}

// ToObject maps a world-space position back to object space
func (in *Instance) ToObject(p core.Vec3) core.Vec3 {
	o := mgl64.TransformCoordinate(mgl64.Vec3{p.X, p.Y, p.Z}, in.inverse)
	return core.NewVec3(o[0], o[1], o[2])
}

// TransformNormal maps an object-space normal to world space with the
// inverse transpose, so non-uniform scales keep normals perpendicular
func (in *Instance) TransformNormal(n core.Vec3) core.Vec3 {
	w := in.normalMatrix.Mul3x1(mgl64.Vec3{n.X, n.Y, n.Z})
	return core.NewVec3(w[0], w[1], w[2]).Normalize()
}

// worldFaces converts every mesh face to world space
func (in *Instance) worldFaces(dst []Face) []Face {
	mesh := in.Mesh
	var verts [4]core.Vec3
	for i, idx := range mesh.Faces {
		count := len(idx)
		for k, vi := range idx {
			verts[k] = in.TransformPoint(mesh.Vertices[vi])
		}
		if in.flipped {
			for a, b := 0, count-1; a < b; a, b = a+1, b-1 {
				verts[a], verts[b] = verts[b], verts[a]
			}
		}

		f := newFace(FaceRef{Instance: int32(in.ID), Index: int32(i)}, verts[:count], mesh.FaceMaterial(i))
		for k := 0; k < count; k++ {
			src := idx[k]
			if in.flipped {
				src = idx[count-1-k]
			}
			if mesh.Smooth && mesh.Normals != nil {
				f.N[k] = in.TransformNormal(mesh.Normals[src])
			}
			if mesh.UVs != nil {
				f.UV[k] = mesh.UVs[src]
			}
		}
		f.Smooth = mesh.Smooth && mesh.Normals != nil
		f.HasUV = mesh.UVs != nil
		dst = append(dst, f)
	}
	return dst
}
