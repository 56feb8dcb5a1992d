package mesh

import "github.com/u3dgo/u3d/internal/typedio"

// ParseDeclaration reads a CLOD mesh declaration block (spec.md §4.5,
// block type 0xFFFFFF31). clodDescFlag selects whether min/max resolution
// fields are present: true for a CLOD mesh, false for PointSet/LineSet
// (shared with the prim package). Grounded on CLOD_Object::CLOD_Object in
// original_source/src/u3d_mesh.cc.
func ParseDeclaration(r *typedio.Reader, clodDescFlag bool) *Base {
	m := &Base{}
	r.ReadU32() // chain index, always zero

	m.Attributes = r.ReadU32()
	m.FaceCount = r.ReadU32()
	m.PositionCount = r.ReadU32()
	m.NormalCount = r.ReadU32()
	m.DiffuseCount = r.ReadU32()
	m.SpecularCount = r.ReadU32()
	m.TexCoordCount = r.ReadU32()

	shadingCount := r.ReadU32()
	m.ShadingDescs = make([]ShadingDesc, shadingCount)
	for i := range m.ShadingDescs {
		d := &m.ShadingDescs[i]
		d.Attributes = r.ReadU32()
		d.TexLayerCount = r.ReadU32()
		for j := uint32(0); j < d.TexLayerCount && j < 8; j++ {
			d.TexCoordDims[j] = r.ReadU32()
		}
		r.ReadU32() // reserved
	}

	if clodDescFlag {
		m.MinRes = r.ReadU32()
		m.MaxRes = r.ReadU32()
	}

	m.QualityFactorPosition = r.ReadU32()
	m.QualityFactorNormal = r.ReadU32()
	m.QualityFactorTexCoord = r.ReadU32()

	m.PositionIQ = r.ReadF32()
	m.NormalIQ = r.ReadF32()
	m.TexCoordIQ = r.ReadF32()
	m.DiffuseIQ = r.ReadF32()
	m.SpecularIQ = r.ReadF32()

	m.NormalCreaseParameter = r.ReadF32()
	m.NormalUpdateParameter = r.ReadF32()
	m.NormalToleranceParameter = r.ReadF32()

	boneCount := r.ReadU32()
	m.Skeleton = make([]Bone, boneCount)
	for i := range m.Skeleton {
		b := &m.Skeleton[i]
		b.Name = r.ReadString()
		b.ParentName = r.ReadString()
		b.Attributes = r.ReadU32()
		b.Length = r.ReadF32()
		b.Displacement = readVector3(r)
		b.Orientation = readQuaternion(r)
		if b.Attributes&0x1 != 0 {
			b.LinkCount = r.ReadU32()
			b.LinkLength = r.ReadF32()
		}
		if b.Attributes&0x2 != 0 {
			b.StartJointCenter = readVector2(r)
			b.StartJointScale = readVector2(r)
			b.EndJointCenter = readVector2(r)
			b.EndJointScale = readVector2(r)
		}
		for j := 0; j < 6; j++ {
			r.ReadF32() // rotation constraints, unused
		}
	}

	return m
}

// New parses a CLOD mesh declaration block and wraps it as a Mesh, ready
// for CreateBaseMesh. Grounded on CLOD_Mesh::CLOD_Mesh in
// original_source/src/u3d_mesh.cc.
func New(r *typedio.Reader) *Mesh {
	return &Mesh{Base: *ParseDeclaration(r, true)}
}
