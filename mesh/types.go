// Package mesh implements the continuous level-of-detail (CLOD) triangle
// mesh: declaration, base-mesh construction, and the progressive
// vertex-split resolution update — the hardest subsystem in the decoder
// (spec.md §4.5), grounded line-for-line on
// original_source/src/u3d_mesh.cc and clod_common.hh.
package mesh

import "github.com/u3dgo/u3d/quant"

// Corner indexes into a Mesh's shared per-attribute arrays.
type Corner struct {
	Position uint32
	Normal   uint32
	Diffuse  uint32
	Specular uint32
	Texcoord [8]uint32
}

// Face is a triangle: a shading id plus three corners.
type Face struct {
	ShadingID uint32
	Corners   [3]Corner
}

// CornerAt returns a pointer to the corner of f whose position equals p,
// preferring the highest-indexed matching corner slot — mirrors
// Face::get_corner in original_source/src/u3d_mesh.hh, whose
// corners[2]-then-corners[1]-then-corners[0] preference is load-bearing
// when a degenerate face repeats a position across corners.
func (f *Face) CornerAt(p uint32) *Corner {
	switch {
	case f.Corners[2].Position == p:
		return &f.Corners[2]
	case f.Corners[1].Position == p:
		return &f.Corners[1]
	default:
		return &f.Corners[0]
	}
}

// ShadingDesc describes one shading id's active vertex attributes.
type ShadingDesc struct {
	Attributes    uint32
	TexLayerCount uint32
	TexCoordDims  [8]uint32
}

// HasDiffuse reports whether this shading id carries per-vertex diffuse.
func (s ShadingDesc) HasDiffuse() bool { return s.Attributes&1 != 0 }

// HasSpecular reports whether this shading id carries per-vertex specular.
func (s ShadingDesc) HasSpecular() bool { return s.Attributes&2 != 0 }

// Bone is one entry of a CLOD_Object skeleton, carried alongside the
// shading-descriptor table in the declaration block. Grounded on the Bone
// struct in original_source/clod_common.hh.
type Bone struct {
	Name       string
	ParentName string
	Attributes uint32

	Length      float32
	Displacement quant.Vector3
	Orientation  quant.Quaternion

	// Present only when Attributes&0x1 != 0.
	LinkCount  uint32
	LinkLength float32

	// Present only when Attributes&0x2 != 0.
	StartJointCenter quant.Vector2
	StartJointScale  quant.Vector2
	EndJointCenter   quant.Vector2
	EndJointScale    quant.Vector2
}

// Base holds the fields shared by every CLOD_Object-derived primitive
// (CLOD mesh, PointSet, LineSet): the declaration block's attribute
// counts, shading descriptors, skeleton and shared vertex arrays. Grounded
// on the CLOD_Object base class in original_source/clod_common.hh.
type Base struct {
	Positions      []quant.Vector3
	Normals        []quant.Vector3
	DiffuseColors  []quant.Color4
	SpecularColors []quant.Color4
	TexCoords      []quant.TexCoord4

	ShadingDescs []ShadingDesc

	Attributes    uint32 // bit 0: no normals
	FaceCount     uint32
	PositionCount uint32
	NormalCount   uint32
	DiffuseCount  uint32
	SpecularCount uint32
	TexCoordCount uint32

	MinRes uint32
	MaxRes uint32

	// Quality factors, read and retained verbatim; they do not affect
	// decode, only authoring-side LOD selection in the original tool.
	QualityFactorPosition uint32
	QualityFactorNormal   uint32
	QualityFactorTexCoord uint32

	PositionIQ float32
	NormalIQ   float32
	TexCoordIQ float32
	DiffuseIQ  float32
	SpecularIQ float32

	NormalCreaseParameter    float32
	NormalUpdateParameter    float32
	NormalToleranceParameter float32

	Skeleton []Bone

	CurRes uint32
}

// HasNormals reports whether this primitive carries per-vertex normals.
func (b *Base) HasNormals() bool { return b.Attributes&1 == 0 }

// Mesh is a fully or partially reconstructed CLOD triangle mesh.
type Mesh struct {
	Base
	Faces []Face

	lastCorners [3]Corner
	indexer     FaceIndexer
}
