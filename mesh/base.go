package mesh

import (
	"github.com/u3dgo/u3d/internal/rangecoder"
	"github.com/u3dgo/u3d/internal/typedio"
	"github.com/u3dgo/u3d/quant"
)

// CreateBaseMesh reads the base-mesh block (spec.md §4.5, block type
// 0xFFFFFF3B): the vertex and face arrays at the base resolution min_res,
// uncompressed. Grounded on CLOD_Mesh::create_base_mesh in
// original_source/src/u3d_mesh.cc. A base mesh may only be installed once,
// at the resolution declared as MinRes; a duplicate or out-of-order base
// mesh is reported through diag (if non-nil) and otherwise ignored,
// matching the reference decoder's diagnostic (rather than fatal) handling.
func (m *Mesh) CreateBaseMesh(r *typedio.Reader, diag func(format string, args ...interface{})) {
	r.ReadU32() // chain index, always zero

	faceCount := r.ReadU32()
	positionCount := r.ReadU32()
	normalCount := r.ReadU32()
	diffuseCount := r.ReadU32()
	specularCount := r.ReadU32()
	texcoordCount := r.ReadU32()

	if m.CurRes > 0 || m.MinRes != positionCount {
		if diag != nil {
			diag("base mesh is already set up")
		}
		return
	}

	m.Positions = make([]quant.Vector3, positionCount)
	for i := range m.Positions {
		m.Positions[i] = readVector3(r)
	}
	m.indexer.AddPositions(int(positionCount))

	m.Normals = make([]quant.Vector3, normalCount)
	for i := range m.Normals {
		m.Normals[i] = readVector3(r)
	}

	m.DiffuseColors = make([]quant.Color4, diffuseCount)
	for i := range m.DiffuseColors {
		m.DiffuseColors[i] = readColor4(r)
	}

	m.SpecularColors = make([]quant.Color4, specularCount)
	for i := range m.SpecularColors {
		m.SpecularColors[i] = readColor4(r)
	}

	m.TexCoords = make([]quant.TexCoord4, texcoordCount)
	for i := range m.TexCoords {
		m.TexCoords[i] = readTexCoord4(r)
	}

	m.Faces = make([]Face, faceCount)
	for i := range m.Faces {
		face := &m.Faces[i]
		face.ShadingID = r.Dynamic(rangecoder.CShading)
		for j := 0; j < 3; j++ {
			c := &face.Corners[j]
			c.Position = r.Static(positionCount)
			if m.Attributes&0x1 == 0 {
				c.Normal = r.Static(normalCount)
			}
			sd := m.ShadingDescs[face.ShadingID]
			if sd.Attributes&0x1 != 0 {
				c.Diffuse = r.Static(diffuseCount)
			}
			if sd.Attributes&0x2 != 0 {
				c.Specular = r.Static(specularCount)
			}
			for k := uint32(0); k < sd.TexLayerCount && k < 8; k++ {
				c.Texcoord[k] = r.Static(texcoordCount)
			}
		}
		m.indexer.AddFace(uint32(i), *face)
	}

	m.CurRes = m.MinRes
}
