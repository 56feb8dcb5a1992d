// Package prim implements the two simpler progressive primitives, PointSet
// and LineSet (spec.md §4.6), grounded on
// original_source/src/u3d_plset.cc and u3d_plset.hh. Both share the mesh
// package's CLOD_Object declaration layout and predict new attributes
// without the quaternion-clustered scheme used by CLOD meshes: PointSet
// takes the split point's own attributes as the prediction, LineSet the
// average over the split position's incident line terminals.
package prim

import (
	"github.com/u3dgo/u3d/internal/rangecoder"
	"github.com/u3dgo/u3d/internal/typedio"
	"github.com/u3dgo/u3d/mesh"
	"github.com/u3dgo/u3d/quant"
)

// Point is one vertex of a PointSet: a shading id plus indices into the
// owning PointSet's shared attribute arrays.
type Point struct {
	ShadingID uint32
	Position  uint32
	Normal    uint32
	Texcoord  [8]uint32
	Diffuse   uint32
	Specular  uint32
}

// PointSet is a progressive point cloud.
type PointSet struct {
	mesh.Base
	Points []Point

	lastDiffuse, lastSpecular uint32
	lastTexcoord              [8]uint32
}

// NewPointSet parses a PointSet declaration block (block type 0xFFFFFF36).
// Grounded on PointSet::PointSet in original_source/src/u3d_plset.cc.
func NewPointSet(r *typedio.Reader) *PointSet {
	return &PointSet{Base: *mesh.ParseDeclaration(r, false)}
}

// UpdateResolution applies one PointSet resolution-update block (block
// type 0xFFFFFF3E). Grounded on PointSet::update_resolution.
func (p *PointSet) UpdateResolution(r *typedio.Reader) {
	r.ReadU32() // chain index, always zero
	start := r.ReadU32()
	end := r.ReadU32()

	for resolution := start; resolution < end; resolution++ {
		var splitPosition uint32
		var predPosition quant.Vector3
		if resolution == 0 {
			splitPosition = r.Dynamic(rangecoder.CZero)
		} else {
			splitPosition = r.Static(resolution)
			predPosition = p.Positions[splitPosition]
		}
		posSign := r.DynamicU8(rangecoder.CPosDiffSign)
		posX := r.Dynamic(rangecoder.CPosDiffX)
		posY := r.Dynamic(rangecoder.CPosDiffY)
		posZ := r.Dynamic(rangecoder.CPosDiffZ)
		p.Positions = append(p.Positions, predPosition.Add(quant.DequantizeVector3(posSign, posX, posY, posZ, p.PositionIQ)))

		newNormalCount := r.Dynamic(rangecoder.CNormalCnt)
		var predNormal quant.Vector3
		splitPoint := splitPosition
		if resolution > 0 {
			predNormal = p.Normals[p.Points[splitPoint].Normal]
		}
		for i := uint32(0); i < newNormalCount; i++ {
			sign := r.DynamicU8(rangecoder.CDiffNormalSign)
			nx := r.Dynamic(rangecoder.CDiffNormalX)
			ny := r.Dynamic(rangecoder.CDiffNormalY)
			nz := r.Dynamic(rangecoder.CDiffNormalZ)
			p.Normals = append(p.Normals, predNormal.Add(quant.DequantizeVector3(sign, nx, ny, nz, p.NormalIQ)))
		}

		newPointCount := r.Dynamic(rangecoder.CPointCnt)
		var predDiffuse, predSpecular quant.Color4
		var predTexcoord [8]quant.TexCoord4
		if resolution > 0 {
			predDiffuse = p.DiffuseColors[p.Points[splitPoint].Diffuse]
			predSpecular = p.SpecularColors[p.Points[splitPoint].Specular]
			layers := p.ShadingDescs[p.Points[splitPoint].ShadingID].TexLayerCount
			for i := uint32(0); i < layers && i < 8; i++ {
				predTexcoord[i] = p.TexCoords[p.Points[splitPoint].Texcoord[i]]
			}
		}
		for i := uint32(0); i < newPointCount; i++ {
			var np Point
			np.ShadingID = r.Dynamic(rangecoder.CShading)
			np.Normal = uint32(len(p.Normals)) - newNormalCount + r.Dynamic(rangecoder.CNormalIdx)
			desc := p.ShadingDescs[np.ShadingID]
			if desc.Attributes&0x1 != 0 {
				dupFlag := r.DynamicU8(rangecoder.CDiffDup)
				if dupFlag&0x2 == 0 {
					sign := r.DynamicU8(rangecoder.CDiffuseColorSign)
					red := r.Dynamic(rangecoder.CColorDiffR)
					green := r.Dynamic(rangecoder.CColorDiffG)
					blue := r.Dynamic(rangecoder.CColorDiffB)
					alpha := r.Dynamic(rangecoder.CColorDiffA)
					np.Diffuse = uint32(len(p.DiffuseColors))
					p.DiffuseColors = append(p.DiffuseColors, predDiffuse.Add(quant.DequantizeColor4(sign, red, green, blue, alpha, p.DiffuseIQ)))
				} else {
					np.Diffuse = p.lastDiffuse
				}
				p.lastDiffuse = np.Diffuse
			}
			if desc.Attributes&0x2 != 0 {
				dupFlag := r.DynamicU8(rangecoder.CSpecDup)
				if dupFlag&0x2 == 0 {
					sign := r.DynamicU8(rangecoder.CSpecularColorSign)
					red := r.Dynamic(rangecoder.CColorDiffR)
					green := r.Dynamic(rangecoder.CColorDiffG)
					blue := r.Dynamic(rangecoder.CColorDiffB)
					alpha := r.Dynamic(rangecoder.CColorDiffA)
					np.Specular = uint32(len(p.SpecularColors))
					p.SpecularColors = append(p.SpecularColors, predSpecular.Add(quant.DequantizeColor4(sign, red, green, blue, alpha, p.SpecularIQ)))
				} else {
					np.Specular = p.lastSpecular
				}
				p.lastSpecular = np.Specular
			}
			for j := uint32(0); j < desc.TexLayerCount && j < 8; j++ {
				dupFlag := r.DynamicU8(rangecoder.CTexCDup)
				if dupFlag&0x2 == 0 {
					sign := r.DynamicU8(rangecoder.CTexCoordSign)
					u := r.Dynamic(rangecoder.CTexCDiffU)
					v := r.Dynamic(rangecoder.CTexCDiffV)
					s := r.Dynamic(rangecoder.CTexCDiffS)
					t := r.Dynamic(rangecoder.CTexCDiffT)
					np.Texcoord[j] = uint32(len(p.TexCoords))
					p.TexCoords = append(p.TexCoords, predTexcoord[j].Add(quant.DequantizeTexCoord4(sign, u, v, s, t, p.TexCoordIQ)))
				} else {
					np.Texcoord[j] = p.lastTexcoord[j]
				}
				p.lastTexcoord[j] = np.Texcoord[j]
			}
			p.Points = append(p.Points, np)
		}
	}
}
