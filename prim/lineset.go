package prim

import (
	"github.com/u3dgo/u3d/internal/rangecoder"
	"github.com/u3dgo/u3d/internal/typedio"
	"github.com/u3dgo/u3d/mesh"
	"github.com/u3dgo/u3d/quant"
)

// Terminal is one endpoint of a Line: a shading-independent attribute
// index set into the owning LineSet's shared arrays.
type Terminal struct {
	Position uint32
	Normal   uint32
	Texcoord [8]uint32
	Diffuse  uint32
	Specular uint32
}

// Line is a segment with a shading id and two terminals.
type Line struct {
	ShadingID uint32
	Terminals [2]Terminal
}

// TerminalAt returns a pointer to the terminal of l at position, preferring
// terminal 0, matching Line::get_terminal in
// original_source/src/u3d_plset.hh.
func (l *Line) TerminalAt(position uint32) *Terminal {
	if l.Terminals[0].Position == position {
		return &l.Terminals[0]
	}
	return &l.Terminals[1]
}

// lineIndexer maps a position to the list of line indices whose "new"
// terminal (terminal 1) sits at that position, matching LineSet::LineIndexer
// in original_source/src/u3d_plset.hh: only a line's newly-created
// terminal ever registers with its position's incidence list.
type lineIndexer struct {
	lineLists [][]uint32
}

func (li *lineIndexer) listLines(position uint32) []uint32 {
	if int(position) >= len(li.lineLists) {
		return nil
	}
	return li.lineLists[position]
}

func (li *lineIndexer) addPosition() {
	li.lineLists = append(li.lineLists, nil)
}

func (li *lineIndexer) setLine(position, line uint32) {
	li.lineLists[position] = append(li.lineLists[position], line)
}

// LineSet is a progressive polyline soup.
type LineSet struct {
	mesh.Base
	Lines []Line

	indexer lineIndexer

	lastDiffuse, lastSpecular uint32
	lastTexcoord              [8]uint32
}

// NewLineSet parses a LineSet declaration block (block type 0xFFFFFF37).
// Grounded on LineSet::LineSet in original_source/src/u3d_plset.cc.
func NewLineSet(r *typedio.Reader) *LineSet {
	return &LineSet{Base: *mesh.ParseDeclaration(r, false)}
}

// UpdateResolution applies one LineSet resolution-update block (block
// type 0xFFFFFF3F). Grounded on LineSet::update_resolution.
func (ls *LineSet) UpdateResolution(r *typedio.Reader) {
	r.ReadU32() // chain index, always zero
	start := r.ReadU32()
	end := r.ReadU32()

	for resolution := start; resolution < end; resolution++ {
		var splitPosition uint32
		var newPosition quant.Vector3
		if resolution == 0 {
			splitPosition = r.Dynamic(rangecoder.CZero)
		} else {
			splitPosition = r.Static(resolution)
			newPosition = ls.Positions[splitPosition]
		}
		splitLines := ls.indexer.listLines(splitPosition)

		posSign := r.DynamicU8(rangecoder.CPosDiffSign)
		posX := r.Dynamic(rangecoder.CPosDiffX)
		posY := r.Dynamic(rangecoder.CPosDiffY)
		posZ := r.Dynamic(rangecoder.CPosDiffZ)
		newPosition = newPosition.Add(quant.DequantizeVector3(posSign, posX, posY, posZ, ls.PositionIQ))
		ls.Positions = append(ls.Positions, newPosition)
		ls.indexer.addPosition()

		newNormalCount := r.Dynamic(rangecoder.CNormalCnt)
		var predNormal quant.Vector3
		for _, lidx := range splitLines {
			predNormal = predNormal.Add(ls.Normals[ls.Lines[lidx].TerminalAt(splitPosition).Normal])
		}
		predNormal = predNormal.Normalize()
		for i := uint32(0); i < newNormalCount; i++ {
			sign := r.DynamicU8(rangecoder.CDiffNormalSign)
			nx := r.Dynamic(rangecoder.CDiffNormalX)
			ny := r.Dynamic(rangecoder.CDiffNormalY)
			nz := r.Dynamic(rangecoder.CDiffNormalZ)
			ls.Normals = append(ls.Normals, predNormal.Add(quant.DequantizeVector3(sign, nx, ny, nz, ls.NormalIQ)))
		}

		newLineCount := r.Dynamic(rangecoder.CLineCnt)
		for i := uint32(0); i < newLineCount; i++ {
			var predDiffuse, predSpecular quant.Color4
			var predTexcoord [8]quant.TexCoord4
			var newLine Line
			newLine.ShadingID = r.Dynamic(rangecoder.CShading)
			newLine.Terminals[0].Position = r.Static(uint32(len(ls.Positions) - 1))
			newLine.Terminals[1].Position = uint32(len(ls.Positions) - 1)
			for _, lidx := range splitLines {
				terminal := ls.Lines[lidx].TerminalAt(splitPosition)
				predDiffuse = predDiffuse.Add(ls.DiffuseColors[terminal.Diffuse])
				predSpecular = predSpecular.Add(ls.SpecularColors[terminal.Specular])
				layers := ls.ShadingDescs[ls.Lines[lidx].ShadingID].TexLayerCount
				for k := uint32(0); k < layers && k < 8; k++ {
					predTexcoord[k] = predTexcoord[k].Add(ls.TexCoords[terminal.Texcoord[k]])
				}
			}
			if len(splitLines) > 0 {
				inv := 1 / float32(len(splitLines))
				predDiffuse = predDiffuse.Scale(inv)
				predSpecular = predSpecular.Scale(inv)
				for k := 0; k < 8; k++ {
					predTexcoord[k] = predTexcoord[k].Scale(inv)
				}
			}
			for j := 0; j < 2; j++ {
				newLine.Terminals[j].Normal = uint32(len(ls.Normals)) - newNormalCount + r.Dynamic(rangecoder.CNormalIdx)
				desc := ls.ShadingDescs[newLine.ShadingID]
				if desc.Attributes&0x1 != 0 {
					dupFlag := r.DynamicU8(rangecoder.CDiffDup)
					if dupFlag&0x2 == 0 {
						sign := r.DynamicU8(rangecoder.CDiffuseColorSign)
						red := r.Dynamic(rangecoder.CColorDiffR)
						green := r.Dynamic(rangecoder.CColorDiffG)
						blue := r.Dynamic(rangecoder.CColorDiffB)
						alpha := r.Dynamic(rangecoder.CColorDiffA)
						newLine.Terminals[j].Diffuse = uint32(len(ls.DiffuseColors))
						ls.DiffuseColors = append(ls.DiffuseColors, predDiffuse.Add(quant.DequantizeColor4(sign, red, green, blue, alpha, ls.DiffuseIQ)))
					} else {
						newLine.Terminals[j].Diffuse = ls.lastDiffuse
					}
					ls.lastDiffuse = newLine.Terminals[j].Diffuse
				}
				if desc.Attributes&0x2 != 0 {
					dupFlag := r.DynamicU8(rangecoder.CSpecDup)
					if dupFlag&0x2 == 0 {
						sign := r.DynamicU8(rangecoder.CSpecularColorSign)
						red := r.Dynamic(rangecoder.CColorDiffR)
						green := r.Dynamic(rangecoder.CColorDiffG)
						blue := r.Dynamic(rangecoder.CColorDiffB)
						alpha := r.Dynamic(rangecoder.CColorDiffA)
						newLine.Terminals[j].Specular = uint32(len(ls.SpecularColors))
						ls.SpecularColors = append(ls.SpecularColors, predSpecular.Add(quant.DequantizeColor4(sign, red, green, blue, alpha, ls.SpecularIQ)))
					} else {
						newLine.Terminals[j].Specular = ls.lastSpecular
					}
					ls.lastSpecular = newLine.Terminals[j].Specular
				}
				for k := uint32(0); k < desc.TexLayerCount && k < 8; k++ {
					dupFlag := r.DynamicU8(rangecoder.CTexCDup)
					if dupFlag&0x2 == 0 {
						sign := r.DynamicU8(rangecoder.CTexCoordSign)
						u := r.Dynamic(rangecoder.CTexCDiffU)
						v := r.Dynamic(rangecoder.CTexCDiffV)
						s := r.Dynamic(rangecoder.CTexCDiffS)
						t := r.Dynamic(rangecoder.CTexCDiffT)
						newLine.Terminals[j].Texcoord[k] = uint32(len(ls.TexCoords))
						ls.TexCoords = append(ls.TexCoords, predTexcoord[k].Add(quant.DequantizeTexCoord4(sign, u, v, s, t, ls.TexCoordIQ)))
					} else {
						newLine.Terminals[j].Texcoord[k] = ls.lastTexcoord[k]
					}
					ls.lastTexcoord[k] = newLine.Terminals[j].Texcoord[k]
				}
			}
			ls.Lines = append(ls.Lines, newLine)
			ls.indexer.setLine(uint32(len(ls.Positions)-1), uint32(len(ls.Lines)-1))
		}
	}
}
