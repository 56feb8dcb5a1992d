package mesh

import (
	"github.com/u3dgo/u3d/internal/rangecoder"
	"github.com/u3dgo/u3d/internal/typedio"
	"github.com/u3dgo/u3d/quant"
)

// newFaceBuild holds one not-yet-finalized vertex split face: its corners
// are assembled across several passes before being wound into the mesh's
// permanent Face order.
type newFaceBuild struct {
	shadingID uint32
	ornt      uint8
	corners   [3]Corner
}

// UpdateResolution applies one progressive resolution-update block
// (spec.md §4.5, block type 0xFFFFFF3C): a run of vertex splits taking the
// mesh from CurRes up to the block's declared end resolution. Grounded
// line-for-line on CLOD_Mesh::update_resolution in
// original_source/src/u3d_mesh.cc, including its two load-bearing quirks
// (see the inline notes at the specular-color loop bound and the
// last-corner texcoord cache) which are preserved verbatim rather than
// "corrected", since the reference encoder's bitstream depends on them.
func (m *Mesh) UpdateResolution(r *typedio.Reader) {
	r.ReadU32() // chain index, always zero
	start := r.ReadU32()
	end := r.ReadU32()
	if m.CurRes != start {
		return
	}

	for i := start; i < end; i++ {
		var splitPosition uint32
		if i == 0 {
			splitPosition = r.Dynamic(rangecoder.CZero)
		} else {
			splitPosition = r.Static(i)
		}

		var diffuseAverage, specularAverage quant.Color4
		var texcoordAverage quant.TexCoord4
		var colorMatchCount uint32
		splitFaces := m.indexer.ListFaces(splitPosition)
		var localPositions []uint32
		for _, fidx := range splitFaces {
			face := &m.Faces[fidx]
			corner := face.CornerAt(splitPosition)
			shadingAttr := m.ShadingDescs[face.ShadingID].Attributes
			if shadingAttr&0x1 != 0 {
				diffuseAverage = diffuseAverage.Add(m.DiffuseColors[corner.Diffuse])
			}
			if shadingAttr&0x2 != 0 {
				specularAverage = specularAverage.Add(m.SpecularColors[corner.Specular])
			}
			if m.ShadingDescs[face.ShadingID].TexLayerCount > 0 {
				texcoordAverage = texcoordAverage.Add(m.TexCoords[corner.Texcoord[0]])
			}
			colorMatchCount++
			for k := 0; k < 3; k++ {
				if face.Corners[k].Position != splitPosition {
					localPositions = append(localPositions, face.Corners[k].Position)
				}
			}
		}
		localPositions = greaterUniqueSort(localPositions)
		if colorMatchCount > 0 {
			inv := 1 / float32(colorMatchCount)
			diffuseAverage = diffuseAverage.Scale(inv)
			specularAverage = specularAverage.Scale(inv)
			texcoordAverage = texcoordAverage.Scale(inv)
		}

		newDiffuseCount := r.DynamicU16(rangecoder.CDiffuseCount)
		newDiffuseColors := make([]quant.Color4, newDiffuseCount)
		for j := range newDiffuseColors {
			newDiffuseColors[j] = diffuseAverage
		}
		for j := uint32(0); j < newDiffuseCount; j++ {
			sign := r.DynamicU8(rangecoder.CDiffuseColorSign)
			red := r.Dynamic(rangecoder.CColorDiffR)
			green := r.Dynamic(rangecoder.CColorDiffG)
			blue := r.Dynamic(rangecoder.CColorDiffB)
			alpha := r.Dynamic(rangecoder.CColorDiffA)
			newDiffuseColors[j] = newDiffuseColors[j].Add(quant.DequantizeColor4(sign, red, green, blue, alpha, m.DiffuseIQ))
		}

		newSpecularCount := r.DynamicU16(rangecoder.CSpecularCount)
		newSpecularColors := make([]quant.Color4, newSpecularCount)
		for j := range newSpecularColors {
			newSpecularColors[j] = specularAverage
		}
		// Preserved verbatim from the reference decoder: this loop bound
		// reads newDiffuseCount entries even though it is populating the
		// specular array. A stream with newSpecularCount != newDiffuseCount
		// relies on this exact mismatch to stay in sync; deltas read past
		// newSpecularCount are consumed and discarded.
		for j := uint32(0); j < newDiffuseCount; j++ {
			sign := r.DynamicU8(rangecoder.CSpecularColorSign)
			red := r.Dynamic(rangecoder.CColorDiffR)
			green := r.Dynamic(rangecoder.CColorDiffG)
			blue := r.Dynamic(rangecoder.CColorDiffB)
			alpha := r.Dynamic(rangecoder.CColorDiffA)
			if j < newSpecularCount {
				newSpecularColors[j] = newSpecularColors[j].Add(quant.DequantizeColor4(sign, red, green, blue, alpha, m.SpecularIQ))
			}
		}

		newTexCoordCount := r.DynamicU16(rangecoder.CTexCoordCount)
		newTexCoords := make([]quant.TexCoord4, newTexCoordCount)
		for j := range newTexCoords {
			newTexCoords[j] = texcoordAverage
		}
		for j := uint32(0); j < newTexCoordCount; j++ {
			sign := r.DynamicU8(rangecoder.CTexCoordSign)
			u := r.Dynamic(rangecoder.CTexCDiffU)
			v := r.Dynamic(rangecoder.CTexCDiffV)
			s := r.Dynamic(rangecoder.CTexCDiffS)
			t := r.Dynamic(rangecoder.CTexCDiffT)
			newTexCoords[j] = newTexCoords[j].Add(quant.DequantizeTexCoord4(sign, u, v, s, t, m.TexCoordIQ))
		}

		newFaceCount := r.Dynamic(rangecoder.CFaceCnt)
		newFaces := make([]newFaceBuild, newFaceCount)
		for j := range newFaces {
			nf := &newFaces[j]
			nf.corners[0].Position = splitPosition
			nf.corners[1].Position = uint32(len(m.Positions))
			nf.shadingID = r.Dynamic(rangecoder.CShading)
			nf.ornt = uint8(r.DynamicU8(rangecoder.CFaceOrnt))
			thirdPosType := uint8(r.DynamicU8(rangecoder.CThrdPosType))
			if thirdPosType == 1 {
				localIdx := r.Dynamic(rangecoder.CLocal3rdPos)
				nf.corners[2].Position = localPositions[localIdx]
			} else {
				nf.corners[2].Position = r.Static(i)
			}
			localPositions = insertUnique(localPositions, nf.corners[2].Position)
		}

		m.indexer.AddPosition()
		splitFaces = append([]uint32(nil), splitFaces...)
		sortDescending(splitFaces)

		var splitDiffuseColors, splitSpecularColors []uint32
		var splitTexCoords [8][]uint32
		for _, fidx := range splitFaces {
			face := &m.Faces[fidx]
			corner := face.CornerAt(splitPosition)
			splitDiffuseColors = append(splitDiffuseColors, corner.Diffuse)
			splitSpecularColors = append(splitSpecularColors, corner.Specular)
			for l := uint32(0); l < m.ShadingDescs[face.ShadingID].TexLayerCount && l < 8; l++ {
				splitTexCoords[l] = append(splitTexCoords[l], corner.Texcoord[l])
			}
		}
		splitDiffuseColors = greaterUniqueSort(splitDiffuseColors)
		splitSpecularColors = greaterUniqueSort(splitSpecularColors)
		for j := 0; j < 8; j++ {
			splitTexCoords[j] = greaterUniqueSort(splitTexCoords[j])
		}

		var moveFaces, movedPositions, stayedPositions []uint32
		for _, fidx := range splitFaces {
			face := &m.Faces[fidx]
			context := rangecoder.CStayMove0
			for k := range newFaces {
				newThird := newFaces[k].corners[2].Position
				flag := CheckEdge(face, splitPosition, newThird)
				if flag > 0 {
					if newFaces[k].ornt == 1 {
						context = rangecoder.CStayMove1
					} else {
						context = rangecoder.CStayMove2
					}
					break
				} else if flag < 0 {
					if newFaces[k].ornt == 1 {
						context = rangecoder.CStayMove2
					} else {
						context = rangecoder.CStayMove1
					}
					break
				}
			}
			if context == rangecoder.CStayMove0 {
				for k := 0; k < 3; k++ {
					if containsUint32(movedPositions, face.Corners[k].Position) {
						context = rangecoder.CStayMove3
						break
					}
				}
			}
			if context == rangecoder.CStayMove0 {
				for k := 0; k < 3; k++ {
					if containsUint32(stayedPositions, face.Corners[k].Position) {
						context = rangecoder.CStayMove4
						break
					}
				}
			}
			stayMove := r.DynamicU8(context)
			if stayMove == 1 {
				moveFaces = append(moveFaces, fidx)
				for k := 0; k < 3; k++ {
					if face.Corners[k].Position != splitPosition {
						movedPositions = append(movedPositions, face.Corners[k].Position)
					}
				}
			} else {
				for k := 0; k < 3; k++ {
					if face.Corners[k].Position != splitPosition {
						stayedPositions = append(stayedPositions, face.Corners[k].Position)
					}
				}
			}
		}

		for _, fidx := range moveFaces {
			face := &m.Faces[fidx]
			corner := face.CornerAt(splitPosition)
			if m.ShadingDescs[face.ShadingID].Attributes&0x1 != 0 {
				keepChange := r.DynamicU8(rangecoder.CDiffuseKeepChange)
				if keepChange == 1 {
					changeType := r.DynamicU8(rangecoder.CDiffuseChangeType)
					var newIndex uint32
					switch changeType {
					case 1:
						newIndex = uint32(len(m.DiffuseColors)) + r.Dynamic(rangecoder.CDiffuseChangeIndexNew)
					case 2:
						localIndex := r.Dynamic(rangecoder.CDiffuseChangeIndexLocal)
						list := m.indexer.ListDiffuseColors(m.Faces, splitPosition)
						newIndex = list[localIndex]
					default:
						newIndex = r.Dynamic(rangecoder.CDiffuseChangeIndexGlobal)
					}
					corner.Diffuse = newIndex
				}
			}
			if m.ShadingDescs[face.ShadingID].Attributes&0x2 != 0 {
				keepChange := r.DynamicU8(rangecoder.CSpecularKeepChange)
				if keepChange == 1 {
					changeType := r.DynamicU8(rangecoder.CSpecularChangeType)
					var newIndex uint32
					switch changeType {
					case 1:
						newIndex = uint32(len(m.SpecularColors)) + r.Dynamic(rangecoder.CSpecularChangeIndexNew)
					case 2:
						localIndex := r.Dynamic(rangecoder.CSpecularChangeIndexLocal)
						list := m.indexer.ListSpecularColors(m.Faces, splitPosition)
						newIndex = list[localIndex]
					default:
						newIndex = r.Dynamic(rangecoder.CSpecularChangeIndexGlobal)
					}
					corner.Specular = newIndex
				}
			}
			for k := uint32(0); k < m.ShadingDescs[face.ShadingID].TexLayerCount && k < 8; k++ {
				keepChange := r.DynamicU8(rangecoder.CTCKeepChange)
				if keepChange == 1 {
					changeType := r.DynamicU8(rangecoder.CTCChangeType)
					var newIndex uint32
					switch changeType {
					case 1:
						newIndex = uint32(len(m.TexCoords)) + r.Dynamic(rangecoder.CTCChangeIndexNew)
					case 2:
						localIndex := r.Dynamic(rangecoder.CTCChangeIndexLocal)
						list := m.indexer.ListTexCoords(m.Faces, m.ShadingDescs, splitPosition, k)
						newIndex = list[localIndex]
					default:
						newIndex = r.Dynamic(rangecoder.CTCChangeIndexGlobal)
					}
					corner.Texcoord[k] = newIndex
				}
			}
			face.CornerAt(splitPosition).Position = uint32(len(m.Positions))
			m.indexer.MovePosition(fidx, splitPosition, uint32(len(m.Positions)))
		}

		m.DiffuseColors = append(m.DiffuseColors, newDiffuseColors...)
		m.SpecularColors = append(m.SpecularColors, newSpecularColors...)
		m.TexCoords = append(m.TexCoords, newTexCoords...)

		for j := range newFaces {
			nf := &newFaces[j]
			thirdFaces := m.indexer.ListFaces(nf.corners[2].Position)
			var thirdDiffuseColors, thirdSpecularColors []uint32
			var thirdTexCoords [8][]uint32
			for _, fidx := range thirdFaces {
				face := &m.Faces[fidx]
				corner := face.CornerAt(nf.corners[2].Position)
				thirdDiffuseColors = append(thirdDiffuseColors, corner.Diffuse)
				thirdSpecularColors = append(thirdSpecularColors, corner.Specular)
				for l := uint32(0); l < m.ShadingDescs[face.ShadingID].TexLayerCount && l < 8; l++ {
					thirdTexCoords[l] = append(thirdTexCoords[l], corner.Texcoord[l])
				}
			}
			thirdDiffuseColors = greaterUniqueSort(thirdDiffuseColors)
			thirdSpecularColors = greaterUniqueSort(thirdSpecularColors)
			for k := 0; k < 8; k++ {
				thirdTexCoords[k] = greaterUniqueSort(thirdTexCoords[k])
			}

			if m.ShadingDescs[nf.shadingID].Attributes&0x1 != 0 {
				dupFlag := uint8(r.DynamicU8(rangecoder.CColorDup))
				for k := 0; k < 3; k++ {
					if dupFlag&(1<<uint(k)) == 0 {
						indexType := r.DynamicU8(rangecoder.CColorIndexType)
						if indexType == 2 {
							localIdx := r.Dynamic(rangecoder.CColorIndexLocal)
							if k < 2 {
								nf.corners[k].Diffuse = splitDiffuseColors[localIdx]
							} else {
								nf.corners[k].Diffuse = thirdDiffuseColors[localIdx]
							}
						} else {
							nf.corners[k].Diffuse = r.Dynamic(rangecoder.CColorIndexGlobal)
						}
					} else {
						nf.corners[k].Diffuse = m.lastCorners[k].Diffuse
					}
					m.lastCorners[k].Diffuse = nf.corners[k].Diffuse
					if k == 0 {
						splitDiffuseColors = insertUnique(splitDiffuseColors, nf.corners[0].Diffuse)
					}
				}
			}
			if m.ShadingDescs[nf.shadingID].Attributes&0x2 != 0 {
				dupFlag := uint8(r.DynamicU8(rangecoder.CColorDup))
				for k := 0; k < 3; k++ {
					if dupFlag&(1<<uint(k)) == 0 {
						indexType := r.DynamicU8(rangecoder.CColorIndexType)
						if indexType == 2 {
							localIdx := r.Dynamic(rangecoder.CColorIndexLocal)
							if k < 2 {
								nf.corners[k].Specular = splitSpecularColors[localIdx]
							} else {
								nf.corners[k].Specular = thirdSpecularColors[localIdx]
							}
						} else {
							nf.corners[k].Specular = r.Dynamic(rangecoder.CColorIndexGlobal)
						}
					} else {
						nf.corners[k].Specular = m.lastCorners[k].Specular
					}
					m.lastCorners[k].Specular = nf.corners[k].Specular
					if k == 0 {
						splitSpecularColors = insertUnique(splitSpecularColors, nf.corners[0].Specular)
					}
				}
			}
			for k := uint32(0); k < m.ShadingDescs[nf.shadingID].TexLayerCount && k < 8; k++ {
				dupFlag := uint8(r.DynamicU8(rangecoder.CTexCDup))
				for l := 0; l < 3; l++ {
					if dupFlag&(1<<uint(l)) == 0 {
						indexType := r.DynamicU8(rangecoder.CTexCIndexType)
						if indexType == 2 {
							localIdx := r.Dynamic(rangecoder.CTextureIndexLocal)
							if l < 2 {
								nf.corners[l].Texcoord[k] = splitTexCoords[k][localIdx]
							} else {
								nf.corners[l].Texcoord[k] = thirdTexCoords[k][localIdx]
							}
						} else {
							nf.corners[l].Texcoord[k] = r.Dynamic(rangecoder.CTextureIndexGlobal)
						}
					} else {
						// Preserved verbatim from the reference decoder: the
						// cache slot read here is always texcoord[0], even
						// when k (the active layer) is nonzero.
						nf.corners[l].Texcoord[k] = m.lastCorners[l].Texcoord[0]
					}
					m.lastCorners[l].Texcoord[0] = nf.corners[l].Texcoord[k]
				}
				splitTexCoords[k] = insertUnique(splitTexCoords[k], nf.corners[0].Texcoord[k])
			}

			var face Face
			face.ShadingID = nf.shadingID
			if nf.ornt == 1 {
				face.Corners[0] = nf.corners[0]
				face.Corners[1] = nf.corners[1]
			} else {
				face.Corners[0] = nf.corners[1]
				face.Corners[1] = nf.corners[0]
			}
			face.Corners[2] = nf.corners[2]
			m.Faces = append(m.Faces, face)
			m.indexer.AddFace(uint32(len(m.Faces)-1), face)
		}

		var newPosition quant.Vector3
		if splitPosition < uint32(len(m.Positions)) {
			newPosition = m.Positions[splitPosition]
		}
		posSign := r.DynamicU8(rangecoder.CPosDiffSign)
		posX := r.Dynamic(rangecoder.CPosDiffX)
		posY := r.Dynamic(rangecoder.CPosDiffY)
		posZ := r.Dynamic(rangecoder.CPosDiffZ)
		newPosition = newPosition.Add(quant.DequantizeVector3(posSign, posX, posY, posZ, m.PositionIQ))
		m.Positions = append(m.Positions, newPosition)

		if m.Attributes&0x1 == 0 {
			neighbors := m.indexer.ListInclusiveNeighbors(m.Faces, uint32(len(m.Positions)-1))
			for _, neighbor := range neighbors {
				normalCount := r.Dynamic(rangecoder.CNormalCnt)
				clientFaces := m.indexer.ListFaces(neighbor)
				var faceNorms []quant.Vector3
				for _, fidx := range clientFaces {
					face := &m.Faces[fidx]
					ba := m.Positions[face.Corners[1].Position].Sub(m.Positions[face.Corners[0].Position])
					ca := m.Positions[face.Corners[2].Position].Sub(m.Positions[face.Corners[0].Position])
					n0 := cross(ba, ca).Normalize()
					faceNorms = append(faceNorms, n0)
				}
				var newNorms []quant.Vector3
				if len(faceNorms) > 0 {
					newNorms = append(newNorms, faceNorms[0])
				}
				for uint32(len(newNorms)) < normalCount && len(faceNorms) > 0 {
					farthestDist := float32(1.0)
					farthestIdx := 0
					for k, fn := range faceNorms {
						nearestDist := float32(-1.0)
						for _, nn := range newNorms {
							if d := fn.Dot(nn); d > nearestDist {
								nearestDist = d
							}
						}
						if nearestDist < farthestDist {
							farthestDist = nearestDist
							farthestIdx = k
						}
					}
					newNorms = append(newNorms, faceNorms[farthestIdx])
					faceNorms = append(faceNorms[:farthestIdx], faceNorms[farthestIdx+1:]...)
				}
				mergeWeight := make([]int, len(newNorms))
				for len(faceNorms) > 0 {
					last := faceNorms[len(faceNorms)-1]
					nearestDist := float32(-1.0)
					nearestIdx := 0
					for k, nn := range newNorms {
						if d := nn.Dot(last); d > nearestDist {
							nearestDist = d
							nearestIdx = k
						}
					}
					newNorms[nearestIdx] = quant.Slerp(newNorms[nearestIdx], last, 1.0/float32(mergeWeight[nearestIdx]+2))
					mergeWeight[nearestIdx]++
					faceNorms = faceNorms[:len(faceNorms)-1]
				}
				for k := uint32(0); k < normalCount && int(k) < len(newNorms); k++ {
					sign := r.DynamicU8(rangecoder.CDiffNormalSign)
					nx := r.Dynamic(rangecoder.CDiffNormalX)
					ny := r.Dynamic(rangecoder.CDiffNormalY)
					nz := r.Dynamic(rangecoder.CDiffNormalZ)
					delta := quant.DequantizeVector3(sign>>1, nx, ny, nz, m.NormalIQ)
					normalDiff := quant.QuaternionFromDelta(delta)
					newNorms[k] = quant.RefineNormal(normalDiff, newNorms[k])
				}
				for _, fidx := range clientFaces {
					normalIndex := uint32(len(m.Normals)) + r.Dynamic(rangecoder.CNormalIdx)
					m.Faces[fidx].CornerAt(neighbor).Normal = normalIndex
				}
				m.Normals = append(m.Normals, newNorms...)
			}
		}
	}

	m.CurRes = end
}

func cross(a, b quant.Vector3) quant.Vector3 {
	return quant.Vector3{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}

func containsUint32(list []uint32, v uint32) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func sortDescending(v []uint32) {
	for i := 1; i < len(v); i++ {
		for j := i; j > 0 && v[j-1] < v[j]; j-- {
			v[j-1], v[j] = v[j], v[j-1]
		}
	}
}
