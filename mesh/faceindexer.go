package mesh

import "sort"

// FaceIndexer maps a position index to the descending-sorted list of face
// indices incident to it (spec.md §3, §9 "FaceIndexer"). Grounded on
// FaceIndexer in original_source/src/u3d_mesh.hh.
type FaceIndexer struct {
	positions [][]uint32
}

// AddPosition appends one new, empty incidence list (for a freshly appended
// position).
func (fi *FaceIndexer) AddPosition() {
	fi.positions = append(fi.positions, nil)
}

// AddPositions appends n new, empty incidence lists.
func (fi *FaceIndexer) AddPositions(n int) {
	for i := 0; i < n; i++ {
		fi.AddPosition()
	}
}

func insertDescending(list []uint32, v uint32) []uint32 {
	i := sort.Search(len(list), func(i int) bool { return list[i] <= v })
	if i < len(list) && list[i] == v {
		return list
	}
	list = append(list, 0)
	copy(list[i+1:], list[i:])
	list[i] = v
	return list
}

// AddFace registers face index into the incidence lists of its three corner
// positions, descending-sorted.
func (fi *FaceIndexer) AddFace(index uint32, face Face) {
	for i := 0; i < 3; i++ {
		p := face.Corners[i].Position
		fi.positions[p] = insertDescending(fi.positions[p], index)
	}
}

// ListFaces returns the incidence list for position p (nil if p is out of
// range, tolerated per spec.md's split-position edge case).
func (fi *FaceIndexer) ListFaces(p uint32) []uint32 {
	if int(p) >= len(fi.positions) {
		return nil
	}
	return fi.positions[p]
}

// ListInclusiveNeighbors returns the descending-sorted, duplicate-free union
// of every position referenced by any face incident to p (including p
// itself, since each incident face includes a corner at p).
func (fi *FaceIndexer) ListInclusiveNeighbors(faces []Face, p uint32) []uint32 {
	var neighbors []uint32
	for _, fidx := range fi.ListFaces(p) {
		for j := 0; j < 3; j++ {
			neighbors = append(neighbors, faces[fidx].Corners[j].Position)
		}
	}
	return greaterUniqueSort(neighbors)
}

// MovePosition relocates face's incidence entry from position to
// newPosition, used when a face's split_pos corner is retargeted to p_new.
func (fi *FaceIndexer) MovePosition(face, position, newPosition uint32) {
	list := fi.positions[position]
	out := list[:0]
	for _, f := range list {
		if f != face {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		out = nil
	}
	fi.positions[position] = out
	fi.positions[newPosition] = insertDescending(fi.positions[newPosition], face)
}

// ListDiffuseColors returns the descending-sorted, duplicate-free list of
// diffuse color indices currently used by faces incident to position p.
func (fi *FaceIndexer) ListDiffuseColors(faces []Face, p uint32) []uint32 {
	var ret []uint32
	for _, fidx := range fi.ListFaces(p) {
		c := faces[fidx].CornerAt(p)
		ret = append(ret, c.Diffuse)
	}
	return greaterUniqueSort(ret)
}

// ListSpecularColors returns the descending-sorted, duplicate-free list of
// specular color indices currently used by faces incident to position p.
func (fi *FaceIndexer) ListSpecularColors(faces []Face, p uint32) []uint32 {
	var ret []uint32
	for _, fidx := range fi.ListFaces(p) {
		c := faces[fidx].CornerAt(p)
		ret = append(ret, c.Specular)
	}
	return greaterUniqueSort(ret)
}

// ListTexCoords returns the descending-sorted, duplicate-free list of
// texture-coordinate indices for layer used by faces incident to position p
// whose shading id enables that many texture layers.
func (fi *FaceIndexer) ListTexCoords(faces []Face, descs []ShadingDesc, p uint32, layer uint32) []uint32 {
	var ret []uint32
	for _, fidx := range fi.ListFaces(p) {
		face := &faces[fidx]
		if descs[face.ShadingID].TexLayerCount > layer {
			c := face.CornerAt(p)
			ret = append(ret, c.Texcoord[layer])
		}
	}
	return greaterUniqueSort(ret)
}

// greaterUniqueSort sorts descending and removes duplicates, matching
// greater_unique_sort in original_source/clod_common.hh.
func greaterUniqueSort(v []uint32) []uint32 {
	if len(v) == 0 {
		return v
	}
	sort.Slice(v, func(i, j int) bool { return v[i] > v[j] })
	out := v[:1]
	for _, x := range v[1:] {
		if x != out[len(out)-1] {
			out = append(out, x)
		}
	}
	return out
}

// insertUnique inserts v into a descending-sorted, duplicate-free list if
// absent, matching insert_unique in original_source/clod_common.hh.
func insertUnique(list []uint32, v uint32) []uint32 {
	return insertDescending(list, v)
}

// CheckEdge reports the winding of the directed edge (pos1,pos2) within
// face: +1 if the edge runs pos1->pos2 in face's corner order, -1 if it runs
// pos2->pos1, 0 if face does not contain both positions as an edge.
// Grounded on FaceIndexer::check_edge in original_source/src/u3d_mesh.hh.
func CheckEdge(face *Face, pos1, pos2 uint32) int {
	c := face.Corners
	switch {
	case c[0].Position == pos1:
		switch {
		case c[1].Position == pos2:
			return +1
		case c[2].Position == pos2:
			return -1
		default:
			return 0
		}
	case c[1].Position == pos1:
		switch {
		case c[0].Position == pos2:
			return -1
		case c[2].Position == pos2:
			return +1
		default:
			return 0
		}
	case c[2].Position == pos1:
		switch {
		case c[0].Position == pos2:
			return +1
		case c[1].Position == pos2:
			return -1
		default:
			return 0
		}
	default:
		return 0
	}
}
