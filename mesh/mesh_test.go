package mesh

import (
	"reflect"
	"testing"

	"github.com/u3dgo/u3d/internal/typedio"
	"github.com/u3dgo/u3d/quant"
)

func faceWithPositions(p0, p1, p2 uint32) Face {
	var f Face
	f.Corners[0].Position = p0
	f.Corners[1].Position = p1
	f.Corners[2].Position = p2
	return f
}

func TestCornerAtPrefersHighestSlot(t *testing.T) {
	f := faceWithPositions(1, 2, 3)

	if got := f.CornerAt(3); got != &f.Corners[2] {
		t.Errorf("CornerAt(3) did not return Corners[2]")
	}
	if got := f.CornerAt(2); got != &f.Corners[1] {
		t.Errorf("CornerAt(2) did not return Corners[1]")
	}
	// Neither slot 2 nor slot 1 matches 1: falls through to the default.
	if got := f.CornerAt(1); got != &f.Corners[0] {
		t.Errorf("CornerAt(1) did not return Corners[0]")
	}
}

func TestCornerAtDegenerateFacePrefersHighestSlot(t *testing.T) {
	// A degenerate face repeating position 5 in every corner: CornerAt(5)
	// must still resolve to corner 2, the load-bearing preference order.
	f := faceWithPositions(5, 5, 5)
	if got := f.CornerAt(5); got != &f.Corners[2] {
		t.Errorf("CornerAt(5) on degenerate face did not return Corners[2]")
	}
}

func TestShadingDescAttributeBits(t *testing.T) {
	d := ShadingDesc{Attributes: 0b11}
	if !d.HasDiffuse() {
		t.Error("HasDiffuse() = false, want true")
	}
	if !d.HasSpecular() {
		t.Error("HasSpecular() = false, want true")
	}
	d2 := ShadingDesc{Attributes: 0}
	if d2.HasDiffuse() || d2.HasSpecular() {
		t.Error("zero-attribute ShadingDesc reports an attribute present")
	}
}

func TestBaseHasNormals(t *testing.T) {
	b := Base{Attributes: 0}
	if !b.HasNormals() {
		t.Error("HasNormals() = false for attribute bit 0 clear, want true")
	}
	b2 := Base{Attributes: 1}
	if b2.HasNormals() {
		t.Error("HasNormals() = true for attribute bit 0 set, want false")
	}
}

func TestFaceIndexerAddAndListFaces(t *testing.T) {
	var fi FaceIndexer
	fi.AddPositions(4)

	faces := []Face{
		faceWithPositions(0, 1, 2),
		faceWithPositions(1, 2, 3),
	}
	fi.AddFace(0, faces[0])
	fi.AddFace(1, faces[1])

	if got := fi.ListFaces(1); !reflect.DeepEqual(got, []uint32{1, 0}) {
		t.Errorf("ListFaces(1) = %v, want [1 0] (descending)", got)
	}
	if got := fi.ListFaces(3); !reflect.DeepEqual(got, []uint32{1}) {
		t.Errorf("ListFaces(3) = %v, want [1]", got)
	}
	if got := fi.ListFaces(9); got != nil {
		t.Errorf("ListFaces(9) (out of range) = %v, want nil", got)
	}
}

func TestFaceIndexerAddFaceIsIdempotentPerPosition(t *testing.T) {
	var fi FaceIndexer
	fi.AddPositions(2)
	// A degenerate face incident twice at position 0 must still only
	// register once in that position's incidence list.
	fi.AddFace(0, faceWithPositions(0, 0, 1))

	if got := fi.ListFaces(0); !reflect.DeepEqual(got, []uint32{0}) {
		t.Errorf("ListFaces(0) = %v, want [0]", got)
	}
}

func TestFaceIndexerMovePosition(t *testing.T) {
	var fi FaceIndexer
	fi.AddPositions(3)
	fi.AddFace(0, faceWithPositions(0, 1, 2))

	fi.MovePosition(0, 0, 2)
	if got := fi.ListFaces(0); got != nil {
		t.Errorf("ListFaces(0) after move = %v, want nil", got)
	}
	if got := fi.ListFaces(2); !reflect.DeepEqual(got, []uint32{0}) {
		t.Errorf("ListFaces(2) after move = %v, want [0]", got)
	}
}

func TestFaceIndexerListInclusiveNeighbors(t *testing.T) {
	var fi FaceIndexer
	fi.AddPositions(4)
	faces := []Face{faceWithPositions(0, 1, 2)}
	fi.AddFace(0, faces[0])

	got := fi.ListInclusiveNeighbors(faces, 0)
	want := []uint32{2, 1, 0}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ListInclusiveNeighbors(0) = %v, want %v", got, want)
	}
}

func TestCheckEdgeWindings(t *testing.T) {
	f := faceWithPositions(10, 20, 30)

	cases := []struct {
		p1, p2 uint32
		want   int
	}{
		{10, 20, +1},
		{20, 10, -1},
		{20, 30, +1},
		{30, 20, -1},
		{30, 10, +1},
		{10, 30, -1},
		{10, 99, 0},
	}
	for _, tc := range cases {
		if got := CheckEdge(&f, tc.p1, tc.p2); got != tc.want {
			t.Errorf("CheckEdge(%d,%d) = %d, want %d", tc.p1, tc.p2, got, tc.want)
		}
	}
}

// On an all-zero bitstream every raw field decodes to its zero value: with
// zero shading descriptors and zero bones, ParseDeclaration produces a Base
// with every count at zero and no panics walking the (empty) nested loops.
func TestParseDeclarationAllZeroInput(t *testing.T) {
	r := typedio.New(make([]byte, 4096))
	b := ParseDeclaration(r, true)

	if b.Attributes != 0 || b.FaceCount != 0 || b.PositionCount != 0 {
		t.Errorf("counts = (%d,%d,%d), want all zero", b.Attributes, b.FaceCount, b.PositionCount)
	}
	if len(b.ShadingDescs) != 0 {
		t.Errorf("len(ShadingDescs) = %d, want 0", len(b.ShadingDescs))
	}
	if len(b.Skeleton) != 0 {
		t.Errorf("len(Skeleton) = %d, want 0", len(b.Skeleton))
	}
	if b.MinRes != 0 || b.MaxRes != 0 {
		t.Errorf("MinRes/MaxRes = (%d,%d), want (0,0)", b.MinRes, b.MaxRes)
	}
}

func TestNewWrapsDeclarationAsMesh(t *testing.T) {
	r := typedio.New(make([]byte, 4096))
	m := New(r)
	if m == nil {
		t.Fatal("New() returned nil")
	}
	if len(m.Faces) != 0 {
		t.Errorf("len(Faces) = %d, want 0", len(m.Faces))
	}
}

// CreateBaseMesh on an all-zero continuation block: every count field
// (chain index, face/position/normal/diffuse/specular/texcoord counts) is
// read through the real arithmetic-coded path and decodes to zero, so
// MinRes==positionCount==0 and CurRes==0 both hold and the base mesh is
// installed (not skipped as a duplicate). This exercises CreateBaseMesh's
// actual decode loop end to end, not just its ParseDeclaration helper.
func TestCreateBaseMeshAllZeroInputInstallsEmptyBase(t *testing.T) {
	m := &Mesh{}
	r := typedio.New(make([]byte, 4096))
	var diagnostics []string
	m.CreateBaseMesh(r, func(format string, args ...interface{}) {
		diagnostics = append(diagnostics, format)
	})

	if len(diagnostics) != 0 {
		t.Errorf("diag() called = %v, want none (base mesh should install, not skip)", diagnostics)
	}
	if m.CurRes != m.MinRes {
		t.Errorf("CurRes = %d, want %d (== MinRes)", m.CurRes, m.MinRes)
	}
	if len(m.Positions) != 0 || len(m.Faces) != 0 {
		t.Errorf("Positions/Faces = (%d,%d), want (0,0)", len(m.Positions), len(m.Faces))
	}
}

// A base mesh already installed (CurRes > 0) must be left untouched by a
// second CreateBaseMesh call: the reference decoder treats this as a
// diagnostic, not a fatal error (base.go's doc comment).
func TestCreateBaseMeshSkipsWhenAlreadyInstalled(t *testing.T) {
	m := &Mesh{}
	m.CurRes = 1
	m.Positions = []quant.Vector3{{X: 1, Y: 2, Z: 3}}
	want := *m

	r := typedio.New(make([]byte, 4096))
	var diagCalled bool
	m.CreateBaseMesh(r, func(format string, args ...interface{}) { diagCalled = true })

	if !diagCalled {
		t.Error("diag() not called for an already-installed base mesh")
	}
	if !reflect.DeepEqual(*m, want) {
		t.Error("CreateBaseMesh mutated mesh state despite an already-installed base mesh")
	}
}

// UpdateResolution must leave the mesh untouched when the block's start
// resolution doesn't match CurRes (spec.md §8 property 15, out-of-order
// progressive update): on an all-zero continuation block, chain
// index/start/end all decode to zero, so a mesh preset to a nonzero CurRes
// never matches and the update is a no-op.
func TestUpdateResolutionOutOfOrderStartLeavesMeshUnchanged(t *testing.T) {
	m := &Mesh{}
	m.CurRes = 5
	m.Positions = []quant.Vector3{{X: 1, Y: 2, Z: 3}}
	m.Faces = []Face{faceWithPositions(0, 1, 2)}
	want := *m

	r := typedio.New(make([]byte, 4096))
	m.UpdateResolution(r)

	if !reflect.DeepEqual(*m, want) {
		t.Error("UpdateResolution mutated mesh state despite start(0) != CurRes(5)")
	}
}
