package quant

import (
	"math"
	"testing"
)

const epsilon = 1e-5

func almostEqual(a, b float32) bool {
	return math.Abs(float64(a-b)) < epsilon
}

func TestInverseQuant(t *testing.T) {
	if got := InverseQuant(false, 10, 0.5); got != 5 {
		t.Errorf("InverseQuant(false,10,0.5) = %v, want 5", got)
	}
	if got := InverseQuant(true, 10, 0.5); got != -5 {
		t.Errorf("InverseQuant(true,10,0.5) = %v, want -5", got)
	}
	if got := InverseQuant(false, 0, 1.0); got != 0 {
		t.Errorf("InverseQuant(false,0,1.0) = %v, want 0", got)
	}
}

func TestDequantizeVector3SignBits(t *testing.T) {
	v := DequantizeVector3(0b101, 2, 3, 4, 1.0)
	want := Vector3{X: -2, Y: 3, Z: -4}
	if v != want {
		t.Errorf("DequantizeVector3 = %+v, want %+v", v, want)
	}
}

func TestDequantizeColor4SignBits(t *testing.T) {
	c := DequantizeColor4(0b1010, 1, 2, 3, 4, 2.0)
	want := Color4{R: 2, G: -4, B: 6, A: -8}
	if c != want {
		t.Errorf("DequantizeColor4 = %+v, want %+v", c, want)
	}
}

func TestDequantizeTexCoord4SignBits(t *testing.T) {
	tc := DequantizeTexCoord4(0b0101, 1, 2, 3, 4, 1.0)
	want := TexCoord4{U: -1, V: 2, S: -3, T: 4}
	if tc != want {
		t.Errorf("DequantizeTexCoord4 = %+v, want %+v", tc, want)
	}
}

func TestVector3NormalizeZeroStaysZero(t *testing.T) {
	v := Vector3{}.Normalize()
	if v != (Vector3{}) {
		t.Errorf("Normalize() of zero vector = %+v, want zero", v)
	}
}

func TestVector3NormalizeUnit(t *testing.T) {
	v := Vector3{X: 3, Y: 4, Z: 0}.Normalize()
	if !almostEqual(v.X, 0.6) || !almostEqual(v.Y, 0.8) || !almostEqual(v.Z, 0) {
		t.Errorf("Normalize({3,4,0}) = %+v, want {0.6,0.8,0}", v)
	}
	if !almostEqual(v.Size(), 1) {
		t.Errorf("Size() after Normalize = %v, want 1", v.Size())
	}
}

func TestVector3DotAddSub(t *testing.T) {
	a := Vector3{X: 1, Y: 2, Z: 3}
	b := Vector3{X: 4, Y: 5, Z: 6}
	if got := a.Dot(b); got != 32 {
		t.Errorf("Dot = %v, want 32", got)
	}
	if got := a.Add(b); got != (Vector3{5, 7, 9}) {
		t.Errorf("Add = %+v, want {5,7,9}", got)
	}
	if got := b.Sub(a); got != (Vector3{3, 3, 3}) {
		t.Errorf("Sub = %+v, want {3,3,3}", got)
	}
}

func TestMatrixIdentityIsMultiplicativeIdentity(t *testing.T) {
	m := translateMatrix(1, 2, 3)
	if got := Identity().Mul(m); got != m {
		t.Errorf("Identity().Mul(m) = %+v, want %+v", got, m)
	}
	if got := m.Mul(Identity()); got != m {
		t.Errorf("m.Mul(Identity()) = %+v, want %+v", got, m)
	}
}

func translateMatrix(x, y, z float32) Matrix4 {
	m := Identity()
	m[0][3] = x
	m[1][3] = y
	m[2][3] = z
	return m
}

func TestMatrixMulComposesTranslations(t *testing.T) {
	a := translateMatrix(1, 0, 0)
	b := translateMatrix(0, 2, 0)
	got := a.Mul(b)
	want := translateMatrix(1, 2, 0)
	if got != want {
		t.Errorf("a.Mul(b) = %+v, want %+v", got, want)
	}
}

func TestMatrixTransformPoint(t *testing.T) {
	m := translateMatrix(1, 2, 3)
	p := m.TransformPoint(Vector3{X: 1, Y: 1, Z: 1})
	want := Vector3{X: 2, Y: 3, Z: 4}
	if p != want {
		t.Errorf("TransformPoint = %+v, want %+v", p, want)
	}
}

func TestMatrixTransformDirectionIgnoresTranslation(t *testing.T) {
	m := translateMatrix(1, 2, 3)
	d := m.TransformDirection(Vector3{X: 1, Y: 1, Z: 1})
	want := Vector3{X: 1, Y: 1, Z: 1}
	if d != want {
		t.Errorf("TransformDirection = %+v, want %+v", d, want)
	}
}

func TestMatrixInverseOfTranslation(t *testing.T) {
	m := translateMatrix(1, 2, 3)
	inv, ok := m.Inverse()
	if !ok {
		t.Fatal("Inverse() reported singular for a translation matrix")
	}
	got := m.Mul(inv)
	id := Identity()
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if !almostEqual(got[i][j], id[i][j]) {
				t.Fatalf("m.Mul(inv)[%d][%d] = %v, want %v", i, j, got[i][j], id[i][j])
			}
		}
	}
}

func TestMatrixInverseOfSingularReportsFalse(t *testing.T) {
	var zero Matrix4
	if _, ok := zero.Inverse(); ok {
		t.Fatal("Inverse() of the zero matrix reported ok=true")
	}
}

func TestQuaternionFromDeltaIdentityRefinesToUnchanged(t *testing.T) {
	q := QuaternionFromDelta(Vector3{})
	if !almostEqual(q.W, 1) || q.X != 0 || q.Y != 0 || q.Z != 0 {
		t.Fatalf("QuaternionFromDelta(zero) = %+v, want identity", q)
	}
	predicted := Vector3{X: 0.1, Y: 0.2, Z: 0.3}
	refined := RefineNormal(q, predicted)
	if !almostEqual(refined.X, predicted.X) || !almostEqual(refined.Y, predicted.Y) || !almostEqual(refined.Z, predicted.Z) {
		t.Errorf("RefineNormal(identity, predicted) = %+v, want %+v", refined, predicted)
	}
}

func TestSlerpEndpoints(t *testing.T) {
	a := Vector3{X: 1, Y: 0, Z: 0}
	b := Vector3{X: 0, Y: 1, Z: 0}

	got0 := Slerp(a, b, 0)
	if !almostEqual(got0.X, a.X) || !almostEqual(got0.Y, a.Y) || !almostEqual(got0.Z, a.Z) {
		t.Errorf("Slerp(a,b,0) = %+v, want %+v", got0, a)
	}
	got1 := Slerp(a, b, 1)
	if !almostEqual(got1.X, b.X) || !almostEqual(got1.Y, b.Y) || !almostEqual(got1.Z, b.Z) {
		t.Errorf("Slerp(a,b,1) = %+v, want %+v", got1, b)
	}
}

func TestSlerpCoincidentReturnsInput(t *testing.T) {
	a := Vector3{X: 1, Y: 0, Z: 0}
	got := Slerp(a, a, 0.5)
	if got != a {
		t.Errorf("Slerp(a,a,0.5) = %+v, want %+v", got, a)
	}
}
