package quant

import "math"

// Quaternion is a Hamilton quaternion (w,x,y,z), used to refine predicted
// vertex normals (spec.md §4.4, §4.5 step 11).
type Quaternion struct {
	W, X, Y, Z float32
}

// QuaternionFromDelta builds the unit quaternion a dequantized
// sign-encoded normal delta represents: w = sqrt(max(0, 1-|v|^2)), xyz = v.
func QuaternionFromDelta(v Vector3) Quaternion {
	w2 := 1 - v.Dot(v)
	if w2 < 0 {
		w2 = 0
	}
	return Quaternion{W: float32(math.Sqrt(float64(w2))), X: v.X, Y: v.Y, Z: v.Z}
}

// Mul returns the Hamilton product q*o.
func (q Quaternion) Mul(o Quaternion) Quaternion {
	return Quaternion{
		W: q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
		X: q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		Y: q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		Z: q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
	}
}

// Vector extracts the xyz part of q, discarding w (Vector3f::operator=
// (Quaternion4f) in original_source/types.hh).
func (q Quaternion) Vector() Vector3 {
	return Vector3{q.X, q.Y, q.Z}
}

// RefineNormal applies a quaternion-encoded delta to a predicted normal:
// n' = q * n, where n is lifted to the pure quaternion (0, n.x, n.y, n.z)
// and the result's vector part is the refined normal.
func RefineNormal(delta Quaternion, predicted Vector3) Vector3 {
	n := Quaternion{0, predicted.X, predicted.Y, predicted.Z}
	return delta.Mul(n).Vector()
}

// Slerp spherically interpolates between two unit vectors a and b by
// fraction t, used to merge a face normal into a cluster representative
// (spec.md §4.5 step 11). Returns a unchanged when a and b are coincident
// (zero angle) or the angle's sine is exactly zero; antipodal inputs get no
// such fallback, since the float32 sine of the clamped angle is a tiny
// nonzero value and the weights are computed from it as-is.
func Slerp(a, b Vector3, t float32) Vector3 {
	d := a.Dot(b)
	if d > 1 {
		d = 1
	} else if d < -1 {
		d = -1
	}
	theta := float32(math.Acos(float64(d)))
	if theta == 0 {
		return a
	}
	sinTheta := float32(math.Sin(float64(theta)))
	if sinTheta == 0 {
		return a
	}
	wa := float32(math.Sin(float64((1-t)*theta))) / sinTheta
	wb := float32(math.Sin(float64(t*theta))) / sinTheta
	return a.Scale(wa).Add(b.Scale(wb))
}
