package mesh

import (
	"github.com/u3dgo/u3d/internal/typedio"
	"github.com/u3dgo/u3d/quant"
)

// readVector3 reads three raw (uncompressed) floats, used for base-mesh
// positions/normals and skeleton displacement vectors.
func readVector3(r *typedio.Reader) quant.Vector3 {
	return quant.Vector3{X: r.ReadF32(), Y: r.ReadF32(), Z: r.ReadF32()}
}

// readVector2 reads two raw floats, used for skeleton joint center/scale.
func readVector2(r *typedio.Reader) quant.Vector2 {
	return quant.Vector2{X: r.ReadF32(), Y: r.ReadF32()}
}

// readQuaternion reads a raw (w,x,y,z) quaternion, used for skeleton bone
// orientation.
func readQuaternion(r *typedio.Reader) quant.Quaternion {
	return quant.Quaternion{W: r.ReadF32(), X: r.ReadF32(), Y: r.ReadF32(), Z: r.ReadF32()}
}

// readColor4 reads four raw floats (r,g,b,a), used for base-mesh colors.
func readColor4(r *typedio.Reader) quant.Color4 {
	return quant.Color4{R: r.ReadF32(), G: r.ReadF32(), B: r.ReadF32(), A: r.ReadF32()}
}

// readTexCoord4 reads four raw floats (u,v,s,t), used for base-mesh texture
// coordinates.
func readTexCoord4(r *typedio.Reader) quant.TexCoord4 {
	return quant.TexCoord4{U: r.ReadF32(), V: r.ReadF32(), S: r.ReadF32(), T: r.ReadF32()}
}
