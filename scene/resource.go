package scene

import "github.com/u3dgo/u3d/internal/typedio"

// Light kind values (LightResource.Type).
const (
	LightAmbient     = 0x00
	LightDirectional = 0x01
	LightPoint       = 0x02
	LightSpot        = 0x03
)

// LightResource attribute bits.
const (
	LightEnabled  = 0x1
	LightSpecular = 0x2
	SpotDecay     = 0x4
)

// Color3 is an RGB color with no alpha channel, used by LightResource and
// ViewResource::Pass fog, which carry no transparency.
type Color3 struct {
	R, G, B float32
}

// LightResource describes one light's photometric parameters, bound to a
// Light node by name (block type 0xFFFFFF51). Grounded on
// LightResource::LightResource in original_source/src/u3d_scenegraph.hh.
type LightResource struct {
	Attributes uint32
	Type       uint8
	Color      Color3

	AttConstant, AttLinear, AttQuadratic float32
	SpotAngle, Intensity                float32
}

// ParseLightResource reads a LightResource declaration block.
func ParseLightResource(r *typedio.Reader) *LightResource {
	lr := &LightResource{}
	lr.Attributes = r.ReadU32()
	lr.Type = r.ReadU8()
	lr.Color = readColor3(r)
	r.ReadF32() // reserved
	lr.AttConstant = r.ReadF32()
	lr.AttLinear = r.ReadF32()
	lr.AttQuadratic = r.ReadF32()
	lr.SpotAngle = r.ReadF32()
	lr.Intensity = r.ReadF32()
	return lr
}

func readColor3(r *typedio.Reader) Color3 {
	return Color3{R: r.ReadF32(), G: r.ReadF32(), B: r.ReadF32()}
}

// ViewResource fog values: FogEnabled is a Pass.RenderAttributes bit;
// FogExponential and FogExponential2 are Pass.FogMode values.
const (
	FogEnabled     = 0x1
	FogExponential = 0x1
	FogExponential2 = 0x2
)

// Pass is one rendering pass of a ViewResource: the node the view renders
// from and that pass's fog parameters.
type Pass struct {
	RootNodeName      string
	RenderAttributes  uint32
	FogMode           uint32
	FogColor          Color3
	FogAlpha          float32
	FogNear, FogFar   float32
}

// ViewResource describes the render passes bound to a View node by name
// (block type 0xFFFFFF52). Grounded on ViewResource::ViewResource in
// original_source/src/u3d_scenegraph.hh.
type ViewResource struct {
	Passes []Pass
}

// ParseViewResource reads a ViewResource declaration block.
func ParseViewResource(r *typedio.Reader) *ViewResource {
	passCount := r.ReadU32()
	vr := &ViewResource{Passes: make([]Pass, passCount)}
	for i := range vr.Passes {
		p := &vr.Passes[i]
		p.RootNodeName = r.ReadString()
		p.RenderAttributes = r.ReadU32()
		p.FogMode = r.ReadU32()
		p.FogColor = readColor3(r)
		p.FogAlpha = r.ReadF32()
		p.FogNear = r.ReadF32()
		p.FogFar = r.ReadF32()
	}
	return vr
}
