package quant

// Color4 is an RGBA color in linear float components.
type Color4 struct {
	R, G, B, A float32
}

// Add returns c+o.
func (c Color4) Add(o Color4) Color4 {
	return Color4{c.R + o.R, c.G + o.G, c.B + o.B, c.A + o.A}
}

// Scale returns c*s.
func (c Color4) Scale(s float32) Color4 {
	return Color4{c.R * s, c.G * s, c.B * s, c.A * s}
}

// DequantizeColor4 reconstructs a Color4 delta from a 4-bit sign mask and
// four magnitudes, per Color4f::dequantize in original_source/types.hh.
func DequantizeColor4(signs uint32, r, g, b, a uint32, iq float32) Color4 {
	return Color4{
		R: InverseQuant(signs&1 != 0, r, iq),
		G: InverseQuant(signs&2 != 0, g, iq),
		B: InverseQuant(signs&4 != 0, b, iq),
		A: InverseQuant(signs&8 != 0, a, iq),
	}
}

// TexCoord4 is a 4-component (u,v,s,t) texture coordinate.
type TexCoord4 struct {
	U, V, S, T float32
}

// Add returns t+o.
func (t TexCoord4) Add(o TexCoord4) TexCoord4 {
	return TexCoord4{t.U + o.U, t.V + o.V, t.S + o.S, t.T + o.T}
}

// Scale returns t*s.
func (t TexCoord4) Scale(s float32) TexCoord4 {
	return TexCoord4{t.U * s, t.V * s, t.S * s, t.T * s}
}

// DequantizeTexCoord4 reconstructs a TexCoord4 delta from a 4-bit sign mask
// and four magnitudes, per TexCoord4f::dequantize in
// original_source/types.hh.
func DequantizeTexCoord4(signs uint32, u, v, s, t uint32, iq float32) TexCoord4 {
	return TexCoord4{
		U: InverseQuant(signs&1 != 0, u, iq),
		V: InverseQuant(signs&2 != 0, v, iq),
		S: InverseQuant(signs&4 != 0, s, iq),
		T: InverseQuant(signs&8 != 0, t, iq),
	}
}
