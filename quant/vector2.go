package quant

// Vector2 is a 2-component float vector, used for skeleton joint center and
// scale fields (original_source/clod_common.hh's Vector2f).
type Vector2 struct {
	X, Y float32
}
