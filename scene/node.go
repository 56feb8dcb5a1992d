// Package scene implements scene-graph assembly: declaration nodes (Group,
// View, Model, Light), their resources (LightResource, ViewResource), and
// the name-indexed registry used to resolve each node's world transform
// (spec.md §4.7). Grounded on original_source/src/u3d_scenegraph.hh and
// u3d_filestructure.cc/hh.
package scene

import (
	"github.com/u3dgo/u3d/internal/typedio"
	"github.com/u3dgo/u3d/quant"
)

// ParentLink names one of a node's parents plus the node's own transform
// relative to that parent.
type ParentLink struct {
	Name      string
	Transform quant.Matrix4
}

// Node is the common declaration shared by every scene graph entity: a set
// of named parents, each with the node's transform relative to it. A node
// with zero parents, or whose only parent is the empty-string World root,
// is a top-level node.
type Node struct {
	Parents []ParentLink
}

// parseNode reads a Node's parent list, shared verbatim by every node
// declaration block (spec.md §4.7). Grounded on Node::Node in
// original_source/src/u3d_scenegraph.hh.
func parseNode(r *typedio.Reader) Node {
	count := r.ReadU32()
	n := Node{Parents: make([]ParentLink, count)}
	for i := range n.Parents {
		n.Parents[i].Name = r.ReadString()
		n.Parents[i].Transform = readMatrix4(r)
	}
	return n
}

func readMatrix4(r *typedio.Reader) quant.Matrix4 {
	var m quant.Matrix4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			m[j][i] = r.ReadF32() // column-major on the wire
		}
	}
	return m
}

// Group is a plain grouping node with no attributes of its own (block type
// 0xFFFFFF21).
type Group struct {
	Node
}

// ParseGroup reads a Group declaration block.
func ParseGroup(r *typedio.Reader) *Group {
	return &Group{Node: parseNode(r)}
}

// Backdrop describes one view backdrop or overlay image. Rotation is
// declared by the format but never actually transmitted on the wire — the
// reference decoder reads blend/location/registration/scale and leaves
// rotation at its zero value, and this decoder matches that.
type Backdrop struct {
	TextureName          string
	Blend                float32
	Rotation             float32
	LocationX, LocationY float32
	RegX, RegY           int32
	ScaleX, ScaleY       float32
}

func readBackdrop(r *typedio.Reader) Backdrop {
	var b Backdrop
	b.TextureName = r.ReadString()
	b.Blend = r.ReadF32()
	b.LocationX = r.ReadF32()
	b.LocationY = r.ReadF32()
	b.RegX = r.ReadI32()
	b.RegY = r.ReadI32()
	b.ScaleX = r.ReadF32()
	b.ScaleY = r.ReadF32()
	return b
}

// View projection attribute bits (attributes & 0x6).
const (
	ProjectionThreePoint = 0x0
	ProjectionOrtho      = 0x2
	ProjectionOnePoint   = 0x4
	ProjectionTwoPoint   = 0x6
)

// View is a camera node (block type 0xFFFFFF24). Grounded on View::View in
// original_source/src/u3d_scenegraph.hh.
type View struct {
	Node
	ResourceName              string
	Attributes                uint32
	NearClipping, FarClipping float32

	// Populated according to Attributes&0x6: Projection for three-point
	// perspective, OrthoHeight for orthographic, ProjVector for one- or
	// two-point perspective (the latter two are flagged unsupported at
	// the scene-assembly layer, not rejected here).
	Projection  float32
	OrthoHeight float32
	ProjVector  quant.Vector3

	PortW, PortH, PortX, PortY float32

	Backdrops []Backdrop
	Overlays  []Backdrop
}

// ParseView reads a View declaration block.
func ParseView(r *typedio.Reader) *View {
	v := &View{Node: parseNode(r)}
	v.ResourceName = r.ReadString()
	v.Attributes = r.ReadU32()
	v.NearClipping = r.ReadF32()
	v.FarClipping = r.ReadF32()
	switch v.Attributes & 0x6 {
	case ProjectionThreePoint:
		v.Projection = r.ReadF32()
	case ProjectionOrtho:
		v.OrthoHeight = r.ReadF32()
	case ProjectionOnePoint, ProjectionTwoPoint:
		v.ProjVector = readVector3(r)
	}
	v.PortW = r.ReadF32()
	v.PortH = r.ReadF32()
	v.PortX = r.ReadF32()
	v.PortY = r.ReadF32()

	backdropCount := r.ReadU32()
	v.Backdrops = make([]Backdrop, backdropCount)
	for i := range v.Backdrops {
		v.Backdrops[i] = readBackdrop(r)
	}
	overlayCount := r.ReadU32()
	v.Overlays = make([]Backdrop, overlayCount)
	for i := range v.Overlays {
		v.Overlays[i] = readBackdrop(r)
	}
	return v
}

func readVector3(r *typedio.Reader) quant.Vector3 {
	return quant.Vector3{X: r.ReadF32(), Y: r.ReadF32(), Z: r.ReadF32()}
}

// Model visibility attribute bits.
const (
	FrontVisible = 0x1
	BackVisible  = 0x2
)

// Model is a node bound to a ModelResource (mesh, point set, or line set)
// by name (block type 0xFFFFFF22).
type Model struct {
	Node
	ResourceName string
	Visibility   uint32
}

// ParseModel reads a Model declaration block.
func ParseModel(r *typedio.Reader) *Model {
	m := &Model{Node: parseNode(r)}
	m.ResourceName = r.ReadString()
	m.Visibility = r.ReadU32()
	return m
}

// Light is a node bound to a LightResource by name (block type
// 0xFFFFFF23). An empty ResourceName marks a light placeholder that casts
// no light, matching the reference decoder's resource_name.empty() skip.
type Light struct {
	Node
	ResourceName string
}

// ParseLight reads a Light declaration block.
func ParseLight(r *typedio.Reader) *Light {
	l := &Light{Node: parseNode(r)}
	l.ResourceName = r.ReadString()
	return l
}
