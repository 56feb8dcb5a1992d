package scene

import "github.com/u3dgo/u3d/quant"

// worldRootName is the empty-string node implicitly present in every U3D
// file as the root of the World, matching FileStructure's nodes[""]
// pre-registration in original_source/src/u3d_filestructure.cc.
const worldRootName = ""

// Registry collects every declared scene-graph node and resource by name
// and resolves world transforms (spec.md §4.7). Grounded on the
// std::map<std::string, T*> members of FileStructure in
// original_source/src/u3d_filestructure.hh.
type Registry struct {
	Nodes          map[string]Node
	Views          map[string]*View
	Models         map[string]*Model
	Lights         map[string]*Light
	LightResources map[string]*LightResource
	ViewResources  map[string]*ViewResource
}

// NewRegistry returns an empty registry with the implicit World root
// already present.
func NewRegistry() *Registry {
	return &Registry{
		Nodes:          map[string]Node{worldRootName: {}},
		Views:          make(map[string]*View),
		Models:         make(map[string]*Model),
		Lights:         make(map[string]*Light),
		LightResources: make(map[string]*LightResource),
		ViewResources:  make(map[string]*ViewResource),
	}
}

// AddGroup registers a plain Group node under name.
func (reg *Registry) AddGroup(name string, g *Group) { reg.Nodes[name] = g.Node }

// AddView registers a View node under name.
func (reg *Registry) AddView(name string, v *View) {
	reg.Nodes[name] = v.Node
	reg.Views[name] = v
}

// AddModel registers a Model node under name.
func (reg *Registry) AddModel(name string, m *Model) {
	reg.Nodes[name] = m.Node
	reg.Models[name] = m
}

// AddLight registers a Light node under name.
func (reg *Registry) AddLight(name string, l *Light) {
	reg.Nodes[name] = l.Node
	reg.Lights[name] = l
}

// GetWorldTransform resolves the transform from node to root by walking
// node's parent chain until it reaches root, left-composing each visited
// parent link's transform onto the accumulator. ok is false when no
// parent chain from node reaches root. Grounded on
// FileStructure::get_world_transform in
// original_source/src/u3d_filestructure.hh: node's parents are tried in
// declaration order and the first chain that reaches root wins.
func (reg *Registry) GetWorldTransform(name, root string) (quant.Matrix4, bool) {
	if name == root {
		return quant.Identity(), true
	}
	node, ok := reg.Nodes[name]
	if !ok {
		return quant.Matrix4{}, false
	}
	for _, p := range node.Parents {
		if mat, ok := reg.GetWorldTransform(p.Name, root); ok {
			return mat.Mul(p.Transform), true
		}
	}
	return quant.Matrix4{}, false
}

// ResolvedLight is a Light node placed in world space.
type ResolvedLight struct {
	Resource       *LightResource
	WorldTransform quant.Matrix4
}

// ResolvedModel is a Model node placed in a view's root-node-relative
// space.
type ResolvedModel struct {
	Node           *Model
	WorldTransform quant.Matrix4
}

// Scene is one assembled view: its own world transform plus every light
// and model reachable from the World root, models expressed relative to
// the view resource pass's declared root node. Grounded on
// FileStructure::create_scenegraph in
// original_source/src/u3d_filestructure.cc.
type Scene struct {
	View           *View
	ViewTransform  quant.Matrix4
	RootNodeName   string
	Lights         map[string]ResolvedLight
	Models         map[string]ResolvedModel
}

// CreateScene assembles the scene visible from viewName's passIndex'th
// render pass. ok is false if the view or its declared root node do not
// belong to the World. diag receives non-fatal notices about unsupported
// features encountered along the way (one/two-point projection, more than
// one render pass); it may be nil.
//
// Lights are resolved relative to the World root regardless of which
// view is being assembled; models are resolved relative to the pass's
// root node and then left-multiplied by that root node's own
// World-relative transform — the asymmetry present verbatim in
// create_scenegraph.
func (reg *Registry) CreateScene(viewName string, passIndex int, diag func(format string, args ...interface{})) (*Scene, bool) {
	if diag == nil {
		diag = func(string, ...interface{}) {}
	}
	view, ok := reg.Views[viewName]
	if !ok {
		return nil, false
	}
	rsc, ok := reg.ViewResources[view.ResourceName]
	if !ok || passIndex >= len(rsc.Passes) {
		return nil, false
	}
	if len(rsc.Passes) > 1 {
		diag("view resource %q declares %d render passes, multipass rendering not supported", view.ResourceName, len(rsc.Passes))
	}
	switch view.Attributes & 0x6 {
	case ProjectionOnePoint, ProjectionTwoPoint:
		diag("view %q uses an unsupported one/two-point projection mode", viewName)
	}
	rootNodeName := rsc.Passes[passIndex].RootNodeName

	rootNodeTransform, ok := reg.GetWorldTransform(rootNodeName, worldRootName)
	if !ok {
		return nil, false
	}
	viewTransform, ok := reg.GetWorldTransform(viewName, worldRootName)
	if !ok {
		return nil, false
	}

	s := &Scene{
		View:          view,
		ViewTransform: viewTransform,
		RootNodeName:  rootNodeName,
		Lights:        make(map[string]ResolvedLight),
		Models:        make(map[string]ResolvedModel),
	}

	for name, light := range reg.Lights {
		if light.ResourceName == "" {
			continue
		}
		wt, ok := reg.GetWorldTransform(name, worldRootName)
		if !ok {
			continue
		}
		lightRsc, ok := reg.LightResources[light.ResourceName]
		if !ok {
			continue
		}
		s.Lights[name] = ResolvedLight{Resource: lightRsc, WorldTransform: wt}
	}

	for name, model := range reg.Models {
		if model.ResourceName == "" {
			continue
		}
		wt, ok := reg.GetWorldTransform(name, rootNodeName)
		if !ok {
			continue
		}
		s.Models[name] = ResolvedModel{Node: model, WorldTransform: rootNodeTransform.Mul(wt)}
	}

	return s, true
}
