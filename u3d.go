/*
Links:
	ECMA-363, 4th edition: Universal 3D File Format
*/

// Package u3d provides access to U3D (Universal 3D) container files: the
// block framer, scene-graph assembly, and progressive mesh/point-set/
// line-set reconstruction.
package u3d

import (
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/u3dgo/u3d/block"
	"github.com/u3dgo/u3d/internal/bufseekio"
	"github.com/u3dgo/u3d/internal/diag"
	"github.com/u3dgo/u3d/internal/typedio"
	"github.com/u3dgo/u3d/mesh"
	"github.com/u3dgo/u3d/prim"
	"github.com/u3dgo/u3d/scene"
	"github.com/u3dgo/u3d/u3derr"
)

// ModelResource is a decoded resolution-progressive geometry resource: a
// CLOD mesh, a point set, or a line set. Grounded on the ModelResource
// base class in original_source/src/u3d_model.hh.
type ModelResource interface {
	UpdateResolution(r *typedio.Reader)
}

// File is a fully decoded U3D container: every declared node and resource,
// name-indexed the way FileStructure keeps its std::map members in
// original_source/src/u3d_filestructure.hh.
type File struct {
	Registry *scene.Registry
	Models   map[string]ModelResource

	// ScalingFactor is the file header's optional units scaling factor
	// (profile_identifier&0x8), or 1 if absent.
	ScalingFactor float64
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithDiagWriter directs per-block diagnostic logging (skipped blocks,
// unsupported features, format notices) to w instead of discarding it.
func WithDiagWriter(w io.Writer) Option {
	return func(d *Decoder) { d.diagWriter = w }
}

// WithStrict promotes every unsupported-feature condition (a recognized but
// unimplemented modifier type, a shading modifier binding, an unrecognized
// block type) from a logged skip into a fatal error returned from Decode.
func WithStrict(strict bool) Option {
	return func(d *Decoder) { d.strict = strict }
}

// Decoder reads a single U3D container into a File.
type Decoder struct {
	br   *block.Reader
	diag *diag.Logger

	diagWriter io.Writer
	strict     bool
}

// NewDecoder wraps r. Options configure diagnostic output; see
// WithDiagWriter and WithStrict.
func NewDecoder(r io.Reader, opts ...Option) *Decoder {
	d := &Decoder{br: block.NewReader(r)}
	for _, opt := range opts {
		opt(d)
	}
	d.diag = diag.New(d.diagWriter)
	return d
}

// unsupported logs entity/blockType/reason as a skipped block and, in
// strict mode, also returns a *u3derr.Error of kind UnsupportedFeature so
// the caller aborts the decode instead of continuing past it.
func (d *Decoder) unsupported(entity string, blockType uint32, reason string) error {
	return d.unsupportedLogged(d.diag.Skip, entity, blockType, reason)
}

// unsupportedStop is unsupported's counterpart for block types that already
// halt the decode loop in non-strict mode (the reference decoder's bare
// `return`); it logs via Stop instead of Skip.
func (d *Decoder) unsupportedStop(entity string, blockType uint32, reason string) error {
	return d.unsupportedLogged(d.diag.Stop, entity, blockType, reason)
}

func (d *Decoder) unsupportedLogged(log func(entity string, blockType uint32, reason string), entity string, blockType uint32, reason string) error {
	log(entity, blockType, reason)
	if d.strict {
		return u3derr.New(u3derr.UnsupportedFeature, d.br.Offset(), entity, blockType, reason)
	}
	return nil
}

// Open opens the named file and decodes it.
func Open(path string) (*File, error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "u3d: open")
	}
	defer r.Close()
	return NewDecoder(bufseekio.NewReadSeeker(r)).Decode()
}

// Decode reads every block of the container in turn, dispatching
// declaration and continuation blocks into the scene/mesh/prim packages.
// Grounded on FileStructure::FileStructure's block dispatch loop in
// original_source/src/u3d_filestructure.cc: an unrecognized block type
// stops the loop without signaling a decode error, matching the
// reference decoder's bare `return` from its constructor.
func (d *Decoder) Decode() (*File, error) {
	f := &File{
		Registry:      scene.NewRegistry(),
		Models:        map[string]ModelResource{},
		ScalingFactor: 1,
	}

	for {
		b, err := d.br.Next()
		if err == io.EOF {
			return f, nil
		}
		if err != nil {
			return f, err
		}
		stop, err := d.dispatch(f, b)
		if err != nil {
			return f, err
		}
		if stop {
			return f, nil
		}
	}
}

// dispatch applies one block to f. It returns true when decoding should
// stop (an unrecognized top-level block type), mirroring the reference
// decoder's early `return` rather than raising an error — unless strict
// mode is set, in which case an unsupported feature returns an error
// instead of merely stopping.
func (d *Decoder) dispatch(f *File, b *block.Block) (bool, error) {
	tr := b.NewTypedReader()

	switch b.Type {
	case block.TypeFileHeader:
		d.readFileHeader(f, tr)

	case block.TypeModifierChain:
		chainName := tr.ReadString()
		switch tr.ReadU32() {
		case 0:
			if err := d.readNodeModifierChain(f, tr, chainName); err != nil {
				return false, err
			}
		case 1:
			if err := d.readModelModifierChain(f, tr, chainName); err != nil {
				return false, err
			}
		case 2:
			// Texture modifier chains are skipped: texture image
			// decompression is out of scope (spec.md §1).
		}

	case block.TypePriorityUpdate:
		// Acknowledged, no decoder-visible effect.

	case block.TypeNewObjectType:
		if err := d.unsupportedStop("", b.Type, "new object type block not supported"); err != nil {
			return false, err
		}
		return true, nil

	case block.TypeLightResource:
		n := tr.ReadString()
		f.Registry.LightResources[n] = scene.ParseLightResource(tr)

	case block.TypeViewResource:
		n := tr.ReadString()
		f.Registry.ViewResources[n] = scene.ParseViewResource(tr)

	case block.TypeLitTextureShader, block.TypeMaterial, block.TypeTextureDeclaration,
		block.TypeTextureContinuation, block.TypeMotionDeclaration:
		// Shading/material/texture/motion bindings: rendering-side
		// concerns out of decoder scope (spec.md §1). The block framer
		// has already consumed the full padded body regardless.

	case block.TypeCLODBaseMesh:
		n := tr.ReadString()
		if m, ok := f.Models[n].(*mesh.Mesh); ok {
			m.CreateBaseMesh(tr, func(format string, args ...interface{}) { d.diag.Notice(format, args...) })
		} else {
			d.diag.Skip(n, b.Type, "base mesh continuation for undeclared CLOD mesh")
		}

	case block.TypeCLODProgressiveMesh, block.TypePointSetContinuation, block.TypeLineSetContinuation:
		n := tr.ReadString()
		if m, ok := f.Models[n]; ok {
			m.UpdateResolution(tr)
		}

	default:
		var err error
		if b.Type >= block.UserExtensionRangeLo && b.Type <= block.UserExtensionRangeHi {
			err = d.unsupportedStop("", b.Type, "new object block not supported")
		} else {
			err = d.unsupportedStop("", b.Type, "unknown block type")
		}
		if err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

func (d *Decoder) readFileHeader(f *File, tr *typedio.Reader) {
	tr.ReadU16() // major version
	tr.ReadU16() // minor version
	profile := tr.ReadU32()
	tr.ReadU32() // declaration size
	tr.ReadU64() // file size
	tr.ReadU32() // character encoding
	if profile&0x8 != 0 {
		f.ScalingFactor = tr.ReadF64()
	}
}

// readModifierCount reads the attribute-gated bounding-volume skip (a
// Vector3f+float or two Vector3fs depending on which bit is set) then
// aligns to the next word boundary and reads the chain's modifier count.
// Grounded on read_modifier_count in original_source/src/u3d_filestructure.cc.
func readModifierCount(tr *typedio.Reader) uint32 {
	attr := tr.ReadU32()
	switch {
	case attr&0x1 != 0:
		tr.ReadF32()
		tr.ReadF32()
		tr.ReadF32()
		tr.ReadF32()
	case attr&0x2 != 0:
		for i := 0; i < 6; i++ {
			tr.ReadF32()
		}
	}
	tr.AlignToWord()
	return tr.ReadU32()
}

// readNodeModifierChain parses a node modifier chain's sub-blocks (Group,
// Model, Light, View declarations, plus any trailing Shading modifier,
// which is recognized and skipped). Grounded on
// create_node_modifier_chain in original_source/src/u3d_filestructure.cc.
func (d *Decoder) readNodeModifierChain(f *File, tr *typedio.Reader, chainName string) error {
	count := readModifierCount(tr)
	for i := uint32(0); i < count; i++ {
		sb := block.OpenSubBlock(tr)
		tr.ReadString() // sub-block name, unused: the chain's own name is the registry key

		switch sb.Type {
		case block.TypeGroupNode:
			f.Registry.AddGroup(chainName, scene.ParseGroup(tr))
		case block.TypeModelNode:
			f.Registry.AddModel(chainName, scene.ParseModel(tr))
		case block.TypeLightNode:
			f.Registry.AddLight(chainName, scene.ParseLight(tr))
		case block.TypeViewNode:
			f.Registry.AddView(chainName, scene.ParseView(tr))
		case block.TypeShadingModifier:
			if err := d.unsupported(chainName, sb.Type, "shading modifier binding not modeled"); err != nil {
				sb.Close()
				return err
			}
		default:
			d.diag.Stop(chainName, sb.Type, "illegal modifier in a node modifier chain")
			sb.Close()
			return nil
		}
		sb.Close()
	}
	return nil
}

// readModelModifierChain parses a model modifier chain's sub-blocks (CLOD
// mesh / point set / line set declaration, plus any trailing Shading
// modifier or recognized-but-unimplemented geometry modifier). Grounded on
// create_model_modifier_chain in original_source/src/u3d_filestructure.cc.
func (d *Decoder) readModelModifierChain(f *File, tr *typedio.Reader, chainName string) error {
	count := readModifierCount(tr)
	for i := uint32(0); i < count; i++ {
		sb := block.OpenSubBlock(tr)
		tr.ReadString()

		switch sb.Type {
		case block.TypeCLODMeshDeclaration:
			f.Models[chainName] = mesh.New(tr)
		case block.TypePointSetDeclaration:
			f.Models[chainName] = prim.NewPointSet(tr)
		case block.TypeLineSetDeclaration:
			f.Models[chainName] = prim.NewLineSet(tr)
		case block.TypeSubdivisionModifier, block.TypeAnimationModifier,
			block.TypeBoneWeightModifier, block.TypeCLODModifier:
			if err := d.unsupported(chainName, sb.Type, "modifier type not implemented in the current version"); err != nil {
				sb.Close()
				return err
			}
		case block.TypeShadingModifier:
			if err := d.unsupported(chainName, sb.Type, "shading modifier binding not modeled"); err != nil {
				sb.Close()
				return err
			}
		default:
			d.diag.Stop(chainName, sb.Type, "illegal modifier in an instance modifier chain")
			sb.Close()
			return nil
		}
		sb.Close()
	}
	return nil
}
