// Package block implements the byte-level block framer over a U3D
// container: it reads (type, data, metadata) records and enforces the
// format's word (4-byte) alignment, mirroring the teacher's
// meta.NewBlock/meta.NewBlockHeader dispatch shape adapted to U3D's simpler
// three-u32 header.
package block

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/u3dgo/u3d/internal/typedio"
	"github.com/u3dgo/u3d/u3derr"
)

// Well-known top-level block type codes (spec.md §3, §6).
const (
	TypeFileHeader               uint32 = 0x00443355
	TypeModifierChain            uint32 = 0xFFFFFF14
	TypePriorityUpdate           uint32 = 0xFFFFFF15
	TypeNewObjectType            uint32 = 0xFFFFFF16
	TypeGroupNode                uint32 = 0xFFFFFF21
	TypeModelNode                uint32 = 0xFFFFFF22
	TypeLightNode                uint32 = 0xFFFFFF23
	TypeViewNode                 uint32 = 0xFFFFFF24
	TypeCLODMeshDeclaration      uint32 = 0xFFFFFF31
	TypeCLODBaseMesh             uint32 = 0xFFFFFF3B
	TypeCLODProgressiveMesh      uint32 = 0xFFFFFF3C
	TypePointSetDeclaration      uint32 = 0xFFFFFF36
	TypeLineSetDeclaration       uint32 = 0xFFFFFF37
	TypePointSetContinuation     uint32 = 0xFFFFFF3E
	TypeLineSetContinuation      uint32 = 0xFFFFFF3F
	TypeSubdivisionModifier      uint32 = 0xFFFFFF42
	TypeAnimationModifier        uint32 = 0xFFFFFF43
	TypeBoneWeightModifier       uint32 = 0xFFFFFF44
	TypeShadingModifier          uint32 = 0xFFFFFF45
	TypeCLODModifier             uint32 = 0xFFFFFF46
	TypeLightResource            uint32 = 0xFFFFFF51
	TypeViewResource             uint32 = 0xFFFFFF52
	TypeLitTextureShader         uint32 = 0xFFFFFF53
	TypeMaterial                 uint32 = 0xFFFFFF54
	TypeTextureDeclaration       uint32 = 0xFFFFFF55
	TypeMotionDeclaration        uint32 = 0xFFFFFF56
	TypeTextureContinuation      uint32 = 0xFFFFFF5C
)

// UserExtensionRangeLo and Hi bound the user-extension block type range
// (spec.md §3).
const (
	UserExtensionRangeLo uint32 = 0x00000100
	UserExtensionRangeHi uint32 = 0x00FFFFFF
)

// Block is one parsed (type, data, metadata) record.
type Block struct {
	Type     uint32
	Data     []byte
	Metadata []byte
	// Offset is the byte offset of this block's header in the container.
	Offset int64
}

// Reader frames a sequence of blocks out of an io.Reader. It never seeks: it
// consumes the padded body in full before returning, so the caller's bit
// cursor assumptions about "start of next block" always hold regardless of
// how much of Data/Metadata a higher layer actually read.
type Reader struct {
	r      io.Reader
	offset int64
}

// NewReader wraps r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Offset is the current byte offset into the container.
func (br *Reader) Offset() int64 { return br.offset }

func paddedSize(n uint32) uint32 { return (n + 3) &^ 3 }

// Next reads and returns the next block, or io.EOF at end of input.
func (br *Reader) Next() (*Block, error) {
	start := br.offset
	var hdr [12]byte
	if _, err := io.ReadFull(br.r, hdr[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, u3derr.Wrap(err, u3derr.Truncation, start, "", 0, "reading block header")
	}
	br.offset += 12

	typ := binary.LittleEndian.Uint32(hdr[0:4])
	dataSize := binary.LittleEndian.Uint32(hdr[4:8])
	metaSize := binary.LittleEndian.Uint32(hdr[8:12])

	dataPadded := paddedSize(dataSize)
	metaPadded := paddedSize(metaSize)

	body := make([]byte, int(dataPadded)+int(metaPadded))
	if _, err := io.ReadFull(br.r, body); err != nil {
		return nil, u3derr.Wrap(err, u3derr.Truncation, br.offset, "", typ, "reading block body")
	}
	br.offset += int64(len(body))

	return &Block{
		Type:     typ,
		Data:     body[:dataSize],
		Metadata: body[dataPadded : dataPadded+metaSize],
		Offset:   start,
	}, nil
}

// NewTypedReader wraps b.Data in a typedio.Reader for higher layers to
// consume via the arithmetic/static/raw typed read surface.
func (b *Block) NewTypedReader() *typedio.Reader {
	return typedio.New(b.Data)
}

// SubBlock is a nested, word-aligned block within an already-open outer
// block's bitstream, used by modifier chains (spec.md §4.7; grounded on
// BitStreamReader::SubBlock in original_source/bitstream.hpp, an RAII
// auto-skip-to-end wrapper reimplemented here as explicit Open/Close calls
// since Go has no destructors).
type SubBlock struct {
	Type               uint32
	DataSize, MetaSize uint32
	origin             int
	tr                 *typedio.Reader
}

// OpenSubBlock reads a nested sub-block header (type, data_size,
// metadata_size as three raw u32s) from tr.
func OpenSubBlock(tr *typedio.Reader) *SubBlock {
	typ := tr.ReadU32()
	dataSize := tr.ReadU32()
	metaSize := tr.ReadU32()
	return &SubBlock{Type: typ, DataSize: dataSize, MetaSize: metaSize, origin: tr.BitPosition(), tr: tr}
}

// Close skips tr to the end of this sub-block, regardless of how much of its
// body was actually consumed — the caller never trusts the remaining bit
// position (spec.md §4.1).
func (s *SubBlock) Close() {
	words := (s.DataSize+3)/4 + (s.MetaSize+3)/4
	s.tr.SeekBit(s.origin + int(words)*32)
}

// ErrFromIO wraps any non-nil io error (io.EOF included) as a u3derr
// Truncation with a stack trace attached, and returns nil for a nil error.
func ErrFromIO(err error, offset int64, entity string, blockType uint32) error {
	if err == nil {
		return nil
	}
	return errors.WithStack(u3derr.Wrap(err, u3derr.Truncation, offset, entity, blockType, "unexpected end of input"))
}
