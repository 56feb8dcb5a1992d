// Package typedio layers typed, escape-to-raw reads on top of the range
// coder: fixed-width integers, floats, length-prefixed strings, and
// "compressed primitive" reads on a dynamic or static context.
package typedio

import (
	"math"

	"github.com/u3dgo/u3d/internal/bitrev"
	"github.com/u3dgo/u3d/internal/rangecoder"
)

// Reader wraps a rangecoder.Decoder with byte- and string-granular typed
// reads, mirroring the reference decoder's BitStreamReader::read<T>() and
// ContextAdapter.
type Reader struct {
	dec *rangecoder.Decoder
}

// New wraps a fully-buffered block body.
func New(data []byte) *Reader {
	return &Reader{dec: rangecoder.New(data)}
}

// Reset reinitializes the range-coder state and every context histogram,
// leaving the bit cursor where it is. The decoder itself builds a fresh
// Reader per block (block.Block.NewTypedReader), which starts in this same
// reset state.
func (r *Reader) Reset() { r.dec.Reset() }

// BitPosition is the current absolute bit cursor.
func (r *Reader) BitPosition() int { return r.dec.BitPosition() }

// SeekBit repositions the absolute bit cursor.
func (r *Reader) SeekBit(pos int) { r.dec.SeekBit(pos) }

// AlignToWord rounds the bit cursor up to the next 32-bit boundary.
func (r *Reader) AlignToWord() { r.dec.AlignToWord() }

// ReadBit reads one raw bit, used by higher layers that need an
// unprocessed flag bit rather than a compressed primitive.
func (r *Reader) ReadBit() uint32 { return r.dec.ReadBit() }

// ReadBits reads n raw bits (n <= 32).
func (r *Reader) ReadBits(n int) uint32 { return r.dec.ReadBits(n) }

// rawByte decodes one byte via the static-256 pseudo-context and the
// bit-reversal table (spec.md §4.3, §9 "Bit-reversal table"). Symbol 0 is a
// reserved slot never produced by a well-formed encoder for a plain byte
// assembly; it is clamped defensively rather than underflowing the table
// index.
func (r *Reader) rawByte() byte {
	symbol := r.dec.ReadStaticSymbol(256)
	if symbol == 0 {
		symbol = 1
	}
	return bitrev.Table[symbol-1]
}

// ReadU8 reads one raw byte.
func (r *Reader) ReadU8() uint8 { return r.rawByte() }

// ReadU16 reads a little-endian raw uint16.
func (r *Reader) ReadU16() uint16 {
	b0 := r.rawByte()
	b1 := r.rawByte()
	return uint16(b0) | uint16(b1)<<8
}

// ReadU32 reads a little-endian raw uint32.
func (r *Reader) ReadU32() uint32 {
	var v uint32
	for i := uint(0); i < 4; i++ {
		v |= uint32(r.rawByte()) << (8 * i)
	}
	return v
}

// ReadU64 reads a little-endian raw uint64.
func (r *Reader) ReadU64() uint64 {
	var v uint64
	for i := uint(0); i < 8; i++ {
		v |= uint64(r.rawByte()) << (8 * i)
	}
	return v
}

// ReadI32 reads a little-endian raw int32.
func (r *Reader) ReadI32() int32 { return int32(r.ReadU32()) }

// ReadF32 reads a little-endian raw IEEE-754 float32.
func (r *Reader) ReadF32() float32 { return math.Float32frombits(r.ReadU32()) }

// ReadF64 reads a little-endian raw IEEE-754 float64.
func (r *Reader) ReadF64() float64 { return math.Float64frombits(r.ReadU64()) }

// ReadString reads a u16 length prefix followed by that many raw bytes.
func (r *Reader) ReadString() string {
	n := r.ReadU16()
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = r.rawByte()
	}
	return string(buf)
}

// Dynamic reads a compressed primitive on a dynamic (adaptive) context: a
// non-escape symbol directly encodes value+1; an escape (symbol 0) falls
// back to a raw uint32 and teaches the context that value so it compresses
// next time (spec.md §4.2 escape convention). This is the width
// ContextAdapter::read<uint32_t>() uses in the reference decoder; most
// contexts are this width, but a handful are declared over a narrower C++
// type and must escape to that many raw bytes instead — see DynamicU8 and
// DynamicU16.
func (r *Reader) Dynamic(ctx rangecoder.ContextID) uint32 {
	return r.dynamic(ctx, r.ReadU32)
}

// DynamicU8 is Dynamic for a context whose reference-decoder call site is
// ContextAdapter::read<uint8_t>() (e.g. cStayMove0..4, cFaceOrnt,
// cThrdPosType, the sign/keep-change/dup-flag/index-type contexts): the
// escape fallback reads one raw byte, not four, so later reads in the block
// stay bit-aligned with the encoder.
func (r *Reader) DynamicU8(ctx rangecoder.ContextID) uint32 {
	return r.dynamic(ctx, func() uint32 { return uint32(r.rawByte()) })
}

// DynamicU16 is Dynamic for a context whose reference-decoder call site is
// ContextAdapter::read<uint16_t>() (cDiffuseCount, cSpecularCount,
// cTexCoordCount): the escape fallback reads two raw bytes.
func (r *Reader) DynamicU16(ctx rangecoder.ContextID) uint32 {
	return r.dynamic(ctx, func() uint32 { return uint32(r.ReadU16()) })
}

func (r *Reader) dynamic(ctx rangecoder.ContextID, readRaw func() uint32) uint32 {
	symbol := r.dec.ReadDynamicSymbol(ctx)
	if symbol == 0 {
		v := readRaw()
		r.dec.AddSymbol(ctx, v+1)
		return v
	}
	return symbol - 1
}

// Static reads a compressed primitive on the static context n: an integer
// uniformly distributed in [0,n), with the same escape-to-raw fallback (no
// adaptive learning — static contexts carry no persistent state).
func (r *Reader) Static(n uint32) uint32 {
	symbol := r.dec.ReadStaticSymbol(n)
	if symbol == 0 {
		return r.ReadU32()
	}
	return symbol - 1
}
