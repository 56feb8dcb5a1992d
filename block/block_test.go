package block

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/u3dgo/u3d/internal/typedio"
)

func makeBlock(typ uint32, data, meta []byte) []byte {
	var buf bytes.Buffer
	var hdr [12]byte
	binary.LittleEndian.PutUint32(hdr[0:4], typ)
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(len(data)))
	binary.LittleEndian.PutUint32(hdr[8:12], uint32(len(meta)))
	buf.Write(hdr[:])
	buf.Write(data)
	for i := 0; i < int(paddedSize(uint32(len(data))))-len(data); i++ {
		buf.WriteByte(0)
	}
	buf.Write(meta)
	for i := 0; i < int(paddedSize(uint32(len(meta))))-len(meta); i++ {
		buf.WriteByte(0)
	}
	return buf.Bytes()
}

func TestReaderNextRoundTrip(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5}
	meta := []byte{9, 8, 7}
	raw := makeBlock(TypeFileHeader, data, meta)

	br := NewReader(bytes.NewReader(raw))
	b, err := br.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if b.Type != TypeFileHeader {
		t.Errorf("Type = %#x, want %#x", b.Type, TypeFileHeader)
	}
	if !bytes.Equal(b.Data, data) {
		t.Errorf("Data = %v, want %v", b.Data, data)
	}
	if !bytes.Equal(b.Metadata, meta) {
		t.Errorf("Metadata = %v, want %v", b.Metadata, meta)
	}
	if b.Offset != 0 {
		t.Errorf("Offset = %d, want 0", b.Offset)
	}

	if _, err := br.Next(); err != io.EOF {
		t.Fatalf("second Next() error = %v, want io.EOF", err)
	}
}

func TestReaderNextAdvancesOffsetPastPadding(t *testing.T) {
	raw := makeBlock(TypeModifierChain, []byte{1, 2, 3}, nil) // data padded 3->4
	br := NewReader(bytes.NewReader(append(raw, raw...)))

	first, err := br.Next()
	if err != nil {
		t.Fatalf("first Next() error = %v", err)
	}
	if first.Offset != 0 {
		t.Fatalf("first Offset = %d, want 0", first.Offset)
	}

	second, err := br.Next()
	if err != nil {
		t.Fatalf("second Next() error = %v", err)
	}
	if second.Offset != int64(len(raw)) {
		t.Fatalf("second Offset = %d, want %d", second.Offset, len(raw))
	}
}

func TestReaderNextEmptyInputIsEOF(t *testing.T) {
	br := NewReader(bytes.NewReader(nil))
	if _, err := br.Next(); err != io.EOF {
		t.Fatalf("Next() on empty input error = %v, want io.EOF", err)
	}
}

func TestReaderNextTruncatedHeaderErrors(t *testing.T) {
	br := NewReader(bytes.NewReader([]byte{1, 2, 3}))
	if _, err := br.Next(); err == nil || err == io.EOF {
		t.Fatalf("Next() on truncated header error = %v, want non-EOF error", err)
	}
}

func TestReaderNextTruncatedBodyErrors(t *testing.T) {
	var hdr [12]byte
	binary.LittleEndian.PutUint32(hdr[4:8], 100) // claims 100 bytes of data
	br := NewReader(bytes.NewReader(hdr[:]))
	if _, err := br.Next(); err == nil {
		t.Fatal("Next() on truncated body did not error")
	}
}

func TestSubBlockCloseSkipsToWordAlignedEnd(t *testing.T) {
	tr := typedio.New(make([]byte, 128))
	origin := tr.BitPosition()
	sb := &SubBlock{DataSize: 5, MetaSize: 3, origin: origin, tr: tr}
	sb.Close()

	// (5+3)/4 + (3+3)/4 = 2 + 1 = 3 words = 96 bits.
	want := origin + 3*32
	if got := tr.BitPosition(); got != want {
		t.Fatalf("BitPosition() after Close = %d, want %d", got, want)
	}
}

func TestSubBlockCloseNoPayloadIsNoOp(t *testing.T) {
	tr := typedio.New(make([]byte, 16))
	origin := tr.BitPosition()
	sb := &SubBlock{origin: origin, tr: tr}
	sb.Close()
	if got := tr.BitPosition(); got != origin {
		t.Fatalf("BitPosition() after Close with zero sizes = %d, want %d", got, origin)
	}
}

func TestOpenSubBlockCapturesOrigin(t *testing.T) {
	tr := typedio.New(make([]byte, 64))
	sb := OpenSubBlock(tr)
	if sb.origin != tr.BitPosition() {
		t.Fatalf("origin = %d, want current BitPosition() = %d", sb.origin, tr.BitPosition())
	}
	// All-zero input: the header fields all decode to their zero value.
	if sb.Type != 0 || sb.DataSize != 0 || sb.MetaSize != 0 {
		t.Fatalf("sub-block header = (%d,%d,%d), want (0,0,0)", sb.Type, sb.DataSize, sb.MetaSize)
	}
}
