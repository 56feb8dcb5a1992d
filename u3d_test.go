package u3d

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/u3dgo/u3d/block"
	"github.com/u3dgo/u3d/internal/typedio"
)

func appendBlock(buf *bytes.Buffer, typ uint32, data []byte) {
	var hdr [12]byte
	binary.LittleEndian.PutUint32(hdr[0:4], typ)
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(len(data)))
	binary.LittleEndian.PutUint32(hdr[8:12], 0)
	buf.Write(hdr[:])
	buf.Write(data)
	for i := 0; i < (4-len(data)%4)%4; i++ {
		buf.WriteByte(0)
	}
}

// On an all-zero body the file header's profile field decodes to zero, so
// the optional scaling-factor float is never read and File.ScalingFactor
// keeps its default of 1.
func TestDecodeFileHeaderDefaultsScalingFactor(t *testing.T) {
	var buf bytes.Buffer
	appendBlock(&buf, block.TypeFileHeader, make([]byte, 256))

	f, err := NewDecoder(bytes.NewReader(buf.Bytes())).Decode()
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if f.ScalingFactor != 1 {
		t.Errorf("ScalingFactor = %v, want 1", f.ScalingFactor)
	}
}

func TestDecodeEmptyInputReturnsEmptyFile(t *testing.T) {
	f, err := NewDecoder(bytes.NewReader(nil)).Decode()
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if f == nil || f.Registry == nil {
		t.Fatal("Decode() returned a nil File or Registry")
	}
	if len(f.Models) != 0 {
		t.Errorf("len(Models) = %d, want 0", len(f.Models))
	}
}

// An unrecognized top-level block type stops decoding without signaling an
// error, mirroring the reference decoder's bare early return.
func TestDecodeUnknownBlockTypeStopsWithoutError(t *testing.T) {
	var buf bytes.Buffer
	appendBlock(&buf, 0xDEADBEEF, make([]byte, 16))
	appendBlock(&buf, block.TypeLightResource, make([]byte, 256))

	f, err := NewDecoder(bytes.NewReader(buf.Bytes())).Decode()
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	// The light resource block after the unknown block must never have
	// been reached: the registry stays empty, proving the loop stopped
	// rather than merely skipping the unrecognized block.
	if len(f.Registry.LightResources) != 0 {
		t.Errorf("LightResources = %v, want empty: decoding did not stop at the unknown block", f.Registry.LightResources)
	}
}

func TestDecodeTruncatedHeaderErrors(t *testing.T) {
	_, err := NewDecoder(bytes.NewReader([]byte{1, 2, 3})).Decode()
	if err == nil || err == io.EOF {
		t.Fatalf("Decode() on truncated input error = %v, want non-EOF error", err)
	}
}

func TestDecodeStrictModePromotesUnsupportedBlockToError(t *testing.T) {
	var buf bytes.Buffer
	appendBlock(&buf, 0xDEADBEEF, make([]byte, 16))

	_, err := NewDecoder(bytes.NewReader(buf.Bytes()), WithStrict(true)).Decode()
	if err == nil {
		t.Fatal("Decode() with WithStrict(true) error = nil, want a non-nil unsupported-feature error")
	}
}

func TestReadModifierCountAllZeroInput(t *testing.T) {
	r := typedio.New(make([]byte, 4096))
	// All-zero input decodes attr to zero, so neither bounding-volume skip
	// branch runs; the word-aligned modifier count also decodes to zero.
	if got := readModifierCount(r); got != 0 {
		t.Errorf("readModifierCount() = %d, want 0", got)
	}
}
