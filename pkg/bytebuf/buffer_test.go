package bytebuf

import (
	"bytes"
	"io"
	"math"
	"testing"
)

func TestFixedWidthRoundTrip(t *testing.T) {
	for _, order := range []Order{BigEndian, LittleEndian} {
		b := New(order)
		b.WriteUint8(0xAB)
		b.WriteInt8(-12)
		b.WriteUint16(0xBEEF)
		b.WriteInt16(-31000)
		b.WriteUint32(0xDEADBEEF)
		b.WriteInt32(-2_000_000_000)
		b.WriteUint64(0x0123456789ABCDEF)
		b.WriteInt64(-9_000_000_000_000_000_000)
		b.WriteFloat32(3.5)
		b.WriteFloat64(-2.25)
		b.WriteBool(true)
		b.WriteBool(false)

		r := NewReader(b.Bytes(), order)
		if v, _ := r.ReadUint8(); v != 0xAB {
			t.Errorf("uint8 = %#x", v)
		}
		if v, _ := r.ReadInt8(); v != -12 {
			t.Errorf("int8 = %d", v)
		}
		if v, _ := r.ReadUint16(); v != 0xBEEF {
			t.Errorf("uint16 = %#x", v)
		}
		if v, _ := r.ReadInt16(); v != -31000 {
			t.Errorf("int16 = %d", v)
		}
		if v, _ := r.ReadUint32(); v != 0xDEADBEEF {
			t.Errorf("uint32 = %#x", v)
		}
		if v, _ := r.ReadInt32(); v != -2_000_000_000 {
			t.Errorf("int32 = %d", v)
		}
		if v, _ := r.ReadUint64(); v != 0x0123456789ABCDEF {
			t.Errorf("uint64 = %#x", v)
		}
		if v, _ := r.ReadInt64(); v != -9_000_000_000_000_000_000 {
			t.Errorf("int64 = %d", v)
		}
		if v, _ := r.ReadFloat32(); v != 3.5 {
			t.Errorf("float32 = %v", v)
		}
		if v, _ := r.ReadFloat64(); v != -2.25 {
			t.Errorf("float64 = %v", v)
		}
		if v, _ := r.ReadBool(); !v {
			t.Error("bool = false, want true")
		}
		if v, _ := r.ReadBool(); v {
			t.Error("bool = true, want false")
		}
		if !r.EOF() {
			t.Errorf("not at EOF, %d bytes remain", r.Remaining())
		}
	}
}

func TestByteOrderLayout(t *testing.T) {
	be := New(BigEndian)
	be.WriteUint32(0x01020304)
	if !bytes.Equal(be.Bytes(), []byte{1, 2, 3, 4}) {
		t.Errorf("big-endian layout = % x", be.Bytes())
	}

	le := New(LittleEndian)
	le.WriteUint32(0x01020304)
	if !bytes.Equal(le.Bytes(), []byte{4, 3, 2, 1}) {
		t.Errorf("little-endian layout = % x", le.Bytes())
	}
}

func TestVarint32(t *testing.T) {
	tests := []struct {
		v    uint32
		want []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7F}},
		{128, []byte{0x80, 0x01}},
		{300, []byte{0xAC, 0x02}},
		{16384, []byte{0x80, 0x80, 0x01}},
		{math.MaxUint32, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F}},
	}
	for _, tt := range tests {
		b := New(BigEndian)
		b.WriteVarint32(tt.v)
		if !bytes.Equal(b.Bytes(), tt.want) {
			t.Errorf("WriteVarint32(%d) = % x, want % x", tt.v, b.Bytes(), tt.want)
		}
		got, err := NewReader(tt.want, BigEndian).ReadVarint32()
		if err != nil {
			t.Fatalf("ReadVarint32(% x): %v", tt.want, err)
		}
		if got != tt.v {
			t.Errorf("ReadVarint32(% x) = %d, want %d", tt.want, got, tt.v)
		}
	}
}

func TestVarint64RoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, 127, 128, 1 << 20, 1 << 40, math.MaxUint64} {
		b := New(BigEndian)
		b.WriteVarint64(v)
		got, err := NewReader(b.Bytes(), BigEndian).ReadVarint64()
		if err != nil {
			t.Fatalf("ReadVarint64 after write of %d: %v", v, err)
		}
		if got != v {
			t.Errorf("varint64 round trip: got %d, want %d", got, v)
		}
	}
}

func TestVarintOverflow(t *testing.T) {
	long := bytes.Repeat([]byte{0x80}, 11)
	if _, err := NewReader(long[:6], BigEndian).ReadVarint32(); err != ErrVarintOverflow {
		t.Errorf("varint32 overflow error = %v", err)
	}
	if _, err := NewReader(long, BigEndian).ReadVarint64(); err != ErrVarintOverflow {
		t.Errorf("varint64 overflow error = %v", err)
	}
}

func TestZigzag(t *testing.T) {
	tests := []struct {
		v    int32
		want uint32
	}{
		{0, 0},
		{-1, 1},
		{1, 2},
		{-2, 3},
		{2, 4},
		{math.MaxInt32, math.MaxUint32 - 1},
		{math.MinInt32, math.MaxUint32},
	}
	for _, tt := range tests {
		if got := Zigzag32(tt.v); got != tt.want {
			t.Errorf("Zigzag32(%d) = %d, want %d", tt.v, got, tt.want)
		}
		if got := Unzigzag32(tt.want); got != tt.v {
			t.Errorf("Unzigzag32(%d) = %d, want %d", tt.want, got, tt.v)
		}
	}
	for _, v := range []int64{0, -1, 1, math.MinInt64, math.MaxInt64} {
		if got := Unzigzag64(Zigzag64(v)); got != v {
			t.Errorf("zigzag64 round trip of %d = %d", v, got)
		}
	}
}

func TestStrings(t *testing.T) {
	b := New(BigEndian)
	b.WriteStr("short")
	b.WriteUTF("longer string with ünïcode")
	b.WriteVStr("varint prefixed")

	r := NewReader(b.Bytes(), BigEndian)
	if got, _ := r.ReadStr(); got != "short" {
		t.Errorf("ReadStr = %q", got)
	}
	if got, _ := r.ReadUTF(); got != "longer string with ünïcode" {
		t.Errorf("ReadUTF = %q", got)
	}
	if got, _ := r.ReadVStr(); got != "varint prefixed" {
		t.Errorf("ReadVStr = %q", got)
	}
}

func TestMidBufferOverwrite(t *testing.T) {
	b := New(BigEndian)
	b.WriteUint32(0)
	b.WriteUint32(0xCAFEBABE)

	// Rewind and patch the first word without disturbing the second.
	patch := NewReader(b.Bytes(), BigEndian)
	patch.WriteUint32(0x11223344)
	if got, _ := patch.ReadUint32(); got != 0xCAFEBABE {
		t.Errorf("second word after patch = %#x", got)
	}
	if patch.Len() != 8 {
		t.Errorf("len after patch = %d, want 8", patch.Len())
	}
}

func TestShortReads(t *testing.T) {
	r := NewReader([]byte{0x01}, BigEndian)
	if _, err := r.ReadUint32(); err != io.ErrUnexpectedEOF {
		t.Errorf("short uint32 read error = %v", err)
	}
	r = NewReader([]byte{0x05, 'h', 'i'}, BigEndian)
	if _, err := r.ReadStr(); err != io.ErrUnexpectedEOF {
		t.Errorf("short string read error = %v", err)
	}
}
