package avatar

import (
	"encoding/json"
	"testing"

	"github.com/bonkgo-dev/bonkgo/pkg/bytebuf"
)

func writeLayer(b *bytebuf.ByteBuffer, l *Layer) {
	b.WriteUint8(10)
	b.WriteUint8(0)
	b.WriteInt16(0)
	b.WriteUint16(uint16(l.ID))
	b.WriteFloat32(l.Scale)
	b.WriteFloat32(l.Angle)
	b.WriteFloat32(l.X)
	b.WriteFloat32(l.Y)
	b.WriteBool(l.FlipX)
	b.WriteBool(l.FlipY)
	b.WriteInt32(l.Color)
}

func TestDecodeEmpty(t *testing.T) {
	a, err := Decode(bytebuf.NewReader(nil, bytebuf.BigEndian))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if a.BaseColor != DefaultBaseColor {
		t.Errorf("BaseColor = %#x, want %#x", a.BaseColor, DefaultBaseColor)
	}
	if len(a.Layers) != 0 {
		t.Errorf("Layers = %v, want empty", a.Layers)
	}
}

func TestDecodeDenseLayers(t *testing.T) {
	b := bytebuf.New(bytebuf.BigEndian)
	b.WriteBytes([]byte{0, 0, 0, 0})
	b.WriteInt16(2) // version
	b.WriteUint8(0)
	b.WriteUint8(5) // (5-1)/2 = 2 dense layers
	b.WriteUint8(1) // no sparse section
	writeLayer(b, &Layer{ID: 7, Scale: 1.5, Angle: 90, X: -3, Y: 4, FlipX: true, Color: 0xFF0000})
	writeLayer(b, &Layer{ID: 12, Scale: 0.5, FlipY: true, Color: 0x00FF00})
	b.WriteInt32(0x123456)

	a, err := Decode(bytebuf.NewReader(b.Bytes(), bytebuf.BigEndian))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if a.BaseColor != 0x123456 {
		t.Errorf("BaseColor = %#x, want 0x123456", a.BaseColor)
	}
	if len(a.Layers) != MaxLayers {
		t.Fatalf("len(Layers) = %d, want %d", len(a.Layers), MaxLayers)
	}
	if a.Layers[0] == nil || a.Layers[0].ID != 7 || !a.Layers[0].FlipX {
		t.Errorf("Layers[0] = %+v", a.Layers[0])
	}
	if a.Layers[1] == nil || a.Layers[1].ID != 12 || !a.Layers[1].FlipY {
		t.Errorf("Layers[1] = %+v", a.Layers[1])
	}
	if a.Layers[2] != nil {
		t.Errorf("Layers[2] = %+v, want nil", a.Layers[2])
	}
}

func TestDecodeSparseLayers(t *testing.T) {
	b := bytebuf.New(bytebuf.BigEndian)
	b.WriteBytes([]byte{0, 0, 0, 0})
	b.WriteInt16(2)
	b.WriteUint8(0)
	b.WriteUint8(1) // no dense layers
	// Marker 3 carries a one-digit slot, marker 5 a two-digit slot.
	b.WriteUint8(3)
	b.WriteUint8('4')
	writeLayer(b, &Layer{ID: 20})
	b.WriteUint8(5)
	b.WriteUint8('1')
	b.WriteUint8('2')
	writeLayer(b, &Layer{ID: 21})
	b.WriteUint8(1)
	b.WriteInt32(DefaultBaseColor)

	a, err := Decode(bytebuf.NewReader(b.Bytes(), bytebuf.BigEndian))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if a.Layers[4] == nil || a.Layers[4].ID != 20 {
		t.Errorf("Layers[4] = %+v", a.Layers[4])
	}
	if a.Layers[12] == nil || a.Layers[12].ID != 21 {
		t.Errorf("Layers[12] = %+v", a.Layers[12])
	}
}

func TestDecodeVersion1NoBaseColor(t *testing.T) {
	b := bytebuf.New(bytebuf.BigEndian)
	b.WriteBytes([]byte{0, 0, 0, 0})
	b.WriteInt16(1)
	b.WriteUint8(0)
	b.WriteUint8(1)
	b.WriteUint8(1)

	a, err := Decode(bytebuf.NewReader(b.Bytes(), bytebuf.BigEndian))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if a.BaseColor != DefaultBaseColor {
		t.Errorf("BaseColor = %#x, want default", a.BaseColor)
	}
}

func TestDecodeEmptySlotTag(t *testing.T) {
	b := bytebuf.New(bytebuf.BigEndian)
	b.WriteBytes([]byte{0, 0, 0, 0})
	b.WriteInt16(2)
	b.WriteUint8(0)
	b.WriteUint8(3) // one dense layer
	b.WriteUint8(1)
	b.WriteUint8(0) // tag != 10 decodes to an empty slot
	b.WriteInt32(DefaultBaseColor)

	a, err := Decode(bytebuf.NewReader(b.Bytes(), bytebuf.BigEndian))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if a.Layers[0] != nil {
		t.Errorf("Layers[0] = %+v, want nil", a.Layers[0])
	}
}

func TestDecodeLayerOptionalSkip(t *testing.T) {
	b := bytebuf.New(bytebuf.BigEndian)
	b.WriteBytes([]byte{0, 0, 0, 0})
	b.WriteInt16(2)
	b.WriteUint8(0)
	b.WriteUint8(3)
	b.WriteUint8(1)
	// Layer with the optional 7-tagged triple ahead of the body.
	b.WriteUint8(10)
	b.WriteUint8(7)
	b.WriteBytes([]byte{9, 9, 9})
	b.WriteInt16(0)
	b.WriteUint16(33)
	b.WriteFloat32(1)
	b.WriteFloat32(0)
	b.WriteFloat32(0)
	b.WriteFloat32(0)
	b.WriteBool(false)
	b.WriteBool(false)
	b.WriteInt32(0)
	b.WriteInt32(DefaultBaseColor)

	a, err := Decode(bytebuf.NewReader(b.Bytes(), bytebuf.BigEndian))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if a.Layers[0] == nil || a.Layers[0].ID != 33 {
		t.Errorf("Layers[0] = %+v, want id 33", a.Layers[0])
	}
}

func TestDecodeBadSlotIndex(t *testing.T) {
	b := bytebuf.New(bytebuf.BigEndian)
	b.WriteBytes([]byte{0, 0, 0, 0})
	b.WriteInt16(2)
	b.WriteUint8(0)
	b.WriteUint8(1)
	b.WriteUint8(5)
	b.WriteUint8('9')
	b.WriteUint8('9')

	if _, err := Decode(bytebuf.NewReader(b.Bytes(), bytebuf.BigEndian)); err == nil {
		t.Fatal("Decode accepted slot index 99")
	}
}

func TestDecodeTruncated(t *testing.T) {
	b := bytebuf.New(bytebuf.BigEndian)
	b.WriteBytes([]byte{0, 0, 0, 0})
	b.WriteInt16(2)

	if _, err := Decode(bytebuf.NewReader(b.Bytes(), bytebuf.BigEndian)); err == nil {
		t.Fatal("Decode accepted truncated buffer")
	}
}

func TestDecodeBase64(t *testing.T) {
	b := bytebuf.New(bytebuf.BigEndian)
	b.WriteBytes([]byte{0, 0, 0, 0})
	b.WriteInt16(2)
	b.WriteUint8(0)
	b.WriteUint8(3)
	b.WriteUint8(1)
	writeLayer(b, &Layer{ID: 5, Scale: 2})
	b.WriteInt32(0xABCDEF)

	s, err := bytebuf.EncodeBase64(b.Bytes(), bytebuf.Transform{URIEncoded: true})
	if err != nil {
		t.Fatalf("EncodeBase64: %v", err)
	}
	a, err := DecodeBase64(s)
	if err != nil {
		t.Fatalf("DecodeBase64: %v", err)
	}
	if a.Layers[0] == nil || a.Layers[0].ID != 5 {
		t.Errorf("Layers[0] = %+v, want id 5", a.Layers[0])
	}
	if a.BaseColor != 0xABCDEF {
		t.Errorf("BaseColor = %#x, want 0xabcdef", a.BaseColor)
	}
}

func TestJSONForm(t *testing.T) {
	a := &Avatar{
		BaseColor: 0x102030,
		Layers:    []*Layer{{ID: 1, Scale: 1, FlipX: true}, nil},
	}
	p, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got Avatar
	if err := json.Unmarshal(p, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.BaseColor != a.BaseColor {
		t.Errorf("BaseColor = %#x, want %#x", got.BaseColor, a.BaseColor)
	}
	if len(got.Layers) != 2 || got.Layers[0] == nil || !got.Layers[0].FlipX || got.Layers[1] != nil {
		t.Errorf("Layers = %+v", got.Layers)
	}
}
