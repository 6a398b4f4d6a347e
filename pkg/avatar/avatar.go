// Package avatar decodes the game's avatar blobs. An avatar is a base
// color plus up to 16 drawn layers; accounts carry one active avatar and
// five stored slots, each shipped as a percent-encoded base64 buffer.
package avatar

import (
	"errors"
	"fmt"

	"github.com/bonkgo-dev/bonkgo/pkg/bytebuf"
)

// DefaultBaseColor is the fill color of a freshly created avatar.
const DefaultBaseColor = 0x448AFF

// MaxLayers is the number of layer slots an avatar carries on the wire.
const MaxLayers = 16

var ErrBadLayer = errors.New("avatar: malformed layer")

// Layer is one drawn element of an avatar. A nil *Layer is an empty slot.
type Layer struct {
	ID    int     `json:"id"`
	Scale float32 `json:"scale"`
	Angle float32 `json:"angle"`
	X     float32 `json:"x"`
	Y     float32 `json:"y"`
	FlipX bool    `json:"flipX"`
	FlipY bool    `json:"flipY"`
	Color int32   `json:"color"`
}

// Avatar is a decoded avatar. Layers may contain nil entries for slots the
// blob left unset.
type Avatar struct {
	Layers    []*Layer `json:"layers"`
	BaseColor int32    `json:"bc"`
}

// New returns an empty avatar with the default base color.
func New() *Avatar {
	return &Avatar{BaseColor: DefaultBaseColor}
}

// DecodeBase64 decodes an avatar from its percent-encoded base64 form as
// found in login responses and profile payloads.
func DecodeBase64(s string) (*Avatar, error) {
	b, err := bytebuf.FromBase64(s, bytebuf.BigEndian, bytebuf.Transform{URIEncoded: true})
	if err != nil {
		return nil, err
	}
	return Decode(b)
}

// Decode reads an avatar from a big-endian buffer. An empty buffer decodes
// to the default avatar.
func Decode(b *bytebuf.ByteBuffer) (*Avatar, error) {
	a := New()
	if b.Len() == 0 {
		return a, nil
	}
	a.Layers = make([]*Layer, MaxLayers)
	if _, err := b.ReadBytes(4); err != nil {
		return nil, fmt.Errorf("avatar: header: %w", err)
	}
	version, err := b.ReadInt16()
	if err != nil {
		return nil, fmt.Errorf("avatar: version: %w", err)
	}
	if _, err := b.ReadUint8(); err != nil {
		return nil, fmt.Errorf("avatar: header: %w", err)
	}
	rawCount, err := b.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("avatar: layer count: %w", err)
	}
	layerCount := (int(rawCount) - 1) / 2

	// Sparse section: markers 3 and 5 carry a decimal slot index (one and
	// two ASCII digits) ahead of the layer, marker 1 ends the section.
	marker, err := b.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("avatar: marker: %w", err)
	}
	for marker != 1 {
		index := 0
		switch marker {
		case 3:
			d, err := b.ReadUint8()
			if err != nil {
				return nil, fmt.Errorf("avatar: slot index: %w", err)
			}
			index = int(d) - '0'
		case 5:
			d1, err := b.ReadUint8()
			if err != nil {
				return nil, fmt.Errorf("avatar: slot index: %w", err)
			}
			d2, err := b.ReadUint8()
			if err != nil {
				return nil, fmt.Errorf("avatar: slot index: %w", err)
			}
			index = (int(d1)-'0')*10 + int(d2) - '0'
		}
		if index < 0 || index >= MaxLayers {
			return nil, fmt.Errorf("%w: slot index %d", ErrBadLayer, index)
		}
		layer, err := decodeLayer(b)
		if err != nil {
			return nil, err
		}
		a.Layers[index] = layer
		if marker, err = b.ReadUint8(); err != nil {
			return nil, fmt.Errorf("avatar: marker: %w", err)
		}
	}

	// Dense section: the leading slots follow in order.
	for i := 0; i < layerCount; i++ {
		if i >= MaxLayers {
			return nil, fmt.Errorf("%w: layer count %d", ErrBadLayer, layerCount)
		}
		layer, err := decodeLayer(b)
		if err != nil {
			return nil, err
		}
		a.Layers[i] = layer
	}

	if version >= 2 {
		if a.BaseColor, err = b.ReadInt32(); err != nil {
			return nil, fmt.Errorf("avatar: base color: %w", err)
		}
	}
	return a, nil
}

// decodeLayer reads one layer record. A record not opening with tag 10 is
// an empty slot and decodes to nil.
func decodeLayer(b *bytebuf.ByteBuffer) (*Layer, error) {
	tag, err := b.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("avatar: layer tag: %w", err)
	}
	if tag != 10 {
		return nil, nil
	}
	opt, err := b.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("avatar: layer: %w", err)
	}
	if opt == 7 {
		if _, err := b.ReadBytes(3); err != nil {
			return nil, fmt.Errorf("avatar: layer: %w", err)
		}
	}
	if _, err := b.ReadInt16(); err != nil {
		return nil, fmt.Errorf("avatar: layer: %w", err)
	}
	l := &Layer{}
	id, err := b.ReadUint16()
	if err != nil {
		return nil, fmt.Errorf("avatar: layer id: %w", err)
	}
	l.ID = int(id)
	if l.Scale, err = b.ReadFloat32(); err != nil {
		return nil, fmt.Errorf("avatar: layer: %w", err)
	}
	if l.Angle, err = b.ReadFloat32(); err != nil {
		return nil, fmt.Errorf("avatar: layer: %w", err)
	}
	if l.X, err = b.ReadFloat32(); err != nil {
		return nil, fmt.Errorf("avatar: layer: %w", err)
	}
	if l.Y, err = b.ReadFloat32(); err != nil {
		return nil, fmt.Errorf("avatar: layer: %w", err)
	}
	if l.FlipX, err = b.ReadBool(); err != nil {
		return nil, fmt.Errorf("avatar: layer: %w", err)
	}
	if l.FlipY, err = b.ReadBool(); err != nil {
		return nil, fmt.Errorf("avatar: layer: %w", err)
	}
	if l.Color, err = b.ReadInt32(); err != nil {
		return nil, fmt.Errorf("avatar: layer: %w", err)
	}
	return l, nil
}
