// Package pson implements the PSON binary codec with a static string
// dictionary, as used by the bonk.io protocol for map and game-state
// payloads.
//
// PSON values are always little-endian regardless of the surrounding
// buffer. Decoded values map onto Go as follows: integers become int64,
// FLOAT becomes float32, DOUBLE becomes float64, objects become
// map[string]any, arrays become []any and BINARY becomes []byte.
package pson

import (
	"errors"
	"fmt"
	"math"

	"github.com/bonkgo-dev/bonkgo/pkg/bytebuf"
)

// Wire tags. Tag bytes at or below tagMax are the zigzag encoding of a
// small integer; everything above is a type marker.
const (
	tagMax     = 0xEF
	tagNull    = 0xF0
	tagTrue    = 0xF1
	tagFalse   = 0xF2
	tagEObject = 0xF3
	tagEArray  = 0xF4
	tagEString = 0xF5
	tagObject  = 0xF6
	tagArray   = 0xF7
	tagInteger = 0xF8
	tagLong    = 0xF9
	tagFloat   = 0xFA
	tagDouble  = 0xFB
	tagString  = 0xFC
	tagStrAdd  = 0xFD // unused by the protocol
	tagStrGet  = 0xFE
	tagBinary  = 0xFF
)

// Nesting deeper than this fails decoding rather than recursing without
// bound on hostile input.
const maxDepth = 64

var (
	ErrBadTag        = errors.New("pson: unknown tag")
	ErrBadDictIndex  = errors.New("pson: dictionary index out of range")
	ErrTooDeep       = errors.New("pson: value nested too deeply")
	ErrStringTooLong = errors.New("pson: string longer than 255 bytes")
)

// StaticPair encodes and decodes PSON values against a fixed dictionary.
// Unlike progressive PSON there is no STRING_ADD: both sides must share
// the same dictionary. The zero value uses no dictionary.
type StaticPair struct {
	index   map[string]int
	entries []any
}

// NewStaticPair builds a codec over the given dictionary entries. String
// entries are indexable by the encoder; when the same string appears more
// than once, the last index wins.
func NewStaticPair(entries []any) *StaticPair {
	p := &StaticPair{
		index:   make(map[string]int, len(entries)),
		entries: entries,
	}
	for i, e := range entries {
		if s, ok := e.(string); ok {
			p.index[s] = i
		}
	}
	return p
}

// NewRoomPair builds a codec over the game's shared dictionary.
func NewRoomPair() *StaticPair { return NewStaticPair(RoomKeys) }

// Encode appends the PSON encoding of v to b, which must be little-endian.
// With a nil buffer a fresh one is allocated.
func (p *StaticPair) Encode(v any, b *bytebuf.ByteBuffer) (*bytebuf.ByteBuffer, error) {
	if b == nil {
		b = bytebuf.New(bytebuf.LittleEndian)
	}
	if err := p.encodeValue(v, b); err != nil {
		return nil, err
	}
	return b, nil
}

// EncodeBytes returns the PSON encoding of v as a byte slice.
func (p *StaticPair) EncodeBytes(v any) ([]byte, error) {
	b, err := p.Encode(v, nil)
	if err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func (p *StaticPair) encodeValue(v any, b *bytebuf.ByteBuffer) error {
	switch v := v.(type) {
	case nil:
		b.WriteUint8(tagNull)
	case bool:
		if v {
			b.WriteUint8(tagTrue)
		} else {
			b.WriteUint8(tagFalse)
		}
	case string:
		return p.encodeString(v, b)
	case int:
		p.encodeInt(int64(v), b)
	case int8:
		p.encodeInt(int64(v), b)
	case int16:
		p.encodeInt(int64(v), b)
	case int32:
		p.encodeInt(int64(v), b)
	case int64:
		p.encodeInt(v, b)
	case uint8:
		p.encodeInt(int64(v), b)
	case uint16:
		p.encodeInt(int64(v), b)
	case uint32:
		p.encodeInt(int64(v), b)
	case float32:
		b.WriteUint8(tagFloat)
		b.WriteFloat32(v)
	case float64:
		// Values exactly representable in single precision keep the
		// short form the web client would have written.
		if float64(float32(v)) == v {
			b.WriteUint8(tagFloat)
			b.WriteFloat32(float32(v))
		} else {
			b.WriteUint8(tagDouble)
			b.WriteFloat64(v)
		}
	case []byte:
		b.WriteUint8(tagBinary)
		b.WriteVarint32(uint32(len(v)))
		b.WriteBytes(v)
	case []any:
		if len(v) == 0 {
			b.WriteUint8(tagEArray)
			return nil
		}
		b.WriteUint8(tagArray)
		b.WriteVarint32(uint32(len(v)))
		for _, e := range v {
			if err := p.encodeValue(e, b); err != nil {
				return err
			}
		}
	case map[string]any:
		return p.encodeObject(v, b)
	default:
		return fmt.Errorf("pson: cannot encode %T", v)
	}
	return nil
}

func (p *StaticPair) encodeInt(v int64, b *bytebuf.ByteBuffer) {
	if v >= math.MinInt32 && v <= math.MaxInt32 {
		zz := bytebuf.Zigzag32(int32(v))
		if zz < tagMax {
			b.WriteUint8(uint8(zz))
			return
		}
		b.WriteUint8(tagInteger)
		b.WriteVarint32(zz)
		return
	}
	b.WriteUint8(tagLong)
	b.WriteSvarint64(v)
}

// Strings carry an 8-bit length prefix on the wire, so anything past
// 255 bytes cannot be represented and fails the encode.
func (p *StaticPair) encodeString(s string, b *bytebuf.ByteBuffer) error {
	if s == "" {
		b.WriteUint8(tagEString)
		return nil
	}
	if i, ok := p.index[s]; ok {
		b.WriteUint8(tagStrGet)
		b.WriteUint8(uint8(i))
		return nil
	}
	if len(s) > math.MaxUint8 {
		return fmt.Errorf("%w: %d", ErrStringTooLong, len(s))
	}
	b.WriteUint8(tagString)
	b.WriteStr(s)
	return nil
}

func (p *StaticPair) encodeObject(m map[string]any, b *bytebuf.ByteBuffer) error {
	if len(m) == 0 {
		b.WriteUint8(tagEObject)
		return nil
	}
	b.WriteUint8(tagObject)
	b.WriteVarint32(uint32(len(m)))
	for k, v := range m {
		// Keys with null values are dropped, but still counted in the
		// length prefix. The web client does the same.
		if v == nil {
			continue
		}
		if i, ok := p.index[k]; ok {
			b.WriteUint8(tagStrGet)
			b.WriteVarint32(uint32(i))
		} else if len(k) > math.MaxUint8 {
			return fmt.Errorf("%w: key %d", ErrStringTooLong, len(k))
		} else {
			b.WriteUint8(tagString)
			b.WriteStr(k)
		}
		if err := p.encodeValue(v, b); err != nil {
			return err
		}
	}
	return nil
}

// Decode reads one PSON value from b, which must be little-endian.
func (p *StaticPair) Decode(b *bytebuf.ByteBuffer) (any, error) {
	return p.decodeValue(b, 0)
}

// DecodeBytes decodes one PSON value from raw bytes.
func (p *StaticPair) DecodeBytes(data []byte) (any, error) {
	return p.Decode(bytebuf.NewReader(data, bytebuf.LittleEndian))
}

func (p *StaticPair) decodeValue(b *bytebuf.ByteBuffer, depth int) (any, error) {
	if depth > maxDepth {
		return nil, ErrTooDeep
	}
	tag, err := b.ReadUint8()
	if err != nil {
		return nil, err
	}
	if tag <= tagMax {
		return int64(bytebuf.Unzigzag32(uint32(tag))), nil
	}
	switch tag {
	case tagNull:
		return nil, nil
	case tagTrue:
		return true, nil
	case tagFalse:
		return false, nil
	case tagEObject:
		return map[string]any{}, nil
	case tagEArray:
		return []any{}, nil
	case tagEString:
		return "", nil
	case tagObject:
		n, err := b.ReadVarint32()
		if err != nil {
			return nil, err
		}
		obj := make(map[string]any, n)
		for i := uint32(0); i < n; i++ {
			key, err := p.decodeValue(b, depth+1)
			if err != nil {
				return nil, err
			}
			val, err := p.decodeValue(b, depth+1)
			if err != nil {
				return nil, err
			}
			ks, ok := key.(string)
			if !ok {
				ks = fmt.Sprint(key)
			}
			obj[ks] = val
		}
		return obj, nil
	case tagArray:
		n, err := b.ReadVarint32()
		if err != nil {
			return nil, err
		}
		arr := make([]any, 0, n)
		for i := uint32(0); i < n; i++ {
			val, err := p.decodeValue(b, depth+1)
			if err != nil {
				return nil, err
			}
			arr = append(arr, val)
		}
		return arr, nil
	case tagInteger:
		v, err := b.ReadSvarint32()
		return int64(v), err
	case tagLong:
		return b.ReadSvarint64()
	case tagFloat:
		return b.ReadFloat32()
	case tagDouble:
		return b.ReadFloat64()
	case tagString:
		return b.ReadStr()
	case tagStrGet:
		i, err := b.ReadUint8()
		if err != nil {
			return nil, err
		}
		if int(i) >= len(p.entries) {
			return nil, fmt.Errorf("%w: %d", ErrBadDictIndex, i)
		}
		return p.entries[i], nil
	case tagBinary:
		n, err := b.ReadVarint32()
		if err != nil {
			return nil, err
		}
		raw, err := b.ReadBytes(int(n))
		if err != nil {
			return nil, err
		}
		out := make([]byte, len(raw))
		copy(out, raw)
		return out, nil
	}
	return nil, fmt.Errorf("%w: %#x", ErrBadTag, tag)
}
