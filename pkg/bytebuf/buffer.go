// Package bytebuf implements the cursor-style binary buffer underlying the
// bonk.io wire formats.
//
// A ByteBuffer couples a growable byte slice with a read/write offset and a
// fixed byte order chosen at construction. The game's formats mix orders
// (the map format is big-endian, PSON is little-endian), so callers that
// need a different order wrap the same bytes in a new buffer instead of
// flipping a shared mode.
package bytebuf

import (
	"errors"
	"io"
	"math"
)

// Byte order of a buffer, fixed at construction.
type Order int

const (
	BigEndian Order = iota
	LittleEndian
)

// Varint limits. Decoding a varint longer than these is an error.
const (
	MaxVarint32Len = 5
	MaxVarint64Len = 10
)

var (
	ErrVarintOverflow = errors.New("bytebuf: varint overflow")
)

// ByteBuffer is a binary cursor over a growable byte slice.
//
// Reads return io.ErrUnexpectedEOF when they would pass the end of the
// buffer. Writes past the end grow the underlying slice by exactly the
// number of bytes needed.
type ByteBuffer struct {
	buf   []byte
	off   int
	order Order
}

// New creates an empty buffer with the given byte order.
func New(order Order) *ByteBuffer {
	return &ByteBuffer{order: order}
}

// NewReader creates a buffer positioned at the start of data.
// The buffer takes ownership of data.
func NewReader(data []byte, order Order) *ByteBuffer {
	return &ByteBuffer{buf: data, order: order}
}

// Bytes returns the full contents of the buffer.
func (b *ByteBuffer) Bytes() []byte { return b.buf }

// Len returns the total buffer length in bytes.
func (b *ByteBuffer) Len() int { return len(b.buf) }

// Offset returns the current cursor position.
func (b *ByteBuffer) Offset() int { return b.off }

// Remaining returns the number of unread bytes.
func (b *ByteBuffer) Remaining() int { return len(b.buf) - b.off }

// EOF reports whether the cursor has reached the end of the buffer.
func (b *ByteBuffer) EOF() bool { return b.off >= len(b.buf) }

// Order returns the buffer's byte order.
func (b *ByteBuffer) Order() Order { return b.order }

// ReadBytes reads exactly n bytes. The returned slice aliases the buffer.
func (b *ByteBuffer) ReadBytes(n int) ([]byte, error) {
	if n < 0 || b.off+n > len(b.buf) {
		return nil, io.ErrUnexpectedEOF
	}
	p := b.buf[b.off : b.off+n]
	b.off += n
	return p, nil
}

// ReadUint8 reads a single unsigned byte.
func (b *ByteBuffer) ReadUint8() (uint8, error) {
	if b.off >= len(b.buf) {
		return 0, io.ErrUnexpectedEOF
	}
	v := b.buf[b.off]
	b.off++
	return v, nil
}

// ReadInt8 reads a single signed byte.
func (b *ByteBuffer) ReadInt8() (int8, error) {
	v, err := b.ReadUint8()
	return int8(v), err
}

// ReadUint16 reads a uint16 in the buffer's byte order.
func (b *ByteBuffer) ReadUint16() (uint16, error) {
	p, err := b.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	if b.order == BigEndian {
		return uint16(p[0])<<8 | uint16(p[1]), nil
	}
	return uint16(p[1])<<8 | uint16(p[0]), nil
}

// ReadInt16 reads an int16 in the buffer's byte order.
func (b *ByteBuffer) ReadInt16() (int16, error) {
	v, err := b.ReadUint16()
	return int16(v), err
}

// ReadUint32 reads a uint32 in the buffer's byte order.
func (b *ByteBuffer) ReadUint32() (uint32, error) {
	p, err := b.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	if b.order == BigEndian {
		return uint32(p[0])<<24 | uint32(p[1])<<16 | uint32(p[2])<<8 | uint32(p[3]), nil
	}
	return uint32(p[3])<<24 | uint32(p[2])<<16 | uint32(p[1])<<8 | uint32(p[0]), nil
}

// ReadInt32 reads an int32 in the buffer's byte order.
func (b *ByteBuffer) ReadInt32() (int32, error) {
	v, err := b.ReadUint32()
	return int32(v), err
}

// ReadUint64 reads a uint64 in the buffer's byte order.
func (b *ByteBuffer) ReadUint64() (uint64, error) {
	p, err := b.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	if b.order == BigEndian {
		return uint64(p[0])<<56 | uint64(p[1])<<48 | uint64(p[2])<<40 | uint64(p[3])<<32 |
			uint64(p[4])<<24 | uint64(p[5])<<16 | uint64(p[6])<<8 | uint64(p[7]), nil
	}
	return uint64(p[7])<<56 | uint64(p[6])<<48 | uint64(p[5])<<40 | uint64(p[4])<<32 |
		uint64(p[3])<<24 | uint64(p[2])<<16 | uint64(p[1])<<8 | uint64(p[0]), nil
}

// ReadInt64 reads an int64 in the buffer's byte order.
func (b *ByteBuffer) ReadInt64() (int64, error) {
	v, err := b.ReadUint64()
	return int64(v), err
}

// ReadFloat32 reads an IEEE 754 float32 in the buffer's byte order.
func (b *ByteBuffer) ReadFloat32() (float32, error) {
	v, err := b.ReadUint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// ReadFloat64 reads an IEEE 754 float64 in the buffer's byte order.
func (b *ByteBuffer) ReadFloat64() (float64, error) {
	v, err := b.ReadUint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// ReadBool reads a single byte, any non-zero value being true.
func (b *ByteBuffer) ReadBool() (bool, error) {
	v, err := b.ReadUint8()
	return v != 0, err
}

// ReadVarint32 reads an unsigned LEB128 varint of at most 5 bytes.
func (b *ByteBuffer) ReadVarint32() (uint32, error) {
	var v uint32
	var shift uint
	for i := 0; ; i++ {
		if i >= MaxVarint32Len {
			return 0, ErrVarintOverflow
		}
		c, err := b.ReadUint8()
		if err != nil {
			return 0, err
		}
		v |= uint32(c&0x7F) << shift
		if c < 0x80 {
			return v, nil
		}
		shift += 7
	}
}

// ReadVarint64 reads an unsigned LEB128 varint of at most 10 bytes.
func (b *ByteBuffer) ReadVarint64() (uint64, error) {
	var v uint64
	var shift uint
	for i := 0; ; i++ {
		if i >= MaxVarint64Len {
			return 0, ErrVarintOverflow
		}
		c, err := b.ReadUint8()
		if err != nil {
			return 0, err
		}
		v |= uint64(c&0x7F) << shift
		if c < 0x80 {
			return v, nil
		}
		shift += 7
	}
}

// ReadStr reads a UTF-8 string prefixed by an 8-bit byte length.
func (b *ByteBuffer) ReadStr() (string, error) {
	n, err := b.ReadUint8()
	if err != nil {
		return "", err
	}
	p, err := b.ReadBytes(int(n))
	if err != nil {
		return "", err
	}
	return string(p), nil
}

// ReadUTF reads a UTF-8 string prefixed by a 16-bit byte length.
func (b *ByteBuffer) ReadUTF() (string, error) {
	n, err := b.ReadUint16()
	if err != nil {
		return "", err
	}
	p, err := b.ReadBytes(int(n))
	if err != nil {
		return "", err
	}
	return string(p), nil
}

// ReadVStr reads a UTF-8 string prefixed by a varint32 byte length.
func (b *ByteBuffer) ReadVStr() (string, error) {
	n, err := b.ReadVarint32()
	if err != nil {
		return "", err
	}
	p, err := b.ReadBytes(int(n))
	if err != nil {
		return "", err
	}
	return string(p), nil
}

// WriteBytes writes p at the cursor, growing the buffer by exactly the
// bytes needed if the write extends past the end.
func (b *ByteBuffer) WriteBytes(p []byte) {
	need := b.off + len(p) - len(b.buf)
	if need > 0 {
		b.buf = append(b.buf, make([]byte, need)...)
	}
	copy(b.buf[b.off:], p)
	b.off += len(p)
}

// WriteUint8 writes a single unsigned byte.
func (b *ByteBuffer) WriteUint8(v uint8) {
	b.WriteBytes([]byte{v})
}

// WriteInt8 writes a single signed byte.
func (b *ByteBuffer) WriteInt8(v int8) {
	b.WriteUint8(uint8(v))
}

// WriteUint16 writes a uint16 in the buffer's byte order.
func (b *ByteBuffer) WriteUint16(v uint16) {
	if b.order == BigEndian {
		b.WriteBytes([]byte{byte(v >> 8), byte(v)})
		return
	}
	b.WriteBytes([]byte{byte(v), byte(v >> 8)})
}

// WriteInt16 writes an int16 in the buffer's byte order.
func (b *ByteBuffer) WriteInt16(v int16) {
	b.WriteUint16(uint16(v))
}

// WriteUint32 writes a uint32 in the buffer's byte order.
func (b *ByteBuffer) WriteUint32(v uint32) {
	if b.order == BigEndian {
		b.WriteBytes([]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)})
		return
	}
	b.WriteBytes([]byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)})
}

// WriteInt32 writes an int32 in the buffer's byte order.
func (b *ByteBuffer) WriteInt32(v int32) {
	b.WriteUint32(uint32(v))
}

// WriteUint64 writes a uint64 in the buffer's byte order.
func (b *ByteBuffer) WriteUint64(v uint64) {
	if b.order == BigEndian {
		b.WriteBytes([]byte{
			byte(v >> 56), byte(v >> 48), byte(v >> 40), byte(v >> 32),
			byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v),
		})
		return
	}
	b.WriteBytes([]byte{
		byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24),
		byte(v >> 32), byte(v >> 40), byte(v >> 48), byte(v >> 56),
	})
}

// WriteInt64 writes an int64 in the buffer's byte order.
func (b *ByteBuffer) WriteInt64(v int64) {
	b.WriteUint64(uint64(v))
}

// WriteFloat32 writes an IEEE 754 float32 in the buffer's byte order.
func (b *ByteBuffer) WriteFloat32(v float32) {
	b.WriteUint32(math.Float32bits(v))
}

// WriteFloat64 writes an IEEE 754 float64 in the buffer's byte order.
func (b *ByteBuffer) WriteFloat64(v float64) {
	b.WriteUint64(math.Float64bits(v))
}

// WriteBool writes a boolean as a single 0x00/0x01 byte.
func (b *ByteBuffer) WriteBool(v bool) {
	if v {
		b.WriteUint8(1)
		return
	}
	b.WriteUint8(0)
}

// WriteVarint32 writes an unsigned LEB128 varint.
func (b *ByteBuffer) WriteVarint32(v uint32) {
	for v >= 0x80 {
		b.WriteUint8(byte(v) | 0x80)
		v >>= 7
	}
	b.WriteUint8(byte(v))
}

// WriteVarint64 writes an unsigned LEB128 varint.
func (b *ByteBuffer) WriteVarint64(v uint64) {
	for v >= 0x80 {
		b.WriteUint8(byte(v) | 0x80)
		v >>= 7
	}
	b.WriteUint8(byte(v))
}

// WriteStr writes a UTF-8 string prefixed by an 8-bit byte length.
// Strings longer than 255 bytes are truncated at the length prefix's range.
func (b *ByteBuffer) WriteStr(s string) {
	p := []byte(s)
	if len(p) > math.MaxUint8 {
		p = p[:math.MaxUint8]
	}
	b.WriteUint8(uint8(len(p)))
	b.WriteBytes(p)
}

// WriteUTF writes a UTF-8 string prefixed by a 16-bit byte length.
func (b *ByteBuffer) WriteUTF(s string) {
	p := []byte(s)
	if len(p) > math.MaxUint16 {
		p = p[:math.MaxUint16]
	}
	b.WriteUint16(uint16(len(p)))
	b.WriteBytes(p)
}

// WriteVStr writes a UTF-8 string prefixed by a varint32 byte length.
func (b *ByteBuffer) WriteVStr(s string) {
	b.WriteVarint32(uint32(len(s)))
	b.WriteBytes([]byte(s))
}
