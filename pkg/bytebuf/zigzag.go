package bytebuf

// Zigzag32 maps a signed int32 onto an unsigned int so that values of small
// magnitude encode to short varints.
func Zigzag32(v int32) uint32 {
	return uint32((v << 1) ^ (v >> 31))
}

// Unzigzag32 is the inverse of Zigzag32.
func Unzigzag32(v uint32) int32 {
	return int32(v>>1) ^ -int32(v&1)
}

// Zigzag64 maps a signed int64 onto an unsigned int so that values of small
// magnitude encode to short varints.
func Zigzag64(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63))
}

// Unzigzag64 is the inverse of Zigzag64.
func Unzigzag64(v uint64) int64 {
	return int64(v>>1) ^ -int64(v&1)
}

// ReadSvarint32 reads a zigzag-encoded signed varint.
func (b *ByteBuffer) ReadSvarint32() (int32, error) {
	v, err := b.ReadVarint32()
	if err != nil {
		return 0, err
	}
	return Unzigzag32(v), nil
}

// ReadSvarint64 reads a zigzag-encoded signed varint.
func (b *ByteBuffer) ReadSvarint64() (int64, error) {
	v, err := b.ReadVarint64()
	if err != nil {
		return 0, err
	}
	return Unzigzag64(v), nil
}

// WriteSvarint32 writes a zigzag-encoded signed varint.
func (b *ByteBuffer) WriteSvarint32(v int32) {
	b.WriteVarint32(Zigzag32(v))
}

// WriteSvarint64 writes a zigzag-encoded signed varint.
func (b *ByteBuffer) WriteSvarint64(v int64) {
	b.WriteVarint64(Zigzag64(v))
}
