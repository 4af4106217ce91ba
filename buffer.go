package gpulayout

// Buffer is a little-endian word-addressable byte buffer holding packed
// values. Offsets are byte offsets and must be 4-aligned.
type Buffer interface {
	ReadU32(offset uint32) (uint32, error)
	WriteU32(offset uint32, value uint32) error
}

// BufferSizer provides the current size of a buffer in bytes.
type BufferSizer interface {
	Size() uint32
}
