package bufenc

import (
	"encoding/binary"

	"github.com/wippyai/gpu-layout/errors"
)

// ByteBuffer is a fixed-size in-memory buffer.
type ByteBuffer struct {
	data []byte
}

func NewByteBuffer(size uint32) *ByteBuffer {
	return &ByteBuffer{data: make([]byte, size)}
}

// WrapBytes uses data as the backing store without copying.
func WrapBytes(data []byte) *ByteBuffer {
	return &ByteBuffer{data: data}
}

func (b *ByteBuffer) Bytes() []byte { return b.data }

func (b *ByteBuffer) Size() uint32 { return uint32(len(b.data)) }

func (b *ByteBuffer) ReadU32(offset uint32) (uint32, error) {
	if err := b.check(errors.PhaseDecode, offset); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b.data[offset:]), nil
}

func (b *ByteBuffer) WriteU32(offset uint32, value uint32) error {
	if err := b.check(errors.PhaseEncode, offset); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(b.data[offset:], value)
	return nil
}

func (b *ByteBuffer) check(phase errors.Phase, offset uint32) error {
	if offset%4 != 0 {
		err := errors.InvalidInput(phase, nil, "offset %d is not word aligned", offset)
		err.Value = offset
		return err
	}
	if uint64(offset)+4 > uint64(len(b.data)) {
		return errors.OutOfBounds(phase, nil, offset, b.Size())
	}
	return nil
}
