package bufenc

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/gpu-layout/errors"
)

// WazeroBuffer exposes wazero linear memory as a buffer.
type WazeroBuffer struct {
	mem api.Memory
}

func NewWazeroBuffer(mem api.Memory) *WazeroBuffer {
	return &WazeroBuffer{mem: mem}
}

// Memory returns the underlying wazero memory.
func (m *WazeroBuffer) Memory() api.Memory { return m.mem }

func (m *WazeroBuffer) Size() uint32 { return m.mem.Size() }

func (m *WazeroBuffer) ReadU32(offset uint32) (uint32, error) {
	val, ok := m.mem.ReadUint32Le(offset)
	if !ok {
		return 0, errors.OutOfBounds(errors.PhaseDecode, nil, offset, m.mem.Size())
	}
	return val, nil
}

func (m *WazeroBuffer) WriteU32(offset uint32, value uint32) error {
	if !m.mem.WriteUint32Le(offset, value) {
		return errors.OutOfBounds(errors.PhaseEncode, nil, offset, m.mem.Size())
	}
	return nil
}

const wasmPageSize = 65536

// NewWasmBuffer instantiates a module that only defines and exports a memory
// of the given number of 64 KiB pages, and wraps that memory.
func NewWasmBuffer(ctx context.Context, r wazero.Runtime, pages uint32) (*WazeroBuffer, api.Module, error) {
	mod, err := r.Instantiate(ctx, memoryModule(pages))
	if err != nil {
		return nil, nil, errors.Load(fmt.Sprintf("instantiate %d-page memory module", pages), err)
	}
	return NewWazeroBuffer(mod.Memory()), mod, nil
}

// memoryModule encodes (module (memory (export "memory") pages)).
func memoryModule(pages uint32) []byte {
	limits := append([]byte{0x01, 0x00}, uleb128(pages)...)

	bin := []byte{0x00, 'a', 's', 'm', 0x01, 0x00, 0x00, 0x00}
	bin = append(bin, 0x05)
	bin = append(bin, uleb128(uint32(len(limits)))...)
	bin = append(bin, limits...)
	bin = append(bin, 0x07, 0x0a, 0x01, 0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00)
	return bin
}

func uleb128(v uint32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			return out
		}
	}
}
