// Package bufenc writes and reads Go values at the offsets the layout engine
// computes, for host code that fills buffers consumed by generated kernels.
//
// Buffers implement gpulayout.Buffer. ByteBuffer wraps a byte slice;
// WazeroBuffer wraps wazero linear memory so the same encoded scene can be
// handed to a WebAssembly module.
//
// # Value Mapping
//
//	i32            int32 (any integer or whole float64 in range)
//	f32            float32 (any number)
//	u32            uint32
//	u16, u8        unsigned integers up to 0xFFFF / 0xFF
//	u16x2          2 lanes as any slice or array, or a packed uint32
//	u8x4           4 lanes as any slice or array, or a packed uint32
//	[T; N]         slice or array of length N
//	inline struct  map[string]any
//	Ref<T>         uint32 byte offset
//
// Decoding returns the same shapes: vectors as []any, structs as
// map[string]any.
package bufenc
