package abi

import (
	"math"
	"reflect"
)

// WordSize is the width of every scalar slot in a packed layout.
const WordSize = 4

func SafeMulU32(a, b uint32) (uint32, bool) {
	if b != 0 && a > math.MaxUint32/b {
		return 0, false
	}
	return a * b, true
}

func SafeAddU32(a, b uint32) (uint32, bool) {
	if a > math.MaxUint32-b {
		return 0, false
	}
	return a + b, true
}

// TypeName returns "nil" for nil values, avoiding reflect.TypeOf(nil) panic.
func TypeName(value any) string {
	if value == nil {
		return "nil"
	}
	return reflect.TypeOf(value).String()
}

// Padding returns (-offset) mod align. Alignments here are multiples of the
// word size but not necessarily powers of two (a 3-lane vector aligns to 12),
// so this is modular rather than a mask.
func Padding(offset, align uint32) uint32 {
	if align == 0 {
		return 0
	}
	rem := offset % align
	if rem == 0 {
		return 0
	}
	return align - rem
}

// AlignTo rounds offset up to the next multiple of align. ok is false on
// uint32 overflow.
func AlignTo(offset, align uint32) (uint32, bool) {
	return SafeAddU32(offset, Padding(offset, align))
}

// Words returns ceil(size / WordSize).
func Words(size uint32) uint32 {
	return size/WordSize + min(size%WordSize, 1)
}
