// Package dsl parses the text schema syntax.
//
// A schema is a list of struct and enum declarations, optionally wrapped in a
// single module block:
//
//	mod scene {
//	    struct BBox { x0: u16, y0: u16, x1: u16, y1: u16 }
//	    struct Circle { rgba: u8x4, center: [f32; 2], radius: f32 }
//	    enum Item { Circle(Circle), Empty }
//	}
//
// Field types are a scalar keyword (i32 f32 u32 u16 u16x2 u8x4 u8), a
// fixed-length array of scalars `[T; N]`, a declared type name embedded
// inline, or any single-argument generic `W<T>`, which becomes a 4-byte
// buffer offset. Comments use // and /* */.
package dsl
