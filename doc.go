// Package gpulayout compiles declarative GPU buffer schemas into packed
// binary layouts and Metal Shading Language accessors.
//
// Kernels and host encoders share one description of every struct and tagged
// enum. The compiler computes sizes, alignments, field offsets and variant
// tags, then renders declarations that read those exact bytes on the GPU.
//
// # Architecture Overview
//
//	gpulayout/           Root package with the Buffer interface
//	├── schema/          Declaration model
//	│   ├── dsl/         Text schema parser
//	│   ├── yamlschema/  YAML schema decoder
//	│   └── witschema/   WIT record/variant import
//	├── typetable/       Name resolution and tagged-struct detection
//	├── layout/          Size, alignment and offset computation
//	├── emit/            Metal source rendering
//	├── compiler/        Pipeline from schema to text
//	├── bufenc/          Host-side encoder writing values at computed offsets
//	├── errors/          Structured error types
//	└── cmd/gpulayout/   Command line generator
//
// # Quick Start
//
// Compile a schema:
//
//	res, err := compiler.CompileSource("scene.schema", src)
//	if err != nil {
//		return err
//	}
//	os.WriteFile("scene.h", []byte(res.Text), 0o644)
//
// Encode a value the kernel will read:
//
//	enc := bufenc.NewEncoder(res.Table)
//	buf := bufenc.NewByteBuffer(64)
//	err = enc.EncodeEnum(buf, 0, "PietItem", "Circle", map[string]any{
//		"rgba_color": 0xff0000ff,
//		"center":     []float32{10, 20},
//		"radius":     4,
//	})
//
// # Layout Rules
//
// Every scalar occupies a 4-byte word. [T; N] aligns to 4N. Structs place
// fields at their alignment in order; a struct used as the leading payload of
// an enum variant is tagged and reserves offset 0 for the variant tag. Enums
// are a tag word followed by enough words for the largest variant. Variant
// tags start at 1.
package gpulayout
