// Package layout computes packed sizes, alignments and field offsets for
// declarations in a type table.
//
// # Layout Rules
//
// Every scalar occupies one 4-byte word:
//   - Scalars and references: size 4, align 4
//   - [T; N]: size 4N, align 4N (no special case for three lanes)
//   - Structs: fields in order, each padded to its alignment; a tagged struct
//     starts at offset 4 and aligns to at least 4. An empty untagged struct
//     has size 0 and alignment 0, and alignment 0 inserts no padding.
//   - Enums: a tag word followed by the largest variant body, rounded up to
//     whole words. A leading inline payload starts at offset 0 because the
//     tagged struct carries its own tag slot; later fields follow without
//     padding.
//
// Inline enums have no alignment and are rejected as struct fields.
// Recursive inline references are rejected. All arithmetic is checked uint32.
//
// # Usage
//
//	calc := layout.NewCalculator(table)
//	info, err := calc.Struct("PietCircle")
//	// info.Size, info.Align, info.Fields[i].Offset
package layout
