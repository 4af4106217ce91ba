// Package emit renders packed declarations and buffer accessors as Metal
// Shading Language source.
//
// For every declaration, in order, the output has a reference alias, a
// packed struct, a whole-value reader and per-field readers. Enums also get
// a tag reader and one #define per variant, numbered from 1.
package emit

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/gpu-layout/internal/abi"
	"github.com/wippyai/gpu-layout/layout"
	"github.com/wippyai/gpu-layout/schema"
	"github.com/wippyai/gpu-layout/typetable"
)

// Banner is the first line of every generated file.
const Banner = "// Code generated by gpulayout. DO NOT EDIT."

// Emit renders every declaration in table. Nothing is returned unless all
// declarations lay out successfully.
func Emit(table *typetable.Table, calc *layout.Calculator) (string, error) {
	var sb strings.Builder

	sb.WriteString(Banner)
	sb.WriteString("\n\n")

	decls := table.Decls()
	for _, d := range decls {
		sb.WriteString(fmt.Sprintf("typedef uint %s;\n", refName(d.DeclName())))
	}

	for _, d := range decls {
		sb.WriteString("\n")
		switch d := d.(type) {
		case *schema.StructDef:
			info, err := calc.Struct(d.Name)
			if err != nil {
				return "", err
			}
			writeStruct(&sb, table, info)
		case *schema.EnumDef:
			info, err := calc.Enum(d.Name)
			if err != nil {
				return "", err
			}
			writeEnum(&sb, info)
		}
	}

	Logger().Debug("emitted declarations",
		zap.Int("types", len(decls)),
		zap.Int("bytes", sb.Len()))
	return sb.String(), nil
}

func writeStruct(sb *strings.Builder, table *typetable.Table, info *layout.StructInfo) {
	names := make([]string, len(info.Fields))
	for i, f := range info.Fields {
		names[i] = typeName(f.Type, table, []string{info.Name, f.Name})
	}

	sb.WriteString(fmt.Sprintf("struct %s {\n", packedName(info.Name)))

	var end uint32
	if info.Tagged {
		sb.WriteString("    uint tag;\n")
		end = abi.WordSize
	}
	pad := 0
	for i, f := range info.Fields {
		// An empty struct has no packed bytes; a member would take at least one.
		if f.Size == 0 {
			continue
		}
		if f.Offset > end {
			writePadding(sb, pad, (f.Offset-end)/abi.WordSize)
			pad++
		}
		sb.WriteString(fmt.Sprintf("    %s %s;\n", names[i], f.Name))
		end = f.Offset + f.Size
	}
	sb.WriteString("};\n\n")

	writeReader(sb, info.Name)

	for i, f := range info.Fields {
		if !schema.IsSmall(f.Type) {
			continue
		}
		ret := names[i]
		sb.WriteString(fmt.Sprintf("\ninline %s %s_%s(const device char *buf, %s ref) {\n",
			ret, info.Name, f.Name, refName(info.Name)))
		sb.WriteString(fmt.Sprintf("    return *((const device %s *)(buf + ref + %d));\n", ret, f.Offset))
		sb.WriteString("}\n")
	}
}

// writePadding fills the gap the layout rules leave before an aligned field
// so the declaration matches the computed offsets.
func writePadding(sb *strings.Builder, n int, words uint32) {
	if words == 1 {
		sb.WriteString(fmt.Sprintf("    uint _pad%d;\n", n))
		return
	}
	sb.WriteString(fmt.Sprintf("    uint _pad%d[%d];\n", n, words))
}

func writeEnum(sb *strings.Builder, info *layout.EnumInfo) {
	sb.WriteString(fmt.Sprintf("struct %s {\n", packedName(info.Name)))
	sb.WriteString("    uint tag;\n")
	if info.BodyWords > 0 {
		sb.WriteString(fmt.Sprintf("    uint body[%d];\n", info.BodyWords))
	}
	sb.WriteString("};\n\n")

	writeReader(sb, info.Name)

	sb.WriteString(fmt.Sprintf("\ninline uint %s_tag(const device char *buf, %s ref) {\n", info.Name, refName(info.Name)))
	sb.WriteString(fmt.Sprintf("    return ((const device %s *)(buf + ref))->tag;\n", packedName(info.Name)))
	sb.WriteString("}\n")

	if len(info.Variants) > 0 {
		sb.WriteString("\n")
	}
	for _, v := range info.Variants {
		sb.WriteString(fmt.Sprintf("#define %s_%s %d\n", info.Name, v.Name, v.Tag))
	}
}

func writeReader(sb *strings.Builder, name string) {
	sb.WriteString(fmt.Sprintf("inline %s %s_read(const device char *buf, %s ref) {\n",
		packedName(name), name, refName(name)))
	sb.WriteString(fmt.Sprintf("    return *((const device %s *)(buf + ref));\n", packedName(name)))
	sb.WriteString("}\n")
}
