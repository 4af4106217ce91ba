package emit

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wippyai/gpu-layout/schema"
	"github.com/wippyai/gpu-layout/typetable"
)

// scalarName maps a packed scalar to its Metal type. u16 and u8 are widened
// to a full word in the buffer.
func scalarName(k schema.ScalarKind) string {
	switch k {
	case schema.I32:
		return "int"
	case schema.F32:
		return "float"
	case schema.U16x2:
		return "ushort2"
	case schema.U8x4:
		return "uchar4"
	default:
		return "uint"
	}
}

// vectorName keeps every vector 4-byte aligned so that member placement is
// decided by the explicit padding alone. The builtin float2 and float4 align
// to their size, which would round sizeof up past the packed size.
func vectorName(v schema.Vector) string {
	elem := scalarName(v.Elem)
	switch elem {
	case "int", "float", "uint":
		if v.Len >= 2 && v.Len <= 4 {
			return fmt.Sprintf("packed_%s%d", elem, v.Len)
		}
	}
	return fmt.Sprintf("array<%s, %d>", elem, v.Len)
}

func refName(name string) string    { return name + "Ref" }
func packedName(name string) string { return name + "Packed" }

// typeName renders t for a struct member or accessor return type. owner is
// the containing declaration, used in warnings.
func typeName(t schema.FieldType, table *typetable.Table, owner []string) string {
	switch t := t.(type) {
	case schema.Scalar:
		return scalarName(t.Kind)
	case schema.Vector:
		return vectorName(t)
	case schema.NamedRef:
		return packedName(t.Name)
	case schema.Reference:
		target, ok := t.Target.(schema.NamedRef)
		if !ok {
			return "uint"
		}
		if _, declared := table.Lookup(target.Name); declared {
			return refName(target.Name)
		}
		Logger().Warn("reference to undeclared type, emitting uint",
			zap.String("type", target.Name),
			zap.Strings("field", owner))
		return "uint"
	}
	return "uint"
}
