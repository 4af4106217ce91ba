// Package witschema maps named WIT type definitions onto the schema model,
// so component interfaces can share record and variant shapes with GPU
// kernels.
//
// record becomes a struct, variant an enum with at most one payload per case,
// and enum an enum without payloads. Type names are converted to PascalCase,
// field names to snake_case. own<T> and borrow<T> become buffer references.
package witschema

import (
	"fmt"
	"io"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/gpu-layout/errors"
	"github.com/wippyai/gpu-layout/schema"
)

// DecodeJSON reads the JSON form of a WIT resolve and converts its type
// definitions.
func DecodeJSON(r io.Reader) (*schema.Schema, error) {
	res, err := wit.DecodeJSON(r)
	if err != nil {
		return nil, errors.ParseFailed("WIT JSON", err)
	}
	return FromTypeDefs(res.TypeDefs)
}

// FromTypeDefs converts every named record, variant and enum in defs, in
// order. Aliases, resources and anonymous definitions produce no
// declaration; aliases are followed where they are used.
func FromTypeDefs(defs []*wit.TypeDef) (*schema.Schema, error) {
	s := &schema.Schema{}
	for _, def := range defs {
		if def == nil || def.Name == nil {
			continue
		}
		name := toPascalCase(*def.Name)

		switch kind := def.Kind.(type) {
		case *wit.Record:
			sd := &schema.StructDef{Name: name}
			for _, f := range kind.Fields {
				fieldName := toSnakeCase(f.Name)
				ft, err := fieldType(f.Type, []string{name, fieldName})
				if err != nil {
					return nil, err
				}
				sd.Fields = append(sd.Fields, schema.Field{Name: fieldName, Type: ft})
			}
			s.Decls = append(s.Decls, sd)

		case *wit.Variant:
			ed := &schema.EnumDef{Name: name}
			for _, c := range kind.Cases {
				v := schema.Variant{Name: toPascalCase(c.Name)}
				if c.Type != nil {
					ft, err := fieldType(c.Type, []string{name, v.Name})
					if err != nil {
						return nil, err
					}
					v.Payload = []schema.FieldType{ft}
				}
				ed.Variants = append(ed.Variants, v)
			}
			s.Decls = append(s.Decls, ed)

		case *wit.Enum:
			ed := &schema.EnumDef{Name: name}
			for _, c := range kind.Cases {
				ed.Variants = append(ed.Variants, schema.Variant{Name: toPascalCase(c.Name)})
			}
			s.Decls = append(s.Decls, ed)
		}
	}
	return s, nil
}

func scalarKind(t wit.Type) (schema.ScalarKind, bool) {
	switch t.(type) {
	case wit.U32:
		return schema.U32, true
	case wit.S32:
		return schema.I32, true
	case wit.F32:
		return schema.F32, true
	case wit.U16:
		return schema.U16, true
	case wit.U8:
		return schema.U8, true
	}
	return 0, false
}

func fieldType(t wit.Type, path []string) (schema.FieldType, error) {
	if kind, ok := scalarKind(t); ok {
		return schema.Scalar{Kind: kind}, nil
	}

	def, ok := t.(*wit.TypeDef)
	if !ok {
		return nil, unsupported(t, path)
	}

	switch kind := def.Kind.(type) {
	case *wit.Record, *wit.Variant, *wit.Enum:
		if def.Name == nil {
			return nil, unsupported(kind, path)
		}
		return schema.NamedRef{Name: toPascalCase(*def.Name)}, nil
	case *wit.Tuple:
		return tupleType(kind, path)
	case *wit.Own:
		return handleType(kind.Type, path)
	case *wit.Borrow:
		return handleType(kind.Type, path)
	case wit.Type:
		return fieldType(kind, path)
	default:
		return nil, unsupported(kind, path)
	}
}

func handleType(target *wit.TypeDef, path []string) (schema.FieldType, error) {
	if target == nil || target.Name == nil {
		return schema.Reference{Target: schema.Scalar{Kind: schema.U32}}, nil
	}
	return schema.Reference{Target: schema.NamedRef{Name: toPascalCase(*target.Name)}}, nil
}

// tupleType packs homogeneous scalar tuples: tuple<u16, u16> and
// tuple<u8, u8, u8, u8> become the packed word kinds, anything else a vector.
func tupleType(t *wit.Tuple, path []string) (schema.FieldType, error) {
	if len(t.Types) == 0 {
		return nil, unsupported(t, path)
	}
	elem, ok := scalarKind(t.Types[0])
	if !ok {
		return nil, unsupported(t, path)
	}
	for _, et := range t.Types[1:] {
		if k, ok := scalarKind(et); !ok || k != elem {
			return nil, errors.Unsupported(errors.PhaseParse, path, "tuple elements must share one scalar type")
		}
	}

	switch {
	case elem == schema.U16 && len(t.Types) == 2:
		return schema.Scalar{Kind: schema.U16x2}, nil
	case elem == schema.U8 && len(t.Types) == 4:
		return schema.Scalar{Kind: schema.U8x4}, nil
	}
	return schema.Vector{Elem: elem, Len: uint32(len(t.Types))}, nil
}

func unsupported(v any, path []string) *errors.Error {
	return errors.Unsupported(errors.PhaseParse, path, fmt.Sprintf("WIT type %T has no packed layout", v))
}
