package schema

import (
	"strconv"
	"strings"
)

// ScalarKind is a packed scalar. Every kind occupies exactly one 4-byte word;
// u16 and u8 are widened into a full word and unpacked by kernel code.
type ScalarKind uint8

const (
	I32 ScalarKind = iota
	F32
	U32
	U16
	U16x2
	U8x4
	U8
)

var scalarNames = [...]string{
	I32:   "i32",
	F32:   "f32",
	U32:   "u32",
	U16:   "u16",
	U16x2: "u16x2",
	U8x4:  "u8x4",
	U8:    "u8",
}

func (k ScalarKind) String() string {
	if int(k) < len(scalarNames) {
		return scalarNames[k]
	}
	return "scalar(" + strconv.Itoa(int(k)) + ")"
}

// LookupScalar maps a scalar keyword to its kind.
func LookupScalar(keyword string) (ScalarKind, bool) {
	for k, name := range scalarNames {
		if name == keyword {
			return ScalarKind(k), true
		}
	}
	return 0, false
}

// FieldType is one of Scalar, Vector, NamedRef or Reference.
type FieldType interface {
	String() string
	fieldType()
}

// Scalar is a single packed word.
type Scalar struct {
	Kind ScalarKind
}

// Vector is a fixed-length run of scalars.
type Vector struct {
	Elem ScalarKind
	Len  uint32
}

// NamedRef embeds the named struct or enum inline. The name is resolved
// against the type table only when its layout is needed.
type NamedRef struct {
	Name string
}

// Reference is a 4-byte byte offset into a buffer. Target documents what the
// offset points at; it never affects layout.
type Reference struct {
	Target FieldType
}

func (Scalar) fieldType()    {}
func (Vector) fieldType()    {}
func (NamedRef) fieldType()  {}
func (Reference) fieldType() {}

func (s Scalar) String() string   { return s.Kind.String() }
func (n NamedRef) String() string { return n.Name }

func (v Vector) String() string {
	return "[" + v.Elem.String() + "; " + strconv.FormatUint(uint64(v.Len), 10) + "]"
}

func (r Reference) String() string {
	if r.Target == nil {
		return "Ref<?>"
	}
	return "Ref<" + r.Target.String() + ">"
}

// IsSmall reports whether t is read directly by a field accessor. Inline
// nested types are read through their own accessors instead.
func IsSmall(t FieldType) bool {
	switch t.(type) {
	case Scalar, Vector, Reference:
		return true
	}
	return false
}

// Field is a named struct member.
type Field struct {
	Type FieldType
	Name string
	Line int
}

// Variant is an enum alternative with zero or one payload field.
type Variant struct {
	Name    string
	Payload []FieldType
	Line    int
}

// Decl is a top-level declaration: *StructDef or *EnumDef.
type Decl interface {
	DeclName() string
	DeclLine() int
	decl()
}

// StructDef is a struct with fields in declaration order.
type StructDef struct {
	Name   string
	Fields []Field
	Line   int
}

// EnumDef is a tagged union with variants in declaration order.
type EnumDef struct {
	Name     string
	Variants []Variant
	Line     int
}

func (*StructDef) decl() {}
func (*EnumDef) decl()   {}

func (s *StructDef) DeclName() string { return s.Name }
func (s *StructDef) DeclLine() int    { return s.Line }
func (e *EnumDef) DeclName() string   { return e.Name }
func (e *EnumDef) DeclLine() int      { return e.Line }

// Schema is an ordered list of declarations.
type Schema struct {
	Name  string
	Decls []Decl
}

// String renders the schema back to the text syntax accepted by Parse.
func (s *Schema) String() string {
	var b strings.Builder
	indent := ""
	if s.Name != "" {
		b.WriteString("mod " + s.Name + " {\n")
		indent = "    "
	}
	for _, d := range s.Decls {
		switch d := d.(type) {
		case *StructDef:
			b.WriteString(indent + "struct " + d.Name + " {\n")
			for _, f := range d.Fields {
				b.WriteString(indent + "    " + f.Name + ": " + f.Type.String() + ",\n")
			}
			b.WriteString(indent + "}\n")
		case *EnumDef:
			b.WriteString(indent + "enum " + d.Name + " {\n")
			for _, v := range d.Variants {
				b.WriteString(indent + "    " + v.Name)
				if len(v.Payload) > 0 {
					parts := make([]string, len(v.Payload))
					for i, p := range v.Payload {
						parts[i] = p.String()
					}
					b.WriteString("(" + strings.Join(parts, ", ") + ")")
				}
				b.WriteString(",\n")
			}
			b.WriteString(indent + "}\n")
		}
	}
	if s.Name != "" {
		b.WriteString("}\n")
	}
	return b.String()
}
