// Package yamlschema decodes declarative YAML schema files into the schema
// model.
//
//	name: scene
//	types:
//	  - struct: BBox
//	    fields:
//	      - x0: u16
//	      - x1: u16
//	  - enum: PietItem
//	    variants:
//	      - Circle: PietCircle
//	      - Nop
//
// Field and payload types use the text type grammar, so "[f32; 2]" and
// "Ref<Node>" are valid values. Sequence order is declaration order.
package yamlschema

import (
	"bytes"
	"io"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/gpu-layout/errors"
	"github.com/wippyai/gpu-layout/schema"
	"github.com/wippyai/gpu-layout/schema/dsl"
)

type document struct {
	Name  string  `yaml:"name"`
	Types []entry `yaml:"types"`
}

type entry struct {
	decl schema.Decl
}

// Decode parses a YAML schema document. Errors carry the YAML line of the
// offending node.
func Decode(data []byte) (*schema.Schema, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return &schema.Schema{}, nil
		}
		if e, ok := err.(*errors.Error); ok {
			return nil, e
		}
		return nil, errors.ParseFailed("yaml", err)
	}

	s := &schema.Schema{Name: doc.Name, Decls: make([]schema.Decl, 0, len(doc.Types))}
	for _, e := range doc.Types {
		s.Decls = append(s.Decls, e.decl)
	}
	return s, nil
}

func (e *entry) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return nodeErrorf(value, nil, "type entry must be a mapping")
	}

	var kind, name string
	var nameNode, body *yaml.Node
	for i := 0; i+1 < len(value.Content); i += 2 {
		k, v := value.Content[i], value.Content[i+1]
		switch k.Value {
		case "struct", "enum":
			if kind != "" {
				return nodeErrorf(k, nil, "entry declares both %s and %s", kind, k.Value)
			}
			if err := checkName(v, nil, k.Value); err != nil {
				return err
			}
			kind, name, nameNode = k.Value, v.Value, v
		case "fields", "variants":
			if body != nil {
				return nodeErrorf(k, nil, "duplicate member list %q", k.Value)
			}
			if v.Kind != yaml.SequenceNode {
				return nodeErrorf(v, nil, "%s must be a sequence", k.Value)
			}
			body = v
		default:
			return nodeErrorf(k, nil, "unknown key %q", k.Value)
		}
	}
	if kind == "" {
		return nodeErrorf(value, nil, "entry needs a struct or enum key")
	}
	if body != nil && keyOf(value, body) != membersKey(kind) {
		return nodeErrorf(body, []string{name}, "%s %s cannot have %s", kind, name, keyOf(value, body))
	}

	if kind == "struct" {
		def := &schema.StructDef{Name: name, Line: nameNode.Line}
		if body != nil {
			for _, item := range body.Content {
				f, err := decodeField(name, item)
				if err != nil {
					return err
				}
				def.Fields = append(def.Fields, f)
			}
		}
		e.decl = def
		return nil
	}

	def := &schema.EnumDef{Name: name, Line: nameNode.Line}
	if body != nil {
		for _, item := range body.Content {
			v, err := decodeVariant(name, item)
			if err != nil {
				return err
			}
			def.Variants = append(def.Variants, v)
		}
	}
	e.decl = def
	return nil
}

func membersKey(kind string) string {
	if kind == "struct" {
		return "fields"
	}
	return "variants"
}

func keyOf(mapping, value *yaml.Node) string {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i+1] == value {
			return mapping.Content[i].Value
		}
	}
	return ""
}

func decodeField(structName string, item *yaml.Node) (schema.Field, error) {
	k, v, ok := singlePair(item)
	if !ok {
		return schema.Field{}, nodeErrorf(item, []string{structName}, "field must be a single `name: type` pair")
	}
	if err := checkName(k, []string{structName}, "field"); err != nil {
		return schema.Field{}, err
	}
	ft, err := parseType(v, []string{structName, k.Value})
	if err != nil {
		return schema.Field{}, err
	}
	return schema.Field{Name: k.Value, Type: ft, Line: k.Line}, nil
}

func decodeVariant(enumName string, item *yaml.Node) (schema.Variant, error) {
	if item.Kind == yaml.ScalarNode {
		if err := checkName(item, []string{enumName}, "variant"); err != nil {
			return schema.Variant{}, err
		}
		return schema.Variant{Name: item.Value, Line: item.Line}, nil
	}

	k, v, ok := singlePair(item)
	if !ok {
		return schema.Variant{}, nodeErrorf(item, []string{enumName}, "variant must be a name or a single `Name: Type` pair")
	}
	if err := checkName(k, []string{enumName}, "variant"); err != nil {
		return schema.Variant{}, err
	}
	variant := schema.Variant{Name: k.Value, Line: k.Line}
	path := []string{enumName, k.Value}

	switch v.Kind {
	case yaml.ScalarNode:
		ft, err := parseType(v, path)
		if err != nil {
			return variant, err
		}
		variant.Payload = []schema.FieldType{ft}
	case yaml.SequenceNode:
		for _, p := range v.Content {
			ft, err := parseType(p, path)
			if err != nil {
				return variant, err
			}
			variant.Payload = append(variant.Payload, ft)
		}
	default:
		return variant, nodeErrorf(v, path, "variant payload must be a type or a list of types")
	}
	return variant, nil
}

// checkName accepts the identifiers the text syntax accepts, so every name
// is usable in the generated source.
func checkName(n *yaml.Node, path []string, what string) error {
	if n.Kind != yaml.ScalarNode || n.Value == "" {
		return nodeErrorf(n, path, "missing %s name", what)
	}
	for i, r := range n.Value {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return nodeErrorf(n, path, "%s name %q is not an identifier", what, n.Value)
	}
	return nil
}

func singlePair(n *yaml.Node) (key, value *yaml.Node, ok bool) {
	if n.Kind != yaml.MappingNode || len(n.Content) != 2 {
		return nil, nil, false
	}
	return n.Content[0], n.Content[1], true
}

func parseType(n *yaml.Node, path []string) (schema.FieldType, error) {
	if n.Kind != yaml.ScalarNode {
		return nil, nodeErrorf(n, path, "type must be a string")
	}
	ft, err := dsl.ParseType(n.Value)
	if err != nil {
		return nil, errors.New(errors.PhaseParse, errors.KindInvalidSyntax).
			Path(path...).
			Line(n.Line).
			Detail("invalid type %q", n.Value).
			Cause(err).
			Build()
	}
	return ft, nil
}

func nodeErrorf(n *yaml.Node, path []string, format string, args ...any) *errors.Error {
	return errors.New(errors.PhaseParse, errors.KindInvalidSyntax).
		Path(path...).
		Line(n.Line).
		Detail(format, args...).
		Build()
}
