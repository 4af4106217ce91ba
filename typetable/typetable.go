// Package typetable resolves declaration names and records which structs are
// tagged.
//
// A struct is tagged when it appears as the leading payload of an enum
// variant; its packed form then reserves a 4-byte tag word in front of the
// first field so the same memory reads as either the enum or the struct.
package typetable

import (
	"sort"
	"strings"

	"github.com/wippyai/gpu-layout/errors"
	"github.com/wippyai/gpu-layout/schema"
)

// Table maps declaration names to declarations. It is immutable once built.
type Table struct {
	byName map[string]schema.Decl
	decls  []schema.Decl
	tagged map[string]struct{}
}

// Build indexes declarations in order. Names referenced by fields are not
// checked here; they fail when their layout is first needed.
func Build(s *schema.Schema) (*Table, error) {
	t := &Table{
		byName: make(map[string]schema.Decl, len(s.Decls)),
		decls:  make([]schema.Decl, 0, len(s.Decls)),
		tagged: make(map[string]struct{}),
	}

	for _, d := range s.Decls {
		name := d.DeclName()
		if prev, ok := t.byName[name]; ok {
			return nil, errors.Duplicate(name, d.DeclLine(), prev.DeclLine())
		}
		t.byName[name] = d
		t.decls = append(t.decls, d)

		if sd, ok := d.(*schema.StructDef); ok {
			if err := checkFields(sd); err != nil {
				return nil, err
			}
			continue
		}
		e, ok := d.(*schema.EnumDef)
		if !ok {
			continue
		}
		if err := checkVariants(e); err != nil {
			return nil, err
		}
		for _, v := range e.Variants {
			if len(v.Payload) == 0 {
				continue
			}
			if ref, ok := v.Payload[0].(schema.NamedRef); ok {
				t.tagged[ref.Name] = struct{}{}
			}
		}
	}

	// The tag word is emitted as a member named tag.
	for _, name := range t.TaggedStructs() {
		sd := t.Struct(name)
		if sd == nil {
			continue
		}
		for _, f := range sd.Fields {
			if f.Name == "tag" {
				return nil, reservedField(sd.Name, f, "is the tag word of a tagged struct")
			}
		}
	}
	return t, nil
}

// checkFields rejects repeated field names and names taken by the padding
// members of the packed declaration.
func checkFields(sd *schema.StructDef) error {
	seen := make(map[string]int, len(sd.Fields))
	for _, f := range sd.Fields {
		if prev, ok := seen[f.Name]; ok {
			err := errors.Duplicate(sd.Name+"."+f.Name, f.Line, prev)
			err.Path = []string{sd.Name, f.Name}
			return err
		}
		seen[f.Name] = f.Line
		if strings.HasPrefix(f.Name, "_pad") {
			return reservedField(sd.Name, f, "is reserved for padding")
		}
	}
	return nil
}

func reservedField(structName string, f schema.Field, why string) *errors.Error {
	return errors.New(errors.PhaseResolve, errors.KindUnsupported).
		Path(structName, f.Name).
		Line(f.Line).
		Detail("field name %q %s", f.Name, why).
		Build()
}

func checkVariants(e *schema.EnumDef) error {
	seen := make(map[string]int, len(e.Variants))
	for _, v := range e.Variants {
		if prev, ok := seen[v.Name]; ok {
			err := errors.Duplicate(e.Name+"::"+v.Name, v.Line, prev)
			err.Path = []string{e.Name, v.Name}
			return err
		}
		seen[v.Name] = v.Line

		// A second payload field, inline or not, has no defined placement.
		if len(v.Payload) > 1 {
			return errors.New(errors.PhaseResolve, errors.KindUnsupported).
				Path(e.Name, v.Name).
				Line(v.Line).
				Detail("variant has %d payload fields, at most one is supported", len(v.Payload)).
				Build()
		}
	}
	return nil
}

// Lookup returns the declaration named name.
func (t *Table) Lookup(name string) (schema.Decl, bool) {
	d, ok := t.byName[name]
	return d, ok
}

// Struct returns the struct named name, or nil when absent or an enum.
func (t *Table) Struct(name string) *schema.StructDef {
	s, _ := t.byName[name].(*schema.StructDef)
	return s
}

// Enum returns the enum named name, or nil when absent or a struct.
func (t *Table) Enum(name string) *schema.EnumDef {
	e, _ := t.byName[name].(*schema.EnumDef)
	return e
}

// Decls returns declarations in source order.
func (t *Table) Decls() []schema.Decl {
	return t.decls
}

func (t *Table) IsTagged(name string) bool {
	_, ok := t.tagged[name]
	return ok
}

// TaggedStructs returns the tagged names in sorted order. A name may be
// tagged without being declared; resolution fails later in that case.
func (t *Table) TaggedStructs() []string {
	names := make([]string, 0, len(t.tagged))
	for n := range t.tagged {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
