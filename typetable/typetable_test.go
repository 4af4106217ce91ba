package typetable

import (
	"errors"
	"testing"

	lerrors "github.com/wippyai/gpu-layout/errors"
	"github.com/wippyai/gpu-layout/schema"
)

func pietSchema() *schema.Schema {
	return &schema.Schema{Decls: []schema.Decl{
		&schema.StructDef{Name: "PietCircle", Fields: []schema.Field{
			{Name: "rgba_color", Type: schema.Scalar{Kind: schema.U32}},
			{Name: "center", Type: schema.Vector{Elem: schema.F32, Len: 2}},
			{Name: "radius", Type: schema.Scalar{Kind: schema.F32}},
		}},
		&schema.StructDef{Name: "PietStrokeLine", Fields: []schema.Field{
			{Name: "flags", Type: schema.Scalar{Kind: schema.U32}},
		}},
		&schema.StructDef{Name: "Unrelated"},
		&schema.EnumDef{Name: "PietItem", Variants: []schema.Variant{
			{Name: "Circle", Payload: []schema.FieldType{schema.NamedRef{Name: "PietCircle"}}},
			{Name: "Line", Payload: []schema.FieldType{schema.NamedRef{Name: "PietStrokeLine"}}},
			{Name: "Raw", Payload: []schema.FieldType{schema.Scalar{Kind: schema.U32}}},
			{Name: "Empty"},
		}},
	}}
}

func TestBuild(t *testing.T) {
	tbl, err := Build(pietSchema())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if got := len(tbl.Decls()); got != 4 {
		t.Errorf("got %d decls, want 4", got)
	}
	if tbl.Decls()[3].DeclName() != "PietItem" {
		t.Errorf("decls not in source order: %v", tbl.Decls()[3].DeclName())
	}

	tagged := tbl.TaggedStructs()
	want := []string{"PietCircle", "PietStrokeLine"}
	if len(tagged) != len(want) {
		t.Fatalf("tagged = %v, want %v", tagged, want)
	}
	for i := range want {
		if tagged[i] != want[i] {
			t.Errorf("tagged[%d] = %q, want %q", i, tagged[i], want[i])
		}
	}
	if tbl.IsTagged("Unrelated") {
		t.Error("Unrelated should not be tagged")
	}
	if !tbl.IsTagged("PietCircle") {
		t.Error("PietCircle should be tagged")
	}
}

func TestLookup(t *testing.T) {
	tbl, err := Build(pietSchema())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if _, ok := tbl.Lookup("Missing"); ok {
		t.Error("Lookup(Missing) should fail")
	}
	if d, ok := tbl.Lookup("PietItem"); !ok || d.DeclName() != "PietItem" {
		t.Errorf("Lookup(PietItem) = %v, %v", d, ok)
	}
	if tbl.Struct("PietCircle") == nil {
		t.Error("Struct(PietCircle) = nil")
	}
	if tbl.Struct("PietItem") != nil {
		t.Error("Struct(PietItem) should be nil for an enum")
	}
	if tbl.Enum("PietItem") == nil {
		t.Error("Enum(PietItem) = nil")
	}
	if tbl.Enum("PietCircle") != nil {
		t.Error("Enum(PietCircle) should be nil for a struct")
	}
}

func TestTaggedUndeclared(t *testing.T) {
	tbl, err := Build(&schema.Schema{Decls: []schema.Decl{
		&schema.EnumDef{Name: "E", Variants: []schema.Variant{
			{Name: "A", Payload: []schema.FieldType{schema.NamedRef{Name: "Ghost"}}},
		}},
	}})
	if err != nil {
		t.Fatalf("Build should defer resolution, got %v", err)
	}
	if !tbl.IsTagged("Ghost") {
		t.Error("Ghost should be tagged even though undeclared")
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name   string
		decls  []schema.Decl
		target error
		kind   lerrors.Kind
	}{
		{
			name: "duplicate struct",
			decls: []schema.Decl{
				&schema.StructDef{Name: "A", Line: 1},
				&schema.EnumDef{Name: "A", Line: 5},
			},
			kind: lerrors.KindDuplicate,
		},
		{
			name: "duplicate variant",
			decls: []schema.Decl{
				&schema.EnumDef{Name: "E", Variants: []schema.Variant{{Name: "X"}, {Name: "X"}}},
			},
			kind: lerrors.KindDuplicate,
		},
		{
			name: "two payload fields",
			decls: []schema.Decl{
				&schema.EnumDef{Name: "E", Variants: []schema.Variant{
					{Name: "P", Payload: []schema.FieldType{schema.Scalar{Kind: schema.U32}, schema.Scalar{Kind: schema.F32}}},
				}},
			},
			target: lerrors.ErrUnsupported,
			kind:   lerrors.KindUnsupported,
		},
		{
			name: "inline payload not leading",
			decls: []schema.Decl{
				&schema.EnumDef{Name: "E", Variants: []schema.Variant{
					{Name: "P", Payload: []schema.FieldType{schema.Scalar{Kind: schema.U32}, schema.NamedRef{Name: "A"}}},
				}},
			},
			target: lerrors.ErrUnsupported,
			kind:   lerrors.KindUnsupported,
		},
		{
			name: "duplicate field",
			decls: []schema.Decl{
				&schema.StructDef{Name: "A", Fields: []schema.Field{
					{Name: "x", Type: schema.Scalar{Kind: schema.U32}, Line: 1},
					{Name: "x", Type: schema.Scalar{Kind: schema.F32}, Line: 2},
				}},
			},
			kind: lerrors.KindDuplicate,
		},
		{
			name: "padding field name",
			decls: []schema.Decl{
				&schema.StructDef{Name: "A", Fields: []schema.Field{
					{Name: "_pad0", Type: schema.Scalar{Kind: schema.U32}},
				}},
			},
			target: lerrors.ErrUnsupported,
			kind:   lerrors.KindUnsupported,
		},
		{
			name: "tag field in tagged struct",
			decls: []schema.Decl{
				&schema.StructDef{Name: "A", Fields: []schema.Field{
					{Name: "tag", Type: schema.Scalar{Kind: schema.U32}},
				}},
				&schema.EnumDef{Name: "E", Variants: []schema.Variant{
					{Name: "X", Payload: []schema.FieldType{schema.NamedRef{Name: "A"}}},
				}},
			},
			target: lerrors.ErrUnsupported,
			kind:   lerrors.KindUnsupported,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(&schema.Schema{Decls: tt.decls})
			if err == nil {
				t.Fatal("expected error")
			}
			var e *lerrors.Error
			if !errors.As(err, &e) {
				t.Fatalf("error %T is not *errors.Error", err)
			}
			if e.Kind != tt.kind {
				t.Errorf("got kind %v, want %v", e.Kind, tt.kind)
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.target)
			}
		})
	}
}

func TestTagFieldUntagged(t *testing.T) {
	s := &schema.Schema{Decls: []schema.Decl{
		&schema.StructDef{Name: "A", Fields: []schema.Field{
			{Name: "tag", Type: schema.Scalar{Kind: schema.U32}},
		}},
	}}
	if _, err := Build(s); err != nil {
		t.Errorf("tag is an ordinary field name in an untagged struct, got %v", err)
	}
}
