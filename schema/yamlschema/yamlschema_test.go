package yamlschema

import (
	"errors"
	"strings"
	"testing"

	lerrors "github.com/wippyai/gpu-layout/errors"
	"github.com/wippyai/gpu-layout/schema"
)

const sceneYAML = `name: scene
types:
  - struct: BBox
    fields:
      - x0: u16
      - y0: u16
      - x1: u16
      - y1: u16
  - struct: PietCircle
    fields:
      - rgba_color: u32
      - center: "[f32; 2]"
      - radius: f32
  - enum: PietItem
    variants:
      - Circle: PietCircle
      - Nop
  - struct: Node
    fields:
      - item: Ref<PietItem>
`

func TestDecode(t *testing.T) {
	s, err := Decode([]byte(sceneYAML))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if s.Name != "scene" {
		t.Errorf("Name = %q, want scene", s.Name)
	}
	if len(s.Decls) != 4 {
		t.Fatalf("got %d decls, want 4", len(s.Decls))
	}

	bbox := s.Decls[0].(*schema.StructDef)
	if bbox.Name != "BBox" || bbox.Line != 3 {
		t.Errorf("got %s at line %d, want BBox at line 3", bbox.Name, bbox.Line)
	}
	if len(bbox.Fields) != 4 || bbox.Fields[3].Name != "y1" {
		t.Errorf("BBox fields = %+v", bbox.Fields)
	}

	circle := s.Decls[1].(*schema.StructDef)
	if got, want := circle.Fields[1].Type, (schema.Vector{Elem: schema.F32, Len: 2}); got != want {
		t.Errorf("center type = %v, want %v", got, want)
	}

	item := s.Decls[2].(*schema.EnumDef)
	if len(item.Variants) != 2 {
		t.Fatalf("got %d variants, want 2", len(item.Variants))
	}
	if p := item.Variants[0].Payload; len(p) != 1 || p[0] != (schema.NamedRef{Name: "PietCircle"}) {
		t.Errorf("Circle payload = %v", p)
	}
	if item.Variants[1].Name != "Nop" || len(item.Variants[1].Payload) != 0 {
		t.Errorf("Nop variant = %+v", item.Variants[1])
	}

	node := s.Decls[3].(*schema.StructDef)
	want := schema.Reference{Target: schema.NamedRef{Name: "PietItem"}}
	if node.Fields[0].Type != want {
		t.Errorf("item type = %v, want %v", node.Fields[0].Type, want)
	}
}

func TestDecodeEmpty(t *testing.T) {
	s, err := Decode(nil)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(s.Decls) != 0 {
		t.Errorf("got %d decls, want 0", len(s.Decls))
	}
}

func TestDecodeMultiPayload(t *testing.T) {
	s, err := Decode([]byte("types:\n  - enum: E\n    variants:\n      - Pair: [u32, f32]\n"))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got := len(s.Decls[0].(*schema.EnumDef).Variants[0].Payload); got != 2 {
		t.Errorf("got %d payload fields, want 2", got)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
		line int
	}{
		{
			name: "bad field type",
			src:  "types:\n  - struct: A\n    fields:\n      - v: \"[f32; 0]\"\n",
			want: "invalid type",
			line: 4,
		},
		{
			name: "field not a pair",
			src:  "types:\n  - struct: A\n    fields:\n      - v\n",
			want: "single `name: type` pair",
			line: 4,
		},
		{
			name: "no kind key",
			src:  "types:\n  - fields: []\n",
			want: "struct or enum key",
			line: 2,
		},
		{
			name: "unknown key",
			src:  "types:\n  - struct: A\n    size: 4\n",
			want: "unknown key",
			line: 3,
		},
		{
			name: "variants on struct",
			src:  "types:\n  - struct: A\n    variants:\n      - X\n",
			want: "cannot have variants",
			line: 4,
		},
		{
			name: "both kinds",
			src:  "types:\n  - struct: A\n    enum: B\n",
			want: "both struct and enum",
			line: 3,
		},
		{
			name: "payload mapping",
			src:  "types:\n  - enum: E\n    variants:\n      - V: {a: u32}\n",
			want: "variant payload",
			line: 4,
		},
		{
			name: "empty field name",
			src:  "types:\n  - struct: A\n    fields:\n      - \"\": u32\n",
			want: "missing field name",
			line: 4,
		},
		{
			name: "field name not an identifier",
			src:  "types:\n  - struct: A\n    fields:\n      - \"a b\": u32\n",
			want: "field name \"a b\" is not an identifier",
			line: 4,
		},
		{
			name: "empty variant name with payload",
			src:  "types:\n  - enum: E\n    variants:\n      - \"\": A\n",
			want: "missing variant name",
			line: 4,
		},
		{
			name: "empty variant name",
			src:  "types:\n  - enum: E\n    variants:\n      - \"\"\n",
			want: "missing variant name",
			line: 4,
		},
		{
			name: "struct name not an identifier",
			src:  "types:\n  - struct: 1A\n",
			want: "struct name \"1A\" is not an identifier",
			line: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.src))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
			var e *lerrors.Error
			if !errors.As(err, &e) {
				t.Fatalf("error %T is not *errors.Error", err)
			}
			if e.Line != tt.line {
				t.Errorf("got line %d, want %d", e.Line, tt.line)
			}
			if !errors.Is(err, lerrors.ErrParse) {
				t.Error("expected a parse error")
			}
		})
	}
}

func TestDecodeMalformedYAML(t *testing.T) {
	_, err := Decode([]byte("types: [\n"))
	if !errors.Is(err, lerrors.ErrParse) {
		t.Errorf("got %v, want a parse error", err)
	}
}

func TestDecodeUnknownTopLevel(t *testing.T) {
	_, err := Decode([]byte("version: 2\ntypes: []\n"))
	if err == nil {
		t.Error("expected error for unknown top-level key")
	}
}
