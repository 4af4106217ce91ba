package emit

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	lerrors "github.com/wippyai/gpu-layout/errors"
	"github.com/wippyai/gpu-layout/layout"
	"github.com/wippyai/gpu-layout/schema"
	"github.com/wippyai/gpu-layout/schema/dsl"
	"github.com/wippyai/gpu-layout/typetable"
)

func emitSource(t *testing.T, src string) (string, error) {
	t.Helper()
	s, err := dsl.Parse(src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	tbl, err := typetable.Build(s)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return Emit(tbl, layout.NewCalculator(tbl))
}

const segWant = `// Code generated by gpulayout. DO NOT EDIT.

typedef uint SegRef;
typedef uint OpRef;

struct SegPacked {
    uint tag;
    uint a;
    uint _pad0[2];
    packed_float4 v;
    SegRef next;
};

inline SegPacked Seg_read(const device char *buf, SegRef ref) {
    return *((const device SegPacked *)(buf + ref));
}

inline uint Seg_a(const device char *buf, SegRef ref) {
    return *((const device uint *)(buf + ref + 4));
}

inline packed_float4 Seg_v(const device char *buf, SegRef ref) {
    return *((const device packed_float4 *)(buf + ref + 16));
}

inline SegRef Seg_next(const device char *buf, SegRef ref) {
    return *((const device SegRef *)(buf + ref + 32));
}

struct OpPacked {
    uint tag;
    uint body[8];
};

inline OpPacked Op_read(const device char *buf, OpRef ref) {
    return *((const device OpPacked *)(buf + ref));
}

inline uint Op_tag(const device char *buf, OpRef ref) {
    return ((const device OpPacked *)(buf + ref))->tag;
}

#define Op_Seg 1
#define Op_Halt 2
`

func TestEmitGolden(t *testing.T) {
	got, err := emitSource(t, `
struct Seg { a: u32, v: [f32; 4], next: Ref<Seg> }
enum Op { Seg(Seg), Halt }
`)
	if err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	if got != segWant {
		t.Errorf("output mismatch\ngot:\n%s\nwant:\n%s", got, segWant)
	}
}

// Inner has alignment 8 but size 12, so Outer.c follows it directly at 12.
const nestedWant = `// Code generated by gpulayout. DO NOT EDIT.

typedef uint InnerRef;
typedef uint OuterRef;

struct InnerPacked {
    packed_float2 v;
    uint b;
};

inline InnerPacked Inner_read(const device char *buf, InnerRef ref) {
    return *((const device InnerPacked *)(buf + ref));
}

inline packed_float2 Inner_v(const device char *buf, InnerRef ref) {
    return *((const device packed_float2 *)(buf + ref + 0));
}

inline uint Inner_b(const device char *buf, InnerRef ref) {
    return *((const device uint *)(buf + ref + 8));
}

struct OuterPacked {
    InnerPacked i;
    uint c;
};

inline OuterPacked Outer_read(const device char *buf, OuterRef ref) {
    return *((const device OuterPacked *)(buf + ref));
}

inline uint Outer_c(const device char *buf, OuterRef ref) {
    return *((const device uint *)(buf + ref + 12));
}
`

func TestEmitNestedUnroundedSize(t *testing.T) {
	got, err := emitSource(t, `
struct Inner { v: [f32; 2], b: u32 }
struct Outer { i: Inner, c: u32 }
`)
	if err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	if got != nestedWant {
		t.Errorf("output mismatch\ngot:\n%s\nwant:\n%s", got, nestedWant)
	}
}

func TestEmitVectorNames(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"[f32; 2]", "packed_float2"},
		{"[f32; 3]", "packed_float3"},
		{"[f32; 4]", "packed_float4"},
		{"[i32; 2]", "packed_int2"},
		{"[u32; 4]", "packed_uint4"},
		{"[u16; 2]", "packed_uint2"},
		{"[f32; 1]", "array<float, 1>"},
		{"[f32; 8]", "array<float, 8>"},
		{"[u16x2; 2]", "array<ushort2, 2>"},
		{"[u8x4; 4]", "array<uchar4, 4>"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			ft, err := dsl.ParseType(tt.src)
			if err != nil {
				t.Fatalf("ParseType failed: %v", err)
			}
			v, ok := ft.(schema.Vector)
			if !ok {
				t.Fatalf("got %T, want schema.Vector", ft)
			}
			if got := vectorName(v); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEmitEmptyStructMember(t *testing.T) {
	got, err := emitSource(t, "struct E { }\nstruct H { e: E, x: u32 }")
	if err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	want := "struct HPacked {\n    uint x;\n};\n"
	if !strings.Contains(got, want) {
		t.Errorf("output missing %q:\n%s", want, got)
	}
}

const pietSource = `
struct BBox { x0: u16, y0: u16, x1: u16, y1: u16 }
struct PietCircle { rgba_color: u8x4, center: [f32; 2], radius: f32, bbox: BBox }
struct PietGlyph { rgba_color: u32, atlas: u16x2, lanes: [u8; 3], raw: [u32; 5] }
enum PietItem { Circle(PietCircle), Glyph(PietGlyph) }
struct Scene { root: Ref<PietItem>, count: u32 }
`

func TestEmitPiet(t *testing.T) {
	got, err := emitSource(t, pietSource)
	if err != nil {
		t.Fatalf("Emit failed: %v", err)
	}

	for _, want := range []string{
		"typedef uint BBoxRef;",
		"typedef uint SceneRef;",
		"    uchar4 rgba_color;",
		"    packed_float2 center;",
		"    BBoxPacked bbox;",
		"    ushort2 atlas;",
		"    packed_uint3 lanes;",
		"    array<uint, 5> raw;",
		"    PietItemRef root;",
		"    uint body[",
		"#define PietItem_Circle 1\n",
		"#define PietItem_Glyph 2\n",
		"inline uint PietItem_tag(const device char *buf, PietItemRef ref)",
		"inline PietItemPacked PietItem_read(",
		"inline ushort2 PietGlyph_atlas(",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q", want)
		}
	}

	// Inline struct fields have no direct accessor.
	if strings.Contains(got, "PietCircle_bbox(") {
		t.Error("unexpected accessor for inline struct field")
	}

	// Aliases come before any declaration.
	if strings.Index(got, "typedef uint SceneRef;") > strings.Index(got, "struct BBoxPacked") {
		t.Error("aliases block must precede declarations")
	}
}

func TestEmitIdempotent(t *testing.T) {
	a, err := emitSource(t, pietSource)
	if err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	b, err := emitSource(t, pietSource)
	if err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	if a != b {
		t.Error("two compilations of the same schema differ")
	}
}

func TestEmitNoOutputOnError(t *testing.T) {
	got, err := emitSource(t, "struct Ok { a: u32 }\nstruct Group { bbox: BBox }")
	if !errors.Is(err, lerrors.ErrUnresolved) {
		t.Fatalf("got %v, want unresolved error", err)
	}
	if got != "" {
		t.Errorf("expected empty output on error, got %d bytes", len(got))
	}
}

func TestEmitUndeclaredReferenceWarns(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	SetLogger(zap.New(core))
	defer SetLogger(zap.NewNop())

	got, err := emitSource(t, "struct Node { next: Ref<Ghost>, idx: Ref<u32> }")
	if err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	if !strings.Contains(got, "    uint next;") || !strings.Contains(got, "    uint idx;") {
		t.Errorf("references without a declared target should be uint:\n%s", got)
	}
	if n := logs.FilterField(zap.String("type", "Ghost")).Len(); n != 1 {
		t.Errorf("got %d warnings for Ghost, want 1", n)
	}
}

func TestEmitEmptyEnum(t *testing.T) {
	got, err := emitSource(t, "enum Never { }")
	if err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	if strings.Contains(got, "body[") {
		t.Error("enum without payloads should have no body")
	}
	if strings.Contains(got, "#define") {
		t.Error("enum without variants should have no constants")
	}
}
