package main

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/wippyai/gpu-layout/compiler"
)

func compileScene(t *testing.T) *compiler.Result {
	t.Helper()
	res, err := compiler.CompileSource("scene.schema", []byte(sceneSchema))
	if err != nil {
		t.Fatalf("CompileSource failed: %v", err)
	}
	return res
}

func words(data []byte) []uint32 {
	out := make([]uint32, len(data)/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return out
}

func TestEncodeDocument(t *testing.T) {
	res := compileScene(t)

	t.Run("struct from json", func(t *testing.T) {
		data, err := encodeDocument(res, "BBox", "", 0, []byte(`{"x0": 1, "y0": 2.5, "x1": 3, "y1": 4}`))
		if err != nil {
			t.Fatalf("encodeDocument failed: %v", err)
		}
		want := []uint32{
			math.Float32bits(1), math.Float32bits(2.5),
			math.Float32bits(3), math.Float32bits(4),
		}
		got := words(data)
		if len(got) != len(want) {
			t.Fatalf("got %d words, want %d", len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("word %d: got %#x, want %#x", i, got[i], want[i])
			}
		}
	})

	t.Run("enum from yaml at ref", func(t *testing.T) {
		doc := "- rgba_color: 255\n  center: [1, 2]\n  radius: 3\n"
		data, err := encodeDocument(res, "PietItem", "Circle", 8, []byte(doc))
		if err != nil {
			t.Fatalf("encodeDocument failed: %v", err)
		}
		got := words(data)
		want := []uint32{0, 0, 1, 255, math.Float32bits(1), math.Float32bits(2), math.Float32bits(3)}
		if len(got) != len(want) {
			t.Fatalf("got %d words, want %d", len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("word %d: got %#x, want %#x", i, got[i], want[i])
			}
		}
	})

	t.Run("variant without payload", func(t *testing.T) {
		data, err := encodeDocument(res, "PietItem", "Empty", 0, nil)
		if err != nil {
			t.Fatalf("encodeDocument failed: %v", err)
		}
		if got := words(data)[0]; got != 2 {
			t.Errorf("tag = %d, want 2", got)
		}
	})

	errCases := []struct {
		name     string
		typeName string
		variant  string
		doc      string
	}{
		{"unknown type", "Nope", "", "{}"},
		{"struct with variant", "BBox", "Circle", "{}"},
		{"struct from sequence", "BBox", "", "[1, 2]"},
		{"enum without variant", "PietItem", "", "[]"},
		{"enum from mapping", "PietItem", "Circle", "{a: 1}"},
		{"missing field", "BBox", "", "{x0: 1}"},
		{"bad document", "BBox", "", "{x0: [}"},
	}
	for _, tt := range errCases {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := encodeDocument(res, tt.typeName, tt.variant, 0, []byte(tt.doc)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
