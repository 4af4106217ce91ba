package dsl

import (
	"github.com/wippyai/gpu-layout/schema"
	"github.com/wippyai/gpu-layout/schema/dsl/internal/parser"
	"github.com/wippyai/gpu-layout/schema/dsl/internal/token"
)

// Parse reads schema source text into declarations.
func Parse(source string) (*schema.Schema, error) {
	return parser.New(token.Tokenize(source)).Parse()
}

// ParseType reads a single field type such as "[f32; 2]" or "Ref<Node>".
func ParseType(source string) (schema.FieldType, error) {
	return parser.New(token.Tokenize(source)).ParseType()
}
