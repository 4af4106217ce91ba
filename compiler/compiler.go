// Package compiler runs the full pipeline: declarations are indexed into a
// type table, laid out, and rendered as kernel source.
package compiler

import (
	"bytes"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/gpu-layout/emit"
	"github.com/wippyai/gpu-layout/layout"
	"github.com/wippyai/gpu-layout/schema"
	"github.com/wippyai/gpu-layout/schema/dsl"
	"github.com/wippyai/gpu-layout/schema/witschema"
	"github.com/wippyai/gpu-layout/schema/yamlschema"
	"github.com/wippyai/gpu-layout/typetable"
)

// Constant is an enum variant tag as emitted, e.g. PietItem_Circle = 1.
type Constant struct {
	Name  string
	Value uint32
}

// Result holds everything one compilation produced. Structs and Enums follow
// declaration order.
type Result struct {
	Table     *typetable.Table
	Structs   []*layout.StructInfo
	Enums     []*layout.EnumInfo
	Constants []Constant
	Text      string
}

// Struct returns the layout of the named struct, or nil.
func (r *Result) Struct(name string) *layout.StructInfo {
	for _, s := range r.Structs {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Enum returns the layout of the named enum, or nil.
func (r *Result) Enum(name string) *layout.EnumInfo {
	for _, e := range r.Enums {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// Compile lays out and renders s. On error no partial result is returned.
func Compile(s *schema.Schema) (*Result, error) {
	start := time.Now()

	table, err := typetable.Build(s)
	if err != nil {
		return nil, err
	}
	calc := layout.NewCalculator(table)

	res := &Result{Table: table}
	for _, d := range table.Decls() {
		switch d := d.(type) {
		case *schema.StructDef:
			info, err := calc.Struct(d.Name)
			if err != nil {
				return nil, err
			}
			res.Structs = append(res.Structs, info)
		case *schema.EnumDef:
			info, err := calc.Enum(d.Name)
			if err != nil {
				return nil, err
			}
			res.Enums = append(res.Enums, info)
			for _, v := range info.Variants {
				res.Constants = append(res.Constants, Constant{Name: info.Name + "_" + v.Name, Value: v.Tag})
			}
		}
	}

	text, err := emit.Emit(table, calc)
	if err != nil {
		return nil, err
	}
	res.Text = text

	Logger().Debug("compiled schema",
		zap.String("module", s.Name),
		zap.Int("structs", len(res.Structs)),
		zap.Int("enums", len(res.Enums)),
		zap.Strings("tagged", table.TaggedStructs()),
		zap.Duration("elapsed", time.Since(start)))
	return res, nil
}

// Load decodes src with the front-end chosen by the extension of name:
// .yaml and .yml are YAML schemas, .json is a WIT resolve, anything else is
// the text syntax.
func Load(name string, src []byte) (*schema.Schema, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return yamlschema.Decode(src)
	case ".json":
		return witschema.DecodeJSON(bytes.NewReader(src))
	default:
		return dsl.Parse(string(src))
	}
}

// CompileSource loads src by file name and compiles it.
func CompileSource(name string, src []byte) (*Result, error) {
	s, err := Load(name, src)
	if err != nil {
		Logger().Debug("schema load failed", zap.String("source", name), zap.Error(err))
		return nil, err
	}
	return Compile(s)
}
