package layout

import (
	"fmt"

	"github.com/wippyai/gpu-layout/errors"
	"github.com/wippyai/gpu-layout/internal/abi"
	"github.com/wippyai/gpu-layout/schema"
	"github.com/wippyai/gpu-layout/typetable"
)

// FieldInfo is one placed field. Offsets are relative to the start of the
// containing struct or enum.
type FieldInfo struct {
	Type   schema.FieldType
	Name   string
	Offset uint32
	Size   uint32
	Align  uint32
}

type StructInfo struct {
	Name   string
	Fields []FieldInfo
	Size   uint32
	Align  uint32
	Tagged bool
}

// VariantInfo describes one enum alternative. Tag is the 1-based variant
// constant and Bytes the extent of the variant including the tag word.
type VariantInfo struct {
	Name   string
	Fields []FieldInfo
	Tag    uint32
	Bytes  uint32
}

type EnumInfo struct {
	Name      string
	Variants  []VariantInfo
	Size      uint32
	BodyWords uint32
}

// Calculator memoizes layouts by type name. It is not safe for concurrent
// use.
type Calculator struct {
	table   *typetable.Table
	structs map[string]*StructInfo
	enums   map[string]*EnumInfo
	active  map[string]bool
}

func NewCalculator(table *typetable.Table) *Calculator {
	return &Calculator{
		table:   table,
		structs: make(map[string]*StructInfo),
		enums:   make(map[string]*EnumInfo),
		active:  make(map[string]bool),
	}
}

// Size returns the packed size of t.
func (c *Calculator) Size(t schema.FieldType) (uint32, error) {
	return c.size(t, nil)
}

// Align returns the alignment of t when used as a struct field.
func (c *Calculator) Align(t schema.FieldType) (uint32, error) {
	return c.align(t, nil)
}

func (c *Calculator) size(t schema.FieldType, path []string) (uint32, error) {
	switch t := t.(type) {
	case schema.Scalar, schema.Reference:
		return abi.WordSize, nil
	case schema.Vector:
		return vectorBytes(t, path)
	case schema.NamedRef:
		d, ok := c.table.Lookup(t.Name)
		if !ok {
			return 0, errors.Unresolved(path, t.Name)
		}
		switch d.(type) {
		case *schema.StructDef:
			info, err := c.Struct(t.Name)
			if err != nil {
				return 0, err
			}
			return info.Size, nil
		default:
			info, err := c.Enum(t.Name)
			if err != nil {
				return 0, err
			}
			return info.Size, nil
		}
	}
	return 0, errors.Unsupported(errors.PhaseLayout, path, fmt.Sprintf("field type %T", t))
}

func (c *Calculator) align(t schema.FieldType, path []string) (uint32, error) {
	switch t := t.(type) {
	case schema.Scalar, schema.Reference:
		return abi.WordSize, nil
	case schema.Vector:
		return vectorBytes(t, path)
	case schema.NamedRef:
		d, ok := c.table.Lookup(t.Name)
		if !ok {
			return 0, errors.Unresolved(path, t.Name)
		}
		if _, ok := d.(*schema.EnumDef); ok {
			return 0, errors.New(errors.PhaseLayout, errors.KindUnsupported).
				Path(path...).
				TypeName(t.Name).
				Detail("enum cannot be embedded inline; use a reference").
				Build()
		}
		info, err := c.Struct(t.Name)
		if err != nil {
			return 0, err
		}
		return info.Align, nil
	}
	return 0, errors.Unsupported(errors.PhaseLayout, path, fmt.Sprintf("field type %T", t))
}

func vectorBytes(v schema.Vector, path []string) (uint32, error) {
	n, ok := abi.SafeMulU32(abi.WordSize, v.Len)
	if !ok {
		return 0, errors.Overflow(errors.PhaseLayout, path, v.Len, "vector length")
	}
	return n, nil
}

// Struct returns the layout of the named struct.
func (c *Calculator) Struct(name string) (*StructInfo, error) {
	if info, ok := c.structs[name]; ok {
		return info, nil
	}
	def := c.table.Struct(name)
	if def == nil {
		return nil, errors.NotFound(errors.PhaseLayout, "struct", name)
	}
	if err := c.enter(name); err != nil {
		return nil, err
	}
	defer delete(c.active, name)

	info := &StructInfo{Name: name, Tagged: c.table.IsTagged(name)}
	var offset uint32
	if info.Tagged {
		offset = abi.WordSize
		info.Align = abi.WordSize
	}

	for _, f := range def.Fields {
		path := []string{name, f.Name}
		size, err := c.size(f.Type, path)
		if err != nil {
			return nil, err
		}
		align, err := c.align(f.Type, path)
		if err != nil {
			return nil, err
		}

		var ok bool
		if offset, ok = abi.AlignTo(offset, align); !ok {
			return nil, sizeOverflow(path)
		}
		info.Fields = append(info.Fields, FieldInfo{
			Name:   f.Name,
			Type:   f.Type,
			Offset: offset,
			Size:   size,
			Align:  align,
		})
		if offset, ok = abi.SafeAddU32(offset, size); !ok {
			return nil, sizeOverflow(path)
		}
		info.Align = max(info.Align, align)
	}
	info.Size = offset

	c.structs[name] = info
	return info, nil
}

// Enum returns the layout of the named enum.
func (c *Calculator) Enum(name string) (*EnumInfo, error) {
	if info, ok := c.enums[name]; ok {
		return info, nil
	}
	def := c.table.Enum(name)
	if def == nil {
		return nil, errors.NotFound(errors.PhaseLayout, "enum", name)
	}
	if err := c.enter(name); err != nil {
		return nil, err
	}
	defer delete(c.active, name)

	info := &EnumInfo{Name: name}
	maxBytes := uint32(abi.WordSize)

	for i, v := range def.Variants {
		path := []string{name, v.Name}
		vi := VariantInfo{Name: v.Name, Tag: uint32(i + 1)}
		offset := uint32(abi.WordSize)

		for j, p := range v.Payload {
			if _, ok := p.(schema.NamedRef); ok && j == 0 {
				offset = 0
			}
			size, err := c.size(p, path)
			if err != nil {
				return nil, err
			}
			vi.Fields = append(vi.Fields, FieldInfo{
				Name:   fmt.Sprint(j),
				Type:   p,
				Offset: offset,
				Size:   size,
			})
			var ok bool
			if offset, ok = abi.SafeAddU32(offset, size); !ok {
				return nil, sizeOverflow(path)
			}
		}
		vi.Bytes = offset
		maxBytes = max(maxBytes, offset)
		info.Variants = append(info.Variants, vi)
	}

	info.BodyWords = abi.Words(maxBytes) - 1
	body, ok := abi.SafeMulU32(info.BodyWords, abi.WordSize)
	if !ok {
		return nil, sizeOverflow([]string{name})
	}
	info.Size = abi.WordSize + body

	c.enums[name] = info
	return info, nil
}

func (c *Calculator) enter(name string) error {
	if c.active[name] {
		return errors.New(errors.PhaseLayout, errors.KindUnsupported).
			Path(name).
			TypeName(name).
			Detail("recursive inline type; use a reference").
			Build()
	}
	c.active[name] = true
	return nil
}

func sizeOverflow(path []string) *errors.Error {
	return errors.New(errors.PhaseLayout, errors.KindOverflow).
		Path(path...).
		Detail("layout exceeds the 32-bit offset range").
		Build()
}
