package bufenc

import (
	"fmt"
	"math"

	gpulayout "github.com/wippyai/gpu-layout"
	"github.com/wippyai/gpu-layout/errors"
	"github.com/wippyai/gpu-layout/internal/abi"
	"github.com/wippyai/gpu-layout/layout"
	"github.com/wippyai/gpu-layout/schema"
)

// ReadTag returns the tag word at ref. Tags start at 1.
func (e *Encoder) ReadTag(buf gpulayout.Buffer, ref uint32) (uint32, error) {
	return buf.ReadU32(ref)
}

// DecodeStruct reads struct name at ref. The tag slot of a tagged struct is
// not included.
func (e *Encoder) DecodeStruct(buf gpulayout.Buffer, ref uint32, name string) (map[string]any, error) {
	info, err := e.calc.Struct(name)
	if err != nil {
		return nil, err
	}
	if err := checkExtent(buf, errors.PhaseDecode, []string{name}, ref, info.Size); err != nil {
		return nil, err
	}
	return e.decodeStruct(buf, ref, info, []string{name})
}

// DecodeEnum reads the tag at ref and returns the variant name with its
// payload values.
func (e *Encoder) DecodeEnum(buf gpulayout.Buffer, ref uint32, enum string) (string, []any, error) {
	info, err := e.calc.Enum(enum)
	if err != nil {
		return "", nil, err
	}
	if err := checkExtent(buf, errors.PhaseDecode, []string{enum}, ref, info.Size); err != nil {
		return "", nil, err
	}
	tag, err := buf.ReadU32(ref)
	if err != nil {
		return "", nil, err
	}
	if tag == 0 || tag > uint32(len(info.Variants)) {
		err := errors.InvalidInput(errors.PhaseDecode, []string{enum},
			"tag %d does not name a variant (1..%d)", tag, len(info.Variants))
		err.Value = tag
		return "", nil, err
	}

	v := info.Variants[tag-1]
	path := []string{enum, v.Name}
	payload := make([]any, 0, len(v.Fields))
	for _, f := range v.Fields {
		val, err := e.decodeValue(buf, ref+f.Offset, f.Type, path)
		if err != nil {
			return "", nil, err
		}
		payload = append(payload, val)
	}
	return v.Name, payload, nil
}

func (e *Encoder) decodeStruct(buf gpulayout.Buffer, ref uint32, info *layout.StructInfo, path []string) (map[string]any, error) {
	out := make(map[string]any, len(info.Fields))
	for _, f := range info.Fields {
		v, err := e.decodeValue(buf, ref+f.Offset, f.Type, append(path[:len(path):len(path)], f.Name))
		if err != nil {
			return nil, err
		}
		out[f.Name] = v
	}
	return out, nil
}

func (e *Encoder) decodeValue(buf gpulayout.Buffer, off uint32, t schema.FieldType, path []string) (any, error) {
	switch t := t.(type) {
	case schema.Scalar:
		w, err := buf.ReadU32(off)
		if err != nil {
			return nil, err
		}
		return decodeScalar(t.Kind, w), nil

	case schema.Vector:
		out := make([]any, t.Len)
		for i := range out {
			w, err := buf.ReadU32(off + uint32(i)*abi.WordSize)
			if err != nil {
				return nil, err
			}
			out[i] = decodeScalar(t.Elem, w)
		}
		return out, nil

	case schema.Reference:
		w, err := buf.ReadU32(off)
		if err != nil {
			return nil, err
		}
		return w, nil

	case schema.NamedRef:
		if e.table.Enum(t.Name) != nil {
			return nil, errors.Unsupported(errors.PhaseDecode, path, "inline enum "+t.Name)
		}
		info, err := e.calc.Struct(t.Name)
		if err != nil {
			return nil, err
		}
		return e.decodeStruct(buf, off, info, path)
	}
	return nil, errors.Unsupported(errors.PhaseDecode, path, fmt.Sprintf("field type %T", t))
}

func decodeScalar(k schema.ScalarKind, w uint32) any {
	switch k {
	case schema.I32:
		return int32(w)
	case schema.F32:
		return math.Float32frombits(w)
	case schema.U16:
		return uint16(w)
	case schema.U8:
		return uint8(w)
	case schema.U16x2:
		return [2]uint16{uint16(w), uint16(w >> 16)}
	case schema.U8x4:
		return [4]uint8{uint8(w), uint8(w >> 8), uint8(w >> 16), uint8(w >> 24)}
	default:
		return w
	}
}
