package bufenc

import (
	"fmt"
	"math"
	"reflect"
	"sort"

	"go.uber.org/zap"

	gpulayout "github.com/wippyai/gpu-layout"
	"github.com/wippyai/gpu-layout/errors"
	"github.com/wippyai/gpu-layout/internal/abi"
	"github.com/wippyai/gpu-layout/layout"
	"github.com/wippyai/gpu-layout/schema"
	"github.com/wippyai/gpu-layout/typetable"
)

// Encoder writes and reads values of the types in one table.
type Encoder struct {
	table *typetable.Table
	calc  *layout.Calculator
}

func NewEncoder(table *typetable.Table) *Encoder {
	return &Encoder{table: table, calc: layout.NewCalculator(table)}
}

// EncodeStruct writes values at ref using the layout of struct name. Every
// field must be present and no unknown keys are allowed. The tag slot of a
// tagged struct is left untouched; EncodeEnum fills it.
func (e *Encoder) EncodeStruct(buf gpulayout.Buffer, ref uint32, name string, values map[string]any) error {
	info, err := e.calc.Struct(name)
	if err != nil {
		return err
	}
	if err := checkExtent(buf, errors.PhaseEncode, []string{name}, ref, info.Size); err != nil {
		return err
	}
	if err := e.encodeStruct(buf, ref, info, values, []string{name}); err != nil {
		return err
	}
	Logger().Debug("encoded struct",
		zap.String("type", name),
		zap.Uint32("ref", ref),
		zap.Uint32("size", info.Size))
	return nil
}

// EncodeEnum writes the tag of variant followed by its payload. An inline
// struct payload is given as map[string]any and shares the tag word.
func (e *Encoder) EncodeEnum(buf gpulayout.Buffer, ref uint32, enum, variant string, payload ...any) error {
	info, err := e.calc.Enum(enum)
	if err != nil {
		return err
	}
	v, err := findVariant(info, variant)
	if err != nil {
		return err
	}
	path := []string{enum, variant}
	if len(payload) != len(v.Fields) {
		return errors.InvalidInput(errors.PhaseEncode, path,
			"variant takes %d payload values, got %d", len(v.Fields), len(payload))
	}
	if err := checkExtent(buf, errors.PhaseEncode, path, ref, info.Size); err != nil {
		return err
	}

	if err := buf.WriteU32(ref, v.Tag); err != nil {
		return err
	}
	for i, f := range v.Fields {
		if err := e.encodeValue(buf, ref+f.Offset, f.Type, payload[i], path); err != nil {
			return err
		}
	}

	Logger().Debug("encoded enum",
		zap.String("type", enum),
		zap.String("variant", variant),
		zap.Uint32("tag", v.Tag),
		zap.Uint32("ref", ref))
	return nil
}

func findVariant(info *layout.EnumInfo, name string) (*layout.VariantInfo, error) {
	for i := range info.Variants {
		if info.Variants[i].Name == name {
			return &info.Variants[i], nil
		}
	}
	return nil, errors.NotFound(errors.PhaseEncode, "variant", info.Name+"::"+name)
}

func checkExtent(buf gpulayout.Buffer, phase errors.Phase, path []string, ref, size uint32) error {
	sizer, ok := buf.(gpulayout.BufferSizer)
	if !ok {
		return nil
	}
	if uint64(ref)+uint64(size) > uint64(sizer.Size()) {
		err := errors.OutOfBounds(phase, path, ref, sizer.Size())
		err.Detail = fmt.Sprintf("%d bytes at offset %d exceed buffer size %d", size, ref, sizer.Size())
		return err
	}
	return nil
}

func (e *Encoder) encodeStruct(buf gpulayout.Buffer, ref uint32, info *layout.StructInfo, values map[string]any, path []string) error {
	known := make(map[string]bool, len(info.Fields))
	for _, f := range info.Fields {
		known[f.Name] = true
	}
	var unknown []string
	for k := range values {
		if !known[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return errors.FieldUnknown(errors.PhaseEncode, path, unknown[0])
	}

	for _, f := range info.Fields {
		v, ok := values[f.Name]
		if !ok {
			return errors.FieldMissing(errors.PhaseEncode, path, f.Name)
		}
		if err := e.encodeValue(buf, ref+f.Offset, f.Type, v, append(path[:len(path):len(path)], f.Name)); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) encodeValue(buf gpulayout.Buffer, off uint32, t schema.FieldType, v any, path []string) error {
	switch t := t.(type) {
	case schema.Scalar:
		w, err := encodeScalar(t.Kind, v, path)
		if err != nil {
			return err
		}
		return buf.WriteU32(off, w)

	case schema.Vector:
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return errors.TypeMismatch(errors.PhaseEncode, path, abi.TypeName(v), t.String())
		}
		if rv.Len() != int(t.Len) {
			return errors.New(errors.PhaseEncode, errors.KindTypeMismatch).
				Path(path...).
				TypeName(t.String()).
				Detail("expected %d elements, got %d", t.Len, rv.Len()).
				Build()
		}
		for i := 0; i < rv.Len(); i++ {
			w, err := encodeScalar(t.Elem, rv.Index(i).Interface(), append(path[:len(path):len(path)], fmt.Sprint(i)))
			if err != nil {
				return err
			}
			if err := buf.WriteU32(off+uint32(i)*abi.WordSize, w); err != nil {
				return err
			}
		}
		return nil

	case schema.Reference:
		w, ok := abi.CoerceToUint32(v)
		if !ok {
			return numberError(v, path, "u32 offset")
		}
		return buf.WriteU32(off, w)

	case schema.NamedRef:
		if e.table.Enum(t.Name) != nil {
			return errors.Unsupported(errors.PhaseEncode, path, "inline enum "+t.Name)
		}
		info, err := e.calc.Struct(t.Name)
		if err != nil {
			return err
		}
		m, ok := v.(map[string]any)
		if !ok {
			return errors.TypeMismatch(errors.PhaseEncode, path, abi.TypeName(v), t.Name)
		}
		return e.encodeStruct(buf, off, info, m, path)
	}
	return errors.Unsupported(errors.PhaseEncode, path, fmt.Sprintf("field type %T", t))
}

func encodeScalar(k schema.ScalarKind, v any, path []string) (uint32, error) {
	switch k {
	case schema.I32:
		n, ok := abi.CoerceToInt32(v)
		if !ok {
			return 0, numberError(v, path, "i32")
		}
		return uint32(n), nil

	case schema.F32:
		f, ok := abi.CoerceToFloat32(v)
		if !ok {
			return 0, numberError(v, path, "f32")
		}
		return math.Float32bits(f), nil

	case schema.U32, schema.U16, schema.U8:
		n, ok := abi.CoerceToUint32(v)
		if !ok {
			return 0, numberError(v, path, k.String())
		}
		if (k == schema.U16 && n > math.MaxUint16) || (k == schema.U8 && n > math.MaxUint8) {
			return 0, errors.Overflow(errors.PhaseEncode, path, v, k.String())
		}
		return n, nil

	case schema.U16x2:
		return packLanes(k, v, 2, 16, path)

	case schema.U8x4:
		return packLanes(k, v, 4, 8, path)
	}
	return 0, errors.Unsupported(errors.PhaseEncode, path, "scalar "+k.String())
}

// packLanes packs a slice or array of small unsigned lanes into one word,
// lane 0 in the low bits. A plain number is taken as the packed word.
func packLanes(k schema.ScalarKind, v any, lanes int, bits uint, path []string) (uint32, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		if n, ok := abi.CoerceToUint32(v); ok {
			return n, nil
		}
		return 0, numberError(v, path, k.String())
	}
	if rv.Len() != lanes {
		return 0, errors.New(errors.PhaseEncode, errors.KindTypeMismatch).
			Path(path...).
			TypeName(k.String()).
			Detail("expected %d lanes, got %d", lanes, rv.Len()).
			Build()
	}

	limit := uint32(1)<<bits - 1
	var w uint32
	for i := 0; i < lanes; i++ {
		lane := rv.Index(i).Interface()
		lanePath := append(path[:len(path):len(path)], fmt.Sprint(i))
		n, ok := abi.CoerceToUint32(lane)
		if !ok {
			return 0, numberError(lane, lanePath, fmt.Sprintf("u%d lane", bits))
		}
		if n > limit {
			return 0, errors.Overflow(errors.PhaseEncode, lanePath, lane, fmt.Sprintf("u%d lane", bits))
		}
		w |= n << (bits * uint(i))
	}
	return w, nil
}

// numberError reports an out-of-range number as overflow and anything else
// as a type mismatch.
func numberError(v any, path []string, target string) *errors.Error {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return errors.Overflow(errors.PhaseEncode, path, v, target)
	case reflect.Float32, reflect.Float64:
		if f := rv.Float(); f == math.Trunc(f) {
			return errors.Overflow(errors.PhaseEncode, path, v, target)
		}
	}
	return errors.TypeMismatch(errors.PhaseEncode, path, abi.TypeName(v), target)
}
