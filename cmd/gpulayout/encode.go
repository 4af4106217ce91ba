package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/gpu-layout/bufenc"
	"github.com/wippyai/gpu-layout/compiler"
)

var (
	valuesPath string
	encodeRef  uint32
)

var encodeCmd = &cobra.Command{
	Use:   "encode SCHEMA TYPE [VARIANT]",
	Short: "Pack a value document into buffer bytes",
	Long: `Encode a YAML or JSON value document with the layout of TYPE.

For a struct the document is a mapping of field names to values. For an enum
VARIANT is required and the document is a sequence of payload values (omit it
for variants without payload). Vectors are sequences, packed u16x2 and u8x4
fields take either a sequence of lanes or the packed word.

Examples:
  gpulayout encode scene.schema BBox -f bbox.yaml -o bbox.bin
  echo '[{"center": [1, 2], "radius": 3}]' | gpulayout encode scene.schema PietItem Circle`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runEncode,
}

func init() {
	encodeCmd.Flags().StringVarP(&valuesPath, "values", "f", "-", "Value document (- for stdin)")
	encodeCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file (default: stdout)")
	encodeCmd.Flags().Uint32Var(&encodeRef, "ref", 0, "Byte offset of the value in the buffer")
}

func runEncode(cmd *cobra.Command, args []string) error {
	res, err := compileTarget(target{Schema: args[0]})
	if err != nil {
		return err
	}

	var doc []byte
	if valuesPath == "-" {
		doc, err = io.ReadAll(cmd.InOrStdin())
	} else {
		doc, err = os.ReadFile(valuesPath)
	}
	if err != nil {
		return fmt.Errorf("read values: %w", err)
	}

	variant := ""
	if len(args) == 3 {
		variant = args[2]
	}
	data, err := encodeDocument(res, args[1], variant, encodeRef, doc)
	if err != nil {
		return err
	}

	if outputPath == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	log.Info("encoded",
		zap.String("type", args[1]),
		zap.String("output", outputPath),
		zap.Int("bytes", len(data)))
	return nil
}

// encodeDocument decodes doc and packs it at ref into a buffer sized to hold
// exactly one value of typeName.
func encodeDocument(res *compiler.Result, typeName, variant string, ref uint32, doc []byte) ([]byte, error) {
	var value any
	if err := yaml.NewDecoder(bytes.NewReader(doc)).Decode(&value); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode values: %w", err)
	}

	enc := bufenc.NewEncoder(res.Table)
	switch {
	case res.Struct(typeName) != nil:
		if variant != "" {
			return nil, fmt.Errorf("%s is a struct, variant %q not allowed", typeName, variant)
		}
		fields, ok := value.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s: values must be a mapping, got %T", typeName, value)
		}
		buf := bufenc.NewByteBuffer(ref + res.Struct(typeName).Size)
		if err := enc.EncodeStruct(buf, ref, typeName, fields); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil

	case res.Enum(typeName) != nil:
		if variant == "" {
			return nil, fmt.Errorf("%s is an enum, a variant is required", typeName)
		}
		var payload []any
		switch v := value.(type) {
		case nil:
		case []any:
			payload = v
		default:
			return nil, fmt.Errorf("%s.%s: payload must be a sequence, got %T", typeName, variant, value)
		}
		buf := bufenc.NewByteBuffer(ref + res.Enum(typeName).Size)
		if err := enc.EncodeEnum(buf, ref, typeName, variant, payload...); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("type %q is not declared", typeName)
}
