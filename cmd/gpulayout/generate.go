package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/gpu-layout/compiler"
	"github.com/wippyai/gpu-layout/errors"
)

func runGenerate(cmd *cobra.Command, args []string) error {
	targets, err := resolveTargets(args, outputPath, configPath)
	if err != nil {
		return err
	}
	for _, t := range targets {
		if err := buildTarget(t, cmd.OutOrStdout()); err != nil {
			return err
		}
	}
	return nil
}

// compileTarget reads and compiles one schema file.
func compileTarget(t target) (*compiler.Result, error) {
	src, err := os.ReadFile(t.Schema)
	if err != nil {
		return nil, errors.Load("read schema "+t.Schema, err)
	}
	res, err := compiler.CompileSource(t.Schema, src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", t.Schema, err)
	}
	return res, nil
}

func buildTarget(t target, stdout io.Writer) error {
	res, err := compileTarget(t)
	if err != nil {
		return err
	}
	if t.Output == "" {
		_, err := io.WriteString(stdout, res.Text)
		return err
	}

	if err := os.MkdirAll(filepath.Dir(t.Output), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(t.Output, []byte(res.Text), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	log.Info("generated",
		zap.String("schema", t.Schema),
		zap.String("output", t.Output),
		zap.Int("types", len(res.Table.Decls())))
	return nil
}
