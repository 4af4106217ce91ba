package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/gpu-layout/bufenc"
	"github.com/wippyai/gpu-layout/compiler"
	"github.com/wippyai/gpu-layout/emit"
)

var (
	configPath string
	outputPath string
	verbose    bool

	log = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "gpulayout [schema...]",
	Short: "Compile GPU buffer schemas into Metal declarations",
	Long: `Compile struct and enum schemas into packed layouts and Metal Shading
Language accessors.

Schemas are read from .schema text files, .yaml files or WIT JSON (.json).
Without arguments, targets are read from the project file.

Examples:
  gpulayout scene.schema                   # Print generated source
  gpulayout scene.schema -o scene.h        # Write to a file
  gpulayout                                # Build every [[target]] in gpulayout.toml
  gpulayout check                          # Fail if committed outputs are stale
  gpulayout watch                          # Rebuild on change
  gpulayout inspect -i                     # Browse computed layouts`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
	RunE:              runGenerate,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigFile, "Project file listing [[target]] entries")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file (default: stdout)")

	rootCmd.AddCommand(checkCmd, watchCmd, inspectCmd, encodeCmd)
}

func setupLogging(cmd *cobra.Command, args []string) error {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.DisableStacktrace = true

	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	log = l
	compiler.SetLogger(l)
	emit.SetLogger(l)
	bufenc.SetLogger(l)
	return nil
}

func main() {
	err := rootCmd.Execute()
	_ = log.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if err == errStale {
			os.Exit(1)
		}
		os.Exit(2)
	}
}
