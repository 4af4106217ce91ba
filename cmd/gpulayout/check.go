package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"
)

var errStale = errors.New("generated output is out of date")

var checkCmd = &cobra.Command{
	Use:   "check [schema...]",
	Short: "Verify that generated outputs match their schemas",
	Long: `Regenerate every target in memory and compare it with the file on disk.
A unified diff is printed for each stale output and the command exits 1.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file to compare against")
}

func runCheck(cmd *cobra.Command, args []string) error {
	targets, err := resolveTargets(args, outputPath, configPath)
	if err != nil {
		return err
	}

	stale := false
	for _, t := range targets {
		if t.Output == "" {
			return fmt.Errorf("%s: check needs an output file", t.Schema)
		}
		res, err := compileTarget(t)
		if err != nil {
			return err
		}
		current, err := os.ReadFile(t.Output)
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("read output: %w", err)
		}

		diff, err := outputDiff(t.Output, string(current), res.Text)
		if err != nil {
			return err
		}
		if diff != "" {
			stale = true
			fmt.Fprint(cmd.OutOrStdout(), diff)
		}
	}
	if stale {
		return errStale
	}
	return nil
}

// outputDiff returns a unified diff from the file contents to the freshly
// generated text, or "" when they are identical.
func outputDiff(path, current, generated string) (string, error) {
	if current == generated {
		return "", nil
	}
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(current),
		B:        difflib.SplitLines(generated),
		FromFile: path,
		ToFile:   path + " (generated)",
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("diff %s: %w", path, err)
	}
	return text, nil
}
