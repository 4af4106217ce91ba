package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var watchCmd = &cobra.Command{
	Use:   "watch [schema...]",
	Short: "Regenerate outputs whenever a schema changes",
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file (default: stdout)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	targets, err := resolveTargets(args, outputPath, configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return watchTargets(ctx, targets, func(t target) {
		if err := buildTarget(t, cmd.OutOrStdout()); err != nil {
			log.Error("generate failed", zap.String("schema", t.Schema), zap.Error(err))
		}
	})
}

// watchTargets builds every target once, then again each time its schema is
// written. Directories are watched rather than files so editors that replace
// files on save are still seen.
func watchTargets(ctx context.Context, targets []target, build func(target)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	bySchema := make(map[string][]target)
	dirs := make(map[string]bool)
	for _, t := range targets {
		abs, err := filepath.Abs(t.Schema)
		if err != nil {
			return err
		}
		bySchema[abs] = append(bySchema[abs], t)
		dir := filepath.Dir(abs)
		if !dirs[dir] {
			if err := w.Add(dir); err != nil {
				return fmt.Errorf("watch %s: %w", dir, err)
			}
			dirs[dir] = true
		}
	}

	for _, t := range targets {
		build(t)
	}
	log.Info("watching", zap.Int("schemas", len(bySchema)), zap.Int("dirs", len(dirs)))

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			abs, err := filepath.Abs(ev.Name)
			if err != nil {
				continue
			}
			for _, t := range bySchema[abs] {
				log.Debug("schema changed", zap.String("schema", t.Schema), zap.Stringer("op", ev.Op))
				build(t)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", zap.Error(err))
		}
	}
}
