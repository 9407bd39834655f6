package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ersonp/sarcheck/internal/domain/entities"
	"github.com/ersonp/sarcheck/internal/domain/services"
	"github.com/ersonp/sarcheck/internal/infrastructure/config"
)

const watchDebounce = 200 * time.Millisecond

type watchFlags struct {
	records string
	format  string
}

func newWatchCmd() *cobra.Command {
	var flags watchFlags

	cmd := &cobra.Command{
		Use:   "watch <narrative-file>",
		Short: "Re-check a narrative every time it is saved",
		Long:  "Watches a narrative file and prints a fresh checklist report after each save. Stop with Ctrl-C.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.records, "records", "r", "", "Evidence file (json, csv, xlsx)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "text", "Output format (text, markdown, json)")

	return cmd
}

func runWatch(cmd *cobra.Command, path string, flags watchFlags) error {
	if err := checkFormat(flags.format, reportFormats); err != nil {
		return err
	}
	records, err := loadRecords(flags.records)
	if err != nil {
		return err
	}

	return withEngine(func(_ *config.Config, rules *services.RuleSet) error {
		out := cmd.OutOrStdout()
		w := newNarrativeWatcher(path, rules, services.Extract(records), func(report *entities.ComplianceReport, err error) {
			if err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				return
			}
			fmt.Fprintf(out, "--- %s checked at %s ---\n", filepath.Base(path), time.Now().Format(time.TimeOnly))
			if err := writeReport(out, report, flags.format); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			}
		})

		fmt.Fprintf(out, "Watching %s. Press Ctrl-C to stop.\n", path)
		return w.Run(cmd.Context())
	})
}

// narrativeWatcher re-evaluates a narrative file whenever it changes.
type narrativeWatcher struct {
	path     string
	rules    *services.RuleSet
	facts    entities.FiveWs
	debounce time.Duration
	onCheck  func(*entities.ComplianceReport, error)
}

func newNarrativeWatcher(path string, rules *services.RuleSet, facts entities.FiveWs, onCheck func(*entities.ComplianceReport, error)) *narrativeWatcher {
	return &narrativeWatcher{
		path:     filepath.Clean(path),
		rules:    rules,
		facts:    facts,
		debounce: watchDebounce,
		onCheck:  onCheck,
	}
}

// Run checks the file once, then again after each burst of writes, until
// ctx is done. The parent directory is watched so editors that save by
// rename are still seen.
func (w *narrativeWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watching %s: %w", w.path, err)
	}

	w.check()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			zap.L().Warn("watch error", zap.String("path", w.path), zap.Error(err))

		case <-fire:
			fire = nil
			w.check()
		}
	}
}

func (w *narrativeWatcher) check() {
	data, err := os.ReadFile(w.path)
	if err != nil {
		w.onCheck(nil, fmt.Errorf("reading narrative: %w", err))
		return
	}
	w.onCheck(w.rules.Evaluate(string(data), w.facts), nil)
}
