// Command mamacare-export writes one child's records to an xlsx workbook.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	logpkg "mamacare-sync/common/logger"
	"mamacare-sync/internal/config"
	"mamacare-sync/internal/export"
	"mamacare-sync/internal/service"
)

func main() {
	childID := flag.String("child", "", "child id (defaults to the selected child)")
	out := flag.String("out", "", "output path (defaults to <child>-<date>.xlsx)")
	timeout := flag.Duration("timeout", time.Minute, "overall timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	// one-shot: no feed, no dashboards, no metrics listener
	cfg.ChangeFeed.Mode = "none"
	cfg.Dashboard.Enabled = false
	cfg.MetricsAddr = ""

	log, err := logpkg.NewLogger(cfg.Log.Level, cfg.Log.Format, "mamacare-export")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := run(ctx, cfg, log, *childID, *out); err != nil {
		log.Error("Export failed", zap.Error(err))
		log.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger, childID, out string) error {
	svc, err := service.Build(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer svc.Stop(ctx)

	session := svc.Session()
	if err := session.Refresh(ctx); err != nil {
		// partial data still exports; only the children list is required
		if len(session.Children()) == 0 {
			return err
		}
		log.Warn("Refresh incomplete", zap.Error(err))
	}

	child, ok := session.SelectedChild()
	if childID != "" {
		child, ok = session.ChildByID(childID)
	}
	if !ok {
		return fmt.Errorf("child not found: %q", childID)
	}

	now := session.Now()
	data, err := export.GenerateChildReport(session.Snapshot(), child, session.Catalog(), now)
	if err != nil {
		return err
	}

	if out == "" {
		out = fmt.Sprintf("%s-%s.xlsx", child.ID, now.Format("20060102"))
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	log.Info("Report written", zap.String("child_id", child.ID), zap.String("path", out), zap.Int("bytes", len(data)))
	return nil
}
