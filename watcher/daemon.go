package watcher

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kevwatch/kevwatch/notify"
)

// DefaultInterval is the time between sync cycles when none is configured.
const DefaultInterval = time.Hour

// Daemon runs the sync engine on a fixed interval until its context is
// cancelled. Webhook sinks are reloaded from configuration every cycle so
// edits take effect without a restart.
type Daemon struct {
	engine      *Engine
	notifier    *notify.Notifier
	webhookPath string
	interval    time.Duration
	logger      *zap.Logger
}

// NewDaemon creates a Daemon. A non-positive interval falls back to
// DefaultInterval.
func NewDaemon(engine *Engine, notifier *notify.Notifier, webhookPath string, interval time.Duration, logger *zap.Logger) *Daemon {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Daemon{
		engine:      engine,
		notifier:    notifier,
		webhookPath: webhookPath,
		interval:    interval,
		logger:      logger,
	}
}

// Run executes one cycle immediately and then once per interval. A failing
// cycle is logged and the loop keeps going; cancelling ctx interrupts the
// inter-cycle wait and returns cleanly.
func (d *Daemon) Run(ctx context.Context) {
	d.logger.Info("Starting KEV watcher daemon", zap.Duration("interval", d.interval))

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		d.runCycle(ctx)

		select {
		case <-ctx.Done():
			d.logger.Info("KEV watcher daemon stopped")
			return
		case <-ticker.C:
		}
	}
}

func (d *Daemon) runCycle(ctx context.Context) {
	newRecords, err := d.engine.SyncOnce(ctx)
	if err != nil {
		d.logger.Error("Sync cycle failed", zap.Error(err))
		return
	}
	if len(newRecords) == 0 {
		d.logger.Info("No new KEVs detected")
		return
	}

	sinks := notify.LoadWebhooks(d.webhookPath, d.logger)
	d.notifier.Send(ctx, newRecords, sinks)
}
