package tasks

import (
	"context"
	"fmt"
	"time"
)

// newAlertScanTask creates the scheduled task that runs the mood alert scan
// over all active chats.
func newAlertScanTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "alert_scan")

	return func(ctx context.Context) error {
		log.InfoContext(ctx, "Starting scheduled mood alert scan...")
		startTime := time.Now()

		err := deps.AlertEngine.Scan(ctx, startTime.UTC())

		duration := time.Since(startTime)

		if err != nil {
			log.ErrorContext(ctx, "Mood alert scan failed", "error", err, "duration", duration)
			return fmt.Errorf("alert scan failed: %w", err)
		}

		log.InfoContext(ctx, "Scheduled mood alert scan completed successfully", "duration", duration)
		return nil
	}
}
