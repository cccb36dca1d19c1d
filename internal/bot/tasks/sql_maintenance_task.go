package tasks

import (
	"context"
	"fmt"
	"time"
)

// newSQLMaintenanceTask creates the nightly storage maintenance task. The
// message log is append-only and grows with every classified message, so the
// store's VACUUM pass is the only thing keeping file size in check.
func newSQLMaintenanceTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "sql_maintenance")

	return func(ctx context.Context) error {
		log.InfoContext(ctx, "Starting storage maintenance...")
		start := time.Now()

		if err := deps.Store.RunSQLMaintenance(ctx); err != nil {
			log.ErrorContext(ctx, "Storage maintenance failed", "error", err, "duration", time.Since(start))
			return fmt.Errorf("sql maintenance failed: %w", err)
		}

		log.InfoContext(ctx, "Storage maintenance completed", "duration", time.Since(start))
		return nil
	}
}
