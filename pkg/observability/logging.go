package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/barista/pkg/domain"
)

// LoggingHooks logs every lifecycle event with slog.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(ctx context.Context, e *domain.StepEvent) {
			logger.DebugContext(ctx, "step_enter", "step", e.Step, "action", e.Action)
		},
		OnStepLeave: func(ctx context.Context, e *domain.StepEvent) {
			logger.DebugContext(ctx, "step_leave", "step", e.Step, "action", e.Action)
		},
		OnRecordPersisted: func(ctx context.Context, e *domain.RecordEvent) {
			if e.Err != nil {
				logger.WarnContext(ctx, "record_persisted", "item", e.Record.ItemName, "err", e.Err)
				return
			}
			logger.DebugContext(ctx, "record_persisted", "item", e.Record.ItemName, "line_total", e.Record.LineTotal)
		},
		OnOrderConfirmed: func(ctx context.Context, e *domain.OrderEvent) {
			logger.InfoContext(ctx, "order_confirmed",
				"customer", e.CustomerName,
				"lines", e.Lines,
				"grand_total", e.GrandTotal,
				"failed", e.Failed,
			)
		},
	}
}
