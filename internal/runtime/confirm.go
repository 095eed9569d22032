package runtime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/barista/pkg/domain"
)

// ErrNoSink is reported for every record when the engine has no sink.
var ErrNoSink = errors.New("no order sink configured")

const msgEmptyCart = "Please add some items first."

// confirm writes one record per cart line and moves to ThankYou.
// Sink failures are logged and turned into warnings; they never abort the loop.
func (e *Engine) confirm(ctx context.Context, s *Session) (effects, error) {
	var fx effects
	if s.cart.IsEmpty() {
		return fx, domain.NewValidationError("cart", msgEmptyCart, domain.ErrEmptyCart)
	}

	grandTotal := s.cart.Total()
	stamp := e.now().Truncate(time.Second)
	lines := s.cart.Lines()

	for _, li := range lines {
		rec := domain.OrderRecord{
			Timestamp:    stamp,
			CustomerName: s.customerName,
			ItemName:     li.Item,
			Quantity:     li.Quantity,
			UnitPrice:    li.UnitPrice,
			LineTotal:    li.Total,
			GrandTotal:   grandTotal,
		}

		err := e.persist(ctx, rec)
		e.emitRecordPersisted(ctx, rec, err)
		if err != nil {
			e.logger.Warn("failed to persist order line", "customer", rec.CustomerName, "item", rec.ItemName, "err", err)
			fx.warnings = append(fx.warnings, fmt.Sprintf("Error saving %s.", li.Item))
			continue
		}
		fx.persisted++
	}
	fx.records = len(lines)

	e.emitOrderConfirmed(ctx, domain.OrderEvent{
		CustomerName: s.customerName,
		Lines:        fx.records,
		GrandTotal:   grandTotal,
		Failed:       fx.records - fx.persisted,
	})
	e.logger.Info("order confirmed", "customer", s.customerName, "lines", fx.records, "grand_total", grandTotal, "failed", fx.records-fx.persisted)

	s.step = domain.StepThankYou
	return fx, nil
}

func (e *Engine) persist(ctx context.Context, rec domain.OrderRecord) error {
	if e.sink == nil {
		return ErrNoSink
	}
	return e.sink.Append(ctx, rec)
}
