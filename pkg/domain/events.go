package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStepEnter       EventType = "step_enter"
	EventStepLeave       EventType = "step_leave"
	EventOrderConfirmed  EventType = "order_confirmed"
	EventRecordPersisted EventType = "record_persisted"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// StepEvent represents entry into or exit from a step.
type StepEvent struct {
	EventBase
	Step   Step       `json:"step"`
	Action ActionType `json:"action,omitempty"`
}

// OrderEvent is emitted once per confirmation, after every record was attempted.
type OrderEvent struct {
	EventBase
	CustomerName string `json:"customer_name"`
	Lines        int    `json:"lines"`
	GrandTotal   int    `json:"grand_total"`
	Failed       int    `json:"failed"`
}

// RecordEvent reports the outcome of a single sink append.
type RecordEvent struct {
	EventBase
	Record OrderRecord `json:"record"`
	Err    error       `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
// Nil callbacks are skipped.
type LifecycleHooks struct {
	OnStepEnter       func(context.Context, *StepEvent)
	OnStepLeave       func(context.Context, *StepEvent)
	OnOrderConfirmed  func(context.Context, *OrderEvent)
	OnRecordPersisted func(context.Context, *RecordEvent)
}

// Merge chains two hook sets; h runs before other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnStepEnter:       chain(h.OnStepEnter, other.OnStepEnter),
		OnStepLeave:       chain(h.OnStepLeave, other.OnStepLeave),
		OnOrderConfirmed:  chain(h.OnOrderConfirmed, other.OnOrderConfirmed),
		OnRecordPersisted: chain(h.OnRecordPersisted, other.OnRecordPersisted),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
