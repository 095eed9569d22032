package ports

import (
	"context"

	"github.com/aretw0/barista/pkg/domain"
)

// OrderSink is the append-only destination for confirmed order lines.
// Each Append is expected to be atomic. Callers treat failures as non-fatal.
type OrderSink interface {
	Append(ctx context.Context, record domain.OrderRecord) error
}

// SinkFunc adapts a function into an OrderSink.
type SinkFunc func(ctx context.Context, record domain.OrderRecord) error

// Append calls f.
func (f SinkFunc) Append(ctx context.Context, record domain.OrderRecord) error {
	return f(ctx, record)
}

// Closer is implemented by sinks that hold connections or files.
type Closer interface {
	Close() error
}
