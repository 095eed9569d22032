package postgres

import (
	"context"
	"fmt"

	"github.com/aretw0/barista/pkg/domain"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBPool matches the methods from *pgxpool.Pool that the sink uses.
// This allows us to fake the database in tests.
type DBPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

const insertLine = `
	INSERT INTO order_lines(ordered_at, customer_name, item_name, quantity, unit_price, line_total, grand_total)
	VALUES($1, $2, $3, $4, $5, $6, $7)
`

// Sink implements ports.OrderSink with one INSERT per record.
type Sink struct {
	pool DBPool
}

func NewSink(pool DBPool) *Sink {
	return &Sink{pool: pool}
}

// Append inserts the record. A single statement is atomic on its own.
func (s *Sink) Append(ctx context.Context, record domain.OrderRecord) error {
	tag, err := s.pool.Exec(ctx, insertLine,
		record.Timestamp.Local(),
		record.CustomerName,
		record.ItemName,
		record.Quantity,
		record.UnitPrice,
		record.LineTotal,
		record.GrandTotal,
	)
	if err != nil {
		return fmt.Errorf("insert order line: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("insert order line: %d rows affected", tag.RowsAffected())
	}
	return nil
}
