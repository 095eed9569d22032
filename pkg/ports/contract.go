package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/barista/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RowReader reads back every row an OrderSink has stored, oldest first,
// in domain.OrderRecord.Row form.
type RowReader func(ctx context.Context) ([][]string, error)

// RunOrderSinkContract runs a suite of tests to verify that an OrderSink implementation
// adheres to the defined interface contract. The sink must start empty.
func RunOrderSinkContract(t *testing.T, sink OrderSink, read RowReader) {
	ctx := context.Background()
	ts := time.Date(2026, 10, 18, 9, 30, 15, 0, time.Local)

	records := []domain.OrderRecord{
		{Timestamp: ts, CustomerName: "Alice", ItemName: "Cold Brew", Quantity: 2, UnitPrice: 400, LineTotal: 800, GrandTotal: 1400},
		{Timestamp: ts, CustomerName: "Alice", ItemName: "Naan", Quantity: 1, UnitPrice: 600, LineTotal: 600, GrandTotal: 1400},
	}

	t.Run("Append Preserves Order and Fields", func(t *testing.T) {
		for _, rec := range records {
			require.NoError(t, sink.Append(ctx, rec), "Append should not return error")
		}

		rows, err := read(ctx)
		require.NoError(t, err)
		require.Len(t, rows, len(records))

		for i, rec := range records {
			assert.Equal(t, rec.Row(), rows[i], "row %d", i)
		}
		assert.Equal(t, "2026-10-18 09:30:15", rows[0][0])
	})
}
