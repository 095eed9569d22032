package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/aretw0/barista/pkg/adapters/csv"
	"github.com/aretw0/barista/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintMenu(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintMenu(&buf, "", false))
	assert.Contains(t, buf.String(), "BEVERAGE")
	assert.Contains(t, buf.String(), "Cold Brew")
	assert.Contains(t, buf.String(), "¥400")

	buf.Reset()
	require.NoError(t, PrintMenu(&buf, "", true))
	assert.Contains(t, buf.String(), "categories:")
	assert.Contains(t, buf.String(), "name: Java Chip Frappe")
}

func TestPrintOrders(t *testing.T) {
	ctx := context.Background()
	configPath, ordersPath := csvConfig(t)

	var buf bytes.Buffer
	require.NoError(t, PrintOrders(ctx, &buf, configPath))
	assert.Equal(t, "No orders found.\n", buf.String())

	require.NoError(t, csv.New(ordersPath).Append(ctx, domain.OrderRecord{
		CustomerName: "Bo", ItemName: "Donut", Quantity: 2, UnitPrice: 300, LineTotal: 600, GrandTotal: 600,
	}))

	buf.Reset()
	require.NoError(t, PrintOrders(ctx, &buf, configPath))
	assert.Contains(t, buf.String(), "customer_name")
	assert.Contains(t, buf.String(), "Donut")
}
