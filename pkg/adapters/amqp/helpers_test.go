package amqp_test

import (
	"time"

	"github.com/aretw0/barista/pkg/domain"
)

func sampleRecord() domain.OrderRecord {
	return domain.OrderRecord{
		Timestamp:    time.Date(2026, 5, 6, 7, 8, 9, 0, time.Local),
		CustomerName: "Noor",
		ItemName:     "Cold Brew",
		Quantity:     1,
		UnitPrice:    400,
		LineTotal:    400,
		GrandTotal:   400,
	}
}
