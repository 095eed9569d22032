package domain

import (
	"strconv"
	"time"
)

// TimestampLayout is the second-precision local time format used in records.
const TimestampLayout = "2006-01-02 15:04:05"

// OrderRecord is one line of a confirmed order as handed to the sink.
// All records of the same confirmation share Timestamp and GrandTotal.
type OrderRecord struct {
	Timestamp    time.Time `json:"-"`
	CustomerName string    `json:"customer_name"`
	ItemName     string    `json:"item_name"`
	Quantity     int       `json:"quantity"`
	UnitPrice    int       `json:"unit_price"`
	LineTotal    int       `json:"line_total"`
	GrandTotal   int       `json:"grand_total"`
}

// RecordHeader names the Row columns.
var RecordHeader = []string{
	"timestamp",
	"customer_name",
	"item_name",
	"quantity",
	"unit_price",
	"line_total",
	"grand_total",
}

// FormattedTimestamp renders the timestamp in local time.
func (r OrderRecord) FormattedTimestamp() string {
	return r.Timestamp.Local().Format(TimestampLayout)
}

// Values returns the record fields in sink order.
func (r OrderRecord) Values() []any {
	return []any{
		r.FormattedTimestamp(),
		r.CustomerName,
		r.ItemName,
		r.Quantity,
		r.UnitPrice,
		r.LineTotal,
		r.GrandTotal,
	}
}

// Row returns the record fields as strings in sink order.
func (r OrderRecord) Row() []string {
	return []string{
		r.FormattedTimestamp(),
		r.CustomerName,
		r.ItemName,
		strconv.Itoa(r.Quantity),
		strconv.Itoa(r.UnitPrice),
		strconv.Itoa(r.LineTotal),
		strconv.Itoa(r.GrandTotal),
	}
}

// recordJSON fixes the key order of the wire form.
type recordJSON struct {
	Timestamp    string `json:"timestamp"`
	CustomerName string `json:"customer_name"`
	ItemName     string `json:"item_name"`
	Quantity     int    `json:"quantity"`
	UnitPrice    int    `json:"unit_price"`
	LineTotal    int    `json:"line_total"`
	GrandTotal   int    `json:"grand_total"`
}

// Wire returns the JSON-friendly form with the formatted timestamp first.
func (r OrderRecord) Wire() any {
	return recordJSON{
		Timestamp:    r.FormattedTimestamp(),
		CustomerName: r.CustomerName,
		ItemName:     r.ItemName,
		Quantity:     r.Quantity,
		UnitPrice:    r.UnitPrice,
		LineTotal:    r.LineTotal,
		GrandTotal:   r.GrandTotal,
	}
}
