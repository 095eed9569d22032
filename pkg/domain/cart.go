package domain

import "fmt"

// Quantity bounds for a single line item.
const (
	MinQuantity = 1
	MaxQuantity = 100
)

// LineItem is one committed entry of the cart. It is a value type and is
// never modified after NewLineItem returns it.
type LineItem struct {
	Item      string `json:"item"`
	UnitPrice int    `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	Total     int    `json:"total"`
}

// NewLineItem validates the quantity and price and computes the line total.
func NewLineItem(item string, unitPrice, quantity int) (LineItem, error) {
	if quantity < MinQuantity || quantity > MaxQuantity {
		return LineItem{}, NewValidationError("quantity",
			fmt.Sprintf("Quantity must be between %d and %d.", MinQuantity, MaxQuantity),
			ErrQuantityOutOfRange)
	}
	if unitPrice < 0 {
		return LineItem{}, &InvariantError{Detail: fmt.Sprintf("negative unit price %d for %q", unitPrice, item)}
	}
	return LineItem{
		Item:      item,
		UnitPrice: unitPrice,
		Quantity:  quantity,
		Total:     unitPrice * quantity,
	}, nil
}

// Cart is the ordered list of committed line items.
// It only grows through Append and only shrinks through Clear.
type Cart struct {
	lines []LineItem
}

// Append adds a line at the end of the cart.
func (c *Cart) Append(li LineItem) {
	c.lines = append(c.lines, li)
}

// Clear removes every line.
func (c *Cart) Clear() {
	c.lines = nil
}

// Lines returns a copy of the lines in insertion order.
func (c Cart) Lines() []LineItem {
	if len(c.lines) == 0 {
		return nil
	}
	out := make([]LineItem, len(c.lines))
	copy(out, c.lines)
	return out
}

// Len returns the number of lines.
func (c Cart) Len() int {
	return len(c.lines)
}

// IsEmpty reports whether the cart has no lines.
func (c Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Total sums the line totals. It is recomputed on every call.
func (c Cart) Total() int {
	total := 0
	for _, li := range c.lines {
		total += li.Total
	}
	return total
}

// Clone returns a cart that shares no memory with c.
func (c Cart) Clone() Cart {
	return Cart{lines: c.Lines()}
}

// RestoreCart rebuilds a cart from stored lines. Each line is validated
// again and must carry the total its price and quantity give.
func RestoreCart(lines []LineItem) (Cart, error) {
	var c Cart
	for _, stored := range lines {
		li, err := NewLineItem(stored.Item, stored.UnitPrice, stored.Quantity)
		if err != nil {
			return Cart{}, fmt.Errorf("line %q: %w", stored.Item, err)
		}
		if li.Total != stored.Total {
			return Cart{}, &InvariantError{Detail: fmt.Sprintf("line %q total %d, want %d", stored.Item, stored.Total, li.Total)}
		}
		c.Append(li)
	}
	return c, nil
}
