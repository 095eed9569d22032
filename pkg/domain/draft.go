package domain

// Draft is the uncommitted selection built between choosing a category and
// adding the item to the cart.
type Draft struct {
	category string
	item     string
	price    int
}

// SetCategory starts a selection in the named category.
// Any previously chosen item is dropped.
func (d *Draft) SetCategory(c *Catalog, name string) error {
	if !c.HasCategory(name) {
		return NewValidationError("category", "Please choose a category from the menu.", ErrUnknownCategory)
	}
	d.category = name
	d.item = ""
	d.price = 0
	return nil
}

// SetItem selects an item of the current category and records its price.
func (d *Draft) SetItem(c *Catalog, name string) error {
	if d.category == "" {
		return NewValidationError("item", "Please choose a category first.", ErrNoCategory)
	}
	price, ok := c.Price(d.category, name)
	if !ok {
		return NewValidationError("item", "Please choose an item from the list.", ErrUnknownItem)
	}
	d.item = name
	d.price = price
	return nil
}

// DropItem forgets the item and price but keeps the category.
func (d *Draft) DropItem() {
	d.item = ""
	d.price = 0
}

// Clear empties the draft. Calling it on an empty draft is a no-op.
func (d *Draft) Clear() {
	*d = Draft{}
}

// Category returns the selected category, if any.
func (d Draft) Category() (string, bool) {
	return d.category, d.category != ""
}

// Item returns the selected item, if any.
func (d Draft) Item() (string, bool) {
	return d.item, d.item != ""
}

// Price returns the unit price of the selected item (0 when unset).
func (d Draft) Price() int {
	return d.price
}

// Complete reports whether category and item are both set.
func (d Draft) Complete() bool {
	return d.category != "" && d.item != ""
}

// Empty reports whether nothing has been selected.
func (d Draft) Empty() bool {
	return d == Draft{}
}

// Snapshot exports the draft for serialization.
func (d Draft) Snapshot() DraftSnapshot {
	return DraftSnapshot{Category: d.category, Item: d.item, Price: d.price}
}

// DraftSnapshot is the serializable form of a Draft.
type DraftSnapshot struct {
	Category string `json:"category,omitempty"`
	Item     string `json:"item,omitempty"`
	Price    int    `json:"price"`
}

// Restore rebuilds the draft the snapshot was taken from.
// The values are not checked against a catalog.
func (s DraftSnapshot) Restore() Draft {
	return Draft{category: s.Category, item: s.Item, price: s.Price}
}
