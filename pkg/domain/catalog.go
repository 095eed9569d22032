package domain

import (
	"fmt"
	"strings"
)

// MenuItem is a single priced entry of a category.
type MenuItem struct {
	Name  string `json:"name" yaml:"name"`
	Price int    `json:"price" yaml:"price"`
}

// Category groups menu items under a name such as "Beverage".
type Category struct {
	Name  string     `json:"name" yaml:"name"`
	Items []MenuItem `json:"items" yaml:"items"`
}

// Catalog is the read-only menu. Category and item order is preserved for display.
// A Catalog is safe for concurrent use because nothing mutates it after NewCatalog.
type Catalog struct {
	categories []Category
	prices     map[string]map[string]int
}

// NewCatalog validates the categories and builds an immutable catalog.
func NewCatalog(categories ...Category) (*Catalog, error) {
	if len(categories) == 0 {
		return nil, fmt.Errorf("%w: no categories", ErrInvalidCatalog)
	}

	c := &Catalog{
		categories: make([]Category, 0, len(categories)),
		prices:     make(map[string]map[string]int, len(categories)),
	}

	for _, cat := range categories {
		name := strings.TrimSpace(cat.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: category without a name", ErrInvalidCatalog)
		}
		if _, dup := c.prices[name]; dup {
			return nil, fmt.Errorf("%w: duplicate category %q", ErrInvalidCatalog, name)
		}
		if len(cat.Items) == 0 {
			return nil, fmt.Errorf("%w: category %q has no items", ErrInvalidCatalog, name)
		}

		items := make([]MenuItem, 0, len(cat.Items))
		prices := make(map[string]int, len(cat.Items))
		for _, it := range cat.Items {
			itemName := strings.TrimSpace(it.Name)
			if itemName == "" {
				return nil, fmt.Errorf("%w: item without a name in %q", ErrInvalidCatalog, name)
			}
			if _, dup := prices[itemName]; dup {
				return nil, fmt.Errorf("%w: duplicate item %q in %q", ErrInvalidCatalog, itemName, name)
			}
			if it.Price < 0 {
				return nil, fmt.Errorf("%w: negative price for %q", ErrInvalidCatalog, itemName)
			}
			prices[itemName] = it.Price
			items = append(items, MenuItem{Name: itemName, Price: it.Price})
		}

		c.prices[name] = prices
		c.categories = append(c.categories, Category{Name: name, Items: items})
	}

	return c, nil
}

// DefaultCatalog returns the café's standard two-category menu.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(
		Category{Name: "Beverage", Items: []MenuItem{
			{Name: "Caramel Macchiato", Price: 500},
			{Name: "Cold Brew", Price: 400},
			{Name: "Earl Grey Tea", Price: 300},
			{Name: "Java Chip Frappe", Price: 700},
			{Name: "Vanilla Latte", Price: 600},
		}},
		Category{Name: "Food", Items: []MenuItem{
			{Name: "Biscuit", Price: 200},
			{Name: "Croissant", Price: 400},
			{Name: "Donut", Price: 300},
			{Name: "Naan", Price: 600},
			{Name: "Sandwich", Price: 500},
		}},
	)
	if err != nil {
		panic(err)
	}
	return c
}

// CategoryNames lists category names in menu order.
func (c *Catalog) CategoryNames() []string {
	names := make([]string, len(c.categories))
	for i, cat := range c.categories {
		names[i] = cat.Name
	}
	return names
}

// HasCategory reports whether name is a known category.
func (c *Catalog) HasCategory(name string) bool {
	_, ok := c.prices[name]
	return ok
}

// Items returns a copy of the items of a category in menu order.
func (c *Catalog) Items(category string) ([]MenuItem, bool) {
	for _, cat := range c.categories {
		if cat.Name == category {
			out := make([]MenuItem, len(cat.Items))
			copy(out, cat.Items)
			return out, true
		}
	}
	return nil, false
}

// Price looks up the unit price of item within category.
func (c *Catalog) Price(category, item string) (int, bool) {
	items, ok := c.prices[category]
	if !ok {
		return 0, false
	}
	price, ok := items[item]
	return price, ok
}

// Categories returns a deep copy of the menu.
func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.categories))
	for i, cat := range c.categories {
		items := make([]MenuItem, len(cat.Items))
		copy(items, cat.Items)
		out[i] = Category{Name: cat.Name, Items: items}
	}
	return out
}
