package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()

	assert.Equal(t, []string{"Beverage", "Food"}, c.CategoryNames())

	price, ok := c.Price("Beverage", "Cold Brew")
	assert.True(t, ok)
	assert.Equal(t, 400, price)

	price, ok = c.Price("Food", "Sandwich")
	assert.True(t, ok)
	assert.Equal(t, 500, price)

	_, ok = c.Price("Food", "Cold Brew")
	assert.False(t, ok, "item lookup is scoped to its category")

	items, ok := c.Items("Beverage")
	require.True(t, ok)
	assert.Len(t, items, 5)
	assert.Equal(t, "Caramel Macchiato", items[0].Name)
}

func TestCatalog_IsImmutable(t *testing.T) {
	c := DefaultCatalog()

	items, _ := c.Items("Food")
	items[0].Price = 9999

	cats := c.Categories()
	cats[0].Items[0].Price = 9999

	price, _ := c.Price("Food", "Biscuit")
	assert.Equal(t, 200, price)
	again, _ := c.Items("Beverage")
	assert.Equal(t, 500, again[0].Price)
}

func TestNewCatalog_Validation(t *testing.T) {
	tests := []struct {
		name string
		cats []Category
	}{
		{"No Categories", nil},
		{"Blank Category", []Category{{Name: " ", Items: []MenuItem{{Name: "a", Price: 1}}}}},
		{"Empty Items", []Category{{Name: "Food"}}},
		{"Negative Price", []Category{{Name: "Food", Items: []MenuItem{{Name: "a", Price: -1}}}}},
		{"Duplicate Item", []Category{{Name: "Food", Items: []MenuItem{{Name: "a"}, {Name: "a"}}}}},
		{"Duplicate Category", []Category{
			{Name: "Food", Items: []MenuItem{{Name: "a"}}},
			{Name: "Food", Items: []MenuItem{{Name: "b"}}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.cats...)
			assert.ErrorIs(t, err, ErrInvalidCatalog)
		})
	}
}
