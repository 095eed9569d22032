package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraft_Lifecycle(t *testing.T) {
	c := DefaultCatalog()
	var d Draft
	assert.True(t, d.Empty())

	require.NoError(t, d.SetCategory(c, "Beverage"))
	cat, ok := d.Category()
	assert.True(t, ok)
	assert.Equal(t, "Beverage", cat)
	assert.False(t, d.Complete())

	require.NoError(t, d.SetItem(c, "Vanilla Latte"))
	assert.True(t, d.Complete())
	assert.Equal(t, 600, d.Price())

	d.DropItem()
	_, ok = d.Item()
	assert.False(t, ok)
	assert.Equal(t, 0, d.Price())
	cat, _ = d.Category()
	assert.Equal(t, "Beverage", cat)

	d.Clear()
	assert.True(t, d.Empty())
	d.Clear()
	assert.True(t, d.Empty())
}

func TestDraft_Rejections(t *testing.T) {
	c := DefaultCatalog()
	var d Draft

	assert.ErrorIs(t, d.SetItem(c, "Donut"), ErrNoCategory)
	assert.ErrorIs(t, d.SetCategory(c, "Dessert"), ErrUnknownCategory)
	assert.True(t, d.Empty(), "rejections leave the draft untouched")

	require.NoError(t, d.SetCategory(c, "Food"))
	assert.ErrorIs(t, d.SetItem(c, "Cold Brew"), ErrUnknownItem)
	_, ok := d.Item()
	assert.False(t, ok)
}
