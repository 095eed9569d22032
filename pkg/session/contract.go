package session

import (
	"context"
	"testing"

	"github.com/aretw0/barista"
	"github.com/aretw0/barista/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStoreContract runs a suite of tests to verify that a Store
// implementation adheres to the interface contract. The store must start
// empty.
func RunStoreContract(t *testing.T, store Store) {
	ctx := context.Background()
	engine := barista.New()

	t.Run("Load Unknown", func(t *testing.T) {
		_, err := store.Load(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Save and Load Round Trip", func(t *testing.T) {
		s := engine.Start(ctx)
		for _, a := range []domain.Action{
			domain.Begin{},
			domain.SubmitName{Name: "Alice"},
			domain.ChooseCategory{Category: "Beverage"},
			domain.SelectItem{Item: "Cold Brew"},
			domain.AddToCart{Quantity: 2},
			domain.ChooseCategory{Category: "Food"},
		} {
			_, err := engine.Dispatch(ctx, s, a)
			require.NoError(t, err)
		}
		require.NoError(t, store.Save(ctx, "alpha", s))

		loaded, err := store.Load(ctx, "alpha")
		require.NoError(t, err)
		require.NoError(t, engine.Check(loaded))
		assert.Equal(t, s.Snapshot(), loaded.Snapshot())
	})

	t.Run("Loaded Sessions Are Independent", func(t *testing.T) {
		loaded, err := store.Load(ctx, "alpha")
		require.NoError(t, err)
		_, err = engine.Dispatch(ctx, loaded, domain.Back{})
		require.NoError(t, err)

		again, err := store.Load(ctx, "alpha")
		require.NoError(t, err)
		assert.Equal(t, domain.StepItemPicker, again.Step())
	})

	t.Run("List and Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "beta", barista.NewSession()))

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"alpha", "beta"}, ids)

		require.NoError(t, store.Delete(ctx, "beta"))
		_, err = store.Load(ctx, "beta")
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)

		ids, err = store.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"alpha"}, ids)

		assert.NoError(t, store.Delete(ctx, "beta"), "deleting twice is not an error")
	})
}
