package barista_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/barista"
	"github.com/aretw0/barista/pkg/domain"
	"github.com/aretw0/barista/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	engine := barista.New()

	assert.NotNil(t, engine.Sink())
	assert.Equal(t, domain.DefaultCurrency, engine.Currency())
	assert.Equal(t, []string{"Beverage", "Food"}, engine.Catalog().CategoryNames())
	assert.NoError(t, engine.Close())
}

func TestEngine_CustomCatalogAndSink(t *testing.T) {
	menu, err := domain.NewCatalog(domain.Category{
		Name:  "Pastry",
		Items: []domain.MenuItem{{Name: "Scone", Price: 350}},
	})
	require.NoError(t, err)

	var got []domain.OrderRecord
	sink := ports.SinkFunc(func(_ context.Context, rec domain.OrderRecord) error {
		got = append(got, rec)
		return nil
	})

	engine := barista.New(barista.WithCatalog(menu), barista.WithSink(sink), barista.WithCurrency("€"))
	ctx := context.Background()
	s := engine.Start(ctx)

	for _, a := range []domain.Action{
		domain.Begin{}, domain.SubmitName{Name: "Ines"},
		domain.ChooseCategory{Category: "Pastry"}, domain.SelectItem{Item: "Scone"}, domain.AddToCart{Quantity: 3},
		domain.Checkout{},
	} {
		_, err := engine.Dispatch(ctx, s, a)
		require.NoError(t, err)
	}

	assert.Contains(t, engine.Render(s).Markdown(), "**Grand Total:** €1050")

	_, err = engine.Dispatch(ctx, s, domain.Confirm{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1050, got[0].GrandTotal)
}

func TestEngine_DispatchEnvelopeUnknownType(t *testing.T) {
	engine := barista.New()
	s := engine.Start(context.Background())

	_, err := engine.DispatchEnvelope(context.Background(), s, domain.ActionEnvelope{Type: "teleport"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnknownAction))
	assert.Equal(t, barista.NewSession(), s)
}
