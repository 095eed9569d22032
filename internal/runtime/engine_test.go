package runtime_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/barista/internal/runtime"
	"github.com/aretw0/barista/pkg/domain"
	"github.com/aretw0/barista/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 18, 14, 5, 9, 500, time.Local)

type recordingSink struct {
	mu      sync.Mutex
	records []domain.OrderRecord
	fail    map[string]bool
}

func (r *recordingSink) Append(_ context.Context, rec domain.OrderRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail[rec.ItemName] {
		return errors.New("sheet unavailable")
	}
	r.records = append(r.records, rec)
	return nil
}

func newEngine(t *testing.T, sink ports.OrderSink, opts ...runtime.EngineOption) *runtime.Engine {
	t.Helper()
	base := []runtime.EngineOption{
		runtime.WithSink(sink),
		runtime.WithClock(func() time.Time { return fixedNow }),
	}
	return runtime.NewEngine(append(base, opts...)...)
}

// dispatchAll applies actions in order and fails the test on the first error.
func dispatchAll(t *testing.T, e *runtime.Engine, s *runtime.Session, actions ...domain.Action) *domain.Outcome {
	t.Helper()
	var out *domain.Outcome
	for _, a := range actions {
		var err error
		out, err = e.Dispatch(context.Background(), s, a)
		require.NoError(t, err, "dispatch %s at %s", a.Type(), s.Step())
	}
	return out
}

func TestEngine_EndToEndOrder(t *testing.T) {
	sink := &recordingSink{}
	e := newEngine(t, sink)
	s := e.Start(context.Background())

	out := dispatchAll(t, e, s,
		domain.Begin{},
		domain.SubmitName{Name: "alice "},
	)
	assert.Equal(t, domain.StepMenu, out.To)
	name, ok := s.CustomerName()
	require.True(t, ok)
	assert.Equal(t, "Alice", name)

	dispatchAll(t, e, s,
		domain.ChooseCategory{Category: "Beverage"},
		domain.SelectItem{Item: "Cold Brew"},
	)
	assert.Equal(t, domain.StepQuantityPicker, s.Step())
	assert.Equal(t, domain.DraftSnapshot{Category: "Beverage", Item: "Cold Brew", Price: 400}, s.Draft().Snapshot())

	dispatchAll(t, e, s, domain.AddToCart{Quantity: 2})
	assert.Equal(t, domain.StepMenu, s.Step())
	assert.True(t, s.Draft().Empty())
	assert.Equal(t, []domain.LineItem{{Item: "Cold Brew", UnitPrice: 400, Quantity: 2, Total: 800}}, s.Lines())

	dispatchAll(t, e, s, domain.Checkout{})
	assert.Equal(t, domain.StepCheckout, s.Step())

	out = dispatchAll(t, e, s, domain.Confirm{})
	assert.Equal(t, domain.StepThankYou, out.To)
	assert.Empty(t, out.Warnings)
	assert.Equal(t, 1, out.Records)
	assert.Equal(t, 1, out.Persisted)
	assert.Equal(t, "Thank You, Alice!", out.View.Title)

	require.Len(t, sink.records, 1)
	rec := sink.records[0]
	assert.Equal(t, "Alice", rec.CustomerName)
	assert.Equal(t, "Cold Brew", rec.ItemName)
	assert.Equal(t, 2, rec.Quantity)
	assert.Equal(t, 400, rec.UnitPrice)
	assert.Equal(t, 800, rec.LineTotal)
	assert.Equal(t, 800, rec.GrandTotal)
	assert.Equal(t, "2026-10-18 14:05:09", rec.FormattedTimestamp())
}

func TestEngine_NameValidation(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
		msg     string
	}{
		{name: "trimmed and titled", input: "  jane doe ", want: "Jane Doe"},
		{name: "accented letters", input: "josé", want: "José"},
		{name: "mixed case", input: "mARY", want: "Mary"},
		{name: "empty", input: "", wantErr: domain.ErrEmptyName, msg: domain.MsgEmptyName},
		{name: "whitespace only", input: "   ", wantErr: domain.ErrEmptyName, msg: domain.MsgEmptyName},
		{name: "digits", input: "bob2", wantErr: domain.ErrInvalidName, msg: domain.MsgInvalidName},
		{name: "punctuation", input: "o'neil", wantErr: domain.ErrInvalidName, msg: domain.MsgInvalidName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(t, &recordingSink{})
			s := e.Start(context.Background())
			dispatchAll(t, e, s, domain.Begin{})

			_, err := e.Dispatch(context.Background(), s, domain.SubmitName{Name: tt.input})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, domain.StepNameEntry, s.Step())
				assert.Equal(t, tt.msg, s.NameError())
				assert.Equal(t, tt.msg, e.Render(s).Error)
				_, named := s.CustomerName()
				assert.False(t, named)
				return
			}
			require.NoError(t, err)
			got, _ := s.CustomerName()
			assert.Equal(t, tt.want, got)
			assert.Empty(t, s.NameError())
		})
	}
}

func TestEngine_NameErrorClearedOnSuccess(t *testing.T) {
	e := newEngine(t, &recordingSink{})
	s := e.Start(context.Background())
	dispatchAll(t, e, s, domain.Begin{})

	_, err := e.Dispatch(context.Background(), s, domain.SubmitName{Name: "r2d2"})
	require.Error(t, err)
	assert.Equal(t, domain.MsgInvalidName, s.NameError())

	dispatchAll(t, e, s, domain.SubmitName{Name: "artoo"})
	assert.Empty(t, s.NameError())
	assert.Equal(t, domain.StepMenu, s.Step())
}

func TestEngine_TotalTracksCart(t *testing.T) {
	e := newEngine(t, &recordingSink{})
	s := e.Start(context.Background())
	dispatchAll(t, e, s, domain.Begin{}, domain.SubmitName{Name: "Kim"})

	adds := []struct {
		category, item string
		qty            int
		want           int
	}{
		{"Food", "Sandwich", 3, 1500},
		{"Beverage", "Earl Grey Tea", 1, 1800},
		{"Food", "Sandwich", 2, 2800},
	}
	for _, add := range adds {
		dispatchAll(t, e, s,
			domain.ChooseCategory{Category: add.category},
			domain.SelectItem{Item: add.item},
			domain.AddToCart{Quantity: add.qty},
		)
		assert.Equal(t, add.want, s.Total())
	}

	// Same item twice stays as two lines.
	assert.Len(t, s.Lines(), 3)
	assert.Equal(t, 1500, s.Lines()[0].Total)
}

func TestEngine_ClearCart(t *testing.T) {
	e := newEngine(t, &recordingSink{})
	s := e.Start(context.Background())
	dispatchAll(t, e, s,
		domain.Begin{}, domain.SubmitName{Name: "Lee"},
		domain.ChooseCategory{Category: "Food"}, domain.SelectItem{Item: "Donut"}, domain.AddToCart{Quantity: 4},
		domain.Checkout{},
	)

	out := dispatchAll(t, e, s, domain.ClearCart{})
	assert.Equal(t, domain.StepMenu, out.To)
	assert.Empty(t, s.Lines())
	assert.Zero(t, s.Total())
	assert.False(t, out.View.Accepts(domain.ActionCheckout))

	_, err := e.Dispatch(context.Background(), s, domain.Checkout{})
	require.ErrorIs(t, err, domain.ErrEmptyCart)
	assert.Equal(t, domain.StepMenu, s.Step())
}

func TestEngine_NewOrderResets(t *testing.T) {
	e := newEngine(t, &recordingSink{})
	s := e.Start(context.Background())
	dispatchAll(t, e, s,
		domain.Begin{}, domain.SubmitName{Name: "Ana"},
		domain.ChooseCategory{Category: "Beverage"}, domain.SelectItem{Item: "Vanilla Latte"}, domain.AddToCart{Quantity: 1},
		domain.Checkout{}, domain.Confirm{},
	)
	// Cart survives confirmation until a new order starts.
	assert.Len(t, s.Lines(), 1)

	out := dispatchAll(t, e, s, domain.NewOrder{})
	assert.Equal(t, domain.StepWelcome, out.To)
	assert.Equal(t, runtime.NewSession(), s)
}

func TestEngine_QuantityBounds(t *testing.T) {
	for _, qty := range []int{0, -1, 101} {
		e := newEngine(t, &recordingSink{})
		s := e.Start(context.Background())
		dispatchAll(t, e, s,
			domain.Begin{}, domain.SubmitName{Name: "Sam"},
			domain.ChooseCategory{Category: "Food"}, domain.SelectItem{Item: "Naan"},
		)
		before := s.Snapshot()

		_, err := e.Dispatch(context.Background(), s, domain.AddToCart{Quantity: qty})
		require.ErrorIs(t, err, domain.ErrQuantityOutOfRange, "qty %d", qty)
		assert.Equal(t, before, s.Snapshot())
	}

	e := newEngine(t, &recordingSink{})
	s := e.Start(context.Background())
	dispatchAll(t, e, s,
		domain.Begin{}, domain.SubmitName{Name: "Sam"},
		domain.ChooseCategory{Category: "Food"}, domain.SelectItem{Item: "Biscuit"}, domain.AddToCart{Quantity: 100},
	)
	assert.Equal(t, 20000, s.Total())
}

func TestEngine_SelectionNavigation(t *testing.T) {
	e := newEngine(t, &recordingSink{})
	s := e.Start(context.Background())
	dispatchAll(t, e, s,
		domain.Begin{}, domain.SubmitName{Name: "Jo"},
		domain.ChooseCategory{Category: "Beverage"}, domain.SelectItem{Item: "Cold Brew"},
	)

	dispatchAll(t, e, s, domain.ChangeSelection{})
	assert.Equal(t, domain.StepItemPicker, s.Step())
	assert.Equal(t, domain.DraftSnapshot{Category: "Beverage"}, s.Draft().Snapshot())

	dispatchAll(t, e, s, domain.SelectItem{Item: "Earl Grey Tea"}, domain.Back{})
	assert.Equal(t, domain.StepMenu, s.Step())
	assert.True(t, s.Draft().Empty())

	dispatchAll(t, e, s, domain.ChooseCategory{Category: "Food"}, domain.Back{})
	assert.Equal(t, domain.StepMenu, s.Step())
	assert.True(t, s.Draft().Empty())
	assert.Empty(t, s.Lines())
}

func TestEngine_UnknownSelections(t *testing.T) {
	e := newEngine(t, &recordingSink{})
	s := e.Start(context.Background())
	dispatchAll(t, e, s, domain.Begin{}, domain.SubmitName{Name: "Jo"})

	_, err := e.Dispatch(context.Background(), s, domain.ChooseCategory{Category: "Dessert"})
	require.ErrorIs(t, err, domain.ErrUnknownCategory)
	assert.Equal(t, domain.StepMenu, s.Step())

	dispatchAll(t, e, s, domain.ChooseCategory{Category: "Food"})
	_, err = e.Dispatch(context.Background(), s, domain.SelectItem{Item: "Cold Brew"})
	require.ErrorIs(t, err, domain.ErrUnknownItem)
	assert.Equal(t, domain.StepItemPicker, s.Step())
}

func TestEngine_IllegalAction(t *testing.T) {
	e := newEngine(t, &recordingSink{})
	s := e.Start(context.Background())

	_, err := e.Dispatch(context.Background(), s, domain.Confirm{})
	require.ErrorIs(t, err, domain.ErrIllegalAction)

	var illegal *domain.IllegalActionError
	require.ErrorAs(t, err, &illegal)
	assert.Equal(t, domain.StepWelcome, illegal.Step)
	assert.Equal(t, "confirm", illegal.Action)
	assert.Equal(t, runtime.NewSession(), s)

	dispatchAll(t, e, s, domain.Begin{}, domain.SubmitName{Name: "Eve"})
	_, err = e.Dispatch(context.Background(), s, domain.AddToCart{Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrIllegalAction)
	_, err = e.Dispatch(context.Background(), s, nil)
	assert.ErrorIs(t, err, domain.ErrUnknownAction)
}

func TestEngine_ZeroSessionIsInvariantViolation(t *testing.T) {
	e := newEngine(t, &recordingSink{})

	_, err := e.Dispatch(context.Background(), &runtime.Session{}, domain.Begin{})
	require.ErrorIs(t, err, domain.ErrInvariantViolation)

	_, err = e.Dispatch(context.Background(), nil, domain.Begin{})
	require.ErrorIs(t, err, domain.ErrInvariantViolation)
}

func TestEngine_SinkFailuresBecomeWarnings(t *testing.T) {
	sink := &recordingSink{fail: map[string]bool{"Croissant": true}}
	e := newEngine(t, sink)
	s := e.Start(context.Background())
	dispatchAll(t, e, s,
		domain.Begin{}, domain.SubmitName{Name: "Max"},
		domain.ChooseCategory{Category: "Food"}, domain.SelectItem{Item: "Croissant"}, domain.AddToCart{Quantity: 2},
		domain.ChooseCategory{Category: "Beverage"}, domain.SelectItem{Item: "Java Chip Frappe"}, domain.AddToCart{Quantity: 1},
		domain.Checkout{},
	)

	out := dispatchAll(t, e, s, domain.Confirm{})
	assert.Equal(t, domain.StepThankYou, out.To)
	assert.Equal(t, []string{"Error saving Croissant."}, out.Warnings)
	assert.Equal(t, out.Warnings, out.View.Warnings)
	assert.Equal(t, 2, out.Records)
	assert.Equal(t, 1, out.Persisted)

	require.Len(t, sink.records, 1)
	assert.Equal(t, "Java Chip Frappe", sink.records[0].ItemName)
	assert.Equal(t, 1500, sink.records[0].GrandTotal)
}

func TestEngine_NoSinkStillThanks(t *testing.T) {
	e := runtime.NewEngine()
	s := e.Start(context.Background())
	dispatchAll(t, e, s,
		domain.Begin{}, domain.SubmitName{Name: "Ola"},
		domain.ChooseCategory{Category: "Food"}, domain.SelectItem{Item: "Donut"}, domain.AddToCart{Quantity: 1},
		domain.Checkout{},
	)

	out := dispatchAll(t, e, s, domain.Confirm{})
	assert.Equal(t, domain.StepThankYou, out.To)
	assert.Equal(t, []string{"Error saving Donut."}, out.Warnings)
	assert.Zero(t, out.Persisted)
}

func TestEngine_RecordsShareTimestampAndGrandTotal(t *testing.T) {
	calls := 0
	clock := func() time.Time {
		calls++
		return fixedNow.Add(time.Duration(calls) * time.Minute)
	}
	sink := &recordingSink{}
	e := runtime.NewEngine(runtime.WithSink(sink), runtime.WithClock(clock))
	s := e.Start(context.Background())
	dispatchAll(t, e, s,
		domain.Begin{}, domain.SubmitName{Name: "Pat"},
		domain.ChooseCategory{Category: "Food"}, domain.SelectItem{Item: "Biscuit"}, domain.AddToCart{Quantity: 2},
		domain.ChooseCategory{Category: "Food"}, domain.SelectItem{Item: "Naan"}, domain.AddToCart{Quantity: 1},
		domain.Checkout{}, domain.Confirm{},
	)

	require.Len(t, sink.records, 2)
	assert.Equal(t, sink.records[0].Timestamp, sink.records[1].Timestamp)
	assert.Equal(t, 1000, sink.records[0].GrandTotal)
	assert.Equal(t, 1000, sink.records[1].GrandTotal)
	assert.Equal(t, "Biscuit", sink.records[0].ItemName)
	assert.Equal(t, "Naan", sink.records[1].ItemName)
}

func TestEngine_LifecycleHooks(t *testing.T) {
	var entered, left []domain.Step
	var persisted []error
	var confirmed *domain.OrderEvent

	hooks := domain.LifecycleHooks{
		OnStepEnter: func(_ context.Context, ev *domain.StepEvent) { entered = append(entered, ev.Step) },
		OnStepLeave: func(_ context.Context, ev *domain.StepEvent) { left = append(left, ev.Step) },
		OnRecordPersisted: func(_ context.Context, ev *domain.RecordEvent) {
			persisted = append(persisted, ev.Err)
		},
		OnOrderConfirmed: func(_ context.Context, ev *domain.OrderEvent) { confirmed = ev },
	}

	e := newEngine(t, &recordingSink{}, runtime.WithLifecycleHooks(hooks))
	s := e.Start(context.Background())
	assert.Equal(t, []domain.Step{domain.StepWelcome}, entered)

	dispatchAll(t, e, s,
		domain.Begin{}, domain.SubmitName{Name: "Uma"},
		domain.ChooseCategory{Category: "Beverage"}, domain.SelectItem{Item: "Cold Brew"}, domain.AddToCart{Quantity: 1},
		domain.Checkout{}, domain.Confirm{},
	)

	// A rejected action emits nothing.
	_, err := e.Dispatch(context.Background(), s, domain.Back{})
	require.Error(t, err)

	assert.Equal(t, []domain.Step{
		domain.StepWelcome, domain.StepNameEntry, domain.StepMenu, domain.StepItemPicker,
		domain.StepQuantityPicker, domain.StepMenu, domain.StepCheckout, domain.StepThankYou,
	}, entered)
	assert.Equal(t, entered[:len(entered)-1], left)
	assert.Equal(t, []error{nil}, persisted)
	require.NotNil(t, confirmed)
	assert.Equal(t, "Uma", confirmed.CustomerName)
	assert.Equal(t, 1, confirmed.Lines)
	assert.Equal(t, 400, confirmed.GrandTotal)
	assert.Zero(t, confirmed.Failed)
}

func TestRestoreSession_RoundTrip(t *testing.T) {
	e := newEngine(t, &recordingSink{})
	s := e.Start(context.Background())
	dispatchAll(t, e, s,
		domain.Begin{},
		domain.SubmitName{Name: "ivy"},
		domain.ChooseCategory{Category: "Food"},
		domain.SelectItem{Item: "Naan"},
		domain.AddToCart{Quantity: 3},
		domain.ChooseCategory{Category: "Beverage"},
		domain.SelectItem{Item: "Vanilla Latte"},
	)

	restored, err := runtime.RestoreSession(s.Snapshot())
	require.NoError(t, err)
	require.NoError(t, e.Check(restored))
	assert.Equal(t, s.Snapshot(), restored.Snapshot())

	out := dispatchAll(t, e, restored, domain.AddToCart{Quantity: 1})
	assert.Equal(t, 2400, out.View.Cart.Total)
}

func TestRestoreSession_RejectsTamperedSnapshots(t *testing.T) {
	line := domain.LineItem{Item: "Donut", UnitPrice: 300, Quantity: 2, Total: 600}

	tests := []struct {
		name string
		snap *domain.SessionSnapshot
	}{
		{name: "nil", snap: nil},
		{name: "unknown step", snap: &domain.SessionSnapshot{Step: "kitchen"}},
		{name: "line total", snap: &domain.SessionSnapshot{
			Step: domain.StepMenu, CustomerName: "Ivy",
			Cart:  []domain.LineItem{{Item: "Donut", UnitPrice: 300, Quantity: 2, Total: 1}},
			Total: 1,
		}},
		{name: "quantity", snap: &domain.SessionSnapshot{
			Step: domain.StepMenu, CustomerName: "Ivy",
			Cart:  []domain.LineItem{{Item: "Donut", UnitPrice: 300, Quantity: 0, Total: 0}},
			Total: 0,
		}},
		{name: "grand total", snap: &domain.SessionSnapshot{
			Step: domain.StepMenu, CustomerName: "Ivy",
			Cart:  []domain.LineItem{line},
			Total: 900,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runtime.RestoreSession(tt.snap)
			assert.Error(t, err)
		})
	}
}

func TestEngine_EmptyCheckoutNeverConfirms(t *testing.T) {
	sink := &recordingSink{}
	e := newEngine(t, sink)
	ctx := context.Background()

	s, err := runtime.RestoreSession(&domain.SessionSnapshot{Step: domain.StepCheckout, CustomerName: "Ann"})
	require.NoError(t, err)
	require.NoError(t, e.Check(s))

	view := e.Render(s)
	assert.Equal(t, "Please add some items first.", view.Error)
	require.Len(t, view.Options, 1)
	assert.Equal(t, "Return to Ordering", view.Options[0].Label)
	assert.Equal(t, domain.ActionAddMore, view.Options[0].Action.Type)
	assert.False(t, view.Summary)

	_, err = e.Dispatch(ctx, s, domain.Confirm{})
	require.ErrorIs(t, err, domain.ErrEmptyCart)
	assert.Equal(t, domain.StepCheckout, s.Step())
	assert.Empty(t, sink.records)

	out, err := e.Dispatch(ctx, s, domain.AddMore{})
	require.NoError(t, err)
	assert.Equal(t, domain.StepMenu, out.To)
	assert.Equal(t, domain.StepMenu, s.Step())
}
