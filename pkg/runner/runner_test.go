package runner_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/barista"
	"github.com/aretw0/barista/pkg/adapters/memory"
	"github.com/aretw0/barista/pkg/domain"
	"github.com/aretw0/barista/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_TextOrder(t *testing.T) {
	sink := memory.NewSink()
	engine := barista.New(barista.WithSink(sink))

	input := strings.Join([]string{
		"1",         // Start Ordering
		"alice ",    // name
		"order bev", // Order Beverage, by label fragment
		"2",         // Cold Brew
		"2",         // quantity
		"3",         // Proceed to Checkout
		"confirm",   // Confirm Order
	}, "\n") + "\n"

	out := &bytes.Buffer{}
	r := runner.NewRunner(runner.WithInputHandler(runner.NewTextHandler(strings.NewReader(input), out)))

	ctx := context.Background()
	s := engine.Start(ctx)
	require.NoError(t, r.Run(ctx, engine, s))

	assert.Equal(t, domain.StepThankYou, s.Step())
	assert.Contains(t, out.String(), "# Welcome to Wime Cafe!")
	assert.Contains(t, out.String(), "# Hello, Alice!")
	assert.Contains(t, out.String(), "| Cold Brew | ¥400 | 2 | ¥800 |")
	assert.Contains(t, out.String(), "# Thank You, Alice!")

	records := sink.Records()
	require.Len(t, records, 1)
	assert.Equal(t, 800, records[0].GrandTotal)
}

func TestRunner_TextRejectionsAreRetried(t *testing.T) {
	engine := barista.New()
	input := strings.Join([]string{
		"9",     // not an option
		"1",     // Start Ordering
		"b0b",   // invalid name
		"bob",   // ok
		"2",     // Order Food
		"1",     // Biscuit
		"many",  // not a number
		"101",   // out of range
		"/back", // Back to Main Menu
		"quit",
	}, "\n") + "\n"

	out := &bytes.Buffer{}
	r := runner.NewRunner(runner.WithInputHandler(runner.NewTextHandler(strings.NewReader(input), out, runner.WithCart(false))))

	ctx := context.Background()
	s := engine.Start(ctx)
	require.NoError(t, r.Run(ctx, engine, s))

	text := out.String()
	assert.Contains(t, text, "Please choose one of the options.")
	assert.Contains(t, text, domain.MsgInvalidName)
	assert.Contains(t, text, "Please enter a whole number.")
	assert.Contains(t, text, "Quantity must be between 1 and 100.")
	assert.NotContains(t, text, "Current Order")

	assert.Equal(t, domain.StepMenu, s.Step())
	assert.True(t, s.Draft().Empty())
	assert.Empty(t, s.Lines())
}

func TestRunner_DefaultQuantity(t *testing.T) {
	engine := barista.New()
	input := "1\nkai\n1\n1\n\n"

	r := runner.NewRunner(runner.WithInputHandler(runner.NewTextHandler(strings.NewReader(input), &bytes.Buffer{})))

	ctx := context.Background()
	s := engine.Start(ctx)
	require.NoError(t, r.Run(ctx, engine, s))

	require.Len(t, s.Lines(), 1)
	assert.Equal(t, 1, s.Lines()[0].Quantity)
	assert.Equal(t, "Caramel Macchiato", s.Lines()[0].Item)
}

func TestRunner_InvariantAborts(t *testing.T) {
	engine := barista.New()
	r := runner.NewRunner(runner.WithInputHandler(runner.NewTextHandler(strings.NewReader("1\n"), &bytes.Buffer{})))

	err := r.Run(context.Background(), engine, &barista.Session{})
	assert.ErrorIs(t, err, domain.ErrInvariantViolation)
}

func TestRunner_JSONOrder(t *testing.T) {
	sink := memory.NewSink()
	engine := barista.New(barista.WithSink(sink))

	input := strings.Join([]string{
		`{"type":"begin"}`,
		`{"type":"submit_name","name":"dana"}`,
		`not json`,
		`{"type":"choose_category","category":"Food"}`,
		`{"type":"select_item","item":"Croissant"}`,
		`{"type":"add_to_cart","quantity":3}`,
		`{"type":"checkout"}`,
		`{"type":"confirm"}`,
		`{"type":"quit"}`,
	}, "\n") + "\n"

	out := &bytes.Buffer{}
	r := runner.NewRunner(runner.WithInputHandler(runner.NewJSONHandler(strings.NewReader(input), out)))

	ctx := context.Background()
	s := engine.Start(ctx)
	require.NoError(t, r.Run(ctx, engine, s))
	assert.Equal(t, domain.StepThankYou, s.Step())

	var frames []runner.Frame
	dec := json.NewDecoder(out)
	for dec.More() {
		var f runner.Frame
		require.NoError(t, dec.Decode(&f))
		frames = append(frames, f)
	}

	var views, system int
	for _, f := range frames {
		switch f.Type {
		case "view":
			views++
		case "system":
			system++
		}
	}
	assert.Equal(t, 8, views)
	assert.Equal(t, 1, system)

	last := frames[len(frames)-1]
	require.NotNil(t, last.View)
	assert.Equal(t, domain.StepThankYou, last.View.Step)
	assert.Equal(t, "Thank You, Dana!", last.View.Title)

	require.Len(t, sink.Records(), 1)
	assert.Equal(t, 1200, sink.Records()[0].LineTotal)
}

func TestRunner_ContextCancelled(t *testing.T) {
	engine := barista.New()
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := runner.NewRunner(runner.WithInputHandler(runner.NewTextHandler(pr, &bytes.Buffer{})))
	err := r.Run(ctx, engine, engine.Start(context.Background()))
	assert.ErrorIs(t, err, context.Canceled)
}
