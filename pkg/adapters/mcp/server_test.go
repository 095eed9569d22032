package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/barista"
	"github.com/aretw0/barista/pkg/adapters/memory"
	"github.com/aretw0/barista/pkg/domain"
	"github.com/aretw0/barista/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *memory.Sink) {
	t.Helper()
	sink := memory.NewSink()
	mgr := session.NewManager(barista.New(barista.WithSink(sink)), memory.NewStore())
	return NewServer(mgr), sink
}

func dispatch(t *testing.T, s *Server, id string, args map[string]any) SessionResult {
	t.Helper()
	args["session_id"] = id
	res, err := s.handleDispatch(context.Background(), mcp.CallToolRequest{}, args)
	require.NoError(t, err)
	return res
}

func TestServer_OrderThroughTools(t *testing.T) {
	s, sink := newTestServer(t)
	ctx := context.Background()

	start, err := s.handleStartSession(ctx, mcp.CallToolRequest{}, nil)
	require.NoError(t, err)
	require.NotEmpty(t, start.SessionID)
	assert.Equal(t, domain.StepWelcome, start.View.Step)
	id := start.SessionID

	dispatch(t, s, id, map[string]any{"type": "begin"})
	res := dispatch(t, s, id, map[string]any{"type": "submit_name", "name": "alice "})
	assert.Equal(t, "Hello, Alice!", res.View.Title)

	dispatch(t, s, id, map[string]any{"type": "choose_category", "category": "Beverage"})
	dispatch(t, s, id, map[string]any{"type": "select_item", "item": "Cold Brew"})
	res = dispatch(t, s, id, map[string]any{"type": "add_to_cart", "quantity": float64(2)})
	assert.Empty(t, res.Error)
	assert.Equal(t, 800, res.View.Cart.Total)

	dispatch(t, s, id, map[string]any{"type": "checkout"})
	res = dispatch(t, s, id, map[string]any{"type": "confirm"})
	assert.Equal(t, domain.StepThankYou, res.View.Step)
	require.NotNil(t, res.State)
	assert.Equal(t, domain.StepThankYou, res.State.Step)

	require.Len(t, sink.Records(), 1)
	assert.Equal(t, 800, sink.Records()[0].LineTotal)

	rendered, err := s.handleRender(ctx, mcp.CallToolRequest{}, map[string]any{"session_id": id})
	require.NoError(t, err)
	assert.Equal(t, "Thank You, Alice!", rendered.View.Title)
}

func TestServer_RejectionsAreResults(t *testing.T) {
	s, _ := newTestServer(t)
	start, err := s.handleStartSession(context.Background(), mcp.CallToolRequest{}, nil)
	require.NoError(t, err)
	id := start.SessionID

	res := dispatch(t, s, id, map[string]any{"type": "checkout"})
	assert.Contains(t, res.Error, "not allowed")
	assert.Equal(t, domain.StepWelcome, res.View.Step)

	dispatch(t, s, id, map[string]any{"type": "begin"})
	res = dispatch(t, s, id, map[string]any{"type": "submit_name", "name": "   "})
	assert.Equal(t, domain.MsgEmptyName, res.Error)
	assert.Equal(t, domain.MsgEmptyName, res.View.Error)
	assert.Equal(t, domain.StepNameEntry, res.View.Step)
}

func TestServer_ToolErrors(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleRender(ctx, mcp.CallToolRequest{}, map[string]any{"session_id": "missing"})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = s.handleDispatch(ctx, mcp.CallToolRequest{}, map[string]any{"session_id": "missing", "type": "begin"})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = s.handleDispatch(ctx, mcp.CallToolRequest{}, map[string]any{"session_id": "missing", "type": "dance"})
	assert.ErrorIs(t, err, domain.ErrUnknownAction)

	_, err = s.handleEndSession(ctx, mcp.CallToolRequest{}, map[string]any{"session_id": "missing"})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestServer_EndSession(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()
	start, err := s.handleStartSession(ctx, mcp.CallToolRequest{}, nil)
	require.NoError(t, err)

	res, err := s.handleEndSession(ctx, mcp.CallToolRequest{}, map[string]any{"session_id": start.SessionID})
	require.NoError(t, err)
	assert.True(t, res.Ended)

	_, err = s.handleRender(ctx, mcp.CallToolRequest{}, map[string]any{"session_id": start.SessionID})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestServer_Menu(t *testing.T) {
	s, _ := newTestServer(t)

	menu, err := s.handleGetMenu(context.Background(), mcp.CallToolRequest{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "¥", menu.Currency)
	require.Len(t, menu.Categories, 2)

	payload, err := s.menuJSON()
	require.NoError(t, err)
	var decoded MenuResult
	require.NoError(t, json.Unmarshal([]byte(payload), &decoded))
	assert.Equal(t, menu, decoded)
}

func TestDecodeEnvelope(t *testing.T) {
	env, err := decodeEnvelope(map[string]any{
		"session_id": "ignored",
		"type":       "add_to_cart",
		"quantity":   "3",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ActionEnvelope{Type: domain.ActionAddToCart, Quantity: 3}, env)

	_, err = decodeEnvelope(map[string]any{"type": "add_to_cart", "quantity": "three"})
	assert.Error(t, err)
}

func TestServer_FractionalQuantityIsRejected(t *testing.T) {
	s, sink := newTestServer(t)
	ctx := context.Background()

	started, err := s.handleStartSession(ctx, mcp.CallToolRequest{}, nil)
	require.NoError(t, err)
	id := started.SessionID

	dispatch(t, s, id, map[string]any{"type": "begin"})
	dispatch(t, s, id, map[string]any{"type": "submit_name", "name": "Ann"})
	dispatch(t, s, id, map[string]any{"type": "choose_category", "category": "Beverage"})
	dispatch(t, s, id, map[string]any{"type": "select_item", "item": "Cold Brew"})

	for _, q := range []float64{2.5, 100.9} {
		res := dispatch(t, s, id, map[string]any{"type": "add_to_cart", "quantity": q})
		assert.Equal(t, "Quantity must be a whole number.", res.Error, "quantity %v", q)
		assert.Equal(t, domain.StepQuantityPicker, res.View.Step)
		assert.Empty(t, res.State.Cart)
	}

	res := dispatch(t, s, id, map[string]any{"type": "add_to_cart", "quantity": float64(3)})
	assert.Empty(t, res.Error)
	require.Len(t, res.State.Cart, 1)
	assert.Equal(t, 3, res.State.Cart[0].Quantity)
	assert.Equal(t, 0, sink.Len())
}

func TestDecodeEnvelope_FractionalQuantity(t *testing.T) {
	_, err := decodeEnvelope(map[string]any{"type": "add_to_cart", "quantity": 2.5})
	assert.ErrorIs(t, err, domain.ErrQuantityOutOfRange)
	msg, ok := domain.UserMessage(err)
	assert.True(t, ok)
	assert.Equal(t, "Quantity must be a whole number.", msg)
}
