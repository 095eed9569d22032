package amqp_test

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"testing"

	"github.com/aretw0/barista/pkg/adapters/amqp"
	"github.com/aretw0/barista/pkg/ports"
	"github.com/google/uuid"
	amqp091 "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	exchange, key string
	msg           amqp091.Publishing
}

type fakeChannel struct {
	published []published
	err       error
	closed    bool
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("publish without deadline")
	}
	f.published = append(f.published, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func (f *fakeChannel) rows(ctx context.Context) ([][]string, error) {
	var rows [][]string
	for _, p := range f.published {
		var body map[string]any
		if err := json.Unmarshal(p.msg.Body, &body); err != nil {
			return nil, err
		}
		num := func(k string) string { return strconv.Itoa(int(body[k].(float64))) }
		rows = append(rows, []string{
			body["timestamp"].(string),
			body["customer_name"].(string),
			body["item_name"].(string),
			num("quantity"),
			num("unit_price"),
			num("line_total"),
			num("grand_total"),
		})
	}
	return rows, nil
}

func TestAMQPSink_Contract(t *testing.T) {
	ch := &fakeChannel{}
	ports.RunOrderSinkContract(t, amqp.NewSink(ch), ch.rows)

	for _, p := range ch.published {
		assert.Equal(t, amqp.DefaultExchange, p.exchange)
		assert.Equal(t, amqp.DefaultRoutingKey, p.key)
		assert.Equal(t, "application/json", p.msg.ContentType)
		assert.Equal(t, amqp091.Persistent, p.msg.DeliveryMode)
		_, err := uuid.Parse(p.msg.MessageId)
		assert.NoError(t, err)
	}
}

func TestAMQPSink_Options(t *testing.T) {
	ch := &fakeChannel{}
	sink := amqp.NewSink(ch, amqp.WithExchange("cafe"), amqp.WithRoutingKey("orders"))

	require.NoError(t, sink.Append(context.Background(), sampleRecord()))
	require.Len(t, ch.published, 1)
	assert.Equal(t, "cafe", ch.published[0].exchange)
	assert.Equal(t, "orders", ch.published[0].key)

	require.NoError(t, sink.Close())
	assert.True(t, ch.closed)
}

func TestAMQPSink_PublishError(t *testing.T) {
	ch := &fakeChannel{err: amqp091.ErrClosed}
	err := amqp.NewSink(ch).Append(context.Background(), sampleRecord())
	assert.ErrorIs(t, err, amqp091.ErrClosed)
}
