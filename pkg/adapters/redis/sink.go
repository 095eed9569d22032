package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/aretw0/barista/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultKey is the list that receives order records.
const DefaultKey = "barista:orders"

// Sink implements ports.OrderSink by pushing JSON records onto a Redis list.
type Sink struct {
	client *backend.Client
	key    string
	maxLen int64
}

type Option func(*Sink)

// WithKey sets the list key.
func WithKey(key string) Option {
	return func(s *Sink) {
		s.key = key
	}
}

// WithMaxLen caps the list, dropping the oldest records. Zero keeps everything.
func WithMaxLen(n int64) Option {
	return func(s *Sink) {
		s.maxLen = n
	}
}

// New creates a new Redis sink with options.
func New(address, password string, db int, opts ...Option) *Sink {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis sink from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Sink {
	sink := &Sink{
		client: client,
		key:    DefaultKey,
	}

	for _, opt := range opts {
		opt(sink)
	}

	return sink
}

// Append pushes the record to the tail of the list in a single transaction.
func (s *Sink) Append(ctx context.Context, record domain.OrderRecord) error {
	data, err := json.Marshal(record.Wire())
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		pipe.RPush(ctx, s.key, data)
		if s.maxLen > 0 {
			pipe.LTrim(ctx, s.key, -s.maxLen, -1)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to append to redis: %w", err)
	}
	return nil
}

// wireRecord mirrors domain.OrderRecord.Wire for decoding.
type wireRecord struct {
	Timestamp    string `json:"timestamp"`
	CustomerName string `json:"customer_name"`
	ItemName     string `json:"item_name"`
	Quantity     int    `json:"quantity"`
	UnitPrice    int    `json:"unit_price"`
	LineTotal    int    `json:"line_total"`
	GrandTotal   int    `json:"grand_total"`
}

// Rows reads back every stored record, oldest first.
func (s *Sink) Rows(ctx context.Context) ([][]string, error) {
	vals, err := s.client.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read from redis: %w", err)
	}

	rows := make([][]string, 0, len(vals))
	for _, val := range vals {
		var rec wireRecord
		if err := json.Unmarshal([]byte(val), &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record: %w", err)
		}
		rows = append(rows, []string{
			rec.Timestamp,
			rec.CustomerName,
			rec.ItemName,
			strconv.Itoa(rec.Quantity),
			strconv.Itoa(rec.UnitPrice),
			strconv.Itoa(rec.LineTotal),
			strconv.Itoa(rec.GrandTotal),
		})
	}
	return rows, nil
}

// Ping checks connectivity.
func (s *Sink) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the redis client.
func (s *Sink) Close() error {
	return s.client.Close()
}
