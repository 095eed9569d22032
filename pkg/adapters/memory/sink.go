package memory

import (
	"context"
	"sync"

	"github.com/aretw0/barista/pkg/domain"
)

// Sink implements ports.OrderSink in memory.
// Safe for concurrent use.
type Sink struct {
	records []domain.OrderRecord
	mu      sync.RWMutex
}

// NewSink creates an empty in-memory sink.
func NewSink() *Sink {
	return &Sink{}
}

// Append stores the record.
func (s *Sink) Append(ctx context.Context, record domain.OrderRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

// Records returns a copy of every stored record, oldest first.
func (s *Sink) Records() []domain.OrderRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.OrderRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Rows returns the stored records in Row form.
func (s *Sink) Rows(ctx context.Context) ([][]string, error) {
	records := s.Records()
	rows := make([][]string, len(records))
	for i, rec := range records {
		rows[i] = rec.Row()
	}
	return rows, nil
}

// Len returns the number of stored records.
func (s *Sink) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
