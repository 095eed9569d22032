// Package csv appends confirmed order lines to a local CSV file, one row
// per record, in the column order of domain.RecordHeader.
package csv

import (
	"context"
	stdcsv "encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/aretw0/barista/pkg/domain"
)

// Sink implements ports.OrderSink on top of a CSV file.
// The file is opened per append so external tools may rotate it.
type Sink struct {
	path string
	mu   sync.Mutex
}

// New creates a sink writing to path. Parent directories are created on first write.
func New(path string) *Sink {
	return &Sink{path: path}
}

// Path returns the file the sink writes to.
func (s *Sink) Path() string {
	return s.path
}

// Append writes one row, preceded by the header when the file is new or empty.
func (s *Sink) Append(ctx context.Context, record domain.OrderRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", s.path, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to stat %s: %w", s.path, err)
	}

	w := stdcsv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(domain.RecordHeader); err != nil {
			_ = f.Close()
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	if err := w.Write(record.Row()); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to flush row: %w", err)
	}
	return f.Close()
}

// Rows reads back every data row, skipping the header. A missing file has no rows.
func (s *Sink) Rows(ctx context.Context) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.path, err)
	}
	defer f.Close()

	r := stdcsv.NewReader(f)
	r.FieldsPerRecord = len(domain.RecordHeader)

	var rows [][]string
	first := true
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
		}
		if first {
			first = false
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}
