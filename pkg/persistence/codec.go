// Package persistence converts session snapshots to the bytes durable
// session stores keep.
package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/barista/pkg/domain"
)

// Codec turns snapshots into stored bytes and back.
type Codec interface {
	Marshal(snap *domain.SessionSnapshot) ([]byte, error)
	Unmarshal(data []byte) (*domain.SessionSnapshot, error)
}

// JSON is the plain codec. Stores use it unless told otherwise.
var JSON Codec = jsonCodec{}

type jsonCodec struct{}

func (jsonCodec) Marshal(snap *domain.SessionSnapshot) ([]byte, error) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}
	return data, nil
}

func (jsonCodec) Unmarshal(data []byte) (*domain.SessionSnapshot, error) {
	var snap domain.SessionSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &snap, nil
}
