package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/tafel/pkg/domain"
)

// Codec converts sessions to and from their stored form.
type Codec interface {
	Marshal(session *domain.Session) ([]byte, error)
	Unmarshal(data []byte) (*domain.Session, error)
}

// JSONCodec stores sessions as plain JSON.
type JSONCodec struct{}

// Marshal implements Codec.
func (JSONCodec) Marshal(session *domain.Session) ([]byte, error) {
	data, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}
	return data, nil
}

// Unmarshal implements Codec.
func (JSONCodec) Unmarshal(data []byte) (*domain.Session, error) {
	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}
