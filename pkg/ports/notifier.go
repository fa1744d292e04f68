package ports

import (
	"context"

	"github.com/aretw0/tafel/pkg/domain"
)

// Notifier delivers a finalized reservation to the restaurant staff.
// A nil error means the reservation was handed over successfully.
type Notifier interface {
	Notify(ctx context.Context, reservation domain.Reservation) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, reservation domain.Reservation) error

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, reservation domain.Reservation) error {
	return f(ctx, reservation)
}

// QueryRecorder records questions the knowledge base could not answer.
// Implementations must not fail the conversation turn: errors are handled internally.
type QueryRecorder interface {
	Record(query string)
}
