package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventTurn     EventType = "turn"
	EventFAQ      EventType = "faq"
	EventDelivery EventType = "delivery"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	ClientID  string    `json:"client_id"`
}

// TurnEvent describes one processed message.
type TurnEvent struct {
	EventBase
	From     Stage         `json:"from"`
	To       Stage         `json:"to"`
	Duration time.Duration `json:"duration"`
}

// FAQEvent describes a knowledge-base lookup.
type FAQEvent struct {
	EventBase
	RecordID int  `json:"record_id,omitempty"`
	Matched  bool `json:"matched"`
}

// DeliveryEvent describes a finished notifier call.
type DeliveryEvent struct {
	EventBase
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// LifecycleHooks defines callbacks for assistant observability.
type LifecycleHooks struct {
	OnTurn     func(context.Context, *TurnEvent)
	OnFAQ      func(context.Context, *FAQEvent)
	OnDelivery func(context.Context, *DeliveryEvent)
}
