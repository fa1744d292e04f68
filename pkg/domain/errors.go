package domain

import "errors"

// ErrSessionNotFound is returned when a client ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrIncompleteDraft is returned when a reservation is assembled from a draft
// that is missing required fields.
var ErrIncompleteDraft = errors.New("reservation draft is incomplete")

// ErrInvalidInput is returned when a message is rejected before it reaches the dialogue.
var ErrInvalidInput = errors.New("invalid input")
