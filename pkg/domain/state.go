package domain

import "time"

// Stage is the position of a session inside the reservation dialogue.
type Stage string

const (
	StageInitial                Stage = "initial"
	StageConfirmReservation     Stage = "waiting_for_confirmation_reservation"
	StageWaitingForName         Stage = "waiting_for_name"
	StageWaitingForEmail        Stage = "waiting_for_email"
	StageWaitingForPersons      Stage = "waiting_for_persons"
	StageWaitingForDateTime     Stage = "waiting_for_datetime"
	StageWaitingForWish         Stage = "waiting_for_wunsch"
	StageWaitingForConfirmation Stage = "waiting_for_confirmation"
)

// Stages lists every valid stage in dialogue order.
var Stages = []Stage{
	StageInitial,
	StageConfirmReservation,
	StageWaitingForName,
	StageWaitingForEmail,
	StageWaitingForPersons,
	StageWaitingForDateTime,
	StageWaitingForWish,
	StageWaitingForConfirmation,
}

// Valid reports whether s is one of the fixed dialogue stages.
func (s Stage) Valid() bool {
	for _, known := range Stages {
		if s == known {
			return true
		}
	}
	return false
}

// Session represents the conversation snapshot of a single client.
type Session struct {
	// ClientID identifies the caller (usually the remote network address).
	ClientID string `json:"client_id"`

	// Stage is the current dialogue position.
	Stage Stage `json:"stage"`

	// Draft holds the reservation fields collected so far.
	Draft Draft `json:"draft"`

	// UpdatedAt is the time of the last saved turn. Used for idle eviction.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession creates a clean session in the initial stage.
func NewSession(clientID string) *Session {
	return &Session{
		ClientID: clientID,
		Stage:    StageInitial,
	}
}

// Reset returns the session to the initial stage and drops the draft.
func (s *Session) Reset() {
	s.Stage = StageInitial
	s.Draft = Draft{}
}
