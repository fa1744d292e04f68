package domain

import "fmt"

// Draft holds the reservation fields collected during a dialogue.
// A field is only populated once the dialogue has passed the stage asking for it.
type Draft struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Persons  int    `json:"personen,omitempty"`
	DateTime string `json:"date_time,omitempty"`
	Wish     string `json:"wunsch,omitempty"`
}

// IsZero reports whether no field has been collected yet.
func (d Draft) IsZero() bool {
	return d == Draft{}
}

// Reservation assembles the finalized record.
// The wish is optional, every other field must be present.
func (d Draft) Reservation() (Reservation, error) {
	switch {
	case d.Name == "":
		return Reservation{}, fmt.Errorf("%w: missing name", ErrIncompleteDraft)
	case d.Email == "":
		return Reservation{}, fmt.Errorf("%w: missing email", ErrIncompleteDraft)
	case d.Persons < 1:
		return Reservation{}, fmt.Errorf("%w: missing party size", ErrIncompleteDraft)
	case d.DateTime == "":
		return Reservation{}, fmt.Errorf("%w: missing date and time", ErrIncompleteDraft)
	}
	return Reservation{
		Name:     d.Name,
		Email:    d.Email,
		Persons:  d.Persons,
		DateTime: d.DateTime,
		Wish:     d.Wish,
	}, nil
}

// Reservation is a complete set of reservation fields ready for delivery.
type Reservation struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Persons  int    `json:"personen"`
	DateTime string `json:"date_time"`
	Wish     string `json:"wunsch"`
}
