package dialogue

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/aretw0/tafel/pkg/domain"
	"github.com/aretw0/tafel/pkg/faq"
)

var emailPattern = regexp.MustCompile(`^[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}$`)

// Matcher answers free-text questions from the knowledge base.
type Matcher interface {
	Lookup(query string) faq.Result
}

// Outcome is the result of a single transition.
type Outcome struct {
	// Session is the snapshot to persist.
	Session domain.Session
	// Reply is the text for the user. Empty when Submit is set; the host
	// picks the text with Script.DeliveryReply once delivery finished.
	Reply string
	// FAQ is set when the message was answered from the knowledge base.
	FAQ *faq.Result
	// Submit carries the finalized reservation the host must deliver.
	Submit *domain.Reservation
}

// Unanswered reports whether the message was a question the knowledge base could not answer.
func (o Outcome) Unanswered() bool {
	return o.FAQ != nil && !o.FAQ.Matched()
}

// Machine is the reservation dialogue state machine.
type Machine struct {
	script  Script
	matcher Matcher
}

// Option configures the Machine.
type Option func(*Machine)

// WithScript replaces the default phrases and texts.
func WithScript(s Script) Option {
	return func(m *Machine) {
		m.script = s
	}
}

// New creates a machine answering questions in the initial stage with matcher.
func New(matcher Matcher, opts ...Option) *Machine {
	m := &Machine{
		script:  DefaultScript(),
		matcher: matcher,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Script returns the active script.
func (m *Machine) Script() Script {
	return m.script
}

// Step applies one message to the session snapshot.
func (m *Machine) Step(s domain.Session, message string) Outcome {
	raw := strings.TrimSpace(message)
	input := strings.ToLower(raw)

	if !s.Stage.Valid() {
		s.Reset()
	}

	switch s.Stage {
	case domain.StageConfirmReservation:
		switch {
		case m.isAffirmative(input):
			s.Stage = domain.StageWaitingForName
			return reply(s, m.script.AskName)
		case m.isNegative(input):
			s.Reset()
			return reply(s, m.script.CancelReservation)
		}
		return reply(s, m.script.AskYesNo)

	case domain.StageWaitingForName:
		if raw == "" {
			return reply(s, m.script.AskName)
		}
		s.Draft.Name = raw
		s.Stage = domain.StageWaitingForEmail
		return reply(s, m.script.AskEmail)

	case domain.StageWaitingForEmail:
		if !emailPattern.MatchString(input) {
			return reply(s, m.script.InvalidEmail)
		}
		s.Draft.Email = raw
		s.Stage = domain.StageWaitingForPersons
		return reply(s, m.script.AskPersons)

	case domain.StageWaitingForPersons:
		n, err := strconv.Atoi(input)
		if err != nil || n < 1 {
			return reply(s, m.script.InvalidPersons)
		}
		s.Draft.Persons = n
		s.Stage = domain.StageWaitingForDateTime
		return reply(s, m.script.AskDateTime)

	case domain.StageWaitingForDateTime:
		if raw == "" {
			return reply(s, m.script.AskDateTime)
		}
		// Parsed only at delivery time.
		s.Draft.DateTime = raw
		s.Stage = domain.StageWaitingForWish
		return reply(s, m.script.AskWish)

	case domain.StageWaitingForWish:
		s.Draft.Wish = raw
		s.Stage = domain.StageWaitingForConfirmation
		return reply(s, m.script.Summary(s.Draft))

	case domain.StageWaitingForConfirmation:
		switch {
		case m.isAffirmative(input):
			res, err := s.Draft.Reservation()
			s.Reset()
			if err != nil {
				return reply(s, m.script.DeliveryReply(false))
			}
			return Outcome{Session: s, Submit: &res}
		case m.isNegative(input):
			s.Reset()
			return reply(s, m.script.CancelRequest)
		}
		return reply(s, m.script.AskYesNo)
	}

	// initial
	if m.hasIntent(input) {
		s.Draft = domain.Draft{}
		s.Stage = domain.StageConfirmReservation
		return reply(s, m.script.AskConfirmReservation)
	}

	res := m.matcher.Lookup(input)
	return Outcome{Session: s, Reply: res.Answer, FAQ: &res}
}

func (m *Machine) hasIntent(input string) bool {
	for _, phrase := range m.script.IntentPhrases {
		if strings.Contains(input, phrase) {
			return true
		}
	}
	return false
}

func (m *Machine) isAffirmative(input string) bool {
	return slices.Contains(m.script.Affirmative, input)
}

func (m *Machine) isNegative(input string) bool {
	return slices.Contains(m.script.Negative, input)
}

func reply(s domain.Session, text string) Outcome {
	return Outcome{Session: s, Reply: text}
}
