package dialogue_test

import (
	"testing"

	"github.com/aretw0/tafel/pkg/dialogue"
	"github.com/aretw0/tafel/pkg/domain"
	"github.com/aretw0/tafel/pkg/faq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMachine() *dialogue.Machine {
	return dialogue.New(faq.Default())
}

func at(stage domain.Stage, draft domain.Draft) domain.Session {
	return domain.Session{ClientID: "10.0.0.1", Stage: stage, Draft: draft}
}

// drive feeds the messages in order and returns every outcome.
func drive(t *testing.T, m *dialogue.Machine, msgs ...string) []dialogue.Outcome {
	t.Helper()
	s := *domain.NewSession("10.0.0.1")
	out := make([]dialogue.Outcome, 0, len(msgs))
	for _, msg := range msgs {
		o := m.Step(s, msg)
		out = append(out, o)
		s = o.Session
	}
	return out
}

func TestStep_InitialAnswersFAQ(t *testing.T) {
	o := newMachine().Step(at(domain.StageInitial, domain.Draft{}), "Wann habt ihr geöffnet?")

	assert.Equal(t, domain.StageInitial, o.Session.Stage)
	assert.Contains(t, o.Reply, "Montag bis Samstag")
	require.NotNil(t, o.FAQ)
	assert.True(t, o.FAQ.Matched())
	assert.False(t, o.Unanswered())
	assert.Nil(t, o.Submit)
}

func TestStep_InitialUnanswered(t *testing.T) {
	o := newMachine().Step(at(domain.StageInitial, domain.Draft{}), "Spielt ihr heute Jazz?")

	assert.Equal(t, domain.StageInitial, o.Session.Stage)
	assert.Equal(t, faq.Default().Fallback, o.Reply)
	assert.True(t, o.Unanswered())
}

func TestStep_IntentStartsReservation(t *testing.T) {
	m := newMachine()
	for _, msg := range []string{"tisch reservieren", "Ich möchte gerne einen Tisch reservieren!", "TISCHRESERVIERUNG", "reservierung tätigen", "kann ich einen platz buchen"} {
		o := m.Step(at(domain.StageInitial, domain.Draft{}), msg)
		assert.Equal(t, domain.StageConfirmReservation, o.Session.Stage, msg)
		assert.Equal(t, dialogue.DefaultScript().AskConfirmReservation, o.Reply, msg)
		assert.Nil(t, o.FAQ, msg)
	}
}

func TestStep_ConfirmReservation(t *testing.T) {
	m := newMachine()
	script := dialogue.DefaultScript()

	o := m.Step(at(domain.StageConfirmReservation, domain.Draft{}), " Ja ")
	assert.Equal(t, domain.StageWaitingForName, o.Session.Stage)
	assert.Equal(t, script.AskName, o.Reply)

	o = m.Step(at(domain.StageConfirmReservation, domain.Draft{}), "vielleicht")
	assert.Equal(t, domain.StageConfirmReservation, o.Session.Stage)
	assert.Equal(t, script.AskYesNo, o.Reply)

	// Exact membership, not substring search.
	o = m.Step(at(domain.StageConfirmReservation, domain.Draft{}), "ja gerne")
	assert.Equal(t, domain.StageConfirmReservation, o.Session.Stage)
}

func TestStep_CancellationIsIdempotent(t *testing.T) {
	m := newMachine()
	draft := domain.Draft{Name: "Erika", Email: "erika@example.de", Persons: 2, DateTime: "01.02.2026 19:00", Wish: "Fenster"}

	for _, stage := range []domain.Stage{domain.StageConfirmReservation, domain.StageWaitingForConfirmation} {
		for _, neg := range []string{"nein", "Abbrechen", "falsch", "abbruch"} {
			o := m.Step(at(stage, draft), neg)
			assert.Equal(t, domain.StageInitial, o.Session.Stage, "%s/%s", stage, neg)
			assert.True(t, o.Session.Draft.IsZero(), "%s/%s", stage, neg)
			assert.Nil(t, o.Submit)
			assert.Contains(t, o.Reply, "abgebrochen")
		}
	}
}

func TestStep_NameRequiresInput(t *testing.T) {
	m := newMachine()

	o := m.Step(at(domain.StageWaitingForName, domain.Draft{}), "   ")
	assert.Equal(t, domain.StageWaitingForName, o.Session.Stage)
	assert.Empty(t, o.Session.Draft.Name)

	o = m.Step(at(domain.StageWaitingForName, domain.Draft{}), "  Erika Mustermann ")
	assert.Equal(t, domain.StageWaitingForEmail, o.Session.Stage)
	assert.Equal(t, "Erika Mustermann", o.Session.Draft.Name)
}

func TestStep_EmailValidation(t *testing.T) {
	m := newMachine()
	script := dialogue.DefaultScript()

	for _, bad := range []string{"not-an-email", "a@b", "a@b.c", "@example.de", "erika@example.d3", "erika mustermann@example.de"} {
		o := m.Step(at(domain.StageWaitingForEmail, domain.Draft{Name: "Erika"}), bad)
		assert.Equal(t, domain.StageWaitingForEmail, o.Session.Stage, bad)
		assert.Equal(t, script.InvalidEmail, o.Reply, bad)
		assert.Empty(t, o.Session.Draft.Email, bad)
	}

	o := m.Step(at(domain.StageWaitingForEmail, domain.Draft{Name: "Erika"}), "Erika.M+tisch@Example.co.uk")
	assert.Equal(t, domain.StageWaitingForPersons, o.Session.Stage)
	assert.Equal(t, "Erika.M+tisch@Example.co.uk", o.Session.Draft.Email, "email is kept as typed")
	assert.Contains(t, m.Step(at(domain.StageWaitingForWish, o.Session.Draft), "").Reply, "Erika.M+tisch@Example.co.uk")
	assert.Equal(t, "Erika", o.Session.Draft.Name)
}

func TestStep_PersonsValidation(t *testing.T) {
	m := newMachine()
	script := dialogue.DefaultScript()

	for _, bad := range []string{"four", "4.5", "", "0", "-2", "vier personen"} {
		o := m.Step(at(domain.StageWaitingForPersons, domain.Draft{}), bad)
		assert.Equal(t, domain.StageWaitingForPersons, o.Session.Stage, bad)
		assert.Equal(t, script.InvalidPersons, o.Reply, bad)
	}

	o := m.Step(at(domain.StageWaitingForPersons, domain.Draft{}), " 4 ")
	assert.Equal(t, domain.StageWaitingForDateTime, o.Session.Stage)
	assert.Equal(t, 4, o.Session.Draft.Persons)
	assert.Equal(t, script.AskDateTime, o.Reply)
}

func TestStep_DateTimeIsStoredVerbatim(t *testing.T) {
	m := newMachine()

	o := m.Step(at(domain.StageWaitingForDateTime, domain.Draft{}), "nächsten Freitag abends")
	assert.Equal(t, domain.StageWaitingForWish, o.Session.Stage)
	assert.Equal(t, "nächsten Freitag abends", o.Session.Draft.DateTime)

	o = m.Step(at(domain.StageWaitingForDateTime, domain.Draft{}), "")
	assert.Equal(t, domain.StageWaitingForDateTime, o.Session.Stage)
}

func TestStep_WishAcceptsAnything(t *testing.T) {
	m := newMachine()
	o := m.Step(at(domain.StageWaitingForWish, domain.Draft{Name: "E", Email: "e@x.de", Persons: 1, DateTime: "1.1.2026 12:00"}), "")
	assert.Equal(t, domain.StageWaitingForConfirmation, o.Session.Stage)
	assert.Contains(t, o.Reply, "Wunsch: -")
}

func TestStep_HappyPath(t *testing.T) {
	outcomes := drive(t, newMachine(),
		"Ich möchte einen Tisch reservieren",
		"ja",
		"Erika Mustermann",
		"erika@example.de",
		"4",
		"15.10.2025 19:30",
		"Fensterplatz bitte",
		"ja bitte",
	)

	stages := make([]domain.Stage, len(outcomes))
	for i, o := range outcomes {
		stages[i] = o.Session.Stage
	}
	assert.Equal(t, []domain.Stage{
		domain.StageConfirmReservation,
		domain.StageWaitingForName,
		domain.StageWaitingForEmail,
		domain.StageWaitingForPersons,
		domain.StageWaitingForDateTime,
		domain.StageWaitingForWish,
		domain.StageWaitingForConfirmation,
		domain.StageInitial,
	}, stages)

	summary := outcomes[6].Reply
	for _, v := range []string{"Erika Mustermann", "erika@example.de", "4", "15.10.2025 19:30", "Fensterplatz bitte"} {
		assert.Contains(t, summary, v)
	}

	final := outcomes[7]
	require.NotNil(t, final.Submit)
	assert.Equal(t, domain.Reservation{
		Name:     "Erika Mustermann",
		Email:    "erika@example.de",
		Persons:  4,
		DateTime: "15.10.2025 19:30",
		Wish:     "Fensterplatz bitte",
	}, *final.Submit)
	assert.Empty(t, final.Reply)
	assert.True(t, final.Session.Draft.IsZero())
}

func TestStep_FinalConfirmationRepromptsOnUnknownInput(t *testing.T) {
	draft := domain.Draft{Name: "E", Email: "e@x.de", Persons: 2, DateTime: "x"}
	o := newMachine().Step(at(domain.StageWaitingForConfirmation, draft), "hmm")

	assert.Equal(t, domain.StageWaitingForConfirmation, o.Session.Stage)
	assert.Equal(t, draft, o.Session.Draft)
	assert.Nil(t, o.Submit)
}

func TestStep_IncompleteDraftFailsWithoutSubmit(t *testing.T) {
	o := newMachine().Step(at(domain.StageWaitingForConfirmation, domain.Draft{Name: "E"}), "ja")

	assert.Nil(t, o.Submit)
	assert.Equal(t, domain.StageInitial, o.Session.Stage)
	assert.Contains(t, o.Reply, "030-98765432")
}

func TestStep_UnknownStageResets(t *testing.T) {
	o := newMachine().Step(at(domain.Stage("bogus"), domain.Draft{Name: "x"}), "wann habt ihr offen")
	assert.Equal(t, domain.StageInitial, o.Session.Stage)
	assert.True(t, o.Session.Draft.IsZero())
	assert.True(t, o.FAQ.Matched())
}

func TestStep_Deterministic(t *testing.T) {
	m := newMachine()
	inputs := []string{"", "ja", "nein", "tisch reservieren", "4", "a@b.de", "wann", "Erika"}

	for _, stage := range domain.Stages {
		for _, in := range inputs {
			s := at(stage, domain.Draft{Name: "E", Email: "e@x.de", Persons: 2, DateTime: "1.1.2026 12:00"})
			first := m.Step(s, in)
			second := m.Step(s, in)
			assert.Equal(t, first, second, "%s/%q", stage, in)
		}
	}
}

func TestScript_DeliveryReply(t *testing.T) {
	s := dialogue.DefaultScript()
	assert.Equal(t, s.DeliverySuccess, s.DeliveryReply(true))
	assert.Contains(t, s.DeliveryReply(false), "030-98765432")

	s.Phone = "0800-1234"
	assert.Contains(t, s.DeliveryReply(false), "0800-1234")
}

func TestWithScript(t *testing.T) {
	script := dialogue.DefaultScript()
	script.IntentPhrases = []string{"book a table"}
	m := dialogue.New(faq.Default(), dialogue.WithScript(script))

	o := m.Step(at(domain.StageInitial, domain.Draft{}), "I want to book a table")
	assert.Equal(t, domain.StageConfirmReservation, o.Session.Stage)

	o = m.Step(at(domain.StageInitial, domain.Draft{}), "tisch reservieren")
	assert.Equal(t, domain.StageInitial, o.Session.Stage)
}
