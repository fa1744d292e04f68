package dialogue

import (
	"fmt"

	"github.com/aretw0/tafel/pkg/domain"
)

// Script holds the phrases recognized and the texts produced by the machine.
type Script struct {
	// IntentPhrases start a reservation when contained in a message (substring match).
	IntentPhrases []string
	// Affirmative and Negative are matched exactly against the normalized message.
	Affirmative []string
	Negative    []string

	// Phone is the fallback contact number quoted when delivery fails.
	Phone string

	AskConfirmReservation string
	CancelReservation     string
	AskYesNo              string
	AskName               string
	AskEmail              string
	InvalidEmail          string
	AskPersons            string
	InvalidPersons        string
	AskDateTime           string
	AskWish               string
	CancelRequest         string
	DeliverySuccess       string
	// DeliveryFailure is a format string receiving Phone.
	DeliveryFailure string
}

// DefaultScript returns the German texts of the restaurant assistant.
func DefaultScript() Script {
	return Script{
		IntentPhrases: []string{"tisch reservieren", "reservierung tätigen", "tischreservierung", "platz buchen"},
		Affirmative:   []string{"ja", "ja, das stimmt", "bestätigen", "ja bitte"},
		Negative:      []string{"nein", "abbrechen", "falsch", "abbruch"},
		Phone:         "030-98765432",

		AskConfirmReservation: "Möchten Sie einen Tisch reservieren? Bitte antworten Sie mit 'Ja' oder 'Nein'.",
		CancelReservation:     "Die Tischreservierung wurde abgebrochen. Falls Sie die Eingabe korrigieren möchten, beginnen Sie bitte erneut mit 'reservierung tätigen'.",
		AskYesNo:              "Bitte antworten Sie mit 'Ja' oder 'Nein'.",
		AskName:               "Gerne. Wie lautet Ihr vollständiger Name?",
		AskEmail:              "Vielen Dank. Wie lautet Ihre E-Mail-Adresse?",
		InvalidEmail:          "Das scheint keine gültige E-Mail-Adresse zu sein. Bitte geben Sie eine korrekte E-Mail-Adresse ein.",
		AskPersons:            "Alles klar. Für wie viele Personen möchten Sie reservieren?",
		InvalidPersons:        "Bitte geben Sie die Anzahl der Personen als Zahl an, z.B. 4.",
		AskDateTime:           "Wann möchten Sie den Tisch reservieren? Bitte geben Sie das Datum und die Uhrzeit im Format TT.MM.JJJJ HH:MM an, z.B. 15.10.2025 19:30.",
		AskWish:               "Haben Sie spezielle Wünsche, z.B. einen Tisch im Fensterbereich oder einen Hochstuhl für ein Kind?",
		CancelRequest:         "Die Reservierungsanfrage wurde abgebrochen. Falls Sie die Eingabe korrigieren möchten, beginnen Sie bitte erneut mit 'reservierung tätigen'.",
		DeliverySuccess:       "Vielen Dank! Ihre Reservierungsanfrage wurde erfolgreich übermittelt. Wir werden uns in Kürze bei Ihnen melden.",
		DeliveryFailure:       "Entschuldigung, es gab ein Problem beim Senden Ihrer Anfrage. Bitte rufen Sie uns direkt an unter %s.",
	}
}

// Summary renders the collected fields and asks for the final confirmation.
func (s Script) Summary(d domain.Draft) string {
	wish := d.Wish
	if wish == "" {
		wish = "-"
	}
	return fmt.Sprintf(
		"Bitte überprüfen Sie Ihre Angaben:\n"+
			"Name: %s\n"+
			"E-Mail: %s\n"+
			"Personen: %d\n"+
			"Datum und Uhrzeit: %s\n"+
			"Wunsch: %s\n\n"+
			"Möchten Sie die Anfrage so absenden? %s",
		d.Name, d.Email, d.Persons, d.DateTime, wish, s.AskYesNo,
	)
}

// DeliveryReply returns the text shown after the notifier reported its result.
func (s Script) DeliveryReply(ok bool) string {
	if ok {
		return s.DeliverySuccess
	}
	return fmt.Sprintf(s.DeliveryFailure, s.Phone)
}
