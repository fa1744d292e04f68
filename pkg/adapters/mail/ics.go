package mail

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/aretw0/tafel/pkg/domain"
)

const productID = "-//tafel//Reservierung//DE"

// calendar renders a single-event iCalendar document for the reservation starting at start.
func (n *Notifier) calendar(r domain.Reservation, start time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodRequest)
	cal.SetProductId(productID)

	now := n.now()
	event := cal.AddEvent(n.newUID())
	event.SetCreatedTime(now)
	event.SetDtStampTime(now)
	event.SetStartAt(start)
	event.SetEndAt(start.Add(n.cfg.EventDuration))
	event.SetSummary("Reservierung von " + r.Name)
	event.SetDescription(fmt.Sprintf("Personen: %d\nE-Mail: %s", r.Persons, r.Email))
	if n.cfg.Address != "" {
		event.SetLocation(n.cfg.Address)
	}
	return cal.Serialize()
}
