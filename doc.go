/*
Package tafel is a restaurant assistant answering FAQ questions and taking table reservations through a chat dialogue.

Every message is routed through the client's session: while no reservation is in progress the message is answered
from the keyword-matched knowledge base (package faq); a reservation request starts a fixed dialogue (package dialogue)
collecting name, e-mail, party size, date/time and a free-text wish. The confirmed reservation is handed to a Notifier,
usually the mail adapter sending an e-mail with a calendar attachment to the restaurant.

# Architecture

The Assistant is the core; transports are adapters around it:

  - pkg/adapters/http: JSON endpoint POST /api/chat for the website widget.
  - pkg/adapters/mcp: the same assistant exposed as MCP tools.
  - internal/cli: an interactive terminal chat.

Sessions live in a ports.SessionStore (in-memory by default, Redis optionally) and are serialized per client by the
session.Manager. Delivery never runs under the session lock.

# Usage

	ctx := context.Background()
	assistant := tafel.New(faq.Default(),
		tafel.WithNotifier(notifier),
		tafel.WithQueryRecorder(recorder),
	)

	reply, err := assistant.Reply(ctx, "203.0.113.7", "Wann habt ihr geöffnet?")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(reply)
*/
package tafel
