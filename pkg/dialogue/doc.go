/*
Package dialogue implements the reservation conversation as an explicit state machine.

The transition function is pure: given a session snapshot and a message it
returns the next snapshot, the reply and the side effects the host has to
perform (recording an unanswered query or delivering a reservation). It never
performs I/O itself, so the same (stage, draft, input) always yields the same
outcome.

	initial ──intent──▶ waiting_for_confirmation_reservation ──ja──▶ waiting_for_name
	   ▲                              │nein
	   └──────────────────────────────┘
	waiting_for_name ▶ waiting_for_email ▶ waiting_for_persons ▶ waiting_for_datetime
	  ▶ waiting_for_wunsch ▶ waiting_for_confirmation ──ja/nein──▶ initial
*/
package dialogue
