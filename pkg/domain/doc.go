/*
Package domain contains the core domain models of the Tafel assistant.

It defines the conversation stages, the reservation draft collected during a
dialogue, the finalized reservation handed to the notifier and the FAQ records
of the knowledge base. The package is kept free of I/O and persistence concerns.

# Key Entities

  - Stage: The position of a session inside the reservation dialogue.
  - Session: The per-client snapshot (Stage + Draft) owned by the session store.
  - Draft: Partially collected reservation fields.
  - Reservation: A complete, finalized reservation ready for delivery.
  - Record: A static FAQ entry mapping a keyword set to a canned answer.
*/
package domain
