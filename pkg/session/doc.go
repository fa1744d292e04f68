/*
Package session implements the process-wide session table of the assistant.

The Manager owns access to a ports.SessionStore and serializes all operations on
the same client ID with a reference-counted mutex, so concurrent requests from
one client cannot interleave their read-modify-write cycles while requests from
different clients never block each other. An optional distributed locker
extends the guarantee across replicas.
*/
package session
