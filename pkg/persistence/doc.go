/*
Package persistence provides the byte encodings used by durable session stores.

Sessions hold customer data (name, email), so stores that leave the process
can wrap the plain JSON codec with AES-256-GCM envelope encryption. Key rotation
is supported through fallback keys that are only used for decryption.
*/
package persistence
