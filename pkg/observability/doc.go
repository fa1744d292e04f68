/*
Package observability turns assistant lifecycle hooks into Prometheus metrics.

Metrics are registered on a caller-supplied registry so several assistants (or tests)
can coexist in one process.
*/
package observability
