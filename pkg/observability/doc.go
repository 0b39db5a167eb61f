/*
Package observability provides tools for monitoring vitrine renders.

It includes render hooks for auditing and metrics, a Prometheus collector
set fed by those hooks, and a logging hook built on log/slog.
*/
package observability
