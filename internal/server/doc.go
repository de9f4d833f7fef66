// Package server provides the HTTP surface of the appointed booking
// service: the availability and booking API, health probes for Kubernetes,
// and a dedicated Prometheus metrics server.
//
// # Endpoints
//
// The API server exposes:
//   - GET /health: simple liveness answer for external monitors
//   - GET /api/slots: bookable start times for a date and duration
//   - POST /api/book: validate and create a booking event
//   - GET /healthz, /readyz: Kubernetes liveness and readiness probes
//
// The metrics server runs on its own port (default :9090) so operational
// metrics are never exposed through the public API listener.
//
// # Booking serialization
//
// Bookings against the configured calendar are serialized through a single
// mutex, so two concurrent requests for the same slot cannot both pass
// validation within one process. Deployments running several replicas still
// need an external lock or a conditional create to get strict exclusivity.
package server
