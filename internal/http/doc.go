// Package http provides the HTTP handlers and middleware of the booking API.
//
// The router exposes the following endpoints:
//   - POST /sessions: issues a session token. Body: {"email","password"}.
//     Response: {"token","grade","expires_at"}.
//   - POST /accounts: registers a new account at the visitor grade. Body:
//     {"email","password"}.
//   - GET /rooms, POST /rooms, DELETE /rooms/{id}: room catalog endpoints
//     exchanging the `roomDTO` payload defined in room_handler.go. Each listed
//     room embeds the date tokens of its booked days. Listing is available to
//     any authenticated principal while mutations require the admin grade.
//   - GET /reservations?start=&end=, POST /reservations, DELETE /reservations:
//     reservation endpoints exchanging the `reservationDTO` payload defined in
//     reservation_handler.go. A reservation addresses one (room, day) cell;
//     booking an occupied cell yields 409.
//   - POST /grade-requests, GET /grade-requests,
//     POST /grade-requests/{id}/review: grade-elevation endpoints defined in
//     grade_handler.go.
//   - GET /metrics: Prometheus metrics.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
