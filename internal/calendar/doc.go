// Package calendar wraps the Google Calendar API as the gateway the booking
// core talks to: busy-interval lookup via freebusy queries and event
// creation for confirmed bookings.
//
// Handlers depend on the Gateway interface rather than the concrete Client,
// so tests can substitute an in-memory fake.
package calendar
