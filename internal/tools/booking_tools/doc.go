// Package booking_tools provides MCP tools for querying appointment
// availability and creating bookings.
//
// The tools operate on the single calendar the service is configured for
// and apply the same work-hour, buffer, and conflict rules as the HTTP API:
//
//   - booking_list_slots: list bookable start times for a date
//   - booking_book_slot: book a slot, subject to the conflict check
//   - booking_list_events: inspect the events already on the calendar
package booking_tools
