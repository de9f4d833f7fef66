package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/teemow/appointed/internal/calendar"
	"github.com/teemow/appointed/internal/instrumentation"
	"github.com/teemow/appointed/internal/logging"
	"github.com/teemow/appointed/internal/schedule"
)

// BookingRequest is the JSON body of POST /api/book.
type BookingRequest struct {
	Date     string `json:"date"`
	Time     string `json:"time"`
	Duration int    `json:"duration"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// SlotsResponse is the JSON body of a successful GET /api/slots.
type SlotsResponse struct {
	Slots []string `json:"slots"`
}

// BookingResponse is the JSON body of a successful POST /api/book.
type BookingResponse struct {
	Success bool   `json:"success"`
	EventID string `json:"eventId"`
}

// ErrorResponse is the JSON body of any failed API request.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

func (s *APIServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *APIServer) handleSlots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ctx := r.Context()

	date := r.URL.Query().Get("date")
	if date == "" {
		writeError(w, http.StatusBadRequest, "missing required parameter: date")
		return
	}
	durationParam := r.URL.Query().Get("duration")
	if durationParam == "" {
		writeError(w, http.StatusBadRequest, "missing required parameter: duration")
		return
	}
	minutes, err := strconv.Atoi(durationParam)
	if err != nil || minutes <= 0 {
		writeError(w, http.StatusBadRequest, schedule.ErrInvalidDuration.Error())
		return
	}
	duration := time.Duration(minutes) * time.Minute

	window, err := schedule.ResolveWindow(date, s.cfg.WorkStart, s.cfg.WorkEnd, s.cfg.Location)
	if err != nil {
		s.metrics.RecordSlotQuery(ctx, instrumentation.StatusError)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	busy, err := s.queryFreeBusy(r, window)
	if err != nil {
		s.metrics.RecordSlotQuery(ctx, instrumentation.StatusError)
		writeError(w, http.StatusInternalServerError, "failed to fetch calendar availability")
		return
	}

	slots, err := schedule.Slots(window, duration, s.cfg.Buffer, busy)
	if err != nil {
		s.metrics.RecordSlotQuery(ctx, instrumentation.StatusError)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.metrics.RecordSlotQuery(ctx, instrumentation.StatusSuccess)
	s.logger.Info("availability query",
		logging.Operation("slots"),
		logging.Calendar(s.cfg.CalendarID),
		logging.Date(date),
		logging.Duration(minutes),
		logging.Status(logging.StatusSuccess),
		"available", len(slots),
	)
	writeJSON(w, http.StatusOK, SlotsResponse{Slots: slots})
}

func (s *APIServer) handleBook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ctx := r.Context()

	var req BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Date == "" || req.Time == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "missing required fields: date, time, duration, name")
		return
	}
	if req.Duration <= 0 {
		writeError(w, http.StatusBadRequest, schedule.ErrInvalidDuration.Error())
		return
	}
	duration := time.Duration(req.Duration) * time.Minute

	window, err := schedule.ResolveWindow(req.Date, s.cfg.WorkStart, s.cfg.WorkEnd, s.cfg.Location)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	start, err := schedule.ResolveStart(req.Date, req.Time, s.cfg.Location)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	requested := schedule.Interval{Start: start, End: start.Add(duration)}

	// Hold the lock across the conflict check and the insert so two
	// concurrent requests for the same slot cannot both pass validation.
	s.bookMu.Lock()
	defer s.bookMu.Unlock()

	busy, err := s.queryFreeBusy(r, window)
	if err != nil {
		s.metrics.RecordBooking(ctx, instrumentation.StatusError)
		writeError(w, http.StatusInternalServerError, "failed to fetch calendar availability")
		return
	}

	if err := schedule.ValidateBooking(requested, s.cfg.Buffer, busy); err != nil {
		if errors.Is(err, schedule.ErrSlotConflict) {
			s.metrics.RecordBooking(ctx, instrumentation.StatusConflict)
			s.logger.Info("booking conflict",
				logging.Operation("book"),
				logging.Calendar(s.cfg.CalendarID),
				logging.Date(req.Date),
				logging.Duration(req.Duration),
			)
			writeError(w, http.StatusConflict, schedule.ErrSlotConflict.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	input := calendar.EventInput{
		Summary:     fmt.Sprintf("Appointment: %s (%d min)", req.Name, req.Duration),
		Description: bookingDescription(req),
		Start:       requested.Start,
		End:         requested.End,
		TimeZone:    s.cfg.TimeZone,
	}

	insertStart := time.Now()
	event, err := s.gateway.InsertEvent(ctx, s.cfg.CalendarID, input)
	if err != nil {
		s.metrics.RecordCalendarOperation(ctx, instrumentation.OperationInsertEvent, instrumentation.StatusError, time.Since(insertStart))
		s.metrics.RecordBooking(ctx, instrumentation.StatusError)
		s.logger.Error("failed to create booking event",
			logging.Operation("book"),
			logging.Calendar(s.cfg.CalendarID),
			logging.Status(logging.StatusError),
			logging.Err(err),
		)
		writeError(w, http.StatusInternalServerError, "failed to create booking")
		return
	}
	s.metrics.RecordCalendarOperation(ctx, instrumentation.OperationInsertEvent, instrumentation.StatusSuccess, time.Since(insertStart))

	s.metrics.RecordBooking(ctx, instrumentation.StatusSuccess)
	s.logger.Info("booking created",
		logging.Operation("book"),
		logging.Calendar(s.cfg.CalendarID),
		logging.Date(req.Date),
		logging.Duration(req.Duration),
		logging.Status(logging.StatusSuccess),
		logging.UserHash(req.Email),
		"event_id", event.ID,
	)
	writeJSON(w, http.StatusOK, BookingResponse{Success: true, EventID: event.ID})
}

// queryFreeBusy fetches busy intervals for the window and records the
// Calendar API metrics for the lookup.
func (s *APIServer) queryFreeBusy(r *http.Request, window schedule.Window) ([]schedule.Interval, error) {
	ctx := r.Context()
	start := time.Now()
	busy, err := s.gateway.FreeBusy(ctx, s.cfg.CalendarID, window.Start, window.End)
	if err != nil {
		s.metrics.RecordCalendarOperation(ctx, instrumentation.OperationFreeBusy, instrumentation.StatusError, time.Since(start))
		s.logger.Error("freebusy lookup failed",
			logging.Operation("freebusy"),
			logging.Calendar(s.cfg.CalendarID),
			logging.Status(logging.StatusError),
			logging.Err(err),
		)
		return nil, err
	}
	s.metrics.RecordCalendarOperation(ctx, instrumentation.OperationFreeBusy, instrumentation.StatusSuccess, time.Since(start))
	return busy, nil
}

// bookingDescription assembles the event description from the contact
// fields the requester provided.
func bookingDescription(req BookingRequest) string {
	lines := []string{"Booked via appointed."}
	if req.Email != "" {
		lines = append(lines, "Email: "+req.Email)
	}
	if req.Phone != "" {
		lines = append(lines, "Phone: "+req.Phone)
	}
	if req.Notes != "" {
		lines = append(lines, "Notes: "+req.Notes)
	}
	return strings.Join(lines, "\n")
}
