package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/appointed/internal/calendar"
	"github.com/teemow/appointed/internal/config"
	"github.com/teemow/appointed/internal/schedule"
)

// fakeGateway is an in-memory calendar.Gateway for handler tests.
type fakeGateway struct {
	busy []schedule.Interval

	freeBusyErr error
	insertErr   error

	inserted []calendar.EventInput
}

func (f *fakeGateway) FreeBusy(_ context.Context, _ string, _, _ time.Time) ([]schedule.Interval, error) {
	if f.freeBusyErr != nil {
		return nil, f.freeBusyErr
	}
	return f.busy, nil
}

func (f *fakeGateway) InsertEvent(_ context.Context, _ string, input calendar.EventInput) (*calendar.EventSummary, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	f.inserted = append(f.inserted, input)
	return &calendar.EventSummary{
		ID:    "evt-123",
		Start: input.Start,
		End:   input.End,
	}, nil
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	loc, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)
	return config.Config{
		Port:       "8080",
		TimeZone:   "America/Los_Angeles",
		Location:   loc,
		CalendarID: "primary",
		WorkStart:  "09:00",
		WorkEnd:    "17:00",
		Buffer:     30 * time.Minute,
	}
}

func testServer(t *testing.T, gateway calendar.Gateway) *APIServer {
	t.Helper()
	return NewAPIServer(testConfig(t), gateway, nil, nil)
}

func busyAt(t *testing.T, loc *time.Location, date, start, end string) schedule.Interval {
	t.Helper()
	s, err := schedule.ResolveStart(date, start, loc)
	require.NoError(t, err)
	e, err := schedule.ResolveStart(date, end, loc)
	require.NoError(t, err)
	return schedule.Interval{Start: s, End: e}
}

func TestHandleHealth(t *testing.T) {
	srv := testServer(t, &fakeGateway{})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body["ok"])
}

func TestHandleSlots(t *testing.T) {
	t.Run("empty calendar yields the full grid", func(t *testing.T) {
		srv := testServer(t, &fakeGateway{})
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/slots?date=2024-06-10&duration=60", nil))

		require.Equal(t, http.StatusOK, rec.Code)

		var body SlotsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		// 09:00 through 15:30 on a 15-minute grid.
		require.Len(t, body.Slots, 27)
		assert.Equal(t, "09:00", body.Slots[0])
		assert.Equal(t, "15:30", body.Slots[26])
	})

	t.Run("busy interval removes overlapping slots", func(t *testing.T) {
		loc := testConfig(t).Location
		gateway := &fakeGateway{
			busy: []schedule.Interval{busyAt(t, loc, "2024-06-10", "10:00", "11:00")},
		}
		srv := testServer(t, gateway)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/slots?date=2024-06-10&duration=60", nil))

		require.Equal(t, http.StatusOK, rec.Code)

		var body SlotsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		// A 60 minute slot needs to end 30 minutes before the busy block
		// and start 30 minutes after it, so nothing fits until 11:30.
		assert.NotContains(t, body.Slots, "10:00")
		assert.NotContains(t, body.Slots, "09:00")
		assert.NotContains(t, body.Slots, "11:15")
		assert.Contains(t, body.Slots, "11:30")
	})

	t.Run("fully booked day returns empty array not null", func(t *testing.T) {
		loc := testConfig(t).Location
		gateway := &fakeGateway{
			busy: []schedule.Interval{busyAt(t, loc, "2024-06-10", "09:00", "17:00")},
		}
		srv := testServer(t, gateway)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/slots?date=2024-06-10&duration=60", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"slots":[]}`, rec.Body.String())
	})

	t.Run("validation errors", func(t *testing.T) {
		tests := []struct {
			name   string
			target string
		}{
			{name: "missing date", target: "/api/slots?duration=60"},
			{name: "missing duration", target: "/api/slots?date=2024-06-10"},
			{name: "malformed date", target: "/api/slots?date=June-10&duration=60"},
			{name: "malformed duration", target: "/api/slots?date=2024-06-10&duration=banana"},
			{name: "zero duration", target: "/api/slots?date=2024-06-10&duration=0"},
			{name: "negative duration", target: "/api/slots?date=2024-06-10&duration=-30"},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				srv := testServer(t, &fakeGateway{})
				rec := httptest.NewRecorder()
				srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.target, nil))

				assert.Equal(t, http.StatusBadRequest, rec.Code)

				var body ErrorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.NotEmpty(t, body.Error)
			})
		}
	})

	t.Run("gateway failure maps to 500", func(t *testing.T) {
		srv := testServer(t, &fakeGateway{freeBusyErr: errors.New("boom")})
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/slots?date=2024-06-10&duration=60", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("rejects non-GET", func(t *testing.T) {
		srv := testServer(t, &fakeGateway{})
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/slots?date=2024-06-10&duration=60", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func postBooking(t *testing.T, srv *APIServer, req BookingRequest) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(req)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/book", bytes.NewReader(payload)))
	return rec
}

func TestHandleBook(t *testing.T) {
	t.Run("creates event for a free slot", func(t *testing.T) {
		gateway := &fakeGateway{}
		srv := testServer(t, gateway)
		rec := postBooking(t, srv, BookingRequest{
			Date:     "2024-06-10",
			Time:     "10:00",
			Duration: 60,
			Name:     "Ada Lovelace",
			Email:    "ada@example.com",
			Notes:    "first consultation",
		})

		require.Equal(t, http.StatusOK, rec.Code)

		var body BookingResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.True(t, body.Success)
		assert.Equal(t, "evt-123", body.EventID)

		require.Len(t, gateway.inserted, 1)
		event := gateway.inserted[0]
		assert.Equal(t, "Appointment: Ada Lovelace (60 min)", event.Summary)
		assert.Contains(t, event.Description, "ada@example.com")
		assert.Contains(t, event.Description, "first consultation")
		assert.Equal(t, "America/Los_Angeles", event.TimeZone)
		assert.Equal(t, 60*time.Minute, event.End.Sub(event.Start))
	})

	t.Run("booking log anonymizes the email and omits it when absent", func(t *testing.T) {
		var logBuf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&logBuf, nil))
		srv := NewAPIServer(testConfig(t), &fakeGateway{}, nil, logger)

		rec := postBooking(t, srv, BookingRequest{
			Date:     "2024-06-10",
			Time:     "10:00",
			Duration: 60,
			Name:     "Ada Lovelace",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, logBuf.String(), "user_hash")

		logBuf.Reset()
		rec = postBooking(t, srv, BookingRequest{
			Date:     "2024-06-10",
			Time:     "14:00",
			Duration: 60,
			Name:     "Ada Lovelace",
			Email:    "ada@example.com",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, logBuf.String(), "user_hash")
		assert.NotContains(t, logBuf.String(), "ada@example.com")
	})

	t.Run("conflicting slot returns 409", func(t *testing.T) {
		loc := testConfig(t).Location
		gateway := &fakeGateway{
			busy: []schedule.Interval{busyAt(t, loc, "2024-06-10", "09:30", "10:00")},
		}
		srv := testServer(t, gateway)
		rec := postBooking(t, srv, BookingRequest{
			Date:     "2024-06-10",
			Time:     "09:00",
			Duration: 60,
			Name:     "Ada Lovelace",
		})

		require.Equal(t, http.StatusConflict, rec.Code)
		assert.JSONEq(t, `{"error":"slot no longer available"}`, rec.Body.String())
		assert.Empty(t, gateway.inserted)
	})

	t.Run("buffer alone causes a conflict", func(t *testing.T) {
		// Busy 11:00-12:00 with a 30 minute buffer rejects a 09:45-10:45
		// request even though the intervals themselves never overlap.
		loc := testConfig(t).Location
		gateway := &fakeGateway{
			busy: []schedule.Interval{busyAt(t, loc, "2024-06-10", "11:00", "12:00")},
		}
		srv := testServer(t, gateway)
		rec := postBooking(t, srv, BookingRequest{
			Date:     "2024-06-10",
			Time:     "09:45",
			Duration: 60,
			Name:     "Ada Lovelace",
		})

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("validation errors", func(t *testing.T) {
		tests := []struct {
			name string
			req  BookingRequest
		}{
			{name: "missing date", req: BookingRequest{Time: "10:00", Duration: 60, Name: "Ada"}},
			{name: "missing time", req: BookingRequest{Date: "2024-06-10", Duration: 60, Name: "Ada"}},
			{name: "missing name", req: BookingRequest{Date: "2024-06-10", Time: "10:00", Duration: 60}},
			{name: "zero duration", req: BookingRequest{Date: "2024-06-10", Time: "10:00", Name: "Ada"}},
			{name: "malformed date", req: BookingRequest{Date: "someday", Time: "10:00", Duration: 60, Name: "Ada"}},
			{name: "malformed time", req: BookingRequest{Date: "2024-06-10", Time: "noonish", Duration: 60, Name: "Ada"}},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				gateway := &fakeGateway{}
				srv := testServer(t, gateway)
				rec := postBooking(t, srv, tc.req)

				assert.Equal(t, http.StatusBadRequest, rec.Code)
				assert.Empty(t, gateway.inserted)
			})
		}
	})

	t.Run("invalid JSON body", func(t *testing.T) {
		srv := testServer(t, &fakeGateway{})
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/book", bytes.NewReader([]byte("{"))))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("freebusy failure maps to 500", func(t *testing.T) {
		srv := testServer(t, &fakeGateway{freeBusyErr: errors.New("boom")})
		rec := postBooking(t, srv, BookingRequest{
			Date:     "2024-06-10",
			Time:     "10:00",
			Duration: 60,
			Name:     "Ada Lovelace",
		})

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("insert failure maps to 500", func(t *testing.T) {
		srv := testServer(t, &fakeGateway{insertErr: errors.New("quota exceeded")})
		rec := postBooking(t, srv, BookingRequest{
			Date:     "2024-06-10",
			Time:     "10:00",
			Duration: 60,
			Name:     "Ada Lovelace",
		})

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("rejects non-POST", func(t *testing.T) {
		srv := testServer(t, &fakeGateway{})
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/book", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}
