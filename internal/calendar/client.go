package calendar

import (
	"context"
	"fmt"
	"time"

	calendar "google.golang.org/api/calendar/v3"

	"github.com/teemow/appointed/internal/google"
	"github.com/teemow/appointed/internal/schedule"
)

// Gateway is the calendar surface the booking handlers consume.
type Gateway interface {
	// FreeBusy returns the busy intervals of a calendar within a time range.
	FreeBusy(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]schedule.Interval, error)

	// InsertEvent creates a new event on a calendar.
	InsertEvent(ctx context.Context, calendarID string, input EventInput) (*EventSummary, error)
}

// Client wraps the Google Calendar service.
type Client struct {
	svc *calendar.Service
}

var _ Gateway = (*Client)(nil)

// NewClient creates a Calendar client authenticated through the given
// credential provider.
func NewClient(ctx context.Context, provider google.CredentialProvider) (*Client, error) {
	if provider == nil {
		return nil, fmt.Errorf("credential provider cannot be nil")
	}

	opts, err := provider.ClientOptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s credentials: %w", provider.Name(), err)
	}

	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	return &Client{svc: svc}, nil
}

// FreeBusy queries the busy intervals of a calendar within a time range.
func (c *Client) FreeBusy(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]schedule.Interval, error) {
	query := &calendar.FreeBusyRequest{
		TimeMin: timeMin.Format(time.RFC3339),
		TimeMax: timeMax.Format(time.RFC3339),
		Items:   []*calendar.FreeBusyRequestItem{{Id: calendarID}},
	}

	result, err := c.svc.Freebusy.Query(query).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to query freebusy: %w", err)
	}

	cal, ok := result.Calendars[calendarID]
	if !ok {
		return nil, fmt.Errorf("calendar %s missing from freebusy response", calendarID)
	}
	for _, calErr := range cal.Errors {
		return nil, fmt.Errorf("freebusy lookup failed for %s: %s", calendarID, calErr.Reason)
	}

	var busy []schedule.Interval
	for _, period := range cal.Busy {
		start, err := time.Parse(time.RFC3339, period.Start)
		if err != nil {
			return nil, fmt.Errorf("invalid busy start %q: %w", period.Start, err)
		}
		end, err := time.Parse(time.RFC3339, period.End)
		if err != nil {
			return nil, fmt.Errorf("invalid busy end %q: %w", period.End, err)
		}
		busy = append(busy, schedule.Interval{Start: start, End: end})
	}

	return busy, nil
}

// InsertEvent creates a new calendar event for a confirmed booking.
func (c *Client) InsertEvent(ctx context.Context, calendarID string, input EventInput) (*EventSummary, error) {
	event := &calendar.Event{
		Summary:     input.Summary,
		Description: input.Description,
		Start: &calendar.EventDateTime{
			DateTime: input.Start.Format(time.RFC3339),
			TimeZone: input.TimeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: input.End.Format(time.RFC3339),
			TimeZone: input.TimeZone,
		},
	}

	created, err := c.svc.Events.Insert(calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	summary := toEventSummary(created)
	return &summary, nil
}

// ListEvents lists events in a calendar within a time range, ordered by
// start time. Used by the MCP inspection tool; the booking path itself only
// needs freebusy data.
func (c *Client) ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]EventSummary, error) {
	events, err := c.svc.Events.List(calendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	var summaries []EventSummary
	for _, event := range events.Items {
		summaries = append(summaries, toEventSummary(event))
	}

	return summaries, nil
}
