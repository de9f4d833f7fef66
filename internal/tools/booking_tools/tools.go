package booking_tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/appointed/internal/calendar"
	"github.com/teemow/appointed/internal/config"
	"github.com/teemow/appointed/internal/instrumentation"
	"github.com/teemow/appointed/internal/logging"
	"github.com/teemow/appointed/internal/schedule"
)

// CalendarClient is the calendar surface the booking tools require. It is
// the Gateway plus event listing for the inspection tool.
type CalendarClient interface {
	calendar.Gateway
	ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]calendar.EventSummary, error)
}

// toolSet carries the shared dependencies of all booking tools.
type toolSet struct {
	cfg     config.Config
	client  CalendarClient
	metrics *instrumentation.Metrics

	// bookMu serializes validate-then-insert, mirroring the HTTP booking path.
	bookMu sync.Mutex
}

// RegisterBookingTools registers the booking tools with the MCP server. The
// metrics recorder may be the no-op zero value.
func RegisterBookingTools(s *mcpserver.MCPServer, cfg config.Config, client CalendarClient, metrics *instrumentation.Metrics) error {
	if client == nil {
		return fmt.Errorf("calendar client is required")
	}
	if metrics == nil {
		metrics = &instrumentation.Metrics{}
	}
	ts := &toolSet{cfg: cfg, client: client, metrics: metrics}

	listSlotsTool := mcp.NewTool("booking_list_slots",
		mcp.WithDescription("List available appointment start times for a date, honoring work hours and the booking buffer"),
		mcp.WithString("date",
			mcp.Required(),
			mcp.Description("Date to check (YYYY-MM-DD)"),
		),
		mcp.WithNumber("duration",
			mcp.Required(),
			mcp.Description("Appointment duration in minutes"),
		),
	)

	s.AddTool(listSlotsTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return ts.instrumented(ctx, "booking_list_slots", request, ts.handleListSlots)
	})

	bookSlotTool := mcp.NewTool("booking_book_slot",
		mcp.WithDescription("Book an appointment slot. Fails if the slot conflicts with an existing event or its buffer."),
		mcp.WithString("date",
			mcp.Required(),
			mcp.Description("Appointment date (YYYY-MM-DD)"),
		),
		mcp.WithString("time",
			mcp.Required(),
			mcp.Description("Appointment start time (HH:mm, 24-hour, in the configured timezone)"),
		),
		mcp.WithNumber("duration",
			mcp.Required(),
			mcp.Description("Appointment duration in minutes"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the person booking"),
		),
		mcp.WithString("email",
			mcp.Description("Contact email"),
		),
		mcp.WithString("phone",
			mcp.Description("Contact phone number"),
		),
		mcp.WithString("notes",
			mcp.Description("Free-form notes for the appointment"),
		),
	)

	s.AddTool(bookSlotTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return ts.instrumented(ctx, "booking_book_slot", request, ts.handleBookSlot)
	})

	listEventsTool := mcp.NewTool("booking_list_events",
		mcp.WithDescription("List the events already on the booking calendar for a date"),
		mcp.WithString("date",
			mcp.Required(),
			mcp.Description("Date to inspect (YYYY-MM-DD)"),
		),
	)

	s.AddTool(listEventsTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return ts.instrumented(ctx, "booking_list_events", request, ts.handleListEvents)
	})

	return nil
}

type toolHandler func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// instrumented wraps a tool handler with invocation metrics and logging. A
// tool result carrying IsError counts as an error even though the handler
// returns nil.
func (ts *toolSet) instrumented(ctx context.Context, name string, request mcp.CallToolRequest, handler toolHandler) (*mcp.CallToolResult, error) {
	start := time.Now()
	result, err := handler(ctx, request)

	status := instrumentation.StatusSuccess
	if err != nil || (result != nil && result.IsError) {
		status = instrumentation.StatusError
	}
	duration := time.Since(start)
	ts.metrics.RecordToolInvocation(ctx, name, status, duration)
	slog.Debug("tool invocation",
		logging.Tool(name),
		logging.Status(status),
		"duration_ms", duration.Milliseconds(),
	)

	return result, err
}

func (ts *toolSet) handleListSlots(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	date, ok := args["date"].(string)
	if !ok || date == "" {
		return mcp.NewToolResultError("date is required"), nil
	}
	minutes, ok := args["duration"].(float64)
	if !ok || minutes <= 0 {
		return mcp.NewToolResultError("duration is required and must be positive"), nil
	}
	duration := time.Duration(minutes) * time.Minute

	window, err := schedule.ResolveWindow(date, ts.cfg.WorkStart, ts.cfg.WorkEnd, ts.cfg.Location)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid date: %v", err)), nil
	}

	busy, err := ts.client.FreeBusy(ctx, ts.cfg.CalendarID, window.Start, window.End)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to query availability: %v", err)), nil
	}

	slots, err := schedule.Slots(window, duration, ts.cfg.Buffer, busy)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to compute slots: %v", err)), nil
	}

	if len(slots) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No available %d minute slots on %s.", int(minutes), date)), nil
	}

	result := fmt.Sprintf("Available %d minute slots on %s (%s):\n", int(minutes), date, ts.cfg.TimeZone)
	for _, slot := range slots {
		result += fmt.Sprintf("  %s\n", slot)
	}

	return mcp.NewToolResultText(result), nil
}

func (ts *toolSet) handleBookSlot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	date, ok := args["date"].(string)
	if !ok || date == "" {
		return mcp.NewToolResultError("date is required"), nil
	}
	startClock, ok := args["time"].(string)
	if !ok || startClock == "" {
		return mcp.NewToolResultError("time is required"), nil
	}
	minutes, ok := args["duration"].(float64)
	if !ok || minutes <= 0 {
		return mcp.NewToolResultError("duration is required and must be positive"), nil
	}
	name, ok := args["name"].(string)
	if !ok || name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}

	email, _ := args["email"].(string)
	phone, _ := args["phone"].(string)
	notes, _ := args["notes"].(string)

	duration := time.Duration(minutes) * time.Minute

	window, err := schedule.ResolveWindow(date, ts.cfg.WorkStart, ts.cfg.WorkEnd, ts.cfg.Location)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid date: %v", err)), nil
	}
	start, err := schedule.ResolveStart(date, startClock, ts.cfg.Location)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid time: %v", err)), nil
	}
	requested := schedule.Interval{Start: start, End: start.Add(duration)}

	ts.bookMu.Lock()
	defer ts.bookMu.Unlock()

	busy, err := ts.client.FreeBusy(ctx, ts.cfg.CalendarID, window.Start, window.End)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to query availability: %v", err)), nil
	}

	if err := schedule.ValidateBooking(requested, ts.cfg.Buffer, busy); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	description := []string{"Booked via appointed."}
	if email != "" {
		description = append(description, "Email: "+email)
	}
	if phone != "" {
		description = append(description, "Phone: "+phone)
	}
	if notes != "" {
		description = append(description, "Notes: "+notes)
	}

	event, err := ts.client.InsertEvent(ctx, ts.cfg.CalendarID, calendar.EventInput{
		Summary:     fmt.Sprintf("Appointment: %s (%d min)", name, int(minutes)),
		Description: strings.Join(description, "\n"),
		Start:       requested.Start,
		End:         requested.End,
		TimeZone:    ts.cfg.TimeZone,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create booking: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Booked %s at %s for %d minutes.\nEvent ID: %s",
		date, startClock, int(minutes), event.ID)), nil
}

func (ts *toolSet) handleListEvents(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	date, ok := args["date"].(string)
	if !ok || date == "" {
		return mcp.NewToolResultError("date is required"), nil
	}

	window, err := schedule.ResolveWindow(date, ts.cfg.WorkStart, ts.cfg.WorkEnd, ts.cfg.Location)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid date: %v", err)), nil
	}

	events, err := ts.client.ListEvents(ctx, ts.cfg.CalendarID, window.Start, window.End)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list events: %v", err)), nil
	}

	if len(events) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No events on %s within work hours.", date)), nil
	}

	result := fmt.Sprintf("Events on %s:\n", date)
	for i, event := range events {
		summary := event.Summary
		if summary == "" {
			summary = "(no title)"
		}
		result += fmt.Sprintf("%d. %s\n   %s to %s\n",
			i+1,
			summary,
			event.Start.In(ts.cfg.Location).Format("15:04"),
			event.End.In(ts.cfg.Location).Format("15:04"))
		if event.Status != "" {
			result += fmt.Sprintf("   Status: %s\n", event.Status)
		}
	}

	return mcp.NewToolResultText(result), nil
}
