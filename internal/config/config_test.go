package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	// t.Setenv clears and restores; setting empty forces the defaults even
	// if the test environment carries values (TZ in particular).
	for _, key := range []string{"PORT", "TZ", "GOOGLE_CALENDAR_ID", "WORK_START", "WORK_END", "BUFFER_MIN"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != DefaultPort {
		t.Errorf("Port = %s, want %s", cfg.Port, DefaultPort)
	}
	if cfg.TimeZone != DefaultTimeZone {
		t.Errorf("TimeZone = %s, want %s", cfg.TimeZone, DefaultTimeZone)
	}
	if cfg.CalendarID != DefaultCalendarID {
		t.Errorf("CalendarID = %s, want %s", cfg.CalendarID, DefaultCalendarID)
	}
	if cfg.WorkStart != DefaultWorkStart || cfg.WorkEnd != DefaultWorkEnd {
		t.Errorf("work window = %s-%s, want %s-%s", cfg.WorkStart, cfg.WorkEnd, DefaultWorkStart, DefaultWorkEnd)
	}
	if cfg.Buffer != DefaultBufferMin*time.Minute {
		t.Errorf("Buffer = %v, want %dm", cfg.Buffer, DefaultBufferMin)
	}
	if cfg.Location == nil || cfg.Location.String() != DefaultTimeZone {
		t.Errorf("Location = %v, want %s", cfg.Location, DefaultTimeZone)
	}
	if cfg.Addr() != ":8080" {
		t.Errorf("Addr() = %s, want :8080", cfg.Addr())
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("TZ", "Europe/Berlin")
	t.Setenv("GOOGLE_CALENDAR_ID", "team@group.calendar.google.com")
	t.Setenv("WORK_START", "08:30")
	t.Setenv("WORK_END", "16:30")
	t.Setenv("BUFFER_MIN", "15")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("Port = %s, want 9000", cfg.Port)
	}
	if cfg.TimeZone != "Europe/Berlin" {
		t.Errorf("TimeZone = %s, want Europe/Berlin", cfg.TimeZone)
	}
	if cfg.CalendarID != "team@group.calendar.google.com" {
		t.Errorf("CalendarID = %s", cfg.CalendarID)
	}
	if cfg.Buffer != 15*time.Minute {
		t.Errorf("Buffer = %v, want 15m", cfg.Buffer)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad port", "PORT", "not-a-port"},
		{"bad timezone", "TZ", "Mars/Olympus_Mons"},
		{"bad work start", "WORK_START", "nine"},
		{"bad work end", "WORK_END", "17"},
		{"bad buffer", "BUFFER_MIN", "half an hour"},
		{"negative buffer", "BUFFER_MIN", "-10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load accepted %s=%q, want error", tt.key, tt.value)
			}
		})
	}
}

func TestValidateRejectsEmptyWindow(t *testing.T) {
	t.Setenv("WORK_START", "17:00")
	t.Setenv("WORK_END", "09:00")

	if _, err := Load(); err == nil {
		t.Error("Load accepted inverted work window, want error")
	}
}
