package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"os"
)

// Common log attribute keys for consistent naming across the codebase.
const (
	KeyOperation = "operation"
	KeyCalendar  = "calendar"
	KeyDate      = "date"
	KeyDuration  = "duration_min"
	KeyStatus    = "status"
	KeyError     = "error"
	KeyUserHash  = "user_hash"
	KeyTool      = "tool"
)

// Status values for consistent logging.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Setup installs a JSON handler as the default logger. Debug mode lowers
// the level threshold.
func Setup(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// Operation returns a slog attribute for the operation name.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Calendar returns a slog attribute for the calendar identifier.
func Calendar(id string) slog.Attr {
	return slog.String(KeyCalendar, id)
}

// Date returns a slog attribute for the requested booking date.
func Date(date string) slog.Attr {
	return slog.String(KeyDate, date)
}

// Duration returns a slog attribute for the requested duration in minutes.
func Duration(minutes int) slog.Attr {
	return slog.Int(KeyDuration, minutes)
}

// Status returns a slog attribute for the status.
func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// Tool returns a slog attribute for the MCP tool name.
func Tool(tool string) slog.Attr {
	return slog.String(KeyTool, tool)
}

// Err returns a slog attribute for an error. If err is nil, it returns an
// empty Group attribute that slog omits from output, so Err(maybeNilErr) is
// always safe to pass.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// AnonymizeEmail returns a hashed representation of an email for logging
// purposes. This allows correlation of log entries without exposing PII.
func AnonymizeEmail(email string) string {
	if email == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(email))
	return "user:" + hex.EncodeToString(hash[:8])
}

// UserHash returns a slog attribute with the anonymized booking email. An
// empty email yields an empty Group attribute that slog omits, so bookings
// without a contact email log no user_hash at all.
func UserHash(email string) slog.Attr {
	if email == "" {
		return slog.Group("")
	}
	return slog.String(KeyUserHash, AnonymizeEmail(email))
}
