// Package logging provides structured logging helpers built on log/slog:
// consistent attribute keys, error attributes that vanish when nil, and
// anonymization for booking contact details so PII never reaches the logs.
package logging
