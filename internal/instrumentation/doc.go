// Package instrumentation provides OpenTelemetry instrumentation for the
// appointed booking server.
//
// # Metrics
//
// Server/HTTP:
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//
// Booking domain:
//   - slot_queries_total: Counter of availability queries by status
//   - bookings_total: Counter of booking attempts by result (success, conflict, error)
//   - booking_conflicts_total: Counter of bookings rejected by the conflict check
//
// Calendar gateway:
//   - calendar_api_operations_total: Counter of Calendar API calls by operation and status
//   - calendar_api_operation_duration_seconds: Histogram of Calendar API call durations
//
// MCP tools:
//   - mcp_tool_invocations_total: Counter of MCP tool invocations by tool name and status
//   - mcp_tool_duration_seconds: Histogram of MCP tool execution durations
//
// # Configuration
//
// Instrumentation is configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout, default: prometheus)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none, default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: appointed)
package instrumentation
