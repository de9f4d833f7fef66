// Package cmd implements the command-line interface for appointed.
//
// This package provides the following commands:
//   - serve: Start the appointment booking HTTP API
//   - mcp: Start the MCP server to provide booking tools for AI assistants
//   - version: Display version information
//
// The serve command is the default command when no subcommand is specified.
package cmd
