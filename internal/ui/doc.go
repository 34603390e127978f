// Package ui renders command execution events as concise console
// messages for interactive runs, leaving structured telemetry to the
// configured zap logger.
package ui
