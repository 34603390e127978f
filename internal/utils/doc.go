// Package utils holds cross-cutting helpers shared by the CLI layers:
// Viper-backed configuration loading, zap logger construction, and
// accessors for command-scoped context values.
package utils
