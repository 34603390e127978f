// Package execshell provides structured helpers for invoking git.
//
// It wraps os/exec behind the CommandRunner abstraction, exposes
// OSCommandRunner for default process execution, and offers ShellExecutor
// which logs command lifecycles and notifies observers so every git
// invocation made during a scan is traceable.
package execshell
