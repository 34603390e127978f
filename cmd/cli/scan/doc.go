// Package scan wires the repository scan engine into the CLI.
package scan
