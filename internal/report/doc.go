// Package report renders scan results for human and machine consumers.
package report
