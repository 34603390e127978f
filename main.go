package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/gitstate/gitstate/cmd/cli"
	"github.com/gitstate/gitstate/internal/scan"
)

const (
	exitErrorTemplateConstant = "%v\n"
	exitCodeIssuesFound       = 1
	exitCodeFailure           = 2
)

// main executes the gitstate command-line application.
//
// Exit codes: 0 for a clean scan, 1 when the scan completed and found
// issues, 2 for any hard failure.
func main() {
	executionError := cli.Execute()
	if executionError == nil {
		return
	}
	if errors.Is(executionError, scan.ErrIssuesFound) {
		os.Exit(exitCodeIssuesFound)
	}
	fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
	os.Exit(exitCodeFailure)
}
