package execshell

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
)

// OSCommandRunner runs commands as real operating system processes.
type OSCommandRunner struct{}

// NewOSCommandRunner returns a runner backed by os/exec.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{}
}

// Run executes the command and captures its output streams. A non-zero exit
// code is returned inside the ExecutionResult rather than as an error; only
// failures to launch or complete the process surface as errors.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	processCommand := exec.CommandContext(executionContext, string(command.Name), command.Details.Arguments...)
	processCommand.Dir = command.Details.WorkingDirectory
	processCommand.Env = mergedEnvironment(command.Details.EnvironmentVariables)

	var standardOutput bytes.Buffer
	var standardError bytes.Buffer
	processCommand.Stdout = &standardOutput
	processCommand.Stderr = &standardError

	runError := processCommand.Run()

	executionResult := ExecutionResult{
		StandardOutput: standardOutput.String(),
		StandardError:  standardError.String(),
	}

	var exitError *exec.ExitError
	if errors.As(runError, &exitError) {
		executionResult.ExitCode = exitError.ExitCode()
		return executionResult, nil
	}
	if runError != nil {
		return ExecutionResult{}, runError
	}

	return executionResult, nil
}

func mergedEnvironment(environmentVariables map[string]string) []string {
	if len(environmentVariables) == 0 {
		return nil
	}

	environment := os.Environ()
	for variableName, variableValue := range environmentVariables {
		environment = append(environment, variableName+"="+variableValue)
	}

	return environment
}
