package ui

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/gitstate/gitstate/internal/execshell"
)

const (
	commandStartedTemplateConstant   = "running %s"
	commandFinishedTemplateConstant  = "finished %s"
	commandExitCodeTemplateConstant  = "%s exited with code %d"
	commandNotRunTemplateConstant    = "%s could not run: %s"
	commandDirectoryTemplateConstant = "%s [%s]"
	commandPartSeparatorConstant     = " "
	unknownFailureConstant           = "unknown failure"
)

// ConsoleCommandEventLogger narrates command lifecycle events through a zap logger.
// It implements execshell.CommandEventObserver.
type ConsoleCommandEventLogger struct {
	logger *zap.Logger
}

// NewConsoleCommandEventLogger wraps the provided logger; a nil logger disables output.
func NewConsoleCommandEventLogger(logger *zap.Logger) *ConsoleCommandEventLogger {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ConsoleCommandEventLogger{logger: logger}
}

// CommandStarted logs the command about to run.
func (eventLogger *ConsoleCommandEventLogger) CommandStarted(command execshell.ShellCommand) {
	if eventLogger == nil {
		return
	}

	eventLogger.logger.Info(fmt.Sprintf(commandStartedTemplateConstant, describeCommand(command)))
}

// CommandCompleted logs the result of a finished command, warning on non-zero exit codes.
func (eventLogger *ConsoleCommandEventLogger) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	if eventLogger == nil {
		return
	}

	if result.ExitCode == 0 {
		eventLogger.logger.Info(fmt.Sprintf(commandFinishedTemplateConstant, describeCommand(command)))
		return
	}

	failureMessage := fmt.Sprintf(commandExitCodeTemplateConstant, describeCommand(command), result.ExitCode)
	if trimmedStandardError := strings.TrimSpace(result.StandardError); len(trimmedStandardError) > 0 {
		failureMessage = failureMessage + ": " + trimmedStandardError
	}
	eventLogger.logger.Warn(failureMessage)
}

// CommandExecutionFailed logs commands that never produced an execution result.
func (eventLogger *ConsoleCommandEventLogger) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	if eventLogger == nil {
		return
	}

	failureText := unknownFailureConstant
	if failure != nil {
		failureText = failure.Error()
	}
	eventLogger.logger.Error(fmt.Sprintf(commandNotRunTemplateConstant, describeCommand(command), failureText))
}

func describeCommand(command execshell.ShellCommand) string {
	commandParts := append([]string{string(command.Name)}, command.Details.Arguments...)
	commandText := strings.Join(commandParts, commandPartSeparatorConstant)

	workingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(workingDirectory) == 0 {
		return commandText
	}

	return fmt.Sprintf(commandDirectoryTemplateConstant, commandText, workingDirectory)
}
