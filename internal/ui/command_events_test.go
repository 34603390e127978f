package ui_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/gitstate/gitstate/internal/execshell"
	"github.com/gitstate/gitstate/internal/ui"
)

func newObservedEventLogger(testInstance *testing.T) (*ui.ConsoleCommandEventLogger, *observer.ObservedLogs) {
	testInstance.Helper()

	observedCore, observedLogs := observer.New(zapcore.DebugLevel)

	return ui.NewConsoleCommandEventLogger(zap.New(observedCore)), observedLogs
}

func statusCommand(workingDirectory string) execshell.ShellCommand {
	return execshell.ShellCommand{
		Name: execshell.CommandGit,
		Details: execshell.CommandDetails{
			Arguments:        []string{"status", "--porcelain"},
			WorkingDirectory: workingDirectory,
		},
	}
}

func TestConsoleCommandEventLoggerMessages(testInstance *testing.T) {
	testCases := []struct {
		name            string
		emitEvent       func(eventLogger *ui.ConsoleCommandEventLogger)
		expectedLevel   zapcore.Level
		expectedMessage string
	}{
		{
			name: "started_event_logged_at_info",
			emitEvent: func(eventLogger *ui.ConsoleCommandEventLogger) {
				eventLogger.CommandStarted(statusCommand("/tmp/project"))
			},
			expectedLevel:   zapcore.InfoLevel,
			expectedMessage: "running git status --porcelain [/tmp/project]",
		},
		{
			name: "zero_exit_logged_at_info",
			emitEvent: func(eventLogger *ui.ConsoleCommandEventLogger) {
				eventLogger.CommandCompleted(statusCommand(""), execshell.ExecutionResult{ExitCode: 0})
			},
			expectedLevel:   zapcore.InfoLevel,
			expectedMessage: "finished git status --porcelain",
		},
		{
			name: "nonzero_exit_logged_at_warn_with_stderr",
			emitEvent: func(eventLogger *ui.ConsoleCommandEventLogger) {
				eventLogger.CommandCompleted(statusCommand("/tmp/project"), execshell.ExecutionResult{
					ExitCode:      128,
					StandardError: "fatal: not a git repository\n",
				})
			},
			expectedLevel:   zapcore.WarnLevel,
			expectedMessage: "git status --porcelain [/tmp/project] exited with code 128: fatal: not a git repository",
		},
		{
			name: "nonzero_exit_without_stderr_omits_detail",
			emitEvent: func(eventLogger *ui.ConsoleCommandEventLogger) {
				eventLogger.CommandCompleted(statusCommand(""), execshell.ExecutionResult{ExitCode: 1})
			},
			expectedLevel:   zapcore.WarnLevel,
			expectedMessage: "git status --porcelain exited with code 1",
		},
		{
			name: "execution_failure_logged_at_error",
			emitEvent: func(eventLogger *ui.ConsoleCommandEventLogger) {
				eventLogger.CommandExecutionFailed(statusCommand(""), errors.New("executable not found"))
			},
			expectedLevel:   zapcore.ErrorLevel,
			expectedMessage: "git status --porcelain could not run: executable not found",
		},
		{
			name: "nil_failure_reported_as_unknown",
			emitEvent: func(eventLogger *ui.ConsoleCommandEventLogger) {
				eventLogger.CommandExecutionFailed(statusCommand(""), nil)
			},
			expectedLevel:   zapcore.ErrorLevel,
			expectedMessage: "git status --porcelain could not run: unknown failure",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			eventLogger, observedLogs := newObservedEventLogger(subtestInstance)

			testCase.emitEvent(eventLogger)

			loggedEntries := observedLogs.All()
			require.Len(subtestInstance, loggedEntries, 1)
			require.Equal(subtestInstance, testCase.expectedLevel, loggedEntries[0].Level)
			require.Equal(subtestInstance, testCase.expectedMessage, loggedEntries[0].Message)
		})
	}
}

func TestNewConsoleCommandEventLoggerToleratesNilLogger(testInstance *testing.T) {
	eventLogger := ui.NewConsoleCommandEventLogger(nil)
	require.NotNil(testInstance, eventLogger)

	eventLogger.CommandStarted(statusCommand(""))
	eventLogger.CommandCompleted(statusCommand(""), execshell.ExecutionResult{ExitCode: 0})
	eventLogger.CommandExecutionFailed(statusCommand(""), errors.New("boom"))
}
