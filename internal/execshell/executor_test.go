package execshell_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/gitstate/gitstate/internal/execshell"
)

const (
	testExecutionSuccessCaseNameConstant     = "success"
	testExecutionFailureCaseNameConstant     = "failure_exit_code"
	testExecutionRunnerErrorCaseNameConstant = "runner_error"
	testLoggerValidationCaseNameConstant     = "logger_validation"
	testRunnerValidationCaseNameConstant     = "runner_validation"
	testSuccessfulCreationCaseNameConstant   = "successful_initialization"
	testCommandArgumentConstant              = "--version"
	testStandardErrorOutputConstant          = "failure"
)

type recordingCommandRunner struct {
	executionResult  execshell.ExecutionResult
	executionError   error
	recordedCommands []execshell.ShellCommand
}

func (runner *recordingCommandRunner) Run(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	runner.recordedCommands = append(runner.recordedCommands, command)
	return runner.executionResult, runner.executionError
}

type recordingEventObserver struct {
	startedCommands   []execshell.ShellCommand
	completedCommands []execshell.ShellCommand
	failedCommands    []execshell.ShellCommand
}

func (eventObserver *recordingEventObserver) CommandStarted(command execshell.ShellCommand) {
	eventObserver.startedCommands = append(eventObserver.startedCommands, command)
}

func (eventObserver *recordingEventObserver) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	eventObserver.completedCommands = append(eventObserver.completedCommands, command)
}

func (eventObserver *recordingEventObserver) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	eventObserver.failedCommands = append(eventObserver.failedCommands, command)
}

func TestShellExecutorInitializationValidation(testInstance *testing.T) {
	testCases := []struct {
		name          string
		logger        *zap.Logger
		runner        execshell.CommandRunner
		expectedError error
	}{
		{
			name:          testLoggerValidationCaseNameConstant,
			logger:        nil,
			runner:        &recordingCommandRunner{},
			expectedError: execshell.ErrLoggerNotConfigured,
		},
		{
			name:          testRunnerValidationCaseNameConstant,
			logger:        zap.NewNop(),
			runner:        nil,
			expectedError: execshell.ErrCommandRunnerNotConfigured,
		},
		{
			name:   testSuccessfulCreationCaseNameConstant,
			logger: zap.NewNop(),
			runner: &recordingCommandRunner{},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor, creationError := execshell.NewShellExecutor(testCase.logger, testCase.runner)
			if testCase.expectedError != nil {
				require.ErrorIs(testInstance, creationError, testCase.expectedError)
				return
			}
			require.NoError(testInstance, creationError)
			require.NotNil(testInstance, executor)
		})
	}
}

func TestShellExecutorExecuteGitBehavior(testInstance *testing.T) {
	testCases := []struct {
		name               string
		runnerResult       execshell.ExecutionResult
		runnerError        error
		expectFailedError  bool
		expectRunnerError  bool
		expectedLogEntries int
	}{
		{
			name:               testExecutionSuccessCaseNameConstant,
			runnerResult:       execshell.ExecutionResult{StandardOutput: "ok"},
			expectedLogEntries: 2,
		},
		{
			name:               testExecutionFailureCaseNameConstant,
			runnerResult:       execshell.ExecutionResult{StandardError: testStandardErrorOutputConstant, ExitCode: 1},
			expectFailedError:  true,
			expectedLogEntries: 2,
		},
		{
			name:               testExecutionRunnerErrorCaseNameConstant,
			runnerError:        errors.New("runner failure"),
			expectRunnerError:  true,
			expectedLogEntries: 2,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observerCore, observedLogs := observer.New(zap.DebugLevel)
			logger := zap.New(observerCore)
			commandRunner := &recordingCommandRunner{executionResult: testCase.runnerResult, executionError: testCase.runnerError}
			eventObserver := &recordingEventObserver{}

			executor, creationError := execshell.NewShellExecutor(logger, commandRunner, eventObserver)
			require.NoError(testInstance, creationError)

			commandDetails := execshell.CommandDetails{Arguments: []string{testCommandArgumentConstant}}
			executionResult, executionError := executor.ExecuteGit(context.Background(), commandDetails)

			require.Len(testInstance, commandRunner.recordedCommands, 1)
			require.Equal(testInstance, execshell.CommandGit, commandRunner.recordedCommands[0].Name)
			require.Len(testInstance, eventObserver.startedCommands, 1)
			require.Equal(testInstance, testCase.expectedLogEntries, observedLogs.Len())

			switch {
			case testCase.expectRunnerError:
				executionFailure := execshell.CommandExecutionError{}
				require.ErrorAs(testInstance, executionError, &executionFailure)
				require.Len(testInstance, eventObserver.failedCommands, 1)
			case testCase.expectFailedError:
				commandFailure := execshell.CommandFailedError{}
				require.ErrorAs(testInstance, executionError, &commandFailure)
				require.Equal(testInstance, testCase.runnerResult.ExitCode, executionResult.ExitCode)
				require.Len(testInstance, eventObserver.completedCommands, 1)
			default:
				require.NoError(testInstance, executionError)
				require.Equal(testInstance, testCase.runnerResult.StandardOutput, executionResult.StandardOutput)
				require.Len(testInstance, eventObserver.completedCommands, 1)
			}
		})
	}
}
