package execshell

// CommandEventObserver is notified at each stage of a command's lifecycle.
// Observers must be safe for concurrent use; scans invoke git from multiple
// inspection workers.
type CommandEventObserver interface {
	// CommandStarted fires immediately before the command process launches.
	CommandStarted(command ShellCommand)
	// CommandCompleted fires once the command produced an execution result,
	// including results with non-zero exit codes.
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed fires when the command never produced a result,
	// such as a missing executable or a cancelled context.
	CommandExecutionFailed(command ShellCommand, failure error)
}

// noopCommandEventObserver is the default observer when none is supplied.
type noopCommandEventObserver struct{}

func (noopCommandEventObserver) CommandStarted(ShellCommand)                    {}
func (noopCommandEventObserver) CommandCompleted(ShellCommand, ExecutionResult) {}
func (noopCommandEventObserver) CommandExecutionFailed(ShellCommand, error)     {}
