package scan

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gitstate/gitstate/internal/execshell"
	"github.com/gitstate/gitstate/internal/gitrepo"
	"github.com/gitstate/gitstate/internal/report"
	scanengine "github.com/gitstate/gitstate/internal/scan"
	"github.com/gitstate/gitstate/internal/ui"
	flagutils "github.com/gitstate/gitstate/internal/utils/flags"
)

const (
	commandUseConstant                    = "scan [roots...]"
	commandShortDescriptionConstant       = "Report the synchronization state of git repositories under the given roots"
	commandLongDescriptionConstant        = "scan walks the given directories, finds git repositories, and reports uncommitted changes, untracked files, stashes, and branches out of sync with their remotes. Directories holding files outside any repository and broken symbolic links are reported as well."
	commandExecutionErrorTemplateConstant = "scan failed: %w"
	renderErrorTemplateConstant           = "rendering report failed: %w"
	flagMaxDepthNameConstant              = "max-depth"
	flagMaxDepthDescriptionConstant       = "Recursion depth limit (0 scans only the roots, negative values are unbounded)"
	flagExcludeNameConstant               = "exclude"
	flagExcludeDescriptionConstant        = "Directory names or glob patterns pruned from the walk (repeatable)"
	flagSlowNameConstant                  = "slow"
	flagSlowDescriptionConstant           = "Compare local tags against the remote (network round-trip per repository)"
	flagConcurrencyNameConstant           = "concurrency"
	flagConcurrencyDescriptionConstant    = "Number of repositories inspected in parallel (0 uses all CPUs)"
	flagFormatNameConstant                = "format"
	flagFormatDescriptionConstant         = "Report format: text, json, or yaml"
	flagIncludeCleanNameConstant          = "include-clean"
	flagIncludeCleanDescriptionConstant   = "Include repositories without issues in the report"
	flagTimeoutNameConstant               = "timeout"
	flagTimeoutDescriptionConstant        = "Per-repository inspection budget"
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the persisted scan configuration.
type ConfigurationProvider func() CommandConfiguration

// HumanReadableLoggingProvider reports whether console-formatted logging is active.
type HumanReadableLoggingProvider func() bool

// CommandBuilder assembles the scan cobra command with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConfigurationProvider        ConfigurationProvider
	HumanReadableLoggingProvider HumanReadableLoggingProvider
	GitExecutor                  gitrepo.GitExecutor
	Inspector                    scanengine.RepositoryStatusInspector
	CommandEventsObserver        execshell.CommandEventObserver

	slowFlagValue         bool
	includeCleanFlagValue bool
}

// Build constructs the cobra command for repository scans.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	defaults := builder.resolveConfiguration()
	formatUsage := flagutils.FormatChoiceUsage(defaults.Format, supportedFormatNames(), flagFormatDescriptionConstant)

	command.Flags().Int(flagMaxDepthNameConstant, defaults.MaximumDepth, flagMaxDepthDescriptionConstant)
	command.Flags().StringSlice(flagExcludeNameConstant, defaults.ExcludedNames, flagExcludeDescriptionConstant)
	command.Flags().Int(flagConcurrencyNameConstant, defaults.Concurrency, flagConcurrencyDescriptionConstant)
	command.Flags().String(flagFormatNameConstant, defaults.Format, formatUsage)
	command.Flags().Duration(flagTimeoutNameConstant, defaults.RepositoryTimeout, flagTimeoutDescriptionConstant)
	flagutils.AddToggleFlag(command.Flags(), &builder.slowFlagValue, flagSlowNameConstant, "", defaults.SlowMode, flagSlowDescriptionConstant)
	flagutils.AddToggleFlag(command.Flags(), &builder.includeCleanFlagValue, flagIncludeCleanNameConstant, "", defaults.IncludeClean, flagIncludeCleanDescriptionConstant)

	return command, nil
}

func supportedFormatNames() []string {
	return []string{string(report.FormatText), string(report.FormatJSON), string(report.FormatYAML)}
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.mergedConfiguration(command, arguments)

	outputFormat, formatError := report.ParseFormat(configuration.Format)
	if formatError != nil {
		return formatError
	}

	logger := builder.resolveLogger()
	inspector, inspectorError := builder.resolveInspector(logger)
	if inspectorError != nil {
		return inspectorError
	}

	classifier := scanengine.NewPathClassifier()
	walker, walkerError := scanengine.NewTreeWalker(classifier)
	if walkerError != nil {
		return walkerError
	}
	orchestrator, orchestratorError := scanengine.NewScanOrchestrator(walker, classifier, inspector, logger)
	if orchestratorError != nil {
		return orchestratorError
	}

	scanReport, scanError := orchestrator.Scan(command.Context(), scanengine.ScanOptions{
		Roots: configuration.Roots,
		Policy: scanengine.ExclusionPolicy{
			ExcludedNames: configuration.ExcludedNames,
			MaxDepth:      configuration.MaximumDepth,
		},
		SlowMode:          configuration.SlowMode,
		Concurrency:       configuration.Concurrency,
		RepositoryTimeout: configuration.RepositoryTimeout,
	})
	if scanError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, scanError)
	}

	renderOptions := report.Options{Format: outputFormat, IncludeClean: configuration.IncludeClean}
	if renderError := report.NewRenderer().Render(command.OutOrStdout(), scanReport, renderOptions); renderError != nil {
		return fmt.Errorf(renderErrorTemplateConstant, renderError)
	}

	if scanReport.HasIssues() {
		return scanengine.ErrIssuesFound
	}
	return nil
}

// mergedConfiguration layers flag values over the persisted configuration.
// Changed flags win; untouched flags fall back to the configured values.
func (builder *CommandBuilder) mergedConfiguration(command *cobra.Command, arguments []string) CommandConfiguration {
	configuration := builder.resolveConfiguration()

	if len(arguments) > 0 {
		configuration.Roots = append([]string{}, arguments...)
	}
	if command.Flags().Changed(flagMaxDepthNameConstant) {
		configuration.MaximumDepth, _ = command.Flags().GetInt(flagMaxDepthNameConstant)
	}
	if command.Flags().Changed(flagExcludeNameConstant) {
		configuration.ExcludedNames, _ = command.Flags().GetStringSlice(flagExcludeNameConstant)
	}
	if command.Flags().Changed(flagSlowNameConstant) {
		configuration.SlowMode = builder.slowFlagValue
	}
	if command.Flags().Changed(flagConcurrencyNameConstant) {
		configuration.Concurrency, _ = command.Flags().GetInt(flagConcurrencyNameConstant)
	}
	if command.Flags().Changed(flagFormatNameConstant) {
		configuration.Format, _ = command.Flags().GetString(flagFormatNameConstant)
	}
	if command.Flags().Changed(flagIncludeCleanNameConstant) {
		configuration.IncludeClean = builder.includeCleanFlagValue
	}
	if command.Flags().Changed(flagTimeoutNameConstant) {
		configuration.RepositoryTimeout, _ = command.Flags().GetDuration(flagTimeoutNameConstant)
	}
	if configuration.RepositoryTimeout <= 0 {
		configuration.RepositoryTimeout = defaultRepositoryTimeoutConstant
	}

	return configuration.sanitize()
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveInspector(logger *zap.Logger) (scanengine.RepositoryStatusInspector, error) {
	if builder.Inspector != nil {
		return builder.Inspector, nil
	}

	gitExecutor := builder.GitExecutor
	if gitExecutor == nil {
		commandRunner := execshell.NewOSCommandRunner()
		shellExecutor, executorError := execshell.NewShellExecutor(logger, commandRunner, builder.resolveObservers(logger)...)
		if executorError != nil {
			return nil, executorError
		}
		gitExecutor = shellExecutor
	}

	repositoryManager, managerError := gitrepo.NewRepositoryManager(gitExecutor)
	if managerError != nil {
		return nil, managerError
	}
	return scanengine.NewRepositoryInspector(repositoryManager)
}

func (builder *CommandBuilder) resolveObservers(logger *zap.Logger) []execshell.CommandEventObserver {
	if builder.CommandEventsObserver != nil {
		return []execshell.CommandEventObserver{builder.CommandEventsObserver}
	}
	if builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider() {
		return []execshell.CommandEventObserver{ui.NewConsoleCommandEventLogger(logger)}
	}
	return nil
}
