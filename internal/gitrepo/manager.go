package gitrepo

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/gitstate/gitstate/internal/execshell"
)

const (
	gitRevParseSubcommandConstant     = "rev-parse"
	gitIsInsideWorkTreeFlagConstant   = "--is-inside-work-tree"
	gitShortFlagConstant              = "--short"
	gitQuietFlagConstant              = "--quiet"
	gitHeadReferenceConstant          = "HEAD"
	gitStatusSubcommandConstant       = "status"
	gitStatusPorcelainFlagConstant    = "--porcelain"
	gitStashSubcommandConstant        = "stash"
	gitStashListSubcommandConstant    = "list"
	gitSymbolicRefSubcommandConstant  = "symbolic-ref"
	gitForEachRefSubcommandConstant   = "for-each-ref"
	gitFormatFlagConstant             = "--format"
	gitLSRemoteSubcommandConstant     = "ls-remote"
	gitTagsFlagConstant               = "--tags"
	gitTerminalPromptVariableConstant = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptDisabledConstant = "0"
	gitBranchRefsPrefixConstant       = "refs/heads"
	gitTagRefsPrefixConstant          = "refs/tags"
	gitTrueOutputConstant             = "true"
	gitUntrackedStatusPrefixConstant  = "??"
	gitRefsTagsLinePrefixConstant     = "refs/tags/"
	gitPeeledTagSuffixConstant        = "^{}"
	branchListFormatConstant          = "%(refname:short)\x1f%(upstream:short)\x1f%(upstream:remotename)\x1f%(upstream:track)"
	tagListFormatConstant             = "%(refname:short)\x1f%(objectname)\x1f%(*objectname)"
	refFieldSeparatorConstant         = "\x1f"
	trackingGoneTokenConstant         = "gone"
	trackingAheadTokenConstant        = "ahead"
	trackingBehindTokenConstant       = "behind"
	newlineConstant                   = "\n"
	statusEntryMinimumLengthConstant  = 4
	trackingCounterSeparatorConstant  = ","
	trackingBracketOpenConstant       = "["
	trackingBracketCloseConstant      = "]"
	defaultRemoteNameConstant         = "origin"
	executorRequiredMessageConstant   = "repository manager requires a git executor"
	remoteNameRequiredMessageConstant = "remote name must not be empty"
)

// ErrExecutorNotConfigured indicates a RepositoryManager was constructed without an executor.
var ErrExecutorNotConfigured = errors.New(executorRequiredMessageConstant)

// ErrRemoteNameRequired indicates a remote tag listing was requested without a remote.
var ErrRemoteNameRequired = errors.New(remoteNameRequiredMessageConstant)

// GitExecutor exposes the subset of shell execution RepositoryManager depends on.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// WorktreeStatus summarizes the uncommitted state of a repository working tree.
type WorktreeStatus struct {
	HasUncommittedChanges bool
	UntrackedFiles        []string
}

// HeadState describes where HEAD currently points.
type HeadState struct {
	Detached        bool
	BranchName      string
	ShortCommitHash string
}

// BranchRecord captures one local branch and its remote-tracking relationship.
type BranchRecord struct {
	Name         string
	Upstream     string
	UpstreamGone bool
	AheadCount   int
	BehindCount  int
}

// TagRecord captures a local tag and the commit it ultimately points at.
type TagRecord struct {
	Name         string
	TargetCommit string
}

// RepositoryManager performs read-only git queries against a repository path.
type RepositoryManager struct {
	executor GitExecutor
}

// NewRepositoryManager constructs a RepositoryManager using the provided executor.
func NewRepositoryManager(executor GitExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor}, nil
}

// CheckRepository reports whether the path holds an openable git work tree.
func (manager *RepositoryManager) CheckRepository(executionContext context.Context, repositoryPath string) (bool, error) {
	commandDetails := execshell.CommandDetails{
		Arguments:        []string{gitRevParseSubcommandConstant, gitIsInsideWorkTreeFlagConstant},
		WorkingDirectory: repositoryPath,
	}

	executionResult, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		commandFailure := execshell.CommandFailedError{}
		if errors.As(executionError, &commandFailure) {
			return false, nil
		}
		return false, executionError
	}

	return strings.TrimSpace(executionResult.StandardOutput) == gitTrueOutputConstant, nil
}

// GetWorktreeStatus inspects tracked modifications and untracked files.
func (manager *RepositoryManager) GetWorktreeStatus(executionContext context.Context, repositoryPath string) (WorktreeStatus, error) {
	commandDetails := execshell.CommandDetails{
		Arguments:        []string{gitStatusSubcommandConstant, gitStatusPorcelainFlagConstant},
		WorkingDirectory: repositoryPath,
	}

	executionResult, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return WorktreeStatus{}, executionError
	}

	worktreeStatus := WorktreeStatus{}
	for _, statusLine := range splitOutputLines(executionResult.StandardOutput) {
		if len(statusLine) < statusEntryMinimumLengthConstant {
			continue
		}
		if strings.HasPrefix(statusLine, gitUntrackedStatusPrefixConstant) {
			worktreeStatus.UntrackedFiles = append(worktreeStatus.UntrackedFiles, strings.TrimSpace(statusLine[len(gitUntrackedStatusPrefixConstant):]))
			continue
		}
		worktreeStatus.HasUncommittedChanges = true
	}

	return worktreeStatus, nil
}

// CountStashEntries returns the number of stash entries in the repository.
func (manager *RepositoryManager) CountStashEntries(executionContext context.Context, repositoryPath string) (int, error) {
	commandDetails := execshell.CommandDetails{
		Arguments:        []string{gitStashSubcommandConstant, gitStashListSubcommandConstant},
		WorkingDirectory: repositoryPath,
	}

	executionResult, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return 0, executionError
	}

	return len(splitOutputLines(executionResult.StandardOutput)), nil
}

// GetHeadState resolves whether HEAD is detached and which branch or commit it references.
func (manager *RepositoryManager) GetHeadState(executionContext context.Context, repositoryPath string) (HeadState, error) {
	symbolicRefDetails := execshell.CommandDetails{
		Arguments:        []string{gitSymbolicRefSubcommandConstant, gitQuietFlagConstant, gitShortFlagConstant, gitHeadReferenceConstant},
		WorkingDirectory: repositoryPath,
	}

	headState := HeadState{}
	symbolicRefResult, symbolicRefError := manager.executor.ExecuteGit(executionContext, symbolicRefDetails)
	switch {
	case symbolicRefError == nil:
		headState.BranchName = strings.TrimSpace(symbolicRefResult.StandardOutput)
	default:
		commandFailure := execshell.CommandFailedError{}
		if !errors.As(symbolicRefError, &commandFailure) {
			return HeadState{}, symbolicRefError
		}
		headState.Detached = true
	}

	revParseDetails := execshell.CommandDetails{
		Arguments:        []string{gitRevParseSubcommandConstant, gitShortFlagConstant, gitHeadReferenceConstant},
		WorkingDirectory: repositoryPath,
	}

	revParseResult, revParseError := manager.executor.ExecuteGit(executionContext, revParseDetails)
	if revParseError == nil {
		headState.ShortCommitHash = strings.TrimSpace(revParseResult.StandardOutput)
	} else {
		// An unborn HEAD has no commit to resolve; report an empty hash.
		commandFailure := execshell.CommandFailedError{}
		if !errors.As(revParseError, &commandFailure) {
			return HeadState{}, revParseError
		}
	}

	return headState, nil
}

// ListBranches enumerates local branches with their remote-tracking state.
func (manager *RepositoryManager) ListBranches(executionContext context.Context, repositoryPath string) ([]BranchRecord, error) {
	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			gitForEachRefSubcommandConstant,
			gitBranchRefsPrefixConstant,
			formatArgument(branchListFormatConstant),
		},
		WorkingDirectory: repositoryPath,
	}

	executionResult, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return nil, executionError
	}

	var branchRecords []BranchRecord
	for _, referenceLine := range splitOutputLines(executionResult.StandardOutput) {
		referenceFields := strings.Split(referenceLine, refFieldSeparatorConstant)
		if len(referenceFields) < 4 {
			continue
		}

		branchRecord := BranchRecord{Name: referenceFields[0]}
		upstreamName := strings.TrimSpace(referenceFields[1])
		upstreamRemote := strings.TrimSpace(referenceFields[2])
		trackingSummary := strings.TrimSpace(referenceFields[3])

		// An upstream without a remote name tracks another local branch;
		// the scan treats that the same as having no remote at all.
		if len(upstreamName) > 0 && len(upstreamRemote) > 0 {
			branchRecord.Upstream = upstreamName
			branchRecord.UpstreamGone, branchRecord.AheadCount, branchRecord.BehindCount = parseTrackingSummary(trackingSummary)
		}

		branchRecords = append(branchRecords, branchRecord)
	}

	return branchRecords, nil
}

// ListLocalTags enumerates local tags with their peeled target commits.
func (manager *RepositoryManager) ListLocalTags(executionContext context.Context, repositoryPath string) ([]TagRecord, error) {
	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			gitForEachRefSubcommandConstant,
			gitTagRefsPrefixConstant,
			formatArgument(tagListFormatConstant),
		},
		WorkingDirectory: repositoryPath,
	}

	executionResult, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return nil, executionError
	}

	var tagRecords []TagRecord
	for _, referenceLine := range splitOutputLines(executionResult.StandardOutput) {
		referenceFields := strings.Split(referenceLine, refFieldSeparatorConstant)
		if len(referenceFields) < 3 {
			continue
		}

		tagRecord := TagRecord{Name: referenceFields[0], TargetCommit: strings.TrimSpace(referenceFields[1])}
		peeledCommit := strings.TrimSpace(referenceFields[2])
		if len(peeledCommit) > 0 {
			tagRecord.TargetCommit = peeledCommit
		}

		tagRecords = append(tagRecords, tagRecord)
	}

	return tagRecords, nil
}

// ListRemoteTags queries the remote's advertised tags, keyed by tag name with peeled commits.
//
// This performs a network round-trip and is only invoked in slow mode.
func (manager *RepositoryManager) ListRemoteTags(executionContext context.Context, repositoryPath string, remoteName string) (map[string]string, error) {
	if len(strings.TrimSpace(remoteName)) == 0 {
		return nil, ErrRemoteNameRequired
	}

	commandDetails := execshell.CommandDetails{
		Arguments:        []string{gitLSRemoteSubcommandConstant, gitTagsFlagConstant, remoteName},
		WorkingDirectory: repositoryPath,
		// Never block a scan on an interactive credential prompt.
		EnvironmentVariables: map[string]string{gitTerminalPromptVariableConstant: gitTerminalPromptDisabledConstant},
	}

	executionResult, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return nil, executionError
	}

	remoteTags := make(map[string]string)
	for _, advertisedLine := range splitOutputLines(executionResult.StandardOutput) {
		lineFields := strings.Fields(advertisedLine)
		if len(lineFields) < 2 {
			continue
		}

		commitHash := lineFields[0]
		referenceName := lineFields[1]
		if !strings.HasPrefix(referenceName, gitRefsTagsLinePrefixConstant) {
			continue
		}

		tagName := strings.TrimPrefix(referenceName, gitRefsTagsLinePrefixConstant)
		if strings.HasSuffix(tagName, gitPeeledTagSuffixConstant) {
			// Peeled entries supersede the annotated tag object hash.
			remoteTags[strings.TrimSuffix(tagName, gitPeeledTagSuffixConstant)] = commitHash
			continue
		}
		if _, alreadyRecorded := remoteTags[tagName]; !alreadyRecorded {
			remoteTags[tagName] = commitHash
		}
	}

	return remoteTags, nil
}

// DefaultRemoteName returns the remote consulted for tag comparison.
func DefaultRemoteName() string {
	return defaultRemoteNameConstant
}

func formatArgument(format string) string {
	return gitFormatFlagConstant + "=" + format
}

func splitOutputLines(commandOutput string) []string {
	var outputLines []string
	for _, outputLine := range strings.Split(commandOutput, newlineConstant) {
		if len(strings.TrimSpace(outputLine)) == 0 {
			continue
		}
		outputLines = append(outputLines, outputLine)
	}
	return outputLines
}

func parseTrackingSummary(trackingSummary string) (upstreamGone bool, aheadCount int, behindCount int) {
	trimmedSummary := strings.TrimSpace(trackingSummary)
	if len(trimmedSummary) == 0 {
		return false, 0, 0
	}

	trimmedSummary = strings.TrimPrefix(trimmedSummary, trackingBracketOpenConstant)
	trimmedSummary = strings.TrimSuffix(trimmedSummary, trackingBracketCloseConstant)

	for _, trackingCounter := range strings.Split(trimmedSummary, trackingCounterSeparatorConstant) {
		counterFields := strings.Fields(trackingCounter)
		switch {
		case len(counterFields) == 1 && counterFields[0] == trackingGoneTokenConstant:
			upstreamGone = true
		case len(counterFields) == 2 && counterFields[0] == trackingAheadTokenConstant:
			aheadCount = parseCounterValue(counterFields[1])
		case len(counterFields) == 2 && counterFields[0] == trackingBehindTokenConstant:
			behindCount = parseCounterValue(counterFields[1])
		}
	}

	return upstreamGone, aheadCount, behindCount
}

func parseCounterValue(counterText string) int {
	counterValue, parseError := strconv.Atoi(counterText)
	if parseError != nil || counterValue < 0 {
		return 0
	}
	return counterValue
}
