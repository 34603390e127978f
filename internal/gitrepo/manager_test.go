package gitrepo_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gitstate/gitstate/internal/execshell"
	"github.com/gitstate/gitstate/internal/gitrepo"
)

const (
	testRepositoryPathConstant = "/tmp/example"
	fieldSeparatorConstant     = "\x1f"
)

type stubGitExecutor struct {
	outputs       map[string]execshell.ExecutionResult
	recordedCalls *[]execshell.CommandDetails
}

func (executor stubGitExecutor) ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	if executor.recordedCalls != nil {
		*executor.recordedCalls = append(*executor.recordedCalls, details)
	}
	commandKey := strings.Join(details.Arguments, " ")
	executionResult, resultAvailable := executor.outputs[commandKey]
	if !resultAvailable {
		return execshell.ExecutionResult{}, fmt.Errorf("unexpected git command: %s", commandKey)
	}
	if executionResult.ExitCode != 0 {
		return executionResult, execshell.CommandFailedError{Result: executionResult}
	}
	return executionResult, nil
}

func TestRepositoryManagerInitializationValidation(testInstance *testing.T) {
	manager, creationError := gitrepo.NewRepositoryManager(nil)
	require.ErrorIs(testInstance, creationError, gitrepo.ErrExecutorNotConfigured)
	require.Nil(testInstance, manager)
}

func TestCheckRepository(testInstance *testing.T) {
	testCases := []struct {
		name           string
		output         execshell.ExecutionResult
		expectedResult bool
	}{
		{name: "inside_work_tree", output: execshell.ExecutionResult{StandardOutput: "true\n"}, expectedResult: true},
		{name: "outside_work_tree", output: execshell.ExecutionResult{StandardOutput: "false\n"}, expectedResult: false},
		{name: "corrupted_repository", output: execshell.ExecutionResult{ExitCode: 128}, expectedResult: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			manager := newManager(testInstance, map[string]execshell.ExecutionResult{
				"rev-parse --is-inside-work-tree": testCase.output,
			})

			isRepository, checkError := manager.CheckRepository(context.Background(), testRepositoryPathConstant)
			require.NoError(testInstance, checkError)
			require.Equal(testInstance, testCase.expectedResult, isRepository)
		})
	}
}

func TestGetWorktreeStatus(testInstance *testing.T) {
	testCases := []struct {
		name                string
		statusOutput        string
		expectedUncommitted bool
		expectedUntracked   []string
	}{
		{
			name:         "clean_worktree",
			statusOutput: "",
		},
		{
			name:                "modified_tracked_file",
			statusOutput:        " M cmd/main.go\n",
			expectedUncommitted: true,
		},
		{
			name:              "untracked_only",
			statusOutput:      "?? notes.txt\n?? build/output.bin\n",
			expectedUntracked: []string{"notes.txt", "build/output.bin"},
		},
		{
			name:                "mixed_states",
			statusOutput:        "A  staged.go\n?? scratch.md\n",
			expectedUncommitted: true,
			expectedUntracked:   []string{"scratch.md"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			manager := newManager(testInstance, map[string]execshell.ExecutionResult{
				"status --porcelain": {StandardOutput: testCase.statusOutput},
			})

			worktreeStatus, statusError := manager.GetWorktreeStatus(context.Background(), testRepositoryPathConstant)
			require.NoError(testInstance, statusError)
			require.Equal(testInstance, testCase.expectedUncommitted, worktreeStatus.HasUncommittedChanges)
			require.Equal(testInstance, testCase.expectedUntracked, worktreeStatus.UntrackedFiles)
		})
	}
}

func TestCountStashEntries(testInstance *testing.T) {
	manager := newManager(testInstance, map[string]execshell.ExecutionResult{
		"stash list": {StandardOutput: "stash@{0}: WIP on main\nstash@{1}: WIP on feature\n"},
	})

	stashCount, stashError := manager.CountStashEntries(context.Background(), testRepositoryPathConstant)
	require.NoError(testInstance, stashError)
	require.Equal(testInstance, 2, stashCount)
}

func TestGetHeadState(testInstance *testing.T) {
	testCases := []struct {
		name              string
		symbolicRefResult execshell.ExecutionResult
		revParseResult    execshell.ExecutionResult
		expectedState     gitrepo.HeadState
	}{
		{
			name:              "branch_checkout",
			symbolicRefResult: execshell.ExecutionResult{StandardOutput: "main\n"},
			revParseResult:    execshell.ExecutionResult{StandardOutput: "1a2b3c4\n"},
			expectedState:     gitrepo.HeadState{BranchName: "main", ShortCommitHash: "1a2b3c4"},
		},
		{
			name:              "detached_head",
			symbolicRefResult: execshell.ExecutionResult{ExitCode: 1},
			revParseResult:    execshell.ExecutionResult{StandardOutput: "9f8e7d6\n"},
			expectedState:     gitrepo.HeadState{Detached: true, ShortCommitHash: "9f8e7d6"},
		},
		{
			name:              "unborn_head",
			symbolicRefResult: execshell.ExecutionResult{StandardOutput: "main\n"},
			revParseResult:    execshell.ExecutionResult{ExitCode: 128},
			expectedState:     gitrepo.HeadState{BranchName: "main"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			manager := newManager(testInstance, map[string]execshell.ExecutionResult{
				"symbolic-ref --quiet --short HEAD": testCase.symbolicRefResult,
				"rev-parse --short HEAD":            testCase.revParseResult,
			})

			headState, headError := manager.GetHeadState(context.Background(), testRepositoryPathConstant)
			require.NoError(testInstance, headError)
			require.Equal(testInstance, testCase.expectedState, headState)
		})
	}
}

func TestListBranches(testInstance *testing.T) {
	branchOutput := strings.Join([]string{
		strings.Join([]string{"main", "origin/main", "origin", ""}, fieldSeparatorConstant),
		strings.Join([]string{"feature", "origin/feature", "origin", "[ahead 2, behind 1]"}, fieldSeparatorConstant),
		strings.Join([]string{"stale", "origin/stale", "origin", "[gone]"}, fieldSeparatorConstant),
		strings.Join([]string{"local-only", "", "", ""}, fieldSeparatorConstant),
		strings.Join([]string{"local-tracking", "main", "", ""}, fieldSeparatorConstant),
	}, "\n") + "\n"

	manager := newManager(testInstance, map[string]execshell.ExecutionResult{
		"for-each-ref refs/heads --format=%(refname:short)\x1f%(upstream:short)\x1f%(upstream:remotename)\x1f%(upstream:track)": {StandardOutput: branchOutput},
	})

	branchRecords, listError := manager.ListBranches(context.Background(), testRepositoryPathConstant)
	require.NoError(testInstance, listError)
	require.Equal(testInstance, []gitrepo.BranchRecord{
		{Name: "main", Upstream: "origin/main"},
		{Name: "feature", Upstream: "origin/feature", AheadCount: 2, BehindCount: 1},
		{Name: "stale", Upstream: "origin/stale", UpstreamGone: true},
		{Name: "local-only"},
		{Name: "local-tracking"},
	}, branchRecords)
}

func TestListLocalTags(testInstance *testing.T) {
	tagOutput := strings.Join([]string{
		strings.Join([]string{"v1.0.0", "aaa111", ""}, fieldSeparatorConstant),
		strings.Join([]string{"v1.1.0", "bbb222", "ccc333"}, fieldSeparatorConstant),
	}, "\n") + "\n"

	manager := newManager(testInstance, map[string]execshell.ExecutionResult{
		"for-each-ref refs/tags --format=%(refname:short)\x1f%(objectname)\x1f%(*objectname)": {StandardOutput: tagOutput},
	})

	tagRecords, listError := manager.ListLocalTags(context.Background(), testRepositoryPathConstant)
	require.NoError(testInstance, listError)
	require.Equal(testInstance, []gitrepo.TagRecord{
		{Name: "v1.0.0", TargetCommit: "aaa111"},
		{Name: "v1.1.0", TargetCommit: "ccc333"},
	}, tagRecords)
}

func TestListRemoteTags(testInstance *testing.T) {
	remoteOutput := strings.Join([]string{
		"ddd444\trefs/tags/v1.0.0",
		"eee555\trefs/tags/v1.1.0",
		"fff666\trefs/tags/v1.1.0^{}",
	}, "\n") + "\n"

	recordedCalls := []execshell.CommandDetails{}
	manager, creationError := gitrepo.NewRepositoryManager(stubGitExecutor{
		outputs: map[string]execshell.ExecutionResult{
			"ls-remote --tags origin": {StandardOutput: remoteOutput},
		},
		recordedCalls: &recordedCalls,
	})
	require.NoError(testInstance, creationError)

	remoteTags, listError := manager.ListRemoteTags(context.Background(), testRepositoryPathConstant, gitrepo.DefaultRemoteName())
	require.NoError(testInstance, listError)
	require.Equal(testInstance, map[string]string{
		"v1.0.0": "ddd444",
		"v1.1.0": "fff666",
	}, remoteTags)

	require.Len(testInstance, recordedCalls, 1)
	require.Equal(testInstance, "0", recordedCalls[0].EnvironmentVariables["GIT_TERMINAL_PROMPT"])
}

func TestListRemoteTagsRequiresRemoteName(testInstance *testing.T) {
	manager := newManager(testInstance, nil)

	_, listError := manager.ListRemoteTags(context.Background(), testRepositoryPathConstant, " ")
	require.ErrorIs(testInstance, listError, gitrepo.ErrRemoteNameRequired)
}

func newManager(testInstance *testing.T, outputs map[string]execshell.ExecutionResult) *gitrepo.RepositoryManager {
	testInstance.Helper()
	manager, creationError := gitrepo.NewRepositoryManager(stubGitExecutor{outputs: outputs})
	require.NoError(testInstance, creationError)
	return manager
}
