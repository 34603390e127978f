package scan

import (
	"context"
	"errors"
	"sort"

	"github.com/gitstate/gitstate/internal/gitrepo"
)

const (
	inspectorManagerRequiredMessageConstant = "repository inspector requires a status manager"
	malformedRepositoryMessageConstant      = "repository could not be opened"
	axisWorktreeNameConstant                = "worktree"
	axisStashNameConstant                   = "stash"
	axisHeadNameConstant                    = "head"
	axisBranchesNameConstant                = "branches"
	axisTagsNameConstant                    = "tags"
	untrackedListLimitConstant              = 10
)

// ErrManagerNotConfigured indicates a RepositoryInspector was constructed without a manager.
var ErrManagerNotConfigured = errors.New(inspectorManagerRequiredMessageConstant)

// ErrMalformedRepository indicates a repository whose metadata cannot be opened at all.
var ErrMalformedRepository = errors.New(malformedRepositoryMessageConstant)

// RepositoryStatusManager exposes the read-only git queries the inspector relies on.
type RepositoryStatusManager interface {
	CheckRepository(executionContext context.Context, repositoryPath string) (bool, error)
	GetWorktreeStatus(executionContext context.Context, repositoryPath string) (gitrepo.WorktreeStatus, error)
	CountStashEntries(executionContext context.Context, repositoryPath string) (int, error)
	GetHeadState(executionContext context.Context, repositoryPath string) (gitrepo.HeadState, error)
	ListBranches(executionContext context.Context, repositoryPath string) ([]gitrepo.BranchRecord, error)
	ListLocalTags(executionContext context.Context, repositoryPath string) ([]gitrepo.TagRecord, error)
	ListRemoteTags(executionContext context.Context, repositoryPath string, remoteName string) (map[string]string, error)
}

// RepositoryInspector produces a RepoStatus for one repository without mutating it.
//
// Each inspection axis is queried independently: a failing axis is recorded
// in FailedAxes and the remaining axes still report, so a partially broken
// repository never loses its whole status.
type RepositoryInspector struct {
	manager RepositoryStatusManager
}

// NewRepositoryInspector constructs a RepositoryInspector using the provided manager.
func NewRepositoryInspector(manager RepositoryStatusManager) (*RepositoryInspector, error) {
	if manager == nil {
		return nil, ErrManagerNotConfigured
	}
	return &RepositoryInspector{manager: manager}, nil
}

// Inspect gathers the synchronization state of the repository at repositoryPath.
//
// Slow mode additionally compares local tags against the remote's advertised
// tags, which performs a network round-trip. A repository that cannot be
// opened returns ErrMalformedRepository.
func (inspector *RepositoryInspector) Inspect(executionContext context.Context, repositoryPath string, slowMode bool) (RepoStatus, error) {
	isRepository, checkError := inspector.manager.CheckRepository(executionContext, repositoryPath)
	if checkError != nil || !isRepository {
		return RepoStatus{}, ErrMalformedRepository
	}

	repositoryStatus := RepoStatus{}

	worktreeStatus, worktreeError := inspector.manager.GetWorktreeStatus(executionContext, repositoryPath)
	if worktreeError != nil {
		repositoryStatus.FailedAxes = append(repositoryStatus.FailedAxes, axisWorktreeNameConstant)
	} else {
		repositoryStatus.HasUncommittedChanges = worktreeStatus.HasUncommittedChanges
		repositoryStatus.HasUntrackedFiles = len(worktreeStatus.UntrackedFiles) > 0
		repositoryStatus.UntrackedFiles = ShortenList(worktreeStatus.UntrackedFiles, untrackedListLimitConstant)
	}

	stashCount, stashError := inspector.manager.CountStashEntries(executionContext, repositoryPath)
	if stashError != nil {
		repositoryStatus.FailedAxes = append(repositoryStatus.FailedAxes, axisStashNameConstant)
	} else {
		repositoryStatus.StashCount = stashCount
	}

	headState, headError := inspector.manager.GetHeadState(executionContext, repositoryPath)
	if headError != nil {
		repositoryStatus.FailedAxes = append(repositoryStatus.FailedAxes, axisHeadNameConstant)
	} else {
		repositoryStatus.IsDetachedHead = headState.Detached
		repositoryStatus.HeadCommit = headState.ShortCommitHash
		if !headState.Detached {
			repositoryStatus.CurrentBranch = headState.BranchName
		}
	}

	branchRecords, branchesError := inspector.manager.ListBranches(executionContext, repositoryPath)
	if branchesError != nil {
		repositoryStatus.FailedAxes = append(repositoryStatus.FailedAxes, axisBranchesNameConstant)
	} else {
		repositoryStatus.Branches = buildBranchStatuses(branchRecords)
	}

	if slowMode {
		tagIssues, tagsError := inspector.compareTags(executionContext, repositoryPath)
		if tagsError != nil {
			repositoryStatus.FailedAxes = append(repositoryStatus.FailedAxes, axisTagsNameConstant)
		} else {
			repositoryStatus.TagIssues = tagIssues
		}
	}

	return repositoryStatus, nil
}

func (inspector *RepositoryInspector) compareTags(executionContext context.Context, repositoryPath string) ([]TagIssue, error) {
	localTags, localTagsError := inspector.manager.ListLocalTags(executionContext, repositoryPath)
	if localTagsError != nil {
		return nil, localTagsError
	}
	if len(localTags) == 0 {
		return nil, nil
	}

	remoteTags, remoteTagsError := inspector.manager.ListRemoteTags(executionContext, repositoryPath, gitrepo.DefaultRemoteName())
	if remoteTagsError != nil {
		return nil, remoteTagsError
	}

	var tagIssues []TagIssue
	for _, localTag := range localTags {
		remoteCommit, advertisedOnRemote := remoteTags[localTag.Name]
		switch {
		case !advertisedOnRemote:
			tagIssues = append(tagIssues, TagIssue{Name: localTag.Name, Kind: TagIssueMissingOnRemote})
		case remoteCommit != localTag.TargetCommit:
			tagIssues = append(tagIssues, TagIssue{Name: localTag.Name, Kind: TagIssueDivergesFromRemote})
		}
	}

	sort.Slice(tagIssues, func(firstIndex, secondIndex int) bool {
		return tagIssues[firstIndex].Name < tagIssues[secondIndex].Name
	})
	return tagIssues, nil
}

func buildBranchStatuses(branchRecords []gitrepo.BranchRecord) []BranchStatus {
	var branchStatuses []BranchStatus
	for _, branchRecord := range branchRecords {
		branchStatuses = append(branchStatuses, BranchStatus{
			Name:             branchRecord.Name,
			RemoteRef:        branchRecord.Upstream,
			RemoteRefMissing: branchRecord.UpstreamGone,
			AheadCount:       branchRecord.AheadCount,
			BehindCount:      branchRecord.BehindCount,
		})
	}
	return branchStatuses
}
