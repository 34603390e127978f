package scan

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

const (
	shortenedListDefaultLimitConstant = 10
	shortenedListMarkerTemplate       = "<< %d more items >>"
	invalidExcludePatternTemplate     = "invalid exclude pattern %q: %w"
	hiddenNamePrefixConstant          = "."
)

// ErrIssuesFound signals a completed scan that discovered at least one issue.
//
// The CLI maps it to a dedicated exit code so callers can distinguish a clean
// tree from a tree with findings without parsing output.
var ErrIssuesFound = errors.New("scan found issues")

// FindingKind tags the variants of a Finding.
type FindingKind string

// Finding variants produced by a scan.
const (
	FindingKindRepository          FindingKind = "repository"
	FindingKindMalformedRepository FindingKind = "malformed-repository"
	FindingKindPlainDirectory      FindingKind = "plain-directory"
	FindingKindBrokenSymlink       FindingKind = "broken-symlink"
)

// TagIssueKind classifies a divergence between a local tag and its remote counterpart.
type TagIssueKind string

// Tag issue classifications.
const (
	TagIssueMissingOnRemote    TagIssueKind = "missing-on-remote"
	TagIssueDivergesFromRemote TagIssueKind = "diverges-from-remote"
)

// TagIssue reports one local tag out of agreement with the remote.
type TagIssue struct {
	Name string       `json:"name" yaml:"name"`
	Kind TagIssueKind `json:"kind" yaml:"kind"`
}

// BranchStatus describes one local branch relative to its remote-tracking ref.
//
// A branch without a configured remote has an empty RemoteRef and never
// reports ahead or behind counts.
type BranchStatus struct {
	Name             string `json:"name" yaml:"name"`
	RemoteRef        string `json:"remote_ref,omitempty" yaml:"remote_ref,omitempty"`
	RemoteRefMissing bool   `json:"remote_ref_missing,omitempty" yaml:"remote_ref_missing,omitempty"`
	AheadCount       int    `json:"ahead,omitempty" yaml:"ahead,omitempty"`
	BehindCount      int    `json:"behind,omitempty" yaml:"behind,omitempty"`
}

// HasIssue reports whether the branch needs attention.
func (branchStatus BranchStatus) HasIssue() bool {
	if len(branchStatus.RemoteRef) == 0 {
		return true
	}
	return branchStatus.RemoteRefMissing || branchStatus.AheadCount > 0 || branchStatus.BehindCount > 0
}

// RepoStatus captures the synchronization state of one repository.
//
// FailedAxes lists inspection axes that could not be queried; their
// corresponding fields hold zero values rather than observations.
type RepoStatus struct {
	CurrentBranch         string         `json:"current_branch,omitempty" yaml:"current_branch,omitempty"`
	HeadCommit            string         `json:"head_commit,omitempty" yaml:"head_commit,omitempty"`
	IsDetachedHead        bool           `json:"detached_head,omitempty" yaml:"detached_head,omitempty"`
	HasUncommittedChanges bool           `json:"uncommitted_changes,omitempty" yaml:"uncommitted_changes,omitempty"`
	HasUntrackedFiles     bool           `json:"has_untracked_files,omitempty" yaml:"has_untracked_files,omitempty"`
	UntrackedFiles        []string       `json:"untracked_files,omitempty" yaml:"untracked_files,omitempty"`
	StashCount            int            `json:"stash_count,omitempty" yaml:"stash_count,omitempty"`
	Branches              []BranchStatus `json:"branches,omitempty" yaml:"branches,omitempty"`
	TagIssues             []TagIssue     `json:"tag_issues,omitempty" yaml:"tag_issues,omitempty"`
	FailedAxes            []string       `json:"failed_axes,omitempty" yaml:"failed_axes,omitempty"`
}

// HasIssues reports whether the repository has any state worth surfacing.
func (repoStatus RepoStatus) HasIssues() bool {
	if repoStatus.HasUncommittedChanges || repoStatus.HasUntrackedFiles || repoStatus.IsDetachedHead {
		return true
	}
	if repoStatus.StashCount > 0 || len(repoStatus.TagIssues) > 0 || len(repoStatus.FailedAxes) > 0 {
		return true
	}
	for _, branchStatus := range repoStatus.Branches {
		if branchStatus.HasIssue() {
			return true
		}
	}
	return false
}

// Finding is one entry of a ScanReport.
type Finding struct {
	Kind          FindingKind `json:"kind" yaml:"kind"`
	Path          string      `json:"path" yaml:"path"`
	SymlinkTarget string      `json:"symlink_target,omitempty" yaml:"symlink_target,omitempty"`
	Repository    *RepoStatus `json:"repository,omitempty" yaml:"repository,omitempty"`
}

// HasIssues reports whether the finding represents a problem.
//
// Non-repository findings exist only because something is wrong; repository
// findings defer to their status.
func (finding Finding) HasIssues() bool {
	if finding.Kind == FindingKindRepository && finding.Repository != nil {
		return finding.Repository.HasIssues()
	}
	return true
}

// ScanReport is the ordered outcome of one scan.
//
// Findings are ordered by traversal pre-order and the report is immutable
// once the scan finishes.
type ScanReport struct {
	Findings []Finding `json:"findings" yaml:"findings"`
}

// IssueCount returns the number of findings with issues.
func (report ScanReport) IssueCount() int {
	issueCount := 0
	for _, finding := range report.Findings {
		if finding.HasIssues() {
			issueCount++
		}
	}
	return issueCount
}

// HasIssues reports whether any finding has issues.
func (report ScanReport) HasIssues() bool {
	return report.IssueCount() > 0
}

// ExclusionPolicy prunes subtrees from a walk.
//
// ExcludedNames holds exact directory names or path.Match glob patterns
// evaluated against directory base names. MaxDepth bounds how many directory
// levels below a root are entered; a negative value means unbounded and zero
// restricts the walk to the root itself. The policy is never mutated during
// a scan.
type ExclusionPolicy struct {
	ExcludedNames []string
	MaxDepth      int
}

// Validate rejects malformed exclusion patterns before any traversal starts.
func (policy ExclusionPolicy) Validate() error {
	for _, excludedName := range policy.ExcludedNames {
		if _, matchError := path.Match(excludedName, excludedName); matchError != nil {
			return fmt.Errorf(invalidExcludePatternTemplate, excludedName, matchError)
		}
	}
	return nil
}

// Excludes reports whether a directory base name is pruned by the policy.
//
// Hidden directories are always pruned.
func (policy ExclusionPolicy) Excludes(directoryName string) bool {
	if strings.HasPrefix(directoryName, hiddenNamePrefixConstant) {
		return true
	}
	for _, excludedName := range policy.ExcludedNames {
		if excludedName == directoryName {
			return true
		}
		if matched, matchError := path.Match(excludedName, directoryName); matchError == nil && matched {
			return true
		}
	}
	return false
}

// DepthExceeded reports whether a directory at the given depth below the root is out of bounds.
func (policy ExclusionPolicy) DepthExceeded(directoryDepth int) bool {
	if policy.MaxDepth < 0 {
		return false
	}
	return directoryDepth > policy.MaxDepth
}

// ShortenList truncates long listings from the middle, preserving both ends.
func ShortenList(listItems []string, itemLimit int) []string {
	if itemLimit <= 0 {
		itemLimit = shortenedListDefaultLimitConstant
	}
	if len(listItems) <= itemLimit {
		return listItems
	}

	shortenedItems := make([]string, 0, itemLimit)
	shortenedItems = append(shortenedItems, listItems[:itemLimit/2]...)
	shortenedItems = append(shortenedItems, listItems[len(listItems)-(itemLimit-itemLimit/2):]...)
	shortenedItems[itemLimit/2] = fmt.Sprintf(shortenedListMarkerTemplate, len(listItems)-itemLimit+1)
	return shortenedItems
}
