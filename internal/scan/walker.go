package scan

import (
	"context"
	"errors"
	"os"
	"path/filepath"
)

const walkerClassifierRequiredMessageConstant = "tree walker requires a path classifier"

// ErrClassifierNotConfigured indicates a TreeWalker was constructed without a classifier.
var ErrClassifierNotConfigured = errors.New(walkerClassifierRequiredMessageConstant)

// WalkEventKind tags the entries a walk emits.
type WalkEventKind string

// Walk event variants.
const (
	WalkEventRepositoryCandidate WalkEventKind = "repository-candidate"
	WalkEventPlainDirectory      WalkEventKind = "plain-directory"
	WalkEventBrokenSymlink       WalkEventKind = "broken-symlink"
)

// WalkEvent is one lazily produced element of a tree walk.
type WalkEvent struct {
	Kind          WalkEventKind
	Path          string
	SymlinkTarget string
}

// WalkCallback consumes walk events; returning an error stops the walk.
type WalkCallback func(event WalkEvent) error

type classifiedEntry struct {
	entryName      string
	entryPath      string
	classification PathClassification
}

// TreeWalker enumerates a directory tree in depth-first pre-order.
//
// The walk is single-threaded and lazy: events are handed to the callback as
// they are discovered, and the emitted sequence depends only on the tree
// shape and the exclusion policy. Repositories are traversal leaves, so a
// repository's internals (including any nested metadata directories) are
// never reported independently. Unreadable entries are skipped without
// aborting the walk.
type TreeWalker struct {
	classifier *PathClassifier
}

// NewTreeWalker constructs a TreeWalker using the provided classifier.
func NewTreeWalker(classifier *PathClassifier) (*TreeWalker, error) {
	if classifier == nil {
		return nil, ErrClassifierNotConfigured
	}
	return &TreeWalker{classifier: classifier}, nil
}

// Walk traverses the tree rooted at rootPath and emits events in deterministic order.
//
// The root itself may be a repository, in which case exactly one candidate
// event is produced. Directory children are visited in lexicographic order.
func (walker *TreeWalker) Walk(executionContext context.Context, rootPath string, policy ExclusionPolicy, callback WalkCallback) error {
	switch walker.classifier.Classify(rootPath) {
	case ClassificationRepoRoot:
		return callback(WalkEvent{Kind: WalkEventRepositoryCandidate, Path: rootPath})
	case ClassificationOrdinaryDirectory:
		return walker.walkDirectory(executionContext, rootPath, 0, policy, callback)
	case ClassificationBrokenSymlink:
		return callback(WalkEvent{Kind: WalkEventBrokenSymlink, Path: rootPath, SymlinkTarget: walker.classifier.SymlinkTarget(rootPath)})
	default:
		return nil
	}
}

func (walker *TreeWalker) walkDirectory(executionContext context.Context, directoryPath string, directoryDepth int, policy ExclusionPolicy, callback WalkCallback) error {
	if contextError := executionContext.Err(); contextError != nil {
		return contextError
	}

	directoryEntries, readError := os.ReadDir(directoryPath)
	if readError != nil {
		// Unreadable directories are leaves; the rest of the tree still gets scanned.
		return nil
	}

	// os.ReadDir returns entries sorted by name, which fixes traversal order.
	directoryHasContent := false
	classifiedEntries := make([]classifiedEntry, 0, len(directoryEntries))
	for _, directoryEntry := range directoryEntries {
		entryPath := filepath.Join(directoryPath, directoryEntry.Name())
		classification := walker.classifier.Classify(entryPath)
		if classification == ClassificationFile {
			directoryHasContent = true
			continue
		}
		if classification == ClassificationUnreadable {
			continue
		}
		classifiedEntries = append(classifiedEntries, classifiedEntry{
			entryName:      directoryEntry.Name(),
			entryPath:      entryPath,
			classification: classification,
		})
	}

	// The directory's own finding precedes its children so report order
	// matches pre-order traversal of paths.
	if directoryHasContent {
		if callbackError := callback(WalkEvent{Kind: WalkEventPlainDirectory, Path: directoryPath}); callbackError != nil {
			return callbackError
		}
	}

	for _, childEntry := range classifiedEntries {
		switch childEntry.classification {
		case ClassificationRepoRoot:
			if policy.Excludes(childEntry.entryName) {
				continue
			}
			if callbackError := callback(WalkEvent{Kind: WalkEventRepositoryCandidate, Path: childEntry.entryPath}); callbackError != nil {
				return callbackError
			}
		case ClassificationBrokenSymlink:
			if callbackError := callback(WalkEvent{Kind: WalkEventBrokenSymlink, Path: childEntry.entryPath, SymlinkTarget: walker.classifier.SymlinkTarget(childEntry.entryPath)}); callbackError != nil {
				return callbackError
			}
		case ClassificationOrdinaryDirectory:
			if policy.Excludes(childEntry.entryName) {
				continue
			}
			childDepth := directoryDepth + 1
			if policy.DepthExceeded(childDepth) {
				continue
			}
			if walkError := walker.walkDirectory(executionContext, childEntry.entryPath, childDepth, policy, callback); walkError != nil {
				return walkError
			}
		}
	}

	return nil
}
