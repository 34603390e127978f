package scan

import (
	"os"
	"path/filepath"
)

const gitMetadataEntryNameConstant = ".git"

// PathClassification enumerates the outcomes of classifying a filesystem entry.
type PathClassification string

// Classifier outcomes. Every caller must handle all of them.
const (
	ClassificationRepoRoot          PathClassification = "repo-root"
	ClassificationOrdinaryDirectory PathClassification = "ordinary-directory"
	ClassificationFile              PathClassification = "file"
	ClassificationBrokenSymlink     PathClassification = "broken-symlink"
	ClassificationUnreadable        PathClassification = "unreadable"
)

// PathClassifier decides what kind of entry a filesystem path is.
//
// Classification is a pure inspection of filesystem metadata: symbolic links
// are detected but never followed into, and a directory is a repository root
// when it carries a .git entry (directory or gitdir file, so linked work
// trees and submodules count).
type PathClassifier struct{}

// NewPathClassifier constructs a PathClassifier.
func NewPathClassifier() *PathClassifier {
	return &PathClassifier{}
}

// Classify determines the classification for the supplied path.
func (classifier *PathClassifier) Classify(entryPath string) PathClassification {
	entryInfo, lstatError := os.Lstat(entryPath)
	if lstatError != nil {
		return ClassificationUnreadable
	}

	if entryInfo.Mode()&os.ModeSymlink != 0 {
		if _, statError := os.Stat(entryPath); statError != nil {
			return ClassificationBrokenSymlink
		}
		// A resolvable symlink counts as plain content regardless of target
		// type; the walk never descends through links.
		return ClassificationFile
	}

	if !entryInfo.IsDir() {
		return ClassificationFile
	}

	if classifier.HasRepositoryMarker(entryPath) {
		return ClassificationRepoRoot
	}

	return ClassificationOrdinaryDirectory
}

// HasRepositoryMarker reports whether the directory directly contains version-control metadata.
func (classifier *PathClassifier) HasRepositoryMarker(directoryPath string) bool {
	_, markerError := os.Lstat(filepath.Join(directoryPath, gitMetadataEntryNameConstant))
	return markerError == nil
}

// SymlinkTarget returns the unresolved target of a symbolic link.
func (classifier *PathClassifier) SymlinkTarget(entryPath string) string {
	linkTarget, readlinkError := os.Readlink(entryPath)
	if readlinkError != nil {
		return ""
	}
	return linkTarget
}
