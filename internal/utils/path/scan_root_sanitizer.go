package pathutils

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScanRootSanitizerConfiguration controls scan root normalization.
type ScanRootSanitizerConfiguration struct {
	// PruneNestedRoots drops roots that sit inside another configured root.
	PruneNestedRoots bool
}

// ScanRootSanitizer normalizes user-supplied scan roots before a scan starts.
//
// Sanitization trims whitespace, expands home shortcuts, and drops empty
// entries. With PruneNestedRoots enabled a root contained in another root is
// removed so the same subtree is never walked twice.
type ScanRootSanitizer struct {
	homeExpander  *HomeExpander
	configuration ScanRootSanitizerConfiguration
}

// NewScanRootSanitizer constructs a ScanRootSanitizer with default behavior.
func NewScanRootSanitizer() *ScanRootSanitizer {
	return NewScanRootSanitizerWithConfiguration(nil, ScanRootSanitizerConfiguration{})
}

// NewScanRootSanitizerWithConfiguration constructs a ScanRootSanitizer using the provided expander and configuration.
func NewScanRootSanitizerWithConfiguration(homeExpander *HomeExpander, configuration ScanRootSanitizerConfiguration) *ScanRootSanitizer {
	if homeExpander == nil {
		homeExpander = NewHomeExpander()
	}
	return &ScanRootSanitizer{homeExpander: homeExpander, configuration: configuration}
}

// Sanitize returns the normalized scan roots in their original order.
func (sanitizer *ScanRootSanitizer) Sanitize(candidateRoots []string) []string {
	cleanedRoots := make([]string, 0, len(candidateRoots))
	for _, candidateRoot := range candidateRoots {
		trimmedRoot := strings.TrimSpace(candidateRoot)
		if len(trimmedRoot) == 0 {
			continue
		}
		cleanedRoots = append(cleanedRoots, sanitizer.homeExpander.Expand(trimmedRoot))
	}

	if len(cleanedRoots) == 0 {
		return nil
	}
	if sanitizer.configuration.PruneNestedRoots {
		return pruneNestedRoots(cleanedRoots)
	}
	return cleanedRoots
}

// pruneNestedRoots keeps only roots not contained in another root, comparing
// absolute cleaned paths so relative spellings of the same directory
// deduplicate.
func pruneNestedRoots(candidateRoots []string) []string {
	type rootEntry struct {
		originalIndex int
		originalValue string
		absolutePath  string
	}

	rootEntries := make([]rootEntry, 0, len(candidateRoots))
	for rootIndex, candidateRoot := range candidateRoots {
		rootEntries = append(rootEntries, rootEntry{
			originalIndex: rootIndex,
			originalValue: candidateRoot,
			absolutePath:  absoluteRootPath(candidateRoot),
		})
	}

	// Shorter paths first so ancestors are considered before descendants.
	sort.SliceStable(rootEntries, func(firstIndex int, secondIndex int) bool {
		if len(rootEntries[firstIndex].absolutePath) == len(rootEntries[secondIndex].absolutePath) {
			return rootEntries[firstIndex].absolutePath < rootEntries[secondIndex].absolutePath
		}
		return len(rootEntries[firstIndex].absolutePath) < len(rootEntries[secondIndex].absolutePath)
	})

	keptEntries := make([]rootEntry, 0, len(rootEntries))
	for _, candidateEntry := range rootEntries {
		contained := false
		for _, keptEntry := range keptEntries {
			if rootContains(keptEntry.absolutePath, candidateEntry.absolutePath) {
				contained = true
				break
			}
		}
		if !contained {
			keptEntries = append(keptEntries, candidateEntry)
		}
	}

	sort.SliceStable(keptEntries, func(firstIndex int, secondIndex int) bool {
		return keptEntries[firstIndex].originalIndex < keptEntries[secondIndex].originalIndex
	})

	prunedRoots := make([]string, 0, len(keptEntries))
	for _, keptEntry := range keptEntries {
		prunedRoots = append(prunedRoots, keptEntry.originalValue)
	}
	return prunedRoots
}

func absoluteRootPath(rootPath string) string {
	cleanedPath := filepath.Clean(rootPath)
	absolutePath, absoluteError := filepath.Abs(cleanedPath)
	if absoluteError != nil {
		return cleanedPath
	}
	return absolutePath
}

func rootContains(parentPath string, candidatePath string) bool {
	if candidatePath == parentPath {
		return true
	}
	if !strings.HasPrefix(candidatePath, parentPath) {
		return false
	}
	if parentPath[len(parentPath)-1] == os.PathSeparator {
		return true
	}
	return candidatePath[len(parentPath)] == os.PathSeparator
}
