package pathutils

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	homeShortcutConstant       = "~"
	homeShortcutPrefixConstant = "~/"
)

// HomeDirectoryLookup resolves the current user's home directory.
type HomeDirectoryLookup func() (string, error)

// HomeExpander rewrites leading "~" shortcuts to the user's home directory.
//
// The home directory is resolved once and reused; a failed lookup leaves
// paths untouched instead of failing the caller.
type HomeExpander struct {
	lookup        HomeDirectoryLookup
	resolveOnce   sync.Once
	homeDirectory string
}

// NewHomeExpander constructs a HomeExpander backed by os.UserHomeDir.
func NewHomeExpander() *HomeExpander {
	return NewHomeExpanderWithLookup(os.UserHomeDir)
}

// NewHomeExpanderWithLookup constructs a HomeExpander with a custom lookup.
func NewHomeExpanderWithLookup(lookup HomeDirectoryLookup) *HomeExpander {
	if lookup == nil {
		lookup = os.UserHomeDir
	}
	return &HomeExpander{lookup: lookup}
}

// Expand resolves a leading home shortcut in candidatePath.
func (expander *HomeExpander) Expand(candidatePath string) string {
	if expander == nil || !strings.HasPrefix(candidatePath, homeShortcutConstant) {
		return candidatePath
	}

	homeDirectory := expander.resolveHomeDirectory()
	if len(homeDirectory) == 0 {
		return candidatePath
	}

	if candidatePath == homeShortcutConstant {
		return homeDirectory
	}
	if strings.HasPrefix(candidatePath, homeShortcutPrefixConstant) {
		return filepath.Join(homeDirectory, strings.TrimPrefix(candidatePath, homeShortcutPrefixConstant))
	}

	return candidatePath
}

func (expander *HomeExpander) resolveHomeDirectory() string {
	expander.resolveOnce.Do(func() {
		resolvedDirectory, lookupError := expander.lookup()
		if lookupError == nil {
			expander.homeDirectory = resolvedDirectory
		}
	})
	return expander.homeDirectory
}
