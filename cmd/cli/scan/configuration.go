package scan

import (
	"strings"
	"time"

	"github.com/gitstate/gitstate/internal/report"
	pathutils "github.com/gitstate/gitstate/internal/utils/path"
)

const (
	configurationRootsKeyConstant        = "roots"
	configurationMaxDepthKeyConstant     = "max_depth"
	configurationExcludeKeyConstant      = "exclude"
	configurationSlowKeyConstant         = "slow"
	configurationConcurrencyKeyConstant  = "concurrency"
	configurationFormatKeyConstant       = "format"
	configurationIncludeCleanKeyConstant = "include_clean"
	configurationTimeoutKeyConstant      = "timeout"
	defaultMaximumDepthConstant          = 3
	defaultRepositoryTimeoutConstant     = 30 * time.Second
)

// CommandConfiguration captures persistent settings for the scan command.
type CommandConfiguration struct {
	Roots             []string      `mapstructure:"roots"`
	MaximumDepth      int           `mapstructure:"max_depth"`
	ExcludedNames     []string      `mapstructure:"exclude"`
	SlowMode          bool          `mapstructure:"slow"`
	Concurrency       int           `mapstructure:"concurrency"`
	Format            string        `mapstructure:"format"`
	IncludeClean      bool          `mapstructure:"include_clean"`
	RepositoryTimeout time.Duration `mapstructure:"timeout"`
}

// DefaultCommandConfiguration returns baseline configuration values for the scan command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Roots:             nil,
		MaximumDepth:      defaultMaximumDepthConstant,
		ExcludedNames:     nil,
		SlowMode:          false,
		Concurrency:       0,
		Format:            string(report.FormatText),
		IncludeClean:      false,
		RepositoryTimeout: defaultRepositoryTimeoutConstant,
	}
}

// DefaultConfigurationValues exposes the scan defaults keyed for the configuration loader.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + "." + configurationRootsKeyConstant:        defaults.Roots,
		rootKey + "." + configurationMaxDepthKeyConstant:     defaults.MaximumDepth,
		rootKey + "." + configurationExcludeKeyConstant:      defaults.ExcludedNames,
		rootKey + "." + configurationSlowKeyConstant:         defaults.SlowMode,
		rootKey + "." + configurationConcurrencyKeyConstant:  defaults.Concurrency,
		rootKey + "." + configurationFormatKeyConstant:       defaults.Format,
		rootKey + "." + configurationIncludeCleanKeyConstant: defaults.IncludeClean,
		rootKey + "." + configurationTimeoutKeyConstant:      defaults.RepositoryTimeout,
	}
}

// sanitize trims whitespace, expands home-relative roots, and drops empty
// configuration entries. Roots nested inside other roots are pruned so no
// path is scanned twice.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration

	rootSanitizer := pathutils.NewScanRootSanitizerWithConfiguration(nil, pathutils.ScanRootSanitizerConfiguration{
		PruneNestedRoots: true,
	})
	sanitized.Roots = rootSanitizer.Sanitize(configuration.Roots)
	sanitized.ExcludedNames = sanitizeStringList(configuration.ExcludedNames)
	sanitized.Format = strings.TrimSpace(configuration.Format)

	return sanitized
}

func sanitizeStringList(raw []string) []string {
	sanitized := make([]string, 0, len(raw))
	for _, candidate := range raw {
		trimmed := strings.TrimSpace(candidate)
		if len(trimmed) == 0 {
			continue
		}
		sanitized = append(sanitized, trimmed)
	}
	return sanitized
}
