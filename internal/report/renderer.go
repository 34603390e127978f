package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/gitstate/gitstate/internal/scan"
)

// Format selects a report encoding.
type Format string

// Supported report formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

const (
	unsupportedFormatTemplateConstant    = "unsupported report format %q"
	jsonIndentConstant                   = "  "
	detailIndentConstant                 = "    "
	plainDirectoryDetailConstant         = "not a git repository"
	brokenSymlinkDetailTemplateConstant  = "broken symbolic link -> %s"
	malformedRepositoryDetailConstant    = "git repository cannot be opened"
	detachedHeadDetailTemplateConstant   = "detached HEAD at %s"
	uncommittedChangesDetailConstant     = "uncommitted changes"
	untrackedFilesDetailConstant         = "untracked files:"
	stashEntriesDetailTemplateConstant   = "%d stash entries"
	branchNoRemoteDetailTemplateConstant = "branch %s has no remote branch"
	branchGoneDetailTemplateConstant     = "branch %s: remote branch %s is gone"
	branchSyncDetailTemplateConstant     = "branch %s: %s %s"
	tagMissingDetailTemplateConstant     = "tag %s missing on remote"
	tagDivergesDetailTemplateConstant    = "tag %s diverges from remote"
	failedAxesDetailTemplateConstant     = "could not inspect: %s"
	cleanRepositoryDetailConstant        = "ok"
	issueForegroundColorConstant         = "9"
	cleanForegroundColorConstant         = "10"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML:
		return FormatYAML, nil
	default:
		return "", fmt.Errorf(unsupportedFormatTemplateConstant, value)
	}
}

// Options configures rendering of one scan report.
type Options struct {
	Format       Format
	IncludeClean bool
}

// Renderer encodes scan reports into the supported formats.
type Renderer struct {
	issueStyle lipgloss.Style
	cleanStyle lipgloss.Style
}

// NewRenderer constructs a Renderer with the default styles.
func NewRenderer() *Renderer {
	return &Renderer{
		issueStyle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(issueForegroundColorConstant)),
		cleanStyle: lipgloss.NewStyle().Foreground(lipgloss.Color(cleanForegroundColorConstant)),
	}
}

// Render writes the report to the writer in the requested format. Findings
// without issues are omitted unless IncludeClean is set.
func (renderer *Renderer) Render(writer io.Writer, scanReport scan.ScanReport, options Options) error {
	filteredReport := filterReport(scanReport, options.IncludeClean)
	switch options.Format {
	case FormatJSON:
		return renderJSON(writer, filteredReport)
	case FormatYAML:
		return renderYAML(writer, filteredReport)
	case FormatText:
		return renderer.renderText(writer, filteredReport)
	default:
		return fmt.Errorf(unsupportedFormatTemplateConstant, options.Format)
	}
}

func filterReport(scanReport scan.ScanReport, includeClean bool) scan.ScanReport {
	if includeClean {
		return scanReport
	}
	filtered := scan.ScanReport{}
	for _, finding := range scanReport.Findings {
		if finding.HasIssues() {
			filtered.Findings = append(filtered.Findings, finding)
		}
	}
	return filtered
}

func renderJSON(writer io.Writer, scanReport scan.ScanReport) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", jsonIndentConstant)
	return encoder.Encode(scanReport)
}

func renderYAML(writer io.Writer, scanReport scan.ScanReport) error {
	encoder := yaml.NewEncoder(writer)
	defer encoder.Close()
	return encoder.Encode(scanReport)
}

func (renderer *Renderer) renderText(writer io.Writer, scanReport scan.ScanReport) error {
	for _, finding := range scanReport.Findings {
		headingStyle := renderer.cleanStyle
		if finding.HasIssues() {
			headingStyle = renderer.issueStyle
		}
		if _, writeError := fmt.Fprintln(writer, headingStyle.Render(finding.Path)); writeError != nil {
			return writeError
		}
		for _, detailLine := range findingDetails(finding) {
			if _, writeError := fmt.Fprintln(writer, detailIndentConstant+detailLine); writeError != nil {
				return writeError
			}
		}
	}
	return nil
}

func findingDetails(finding scan.Finding) []string {
	switch finding.Kind {
	case scan.FindingKindPlainDirectory:
		return []string{plainDirectoryDetailConstant}
	case scan.FindingKindBrokenSymlink:
		return []string{fmt.Sprintf(brokenSymlinkDetailTemplateConstant, finding.SymlinkTarget)}
	case scan.FindingKindMalformedRepository:
		return []string{malformedRepositoryDetailConstant}
	case scan.FindingKindRepository:
		if finding.Repository == nil {
			return nil
		}
		return repositoryDetails(*finding.Repository)
	default:
		return nil
	}
}

func repositoryDetails(repositoryStatus scan.RepoStatus) []string {
	var detailLines []string
	if repositoryStatus.IsDetachedHead {
		detailLines = append(detailLines, fmt.Sprintf(detachedHeadDetailTemplateConstant, repositoryStatus.HeadCommit))
	}
	if repositoryStatus.HasUncommittedChanges {
		detailLines = append(detailLines, uncommittedChangesDetailConstant)
	}
	if repositoryStatus.HasUntrackedFiles {
		detailLines = append(detailLines, untrackedFilesDetailConstant)
		for _, untrackedFile := range repositoryStatus.UntrackedFiles {
			detailLines = append(detailLines, detailIndentConstant+untrackedFile)
		}
	}
	if repositoryStatus.StashCount > 0 {
		detailLines = append(detailLines, fmt.Sprintf(stashEntriesDetailTemplateConstant, repositoryStatus.StashCount))
	}
	for _, branchStatus := range repositoryStatus.Branches {
		detailLines = append(detailLines, branchDetails(branchStatus)...)
	}
	for _, tagIssue := range repositoryStatus.TagIssues {
		switch tagIssue.Kind {
		case scan.TagIssueMissingOnRemote:
			detailLines = append(detailLines, fmt.Sprintf(tagMissingDetailTemplateConstant, tagIssue.Name))
		case scan.TagIssueDivergesFromRemote:
			detailLines = append(detailLines, fmt.Sprintf(tagDivergesDetailTemplateConstant, tagIssue.Name))
		}
	}
	if len(repositoryStatus.FailedAxes) > 0 {
		detailLines = append(detailLines, fmt.Sprintf(failedAxesDetailTemplateConstant, strings.Join(repositoryStatus.FailedAxes, ", ")))
	}
	if len(detailLines) == 0 {
		detailLines = append(detailLines, cleanRepositoryDetailConstant)
	}
	return detailLines
}

func branchDetails(branchStatus scan.BranchStatus) []string {
	if len(branchStatus.RemoteRef) == 0 {
		return []string{fmt.Sprintf(branchNoRemoteDetailTemplateConstant, branchStatus.Name)}
	}
	if branchStatus.RemoteRefMissing {
		return []string{fmt.Sprintf(branchGoneDetailTemplateConstant, branchStatus.Name, branchStatus.RemoteRef)}
	}
	var syncParts []string
	if branchStatus.AheadCount > 0 {
		syncParts = append(syncParts, fmt.Sprintf("%d ahead of", branchStatus.AheadCount))
	}
	if branchStatus.BehindCount > 0 {
		syncParts = append(syncParts, fmt.Sprintf("%d behind", branchStatus.BehindCount))
	}
	if len(syncParts) == 0 {
		return nil
	}
	return []string{fmt.Sprintf(branchSyncDetailTemplateConstant, branchStatus.Name, strings.Join(syncParts, " and "), branchStatus.RemoteRef)}
}
