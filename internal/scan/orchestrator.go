package scan

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	orchestratorWalkerRequiredMessageConstant    = "scan orchestrator requires a tree walker"
	orchestratorInspectorRequiredMessageConstant = "scan orchestrator requires a repository inspector"
	scanRootNotDirectoryTemplateConstant         = "scan root %s is not a directory"
	scanRootInaccessibleTemplateConstant         = "scan root %s is not accessible: %w"
	walkFailedTemplateConstant                   = "walking %s failed: %w"
	defaultRepositoryTimeoutConstant             = 30 * time.Second
	defaultScanRootConstant                      = "."
	repositoryDiscoveredLogMessageConstant       = "repository discovered"
	scanCompletedLogMessageConstant              = "scan completed"
	repositoryPathLogFieldConstant               = "repository_path"
	findingCountLogFieldConstant                 = "finding_count"
	issueCountLogFieldConstant                   = "issue_count"
)

// Orchestrator construction sentinels.
var (
	ErrWalkerNotConfigured    = errors.New(orchestratorWalkerRequiredMessageConstant)
	ErrInspectorNotConfigured = errors.New(orchestratorInspectorRequiredMessageConstant)
)

// RepositoryStatusInspector abstracts repository inspection for the orchestrator.
type RepositoryStatusInspector interface {
	Inspect(executionContext context.Context, repositoryPath string, slowMode bool) (RepoStatus, error)
}

// ScanOptions configures a single scan run.
type ScanOptions struct {
	Roots             []string
	Policy            ExclusionPolicy
	SlowMode          bool
	Concurrency       int
	RepositoryTimeout time.Duration
}

func (options ScanOptions) normalized() ScanOptions {
	if len(options.Roots) == 0 {
		options.Roots = []string{defaultScanRootConstant}
	}
	if options.Concurrency <= 0 {
		options.Concurrency = runtime.NumCPU()
	}
	if options.RepositoryTimeout <= 0 {
		options.RepositoryTimeout = defaultRepositoryTimeoutConstant
	}
	return options
}

// findingSlot reserves one position of the final report in traversal order.
// Repository slots are filled by pool workers; every other slot is complete
// at creation. Workers only touch their own slot, and the aggregation step
// reads slots after the pool drains, so no slot needs locking.
type findingSlot struct {
	finding    Finding
	repository bool
	cancelled  bool
}

// ScanOrchestrator drives the tree walk and fans repository inspections out
// to a bounded worker pool while keeping the report in traversal order.
type ScanOrchestrator struct {
	walker     *TreeWalker
	classifier *PathClassifier
	inspector  RepositoryStatusInspector
	logger     *zap.Logger
}

// NewScanOrchestrator constructs a ScanOrchestrator from its collaborators.
func NewScanOrchestrator(walker *TreeWalker, classifier *PathClassifier, inspector RepositoryStatusInspector, logger *zap.Logger) (*ScanOrchestrator, error) {
	if walker == nil {
		return nil, ErrWalkerNotConfigured
	}
	if classifier == nil {
		return nil, ErrClassifierNotConfigured
	}
	if inspector == nil {
		return nil, ErrInspectorNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScanOrchestrator{walker: walker, classifier: classifier, inspector: inspector, logger: logger}, nil
}

// Scan walks the configured roots, inspects every discovered repository, and
// returns the aggregated report.
//
// The walk itself is single threaded; inspections run on a pool bounded by
// Concurrency, each under its own timeout. The report lists findings in
// traversal order regardless of inspection completion order. When the
// context is cancelled the returned report is a clean traversal-order prefix
// of the full one, alongside the context error.
func (orchestrator *ScanOrchestrator) Scan(executionContext context.Context, options ScanOptions) (ScanReport, error) {
	options = options.normalized()
	if policyError := options.Policy.Validate(); policyError != nil {
		return ScanReport{}, policyError
	}
	if rootsError := validateScanRoots(options.Roots); rootsError != nil {
		return ScanReport{}, rootsError
	}

	var slots []*findingSlot
	var workerWaitGroup sync.WaitGroup
	workerSemaphore := make(chan struct{}, options.Concurrency)

	dispatchInspection := func(repositoryPath string) {
		orchestrator.logger.Debug(repositoryDiscoveredLogMessageConstant, zap.String(repositoryPathLogFieldConstant, repositoryPath))
		slot := &findingSlot{repository: true, finding: Finding{Kind: FindingKindRepository, Path: repositoryPath}}
		slots = append(slots, slot)
		workerWaitGroup.Add(1)
		go func() {
			defer workerWaitGroup.Done()
			workerSemaphore <- struct{}{}
			defer func() { <-workerSemaphore }()
			orchestrator.inspectIntoSlot(executionContext, repositoryPath, options, slot)
		}()
	}

	var walkError error
	var failedRootPath string
	for _, rootPath := range options.Roots {
		if enclosingRepository, enclosed := orchestrator.findEnclosingRepository(rootPath); enclosed {
			dispatchInspection(enclosingRepository)
			continue
		}

		walkError = orchestrator.walker.Walk(executionContext, rootPath, options.Policy, func(event WalkEvent) error {
			switch event.Kind {
			case WalkEventRepositoryCandidate:
				dispatchInspection(event.Path)
			case WalkEventPlainDirectory:
				slots = append(slots, &findingSlot{finding: Finding{Kind: FindingKindPlainDirectory, Path: event.Path}})
			case WalkEventBrokenSymlink:
				slots = append(slots, &findingSlot{finding: Finding{Kind: FindingKindBrokenSymlink, Path: event.Path, SymlinkTarget: event.SymlinkTarget}})
			}
			return nil
		})
		if walkError != nil {
			failedRootPath = rootPath
			break
		}
	}

	workerWaitGroup.Wait()

	report := assembleReport(slots)
	if contextError := executionContext.Err(); contextError != nil {
		return report, contextError
	}
	if walkError != nil {
		return report, fmt.Errorf(walkFailedTemplateConstant, failedRootPath, walkError)
	}

	orchestrator.logger.Debug(scanCompletedLogMessageConstant,
		zap.Int(findingCountLogFieldConstant, len(report.Findings)),
		zap.Int(issueCountLogFieldConstant, report.IssueCount()))
	return report, nil
}

// inspectIntoSlot runs one repository inspection under its own timeout and
// records the outcome in the slot. Failures observed after the scan context
// was cancelled are recorded as cancellations so the aggregation step can
// truncate the report instead of mislabeling interrupted repositories.
func (orchestrator *ScanOrchestrator) inspectIntoSlot(executionContext context.Context, repositoryPath string, options ScanOptions, slot *findingSlot) {
	if executionContext.Err() != nil {
		slot.cancelled = true
		return
	}

	inspectionContext, cancelInspection := context.WithTimeout(executionContext, options.RepositoryTimeout)
	defer cancelInspection()

	repositoryStatus, inspectionError := orchestrator.inspector.Inspect(inspectionContext, repositoryPath, options.SlowMode)
	switch {
	case inspectionError == nil:
		slot.finding.Repository = &repositoryStatus
	case executionContext.Err() != nil:
		slot.cancelled = true
	default:
		slot.finding = Finding{Kind: FindingKindMalformedRepository, Path: repositoryPath}
	}
}

// findEnclosingRepository ascends from rootPath looking for a repository
// marker. When the scan root sits inside a repository the scan inspects that
// single repository instead of walking the subtree.
func (orchestrator *ScanOrchestrator) findEnclosingRepository(rootPath string) (string, bool) {
	currentPath, absoluteError := filepath.Abs(rootPath)
	if absoluteError != nil {
		return "", false
	}
	for {
		if orchestrator.classifier.HasRepositoryMarker(currentPath) {
			return currentPath, true
		}
		parentPath := filepath.Dir(currentPath)
		if parentPath == currentPath {
			return "", false
		}
		currentPath = parentPath
	}
}

func assembleReport(slots []*findingSlot) ScanReport {
	report := ScanReport{}
	for _, slot := range slots {
		if slot.cancelled {
			break
		}
		report.Findings = append(report.Findings, slot.finding)
	}
	return report
}

func validateScanRoots(rootPaths []string) error {
	for _, rootPath := range rootPaths {
		rootInfo, statError := os.Stat(rootPath)
		if statError != nil {
			return fmt.Errorf(scanRootInaccessibleTemplateConstant, rootPath, statError)
		}
		if !rootInfo.IsDir() {
			return fmt.Errorf(scanRootNotDirectoryTemplateConstant, rootPath)
		}
	}
	return nil
}
