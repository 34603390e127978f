// Package scan implements the scan-and-classify engine.
//
// A TreeWalker enumerates a directory tree in deterministic pre-order,
// consulting the PathClassifier and an ExclusionPolicy to decide which
// subtrees to enter. Discovered repositories are inspected concurrently by a
// RepositoryInspector under the control of the ScanOrchestrator, which
// reassembles results into a ScanReport whose ordering depends only on the
// tree shape, never on inspection timing.
package scan
