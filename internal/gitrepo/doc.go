// Package gitrepo translates raw git command output into structured
// repository state.
//
// RepositoryManager exposes the read-only queries the scan engine needs:
// working-tree status, stash depth, HEAD state, branch tracking details, and
// local or remote tag listings. Every query tolerates the repository being in
// an unusual state (unborn HEAD, detached checkout, missing upstream) and
// reports it as data rather than an error wherever git allows.
package gitrepo
