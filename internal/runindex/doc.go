// Package runindex tracks run workspaces in a central SQLite database under
// the log directory. The index powers discovery commands (runs listing,
// status without an explicit workdir); the per-run state file remains the
// source of truth for workflow decisions. Mutations are serialized across
// processes with a sidecar flock file.
package runindex
