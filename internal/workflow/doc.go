// Package workflow drives the staged approval lifecycle of a run workspace:
// interview, blueprint, scaffold, implementation, verification. State lives
// in a per-workspace state.json that every operation loads on entry and
// persists on exit; approvals advance the current stage monotonically and are
// never revoked.
package workflow
