// Package scaffold turns a validated blueprint into filesystem operations.
//
// Planning and applying are separate steps. Plan walks the template corpus
// and produces a deterministic, ordered operation list without touching disk.
// Apply executes that list with copy-if-missing semantics, recording a
// per-operation outcome instead of aborting on the first failure, so a
// partially applied scaffold can always be re-applied.
package scaffold
