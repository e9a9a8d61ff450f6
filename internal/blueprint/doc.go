// Package blueprint parses, validates, and refines agent blueprint documents.
//
// A blueprint arrives as untrusted JSON and is handled in three steps: Parse
// produces a loosely typed Document, Validate walks it in a fixed section
// order collecting every error and warning (it never short-circuits, so one
// call surfaces the complete defect list), and Refine lifts a passing
// document into the typed Blueprint the planner consumes. Conditional
// requirements keyed by integration.attach live in a single capability table
// rather than scattered membership checks.
package blueprint
