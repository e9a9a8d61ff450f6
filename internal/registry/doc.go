// Package registry maintains the JSON document of generated agents.
//
// The merge operation is an idempotent upsert keyed by agent identifier:
// applying the same blueprint twice leaves one entry, and re-applying a
// modified blueprint replaces that entry wholesale. A registry file that
// exists but fails to parse is reported as an error so operator data is never
// clobbered.
package registry
