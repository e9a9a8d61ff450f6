package scaffold

import (
	"path"
	"path/filepath"
	"strings"

	"gantry/internal/blueprint"
)

// Action names a kind of planned filesystem operation.
type Action string

const (
	ActionMkdir  Action = "mkdir"
	ActionWrite  Action = "write"
	ActionUpdate Action = "update"
)

// PlannedOperation is one step of a scaffold. It is immutable: produced by
// Plan, consumed by Apply within the same invocation.
type PlannedOperation struct {
	Action     Action `json:"action"`
	TargetPath string `json:"target_path"`
	// SourceTemplate is the corpus-relative path for template-backed writes.
	SourceTemplate string `json:"source_template,omitempty"`
	// Render identifies generated content ("schema:RunRequest",
	// "doc:runbook") for writes with no template source.
	Render string `json:"render,omitempty"`
}

// GeneratedDocNames is the fixed documentation set every scaffold produces.
var GeneratedDocNames = []string{
	"overview",
	"integration",
	"configuration",
	"dataflow",
	"runbook",
	"evaluation",
}

const (
	coreSubtree    = "core"
	attachSubtree  = "attach"
	promptsSubtree = "prompts"
)

// Plan computes the ordered operation list for a validated blueprint. It is
// pure: same blueprint, roots, and corpus listing always yield the same
// output, and nothing is touched on disk.
func Plan(bp *blueprint.Blueprint, repoRoot, registryPath string, corpus []TemplateFile) []PlannedOperation {
	moduleRoot := filepath.Join(repoRoot, filepath.FromSlash(bp.Deliverables.ModuleRoot))
	docsRoot := filepath.Join(repoRoot, filepath.FromSlash(bp.Deliverables.DocsRoot))

	ops := []PlannedOperation{
		{Action: ActionMkdir, TargetPath: moduleRoot},
		{Action: ActionMkdir, TargetPath: docsRoot},
		{Action: ActionUpdate, TargetPath: registryPath},
	}

	for _, file := range corpus {
		target, ok := templateTarget(bp, moduleRoot, file.RelPath)
		if !ok {
			continue
		}
		ops = append(ops, PlannedOperation{
			Action:         ActionWrite,
			TargetPath:     target,
			SourceTemplate: file.RelPath,
		})
	}

	for _, name := range blueprint.RequiredSchemaNames {
		ops = append(ops, PlannedOperation{
			Action:     ActionWrite,
			TargetPath: filepath.Join(moduleRoot, "schemas", snakeCase(name)+".schema.json"),
			Render:     "schema:" + name,
		})
	}

	for _, name := range GeneratedDocNames {
		ops = append(ops, PlannedOperation{
			Action:     ActionWrite,
			TargetPath: filepath.Join(docsRoot, name+".md"),
			Render:     "doc:" + name,
		})
	}

	return ops
}

// templateTarget maps a corpus-relative path to its destination, honoring the
// attach-kind filter and the complexity-tier prompt selection. Core and
// top-level template files are never filtered.
func templateTarget(bp *blueprint.Blueprint, moduleRoot, relPath string) (string, bool) {
	parts := strings.SplitN(relPath, "/", 3)

	switch parts[0] {
	case coreSubtree:
		if len(parts) < 2 {
			return "", false
		}
		rest := path.Join(parts[1:]...)
		return filepath.Join(moduleRoot, filepath.FromSlash(rest)), true
	case attachSubtree:
		if len(parts) < 3 {
			return "", false
		}
		kind := blueprint.AttachKind(parts[1])
		if !bp.HasAttach(kind) {
			return "", false
		}
		return filepath.Join(moduleRoot, filepath.FromSlash(parts[2])), true
	case promptsSubtree:
		if len(parts) < 3 {
			return "", false
		}
		if parts[1] != bp.ComplexityTier() {
			return "", false
		}
		return filepath.Join(moduleRoot, "prompts", filepath.FromSlash(parts[2])), true
	default:
		return filepath.Join(moduleRoot, filepath.FromSlash(relPath)), true
	}
}

// snakeCase converts a schema name like RunRequest to run_request.
func snakeCase(name string) string {
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
