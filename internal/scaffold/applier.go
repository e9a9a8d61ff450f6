package scaffold

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gantry/internal/blueprint"
	"gantry/internal/fileutil"
	"gantry/internal/registry"
)

// OutcomeStatus classifies what happened (or would happen) to one operation.
type OutcomeStatus string

const (
	// OutcomePlanned marks a dry-run operation that was not executed.
	OutcomePlanned OutcomeStatus = "planned"
	// OutcomeWritten marks a file that was created.
	OutcomeWritten OutcomeStatus = "written"
	// OutcomeUpdated marks a registry merge or an overwrite of an existing file.
	OutcomeUpdated OutcomeStatus = "updated"
	// OutcomeSkipped marks a target that already existed and was left alone.
	OutcomeSkipped OutcomeStatus = "skipped-exists"
	// OutcomeFailed marks an operation that errored. Later operations still run.
	OutcomeFailed OutcomeStatus = "failed"
)

// OperationOutcome pairs a planned operation with its result.
type OperationOutcome struct {
	Op     PlannedOperation `json:"op"`
	Status OutcomeStatus    `json:"status"`
	Detail string           `json:"detail,omitempty"`
}

// ApplyOptions controls applier behavior.
type ApplyOptions struct {
	// Commit executes operations. When false the applier only reports what
	// it would do.
	Commit bool
	// Overwrite replaces existing text files instead of skipping them.
	Overwrite bool
}

// Summary counts outcomes by status.
type Summary struct {
	Planned int `json:"planned"`
	Written int `json:"written"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Summarize tallies a result list.
func Summarize(outcomes []OperationOutcome) Summary {
	var s Summary
	for _, o := range outcomes {
		switch o.Status {
		case OutcomePlanned:
			s.Planned++
		case OutcomeWritten:
			s.Written++
		case OutcomeUpdated:
			s.Updated++
		case OutcomeSkipped:
			s.Skipped++
		case OutcomeFailed:
			s.Failed++
		}
	}
	return s
}

// Apply executes a plan. A failing operation is recorded and does not stop the
// remaining ones, so a partially applied scaffold can be diagnosed from the
// outcome list and re-applied: existing targets are skipped, missing ones are
// created.
func Apply(bp *blueprint.Blueprint, ops []PlannedOperation, corpus []TemplateFile, opts ApplyOptions) []OperationOutcome {
	byRel := make(map[string]TemplateFile, len(corpus))
	for _, file := range corpus {
		byRel[file.RelPath] = file
	}
	replacer := newReplacer(bp)

	outcomes := make([]OperationOutcome, 0, len(ops))
	for _, op := range ops {
		status, detail := applyOne(bp, op, byRel, replacer, opts)
		outcomes = append(outcomes, OperationOutcome{Op: op, Status: status, Detail: detail})
	}
	return outcomes
}

func applyOne(bp *blueprint.Blueprint, op PlannedOperation, byRel map[string]TemplateFile, replacer *strings.Replacer, opts ApplyOptions) (OutcomeStatus, string) {
	if !opts.Commit {
		return OutcomePlanned, ""
	}

	switch op.Action {
	case ActionMkdir:
		if err := os.MkdirAll(op.TargetPath, 0o755); err != nil {
			return OutcomeFailed, err.Error()
		}
		return OutcomeWritten, ""

	case ActionUpdate:
		doc, err := registry.Merge(op.TargetPath, bp, true)
		if err != nil {
			return OutcomeFailed, err.Error()
		}
		return OutcomeUpdated, fmt.Sprintf("%d agent(s) registered", len(doc.Agents))

	case ActionWrite:
		return applyWrite(bp, op, byRel, replacer, opts)

	default:
		return OutcomeFailed, fmt.Sprintf("unknown action %q", op.Action)
	}
}

func applyWrite(bp *blueprint.Blueprint, op PlannedOperation, byRel map[string]TemplateFile, replacer *strings.Replacer, opts ApplyOptions) (OutcomeStatus, string) {
	existed, err := targetExists(op.TargetPath)
	if err != nil {
		return OutcomeFailed, err.Error()
	}
	if existed && !opts.Overwrite {
		return OutcomeSkipped, ""
	}
	if err := os.MkdirAll(filepath.Dir(op.TargetPath), 0o755); err != nil {
		return OutcomeFailed, err.Error()
	}

	var data []byte
	switch {
	case op.SourceTemplate != "":
		file, ok := byRel[op.SourceTemplate]
		if !ok {
			return OutcomeFailed, fmt.Sprintf("template %q missing from corpus", op.SourceTemplate)
		}
		if file.Binary {
			// Binary templates are copied byte for byte, no substitution.
			if err := fileutil.CopyFileVerified(file.AbsPath, op.TargetPath); err != nil {
				return OutcomeFailed, err.Error()
			}
			if existed {
				return OutcomeUpdated, ""
			}
			return OutcomeWritten, ""
		}
		raw, err := os.ReadFile(file.AbsPath)
		if err != nil {
			return OutcomeFailed, err.Error()
		}
		data = []byte(replacer.Replace(string(raw)))

	case strings.HasPrefix(op.Render, "schema:"):
		data, err = RenderSchema(bp, strings.TrimPrefix(op.Render, "schema:"))
		if err != nil {
			return OutcomeFailed, err.Error()
		}

	case strings.HasPrefix(op.Render, "doc:"):
		data, err = RenderDoc(bp, strings.TrimPrefix(op.Render, "doc:"))
		if err != nil {
			return OutcomeFailed, err.Error()
		}

	default:
		return OutcomeFailed, "write operation has neither template nor renderer"
	}

	if err := fileutil.WriteFileAtomic(op.TargetPath, data, 0o644); err != nil {
		return OutcomeFailed, err.Error()
	}
	if existed {
		return OutcomeUpdated, ""
	}
	return OutcomeWritten, ""
}

func targetExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
