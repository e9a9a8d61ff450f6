package workflow

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"gantry/internal/blueprint"
	"gantry/internal/config"
	"gantry/internal/fileutil"
	"gantry/internal/logging"
	"gantry/internal/scaffold"
)

//go:embed seed_blueprint.json
var seedBlueprint []byte

// BlueprintFileName is the blueprint draft inside a run workspace.
const BlueprintFileName = "blueprint.json"

// ErrOutsideWorkspaceRoot indicates a finish target outside the configured
// workspace root.
var ErrOutsideWorkspaceRoot = errors.New("workdir is outside the workspace root")

// RunRecorder receives run index updates. A nil recorder disables tracking;
// failures are logged and never fail the workflow operation itself.
type RunRecorder interface {
	RunStarted(ctx context.Context, runID, workdir string) error
	RunAdvanced(ctx context.Context, runID, agentID, stage, status string) error
	RunFinished(ctx context.Context, runID string) error
}

// Orchestrator executes workflow operations against run workspaces. Every
// operation loads state from disk at entry and persists it before returning,
// so concurrent invocations observe each other's writes.
type Orchestrator struct {
	cfg      *config.Config
	logger   *slog.Logger
	recorder RunRecorder
}

// New builds an orchestrator. logger may be nil; recorder may be nil.
func New(cfg *config.Config, logger *slog.Logger, recorder RunRecorder) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{cfg: cfg, logger: logger, recorder: recorder}
}

func (o *Orchestrator) record(ctx context.Context, fn func() error) {
	if o.recorder == nil {
		return
	}
	if err := fn(); err != nil {
		o.logger.Warn("run index update failed", "error", err)
	}
}

// Start creates a new run workspace under the workspace root, seeds a valid
// blueprint draft, and initializes workflow state at the interview stage.
func (o *Orchestrator) Start(ctx context.Context) (*State, error) {
	if err := o.cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	runID := newRunID()
	workdir := filepath.Join(o.cfg.Paths.WorkspaceRoot, runID)
	if err := os.MkdirAll(workdir, 0o755); err != nil {
		return nil, fmt.Errorf("create run workspace: %w", err)
	}

	blueprintPath := filepath.Join(workdir, BlueprintFileName)
	if err := fileutil.WriteFileAtomic(blueprintPath, seedBlueprint, 0o644); err != nil {
		return nil, fmt.Errorf("seed blueprint: %w", err)
	}

	state := NewState(runID, workdir, blueprintPath, time.Now())
	state.Record(StageInterview, "started", "workspace created")
	if err := state.Save(); err != nil {
		return nil, err
	}

	o.record(ctx, func() error { return o.recorder.RunStarted(ctx, runID, workdir) })
	o.logger.Info("run started", "run_id", runID, "workdir", workdir)
	return state, nil
}

// Status loads the current workflow state without mutating anything.
func (o *Orchestrator) Status(workdir string) (*State, error) {
	return LoadState(workdir)
}

// Approve marks a stage approved and advances the workflow. Only the current
// stage can be approved; the blueprint stage additionally requires a recorded
// passing validation.
func (o *Orchestrator) Approve(ctx context.Context, workdir string, stage Stage) (*State, error) {
	state, err := LoadState(workdir)
	if err != nil {
		return nil, err
	}

	if !stage.Known() {
		return nil, fmt.Errorf("unknown stage %q", stage)
	}
	if stage != state.CurrentStage {
		return nil, fmt.Errorf("stage %s (%s) is not awaiting approval; current stage is %s (%s)",
			stage, stage.Name(), state.CurrentStage, state.CurrentStage.Name())
	}
	if stage == StageBlueprint && state.Stage(StageBlueprint).Status != StatusReadyForReview {
		return nil, fmt.Errorf("blueprint stage is %q; run validate-blueprint until it passes before approving",
			state.Stage(StageBlueprint).Status)
	}

	entry := state.Stage(stage)
	entry.Status = StatusApproved
	entry.UserApproved = true
	state.CurrentStage = stage.next()
	state.Record(stage, "approved", "advanced to "+string(state.CurrentStage))

	if err := state.Save(); err != nil {
		return nil, err
	}
	o.record(ctx, func() error {
		return o.recorder.RunAdvanced(ctx, state.RunID, o.agentID(state), string(state.CurrentStage), "active")
	})
	o.logger.Info("stage approved", "run_id", state.RunID, "stage", string(stage), "current", string(state.CurrentStage))
	return state, nil
}

// ValidateBlueprint runs the validator against the workspace blueprint and
// records the outcome on the blueprint stage. A non-empty blueprintPath
// repoints the run at that document before validating. The approval flag is
// never touched here. A document that cannot be parsed at all counts as a
// failed validation.
func (o *Orchestrator) ValidateBlueprint(ctx context.Context, workdir, blueprintPath string) (*State, blueprint.ValidationResult, error) {
	state, err := LoadState(workdir)
	if err != nil {
		return nil, blueprint.ValidationResult{}, err
	}
	if strings.TrimSpace(blueprintPath) != "" {
		abs, err := filepath.Abs(blueprintPath)
		if err != nil {
			return nil, blueprint.ValidationResult{}, fmt.Errorf("resolve blueprint path: %w", err)
		}
		state.BlueprintPath = abs
	}

	entry := state.Stage(StageBlueprint)
	doc, err := blueprint.LoadFile(state.BlueprintPath)
	if err != nil {
		entry.Status = StatusValidationFailed
		entry.Artifacts = map[string]any{"parse_error": err.Error()}
		state.Record(StageBlueprint, "validated", "blueprint unreadable")
		if saveErr := state.Save(); saveErr != nil {
			return nil, blueprint.ValidationResult{}, saveErr
		}
		return state, blueprint.ValidationResult{}, fmt.Errorf("load blueprint: %w", err)
	}

	result := blueprint.Validate(doc)
	entry.Artifacts = map[string]any{
		"errors":   len(result.Errors),
		"warnings": len(result.Warnings),
	}
	if result.OK {
		entry.Status = StatusReadyForReview
		state.Record(StageBlueprint, "validated", "passed")
	} else {
		entry.Status = StatusValidationFailed
		state.Record(StageBlueprint, "validated", fmt.Sprintf("failed with %d error(s)", len(result.Errors)))
	}

	if err := state.Save(); err != nil {
		return nil, result, err
	}
	o.record(ctx, func() error {
		return o.recorder.RunAdvanced(ctx, state.RunID, o.agentID(state), string(state.CurrentStage), "active")
	})
	o.logger.Info("blueprint validated",
		"run_id", state.RunID, "ok", result.OK,
		"errors", len(result.Errors), "warnings", len(result.Warnings))
	return state, result, nil
}

// Plan computes the scaffold operation list without touching state or disk.
// The blueprint must pass validation. An empty repoRoot scaffolds into the
// run workspace itself.
func (o *Orchestrator) Plan(workdir, repoRoot string) ([]scaffold.PlannedOperation, *blueprint.Blueprint, error) {
	state, err := LoadState(workdir)
	if err != nil {
		return nil, nil, err
	}
	if repoRoot == "" {
		repoRoot = workdir
	}

	bp, err := o.refine(state)
	if err != nil {
		return nil, nil, err
	}
	corpus, err := scaffold.ReadCorpus(o.cfg.Paths.TemplateDir)
	if err != nil {
		return nil, nil, err
	}
	ops := scaffold.Plan(bp, repoRoot, o.registryPath(bp, repoRoot), corpus)
	return ops, bp, nil
}

// ApplyOutcome reports one apply invocation.
type ApplyOutcome struct {
	Outcomes []scaffold.OperationOutcome
	Summary  scaffold.Summary
	State    *State
}

// Apply executes the scaffold plan. It requires blueprint approval, reaches
// it only at the scaffold stage or later, and re-validates the blueprint so a
// document edited after approval cannot slip through.
func (o *Orchestrator) Apply(ctx context.Context, workdir, repoRoot string, overwrite bool) (*ApplyOutcome, error) {
	state, err := LoadState(workdir)
	if err != nil {
		return nil, err
	}
	if repoRoot == "" {
		repoRoot = workdir
	}

	if !state.Stage(StageBlueprint).UserApproved {
		return nil, errors.New("blueprint stage has not been approved; approve stage B first")
	}
	if !state.CurrentStage.atOrPast(StageScaffold) {
		return nil, fmt.Errorf("workflow is at stage %s (%s); apply requires the scaffold stage",
			state.CurrentStage, state.CurrentStage.Name())
	}

	bp, err := o.refine(state)
	if err != nil {
		return nil, err
	}
	corpus, err := scaffold.ReadCorpus(o.cfg.Paths.TemplateDir)
	if err != nil {
		return nil, err
	}

	registryPath := o.registryPath(bp, repoRoot)
	ops := scaffold.Plan(bp, repoRoot, registryPath, corpus)
	outcomes := scaffold.Apply(bp, ops, corpus, scaffold.ApplyOptions{Commit: true, Overwrite: overwrite})
	summary := scaffold.Summarize(outcomes)

	entry := state.Stage(StageScaffold)
	entry.Status = StatusApplied
	entry.Artifacts = map[string]any{
		"written":       summary.Written,
		"updated":       summary.Updated,
		"skipped":       summary.Skipped,
		"failed":        summary.Failed,
		"registry_path": registryPath,
	}
	state.Record(StageScaffold, "applied",
		fmt.Sprintf("%d written, %d skipped, %d failed", summary.Written, summary.Skipped, summary.Failed))

	if err := state.Save(); err != nil {
		return nil, err
	}
	o.record(ctx, func() error {
		return o.recorder.RunAdvanced(ctx, state.RunID, bp.AgentID(), string(state.CurrentStage), "active")
	})
	o.logger.Info("scaffold applied",
		"run_id", state.RunID, "agent", bp.AgentID(),
		"written", summary.Written, "skipped", summary.Skipped, "failed", summary.Failed)
	return &ApplyOutcome{Outcomes: outcomes, Summary: summary, State: state}, nil
}

// Finish deletes a run workspace. Targets outside the configured workspace
// root are refused unless force is set.
func (o *Orchestrator) Finish(ctx context.Context, workdir string, force bool) error {
	contained, err := fileutil.ContainsPath(o.cfg.Paths.WorkspaceRoot, workdir)
	if err != nil {
		return fmt.Errorf("resolve workdir: %w", err)
	}
	if !contained && !force {
		return fmt.Errorf("%w: %s is not under %s (use --force to delete anyway)",
			ErrOutsideWorkspaceRoot, workdir, o.cfg.Paths.WorkspaceRoot)
	}

	// Best effort: a workspace with a corrupt or missing state file can
	// still be cleaned up.
	runID := ""
	if state, err := LoadState(workdir); err == nil {
		runID = state.RunID
	}

	if err := os.RemoveAll(workdir); err != nil {
		return fmt.Errorf("remove workspace: %w", err)
	}
	if runID != "" {
		o.record(ctx, func() error { return o.recorder.RunFinished(ctx, runID) })
	}
	o.logger.Info("run finished", "run_id", runID, "workdir", workdir, "forced", force)
	return nil
}

// refine loads and fully validates the workspace blueprint, returning the
// typed view.
func (o *Orchestrator) refine(state *State) (*blueprint.Blueprint, error) {
	doc, err := blueprint.LoadFile(state.BlueprintPath)
	if err != nil {
		return nil, fmt.Errorf("load blueprint: %w", err)
	}
	bp, result, err := blueprint.Refine(doc)
	if err != nil {
		return nil, fmt.Errorf("%w (first: %s)", err, firstError(result))
	}
	return bp, nil
}

// registryPath resolves the registry target: the blueprint's deliverables
// entry wins, resolved against the repository root when relative; otherwise
// the configured default.
func (o *Orchestrator) registryPath(bp *blueprint.Blueprint, repoRoot string) string {
	declared := bp.RegistryPath("")
	if declared == "" {
		return o.cfg.Registry.Path
	}
	if filepath.IsAbs(declared) {
		return declared
	}
	return filepath.Join(repoRoot, filepath.FromSlash(declared))
}

func (o *Orchestrator) agentID(state *State) string {
	doc, err := blueprint.LoadFile(state.BlueprintPath)
	if err != nil {
		return ""
	}
	bp, _, err := blueprint.Refine(doc)
	if err != nil {
		return ""
	}
	return bp.AgentID()
}

func firstError(result blueprint.ValidationResult) string {
	if len(result.Errors) == 0 {
		return "no detail"
	}
	return result.Errors[0]
}

func newRunID() string {
	return "run-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
