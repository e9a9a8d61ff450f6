package workflow

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"gantry/internal/fileutil"
)

// StateFileName is the per-workspace state file.
const StateFileName = "state.json"

// Stage statuses.
const (
	StatusPending          = "pending"
	StatusReadyForReview   = "ready_for_review"
	StatusValidationFailed = "validation_failed"
	StatusApproved         = "approved"
	StatusApplied          = "applied"
)

// ErrStateMissing indicates the workspace has no state file.
var ErrStateMissing = errors.New("workflow state not found")

// StageState tracks one stage's progress. UserApproved is sticky: once set it
// is never cleared, even if the stage status later changes.
type StageState struct {
	Status       string         `json:"status"`
	UserApproved bool           `json:"userApproved"`
	Artifacts    map[string]any `json:"artifacts,omitempty"`
}

// HistoryEvent is one append-only audit record.
type HistoryEvent struct {
	ID     string `json:"id"`
	At     string `json:"at"`
	Stage  Stage  `json:"stage"`
	Action string `json:"action"`
	Detail string `json:"detail,omitempty"`
}

// State is the authoritative workflow record for one run workspace.
type State struct {
	RunID         string                `json:"runId"`
	CreatedAt     string                `json:"createdAt"`
	WorkdirPath   string                `json:"workdirPath"`
	CurrentStage  Stage                 `json:"currentStage"`
	BlueprintPath string                `json:"blueprintPath"`
	Stages        map[Stage]*StageState `json:"stages"`
	History       []HistoryEvent        `json:"history"`
}

// NewState seeds a fresh state with every stage pending and the workflow at
// the interview stage.
func NewState(runID, workdir, blueprintPath string, now time.Time) *State {
	stages := make(map[Stage]*StageState, len(stageOrder))
	for _, stage := range stageOrder {
		stages[stage] = &StageState{Status: StatusPending}
	}
	return &State{
		RunID:         runID,
		CreatedAt:     now.UTC().Format(time.RFC3339),
		WorkdirPath:   workdir,
		CurrentStage:  StageInterview,
		BlueprintPath: blueprintPath,
		Stages:        stages,
	}
}

// LoadState reads the state file from a run workspace.
func LoadState(workdir string) (*State, error) {
	path := filepath.Join(workdir, StateFileName)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrStateMissing, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parse state %s: %w", path, err)
	}
	if state.Stages == nil {
		state.Stages = make(map[Stage]*StageState)
	}
	for _, stage := range stageOrder {
		if state.Stages[stage] == nil {
			state.Stages[stage] = &StageState{Status: StatusPending}
		}
	}
	return &state, nil
}

// Save persists the state atomically into its workspace.
func (s *State) Save() error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	path := filepath.Join(s.WorkdirPath, StateFileName)
	if err := fileutil.WriteFileAtomic(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}

// Stage returns the tracked state for a stage, creating a pending record on
// first touch.
func (s *State) Stage(stage Stage) *StageState {
	entry, ok := s.Stages[stage]
	if !ok {
		entry = &StageState{Status: StatusPending}
		s.Stages[stage] = entry
	}
	return entry
}

// Record appends a history event. History is append-only: nothing else in
// this package mutates it.
func (s *State) Record(stage Stage, action, detail string) {
	s.History = append(s.History, HistoryEvent{
		ID:     uuid.NewString(),
		At:     time.Now().UTC().Format(time.RFC3339),
		Stage:  stage,
		Action: action,
		Detail: detail,
	})
}
