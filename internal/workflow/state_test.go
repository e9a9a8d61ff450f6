package workflow_test

import (
	"errors"
	"testing"
	"time"

	"gantry/internal/workflow"
)

func TestStateRoundTrip(t *testing.T) {
	workdir := t.TempDir()
	state := workflow.NewState("run-deadbeef", workdir, workdir+"/blueprint.json", time.Now())
	state.Record(workflow.StageInterview, "started", "workspace created")

	if err := state.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := workflow.LoadState(workdir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.RunID != "run-deadbeef" {
		t.Errorf("run id = %q", loaded.RunID)
	}
	if loaded.CurrentStage != workflow.StageInterview {
		t.Errorf("current stage = %q, want A", loaded.CurrentStage)
	}
	for _, stage := range workflow.Stages() {
		entry := loaded.Stage(stage)
		if entry.Status != workflow.StatusPending || entry.UserApproved {
			t.Errorf("stage %s = %+v, want pending/unapproved", stage, entry)
		}
	}
	if len(loaded.History) != 1 {
		t.Fatalf("history length = %d, want 1", len(loaded.History))
	}
	event := loaded.History[0]
	if event.ID == "" || event.Action != "started" {
		t.Errorf("history event = %+v", event)
	}
	if _, err := time.Parse(time.RFC3339, event.At); err != nil {
		t.Errorf("event timestamp %q not RFC3339: %v", event.At, err)
	}
}

func TestLoadStateMissing(t *testing.T) {
	_, err := workflow.LoadState(t.TempDir())
	if !errors.Is(err, workflow.ErrStateMissing) {
		t.Fatalf("error = %v, want ErrStateMissing", err)
	}
}

func TestParseStage(t *testing.T) {
	cases := []struct {
		raw  string
		want workflow.Stage
		ok   bool
	}{
		{"B", workflow.StageBlueprint, true},
		{"b", workflow.StageBlueprint, true},
		{"blueprint", workflow.StageBlueprint, true},
		{"scaffold", workflow.StageScaffold, true},
		{"DONE", "", false},
		{"z", "", false},
	}
	for _, tc := range cases {
		got, ok := workflow.ParseStage(tc.raw)
		if ok != tc.ok || got != tc.want {
			t.Errorf("ParseStage(%q) = %q,%v want %q,%v", tc.raw, got, ok, tc.want, tc.ok)
		}
	}
}
