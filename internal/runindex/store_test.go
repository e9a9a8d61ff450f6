package runindex_test

import (
	"context"
	"errors"
	"testing"

	"gantry/internal/runindex"
	"gantry/internal/testsupport"
)

func openStore(t *testing.T) *runindex.Store {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	store, err := runindex.Open(cfg)
	if err != nil {
		t.Fatalf("open run index: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRunLifecycle(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if err := store.RunStarted(ctx, "run-1a2b3c4d", "/tmp/run-1a2b3c4d"); err != nil {
		t.Fatalf("RunStarted: %v", err)
	}

	run, err := store.Get(ctx, "run-1a2b3c4d")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if run.Stage != "A" || run.Status != runindex.StatusActive {
		t.Errorf("fresh run stage/status = %s/%s, want A/active", run.Stage, run.Status)
	}
	if run.AgentID != "" {
		t.Errorf("fresh run agent id = %q, want empty", run.AgentID)
	}

	if err := store.RunAdvanced(ctx, "run-1a2b3c4d", "invoice-triage", "B", runindex.StatusActive); err != nil {
		t.Fatalf("RunAdvanced: %v", err)
	}
	run, err = store.Get(ctx, "run-1a2b3c4d")
	if err != nil {
		t.Fatalf("Get after advance: %v", err)
	}
	if run.Stage != "B" || run.AgentID != "invoice-triage" {
		t.Errorf("advanced run = %+v", run)
	}

	// Empty agent id must not clobber the recorded one.
	if err := store.RunAdvanced(ctx, "run-1a2b3c4d", "", "C", runindex.StatusActive); err != nil {
		t.Fatalf("RunAdvanced without agent: %v", err)
	}
	run, err = store.Get(ctx, "run-1a2b3c4d")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if run.AgentID != "invoice-triage" {
		t.Errorf("agent id reset to %q", run.AgentID)
	}

	if err := store.RunFinished(ctx, "run-1a2b3c4d"); err != nil {
		t.Fatalf("RunFinished: %v", err)
	}
	run, err = store.Get(ctx, "run-1a2b3c4d")
	if err != nil {
		t.Fatalf("Get after finish: %v", err)
	}
	if run.Status != runindex.StatusFinished {
		t.Errorf("finished run status = %q", run.Status)
	}
}

func TestMostRecentActive(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if _, err := store.MostRecentActive(ctx); !errors.Is(err, runindex.ErrNotFound) {
		t.Fatalf("empty index error = %v, want ErrNotFound", err)
	}

	for _, id := range []string{"run-aaaa0001", "run-aaaa0002"} {
		if err := store.RunStarted(ctx, id, "/tmp/"+id); err != nil {
			t.Fatalf("RunStarted %s: %v", id, err)
		}
	}
	if err := store.RunAdvanced(ctx, "run-aaaa0001", "", "B", runindex.StatusActive); err != nil {
		t.Fatalf("RunAdvanced: %v", err)
	}

	run, err := store.MostRecentActive(ctx)
	if err != nil {
		t.Fatalf("MostRecentActive: %v", err)
	}
	if run.RunID != "run-aaaa0001" {
		t.Errorf("most recent active = %s, want run-aaaa0001", run.RunID)
	}

	if err := store.RunFinished(ctx, "run-aaaa0001"); err != nil {
		t.Fatalf("RunFinished: %v", err)
	}
	run, err = store.MostRecentActive(ctx)
	if err != nil {
		t.Fatalf("MostRecentActive after finish: %v", err)
	}
	if run.RunID != "run-aaaa0002" {
		t.Errorf("most recent active = %s, want run-aaaa0002", run.RunID)
	}
}

func TestListOrdersByRecency(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	for _, id := range []string{"run-bbbb0001", "run-bbbb0002", "run-bbbb0003"} {
		if err := store.RunStarted(ctx, id, "/tmp/"+id); err != nil {
			t.Fatalf("RunStarted %s: %v", id, err)
		}
	}
	if err := store.RunAdvanced(ctx, "run-bbbb0001", "", "B", runindex.StatusActive); err != nil {
		t.Fatalf("RunAdvanced: %v", err)
	}

	runs, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("got %d runs, want 3", len(runs))
	}
	if runs[0].RunID != "run-bbbb0001" {
		t.Errorf("most recently updated run listed %s first", runs[0].RunID)
	}
}
