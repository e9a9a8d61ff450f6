package scaffold_test

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"gantry/internal/blueprint"
	"gantry/internal/scaffold"
	"gantry/internal/testsupport"
)

func refineDoc(t *testing.T, doc blueprint.Document) *blueprint.Blueprint {
	t.Helper()

	bp, result, err := blueprint.Refine(doc)
	if err != nil {
		t.Fatalf("refine document: %v (%v)", err, result.Errors)
	}
	return bp
}

func TestPlanOrderAndFiltering(t *testing.T) {
	bp := testsupport.MustBlueprint(t)
	corpus, err := scaffold.ReadCorpus(testsupport.NewCorpus(t))
	if err != nil {
		t.Fatalf("ReadCorpus: %v", err)
	}

	repoRoot := filepath.Join("work", "repo")
	registryPath := filepath.Join("work", "registry.json")
	ops := scaffold.Plan(bp, repoRoot, registryPath, corpus)

	moduleRoot := filepath.Join(repoRoot, "agents", "invoice-triage")
	docsRoot := filepath.Join(repoRoot, "docs", "agents", "invoice-triage")

	wantTargets := []string{
		moduleRoot,
		docsRoot,
		registryPath,
		filepath.Join(moduleRoot, "worker.yaml"),
		filepath.Join(moduleRoot, "README.md"),
		filepath.Join(moduleRoot, "agent.yaml"),
		filepath.Join(moduleRoot, "logo.png"),
		filepath.Join(moduleRoot, "prompts", "system.md"),
		filepath.Join(moduleRoot, "schemas", "run_request.schema.json"),
		filepath.Join(moduleRoot, "schemas", "run_response.schema.json"),
		filepath.Join(moduleRoot, "schemas", "agent_error.schema.json"),
		filepath.Join(docsRoot, "overview.md"),
		filepath.Join(docsRoot, "integration.md"),
		filepath.Join(docsRoot, "configuration.md"),
		filepath.Join(docsRoot, "dataflow.md"),
		filepath.Join(docsRoot, "runbook.md"),
		filepath.Join(docsRoot, "evaluation.md"),
	}
	if len(ops) != len(wantTargets) {
		t.Fatalf("got %d operations, want %d: %+v", len(ops), len(wantTargets), ops)
	}
	for i, want := range wantTargets {
		if ops[i].TargetPath != want {
			t.Errorf("ops[%d].TargetPath = %q, want %q", i, ops[i].TargetPath, want)
		}
	}

	if ops[0].Action != scaffold.ActionMkdir || ops[1].Action != scaffold.ActionMkdir {
		t.Error("first two operations should create the module and docs roots")
	}
	if ops[2].Action != scaffold.ActionUpdate {
		t.Errorf("ops[2].Action = %q, want %q", ops[2].Action, scaffold.ActionUpdate)
	}
	if ops[3].SourceTemplate != "attach/worker/worker.yaml" {
		t.Errorf("ops[3].SourceTemplate = %q", ops[3].SourceTemplate)
	}
	if ops[8].Render != "schema:RunRequest" {
		t.Errorf("ops[8].Render = %q, want schema:RunRequest", ops[8].Render)
	}
	if ops[11].Render != "doc:overview" {
		t.Errorf("ops[11].Render = %q, want doc:overview", ops[11].Render)
	}

	// Only the worker attach is active; other attach subtrees must be absent.
	for _, op := range ops {
		switch op.SourceTemplate {
		case "attach/sdk/client.go.tmpl", "attach/cron/schedule.yaml", "attach/pipeline/stage.yaml":
			t.Errorf("unattached template %q planned", op.SourceTemplate)
		case "prompts/basic/system.md", "prompts/advanced/system.md":
			t.Errorf("wrong prompt tier %q planned", op.SourceTemplate)
		}
	}
}

func TestPlanIsDeterministic(t *testing.T) {
	bp := testsupport.MustBlueprint(t)
	corpus, err := scaffold.ReadCorpus(testsupport.NewCorpus(t))
	if err != nil {
		t.Fatalf("ReadCorpus: %v", err)
	}

	first := scaffold.Plan(bp, "repo", "registry.json", corpus)
	second := scaffold.Plan(bp, "repo", "registry.json", corpus)
	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs produced different plans")
	}
}

func TestPlanEmptyCorpus(t *testing.T) {
	bp := testsupport.MustBlueprint(t)

	ops := scaffold.Plan(bp, "repo", "registry.json", nil)

	// Roots, registry, three schemas, six docs still appear.
	if len(ops) != 12 {
		t.Fatalf("got %d operations, want 12: %+v", len(ops), ops)
	}
	for _, op := range ops {
		if op.SourceTemplate != "" {
			t.Errorf("unexpected template operation %+v", op)
		}
	}
}

func TestPlanPromptTierSelection(t *testing.T) {
	doc := testsupport.BlueprintDoc()
	doc["metadata"].(map[string]any)["complexity"] = "advanced"
	bp := refineDoc(t, doc)

	corpus, err := scaffold.ReadCorpus(testsupport.NewCorpus(t))
	if err != nil {
		t.Fatalf("ReadCorpus: %v", err)
	}

	ops := scaffold.Plan(bp, "repo", "registry.json", corpus)
	var prompts []string
	for _, op := range ops {
		if op.SourceTemplate == "" {
			continue
		}
		if strings.HasPrefix(op.SourceTemplate, "prompts/") {
			prompts = append(prompts, op.SourceTemplate)
		}
	}
	if len(prompts) != 1 || prompts[0] != "prompts/advanced/system.md" {
		t.Errorf("planned prompts = %v, want only the advanced tier", prompts)
	}
}
