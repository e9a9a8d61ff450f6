package scaffold_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gantry/internal/registry"
	"gantry/internal/scaffold"
	"gantry/internal/testsupport"
)

func planFixture(t *testing.T) (ops []scaffold.PlannedOperation, corpus []scaffold.TemplateFile, repoRoot, registryPath string) {
	t.Helper()

	bp := testsupport.MustBlueprint(t)
	corpus, err := scaffold.ReadCorpus(testsupport.NewCorpus(t))
	if err != nil {
		t.Fatalf("ReadCorpus: %v", err)
	}
	repoRoot = t.TempDir()
	registryPath = filepath.Join(repoRoot, "registry.json")
	return scaffold.Plan(bp, repoRoot, registryPath, corpus), corpus, repoRoot, registryPath
}

func TestApplyDryRunTouchesNothing(t *testing.T) {
	bp := testsupport.MustBlueprint(t)
	ops, corpus, repoRoot, registryPath := planFixture(t)

	outcomes := scaffold.Apply(bp, ops, corpus, scaffold.ApplyOptions{Commit: false})

	for _, o := range outcomes {
		if o.Status != scaffold.OutcomePlanned {
			t.Errorf("dry-run outcome for %s = %q, want planned", o.Op.TargetPath, o.Status)
		}
	}
	if _, err := os.Stat(filepath.Join(repoRoot, "agents")); !os.IsNotExist(err) {
		t.Error("dry-run created the module root")
	}
	if _, err := os.Stat(registryPath); !os.IsNotExist(err) {
		t.Error("dry-run touched the registry")
	}
}

func TestApplyWritesScaffold(t *testing.T) {
	bp := testsupport.MustBlueprint(t)
	ops, corpus, repoRoot, registryPath := planFixture(t)

	outcomes := scaffold.Apply(bp, ops, corpus, scaffold.ApplyOptions{Commit: true})
	summary := scaffold.Summarize(outcomes)
	if summary.Failed != 0 {
		t.Fatalf("apply reported %d failures: %+v", summary.Failed, outcomes)
	}

	moduleRoot := filepath.Join(repoRoot, "agents", "invoice-triage")

	readme, err := os.ReadFile(filepath.Join(moduleRoot, "README.md"))
	if err != nil {
		t.Fatalf("read scaffolded README: %v", err)
	}
	if !strings.Contains(string(readme), "# Invoice Triage") {
		t.Errorf("README substitution missing, got %q", readme)
	}
	if strings.Contains(string(readme), "{{") {
		t.Errorf("README still contains raw tokens: %q", readme)
	}

	logo, err := os.ReadFile(filepath.Join(moduleRoot, "logo.png"))
	if err != nil {
		t.Fatalf("read scaffolded logo: %v", err)
	}
	if string(logo) != string([]byte{0x89, 'P', 'N', 'G', 0x00, 0x01}) {
		t.Error("binary template was altered during apply")
	}

	if _, err := os.Stat(filepath.Join(moduleRoot, "schemas", "run_request.schema.json")); err != nil {
		t.Errorf("schema file missing: %v", err)
	}
	for _, name := range scaffold.GeneratedDocNames {
		path := filepath.Join(repoRoot, "docs", "agents", "invoice-triage", name+".md")
		if _, err := os.Stat(path); err != nil {
			t.Errorf("generated doc %s missing: %v", name, err)
		}
	}

	reg, err := registry.Load(registryPath)
	if err != nil {
		t.Fatalf("load registry: %v", err)
	}
	entry, ok := reg.Find("invoice-triage")
	if !ok {
		t.Fatal("registry entry missing after apply")
	}
	if entry.Status != registry.StatusActive {
		t.Errorf("registry status = %q, want %q", entry.Status, registry.StatusActive)
	}
}

func TestApplyIsCopyIfMissing(t *testing.T) {
	bp := testsupport.MustBlueprint(t)
	ops, corpus, repoRoot, _ := planFixture(t)

	moduleRoot := filepath.Join(repoRoot, "agents", "invoice-triage")
	readmePath := filepath.Join(moduleRoot, "README.md")
	testsupport.WriteText(t, readmePath, "hand-edited\n")

	outcomes := scaffold.Apply(bp, ops, corpus, scaffold.ApplyOptions{Commit: true})

	var readmeStatus scaffold.OutcomeStatus
	for _, o := range outcomes {
		if o.Op.TargetPath == readmePath {
			readmeStatus = o.Status
		}
	}
	if readmeStatus != scaffold.OutcomeSkipped {
		t.Errorf("existing README outcome = %q, want %q", readmeStatus, scaffold.OutcomeSkipped)
	}

	data, err := os.ReadFile(readmePath)
	if err != nil {
		t.Fatalf("read README: %v", err)
	}
	if string(data) != "hand-edited\n" {
		t.Errorf("existing file was replaced: %q", data)
	}
}

func TestApplyOverwriteReplacesExisting(t *testing.T) {
	bp := testsupport.MustBlueprint(t)
	ops, corpus, repoRoot, _ := planFixture(t)

	readmePath := filepath.Join(repoRoot, "agents", "invoice-triage", "README.md")
	testsupport.WriteText(t, readmePath, "hand-edited\n")

	outcomes := scaffold.Apply(bp, ops, corpus, scaffold.ApplyOptions{Commit: true, Overwrite: true})

	for _, o := range outcomes {
		if o.Op.TargetPath == readmePath && o.Status != scaffold.OutcomeUpdated {
			t.Errorf("overwritten README outcome = %q, want %q", o.Status, scaffold.OutcomeUpdated)
		}
	}
	data, err := os.ReadFile(readmePath)
	if err != nil {
		t.Fatalf("read README: %v", err)
	}
	if !strings.Contains(string(data), "# Invoice Triage") {
		t.Errorf("overwrite did not re-render template: %q", data)
	}
}

func TestApplyContinuesPastFailures(t *testing.T) {
	bp := testsupport.MustBlueprint(t)
	ops, corpus, repoRoot, _ := planFixture(t)

	// Inject a template reference the corpus cannot satisfy ahead of the
	// real operations.
	broken := scaffold.PlannedOperation{
		Action:         scaffold.ActionWrite,
		TargetPath:     filepath.Join(repoRoot, "agents", "invoice-triage", "missing.txt"),
		SourceTemplate: "core/does-not-exist.md",
	}
	ops = append([]scaffold.PlannedOperation{ops[0], broken}, ops[1:]...)

	outcomes := scaffold.Apply(bp, ops, corpus, scaffold.ApplyOptions{Commit: true})
	summary := scaffold.Summarize(outcomes)
	if summary.Failed != 1 {
		t.Fatalf("summary.Failed = %d, want 1: %+v", summary.Failed, outcomes)
	}
	if summary.Written == 0 {
		t.Error("operations after the failure were not executed")
	}
	if outcomes[1].Status != scaffold.OutcomeFailed || outcomes[1].Detail == "" {
		t.Errorf("broken op outcome = %+v, want failed with detail", outcomes[1])
	}
}
