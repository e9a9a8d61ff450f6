package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gantry/internal/testsupport"
	"gantry/internal/workflow"
)

type cliTestEnv struct {
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	// Commands that resolve config without an explicit flag look under HOME.
	t.Setenv("HOME", filepath.Join(base, "home"))
	corpus := testsupport.NewCorpus(t)

	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
workspace_root = %q
template_dir = %q
log_dir = %q

[registry]
path = %q

[logging]
format = "json"
level = "warn"
`,
		filepath.Join(base, "runs"),
		corpus,
		filepath.Join(base, "logs"),
		filepath.Join(base, "registry.json"))
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write test config: %v", err)
	}

	return &cliTestEnv{configPath: configPath, baseDir: base}
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--config", env.configPath))
	err := cmd.Execute()
	return out.String(), err
}

func requireContains(t *testing.T, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Fatalf("output %q does not contain %q", output, want)
	}
}

func startRun(t *testing.T, env *cliTestEnv) *workflow.State {
	t.Helper()

	out, err := runCLI(t, env, "start", "--format", "json")
	if err != nil {
		t.Fatalf("start: %v\n%s", err, out)
	}
	var state workflow.State
	if err := json.Unmarshal([]byte(out), &state); err != nil {
		t.Fatalf("parse start output: %v\n%s", err, out)
	}
	return &state
}

func TestWorkflowLifecycle(t *testing.T) {
	env := setupCLITestEnv(t)
	state := startRun(t, env)

	if _, err := os.Stat(state.BlueprintPath); err != nil {
		t.Fatalf("seed blueprint missing: %v", err)
	}

	out, err := runCLI(t, env, "approve", "interview", "-w", state.WorkdirPath)
	if err != nil {
		t.Fatalf("approve interview: %v\n%s", err, out)
	}

	out, err = runCLI(t, env, "validate-blueprint", "-w", state.WorkdirPath)
	if err != nil {
		t.Fatalf("validate-blueprint: %v\n%s", err, out)
	}
	requireContains(t, out, "Blueprint valid")

	out, err = runCLI(t, env, "approve", "B", "-w", state.WorkdirPath)
	if err != nil {
		t.Fatalf("approve B: %v\n%s", err, out)
	}

	out, err = runCLI(t, env, "plan", "-w", state.WorkdirPath)
	if err != nil {
		t.Fatalf("plan: %v\n%s", err, out)
	}
	requireContains(t, out, "new-agent")

	out, err = runCLI(t, env, "apply", "-w", state.WorkdirPath)
	if err != nil {
		t.Fatalf("apply: %v\n%s", err, out)
	}
	requireContains(t, out, "0 failed")

	readme := filepath.Join(state.WorkdirPath, "agents", "new-agent", "README.md")
	if _, err := os.Stat(readme); err != nil {
		t.Fatalf("scaffolded README missing: %v", err)
	}

	out, err = runCLI(t, env, "status", "-w", state.WorkdirPath, "--format", "json")
	if err != nil {
		t.Fatalf("status: %v\n%s", err, out)
	}
	var loaded workflow.State
	if err := json.Unmarshal([]byte(out), &loaded); err != nil {
		t.Fatalf("parse status output: %v\n%s", err, out)
	}
	if loaded.Stages[workflow.StageScaffold].Status != workflow.StatusApplied {
		t.Errorf("scaffold stage = %+v", loaded.Stages[workflow.StageScaffold])
	}

	out, err = runCLI(t, env, "runs")
	if err != nil {
		t.Fatalf("runs: %v\n%s", err, out)
	}
	requireContains(t, out, state.RunID)

	out, err = runCLI(t, env, "finish", "-w", state.WorkdirPath)
	if err != nil {
		t.Fatalf("finish: %v\n%s", err, out)
	}
	if _, err := os.Stat(state.WorkdirPath); !os.IsNotExist(err) {
		t.Error("workspace still exists after finish")
	}
}

func TestApproveOutOfOrderFails(t *testing.T) {
	env := setupCLITestEnv(t)
	state := startRun(t, env)

	out, err := runCLI(t, env, "approve", "scaffold", "-w", state.WorkdirPath)
	if err == nil {
		t.Fatalf("approving scaffold first should fail\n%s", out)
	}
	if !strings.Contains(err.Error(), "current stage is A") {
		t.Errorf("error = %v, should name the current stage", err)
	}
}

func TestApproveUnknownStage(t *testing.T) {
	env := setupCLITestEnv(t)

	_, err := runCLI(t, env, "approve", "z", "-w", t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "unknown stage") {
		t.Fatalf("error = %v, want unknown stage", err)
	}
}

func TestValidateBlueprintFailureExitsNonZero(t *testing.T) {
	env := setupCLITestEnv(t)
	state := startRun(t, env)

	doc := testsupport.BlueprintDoc()
	delete(doc, "ownership")
	testsupport.WriteBlueprint(t, state.BlueprintPath, doc)

	out, err := runCLI(t, env, "validate-blueprint", "-w", state.WorkdirPath)
	if err == nil {
		t.Fatalf("validation should fail\n%s", out)
	}
	requireContains(t, out, "ownership")
}

func TestFinishOutsideWorkspaceRootRefused(t *testing.T) {
	env := setupCLITestEnv(t)

	outside := t.TempDir()
	_, err := runCLI(t, env, "finish", "-w", outside)
	if err == nil {
		t.Fatal("finish outside workspace root should fail")
	}
	if _, statErr := os.Stat(outside); statErr != nil {
		t.Error("refused finish deleted the directory")
	}

	if _, err := runCLI(t, env, "finish", "-w", outside, "--force"); err != nil {
		t.Fatalf("forced finish: %v", err)
	}
}
