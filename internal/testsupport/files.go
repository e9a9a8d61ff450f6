package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteText writes content to path, creating parent directories.
func WriteText(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteBinary writes raw bytes to path, creating parent directories. Useful
// for template corpus files that must not undergo substitution.
func WriteBinary(t testing.TB, path string, data []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// NewCorpus lays out a small template corpus under a fresh temp directory and
// returns its root. The corpus covers the core subtree, every attach subtree,
// and all three prompt tiers.
func NewCorpus(t testing.TB) string {
	t.Helper()

	root := t.TempDir()
	WriteText(t, filepath.Join(root, "core", "README.md"), "# {{DISPLAY_NAME}}\n\n{{SUMMARY}}\n")
	WriteText(t, filepath.Join(root, "core", "agent.yaml"), "id: {{AGENT_ID}}\nmodel: {{MODEL_ID}}\nbase_path: {{BASE_PATH}}\n")
	WriteBinary(t, filepath.Join(root, "core", "logo.png"), []byte{0x89, 'P', 'N', 'G', 0x00, 0x01})
	WriteText(t, filepath.Join(root, "attach", "worker", "worker.yaml"), "package: {{PACKAGE_NAME}}\n")
	WriteText(t, filepath.Join(root, "attach", "sdk", "client.go.tmpl"), "package {{PACKAGE_NAME}}\n")
	WriteText(t, filepath.Join(root, "attach", "cron", "schedule.yaml"), "agent: {{AGENT_ID}}\n")
	WriteText(t, filepath.Join(root, "attach", "pipeline", "stage.yaml"), "agent: {{AGENT_ID}}\n")
	WriteText(t, filepath.Join(root, "prompts", "basic", "system.md"), "You are {{DISPLAY_NAME}}.\n")
	WriteText(t, filepath.Join(root, "prompts", "standard", "system.md"), "You are {{DISPLAY_NAME}} ({{REASONING_PROFILE}}).\n")
	WriteText(t, filepath.Join(root, "prompts", "advanced", "system.md"), "You are {{DISPLAY_NAME}}, think carefully.\n")
	return root
}
